// Package snapshot persists a DiffEngine's cache so that a long revision stream can be resumed in another process.
//
// A State holds the engine's previous revision: its tokens, its segment tree (when segmentation is enabled), and the hash of its text. States are stored
// in a filesystem-backed, content-addressed DB keyed by (namespace, hash):
//
//	<AbsRoot>/<namespace>/<hash[0:2]>/<hash[2:]>
//
// The namespace is derived from the engine configuration's fingerprint, so states produced under one tokenizer configuration are never restored into an
// engine configured differently. Records are brotli-compressed JSON and are validated when retrieved.
package snapshot
