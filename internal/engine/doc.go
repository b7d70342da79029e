// Package engine diffs a stream of revisions of one document, keeping the previous revision's tokens and segment tree so each revision is tokenized and
// segmented once.
//
// An Engine is Empty until the first Process call, which returns a single Insert of the whole text and primes it. Each later call diffs the previous
// revision against the new one and replaces the cache. A revision whose text equals the previous one returns one Equal without tokenizing. An Engine is
// not safe for concurrent use; use one per stream.
package engine
