package snapshot

import (
	"fmt"

	"github.com/codalotl/deltas/internal/segment"
	"github.com/codalotl/deltas/internal/token"
)

// Version is the State layout written by this package.
const Version = 1

// State is a persisted engine cache.
type State struct {
	Version int               `json:"version"`
	Hash    uint64            `json:"hash"` // FNV-64a of the revision's text.
	Tokens  []token.Token     `json:"tokens"`
	Nodes   []segment.Segment `json:"nodes,omitempty"`
	Roots   []int             `json:"roots,omitempty"`
}

// Key returns the hex form of s.Hash used as the record key.
func (s State) Key() string {
	return HashKey(s.Hash)
}

// HashKey formats a text hash as a record key.
func HashKey(h uint64) string {
	return fmt.Sprintf("%016x", h)
}

// Segmented reports whether s carries a segment tree.
func (s State) Segmented() bool {
	return len(s.Roots) > 0
}

// Tree returns s's segment tree. The tree shares s's slices.
func (s State) Tree() *segment.Tree {
	return &segment.Tree{Tokens: s.Tokens, Nodes: s.Nodes, Roots: s.Roots}
}

// Validate checks that s has a known version, that its tokens tile a text, and that its tree (if any) is well formed. It does not check Hash, which
// depends on the hash function of the producer.
func (s State) Validate() error {
	if s.Version != Version {
		return fmt.Errorf("snapshot: unsupported version %d", s.Version)
	}
	if err := token.Validate(s.Tokens); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if len(s.Nodes) > 0 || len(s.Roots) > 0 {
		if err := s.Tree().Validate(); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	return nil
}
