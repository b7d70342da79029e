package segment

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/codalotl/deltas/internal/token"
)

// Level is the granularity of a segment.
type Level int

// Segment levels, coarsest first.
const (
	Paragraph Level = iota
	Sentence
	Whitespace
)

var levelNames = [...]string{"paragraph", "sentence", "whitespace"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// MarshalText encodes l by name.
func (l Level) MarshalText() ([]byte, error) {
	if l < 0 || int(l) >= len(levelNames) {
		return nil, fmt.Errorf("segment: invalid level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText decodes a name produced by MarshalText.
func (l *Level) UnmarshalText(b []byte) error {
	for i, name := range levelNames {
		if string(b) == name {
			*l = Level(i)
			return nil
		}
	}
	return fmt.Errorf("segment: unknown level %q", string(b))
}

// Segment is a node covering Tree.Tokens[Start:End].
type Segment struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Level    Level  `json:"level"`
	Children []int  `json:"children,omitempty"` // Node ids, in order. Empty for leaves.
	Hash     uint64 `json:"hash"`
}

// Len returns the number of tokens in s.
func (s Segment) Len() int {
	return s.End - s.Start
}

// Tree is a segmented token sequence.
type Tree struct {
	Tokens []token.Token `json:"tokens"`
	Nodes  []Segment     `json:"nodes"`
	Roots  []int         `json:"roots"` // Top-level node ids, in order.
}

// Len returns the number of tokens in t.
func (t *Tree) Len() int {
	return len(t.Tokens)
}

// TokensOf returns the tokens of node id.
func (t *Tree) TokensOf(id int) []token.Token {
	n := t.Nodes[id]
	return t.Tokens[n.Start:n.End]
}

// Text returns the text of node id.
func (t *Tree) Text(id int) string {
	return token.Join(t.TokensOf(id))
}

// Walk calls fn for every node in pre-order. If fn returns false, the node's children are skipped.
func (t *Tree) Walk(fn func(id int, depth int) bool) {
	var walk func(ids []int, depth int)
	walk = func(ids []int, depth int) {
		for _, id := range ids {
			if fn(id, depth) {
				walk(t.Nodes[id].Children, depth+1)
			}
		}
	}
	walk(t.Roots, 0)
}

// SameContent reports whether node ai of a and node bi of b contain pairwise-equal tokens.
func SameContent(a *Tree, ai int, b *Tree, bi int) bool {
	an, bn := a.Nodes[ai], b.Nodes[bi]
	if an.Hash != bn.Hash || an.Len() != bn.Len() {
		return false
	}
	at, bt := a.TokensOf(ai), b.TokensOf(bi)
	for i := range at {
		if !at[i].Equal(bt[i]) {
			return false
		}
	}
	return true
}

// hashTokens returns the FNV-1a digest of the tokens' keys.
func hashTokens(tokens []token.Token) uint64 {
	h := fnv.New64a()
	sep := []byte{0xff} // never appears in UTF-8 key text
	for _, t := range tokens {
		_, _ = h.Write([]byte(t.Key()))
		_, _ = h.Write(sep)
	}
	return h.Sum64()
}

// Validate checks the tree's structural invariants: roots tile the tokens, every node is non-empty and referenced exactly once, children tile their
// parent, and hashes match the tokens.
func (t *Tree) Validate() error {
	refs := make([]int, len(t.Nodes))
	var check func(ids []int, start, end int, where string) error
	check = func(ids []int, start, end int, where string) error {
		pos := start
		for _, id := range ids {
			if id < 0 || id >= len(t.Nodes) {
				return fmt.Errorf("%s: node id %d out of range", where, id)
			}
			refs[id]++
			if refs[id] > 1 {
				return fmt.Errorf("node %d referenced more than once", id)
			}
			n := t.Nodes[id]
			if n.Start != pos || n.End <= n.Start || n.End > end {
				return fmt.Errorf("node %d: range [%d,%d) does not continue %s at %d", id, n.Start, n.End, where, pos)
			}
			if n.Hash != hashTokens(t.Tokens[n.Start:n.End]) {
				return fmt.Errorf("node %d: hash mismatch", id)
			}
			if len(n.Children) > 0 {
				if err := check(n.Children, n.Start, n.End, fmt.Sprintf("node %d", id)); err != nil {
					return err
				}
			}
			pos = n.End
		}
		if pos != end {
			return fmt.Errorf("%s: children end at %d, want %d", where, pos, end)
		}
		return nil
	}
	if err := check(t.Roots, 0, len(t.Tokens), "roots"); err != nil {
		return err
	}
	for id, n := range refs {
		if n == 0 {
			return fmt.Errorf("node %d is unreachable", id)
		}
	}
	return nil
}

// String renders the tree one node per line, indented by depth. Intended for debugging and tests.
func (t *Tree) String() string {
	var b strings.Builder
	t.Walk(func(id, depth int) bool {
		fmt.Fprintf(&b, "%s%s %q\n", strings.Repeat("  ", depth), t.Nodes[id].Level, t.Text(id))
		return true
	})
	return b.String()
}
