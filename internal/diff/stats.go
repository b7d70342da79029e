package diff

import (
	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"

	"github.com/codalotl/deltas/internal/token"
)

// Stats summarizes an edit script.
type Stats struct {
	TokensEqual    int
	TokensInserted int
	TokensDeleted  int
	CharsAdded     int // User-perceived characters (grapheme clusters) inserted.
	CharsRemoved   int // User-perceived characters (grapheme clusters) deleted.
	WidthAdded     int // Monospace terminal columns inserted.
	WidthRemoved   int // Monospace terminal columns deleted.
	Moved          int // Equal blocks that moved relative to the old text.
}

// Summarize counts what ops change between a and b.
func Summarize(a, b []token.Token, ops []Operation) Stats {
	var s Stats
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	cond.StrictEmojiNeutral = true

	for i, moved := range movedEquals(ops) {
		op := ops[i]
		switch op.Op {
		case OpEqual:
			s.TokensEqual += op.A2 - op.A1
			if moved {
				s.Moved++
			}
		case OpInsert:
			text := token.Join(b[op.B1:op.B2])
			s.TokensInserted += op.B2 - op.B1
			s.CharsAdded += graphemeCount(text)
			s.WidthAdded += cond.StringWidth(text)
		case OpDelete:
			text := token.Join(a[op.A1:op.A2])
			s.TokensDeleted += op.A2 - op.A1
			s.CharsRemoved += graphemeCount(text)
			s.WidthRemoved += cond.StringWidth(text)
		}
	}
	return s
}

func graphemeCount(s string) int {
	n := 0
	iter := graphemes.FromString(s)
	for iter.Next() {
		n++
	}
	return n
}
