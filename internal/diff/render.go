package diff

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/codalotl/deltas/internal/token"
)

// RenderOptions control Render.
type RenderOptions struct {
	Color     bool // Use ANSI colors instead of textual markers.
	CharLevel bool // Refine a Delete directly followed by an Insert character by character.
	MarkMoves bool // Mark Equal blocks that moved relative to the old text.
}

// Markers used when RenderOptions.Color is false.
const (
	delOpen, delClose   = "[-", "-]"
	insOpen, insClose   = "{+", "+}"
	moveOpen, moveClose = "{>", "<}"
)

// ANSI colors used when RenderOptions.Color is true.
const (
	reset     = "\x1b[0m"
	redBG     = "\x1b[48;5;217m"
	greenBG   = "\x1b[48;5;114m"
	blackFG   = "\x1b[30m"
	underline = "\x1b[4m"
)

// Render returns the new text with the changes of ops marked inline: deleted text as [-...-], inserted text as {+...+}, and (with MarkMoves) moved text
// as {>...<}. With Color, the markers are replaced by ANSI background colors and underlining, intended for terminals.
func Render(a, b []token.Token, ops []Operation, opts RenderOptions) string {
	var sb strings.Builder
	moved := movedEquals(ops)

	wrap := func(s, open, close, color string) {
		if s == "" {
			return
		}
		if opts.Color {
			sb.WriteString(blackFG + color + s + reset)
			return
		}
		sb.WriteString(open + s + close)
	}

	for i := 0; i < len(ops); i++ {
		op := ops[i]
		switch op.Op {
		case OpEqual:
			text := token.Join(b[op.B1:op.B2])
			if opts.MarkMoves && moved[i] {
				wrap(text, moveOpen, moveClose, underline)
				continue
			}
			sb.WriteString(text)
		case OpDelete:
			old := token.Join(a[op.A1:op.A2])
			if opts.CharLevel && i+1 < len(ops) && ops[i+1].Op == OpInsert {
				next := ops[i+1]
				writeCharLevel(&sb, old, token.Join(b[next.B1:next.B2]), wrap)
				i++
				continue
			}
			wrap(old, delOpen, delClose, redBG)
		case OpInsert:
			wrap(token.Join(b[op.B1:op.B2]), insOpen, insClose, greenBG)
		}
	}
	return sb.String()
}

// writeCharLevel renders a replacement of before by after as a character-level diff.
func writeCharLevel(sb *strings.Builder, before, after string, wrap func(s, open, close, color string)) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			wrap(d.Text, delOpen, delClose, redBG)
		case diffmatchpatch.DiffInsert:
			wrap(d.Text, insOpen, insClose, greenBG)
		}
	}
}

// movedEquals marks the Equal operations that are not part of the longest run of Equals whose A ranges ascend. Those are the blocks that moved.
func movedEquals(ops []Operation) []bool {
	moved := make([]bool, len(ops))
	var eq []int
	for i, op := range ops {
		if op.Op == OpEqual {
			eq = append(eq, i)
		}
	}
	if len(eq) < 2 {
		return moved
	}

	// Patience-style longest increasing subsequence over A1.
	tails := []int{}             // tails[k] = index into eq of the smallest tail of an increasing run of length k+1
	prev := make([]int, len(eq)) // predecessor in the run, or -1
	for k, oi := range eq {
		x := ops[oi].A1
		pos := sort.Search(len(tails), func(t int) bool { return ops[eq[tails[t]]].A1 >= x })
		if pos > 0 {
			prev[k] = tails[pos-1]
		} else {
			prev[k] = -1
		}
		if pos == len(tails) {
			tails = append(tails, k)
		} else {
			tails[pos] = k
		}
	}

	inRun := make([]bool, len(eq))
	for k := tails[len(tails)-1]; k >= 0; k = prev[k] {
		inRun[k] = true
	}
	for k, oi := range eq {
		moved[oi] = !inRun[k]
	}
	return moved
}
