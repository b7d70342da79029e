package diff

import (
	"fmt"

	"github.com/codalotl/deltas/internal/token"
)

// Op is an operation from old tokens to new tokens.
type Op int

// Operations from old tokens to new tokens.
const (
	OpEqual Op = iota
	OpInsert
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Operation is one step of an edit script. A ranges index the old sequence, B ranges the new one.
type Operation struct {
	Op Op  `json:"op"`
	A1 int `json:"a1"`
	A2 int `json:"a2"`
	B1 int `json:"b1"`
	B2 int `json:"b2"`
}

func (o Operation) String() string {
	return fmt.Sprintf("%s a[%d:%d] b[%d:%d]", o.Op, o.A1, o.A2, o.B1, o.B2)
}

// Options configure the matchers.
type Options struct {
	// JunkThreshold, if in (0, 1], leaves tokens whose frequency in the new sequence exceeds it out of the match index. This bounds running time on highly
	// repetitive text at the cost of minimality. Zero disables the heuristic.
	JunkThreshold float64
}

// Matcher is implemented by SequenceMatcher. SegmentMatcher works on segment trees and has its own Diff signature.
type Matcher interface {
	Diff(a, b []token.Token) []Operation
}

// Replay applies ops to a, taking inserted tokens from b. For a valid edit script the result equals b.
func Replay(a, b []token.Token, ops []Operation) []token.Token {
	out := make([]token.Token, 0, len(b))
	for _, op := range ops {
		switch op.Op {
		case OpEqual:
			out = append(out, a[op.A1:op.A2]...)
		case OpInsert:
			out = append(out, b[op.B1:op.B2]...)
		case OpDelete:
		}
	}
	return out
}

// InOrder reports whether the A ranges of ops are non-decreasing, i.e. nothing moved.
func InOrder(ops []Operation) bool {
	pos := 0
	for _, op := range ops {
		if op.A1 < pos {
			return false
		}
		pos = op.A2
	}
	return true
}

// compact merges adjacent operations of the same kind that continue each other.
func compact(ops []Operation) []Operation {
	if len(ops) < 2 {
		return ops
	}
	out := ops[:1]
	for _, op := range ops[1:] {
		last := &out[len(out)-1]
		if op.Op == last.Op {
			switch op.Op {
			case OpEqual:
				if last.A2 == op.A1 && last.B2 == op.B1 {
					last.A2, last.B2 = op.A2, op.B2
					continue
				}
			case OpInsert:
				if last.B2 == op.B1 {
					last.B2 = op.B2
					continue
				}
			case OpDelete:
				if last.A2 == op.A1 && last.B1 == op.B1 {
					last.A2 = op.A2
					continue
				}
			}
		}
		out = append(out, op)
	}
	return out
}
