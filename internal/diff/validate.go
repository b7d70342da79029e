package diff

import (
	"fmt"

	"github.com/codalotl/deltas/internal/token"
)

// Validate checks that ops is a valid edit script from a to b and returns an error describing the first violation:
//   - every operation is non-empty, in bounds, and shaped for its Op
//   - Equal operations cover pairwise-equal tokens
//   - B ranges tile [0, len(b)) in order
//   - A ranges cover [0, len(a)) exactly once
//   - replaying ops against a yields b
func Validate(a, b []token.Token, ops []Operation) error {
	covered := make([]bool, len(a))
	bPos := 0
	for oi, op := range ops {
		if op.A1 < 0 || op.A1 > op.A2 || op.A2 > len(a) {
			return fmt.Errorf("op[%d] %v: a range out of bounds (len %d)", oi, op, len(a))
		}
		if op.B1 < 0 || op.B1 > op.B2 || op.B2 > len(b) {
			return fmt.Errorf("op[%d] %v: b range out of bounds (len %d)", oi, op, len(b))
		}

		switch op.Op {
		case OpEqual:
			if op.A2-op.A1 != op.B2-op.B1 || op.A1 == op.A2 {
				return fmt.Errorf("op[%d] %v: OpEqual requires equal, non-empty ranges", oi, op)
			}
			for k := 0; k < op.A2-op.A1; k++ {
				if !a[op.A1+k].Equal(b[op.B1+k]) {
					return fmt.Errorf("op[%d] %v: tokens %v and %v differ", oi, op, a[op.A1+k], b[op.B1+k])
				}
			}
		case OpInsert:
			if op.A1 != op.A2 || op.B1 == op.B2 {
				return fmt.Errorf("op[%d] %v: OpInsert requires A1==A2 and B1<B2", oi, op)
			}
		case OpDelete:
			if op.B1 != op.B2 || op.A1 == op.A2 {
				return fmt.Errorf("op[%d] %v: OpDelete requires B1==B2 and A1<A2", oi, op)
			}
		default:
			return fmt.Errorf("op[%d]: unknown op %d", oi, int(op.Op))
		}

		if op.B1 != bPos {
			return fmt.Errorf("op[%d] %v: b range does not continue at %d", oi, op, bPos)
		}
		bPos = op.B2

		for i := op.A1; i < op.A2 && op.Op != OpInsert; i++ {
			if covered[i] {
				return fmt.Errorf("op[%d] %v: a[%d] covered twice", oi, op, i)
			}
			covered[i] = true
		}
	}

	if bPos != len(b) {
		return fmt.Errorf("b ranges end at %d, want %d", bPos, len(b))
	}
	for i, c := range covered {
		if !c {
			return fmt.Errorf("a[%d] not covered", i)
		}
	}

	replayed := Replay(a, b, ops)
	if len(replayed) != len(b) {
		return fmt.Errorf("replay produced %d tokens, want %d", len(replayed), len(b))
	}
	for i := range replayed {
		if !replayed[i].Equal(b[i]) {
			return fmt.Errorf("replay differs from b at %d", i)
		}
	}
	return nil
}
