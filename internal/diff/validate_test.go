package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	a, b := words(t, "the quick fox"), words(t, "the quick brown fox")
	good := NewSequenceMatcher(Options{}).Diff(a, b)
	require.NoError(t, Validate(a, b, good))

	tests := []struct {
		name string
		ops  []Operation
		msg  string
	}{
		{name: "out of bounds", ops: []Operation{{Op: OpEqual, A1: 0, A2: 9, B1: 0, B2: 9}}, msg: "out of bounds"},
		{name: "equal mismatch", ops: []Operation{
			{Op: OpEqual, A1: 0, A2: 1, B1: 0, B2: 1},
			{Op: OpEqual, A1: 2, A2: 3, B1: 1, B2: 2},
		}, msg: "differ"},
		{name: "bad insert", ops: []Operation{{Op: OpInsert, A1: 0, A2: 1, B1: 0, B2: 7}}, msg: "OpInsert"},
		{name: "empty delete", ops: []Operation{{Op: OpDelete, A1: 2, A2: 2, B1: 0, B2: 0}}, msg: "OpDelete"},
		{name: "b gap", ops: []Operation{
			{Op: OpEqual, A1: 0, A2: 4, B1: 0, B2: 4},
			{Op: OpEqual, A1: 4, A2: 5, B1: 6, B2: 7},
		}, msg: "does not continue"},
		{name: "a twice", ops: []Operation{
			{Op: OpEqual, A1: 0, A2: 4, B1: 0, B2: 4},
			{Op: OpInsert, A1: 4, A2: 4, B1: 4, B2: 6},
			{Op: OpEqual, A1: 4, A2: 5, B1: 6, B2: 7},
			{Op: OpDelete, A1: 4, A2: 5, B1: 7, B2: 7},
		}, msg: "covered twice"},
		{name: "a uncovered", ops: []Operation{
			{Op: OpEqual, A1: 0, A2: 4, B1: 0, B2: 4},
			{Op: OpInsert, A1: 4, A2: 4, B1: 4, B2: 7},
		}, msg: "not covered"},
		{name: "b short", ops: []Operation{{Op: OpEqual, A1: 0, A2: 4, B1: 0, B2: 4}, {Op: OpDelete, A1: 4, A2: 5, B1: 4, B2: 4}}, msg: "b ranges end"},
		{name: "unknown op", ops: []Operation{{Op: Op(9)}}, msg: "unknown op"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(a, b, tt.ops)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReplay(t *testing.T) {
	a, b := words(t, "one two three"), words(t, "zero one three four")
	ops := NewSequenceMatcher(Options{}).Diff(a, b)
	assert.Equal(t, b, Replay(a, b, ops))
	assert.Empty(t, Replay(nil, nil, nil))
}

func TestCompact(t *testing.T) {
	ops := compact([]Operation{
		{Op: OpEqual, A1: 0, A2: 1, B1: 0, B2: 1},
		{Op: OpEqual, A1: 1, A2: 2, B1: 1, B2: 2},
		{Op: OpEqual, A1: 5, A2: 6, B1: 2, B2: 3},
		{Op: OpInsert, A1: 6, A2: 6, B1: 3, B2: 4},
		{Op: OpInsert, A1: 2, A2: 2, B1: 4, B2: 5},
		{Op: OpDelete, A1: 2, A2: 3, B1: 5, B2: 5},
		{Op: OpDelete, A1: 3, A2: 5, B1: 5, B2: 5},
	})
	assert.Equal(t, []Operation{
		{Op: OpEqual, A1: 0, A2: 2, B1: 0, B2: 2},
		{Op: OpEqual, A1: 5, A2: 6, B1: 2, B2: 3},
		{Op: OpInsert, A1: 6, A2: 6, B1: 3, B2: 5},
		{Op: OpDelete, A1: 2, A2: 5, B1: 5, B2: 5},
	}, ops)
}
