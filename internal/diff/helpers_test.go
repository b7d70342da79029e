package diff

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codalotl/deltas/internal/config"
	"github.com/codalotl/deltas/internal/segment"
	"github.com/codalotl/deltas/internal/token"
)

func words(t *testing.T, text string) []token.Token {
	t.Helper()
	tz, err := token.New(config.Tokenizer{Mode: config.ModeWord})
	require.NoError(t, err)
	return tz.Tokenize(text)
}

func tree(t *testing.T, text string) *segment.Tree {
	t.Helper()
	tr := segment.New(nil).Segment(words(t, text))
	require.NoError(t, tr.Validate())
	return tr
}

// opText describes ops by kind and text, which is easier to read in failures than index ranges.
type opText struct {
	Op   Op
	Text string
}

func describe(a, b []token.Token, ops []Operation) []opText {
	out := make([]opText, len(ops))
	for i, op := range ops {
		switch op.Op {
		case OpDelete:
			out[i] = opText{op.Op, token.Join(a[op.A1:op.A2])}
		default:
			out[i] = opText{op.Op, token.Join(b[op.B1:op.B2])}
		}
	}
	return out
}

func hasChanges(ops []Operation) bool {
	for _, op := range ops {
		if op.Op != OpEqual {
			return true
		}
	}
	return false
}
