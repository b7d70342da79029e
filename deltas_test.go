package deltas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codalotl/deltas/internal/diff"
)

func TestDiffText(t *testing.T) {
	cfg := DefaultConfig()
	a, b, ops, err := DiffText(cfg, "the quick fox", "the quick brown fox")
	require.NoError(t, err)
	require.NoError(t, diff.Validate(a, b, ops))
	assert.Equal(t, "the quick {+brown +}fox", Render(a, b, ops, RenderOptions{}))
	assert.Equal(t, 2, Summarize(a, b, ops).TokensInserted)
}

func TestDiff_Moves(t *testing.T) {
	cfg := DefaultConfig()
	a, err := Tokenize(cfg, "Alpha one.\n\nBeta two.")
	require.NoError(t, err)
	b, err := Tokenize(cfg, "Beta two.\n\nAlpha one.")
	require.NoError(t, err)

	ops, err := Diff(cfg, a, b)
	require.NoError(t, err)
	for _, op := range ops {
		assert.Equal(t, OpEqual, op.Op)
	}

	cfg.Segmentation.Enabled = false
	ops, err = Diff(cfg, a, b)
	require.NoError(t, err)
	assert.True(t, diff.InOrder(ops))
	assert.NotEqual(t, 1, len(ops))
}

func TestSegment(t *testing.T) {
	cfg := DefaultConfig()
	toks, err := Tokenize(cfg, "One. Two.\n\nThree.")
	require.NoError(t, err)
	tree := Segment(cfg, toks)
	require.NoError(t, tree.Validate())
	assert.Len(t, tree.Roots, 3)
}

func TestConfigErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tokenizer.Mode = "bogus"

	_, err := Tokenize(cfg, "x")
	var cerr *ConfigError
	assert.True(t, errors.As(err, &cerr))

	_, _, _, err = DiffText(cfg, "a", "b")
	assert.True(t, errors.As(err, &cerr))

	_, err = NewEngine(cfg)
	assert.True(t, errors.As(err, &cerr))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deltas.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tokenizer": {"mode": "cjk"}, "junk_threshold": 0.25}`), 0o644))
	t.Setenv("DELTAS_SEGMENTATION", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "cjk", string(cfg.Tokenizer.Mode))
	assert.False(t, cfg.Segmentation.Enabled)
	require.NotNil(t, cfg.JunkThreshold)
	assert.InDelta(t, 0.25, *cfg.JunkThreshold, 1e-9)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.False(t, cfg.Segmentation.Enabled)
}

func TestEngine(t *testing.T) {
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []Operation{{Op: OpInsert, A1: 0, A2: 0, B1: 0, B2: 1}}, e.Process("hello"))
	assert.Equal(t, []Operation{{Op: OpEqual, A1: 0, A2: 1, B1: 0, B2: 1}}, e.Process("hello"))
}
