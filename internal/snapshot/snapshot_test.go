package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codalotl/deltas/internal/config"
	"github.com/codalotl/deltas/internal/segment"
	"github.com/codalotl/deltas/internal/token"
)

func newState(t *testing.T, text string, segmented bool) State {
	t.Helper()
	tz, err := token.New(config.Tokenizer{Mode: config.ModeWord})
	require.NoError(t, err)
	st := State{Version: Version, Hash: uint64(len(text)) + 0x1234, Tokens: tz.Tokenize(text)}
	if segmented {
		tr := segment.New(nil).Segment(st.Tokens)
		st.Nodes, st.Roots = tr.Nodes, tr.Roots
	}
	return st
}

func TestDB_StoreRetrieve(t *testing.T) {
	db := &DB{AbsRoot: t.TempDir()}
	ns := Namespace(config.Default().Fingerprint())

	for _, segmented := range []bool{false, true} {
		st := newState(t, "Hello, world. Second sentence!\n\nNew paragraph.", segmented)
		require.NoError(t, db.Store(ns, st))

		got, ok, err := db.Retrieve(ns, st.Key())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, st, got)
		assert.Equal(t, segmented, got.Segmented())
		if segmented {
			assert.NoError(t, got.Tree().Validate())
		}
	}
}

func TestDB_RecordLayout(t *testing.T) {
	db := &DB{AbsRoot: t.TempDir()}
	st := newState(t, "one two", false)
	require.NoError(t, db.Store("ns", st))

	key := st.Key()
	b, err := os.ReadFile(filepath.Join(db.AbsRoot, "ns", key[:2], key[2:]))
	require.NoError(t, err)
	require.NotEmpty(t, b)
	assert.NotEqual(t, byte('{'), b[0], "records are compressed")

	// Storing the same state again leaves no temp files behind.
	require.NoError(t, db.Store("ns", st))
	entries, err := os.ReadDir(filepath.Join(db.AbsRoot, "ns", key[:2]))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDB_RetrieveMissing(t *testing.T) {
	db := &DB{AbsRoot: t.TempDir()}
	st, ok, err := db.Retrieve("ns", "00000000deadbeef")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, st)
}

func TestDB_RetrieveCorrupt(t *testing.T) {
	db := &DB{AbsRoot: t.TempDir()}
	key := "00000000deadbeef"
	path := filepath.Join(db.AbsRoot, "ns", key[:2], key[2:])
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not brotli"), 0o644))

	_, ok, err := db.Retrieve("ns", key)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestDB_RetrieveWrongKey(t *testing.T) {
	db := &DB{AbsRoot: t.TempDir()}
	st := newState(t, "one two", false)
	require.NoError(t, db.Store("ns", st))

	other := "ffffffffffffffff"
	require.NoError(t, os.MkdirAll(filepath.Join(db.AbsRoot, "ns", other[:2]), 0o755))
	require.NoError(t, os.Rename(
		filepath.Join(db.AbsRoot, "ns", st.Key()[:2], st.Key()[2:]),
		filepath.Join(db.AbsRoot, "ns", other[:2], other[2:]),
	))
	_, _, err := db.Retrieve("ns", other)
	assert.ErrorContains(t, err, "holds state")
}

func TestDB_Delete(t *testing.T) {
	db := &DB{AbsRoot: t.TempDir()}
	st := newState(t, "one two", true)
	require.NoError(t, db.Store("ns", st))
	require.NoError(t, db.Delete("ns", st.Key()))
	_, ok, err := db.Retrieve("ns", st.Key())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, db.Delete("ns", st.Key()))
}

func TestDB_Errors(t *testing.T) {
	st := newState(t, "x", false)

	assert.Error(t, (&DB{}).Store("ns", st))

	db := &DB{AbsRoot: t.TempDir()}
	for _, ns := range []string{"", "a/b", `a\b`, ".."} {
		assert.Error(t, db.Store(ns, st), ns)
		_, _, err := db.Retrieve(ns, st.Key())
		assert.Error(t, err, ns)
	}
	_, _, err := db.Retrieve("ns", "ab")
	assert.ErrorContains(t, err, "too short")

	bad := st
	bad.Version = 99
	assert.ErrorContains(t, db.Store("ns", bad), "version")
}

func TestState_Validate(t *testing.T) {
	st := newState(t, "One. Two.", true)
	require.NoError(t, st.Validate())

	broken := st
	broken.Tokens = append([]token.Token(nil), st.Tokens...)
	broken.Tokens[1].Offset++
	assert.ErrorContains(t, broken.Validate(), "offset")

	broken = st
	broken.Nodes = append([]segment.Segment(nil), st.Nodes...)
	broken.Nodes[0].End++
	assert.Error(t, broken.Validate())

	assert.NoError(t, State{Version: Version}.Validate())
}

func TestNamespace(t *testing.T) {
	a := config.Default()
	b := config.Default()
	b.Tokenizer.Mode = config.ModeCJK
	assert.NotEqual(t, Namespace(a.Fingerprint()), Namespace(b.Fingerprint()))
	assert.NoError(t, validatePathSegment("namespace", Namespace(a.Fingerprint())))
}
