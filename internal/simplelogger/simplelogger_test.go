package simplelogger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLog_WritesAndAppends(t *testing.T) {
	t.Setenv(EnvVar, filepath.Join(t.TempDir(), "deltas.log"))
	require.True(t, Enabled())

	Log("process %s", "rev1")
	Log("ops=%d\n", 3)

	b, err := os.ReadFile(os.Getenv(EnvVar))
	require.NoError(t, err)
	require.Equal(t, "process rev1\nops=3\n", string(b))
}

func TestLog_NoOpWhenUnset(t *testing.T) {
	t.Setenv(EnvVar, "")
	require.False(t, Enabled())
	Log("should not %s", "panic")
}

func TestLog_NoOpWhenPathIsDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvVar, dir)

	Log("ignored %d", 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
