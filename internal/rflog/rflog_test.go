package rflog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVFrameLoggerWritesHexRow(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "frames")

	l, err := NewCSVFrameLogger(sub)
	require.NoError(t, err)

	l.LogRaw([]byte{0xCC, 0x05, 0x11})
	require.NoError(t, l.Close())

	entries, err := os.ReadDir(sub)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(sub, entries[0].Name()))
	require.NoError(t, err)
	require.Contains(t, string(data), "cc0511")
}

func TestCSVFrameLoggerRejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notadir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := NewCSVFrameLogger(file)
	require.Error(t, err)
}
