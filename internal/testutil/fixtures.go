package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isaaclb98/find-my-fav/internal/store"
)

// PNGHeader is enough of a PNG for content sniffing to report image/png.
var PNGHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// WriteImages creates dir (if needed) and writes a minimal PNG for every
// name. It returns the full paths in the order given.
func WriteImages(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(paths[i]), 0o755))
		require.NoError(t, os.WriteFile(paths[i], PNGHeader, 0o644))
	}
	return paths
}

// NewStore opens a fresh store in a temp dir and inserts refs in order, so
// the first ref gets id 1. The store is closed when the test ends.
func NewStore(t *testing.T, refs ...string) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	if len(refs) > 0 {
		_, err = s.InsertItems(context.Background(), refs)
		require.NoError(t, err)
	}
	return s
}
