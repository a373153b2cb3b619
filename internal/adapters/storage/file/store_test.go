package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/goal-forge/internal/adapters/storage/file"
	"github.com/PabloGalante/goal-forge/internal/domain"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := file.NewStore(filepath.Join(dir, "data"))
	require.NoError(t, err)

	_, err = s.Get(ctx, "goals")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Set(ctx, "goals", []byte(`[{"id":"1"}]`)))
	require.NoError(t, s.Set(ctx, "goals", []byte(`[{"id":"2"}]`)))

	got, err := s.Get(ctx, "goals")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"2"}]`, string(got))

	entries, err := os.ReadDir(filepath.Join(dir, "data"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not linger")

	require.NoError(t, s.Delete(ctx, "goals"))
	require.NoError(t, s.Delete(ctx, "goals"))
	_, err = s.Get(ctx, "goals")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreRejectsPathKeys(t *testing.T) {
	s, err := file.NewStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../escape", "a/b", "", ".."} {
		assert.Error(t, s.Set(context.Background(), key, []byte("x")), "key %q", key)
	}
}
