package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/goal-forge/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/goal-forge/internal/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "goalforge.db")

	s, err := sqlite.Open(path)
	require.NoError(t, err)

	_, err = s.Get(ctx, "jwt")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Set(ctx, "jwt", []byte("token-1")))
	require.NoError(t, s.Set(ctx, "jwt", []byte("token-2")))
	require.NoError(t, s.Close())

	s, err = sqlite.Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "jwt")
	require.NoError(t, err)
	assert.Equal(t, "token-2", string(got))

	require.NoError(t, s.Delete(ctx, "jwt"))
	_, err = s.Get(ctx, "jwt")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
