package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/goal-forge/internal/adapters/storage/device"
	"github.com/PabloGalante/goal-forge/internal/adapters/storage/memory"
	"github.com/PabloGalante/goal-forge/internal/app/session"
	"github.com/PabloGalante/goal-forge/internal/domain"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestLoginFillsUserFromClaims(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	s := session.NewStore(kv)

	tok := signed(t, jwt.MapClaims{"sub": "u-1", "email": "ana@example.com", "name": "Ana"})
	require.NoError(t, s.Login(ctx, tok, nil))

	sess, err := s.Current(ctx)
	require.NoError(t, err)
	assert.True(t, sess.Authenticated())
	assert.Equal(t, tok, sess.Token)
	require.NotNil(t, sess.User)
	assert.Equal(t, domain.User{ID: "u-1", Email: "ana@example.com", Name: "Ana"}, *sess.User)

	raw, err := kv.Get(ctx, session.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, tok, string(raw))
}

func TestLoginRejectsGarbage(t *testing.T) {
	s := session.NewStore(memory.NewKVStore())

	var verr *domain.ValidationError
	require.ErrorAs(t, s.Login(context.Background(), "", nil), &verr)
	require.ErrorAs(t, s.Login(context.Background(), "not-a-token", nil), &verr)
	assert.Equal(t, "token", verr.Field)
}

func TestExpiredTokenIsStillStored(t *testing.T) {
	ctx := context.Background()
	s := session.NewStore(memory.NewKVStore())
	tok := signed(t, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Hour).Unix()})

	require.NoError(t, s.Login(ctx, tok, &domain.User{Email: "x@example.com"}))
	assert.Equal(t, tok, s.Token(ctx))

	c, err := session.ParseClaims(tok)
	require.NoError(t, err)
	assert.True(t, c.Expired(time.Now()))
}

func TestLogoutIsAnonymous(t *testing.T) {
	ctx := context.Background()
	s := session.NewStore(memory.NewKVStore())
	require.NoError(t, s.Login(ctx, signed(t, jwt.MapClaims{"sub": "u"}), nil))

	require.NoError(t, s.Logout(ctx))
	sess, err := s.Current(ctx)
	require.NoError(t, err)
	assert.False(t, sess.Authenticated())
	assert.Nil(t, sess.User)
	assert.Empty(t, s.Token(ctx))

	// twice is fine
	require.NoError(t, s.Logout(ctx))
}

type namedBackend struct {
	domain.GoalBackend
	name string
}

func (b namedBackend) Name() string { return b.name }

func TestResolverFollowsSession(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	sessions := session.NewStore(kv)
	local := device.NewStore(kv)
	r := session.NewResolver(sessions, namedBackend{name: "remote"}, local)

	b, err := r.Backend(ctx)
	require.NoError(t, err)
	assert.Equal(t, "device", b.Name())

	require.NoError(t, sessions.Login(ctx, signed(t, jwt.MapClaims{"sub": "u"}), nil))
	b, err = r.Backend(ctx)
	require.NoError(t, err)
	assert.Equal(t, "remote", b.Name())
}
