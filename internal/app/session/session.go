// Package session keeps the sign-in state on the device and picks the goal
// backend that matches it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/PabloGalante/goal-forge/internal/domain"
	"github.com/PabloGalante/goal-forge/internal/observability"
)

// Keys of the sign-in record in the device store.
const (
	TokenKey = "jwt"
	UserKey  = "user"
)

type Store struct {
	kv  domain.KeyValueStore
	now func() time.Time
}

func NewStore(kv domain.KeyValueStore) *Store {
	return &Store{kv: kv, now: time.Now}
}

// Login stores the token and user. When user is nil it is filled from the
// token's claims.
func (s *Store) Login(ctx context.Context, token string, user *domain.User) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &domain.ValidationError{Field: "token", Message: "token is required"}
	}

	claims, err := ParseClaims(token)
	if err != nil {
		return err
	}

	log := observability.LoggerFromContext(ctx).With("subject", claims.Subject)
	if claims.Expired(s.now()) {
		log.Warn("token already expired, the server may reject it", "expires_at", claims.ExpiresAt)
	}

	if user == nil {
		user = &domain.User{ID: claims.Subject, Email: claims.Email, Name: claims.Name}
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	if err := s.kv.Set(ctx, TokenKey, []byte(token)); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	if err := s.kv.Set(ctx, UserKey, data); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}

	log.Info("signed in")
	return nil
}

// Logout forgets the token and user. Device goals are left alone.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.kv.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("removing token: %w", err)
	}
	if err := s.kv.Delete(ctx, UserKey); err != nil {
		return fmt.Errorf("removing user: %w", err)
	}
	observability.LoggerFromContext(ctx).Info("signed out")
	return nil
}

// Current returns the stored session. No token means an anonymous session,
// not an error.
func (s *Store) Current(ctx context.Context) (domain.Session, error) {
	var sess domain.Session

	token, err := s.kv.Get(ctx, TokenKey)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return sess, nil
	case err != nil:
		return sess, fmt.Errorf("reading token: %w", err)
	}
	sess.Token = strings.TrimSpace(string(token))

	data, err := s.kv.Get(ctx, UserKey)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return sess, nil
	case err != nil:
		return sess, fmt.Errorf("reading user: %w", err)
	}

	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		observability.LoggerFromContext(ctx).Warn("ignoring unreadable stored user", "error", err)
		return sess, nil
	}
	sess.User = &u
	return sess, nil
}

// Token is an api.TokenFunc. Read failures count as signed out.
func (s *Store) Token(ctx context.Context) string {
	sess, err := s.Current(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("reading session failed", "error", err)
		return ""
	}
	return sess.Token
}

// Claims is what the client shows about a token. The signature is never
// checked here; the backend does that.
type Claims struct {
	Subject   string
	Email     string
	Name      string
	ExpiresAt *time.Time
}

func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

func ParseClaims(token string) (*Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, &domain.ValidationError{Field: "token", Message: "token is not a JWT"}
	}

	c := &Claims{}
	c.Subject, _ = mc.GetSubject()
	c.Email, _ = mc["email"].(string)
	c.Name, _ = mc["name"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		c.ExpiresAt = &t
	}
	return c, nil
}
