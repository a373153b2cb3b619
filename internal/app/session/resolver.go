package session

import (
	"context"

	"github.com/PabloGalante/goal-forge/internal/domain"
)

// Resolver sends signed-in users to the remote backend and everyone else
// to the device store. The choice is made per call, so a login or logout
// takes effect on the next operation.
type Resolver struct {
	sessions *Store
	remote   domain.GoalBackend
	device   domain.GoalBackend
}

func NewResolver(sessions *Store, remote, device domain.GoalBackend) *Resolver {
	return &Resolver{sessions: sessions, remote: remote, device: device}
}

func (r *Resolver) Backend(ctx context.Context) (domain.GoalBackend, error) {
	sess, err := r.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if sess.Authenticated() {
		return r.remote, nil
	}
	return r.device, nil
}
