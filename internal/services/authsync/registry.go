package authsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tapfolio/entitlement-service/internal/events"
)

// Registry tracks the active synchronizer of each signed-in user and routes
// profile change events to it. Bans are enforced even for users with no
// attached session, so a banned user cannot keep using an outstanding token.
type Registry struct {
	store    ClaimStore
	revoker  SessionRevoker
	notifier Notifier
	log      *slog.Logger
	tokenTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*Synchronizer
}

// NewRegistry builds an empty registry.
func NewRegistry(store ClaimStore, revoker SessionRevoker, notifier Notifier,
	log *slog.Logger, tokenTTL time.Duration) *Registry {
	return &Registry{
		store:    store,
		revoker:  revoker,
		notifier: notifier,
		log:      log,
		tokenTTL: tokenTTL,
		sessions: make(map[string]*Synchronizer),
	}
}

// Attach registers a session after login and runs its sign-in transition.
// A returning user replaces their previous synchronizer, which re-evaluates
// ban status from scratch.
func (r *Registry) Attach(userUID, username, token string) error {
	sess := NewSynchronizer(userUID, username, r.store, r.revoker, r.notifier, r.log, r.tokenTTL)
	if err := sess.SignIn(token); err != nil {
		return err
	}

	r.mu.Lock()
	r.sessions[userUID] = sess
	r.mu.Unlock()
	return nil
}

// Detach removes a user's synchronizer on sign-out.
func (r *Registry) Detach(userUID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userUID]; ok {
		s.SignOut()
		delete(r.sessions, userUID)
	}
}

// Get returns the active synchronizer for a user, if any.
func (r *Registry) Get(userUID string) (*Synchronizer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userUID]
	return s, ok
}

// HandleProfileEvent dispatches a profile change to the owning session. A
// ban with no attached session still revokes outstanding tokens.
func (r *Registry) HandleProfileEvent(ctx context.Context, ev events.ProfileEvent) error {
	r.mu.Lock()
	sess, ok := r.sessions[ev.UserUID]
	r.mu.Unlock()

	if ok {
		return sess.HandleProfileEvent(ctx, ev)
	}
	if ev.IsBanned {
		if err := r.revoker.RevokeSessions(ctx, ev.UserUID, r.tokenTTL); err != nil {
			return err
		}
	}
	return nil
}
