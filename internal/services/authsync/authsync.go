// Package authsync reconciles a session's authority claims against the
// profile document's role fields. The profile's role is a request, never a
// source of authority: the synchronizer only ever adopts what the claim
// store reports after a forced refresh. A ban on the profile terminates the
// session one-way.
package authsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tapfolio/entitlement-service/internal/events"
	"github.com/tapfolio/entitlement-service/internal/lib/sl"
	"github.com/tapfolio/entitlement-service/internal/metrics"
	"github.com/tapfolio/entitlement-service/internal/models"
)

// Phase is the lifecycle state of a session's authority.
type Phase int

// Synchronizer phases.
const (
	PhaseUnauthenticated Phase = iota
	PhaseAuthenticated
	PhaseSyncing
	PhaseBanned
)

// String implements fmt.Stringer for log fields.
func (p Phase) String() string {
	switch p {
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseSyncing:
		return "syncing"
	case PhaseBanned:
		return "banned"
	}
	return "unknown"
}

// AuthorityState is the per-session authority snapshot. It is only mutated
// by the synchronizer's transitions.
type AuthorityState struct {
	Phase  Phase
	Claims models.Claims
	Token  string // current session token; replaced on refresh
}

// ClaimStore is the external claim/token store surface: cached read and
// forced refresh.
type ClaimStore interface {
	CachedClaims(token string) (models.Claims, error)
	ForceRefresh(ctx context.Context, user *models.User) (models.Claims, string, error)
}

// SessionRevoker terminates every outstanding session of a user.
type SessionRevoker interface {
	RevokeSessions(ctx context.Context, userUID string, window time.Duration) error
}

// Notifier surfaces the two user-visible outcomes: the one-time sync toast
// and the terminal suspension notice.
type Notifier interface {
	PermissionsSynced(userUID string)
	AccountSuspended(userUID string)
}

// Synchronizer is the state machine for one user session.
type Synchronizer struct {
	userUID  string
	username string
	store    ClaimStore
	revoker  SessionRevoker
	notifier Notifier
	log      *slog.Logger
	tokenTTL time.Duration

	mu    sync.Mutex
	state AuthorityState
}

// NewSynchronizer builds a synchronizer for a session in the
// Unauthenticated phase.
func NewSynchronizer(userUID, username string, store ClaimStore, revoker SessionRevoker,
	notifier Notifier, log *slog.Logger, tokenTTL time.Duration) *Synchronizer {
	return &Synchronizer{
		userUID:  userUID,
		username: username,
		store:    store,
		revoker:  revoker,
		notifier: notifier,
		log:      log,
		tokenTTL: tokenTTL,
	}
}

// State returns a copy of the current authority state.
func (s *Synchronizer) State() AuthorityState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SignIn transitions Unauthenticated -> Authenticated using the claims
// already cached in the session token. No forced refresh happens here, to
// stay clear of refresh rate limits.
func (s *Synchronizer) SignIn(token string) error {
	const op = "authsync.SignIn"
	cached, err := s.store.CachedClaims(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = AuthorityState{
		Phase:  PhaseAuthenticated,
		Claims: cached,
		Token:  token,
	}
	s.log.Info("session authenticated",
		slog.String("op", op),
		slog.String("user_uid", s.userUID),
		slog.Bool("admin", cached.Admin),
		slog.Bool("super_admin", cached.SuperAdmin))
	return nil
}

// SignOut resets the session to Unauthenticated. A banned session stays
// banned; only a fresh sign-in re-evaluates from scratch.
func (s *Synchronizer) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase == PhaseBanned {
		return
	}
	s.state = AuthorityState{}
}

// HandleProfileEvent reconciles the session against a profile document
// change. Ban detection runs first and preempts any pending sync: if the
// event carries a ban, the session terminates regardless of sync outcome.
func (s *Synchronizer) HandleProfileEvent(ctx context.Context, ev events.ProfileEvent) error {
	const op = "authsync.HandleProfileEvent"
	log := s.log.With(slog.String("op", op), slog.String("user_uid", s.userUID))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase == PhaseBanned {
		return nil
	}

	if ev.IsBanned {
		s.transitionBannedLocked(ctx, log)
		return nil
	}

	if s.state.Phase == PhaseUnauthenticated {
		// Nothing to reconcile before sign-in.
		return nil
	}

	profile := models.User{
		UID:      s.userUID,
		Username: s.username,
		Role:     ev.Role,
		Admin:    ev.Admin,
	}
	expected := profile.ExpectedClaims()
	current := s.state.Claims

	// The generic drift check plus the super_admin escalation fast path:
	// a privilege escalation refreshes immediately even when the admin
	// boolean already matches.
	drift := expected.Admin != current.Admin
	escalation := expected.SuperAdmin && !current.SuperAdmin
	if !drift && !escalation {
		return nil
	}

	prior := s.state
	s.state.Phase = PhaseSyncing

	fresh, token, err := s.store.ForceRefresh(ctx, &profile)
	if err != nil {
		// Recoverable: keep the prior state and let the next profile
		// event retry.
		s.state = prior
		metrics.ClaimSyncs.WithLabelValues("refresh_error").Inc()
		log.Warn("claim refresh failed", sl.Err(err))
		return nil
	}

	if fresh.Admin == expected.Admin && fresh.SuperAdmin == expected.SuperAdmin {
		s.state = AuthorityState{
			Phase:  PhaseAuthenticated,
			Claims: fresh,
			Token:  token,
		}
		metrics.ClaimSyncs.WithLabelValues("converged").Inc()
		log.Info("authority claims converged",
			slog.Bool("admin", fresh.Admin), slog.Bool("super_admin", fresh.SuperAdmin))
		s.notifier.PermissionsSynced(s.userUID)
		return nil
	}

	// The backend claim assignment is presumed in flight. Adopt what the
	// store reported, stay Syncing silently and wait for the next event.
	s.state.Claims = fresh
	s.state.Token = token
	metrics.ClaimSyncs.WithLabelValues("pending").Inc()
	log.Info("authority claims still diverged, awaiting backend assignment")
	return nil
}

// transitionBannedLocked enforces a ban: terminal phase, revoked sessions,
// suspension notice. Callers hold s.mu.
func (s *Synchronizer) transitionBannedLocked(ctx context.Context, log *slog.Logger) {
	s.state = AuthorityState{Phase: PhaseBanned}
	metrics.BansEnforced.Inc()

	if err := s.revoker.RevokeSessions(ctx, s.userUID, s.tokenTTL); err != nil {
		log.Error("failed to revoke sessions for banned user", sl.Err(err))
	}
	s.notifier.AccountSuspended(s.userUID)
	log.Info("session terminated, account banned")
}
