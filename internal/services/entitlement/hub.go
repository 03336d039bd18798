package entitlement

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tapfolio/entitlement-service/internal/events"
	"github.com/tapfolio/entitlement-service/internal/models"
)

// Computer recomputes a user's entitlement profile. Implemented by Service.
type Computer interface {
	ComputeAndReconcile(ctx context.Context, userUID string) (*models.EntitlementProfile, error)
}

// Hub drives the reactive side of the aggregator: each order change event
// triggers a recomputation, and subscribed sessions receive the freshest
// profile. Each recomputation fully supersedes the previous one: a result
// that finishes after a newer event's result is discarded, never published.
type Hub struct {
	svc Computer
	log *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	seq       uint64 // latest scheduled computation for this user
	published uint64 // seq of the last published result
	nextSub   uint64
	subs      map[uint64]chan *models.EntitlementProfile
}

// NewHub builds a hub over the given computer.
func NewHub(svc Computer, log *slog.Logger) *Hub {
	return &Hub{
		svc:      svc,
		log:      log,
		sessions: make(map[string]*session),
	}
}

// Subscribe registers a consumer for a user's profile updates. The returned
// cancel function releases the subscription; after it returns no further
// sends happen on the channel. The channel holds only the latest profile:
// a slow consumer observes last-write-wins, not a backlog.
func (h *Hub) Subscribe(userUID string) (<-chan *models.EntitlementProfile, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := h.sessions[userUID]
	if st == nil {
		st = &session{subs: make(map[uint64]chan *models.EntitlementProfile)}
		h.sessions[userUID] = st
	}
	id := st.nextSub
	st.nextSub++
	ch := make(chan *models.EntitlementProfile, 1)
	st.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		st, ok := h.sessions[userUID]
		if !ok {
			return
		}
		delete(st.subs, id)
		if len(st.subs) == 0 {
			delete(h.sessions, userUID)
		}
	}
	return ch, cancel
}

// HandleOrderEvent recomputes the user's profile in response to a ledger
// change. Returning an error requeues the event.
func (h *Hub) HandleOrderEvent(ctx context.Context, ev events.OrderEvent) error {
	seq := h.nextSeq(ev.UserUID)

	profile, err := h.svc.ComputeAndReconcile(ctx, ev.UserUID)
	if err != nil {
		// Subscribers keep their last-known-good profile; the event is
		// redelivered for another attempt.
		return err
	}

	h.publish(ev.UserUID, seq, profile)
	return nil
}

func (h *Hub) nextSeq(userUID string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := h.sessions[userUID]
	if st == nil {
		// Nobody is listening, but the recomputation still runs so the
		// visual mirror stays reconciled. Sequence zero is fine.
		return 0
	}
	st.seq++
	return st.seq
}

func (h *Hub) publish(userUID string, seq uint64, profile *models.EntitlementProfile) {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := h.sessions[userUID]
	if st == nil {
		return
	}
	if seq < st.published {
		// A newer computation already published; this in-flight result is
		// stale and must not overwrite it.
		return
	}
	st.published = seq

	for _, ch := range st.subs {
		// Replace any undelivered profile with the fresh one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- profile:
		default:
		}
	}
}
