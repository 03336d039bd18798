package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tapfolio/entitlement-service/internal/events"
	"github.com/tapfolio/entitlement-service/internal/models"
)

type MockComputer struct {
	mock.Mock
}

func (m *MockComputer) ComputeAndReconcile(ctx context.Context, userUID string) (*models.EntitlementProfile, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EntitlementProfile), args.Error(1)
}

func profileWithContacts(n int) *models.EntitlementProfile {
	return &models.EntitlementProfile{
		Limits:     models.Limits{Contacts: n},
		ComputedAt: time.Now().UTC(),
	}
}

func TestHub_SubscriberReceivesFreshProfile(t *testing.T) {
	svc := new(MockComputer)
	svc.On("ComputeAndReconcile", mock.Anything, "u1").Return(profileWithContacts(550), nil).Once()

	hub := NewHub(svc, newNoopLogger())
	ch, cancel := hub.Subscribe("u1")
	defer cancel()

	err := hub.HandleOrderEvent(context.Background(), events.OrderEvent{
		OrderID: "o1", UserUID: "u1", PlanID: "plus", Status: "delivered",
	})
	require.NoError(t, err)

	select {
	case p := <-ch:
		assert.Equal(t, 550, p.Limits.Contacts)
	default:
		t.Fatal("expected a published profile")
	}
	svc.AssertExpectations(t)
}

func TestHub_StaleResultDiscarded(t *testing.T) {
	hub := NewHub(new(MockComputer), newNoopLogger())
	ch, cancel := hub.Subscribe("u1")
	defer cancel()

	// Two computations start; the older one finishes last.
	seq1 := hub.nextSeq("u1")
	seq2 := hub.nextSeq("u1")

	hub.publish("u1", seq2, profileWithContacts(1100))
	hub.publish("u1", seq1, profileWithContacts(550))

	select {
	case p := <-ch:
		assert.Equal(t, 1100, p.Limits.Contacts, "older in-flight result must not win")
	default:
		t.Fatal("expected a published profile")
	}

	select {
	case <-ch:
		t.Fatal("stale result must not be delivered")
	default:
	}
}

func TestHub_SlowConsumerSeesOnlyLatest(t *testing.T) {
	hub := NewHub(new(MockComputer), newNoopLogger())
	ch, cancel := hub.Subscribe("u1")
	defer cancel()

	// Nobody drains between publishes; the buffered slot is replaced.
	hub.publish("u1", hub.nextSeq("u1"), profileWithContacts(550))
	hub.publish("u1", hub.nextSeq("u1"), profileWithContacts(1100))

	p := <-ch
	assert.Equal(t, 1100, p.Limits.Contacts)
}

func TestHub_ComputeErrorRequeues(t *testing.T) {
	svc := new(MockComputer)
	svc.On("ComputeAndReconcile", mock.Anything, "u1").Return(nil, errors.New("catalog down")).Once()

	hub := NewHub(svc, newNoopLogger())
	ch, cancel := hub.Subscribe("u1")
	defer cancel()

	err := hub.HandleOrderEvent(context.Background(), events.OrderEvent{OrderID: "o1", UserUID: "u1"})
	require.Error(t, err)

	select {
	case <-ch:
		t.Fatal("failed computation must not publish")
	default:
	}
}

func TestHub_CancelStopsDelivery(t *testing.T) {
	svc := new(MockComputer)
	svc.On("ComputeAndReconcile", mock.Anything, "u1").Return(profileWithContacts(550), nil)

	hub := NewHub(svc, newNoopLogger())
	ch, cancel := hub.Subscribe("u1")
	cancel()

	require.NoError(t, hub.HandleOrderEvent(context.Background(), events.OrderEvent{OrderID: "o1", UserUID: "u1"}))

	select {
	case <-ch:
		t.Fatal("cancelled subscription must not receive profiles")
	default:
	}
}

func TestHub_EventWithoutSubscribersStillComputes(t *testing.T) {
	// The mirror reconciliation rides on the recomputation, so it runs even
	// when no session is listening.
	svc := new(MockComputer)
	svc.On("ComputeAndReconcile", mock.Anything, "u1").Return(profileWithContacts(550), nil).Once()

	hub := NewHub(svc, newNoopLogger())

	require.NoError(t, hub.HandleOrderEvent(context.Background(), events.OrderEvent{OrderID: "o1", UserUID: "u1"}))
	svc.AssertExpectations(t)
}
