// Package order ingests order records from the checkout collaborator and
// republishes them as change events for the reactive consumers. This service
// never originates status transitions; it records what checkout and
// fulfillment report.
package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tapfolio/entitlement-service/internal/events"
	"github.com/tapfolio/entitlement-service/internal/lib/sl"
	"github.com/tapfolio/entitlement-service/internal/models"
)

// Repository defines the order ledger operations in storage.
type Repository interface {
	ListOrdersByUser(ctx context.Context, userUID string) ([]models.Order, error)
	InsertOrder(ctx context.Context, order models.Order) error
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (string, int, error)
}

// Publisher pushes order change events onto the feed.
type Publisher interface {
	PublishOrderChanged(ev events.OrderEvent) error
}

// Service handles ledger reads and checkout webhook ingestion.
type Service struct {
	repo Repository
	pub  Publisher
	log  *slog.Logger
}

// NewService builds the order service.
func NewService(repo Repository, pub Publisher, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		pub:  pub,
		log:  log,
	}
}

// List returns a user's full order ledger.
func (s *Service) List(ctx context.Context, userUID string) ([]models.Order, error) {
	return s.repo.ListOrdersByUser(ctx, userUID)
}

// RecordOrder stores an order reported by checkout and announces the ledger
// change. Publishing failure does not undo the write; the next event for the
// user re-converges the derived state.
func (s *Service) RecordOrder(ctx context.Context, order models.Order) error {
	if !order.Status.Valid() {
		return fmt.Errorf("unknown order status: %q", order.Status)
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.InsertOrder(ctx, order); err != nil {
		return err
	}
	s.log.Info("order recorded",
		slog.String("order_id", order.ID),
		slog.String("plan_id", order.PlanID),
		slog.String("status", string(order.Status)))

	s.publish(events.OrderEvent{
		OrderID: order.ID,
		UserUID: order.UserUID,
		PlanID:  order.PlanID,
		Status:  order.Status,
	})
	return nil
}

// TransitionStatus applies a fulfillment status change reported by the
// collaborator and announces it.
func (s *Service) TransitionStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown order status: %q", status)
	}

	userUID, _, err := s.repo.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return err
	}
	s.log.Info("order status transitioned",
		slog.String("order_id", orderID), slog.String("status", string(status)))

	s.publish(events.OrderEvent{
		OrderID: orderID,
		UserUID: userUID,
		Status:  status,
	})
	return nil
}

func (s *Service) publish(ev events.OrderEvent) {
	if err := s.pub.PublishOrderChanged(ev); err != nil {
		s.log.Error("failed to publish order change event",
			slog.String("order_id", ev.OrderID), sl.Err(err))
	}
}
