package repository

import (
	"context"
	"fmt"

	"github.com/tapfolio/entitlement-service/internal/models"
)

// ListOrdersByUser returns every order in the ledger for a user, newest
// first. Filtering by contributing status is the aggregator's concern, not
// the repository's.
func (s *Storage) ListOrdersByUser(ctx context.Context, userUID string) ([]models.Order, error) {
	const op = "storage.ListOrdersByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, plan_id, status, created_at
			  FROM orders
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserUID, &o.PlanID, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// InsertOrder records an order reported by the checkout collaborator.
// Re-delivered webhooks update the status of the existing row instead of
// duplicating it.
func (s *Storage) InsertOrder(ctx context.Context, order models.Order) error {
	const op = "storage.InsertOrder"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO orders (id, user_uid, plan_id, status, created_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status`
	_, err := s.DB.ExecContext(ctx, query,
		order.ID, order.UserUID, order.PlanID, order.Status, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateOrderStatus applies a fulfillment status transition and returns the
// affected row count together with the owning user, so the caller can publish
// a change event for that user's sessions.
func (s *Storage) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (string, int, error) {
	const op = "storage.UpdateOrderStatus"
	select {
	case <-ctx.Done():
		return "", 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE orders SET status = $1 WHERE id = $2 RETURNING user_uid`
	var userUID string
	err := s.DB.QueryRowContext(ctx, query, status, orderID).Scan(&userUID)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}
	return userUID, 1, nil
}
