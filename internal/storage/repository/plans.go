package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tapfolio/entitlement-service/internal/models"
)

// ErrPlanNotFound is returned when a plan identifier is absent from the
// catalog.
var ErrPlanNotFound = errors.New("plan not found")

const planColumns = `id, name, price, tier, active,
			      limit_links, limit_contacts, limit_exports, limit_portfolio_items, limit_private_content_items,
			      feature_portfolio, feature_private_content, feature_custom_branding, feature_wallpaper,
			      visual_gold_ring, visual_royal_texture`

func scanPlan(row interface{ Scan(...any) error }) (*models.Plan, error) {
	var p models.Plan
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Tier, &p.Active,
		&p.Limits.Links, &p.Limits.Contacts, &p.Limits.Exports,
		&p.Limits.PortfolioItems, &p.Limits.PrivateContentItems,
		&p.Features.Portfolio, &p.Features.PrivateContent,
		&p.Features.CustomBranding, &p.Features.Wallpaper,
		&p.Visuals.GoldRing, &p.Visuals.RoyalTexture); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPlans returns the full plan catalog ordered by tier.
func (s *Storage) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + `
			  FROM plans
			  ORDER BY tier, id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPlan returns one plan by identifier or ErrPlanNotFound.
func (s *Storage) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + planColumns + `
			  FROM plans
			  WHERE id = $1`
	p, err := scanPlan(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrPlanNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpsertPlan inserts or fully replaces a catalog plan. Catalog edits are rare
// and admin-only; last write wins.
func (s *Storage) UpsertPlan(ctx context.Context, plan models.Plan) error {
	const op = "storage.UpsertPlan"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO plans (` + planColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			  ON CONFLICT (id) DO UPDATE SET
			      name = EXCLUDED.name, price = EXCLUDED.price, tier = EXCLUDED.tier,
			      active = EXCLUDED.active,
			      limit_links = EXCLUDED.limit_links, limit_contacts = EXCLUDED.limit_contacts,
			      limit_exports = EXCLUDED.limit_exports,
			      limit_portfolio_items = EXCLUDED.limit_portfolio_items,
			      limit_private_content_items = EXCLUDED.limit_private_content_items,
			      feature_portfolio = EXCLUDED.feature_portfolio,
			      feature_private_content = EXCLUDED.feature_private_content,
			      feature_custom_branding = EXCLUDED.feature_custom_branding,
			      feature_wallpaper = EXCLUDED.feature_wallpaper,
			      visual_gold_ring = EXCLUDED.visual_gold_ring,
			      visual_royal_texture = EXCLUDED.visual_royal_texture`
	_, err := s.DB.ExecContext(ctx, query,
		plan.ID, plan.Name, plan.Price, plan.Tier, plan.Active,
		plan.Limits.Links, plan.Limits.Contacts, plan.Limits.Exports,
		plan.Limits.PortfolioItems, plan.Limits.PrivateContentItems,
		plan.Features.Portfolio, plan.Features.PrivateContent,
		plan.Features.CustomBranding, plan.Features.Wallpaper,
		plan.Visuals.GoldRing, plan.Visuals.RoyalTexture)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeactivatePlan marks a plan as inactive for new purchases. Orders already
// referencing it keep contributing.
func (s *Storage) DeactivatePlan(ctx context.Context, id string) (int, error) {
	const op = "storage.DeactivatePlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE plans SET active = false WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
