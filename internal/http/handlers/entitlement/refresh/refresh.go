// Package refresh implements the explicit entitlement refresh endpoint:
// recompute the profile and schedule the visual mirror reconciliation, e.g.
// after an admin catalog edit.
package refresh

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tapfolio/entitlement-service/internal/http/middlewarectx"
	"github.com/tapfolio/entitlement-service/internal/http/response"
	"github.com/tapfolio/entitlement-service/internal/lib/sl"
	"github.com/tapfolio/entitlement-service/internal/models"
)

// Service recomputes entitlement profiles with reconciliation.
type Service interface {
	ComputeAndReconcile(ctx context.Context, userUID string) (*models.EntitlementProfile, error)
}

// Handler serves explicit refresh requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New builds the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Recompute the current user's entitlement profile
// @Tags Entitlements
// @Produce json
// @Success 200 {object} map[string]any "Fresh entitlement profile"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 503 {object} response.ErrorResponse "Catalog unavailable"
// @Router /entitlements/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.refresh"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	profile, err := h.service.ComputeAndReconcile(r.Context(), userUID)
	if err != nil {
		log.Error("failed to refresh entitlement profile", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("entitlements temporarily unavailable"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"entitlements": profile,
	}))
}
