// Package get implements the read-only entitlement profile endpoint. It
// computes the profile without touching the visual mirror, so pure readers
// never trigger writes.
package get

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

// Service computes entitlement profiles.
type Service interface {
	Compute(ctx context.Context, userUID string) (*models.EntitlementProfile, error)
}

// Handler serves entitlement profile reads.
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
// @Summary Get the current user's entitlement profile
// @Tags Entitlements
// @Produce json
// @Success 200 {object} map[string]any "Entitlement profile"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 503 {object} response.ErrorResponse "Catalog unavailable"
// @Router /entitlements [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.get"
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

	profile, err := h.service.Compute(r.Context(), userUID)
	if err != nil {
		// The catalog is the hard dependency; consumers keep showing their
		// last-known-good profile and retry.
		log.Error("failed to compute entitlement profile", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("entitlements temporarily unavailable"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"entitlements": profile,
	}))
}
