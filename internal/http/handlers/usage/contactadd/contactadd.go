// Package contactadd implements the endpoint recording one saved contact,
// gated by the stacked contacts limit.
package contactadd

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

// Service mutates the contacts counter.
type Service interface {
	IncrementContactCount(ctx context.Context, userUID string) error
}

// Entitlements provides the authoritative ceiling for the counter.
type Entitlements interface {
	Compute(ctx context.Context, userUID string) (*models.EntitlementProfile, error)
}

// Handler serves contact save events.
type Handler struct {
	log          *slog.Logger
	service      Service
	entitlements Entitlements
}

// New builds the handler.
func New(log *slog.Logger, service Service, entitlements Entitlements) *Handler {
	return &Handler{
		log:          log,
		service:      service,
		entitlements: entitlements,
	}
}

// ServeHTTP godoc
// @Summary Record a saved contact
// @Tags Usage
// @Produce json
// @Success 200 {object} response.Response "Contact recorded"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 403 {object} response.Response "Upgrade required"
// @Failure 500 {object} response.ErrorResponse "Counter update failed"
// @Router /usage/contacts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usage.contactadd"
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

	profile, err := h.entitlements.Compute(r.Context(), userUID)
	if err != nil {
		log.Error("failed to compute entitlements", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("entitlements temporarily unavailable"))
		return
	}
	if !profile.CanAddContact() {
		log.Info("contact limit reached", slog.Int("limit", profile.Limits.Contacts))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.UpgradeRequired("contacts"))
		return
	}

	if err := h.service.IncrementContactCount(r.Context(), userUID); err != nil {
		log.Error("failed to increment contact count", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not record contact"))
		return
	}

	render.JSON(w, r, response.OK())
}
