// Package plandeactivate implements the admin endpoint closing a plan for
// new purchases.
package plandeactivate

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tapfolio/entitlement-service/internal/http/response"
	"github.com/tapfolio/entitlement-service/internal/lib/sl"
)

// Service is the catalog edit logic.
type Service interface {
	Deactivate(ctx context.Context, id string) (int, error)
}

// Handler serves plan deactivation requests.
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
// @Summary Deactivate a catalog plan
// @Tags Plans
// @Produce json
// @Param id path string true "Plan identifier"
// @Success 200 {object} response.Response "Plan deactivated"
// @Failure 403 {object} response.ErrorResponse "Admin privileges required"
// @Failure 404 {object} response.ErrorResponse "Plan not found"
// @Failure 500 {object} response.ErrorResponse "Storage failure"
// @Router /admin/plans/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.deactivate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing plan id"))
		return
	}

	count, err := h.service.Deactivate(r.Context(), id)
	if err != nil {
		log.Error("failed to deactivate plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not deactivate plan"))
		return
	}
	if count == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	}

	log.Info("plan deactivated", slog.String("plan_id", id))
	render.JSON(w, r, response.OK())
}
