// Package planupsert implements the admin endpoint creating or replacing a
// catalog plan.
package planupsert

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/tapfolio/entitlement-service/internal/http/response"
	"github.com/tapfolio/entitlement-service/internal/lib/sl"
	"github.com/tapfolio/entitlement-service/internal/models"
)

// Service is the catalog edit logic.
type Service interface {
	Upsert(ctx context.Context, req models.DummyPlan) error
}

// Handler serves plan upsert requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New builds the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Create or replace a catalog plan
// @Tags Plans
// @Accept json
// @Produce json
// @Param request body models.DummyPlan true "Plan data"
// @Success 200 {object} response.Response "Plan stored"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 403 {object} response.ErrorResponse "Admin privileges required"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Storage failure"
// @Router /admin/plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.upsert"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPlan
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.Upsert(r.Context(), req); err != nil {
		log.Error("failed to upsert plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not store plan"))
		return
	}

	log.Info("plan stored", slog.String("plan_id", req.ID))
	render.JSON(w, r, response.OK())
}
