// Package orderlist implements the order ledger listing for the current
// user.
package orderlist

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

// Service is the ledger read logic.
type Service interface {
	List(ctx context.Context, userUID string) ([]models.Order, error)
}

// Handler serves ledger listing requests.
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
// @Summary List the current user's orders
// @Tags Orders
// @Produce json
// @Success 200 {object} map[string]any "Orders"
// @Failure 401 {object} response.ErrorResponse "Unauthorized"
// @Failure 500 {object} response.ErrorResponse "Ledger fetch failed"
// @Router /orders [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.list"
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

	orders, err := h.service.List(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list orders", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list orders"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"orders": orders,
	}))
}
