// Package orderwebhook ingests order notifications from the checkout
// collaborator. Payloads are authenticated with an HMAC-SHA256 signature;
// accepted events are recorded in the ledger and republished on the change
// feed.
package orderwebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/tapfolio/entitlement-service/internal/http/response"
	"github.com/tapfolio/entitlement-service/internal/lib/sl"
	"github.com/tapfolio/entitlement-service/internal/models"
)

// Service records checkout events in the order ledger.
type Service interface {
	RecordOrder(ctx context.Context, order models.Order) error
	TransitionStatus(ctx context.Context, orderID string, status models.OrderStatus) error
}

// Handler serves checkout webhook deliveries.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// New builds the handler.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

// Payload is the checkout collaborator's webhook shape.
type Payload struct {
	Event string `json:"event"`
	Order struct {
		ID        string    `json:"id"`
		UserUID   string    `json:"user_uid"`
		PlanID    string    `json:"plan_id"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"order"`
}

// Webhook event names delivered by checkout.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

func (h *Handler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expectedSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

// ServeHTTP godoc
// @Summary Checkout order webhook
// @Tags Orders
// @Accept json
// @Param X-Api-Signature header string true "HMAC-SHA256 signature"
// @Success 200 "Event processed"
// @Failure 400 "Malformed payload"
// @Failure 401 "Invalid signature"
// @Router /orders/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.webhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()

	signature := r.Header.Get("X-Api-Signature")
	if signature == "" || !h.verifySignature(body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	status := models.OrderStatus(payload.Order.Status)
	switch payload.Event {
	case EventOrderCreated:
		err = h.service.RecordOrder(r.Context(), models.Order{
			ID:        payload.Order.ID,
			UserUID:   payload.Order.UserUID,
			PlanID:    payload.Order.PlanID,
			Status:    status,
			CreatedAt: payload.Order.CreatedAt,
		})
	case EventOrderStatusChanged:
		err = h.service.TransitionStatus(r.Context(), payload.Order.ID, status)
	default:
		log.Info("ignored webhook event", slog.String("event", payload.Event))
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process event"))
		return
	}

	log.Info("webhook processed",
		slog.String("event", payload.Event), slog.String("order_id", payload.Order.ID))
	w.WriteHeader(http.StatusOK)
}
