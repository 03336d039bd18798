// Package login implements the sign-in endpoint. A successful login issues
// a session token and attaches the session to the authority synchronizer.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/tapfolio/entitlement-service/internal/http/response"
	"github.com/tapfolio/entitlement-service/internal/lib/sl"
	"github.com/tapfolio/entitlement-service/internal/models"
	"github.com/tapfolio/entitlement-service/internal/services/auth"
)

// Service is the login business logic.
type Service interface {
	Login(ctx context.Context, username, rawPassword string) (string, *models.User, error)
}

// SessionAttacher registers the signed-in session with the claim
// synchronizer.
type SessionAttacher interface {
	Attach(userUID, username, token string) error
}

// Handler serves sign-in requests.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions SessionAttacher
	validate *validator.Validate
}

// Request is the login payload.
type Request struct {
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required"`
}

// New builds the handler.
func New(log *slog.Logger, service Service, sessions SessionAttacher) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Credentials"
// @Success 200 {object} map[string]any "Session token and role"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON"
// @Failure 401 {object} response.ErrorResponse "Invalid credentials"
// @Failure 403 {object} response.ErrorResponse "Account suspended"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	token, user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrBanned) {
		log.Info("banned account sign-in refused", slog.String("username", req.Username))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("account is suspended"))
		return
	}
	if err != nil {
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}

	if err := h.sessions.Attach(user.UID, user.Username, token); err != nil {
		log.Error("failed to attach session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not start session"))
		return
	}

	log.Info("user signed in", slog.String("user_uid", user.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": token,
		"role":  user.Role,
	}))
}
