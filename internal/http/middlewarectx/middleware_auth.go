// Package middlewarectx holds the HTTP middleware of the service: JWT
// session validation with revocation enforcement, admin gating and rate
// limiting, plus the context keys the handlers read.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tapfolio/entitlement-service/internal/http/response"
	"github.com/tapfolio/entitlement-service/internal/lib/jwt"
	"github.com/tapfolio/entitlement-service/internal/lib/sl"
)

// Key is the context key type for request-scoped identity values.
type Key string

// Context keys populated by the JWT middleware.
const (
	// User is the username of the authenticated session.
	User Key = "username"
	// UserUID is the user identifier of the authenticated session.
	UserUID Key = "user_uid"
	// Role is the role string carried by the session token.
	Role Key = "role"
	// Admin reports the admin claim of the session token.
	Admin Key = "admin"
)

// TokenValidator parses and verifies a session token.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error)
}

// RevocationChecker reports whether a user's sessions were force-revoked.
type RevocationChecker interface {
	SessionsRevokedSince(ctx context.Context, userUID string) (int64, error)
}

// JWTMiddleware validates the bearer token, rejects revoked sessions (e.g.
// after a ban) and stores the session identity in the request context.
func JWTMiddleware(validator TokenValidator, revocations RevocationChecker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := validator.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			revokedAt, err := revocations.SessionsRevokedSince(r.Context(), claims.UserUID)
			if err != nil {
				log.Error("revocation check failed", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("could not verify session"))
				return
			}
			if revokedAt > 0 && claims.IssuedAt != nil && claims.IssuedAt.Unix() <= revokedAt {
				log.Info("rejected revoked session", slog.String("user_uid", claims.UserUID))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("session revoked"))
				return
			}

			ctx := context.WithValue(r.Context(), User, claims.Username)
			ctx = context.WithValue(ctx, UserUID, claims.UserUID)
			ctx = context.WithValue(ctx, Role, claims.Role)
			ctx = context.WithValue(ctx, Admin, claims.Admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
