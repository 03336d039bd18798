package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tapfolio/entitlement-service/internal/http/response"
)

// RequireAdmin gates catalog administration behind the admin claim carried
// by the session token. The claim, not the profile role field, is the
// authority.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, ok := r.Context().Value(Admin).(bool)
			if !ok || !admin {
				log.Info("rejected non-admin request",
					slog.String("path", r.URL.Path))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("admin privileges required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
