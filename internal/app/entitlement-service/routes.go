// Package entitlementservice wires the HTTP surface and background consumers
// of the entitlement service.
package entitlementservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/tapfolio/entitlement-service/internal/cache"
	"github.com/tapfolio/entitlement-service/internal/http/handlers/auth/login"
	"github.com/tapfolio/entitlement-service/internal/http/handlers/auth/register"
	entget "github.com/tapfolio/entitlement-service/internal/http/handlers/entitlement/get"
	entrefresh "github.com/tapfolio/entitlement-service/internal/http/handlers/entitlement/refresh"
	"github.com/tapfolio/entitlement-service/internal/http/handlers/health"
	"github.com/tapfolio/entitlement-service/internal/http/handlers/order/orderlist"
	"github.com/tapfolio/entitlement-service/internal/http/handlers/order/orderwebhook"
	"github.com/tapfolio/entitlement-service/internal/http/handlers/plan/plandeactivate"
	"github.com/tapfolio/entitlement-service/internal/http/handlers/plan/planlist"
	"github.com/tapfolio/entitlement-service/internal/http/handlers/plan/planupsert"
	"github.com/tapfolio/entitlement-service/internal/http/handlers/usage/contactadd"
	"github.com/tapfolio/entitlement-service/internal/http/handlers/usage/contactremove"
	"github.com/tapfolio/entitlement-service/internal/http/handlers/usage/exportadd"
	"github.com/tapfolio/entitlement-service/internal/http/handlers/usage/stats"
	"github.com/tapfolio/entitlement-service/internal/http/middlewarectx"
	authservice "github.com/tapfolio/entitlement-service/internal/services/auth"
	"github.com/tapfolio/entitlement-service/internal/services/authsync"
	entservice "github.com/tapfolio/entitlement-service/internal/services/entitlement"
	orderservice "github.com/tapfolio/entitlement-service/internal/services/order"
	planservice "github.com/tapfolio/entitlement-service/internal/services/plan"
	usageservice "github.com/tapfolio/entitlement-service/internal/services/usage"
)

// RegisterRoutes mounts every endpoint of the service on the router.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.Service,
	registry *authsync.Registry,
	entitlementService *entservice.Service,
	orderService *orderservice.Service,
	usageService *usageservice.Service,
	planService *planservice.Service,
	cacheRedis *cache.Cache,
	webhookSecret string) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService, registry).ServeHTTP)

		// Checkout reports orders here; authenticated by HMAC signature,
		// not by a user session.
		r.Post("/orders/webhook", orderwebhook.New(logger, orderService, webhookSecret).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, cacheRedis, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/entitlements", entget.New(logger, entitlementService).ServeHTTP)
			r.Post("/entitlements/refresh", entrefresh.New(logger, entitlementService).ServeHTTP)

			r.Get("/orders", orderlist.New(logger, orderService).ServeHTTP)

			r.Get("/usage", stats.New(logger, usageService).ServeHTTP)
			r.Post("/usage/contacts", contactadd.New(logger, usageService, entitlementService).ServeHTTP)
			r.Delete("/usage/contacts", contactremove.New(logger, usageService).ServeHTTP)
			r.Post("/usage/exports", exportadd.New(logger, usageService, entitlementService).ServeHTTP)

			r.Get("/plans", planlist.New(logger, planService).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Post("/admin/plans", planupsert.New(logger, planService).ServeHTTP)
				r.Delete("/admin/plans/{id}", plandeactivate.New(logger, planService).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
