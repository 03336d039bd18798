package entitlementservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/tapfolio/entitlement-service/internal/cache"
	"github.com/tapfolio/entitlement-service/internal/claims"
	"github.com/tapfolio/entitlement-service/internal/config"
	"github.com/tapfolio/entitlement-service/internal/events"
	"github.com/tapfolio/entitlement-service/internal/lib/jwt"
	"github.com/tapfolio/entitlement-service/internal/lib/sl"
	"github.com/tapfolio/entitlement-service/internal/migrations"
	authservice "github.com/tapfolio/entitlement-service/internal/services/auth"
	"github.com/tapfolio/entitlement-service/internal/services/authsync"
	entservice "github.com/tapfolio/entitlement-service/internal/services/entitlement"
	orderservice "github.com/tapfolio/entitlement-service/internal/services/order"
	planservice "github.com/tapfolio/entitlement-service/internal/services/plan"
	usageservice "github.com/tapfolio/entitlement-service/internal/services/usage"
	"github.com/tapfolio/entitlement-service/internal/storage/repository"
)

// App owns the HTTP server, the change-event consumers and the shared
// infrastructure handles.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	amqpConn *amqp.Connection
	amqpCh   *amqp.Channel
	hub      *entservice.Hub
	registry *authsync.Registry
}

// New assembles the full service: storage, cache, event feed, services,
// router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := events.Connect(cfg.RabbitMQ.AmqpURL, cfg.RabbitMQ.ConnectRetries, cfg.RabbitMQ.ConnectDelay)
	if err != nil {
		return nil, err
	}
	amqpCh, err := events.SetupChannel(amqpConn)
	if err != nil {
		return nil, err
	}
	feed := events.NewFeed(amqpCh)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewService(db, jwtMaker)
	claimStore := claims.NewStore(db, jwtMaker)

	entitlementService := entservice.NewService(db, db, db, db, cacheRedis, logger)
	hub := entservice.NewHub(entitlementService, logger)
	usageService := usageservice.NewService(db, logger)
	planService := planservice.NewService(db, entitlementService, logger)
	orderService := orderservice.NewService(db, feed, logger)

	registry := authsync.NewRegistry(claimStore, cacheRedis,
		authsync.SlogNotifier{Log: logger}, logger, cfg.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger,
		authService, registry, entitlementService, orderService,
		usageService, planService, cacheRedis, cfg.CheckoutWebhookSecret)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
		amqpCh:   amqpCh,
		hub:      hub,
		registry: registry,
	}, nil
}

// Run starts the change-event consumers and the HTTP server, then blocks
// until the context is cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	go func() {
		err := events.Consume(ctx, a.amqpCh, events.OrdersQueue, func(body []byte) error {
			var ev events.OrderEvent
			if err := json.Unmarshal(body, &ev); err != nil {
				a.logger.Error("malformed order event, dropping", sl.Err(err))
				return nil
			}
			return a.hub.HandleOrderEvent(ctx, ev)
		})
		if err != nil {
			a.logger.Error("order event consumer stopped", sl.Err(err))
		}
	}()

	go func() {
		err := events.Consume(ctx, a.amqpCh, events.ProfilesQueue, func(body []byte) error {
			var ev events.ProfileEvent
			if err := json.Unmarshal(body, &ev); err != nil {
				a.logger.Error("malformed profile event, dropping", sl.Err(err))
				return nil
			}
			return a.registry.HandleProfileEvent(ctx, ev)
		})
		if err != nil {
			a.logger.Error("profile event consumer stopped", sl.Err(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.amqpCh.Close()
		_ = a.amqpConn.Close()
		_ = a.db.DB.Close()
		return err
	}
}
