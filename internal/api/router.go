package api

import (
	"github.com/ayo6706/payout-service/internal/api/handler"
	"github.com/ayo6706/payout-service/internal/api/middleware"
	"github.com/ayo6706/payout-service/internal/api/spec"
	"github.com/ayo6706/payout-service/internal/config"
	"github.com/ayo6706/payout-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type Router struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *pgxpool.Pool
	redis     redis.Cmdable
	payoutSvc *service.PayoutService
}

func NewRouter(cfg *config.Config, logger *zap.Logger, db *pgxpool.Pool, redis redis.Cmdable, payoutSvc *service.PayoutService) *Router {
	return &Router{cfg: cfg, logger: logger, db: db, redis: redis, payoutSvc: payoutSvc}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))

	healthHandler := handler.NewHealthHandler(api.db, api.redis)
	payoutHandler := handler.NewPayoutHandler(api.payoutSvc)

	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	r.Route("/api/payouts", func(r chi.Router) {
		r.Post("/", payoutHandler.CreatePayout)
		r.Get("/", payoutHandler.ListPayouts)
		r.Get("/{id}", payoutHandler.GetPayout)

		// Admin-only mutations; the management UI writes through these.
		r.Group(func(r chi.Router) {
			if !api.cfg.AuthDisabled {
				r.Use(middleware.AuthMiddleware)
				r.Use(middleware.RequireRole("admin"))
			}
			r.Patch("/{id}", payoutHandler.UpdatePayout)
			r.Delete("/{id}", payoutHandler.DeletePayout)
		})
	})

	return r
}
