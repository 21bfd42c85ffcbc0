package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/annuu1/finance-partner/internal/adapter/http/handler"
	"github.com/annuu1/finance-partner/internal/adapter/http/middleware"
	"github.com/annuu1/finance-partner/internal/infrastructure/metrics"
	"github.com/annuu1/finance-partner/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PartnerHandler     *handler.PartnerHandler
	SaleHandler        *handler.SaleHandler
	TransactionHandler *handler.TransactionHandler
	LedgerHandler      *handler.LedgerHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	Metrics            *metrics.Metrics
	Logger             zerolog.Logger
	RateLimit          float64
	RateBurst          int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.NewRecoveryMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Actor)

	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	if cfg.RateLimit > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore).Wrap)
		}

		r.Route("/partners", func(r chi.Router) {
			r.Post("/", cfg.PartnerHandler.Create)
			r.Get("/", cfg.PartnerHandler.List)
			r.Get("/{id}", cfg.PartnerHandler.Get)
			r.Get("/{id}/balance", cfg.PartnerHandler.GetBalance)
			r.Get("/{id}/balance/with/{otherID}", cfg.PartnerHandler.GetPairwiseBalance)
			r.Get("/{id}/transactions", cfg.TransactionHandler.ListByPartner)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", cfg.SaleHandler.Create)
			r.Get("/", cfg.SaleHandler.ListByMonth)
			r.Get("/summary", cfg.SaleHandler.SummarizeMonth)
			r.Get("/{id}", cfg.SaleHandler.Get)
			r.Put("/{id}", cfg.SaleHandler.Update)
			r.Delete("/{id}", cfg.SaleHandler.Delete)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.TransactionHandler.Create)
			r.Get("/{id}", cfg.TransactionHandler.Get)
			r.Put("/{id}", cfg.TransactionHandler.Update)
			r.Delete("/{id}", cfg.TransactionHandler.Delete)
			r.Post("/{id}/approve", cfg.TransactionHandler.Approve)
			r.Post("/{id}/reject", cfg.TransactionHandler.Reject)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Post("/reconcile", cfg.LedgerHandler.Reconcile)
			r.Get("/verify", cfg.LedgerHandler.Verify)
		})
	})

	return r
}
