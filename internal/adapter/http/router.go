package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/coinledger/internal/adapter/http/handler"
	"github.com/iho/coinledger/internal/adapter/http/middleware"
	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/metrics"
	"github.com/iho/coinledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler        *handler.AccountHandler
	LedgerHandler         *handler.LedgerHandler
	BatchHandler          *handler.BatchHandler
	ReconciliationHandler *handler.ReconciliationHandler
	AddressHandler        *handler.AddressHandler
	MessageHandler        *handler.MessageHandler
	MarketHandler         *handler.MarketHandler
	AuditHandler          *handler.AuditHandler
	HealthHandler         *handler.HealthHandler

	// Feed serves the live WebSocket stream. Optional.
	Feed http.HandlerFunc

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// TokenVerifier enables bearer authentication when set. Without it every
	// request is served as anonymous and use cases skip ownership checks.
	TokenVerifier middleware.TokenVerifier

	RateLimiter    *middleware.RateLimiter
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	adminOnly := func(next http.Handler) http.Handler { return next }
	if cfg.TokenVerifier != nil {
		adminOnly = middleware.RequireRole(domain.RoleAdmin)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Browsers cannot set headers on a WebSocket handshake, so the feed
		// authenticates from the query string and skips idempotency.
		if cfg.Feed != nil {
			r.Group(func(r chi.Router) {
				if cfg.TokenVerifier != nil {
					r.Use(middleware.QueryTokenAuth(cfg.TokenVerifier))
				}
				r.Get("/feed", cfg.Feed)
			})
		}

		r.Group(func(r chi.Router) {
			if cfg.TokenVerifier != nil {
				r.Use(middleware.AuthMiddleware(cfg.TokenVerifier, cfg.Metrics))
			}
			// Keys are scoped per caller, so this runs after authentication.
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
			}

			registerUserRoutes(r, cfg, adminOnly)

			r.Route("/admin", func(r chi.Router) {
				r.Use(adminOnly)
				registerAdminRoutes(r, cfg)
			})
		})
	})

	return r
}

func registerUserRoutes(r chi.Router, cfg RouterConfig, adminOnly func(http.Handler) http.Handler) {
	// Accounts
	r.Route("/accounts", func(r chi.Router) {
		r.With(adminOnly).Get("/", cfg.AccountHandler.List)
		r.Get("/{id}", cfg.AccountHandler.Get)
		r.Get("/{id}/ledger-events", cfg.LedgerHandler.ListByAccount)
		r.With(adminOnly).Post("/{id}/adjust-profit", cfg.LedgerHandler.AdjustProfit)

		r.Route("/{id}/addresses", func(r chi.Router) {
			r.Post("/", cfg.AddressHandler.Link)
			r.Get("/", cfg.AddressHandler.List)
			r.Delete("/", cfg.AddressHandler.UnlinkAll)
			r.Delete("/{addressId}", cfg.AddressHandler.Unlink)
			r.Post("/{addressId}/refresh", cfg.AddressHandler.Refresh)
		})

		r.Post("/{id}/messages", cfg.MessageHandler.Send)
		r.Get("/{id}/messages", cfg.MessageHandler.Conversation)
	})

	// Ledger events
	r.Route("/ledger-events", func(r chi.Router) {
		r.Post("/", cfg.LedgerHandler.Create)
		r.Get("/", cfg.LedgerHandler.List)
		r.Get("/{id}", cfg.LedgerHandler.Get)
		r.Post("/{id}/withdrawal-request", cfg.LedgerHandler.RequestWithdrawal)
		r.With(adminOnly).Post("/{id}/approve", cfg.LedgerHandler.Approve)
		r.With(adminOnly).Post("/{id}/reject", cfg.LedgerHandler.Reject)
		r.With(adminOnly).Post("/{id}/withdraw", cfg.LedgerHandler.Withdraw)
	})

	// Market data
	r.Route("/market", func(r chi.Router) {
		r.Get("/prices", cfg.MarketHandler.Prices)
		r.Get("/chart/{symbol}", cfg.MarketHandler.Chart)
		r.Get("/addresses/{chain}/{address}", cfg.MarketHandler.Activity)
	})
}

func registerAdminRoutes(r chi.Router, cfg RouterConfig) {
	// Bulk jobs
	r.Post("/global-profit", cfg.BatchHandler.Start(domain.BatchKindGlobalProfit))
	r.Post("/global-fee", cfg.BatchHandler.Start(domain.BatchKindGlobalFee))
	r.Post("/reset-test", cfg.BatchHandler.Start(domain.BatchKindResetTest))
	r.Post("/reset-all", cfg.BatchHandler.Start(domain.BatchKindResetAll))
	r.Post("/bulk-approve", cfg.BatchHandler.Start(domain.BatchKindBulkApprove))
	r.Post("/bulk-reject", cfg.BatchHandler.Start(domain.BatchKindBulkReject))
	r.Delete("/ledger-events", cfg.BatchHandler.Purge)

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", cfg.BatchHandler.List)
		r.Get("/{id}", cfg.BatchHandler.Get)
		r.Get("/{id}/items", cfg.BatchHandler.ListItems)
		r.Post("/{id}/resume", cfg.BatchHandler.Resume)
	})

	// Account administration
	r.Route("/accounts/{id}", func(r chi.Router) {
		r.Put("/balance", cfg.AccountHandler.SetBalance)
		r.Put("/test-flag", cfg.AccountHandler.SetTestFlag)
		r.Post("/reset", cfg.AccountHandler.Reset)
		r.Get("/reconcile", cfg.ReconciliationHandler.Account)
		r.Post("/messages", cfg.MessageHandler.Reply)
	})
	r.Get("/reconciliation", cfg.ReconciliationHandler.Report)

	// Support inbox
	r.Get("/messages", cfg.MessageHandler.ListAll)
	r.Delete("/messages/{id}", cfg.MessageHandler.Delete)

	r.Get("/audit-logs", cfg.AuditHandler.List)
}
