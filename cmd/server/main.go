package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/coinledger/internal/adapter/feed"
	httpAdapter "github.com/iho/coinledger/internal/adapter/http"
	"github.com/iho/coinledger/internal/adapter/http/handler"
	"github.com/iho/coinledger/internal/adapter/http/middleware"
	"github.com/iho/coinledger/internal/adapter/marketdata"
	postgresRepo "github.com/iho/coinledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/coinledger/internal/adapter/repository/redis"
	"github.com/iho/coinledger/internal/infrastructure/auth"
	"github.com/iho/coinledger/internal/infrastructure/config"
	"github.com/iho/coinledger/internal/infrastructure/eventpublisher"
	"github.com/iho/coinledger/internal/infrastructure/logger"
	"github.com/iho/coinledger/internal/infrastructure/metrics"
	"github.com/iho/coinledger/internal/infrastructure/postgres"
	"github.com/iho/coinledger/internal/infrastructure/redis"
	"github.com/iho/coinledger/internal/usecase"
)

const (
	poolStatsInterval   = 15 * time.Second
	limiterCleanupEvery = time.Minute
	limiterMaxIdle      = 10 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "coinledger"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	m := metrics.New()

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
		Metrics:        m,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL, redis.Options{Metrics: m})
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	eventRepo := postgresRepo.NewLedgerEventRepository(pool)
	batchRepo := postgresRepo.NewBatchJobRepository(pool)
	addressRepo := postgresRepo.NewLinkedAddressRepository(pool)
	messageRepo := postgresRepo.NewMessageRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	// Market data clients
	mdOpts := marketdata.Options{Timeout: cfg.MarketHTTPTimeout, Logger: log, Metrics: m}
	ethereum, err := marketdata.DialEthereum(ctx, cfg.EthRPCURL, cfg.EtherscanURL, cfg.EtherscanAPIKey, mdOpts)
	if err != nil {
		return err
	}
	explorers := []usecase.AddressExplorer{
		marketdata.NewBitcoin(cfg.BlockCypherURL, cfg.BlockCypherToken, mdOpts),
		ethereum,
		marketdata.NewSolana(cfg.SolanaRPCURL, mdOpts),
	}

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, eventRepo, outboxRepo, auditRepo, idGen, retrier, m)
	accountUC := usecase.NewAccountUseCase(accountRepo, eventRepo, ledgerUC, m)
	batchUC := usecase.NewBatchUseCase(batchRepo, accountRepo, eventRepo, ledgerUC, usecase.BatchConfig{
		PageSize:    cfg.BatchPageSize,
		Concurrency: cfg.BatchConcurrency,
	}, log, m)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, eventRepo)
	supportUC := usecase.NewSupportUseCase(txManager, messageRepo, accountRepo, outboxRepo, idGen)
	marketUC := usecase.NewMarketUseCase(
		marketdata.NewCoinGecko(cfg.CoinGeckoURL, cfg.CoinGeckoAPIKey, mdOpts),
		explorers,
		redisRepo.NewCache(redisClient),
		cfg.MarketCacheTTL,
		log,
		m,
	)
	addressUC := usecase.NewAddressUseCase(addressRepo, marketUC, idGen, log)

	// Outbox fan-out: live feed plus NATS or the log
	hub := feed.NewHub(log, m, cfg.FeedAllowedOrigins...)
	publishers := eventpublisher.Fanout{hub}
	if cfg.NATSURL != "" {
		nc, js, err := eventpublisher.ConnectNATS(ctx, cfg.NATSURL, log)
		if err != nil {
			return err
		}
		defer nc.Close()
		if err := eventpublisher.EnsureStream(ctx, js, cfg.NATSStream, cfg.NATSSubjectPrefix); err != nil {
			return err
		}
		publishers = append(publishers, eventpublisher.NewJetStreamPublisher(js, cfg.NATSSubjectPrefix))
	} else {
		publishers = append(publishers, eventpublisher.NewLogPublisher(log))
	}
	outbox := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publishers,
		Logger:     log,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	limiter := newRateLimiter(cfg, m)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC),
		BatchHandler:          handler.NewBatchHandler(batchUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		AddressHandler:        handler.NewAddressHandler(addressUC),
		MessageHandler:        handler.NewMessageHandler(supportUC),
		MarketHandler:         handler.NewMarketHandler(marketUC),
		AuditHandler:          handler.NewAuditHandler(auditRepo),
		HealthHandler: handler.NewHealthHandler(
			handler.HealthCheck{Name: "postgres", Ping: pool.Ping},
			handler.HealthCheck{Name: "redis", Ping: redis.Ping(redisClient)},
		),
		Feed:             hub.ServeWS,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		TokenVerifier:    newTokenVerifier(cfg),
		RateLimiter:      limiter,
		Metrics:          m,
		MetricsHandler:   promhttp.Handler(),
		Logger:           log,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Bool("auth", cfg.AuthEnabled).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return ignoreCanceled(hub.Run(gctx)) })
	g.Go(func() error { return ignoreCanceled(outbox.Start(gctx)) })
	g.Go(func() error { return postgres.ReportPoolStats(gctx, pool, m, poolStatsInterval) })
	if limiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(limiterCleanupEvery)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if n := limiter.CleanupLimiters(limiterMaxIdle); n > 0 {
						log.Debug().Int("removed", n).Msg("rate limiter cleanup")
					}
				}
			}
		})
	}

	return g.Wait()
}

// newTokenVerifier returns nil unless authentication is enabled, which
// leaves the API open.
func newTokenVerifier(cfg *config.Config) middleware.TokenVerifier {
	if !cfg.AuthEnabled {
		return nil
	}
	return auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
}

func newRateLimiter(cfg *config.Config, m *metrics.Metrics) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
