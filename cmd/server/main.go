package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/annuu1/finance-partner/internal/adapter/http"
	"github.com/annuu1/finance-partner/internal/adapter/http/handler"
	postgresRepo "github.com/annuu1/finance-partner/internal/adapter/repository/postgres"
	redisRepo "github.com/annuu1/finance-partner/internal/adapter/repository/redis"
	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/infrastructure/config"
	"github.com/annuu1/finance-partner/internal/infrastructure/logger"
	"github.com/annuu1/finance-partner/internal/infrastructure/metrics"
	"github.com/annuu1/finance-partner/internal/infrastructure/postgres"
	"github.com/annuu1/finance-partner/internal/infrastructure/redis"
	"github.com/annuu1/finance-partner/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	txManager := postgresRepo.NewTxManager(pool)
	partnerRepo := postgresRepo.NewPartnerRepository(pool)
	saleRepo := postgresRepo.NewSaleRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	pairwiseRepo := postgresRepo.NewPairwiseRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Business transactions move the aggregate partner balance; personal
	// ones move only the pairwise row between the two partners.
	sinks := map[domain.TransactionDomain]usecase.BalanceSink{
		domain.DomainBusiness: usecase.NewAggregateBalanceSink(partnerRepo),
		domain.DomainPersonal: usecase.NewPairwiseBalanceSink(pairwiseRepo),
	}

	partnerUC := usecase.NewPartnerUseCase(partnerRepo, pairwiseRepo, idGen, cache)
	saleUC := usecase.NewSaleUseCase(txManager, saleRepo, partnerRepo, outboxRepo, auditRepo, idGen, cache, m)
	transactionUC := usecase.NewTransactionUseCase(txManager, transactionRepo, partnerRepo, sinks, outboxRepo, auditRepo, idGen, cache, m)
	reconciliationUC := usecase.NewReconciliationUseCase(txManager, ledgerRepo, partnerRepo, auditRepo, idGen, retrier, cache, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PartnerHandler:     handler.NewPartnerHandler(partnerUC),
		SaleHandler:        handler.NewSaleHandler(saleUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		LedgerHandler:      handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:   idempotencyStore,
		Metrics:            m,
		Logger:             log,
		RateLimit:          cfg.RateLimit,
		RateBurst:          cfg.RateBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
