package integration

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	adaptershttp "github.com/annuu1/finance-partner/internal/adapter/http"
	"github.com/annuu1/finance-partner/internal/adapter/http/handler"
	postgresrepo "github.com/annuu1/finance-partner/internal/adapter/repository/postgres"
	redisrepo "github.com/annuu1/finance-partner/internal/adapter/repository/redis"
	"github.com/annuu1/finance-partner/internal/domain"
	infraredis "github.com/annuu1/finance-partner/internal/infrastructure/redis"
	"github.com/annuu1/finance-partner/internal/usecase"
	"github.com/annuu1/finance-partner/tests/testutil"
)

// testEnv wires the full stack against the test database.
type testEnv struct {
	router           http.Handler
	partnerRepo      *postgresrepo.PartnerRepository
	pairwiseRepo     *postgresrepo.PairwiseRepository
	transactionRepo  *postgresrepo.TransactionRepository
	saleRepo         *postgresrepo.SaleRepository
	reconciliationUC *usecase.ReconciliationUseCase
	transactionUC    *usecase.TransactionUseCase
	saleUC           *usecase.SaleUseCase
}

func newTestEnv(t *testing.T, testDB *testutil.TestDB) *testEnv {
	t.Helper()

	ctx := context.Background()
	pool := testDB.Pool

	txManager := postgresrepo.NewTxManager(pool)
	partnerRepo := postgresrepo.NewPartnerRepository(pool)
	saleRepo := postgresrepo.NewSaleRepository(pool)
	transactionRepo := postgresrepo.NewTransactionRepository(pool)
	pairwiseRepo := postgresrepo.NewPairwiseRepository(pool)
	ledgerRepo := postgresrepo.NewLedgerRepository(pool)
	outboxRepo := postgresrepo.NewOutboxRepository(pool)
	auditRepo := postgresrepo.NewAuditRepository(pool)
	idGen := postgresrepo.NewULIDGenerator()
	retrier := postgresrepo.NewRetrier(zerolog.Nop())

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	cache := redisrepo.NewCache(redisClient)
	idempotencyStore := redisrepo.NewIdempotencyStore(redisClient)

	sinks := map[domain.TransactionDomain]usecase.BalanceSink{
		domain.DomainBusiness: usecase.NewAggregateBalanceSink(partnerRepo),
		domain.DomainPersonal: usecase.NewPairwiseBalanceSink(pairwiseRepo),
	}

	partnerUC := usecase.NewPartnerUseCase(partnerRepo, pairwiseRepo, idGen, cache)
	saleUC := usecase.NewSaleUseCase(txManager, saleRepo, partnerRepo, outboxRepo, auditRepo, idGen, cache, nil)
	transactionUC := usecase.NewTransactionUseCase(txManager, transactionRepo, partnerRepo, sinks, outboxRepo, auditRepo, idGen, cache, nil)
	reconciliationUC := usecase.NewReconciliationUseCase(txManager, ledgerRepo, partnerRepo, auditRepo, idGen, retrier, cache, nil)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		PartnerHandler:     handler.NewPartnerHandler(partnerUC),
		SaleHandler:        handler.NewSaleHandler(saleUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		LedgerHandler:      handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:   idempotencyStore,
		Logger:             zerolog.Nop(),
	})

	return &testEnv{
		router:           router,
		partnerRepo:      partnerRepo,
		pairwiseRepo:     pairwiseRepo,
		transactionRepo:  transactionRepo,
		saleRepo:         saleRepo,
		reconciliationUC: reconciliationUC,
		transactionUC:    transactionUC,
		saleUC:           saleUC,
	}
}

func mustSaleInput(t *testing.T, date string, partnerID *string, online, cash int64) usecase.CreateSaleInput {
	t.Helper()

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatalf("bad test date %s: %v", date, err)
	}

	return usecase.CreateSaleInput{
		SaleDate:     parsed,
		PartnerID:    partnerID,
		OnlineAmount: decimal.NewFromInt(online),
		CashAmount:   decimal.NewFromInt(cash),
	}
}
