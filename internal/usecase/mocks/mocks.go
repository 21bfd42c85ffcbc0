package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
)

// MockPartnerRepository is a mock implementation of PartnerRepository.
type MockPartnerRepository struct {
	mu       sync.RWMutex
	partners map[string]*domain.Partner

	CreateFunc           func(ctx context.Context, partner *domain.Partner) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Partner, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Partner, error)
	AdjustBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Partner, error)
}

func NewMockPartnerRepository() *MockPartnerRepository {
	return &MockPartnerRepository{
		partners: make(map[string]*domain.Partner),
	}
}

// Add seeds a partner directly.
func (m *MockPartnerRepository) Add(partner *domain.Partner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partners[partner.ID] = partner
}

func (m *MockPartnerRepository) Create(ctx context.Context, partner *domain.Partner) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, partner)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partners[partner.ID] = partner
	return nil
}

func (m *MockPartnerRepository) GetByID(ctx context.Context, id string) (*domain.Partner, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.partners[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPartnerNotFound
}

func (m *MockPartnerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Partner, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockPartnerRepository) AdjustBalance(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error {
	if m.AdjustBalanceFunc != nil {
		return m.AdjustBalanceFunc(ctx, tx, id, delta, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partners[id]
	if !ok {
		return domain.ErrPartnerNotFound
	}
	p.Balance = p.Balance.Add(delta)
	p.UpdatedAt = updatedAt
	return nil
}

func (m *MockPartnerRepository) List(ctx context.Context, limit, offset int) ([]*domain.Partner, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var partners []*domain.Partner
	for _, p := range m.partners {
		partners = append(partners, p)
	}
	return partners, nil
}

// Balance returns a seeded partner's current balance.
func (m *MockPartnerRepository) Balance(id string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.partners[id]; ok {
		return p.Balance
	}
	return decimal.Zero
}

// MockSaleRepository is a mock implementation of SaleRepository.
type MockSaleRepository struct {
	mu    sync.RWMutex
	sales map[string]*domain.SaleEntry

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, sale *domain.SaleEntry) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.SaleEntry, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.SaleEntry, error)
	ExistsForDateFunc    func(ctx context.Context, tx usecase.Transaction, date time.Time) (bool, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, sale *domain.SaleEntry) error
	DeleteFunc           func(ctx context.Context, tx usecase.Transaction, id string) error
}

func NewMockSaleRepository() *MockSaleRepository {
	return &MockSaleRepository{
		sales: make(map[string]*domain.SaleEntry),
	}
}

func (m *MockSaleRepository) Create(ctx context.Context, tx usecase.Transaction, sale *domain.SaleEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, sale)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales[sale.ID] = sale
	return nil
}

func (m *MockSaleRepository) GetByID(ctx context.Context, id string) (*domain.SaleEntry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sales[id]; ok {
		return s, nil
	}
	return nil, domain.ErrSaleNotFound
}

func (m *MockSaleRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.SaleEntry, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockSaleRepository) ExistsForDate(ctx context.Context, tx usecase.Transaction, date time.Time) (bool, error) {
	if m.ExistsForDateFunc != nil {
		return m.ExistsForDateFunc(ctx, tx, date)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sales {
		if s.SaleDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockSaleRepository) Update(ctx context.Context, tx usecase.Transaction, sale *domain.SaleEntry) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, sale)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sales[sale.ID]; !ok {
		return domain.ErrSaleNotFound
	}
	m.sales[sale.ID] = sale
	return nil
}

func (m *MockSaleRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sales[id]; !ok {
		return domain.ErrSaleNotFound
	}
	delete(m.sales, id)
	return nil
}

func (m *MockSaleRepository) ListByMonth(ctx context.Context, year int, month time.Month) ([]*domain.SaleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sales []*domain.SaleEntry
	for _, s := range m.sales {
		if s.SaleDate.Year() == year && s.SaleDate.Month() == month {
			sales = append(sales, s)
		}
	}
	return sales, nil
}

func (m *MockSaleRepository) SummarizeMonth(ctx context.Context, year int, month time.Month) (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	sales, _ := m.ListByMonth(ctx, year, month)
	total, online, cash := decimal.Zero, decimal.Zero, decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Amount)
		online = online.Add(s.OnlineAmount)
		cash = cash.Add(s.CashAmount)
	}
	return total, online, cash, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns map[string]*domain.Transaction

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Transaction, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error
	DeleteFunc           func(ctx context.Context, tx usecase.Transaction, id string) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txns: make(map[string]*domain.Transaction),
	}
}

// Add seeds a transaction directly.
func (m *MockTransactionRepository) Add(txn *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.ID] = txn
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.txns[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[txn.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	m.txns[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.txns, id)
	return nil
}

func (m *MockTransactionRepository) ListByPartner(ctx context.Context, partnerID string, dom domain.TransactionDomain, status *domain.TransactionStatus, limit, offset int) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var txns []*domain.Transaction
	for _, t := range m.txns {
		if t.Domain != dom {
			continue
		}
		if t.FromPartnerID != partnerID && t.ToPartnerID != partnerID {
			continue
		}
		if status != nil && t.Status != *status {
			continue
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// MockPairwiseRepository is a mock implementation of PairwiseRepository.
type MockPairwiseRepository struct {
	mu    sync.RWMutex
	pairs map[string]*domain.PairwiseBalance

	GetFunc        func(ctx context.Context, partnerA, partnerB string) (*domain.PairwiseBalance, error)
	ApplyDeltaFunc func(ctx context.Context, tx usecase.Transaction, partnerA, partnerB string, delta decimal.Decimal, updatedAt time.Time) error
}

func NewMockPairwiseRepository() *MockPairwiseRepository {
	return &MockPairwiseRepository{
		pairs: make(map[string]*domain.PairwiseBalance),
	}
}

func pairKey(a, b string) string {
	lo, hi := domain.CanonicalPair(a, b)
	return lo + "|" + hi
}

func (m *MockPairwiseRepository) Get(ctx context.Context, partnerA, partnerB string) (*domain.PairwiseBalance, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, partnerA, partnerB)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.pairs[pairKey(partnerA, partnerB)]; ok {
		return p, nil
	}
	return nil, nil
}

func (m *MockPairwiseRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, partnerA, partnerB string, delta decimal.Decimal, updatedAt time.Time) error {
	if m.ApplyDeltaFunc != nil {
		return m.ApplyDeltaFunc(ctx, tx, partnerA, partnerB, delta, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey(partnerA, partnerB)
	lo, hi := domain.CanonicalPair(partnerA, partnerB)
	if p, ok := m.pairs[key]; ok {
		p.BalanceAmount = p.BalanceAmount.Add(delta)
		p.UpdatedAt = updatedAt
		return nil
	}
	m.pairs[key] = &domain.PairwiseBalance{
		PartnerA:      lo,
		PartnerB:      hi,
		BalanceAmount: delta,
		CreatedAt:     updatedAt,
		UpdatedAt:     updatedAt,
	}
	return nil
}

// Balance returns the stored pair balance, zero when absent.
func (m *MockPairwiseRepository) Balance(a, b string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.pairs[pairKey(a, b)]; ok {
		return p.BalanceAmount
	}
	return decimal.Zero
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	ResetAllBalancesFunc         func(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) error
	ApplySaleTotalsFunc          func(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) error
	ApplyApprovedBusinessNetFunc func(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) error
	RebuildPairwiseBalancesFunc  func(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) error
	BalanceDriftFunc             func(ctx context.Context) ([]usecase.BalanceDrift, error)

	Calls []string
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) ResetAllBalances(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) error {
	m.Calls = append(m.Calls, "reset")
	if m.ResetAllBalancesFunc != nil {
		return m.ResetAllBalancesFunc(ctx, tx, updatedAt)
	}
	return nil
}

func (m *MockLedgerRepository) ApplySaleTotals(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) error {
	m.Calls = append(m.Calls, "sales")
	if m.ApplySaleTotalsFunc != nil {
		return m.ApplySaleTotalsFunc(ctx, tx, updatedAt)
	}
	return nil
}

func (m *MockLedgerRepository) ApplyApprovedBusinessNet(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) error {
	m.Calls = append(m.Calls, "business")
	if m.ApplyApprovedBusinessNetFunc != nil {
		return m.ApplyApprovedBusinessNetFunc(ctx, tx, updatedAt)
	}
	return nil
}

func (m *MockLedgerRepository) RebuildPairwiseBalances(ctx context.Context, tx usecase.Transaction, updatedAt time.Time) error {
	m.Calls = append(m.Calls, "pairwise")
	if m.RebuildPairwiseBalancesFunc != nil {
		return m.RebuildPairwiseBalancesFunc(ctx, tx, updatedAt)
	}
	return nil
}

func (m *MockLedgerRepository) BalanceDrift(ctx context.Context) ([]usecase.BalanceDrift, error) {
	if m.BalanceDriftFunc != nil {
		return m.BalanceDriftFunc(ctx)
	}
	return nil, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	Events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var events []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published {
			events = append(events, e)
		}
		if len(events) == limit {
			break
		}
	}
	return events, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return nil
}

// EventTypes returns the recorded event types in order.
func (m *MockOutboxRepository) EventTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.EventType
	}
	return types
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	Logs []*domain.AuditLog
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Logs, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc             func(ctx context.Context) (usecase.Transaction, error)
	BeginSerializableFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

func (m *MockTransactionManager) BeginSerializable(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginSerializableFunc != nil {
		return m.BeginSerializableFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%03d", m.counter)
}

// MockRetrier runs the operation once, without backoff.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}
