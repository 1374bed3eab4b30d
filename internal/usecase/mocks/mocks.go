package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
)

// MockAccountRepository is an in-memory AccountRepository. It hands out
// copies so callers only change stored state through Update.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateIfNotExistsFunc func(ctx context.Context, account *domain.Account) (*domain.Account, error)
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error)
	UpdateFunc            func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	ListIDsAfterFunc      func(ctx context.Context, afterID string, testOnly bool, limit int) ([]string, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Seed stores accounts as-is.
func (m *MockAccountRepository) Seed(accounts ...*domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range accounts {
		m.accounts[a.ID] = a.Clone()
	}
}

// Snapshot returns a copy of the stored account, or nil.
func (m *MockAccountRepository) Snapshot(id string) *domain.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc.Clone()
	}
	return nil
}

func (m *MockAccountRepository) CreateIfNotExists(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if m.CreateIfNotExistsFunc != nil {
		return m.CreateIfNotExistsFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.accounts[account.ID]; ok {
		return existing.Clone(), nil
	}
	m.accounts[account.ID] = account.Clone()
	return account.Clone(), nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	if acc := m.Snapshot(id); acc != nil {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.accounts[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Version = stored.Version + 1
	m.accounts[account.ID] = account.Clone()
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.sortedIDs("", false)
	var accounts []*domain.Account
	for _, id := range page(ids, limit, offset) {
		accounts = append(accounts, m.accounts[id].Clone())
	}
	return accounts, nil
}

func (m *MockAccountRepository) ListIDsAfter(ctx context.Context, afterID string, testOnly bool, limit int) ([]string, error) {
	if m.ListIDsAfterFunc != nil {
		return m.ListIDsAfterFunc(ctx, afterID, testOnly, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return page(m.sortedIDs(afterID, testOnly), limit, 0), nil
}

func (m *MockAccountRepository) sortedIDs(afterID string, testOnly bool) []string {
	var ids []string
	for id, acc := range m.accounts {
		if id <= afterID || (testOnly && !acc.TestFlag) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MockLedgerEventRepository is an in-memory LedgerEventRepository whose
// UpdateStatus is a real compare-and-set.
type MockLedgerEventRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.LedgerEvent

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, event *domain.LedgerEvent) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.LedgerEvent, error)
	UpdateStatusFunc        func(ctx context.Context, tx usecase.Transaction, id string, from, to domain.EventStatus, updatedAt time.Time) error
	ListFunc                func(ctx context.Context, filter domain.LedgerEventFilter) ([]*domain.LedgerEvent, error)
	ListPendingIDsAfterFunc func(ctx context.Context, afterID string, limit int) ([]string, error)
	DeleteAllFunc           func(ctx context.Context, tx usecase.Transaction) (int64, error)
}

func NewMockLedgerEventRepository() *MockLedgerEventRepository {
	return &MockLedgerEventRepository{
		events: make(map[string]*domain.LedgerEvent),
	}
}

// Seed stores events as-is.
func (m *MockLedgerEventRepository) Seed(events ...*domain.LedgerEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range events {
		c := *e
		m.events[e.ID] = &c
	}
}

// All returns copies of every stored event ordered by ID.
func (m *MockLedgerEventRepository) All() []*domain.LedgerEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filter(func(*domain.LedgerEvent) bool { return true })
}

func (m *MockLedgerEventRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.LedgerEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.Seed(event)
	return nil
}

func (m *MockLedgerEventRepository) GetByID(ctx context.Context, id string) (*domain.LedgerEvent, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.events[id]; ok {
		c := *e
		return &c, nil
	}
	return nil, domain.ErrLedgerEventNotFound
}

func (m *MockLedgerEventRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LedgerEvent, error) {
	return m.GetByID(ctx, id)
}

func (m *MockLedgerEventRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, from, to domain.EventStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, from, to, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return domain.ErrLedgerEventNotFound
	}
	if e.Status != from {
		return domain.ErrStatusConflict
	}
	e.Status = to
	e.UpdatedAt = updatedAt
	return nil
}

func (m *MockLedgerEventRepository) List(ctx context.Context, filter domain.LedgerEventFilter) ([]*domain.LedgerEvent, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := m.filter(func(e *domain.LedgerEvent) bool {
		return (filter.AccountID == "" || e.AccountID == filter.AccountID) &&
			(filter.Status == "" || e.Status == filter.Status) &&
			(filter.Kind == "" || e.Kind == filter.Kind)
	})
	if filter.Offset >= len(events) {
		return nil, nil
	}
	events = events[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(events) {
		events = events[:filter.Limit]
	}
	return events, nil
}

func (m *MockLedgerEventRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.LedgerEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filter(func(e *domain.LedgerEvent) bool { return e.AccountID == accountID }), nil
}

func (m *MockLedgerEventRepository) ListPendingIDsAfter(ctx context.Context, afterID string, limit int) ([]string, error) {
	if m.ListPendingIDsAfterFunc != nil {
		return m.ListPendingIDsAfterFunc(ctx, afterID, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, e := range m.filter(func(e *domain.LedgerEvent) bool {
		return e.Status == domain.EventStatusPending && e.ID > afterID
	}) {
		ids = append(ids, e.ID)
	}
	return page(ids, limit, 0), nil
}

func (m *MockLedgerEventRepository) HasPendingWithdrawal(ctx context.Context, tx usecase.Transaction, sourceEventID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.events {
		if e.Kind == domain.EventKindWithdraw && e.Status == domain.EventStatusPending && e.SourceEventID == sourceEventID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockLedgerEventRepository) DeleteAll(ctx context.Context, tx usecase.Transaction) (int64, error) {
	if m.DeleteAllFunc != nil {
		return m.DeleteAllFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.events))
	m.events = make(map[string]*domain.LedgerEvent)
	return n, nil
}

func (m *MockLedgerEventRepository) DeleteByAccount(ctx context.Context, tx usecase.Transaction, accountID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.events {
		if e.AccountID == accountID {
			delete(m.events, id)
			n++
		}
	}
	return n, nil
}

func (m *MockLedgerEventRepository) filter(keep func(*domain.LedgerEvent) bool) []*domain.LedgerEvent {
	var events []*domain.LedgerEvent
	for _, e := range m.events {
		if keep(e) {
			c := *e
			events = append(events, &c)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events
}

// MockBatchJobRepository is an in-memory BatchJobRepository.
type MockBatchJobRepository struct {
	mu    sync.RWMutex
	jobs  map[string]*domain.BatchJob
	items map[string]map[string]*domain.BatchItem

	UpdateFunc     func(ctx context.Context, job *domain.BatchJob) error
	RecordItemFunc func(ctx context.Context, tx usecase.Transaction, item *domain.BatchItem) (bool, error)
}

func NewMockBatchJobRepository() *MockBatchJobRepository {
	return &MockBatchJobRepository{
		jobs:  make(map[string]*domain.BatchJob),
		items: make(map[string]map[string]*domain.BatchItem),
	}
}

func (m *MockBatchJobRepository) Create(ctx context.Context, tx usecase.Transaction, job *domain.BatchJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *job
	m.jobs[job.ID] = &c
	return nil
}

func (m *MockBatchJobRepository) GetByID(ctx context.Context, id string) (*domain.BatchJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if j, ok := m.jobs[id]; ok {
		c := *j
		return &c, nil
	}
	return nil, domain.ErrBatchJobNotFound
}

func (m *MockBatchJobRepository) Update(ctx context.Context, job *domain.BatchJob) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, job)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return domain.ErrBatchJobNotFound
	}
	c := *job
	m.jobs[job.ID] = &c
	return nil
}

func (m *MockBatchJobRepository) List(ctx context.Context, limit, offset int) ([]*domain.BatchJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var jobs []*domain.BatchJob
	for _, j := range m.jobs {
		c := *j
		jobs = append(jobs, &c)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].ID > jobs[k].ID })
	return jobs, nil
}

func (m *MockBatchJobRepository) RecordItem(ctx context.Context, tx usecase.Transaction, item *domain.BatchItem) (bool, error) {
	if m.RecordItemFunc != nil {
		return m.RecordItemFunc(ctx, tx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items[item.JobID] == nil {
		m.items[item.JobID] = make(map[string]*domain.BatchItem)
	}
	if _, ok := m.items[item.JobID][item.TargetID]; ok {
		return false, nil
	}
	c := *item
	m.items[item.JobID][item.TargetID] = &c
	return true, nil
}

func (m *MockBatchJobRepository) HasItem(ctx context.Context, tx usecase.Transaction, jobID, targetID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[jobID][targetID]
	return ok, nil
}

func (m *MockBatchJobRepository) CountItems(ctx context.Context, jobID string) (map[domain.BatchOutcome]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[domain.BatchOutcome]int)
	for _, item := range m.items[jobID] {
		counts[item.Outcome]++
	}
	return counts, nil
}

func (m *MockBatchJobRepository) ListItems(ctx context.Context, jobID string, limit, offset int) ([]*domain.BatchItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []*domain.BatchItem
	for _, item := range m.items[jobID] {
		c := *item
		items = append(items, &c)
	}
	sort.Slice(items, func(i, k int) bool { return items[i].TargetID < items[k].TargetID })
	return items, nil
}

// MockLinkedAddressRepository is an in-memory LinkedAddressRepository.
type MockLinkedAddressRepository struct {
	mu        sync.RWMutex
	addresses map[string]*domain.LinkedAddress

	UpdateBalanceFunc func(ctx context.Context, id string, balance, balanceUSD decimal.Decimal, updatedAt time.Time) error
}

func NewMockLinkedAddressRepository() *MockLinkedAddressRepository {
	return &MockLinkedAddressRepository{
		addresses: make(map[string]*domain.LinkedAddress),
	}
}

func (m *MockLinkedAddressRepository) Create(ctx context.Context, address *domain.LinkedAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *address
	m.addresses[address.ID] = &c
	return nil
}

func (m *MockLinkedAddressRepository) GetByID(ctx context.Context, id string) (*domain.LinkedAddress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.addresses[id]; ok {
		c := *a
		return &c, nil
	}
	return nil, domain.ErrAddressNotFound
}

func (m *MockLinkedAddressRepository) ListByUser(ctx context.Context, userID string) ([]*domain.LinkedAddress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LinkedAddress
	for _, a := range m.addresses {
		if a.UserID == userID {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (m *MockLinkedAddressRepository) UpdateBalance(ctx context.Context, id string, balance, balanceUSD decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, id, balance, balanceUSD, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.addresses[id]
	if !ok {
		return domain.ErrAddressNotFound
	}
	a.Balance = balance
	a.BalanceUSD = balanceUSD
	a.UpdatedAt = updatedAt
	return nil
}

func (m *MockLinkedAddressRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.addresses[id]; !ok {
		return domain.ErrAddressNotFound
	}
	delete(m.addresses, id)
	return nil
}

func (m *MockLinkedAddressRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, a := range m.addresses {
		if a.UserID == userID {
			delete(m.addresses, id)
			n++
		}
	}
	return n, nil
}

// MockMessageRepository is an in-memory MessageRepository.
type MockMessageRepository struct {
	mu       sync.RWMutex
	messages map[string]*domain.SupportMessage
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		messages: make(map[string]*domain.SupportMessage),
	}
}

func (m *MockMessageRepository) Create(ctx context.Context, tx usecase.Transaction, message *domain.SupportMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *message
	m.messages[message.ID] = &c
	return nil
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id string) (*domain.SupportMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if msg, ok := m.messages[id]; ok {
		c := *msg
		return &c, nil
	}
	return nil, domain.ErrMessageNotFound
}

func (m *MockMessageRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.SupportMessage, error) {
	all, _ := m.List(ctx, 0, 0)
	var out []*domain.SupportMessage
	for _, msg := range all {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *MockMessageRepository) List(ctx context.Context, limit, offset int) ([]*domain.SupportMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.SupportMessage
	for _, msg := range m.messages {
		c := *msg
		out = append(out, &c)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (m *MockMessageRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.messages, id)
	return nil
}

// MockOutboxRepository records outbox rows in memory.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

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
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
		}
	}
	return page(out, limit, 0), nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
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

// EventTypes returns the event types recorded so far, in order.
func (m *MockOutboxRepository) EventTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]string, 0, len(m.events))
	for _, e := range m.events {
		types = append(types, e.EventType)
	}
	return types
}

// MockAuditRepository records audit rows in memory.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.logs {
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu      sync.Mutex
	commits int
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{
		CommitFunc: func(context.Context) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.commits++
			return nil
		},
	}, nil
}

// Commits reports how many default transactions were committed.
func (m *MockTransactionManager) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator. Generated IDs
// sort in creation order.
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
	return fmt.Sprintf("mock-id-%06d", m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Stored returns the raw value kept under key.
func (m *MockIdempotencyStore) Stored(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// MockCache is an in-memory Cache that ignores TTLs.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, usecase.ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
