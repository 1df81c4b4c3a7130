package service

import (
	"context"
	"sync"
	"time"

	"quizform/internal/domain"
	"quizform/internal/ws"

	"github.com/stretchr/testify/mock"
)

// --- MockFormRepository ---
type MockFormRepository struct {
	mock.Mock
}

func (m *MockFormRepository) CreateForm(ctx context.Context, form *domain.Form) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *MockFormRepository) GetFormByID(ctx context.Context, id string) (*domain.Form, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Form), args.Error(1)
}

func (m *MockFormRepository) GetForms(ctx context.Context, searchFormName string, offset, limit int) ([]domain.FormSummary, error) {
	args := m.Called(ctx, searchFormName, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FormSummary), args.Error(1)
}

func (m *MockFormRepository) CountForms(ctx context.Context, searchFormName string) (int, error) {
	args := m.Called(ctx, searchFormName)
	return args.Int(0), args.Error(1)
}

// --- MockHistoryRepository ---
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) CreateHistory(ctx context.Context, history *domain.HistoryForm) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockHistoryRepository) GetHistoryByID(ctx context.Context, id string) (*domain.HistoryForm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HistoryForm), args.Error(1)
}

func (m *MockHistoryRepository) GetHistoriesByUserID(ctx context.Context, userID string, offset, limit int) ([]domain.HistorySummary, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistorySummary), args.Error(1)
}

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- passthroughTxManager ---
// Runs the function directly; tests only care whether the write succeeded.
type passthroughTxManager struct {
	err error
}

func (m *passthroughTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(ctx)
}

// --- fixedKeyIssuer ---
type fixedKeyIssuer struct {
	key []byte
	iv  []byte
}

func (f fixedKeyIssuer) NewKeyPair() ([]byte, []byte, error) {
	return f.key, f.iv, nil
}

// --- memoryCache ---
// In-memory domain.Cache with the same atomicity as the Redis adapter.
type memoryCache struct {
	mu    sync.Mutex
	items map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]string)}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.items[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return value, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memoryCache) GetDel(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.items[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	delete(c.items, key)
	return value, nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *memoryCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error {
	return nil
}

// --- recordingRegistry ---
type recordingRegistry struct {
	mu       sync.Mutex
	sent     map[string][]ws.Message
	removed  []string
	register map[string]ws.Conn
}

func newRecordingRegistry() *recordingRegistry {
	return &recordingRegistry{
		sent:     make(map[string][]ws.Message),
		register: make(map[string]ws.Conn),
	}
}

func (r *recordingRegistry) Register(pcID string, conn ws.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.register[pcID] = conn
}

func (r *recordingRegistry) Send(pcID string, msg ws.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[pcID] = append(r.sent[pcID], msg)
	return nil
}

func (r *recordingRegistry) Remove(pcID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.register, pcID)
	r.removed = append(r.removed, pcID)
}

func (r *recordingRegistry) sentTo(pcID string) []ws.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ws.Message, len(r.sent[pcID]))
	copy(out, r.sent[pcID])
	return out
}
