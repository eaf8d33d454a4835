package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"qubitgyan/internal/config"
	"qubitgyan/internal/domain"
	"qubitgyan/internal/logger"

	"github.com/stretchr/testify/mock"
)

// TestMain initializes the logger for all tests in this package
func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Env: "development", Level: "info"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}
	exitVal := m.Run()
	_ = logger.Sync()
	os.Exit(exitVal)
}

// --- Mocks ---

type MockNodeRepository struct {
	mock.Mock
}

func (m *MockNodeRepository) ListActiveNodes(ctx context.Context) ([]*domain.Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Node), args.Error(1)
}

func (m *MockNodeRepository) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Node), args.Error(1)
}

func (m *MockNodeRepository) CreateNode(ctx context.Context, node *domain.Node) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *MockNodeRepository) UpdateNode(ctx context.Context, node *domain.Node) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *MockNodeRepository) SetNodeParent(ctx context.Context, id, parentID string) error {
	args := m.Called(ctx, id, parentID)
	return args.Error(0)
}

func (m *MockNodeRepository) ReorderNodes(ctx context.Context, orders []domain.NodeOrder) error {
	args := m.Called(ctx, orders)
	return args.Error(0)
}

func (m *MockNodeRepository) DeleteNode(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNodeRepository) CountChildren(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type MockResourceRepository struct {
	mock.Mock
}

func (m *MockResourceRepository) ListResourcesFor(ctx context.Context, nodeID string, filter domain.ResourceFilter) ([]*domain.Resource, error) {
	args := m.Called(ctx, nodeID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Resource), args.Error(1)
}

func (m *MockResourceRepository) CountResourcesByNode(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockResourceRepository) GetResource(ctx context.Context, id string) (*domain.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resource), args.Error(1)
}

func (m *MockResourceRepository) CreateResource(ctx context.Context, resource *domain.Resource) error {
	args := m.Called(ctx, resource)
	return args.Error(0)
}

func (m *MockResourceRepository) UpdateResource(ctx context.Context, resource *domain.Resource) error {
	args := m.Called(ctx, resource)
	return args.Error(0)
}

func (m *MockResourceRepository) DeleteResource(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockResourceRepository) ListContexts(ctx context.Context) ([]*domain.ProgramContext, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ProgramContext), args.Error(1)
}

func (m *MockResourceRepository) CreateContext(ctx context.Context, pc *domain.ProgramContext) error {
	args := m.Called(ctx, pc)
	return args.Error(0)
}

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetQuizByResourceID(ctx context.Context, resourceID string) (*domain.Quiz, error) {
	args := m.Called(ctx, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetAttemptCount(ctx context.Context, userID, quizID string) (int, error) {
	args := m.Called(ctx, userID, quizID)
	return args.Int(0), args.Error(1)
}

func (m *MockQuizRepository) CreateAttempt(ctx context.Context, attempt *domain.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockQuizRepository) ListAttemptsByUser(ctx context.Context, userID string) ([]*domain.Attempt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Attempt), args.Error(1)
}

func (m *MockQuizRepository) UpsertProgress(ctx context.Context, progress *domain.StudentProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

// noopTxManager runs the function without a real transaction.
type noopTxManager struct{}

func (noopTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeCache is an in-memory domain.Cache for tests that need real
// get/set/delete semantics rather than expectation matching.
type fakeCache struct {
	mu    sync.Mutex
	store map[string]string
	sets  int
	dels  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.store[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return value, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = value
	f.sets++
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.store, key)
	f.dels++
	return nil
}

func (f *fakeCache) Ping(ctx context.Context) error {
	return nil
}

func (f *fakeCache) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.store)
}
