package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/inkpress/printdesk/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransactionRepository struct {
	mock.Mock
}

// Create echoes the input header when the stubbed result is nil, mirroring
// how the real repository hands back what it stored.
func (m *MockTransactionRepository) Create(ctx context.Context, h *model.TransactionHeader) (*model.TransactionHeader, error) {
	args := m.Called(ctx, h)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	if args.Get(0) == nil {
		return h, nil
	}
	return args.Get(0).(*model.TransactionHeader), nil
}

func (m *MockTransactionRepository) ListRecords(ctx context.Context) ([]*model.RecordRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RecordRow), args.Error(1)
}

func (m *MockTransactionRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransactionRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// mapCache is an in-process Cache for asserting invalidation behavior.
type mapCache struct {
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(key string) ([]byte, error) {
	return c.data[key], nil
}

func (c *mapCache) Set(key string, value []byte, ttl time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *mapCache) Del(key string) error {
	delete(c.data, key)
	return nil
}

func TestTransactionService_Record_EmptyItems(t *testing.T) {
	repo := new(MockTransactionRepository)
	service := NewTransactionService(repo, nil)

	result, err := service.Record(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyItems)
	assert.Nil(t, result)
}

func TestTransactionService_Record(t *testing.T) {
	repo := new(MockTransactionRepository)
	cache := newMapCache()
	cache.data[salesSummaryCacheKey] = []byte(`{}`)
	service := NewTransactionService(repo, cache)
	ctx := context.Background()

	items := []model.LineItem{
		{PaperType: "Short", Color: "Black", Pages: 10, PricePerPage: decimal.NewFromInt(2), Total: decimal.NewFromInt(20)},
		{PaperType: "A4", Color: "Colored", Pages: 2, PricePerPage: decimal.NewFromInt(5), Total: decimal.NewFromInt(10)},
	}

	repo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("Create", ctx, mock.AnythingOfType("*model.TransactionHeader")).Return(nil, nil)

	created, err := service.Record(ctx, items)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.ID, "TRX-"))
	assert.True(t, created.Total.Equal(decimal.NewFromInt(30)))
	require.Len(t, created.Items, 2)
	assert.Equal(t, "Short", created.Items[0].PaperType)

	// recording drops the cached summary
	assert.Empty(t, cache.data[salesSummaryCacheKey])

	repo.AssertExpectations(t)
}

func TestTransactionService_Record_UniqueIDs(t *testing.T) {
	now := time.Now().UTC()
	a := mintTransactionID(now)
	b := mintTransactionID(now)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "TRX-"+now.Format(transactionIDTimestamp)))
}

func TestTransactionService_Reset(t *testing.T) {
	repo := new(MockTransactionRepository)
	cache := newMapCache()
	cache.data[salesSummaryCacheKey] = []byte(`{}`)
	service := NewTransactionService(repo, cache)
	ctx := context.Background()

	repo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	repo.On("DeleteAll", ctx).Return(nil)

	require.NoError(t, service.Reset(ctx))
	assert.Empty(t, cache.data[salesSummaryCacheKey])

	repo.AssertExpectations(t)
}
