package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/inkpress/printdesk/internal/model"
	"github.com/inkpress/printdesk/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, req *model.OrderRequest) (*model.OrderRequest, error) {
	args := m.Called(ctx, req)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	if args.Get(0) == nil {
		req.ID = 1
		return req, nil
	}
	return args.Get(0).(*model.OrderRequest), nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*model.OrderRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderRequest), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) List(ctx context.Context, f model.OrderFilter) ([]*model.OrderRequest, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.OrderRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

func pendingOrder(id int64) *model.OrderRequest {
	return &model.OrderRequest{
		ID:           id,
		CustomerName: "Elena",
		FileName:     "flyers.pdf",
		RequestDate:  time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
		Status:       model.OrderStatusPending,
		Items: []model.OrderItem{
			{RequestID: id, PaperType: "A4", Color: "Black", Pages: 50, PricePerPage: decimal.NewFromInt(5), Total: decimal.NewFromInt(250)},
			{RequestID: id, PaperType: "PhotoPaper", Color: "Colored", Pages: 4, PricePerPage: decimal.NewFromInt(20), Total: decimal.NewFromInt(80)},
		},
	}
}

func TestOrderService_Submit_Validation(t *testing.T) {
	service := NewOrderService(new(MockOrderRepository), new(MockTransactionRepository), nil)
	ctx := context.Background()

	item := model.LineItem{PaperType: "A4", Color: "Black", Pages: 1, PricePerPage: decimal.NewFromInt(5), Total: decimal.NewFromInt(5)}

	t.Run("missing customer name", func(t *testing.T) {
		_, err := service.Submit(ctx, model.OrderCreateRequest{
			CustomerName: "   ",
			FileName:     "doc.pdf",
			Items:        []model.LineItem{item},
		})
		assert.ErrorIs(t, err, ErrMissingCustomerName)
	})

	t.Run("missing file name", func(t *testing.T) {
		_, err := service.Submit(ctx, model.OrderCreateRequest{
			CustomerName: "Elena",
			Items:        []model.LineItem{item},
		})
		assert.ErrorIs(t, err, ErrMissingFileName)
	})

	t.Run("no items", func(t *testing.T) {
		_, err := service.Submit(ctx, model.OrderCreateRequest{
			CustomerName: "Elena",
			FileName:     "doc.pdf",
		})
		assert.ErrorIs(t, err, ErrEmptyOrderItems)
	})
}

func TestOrderService_Submit(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	service := NewOrderService(orderRepo, new(MockTransactionRepository), nil)
	ctx := context.Background()

	orderRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	orderRepo.On("Create", ctx, mock.AnythingOfType("*model.OrderRequest")).Return(nil, nil)

	created, err := service.Submit(ctx, model.OrderCreateRequest{
		CustomerName: "  Elena ",
		FileName:     "flyers.pdf",
		FileURL:      "https://files.example.com/flyers.pdf",
		Note:         "laminated",
		Items: []model.LineItem{
			{PaperType: "A4", Color: "Black", Pages: 50, PricePerPage: decimal.NewFromInt(5), Total: decimal.NewFromInt(250)},
		},
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "Elena", created.CustomerName)
	assert.Equal(t, model.OrderStatusPending, created.Status)
	assert.False(t, created.RequestDate.IsZero())
	require.Len(t, created.Items, 1)

	orderRepo.AssertExpectations(t)
}

func TestOrderService_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("pending order becomes a transaction", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		txnRepo := new(MockTransactionRepository)
		cache := newMapCache()
		cache.data[salesSummaryCacheKey] = []byte(`{}`)
		service := NewOrderService(orderRepo, txnRepo, cache)

		order := pendingOrder(7)
		orderRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		orderRepo.On("GetByID", ctx, int64(7)).Return(order, nil)
		orderRepo.On("UpdateStatus", ctx, int64(7), model.OrderStatusProcessed).Return(nil)

		var captured *model.TransactionHeader
		txnRepo.On("Create", ctx, mock.AnythingOfType("*model.TransactionHeader")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(*model.TransactionHeader)
			}).Return(nil, nil)

		txnID, err := service.Process(ctx, 7)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(txnID, "TRX-"))
		assert.True(t, strings.HasSuffix(txnID, "-7"))

		require.NotNil(t, captured)
		assert.Equal(t, txnID, captured.ID)
		require.Len(t, captured.Items, 2)
		assert.Equal(t, "A4", captured.Items[0].PaperType)
		assert.True(t, captured.Total.Equal(decimal.NewFromInt(330)))

		assert.Empty(t, cache.data[salesSummaryCacheKey])

		orderRepo.AssertExpectations(t)
		txnRepo.AssertExpectations(t)
	})

	t.Run("rejected order can still be processed", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		txnRepo := new(MockTransactionRepository)
		service := NewOrderService(orderRepo, txnRepo, nil)

		order := pendingOrder(8)
		order.Status = model.OrderStatusRejected
		orderRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		orderRepo.On("GetByID", ctx, int64(8)).Return(order, nil)
		orderRepo.On("UpdateStatus", ctx, int64(8), model.OrderStatusProcessed).Return(nil)
		txnRepo.On("Create", ctx, mock.AnythingOfType("*model.TransactionHeader")).Return(nil, nil)

		_, err := service.Process(ctx, 8)
		require.NoError(t, err)
		orderRepo.AssertExpectations(t)
	})

	t.Run("already processed", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockTransactionRepository), nil)

		order := pendingOrder(9)
		order.Status = model.OrderStatusProcessed
		orderRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		orderRepo.On("GetByID", ctx, int64(9)).Return(order, nil)

		_, err := service.Process(ctx, 9)
		assert.ErrorIs(t, err, ErrOrderAlreadyProcessed)
	})

	t.Run("not found", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockTransactionRepository), nil)

		orderRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		orderRepo.On("GetByID", ctx, int64(404)).Return(nil, repository.ErrOrderNotFound)

		_, err := service.Process(ctx, 404)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestOrderService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("pending order", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockTransactionRepository), nil)

		orderRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		orderRepo.On("GetByID", ctx, int64(5)).Return(pendingOrder(5), nil)
		orderRepo.On("UpdateStatus", ctx, int64(5), model.OrderStatusRejected).Return(nil)

		require.NoError(t, service.Reject(ctx, 5))
		orderRepo.AssertExpectations(t)
	})

	t.Run("already rejected", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockTransactionRepository), nil)

		order := pendingOrder(6)
		order.Status = model.OrderStatusRejected
		orderRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		orderRepo.On("GetByID", ctx, int64(6)).Return(order, nil)

		err := service.Reject(ctx, 6)
		assert.ErrorIs(t, err, ErrOrderAlreadyRejected)
	})

	t.Run("not found", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockTransactionRepository), nil)

		orderRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		orderRepo.On("GetByID", ctx, int64(404)).Return(nil, repository.ErrOrderNotFound)

		assert.ErrorIs(t, service.Reject(ctx, 404), ErrOrderNotFound)
	})
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults and pagination math", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockTransactionRepository), nil)

		orderRepo.On("List", ctx, model.OrderFilter{Status: model.OrderStatusAll, Limit: 10, Offset: 0}).
			Return([]*model.OrderRequest{pendingOrder(1)}, int64(23), nil)

		orders, pagination, err := service.List(ctx, "", 0)
		require.NoError(t, err)
		assert.Len(t, orders, 1)
		assert.Equal(t, 1, pagination.CurrentPage)
		assert.Equal(t, 3, pagination.TotalPages)
		assert.Equal(t, int64(23), pagination.TotalItems)
		assert.Equal(t, 10, pagination.PerPage)
	})

	t.Run("status filter passes through", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockTransactionRepository), nil)

		orderRepo.On("List", ctx, model.OrderFilter{Status: model.OrderStatusPending, Limit: 10, Offset: 10}).
			Return([]*model.OrderRequest{}, int64(0), nil)

		orders, pagination, err := service.List(ctx, model.OrderStatusPending, 2)
		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.Equal(t, 2, pagination.CurrentPage)
		assert.Equal(t, 0, pagination.TotalPages)
	})
}
