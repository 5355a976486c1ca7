package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inkpress/printdesk/internal/model"
	"github.com/inkpress/printdesk/internal/repository"
	"github.com/inkpress/printdesk/pkg/prom"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingCustomerName   = errors.New("customer name is required")
	ErrMissingFileName       = errors.New("file name is required")
	ErrEmptyOrderItems       = errors.New("order must contain at least one item")
	ErrOrderNotFound         = errors.New("order request not found")
	ErrOrderAlreadyProcessed = errors.New("order already processed")
	ErrOrderAlreadyRejected  = errors.New("order already rejected")
)

type OrderRepository interface {
	Create(ctx context.Context, req *model.OrderRequest) (*model.OrderRequest, error)
	GetByID(ctx context.Context, id int64) (*model.OrderRequest, error)
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error
	List(ctx context.Context, f model.OrderFilter) ([]*model.OrderRequest, int64, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactionWriter is the slice of the transaction repository the order
// lifecycle needs when materializing an approved order.
type TransactionWriter interface {
	Create(ctx context.Context, h *model.TransactionHeader) (*model.TransactionHeader, error)
}

type OrderService struct {
	orderRepo OrderRepository
	txnRepo   TransactionWriter
	cache     Cache
}

func NewOrderService(orderRepo OrderRepository, txnRepo TransactionWriter, cache Cache) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		txnRepo:   txnRepo,
		cache:     cache,
	}
}

// Submit persists a customer order request with its items atomically and
// returns the stored request.
func (s *OrderService) Submit(ctx context.Context, p model.OrderCreateRequest) (*model.OrderRequest, error) {
	p.CustomerName = strings.TrimSpace(p.CustomerName)
	p.FileName = strings.TrimSpace(p.FileName)

	if p.CustomerName == "" {
		return nil, ErrMissingCustomerName
	}
	if p.FileName == "" {
		return nil, ErrMissingFileName
	}
	if len(p.Items) == 0 {
		return nil, ErrEmptyOrderItems
	}

	req := &model.OrderRequest{
		CustomerName: p.CustomerName,
		FileName:     p.FileName,
		FileURL:      p.FileURL,
		Note:         p.Note,
		RequestDate:  time.Now().UTC(),
		Status:       model.OrderStatusPending,
	}
	for _, it := range p.Items {
		req.Items = append(req.Items, model.OrderItem{
			PaperType:    it.PaperType,
			Color:        it.Color,
			Pages:        it.Pages,
			PricePerPage: it.PricePerPage,
			Total:        it.Total,
		})
	}

	var created *model.OrderRequest
	err := s.orderRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.orderRepo.Create(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Process materializes a transaction from the order's items, mirrors them
// exactly and flips the request to Processed, all in one unit of work. A
// Rejected order may still be processed; only a second Process is blocked.
func (s *OrderService) Process(ctx context.Context, id int64) (string, error) {
	var txnID string
	err := s.orderRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order.Status == model.OrderStatusProcessed {
			return ErrOrderAlreadyProcessed
		}

		now := time.Now().UTC()
		txnID = fmt.Sprintf("TRX-%s-%d", now.Format(transactionIDTimestamp), order.ID)

		total := decimal.Zero
		header := &model.TransactionHeader{
			ID:   txnID,
			Date: now,
			Time: now,
		}
		for _, it := range order.Items {
			total = total.Add(it.Total)
			header.Items = append(header.Items, model.TransactionItem{
				PaperType:    it.PaperType,
				Color:        it.Color,
				Pages:        it.Pages,
				PricePerPage: it.PricePerPage,
				Total:        it.Total,
			})
		}
		header.Total = total

		if _, err := s.txnRepo.Create(ctx, header); err != nil {
			return err
		}
		return s.orderRepo.UpdateStatus(ctx, order.ID, model.OrderStatusProcessed)
	})
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return "", ErrOrderNotFound
		}
		return "", err
	}

	invalidateSummary(s.cache)
	prom.IncTransactionRecorded("order")
	prom.IncCounter(prom.SystemOrders, prom.MetricOrdersProcessed)
	return txnID, nil
}

// Reject marks the request Rejected. No transaction is created.
func (s *OrderService) Reject(ctx context.Context, id int64) error {
	err := s.orderRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order.Status == model.OrderStatusRejected {
			return ErrOrderAlreadyRejected
		}
		return s.orderRepo.UpdateStatus(ctx, order.ID, model.OrderStatusRejected)
	})
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return err
	}

	prom.IncCounter(prom.SystemOrders, prom.MetricOrdersRejected)
	return nil
}

// List returns one page of requests newest first. The "All" status sentinel
// disables filtering.
func (s *OrderService) List(ctx context.Context, status model.OrderStatus, page int) ([]*model.OrderRequest, model.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if status == "" {
		status = model.OrderStatusAll
	}

	orders, total, err := s.orderRepo.List(ctx, model.OrderFilter{
		Status: status,
		Limit:  defaultPageSize,
		Offset: (page - 1) * defaultPageSize,
	})
	if err != nil {
		return nil, model.Pagination{}, err
	}
	return orders, buildPagination(page, total, defaultPageSize), nil
}
