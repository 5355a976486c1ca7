package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inkpress/printdesk/internal/model"
	"github.com/inkpress/printdesk/pkg/prom"
)

var (
	ErrEmptyItems = errors.New("no items provided for transaction")
)

const (
	transactionIDTimestamp = "20060102-150405"
	defaultPageSize        = 10
)

// mintTransactionID keeps the displayed date-rooted format but appends six
// hex characters of entropy so two transactions recorded within the same
// wall-clock second never collide.
func mintTransactionID(now time.Time) string {
	return fmt.Sprintf("TRX-%s-%s", now.Format(transactionIDTimestamp), uuid.NewString()[:6])
}

func buildPagination(page int, total int64, perPage int) model.Pagination {
	return model.Pagination{
		CurrentPage: page,
		TotalPages:  int((total + int64(perPage) - 1) / int64(perPage)),
		TotalItems:  total,
		PerPage:     perPage,
	}
}

type TransactionRepository interface {
	Create(ctx context.Context, h *model.TransactionHeader) (*model.TransactionHeader, error)
	ListRecords(ctx context.Context) ([]*model.RecordRow, error)
	DeleteAll(ctx context.Context) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TransactionService struct {
	repo  TransactionRepository
	cache Cache
}

func NewTransactionService(repo TransactionRepository, cache Cache) *TransactionService {
	return &TransactionService{
		repo:  repo,
		cache: cache,
	}
}

// Record validates, totals and persists a point-of-sale transaction as one
// atomic unit. The item totals are caller-computed and trusted.
func (s *TransactionService) Record(ctx context.Context, items []model.LineItem) (*model.TransactionHeader, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	now := time.Now().UTC()
	header := &model.TransactionHeader{
		ID:    mintTransactionID(now),
		Date:  now,
		Time:  now,
		Total: model.SumTotals(items),
	}
	for _, it := range items {
		header.Items = append(header.Items, model.TransactionItem{
			PaperType:    it.PaperType,
			Color:        it.Color,
			Pages:        it.Pages,
			PricePerPage: it.PricePerPage,
			Total:        it.Total,
		})
	}

	var created *model.TransactionHeader
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.repo.Create(ctx, header)
		return err
	})
	if err != nil {
		return nil, err
	}

	invalidateSummary(s.cache)
	prom.IncTransactionRecorded("pos")
	return created, nil
}

// Records returns every recorded line flattened with its header, newest
// first.
func (s *TransactionService) Records(ctx context.Context) ([]*model.RecordRow, error) {
	return s.repo.ListRecords(ctx)
}

// Reset wipes all transaction rows. Customer order requests are left alone.
func (s *TransactionService) Reset(ctx context.Context) error {
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.repo.DeleteAll(ctx)
	})
	if err != nil {
		return err
	}
	invalidateSummary(s.cache)
	return nil
}
