package repository

import (
	"context"
	"time"

	"github.com/inkpress/printdesk/internal/model"
	"github.com/inkpress/printdesk/pkg/pg"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

// Create persists a header and its items. Callers wanting all-or-nothing
// semantics run it inside WithinTransaction; both writes then join the
// ambient unit of work.
func (r *TransactionRepository) Create(ctx context.Context, h *model.TransactionHeader) (*model.TransactionHeader, error) {
	header := toTransactionHeaderEntity(h)
	if err := r.Write(ctx).Create(header).Error; err != nil {
		return nil, err
	}

	items := toTransactionItemEntities(header.ID, h.Items)
	if len(items) > 0 {
		if err := r.Write(ctx).Create(&items).Error; err != nil {
			return nil, err
		}
	}

	return toTransactionHeaderModel(header, items), nil
}

func (r *TransactionRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := r.Read(ctx).Model(&TransactionHeaderEntity{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// SumTotals returns the sum of item totals over headers dated within
// [from, to] inclusive, zero when nothing matches.
func (r *TransactionRepository) SumTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.itemJoinQuery(ctx).
		Select("COALESCE(SUM(ti.item_total), 0) AS total").
		Where("th.transaction_date BETWEEN ? AND ?", formatDate(from), formatDate(to)).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// ListRecords returns every item flattened with its header, newest first.
func (r *TransactionRepository) ListRecords(ctx context.Context) ([]*model.RecordRow, error) {
	var entities []*recordRowEntity
	err := r.itemJoinQuery(ctx).
		Select(recordRowSelect).
		Order("th.transaction_date DESC, th.transaction_time DESC").
		Scan(&entities).Error
	if err != nil {
		return nil, err
	}
	return toRecordRowModels(entities), nil
}

// RecordsInRange returns one page of rows matching the filter plus the
// total count of matching rows before pagination.
func (r *TransactionRepository) RecordsInRange(ctx context.Context, f model.RecordFilter) ([]*model.RecordRow, int64, error) {
	q := r.itemJoinQuery(ctx).
		Where("th.transaction_date BETWEEN ? AND ?", formatDate(f.From), formatDate(f.To))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 10
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*recordRowEntity
	err := q.Select(recordRowSelect).
		Order("th.transaction_date DESC, th.transaction_time DESC").
		Limit(limit).Offset(offset).
		Scan(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	return toRecordRowModels(entities), total, nil
}

// AllRecordsInRange returns the full unpaginated matching set; range
// summaries are computed over this.
func (r *TransactionRepository) AllRecordsInRange(ctx context.Context, from, to time.Time) ([]*model.RecordRow, error) {
	var entities []*recordRowEntity
	err := r.itemJoinQuery(ctx).
		Where("th.transaction_date BETWEEN ? AND ?", formatDate(from), formatDate(to)).
		Select(recordRowSelect).
		Order("th.transaction_date DESC, th.transaction_time DESC").
		Scan(&entities).Error
	if err != nil {
		return nil, err
	}
	return toRecordRowModels(entities), nil
}

// AllRecords returns every row ever recorded, for the lifetime summary.
func (r *TransactionRepository) AllRecords(ctx context.Context) ([]*model.RecordRow, error) {
	var entities []*recordRowEntity
	err := r.itemJoinQuery(ctx).
		Select(recordRowSelect).
		Scan(&entities).Error
	if err != nil {
		return nil, err
	}
	return toRecordRowModels(entities), nil
}

// DeleteAll wipes items first, then headers. Order requests are
// intentionally left untouched.
func (r *TransactionRepository) DeleteAll(ctx context.Context) error {
	if err := r.Write(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&TransactionItemEntity{}).Error; err != nil {
		return err
	}
	return r.Write(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&TransactionHeaderEntity{}).Error
}

const recordRowSelect = `
    ti.transaction_header_id AS transaction_header_id,
    th.transaction_date      AS transaction_date,
    th.transaction_time      AS transaction_time,
    ti.paper_type            AS paper_type,
    ti.color                 AS color,
    ti.pages                 AS pages,
    ti.price_per_page        AS price_per_page,
    ti.item_total            AS item_total`

func (r *TransactionRepository) itemJoinQuery(ctx context.Context) *gorm.DB {
	return r.Read(ctx).
		Table("transaction_item AS ti").
		Joins("JOIN transaction_header th ON th.id = ti.transaction_header_id")
}
