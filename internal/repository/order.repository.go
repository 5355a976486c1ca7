package repository

import (
	"context"
	"errors"

	"github.com/inkpress/printdesk/internal/model"
	"github.com/inkpress/printdesk/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound is returned when an order request does not exist.
	ErrOrderNotFound = errors.New("order request not found")
)

type OrderRepository struct {
	*pg.DB
}

func NewOrderRepository(db *pg.DB) *OrderRepository {
	return &OrderRepository{
		db,
	}
}

func (r *OrderRepository) Create(ctx context.Context, req *model.OrderRequest) (*model.OrderRequest, error) {
	entity := toOrderRequestEntity(req)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	items := toOrderItemEntities(entity.ID, req.Items)
	if len(items) > 0 {
		if err := r.Write(ctx).Create(&items).Error; err != nil {
			return nil, err
		}
	}

	return toOrderRequestModel(entity, items), nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*model.OrderRequest, error) {
	var entity OrderRequestEntity
	err := r.Read(ctx).First(&entity, "request_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	var items []*OrderItemEntity
	err = r.Read(ctx).Where("request_header_id = ?", id).Order("item_id").Find(&items).Error
	if err != nil {
		return nil, err
	}

	return toOrderRequestModel(&entity, items), nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	res := r.Write(ctx).Model(&OrderRequestEntity{}).
		Where("request_id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// List returns one page of requests newest first, items attached, plus the
// total matching count before pagination.
func (r *OrderRepository) List(ctx context.Context, f model.OrderFilter) ([]*model.OrderRequest, int64, error) {
	q := r.Read(ctx).Model(&OrderRequestEntity{})

	if f.Status != "" && f.Status != model.OrderStatusAll {
		q = q.Where("status = ?", string(f.Status))
	}

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

	var entities []*OrderRequestEntity
	err := q.Order("request_date DESC").Limit(limit).Offset(offset).Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	if len(entities) == 0 {
		return []*model.OrderRequest{}, total, nil
	}

	ids := make([]int64, len(entities))
	for i, e := range entities {
		ids[i] = e.ID
	}

	var items []*OrderItemEntity
	err = r.Read(ctx).Where("request_header_id IN ?", ids).Order("item_id").Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	itemsByRequest := make(map[int64][]*OrderItemEntity, len(entities))
	for _, it := range items {
		itemsByRequest[it.RequestID] = append(itemsByRequest[it.RequestID], it)
	}

	orders := make([]*model.OrderRequest, len(entities))
	for i, e := range entities {
		orders[i] = toOrderRequestModel(e, itemsByRequest[e.ID])
	}
	return orders, total, nil
}
