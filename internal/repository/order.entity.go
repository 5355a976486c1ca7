package repository

import (
	"time"

	"github.com/inkpress/printdesk/internal/model"
	"github.com/shopspring/decimal"
)

type OrderRequestEntity struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:request_id"`
	CustomerName string    `gorm:"column:customer_name;not null;size:100"`
	FileName     string    `gorm:"column:file_name;not null;size:255"`
	FileURL      string    `gorm:"column:file_url;size:500"`
	Note         string    `gorm:"column:note;type:text"`
	RequestDate  time.Time `gorm:"column:request_date;not null;index"`
	Status       string    `gorm:"column:status;not null;default:'Pending';index;size:20"`
}

func (OrderRequestEntity) TableName() string {
	return "customer_order_request"
}

type OrderItemEntity struct {
	ID           int64               `gorm:"primaryKey;autoIncrement;column:item_id"`
	RequestID    int64               `gorm:"column:request_header_id;not null;index"`
	Request      *OrderRequestEntity `gorm:"foreignKey:RequestID;references:ID;constraint:OnDelete:CASCADE"`
	PaperType    string              `gorm:"column:paper_type;not null;size:50"`
	Color        string              `gorm:"column:color;not null;size:50"`
	Pages        int                 `gorm:"column:pages;not null"`
	PricePerPage decimal.Decimal     `gorm:"column:price_per_page;type:numeric(10,2);not null"`
	ItemTotal    decimal.Decimal     `gorm:"column:item_total;type:numeric(10,2);not null"`
}

func (OrderItemEntity) TableName() string {
	return "customer_order_item"
}

func toOrderRequestEntity(m *model.OrderRequest) *OrderRequestEntity {
	if m == nil {
		return nil
	}
	return &OrderRequestEntity{
		ID:           m.ID,
		CustomerName: m.CustomerName,
		FileName:     m.FileName,
		FileURL:      m.FileURL,
		Note:         m.Note,
		RequestDate:  m.RequestDate,
		Status:       string(m.Status),
	}
}

func toOrderItemEntities(requestID int64, items []model.OrderItem) []*OrderItemEntity {
	if len(items) == 0 {
		return nil
	}
	entities := make([]*OrderItemEntity, len(items))
	for i, it := range items {
		entities[i] = &OrderItemEntity{
			ID:           it.ID,
			RequestID:    requestID,
			PaperType:    it.PaperType,
			Color:        it.Color,
			Pages:        it.Pages,
			PricePerPage: it.PricePerPage,
			ItemTotal:    it.Total,
		}
	}
	return entities
}

func toOrderRequestModel(e *OrderRequestEntity, items []*OrderItemEntity) *model.OrderRequest {
	if e == nil {
		return nil
	}
	m := &model.OrderRequest{
		ID:           e.ID,
		CustomerName: e.CustomerName,
		FileName:     e.FileName,
		FileURL:      e.FileURL,
		Note:         e.Note,
		RequestDate:  e.RequestDate,
		Status:       model.OrderStatus(e.Status),
	}
	for _, it := range items {
		m.Items = append(m.Items, model.OrderItem{
			ID:           it.ID,
			RequestID:    it.RequestID,
			PaperType:    it.PaperType,
			Color:        it.Color,
			Pages:        it.Pages,
			PricePerPage: it.PricePerPage,
			Total:        it.ItemTotal,
		})
	}
	return m
}
