package repository

import (
	"time"

	"github.com/inkpress/printdesk/internal/model"
	"github.com/shopspring/decimal"
)

// Dates and times-of-day are stored as plain strings so that lexicographic
// ordering and BETWEEN comparisons behave identically on postgres and the
// sqlite used by tests.
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

type TransactionHeaderEntity struct {
	ID              string          `gorm:"primaryKey;column:id;size:50"`
	TransactionDate string          `gorm:"column:transaction_date;not null;index"`
	TransactionTime string          `gorm:"column:transaction_time;not null"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2);not null"`
}

func (TransactionHeaderEntity) TableName() string {
	return "transaction_header"
}

type TransactionItemEntity struct {
	ID           int64                    `gorm:"primaryKey;autoIncrement;column:item_id"`
	HeaderID     string                   `gorm:"column:transaction_header_id;not null;index;size:50"`
	Header       *TransactionHeaderEntity `gorm:"foreignKey:HeaderID;references:ID;constraint:OnDelete:CASCADE"`
	PaperType    string                   `gorm:"column:paper_type;not null;size:50"`
	Color        string                   `gorm:"column:color;not null;size:50"`
	Pages        int                      `gorm:"column:pages;not null"`
	PricePerPage decimal.Decimal          `gorm:"column:price_per_page;type:numeric(10,2);not null"`
	ItemTotal    decimal.Decimal          `gorm:"column:item_total;type:numeric(10,2);not null"`
}

func (TransactionItemEntity) TableName() string {
	return "transaction_item"
}

// recordRowEntity is the scan target for item rows joined with their
// header's date and time.
type recordRowEntity struct {
	TransactionHeaderID string
	TransactionDate     string
	TransactionTime     string
	PaperType           string
	Color               string
	Pages               int
	PricePerPage        decimal.Decimal
	ItemTotal           decimal.Decimal
}

func formatDate(t time.Time) string { return t.Format(dateLayout) }
func formatTime(t time.Time) string { return t.Format(timeLayout) }

// parseDate tolerates a corrupt stored value by returning the zero time;
// rows are only ever written through the mappers below.
func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func toTransactionHeaderEntity(m *model.TransactionHeader) *TransactionHeaderEntity {
	if m == nil {
		return nil
	}
	return &TransactionHeaderEntity{
		ID:              m.ID,
		TransactionDate: formatDate(m.Date),
		TransactionTime: formatTime(m.Time),
		TotalAmount:     m.Total,
	}
}

func toTransactionItemEntities(headerID string, items []model.TransactionItem) []*TransactionItemEntity {
	if len(items) == 0 {
		return nil
	}
	entities := make([]*TransactionItemEntity, len(items))
	for i, it := range items {
		entities[i] = &TransactionItemEntity{
			ID:           it.ID,
			HeaderID:     headerID,
			PaperType:    it.PaperType,
			Color:        it.Color,
			Pages:        it.Pages,
			PricePerPage: it.PricePerPage,
			ItemTotal:    it.Total,
		}
	}
	return entities
}

func toTransactionHeaderModel(e *TransactionHeaderEntity, items []*TransactionItemEntity) *model.TransactionHeader {
	if e == nil {
		return nil
	}
	m := &model.TransactionHeader{
		ID:    e.ID,
		Date:  parseDate(e.TransactionDate),
		Time:  parseTime(e.TransactionTime),
		Total: e.TotalAmount,
	}
	for _, it := range items {
		m.Items = append(m.Items, model.TransactionItem{
			ID:           it.ID,
			HeaderID:     it.HeaderID,
			PaperType:    it.PaperType,
			Color:        it.Color,
			Pages:        it.Pages,
			PricePerPage: it.PricePerPage,
			Total:        it.ItemTotal,
		})
	}
	return m
}

func toRecordRowModel(e *recordRowEntity) *model.RecordRow {
	if e == nil {
		return nil
	}
	return &model.RecordRow{
		TransactionID: e.TransactionHeaderID,
		Date:          parseDate(e.TransactionDate),
		Time:          parseTime(e.TransactionTime),
		PaperType:     e.PaperType,
		Color:         e.Color,
		Pages:         e.Pages,
		PricePerPage:  e.PricePerPage,
		Total:         e.ItemTotal,
	}
}

func toRecordRowModels(entities []*recordRowEntity) []*model.RecordRow {
	if entities == nil {
		return nil
	}
	rows := make([]*model.RecordRow, len(entities))
	for i, e := range entities {
		rows[i] = toRecordRowModel(e)
	}
	return rows
}
