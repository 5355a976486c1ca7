package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionHeader is one point-of-sale receipt. The ID is human readable
// and date rooted ("TRX-YYYYMMDD-HHMMSS-..."); Date carries the calendar day
// only, Time the time of day used for tie-break ordering within a day.
type TransactionHeader struct {
	ID    string
	Date  time.Time
	Time  time.Time
	Total decimal.Decimal
	Items []TransactionItem
}

// TransactionItem is a priced print-job line belonging to exactly one header.
type TransactionItem struct {
	ID           int64
	HeaderID     string
	PaperType    string
	Color        string
	Pages        int
	PricePerPage decimal.Decimal
	Total        decimal.Decimal
}

// LineItem is the caller-supplied shape of a line, shared by transaction
// recording and customer order submission. Totals are computed by the caller
// and trusted as-is.
type LineItem struct {
	PaperType    string
	Color        string
	Pages        int
	PricePerPage decimal.Decimal
	Total        decimal.Decimal
}

// SumTotals adds up the line totals exactly (no float rounding).
func SumTotals(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Total)
	}
	return total
}

// RecordRow is a transaction item flattened with its header's identity,
// date and time, the unit every report works with.
type RecordRow struct {
	TransactionID string
	Date          time.Time
	Time          time.Time
	PaperType     string
	Color         string
	Pages         int
	PricePerPage  decimal.Decimal
	Total         decimal.Decimal
}

// RecordFilter bounds report queries on calendar-date granularity,
// inclusive on both ends.
type RecordFilter struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}
