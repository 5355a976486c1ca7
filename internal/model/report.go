package model

import "github.com/shopspring/decimal"

// PageBreakdown buckets page counts by paper type and color. Matching is
// case-insensitive; unknown types/colors count in TotalPages only.
type PageBreakdown struct {
	TotalPages      int
	NumTransactions int
	ShortPages      int
	LongPages       int
	A4Pages         int
	PhotoPaperPages int
	BlackPages      int
	ColoredPages    int
}

// RangeSummary is computed over the full (unpaginated) set of rows matching
// a date range.
type RangeSummary struct {
	TotalSales decimal.Decimal
	PageBreakdown
}

// RangeReport is one page of rows plus whole-range summary statistics.
type RangeReport struct {
	Records    []*RecordRow
	Summary    RangeSummary
	Pagination Pagination
}

// SalesSummary is the storefront dashboard aggregate: calendar-bounded
// income figures plus the breakdown over every item ever recorded.
type SalesSummary struct {
	TodayIncome decimal.Decimal
	MonthIncome decimal.Decimal
	YearIncome  decimal.Decimal
	PageBreakdown
}

// Pagination reports offset-paging state: 1-based page number, fixed page
// size, server-computed totals.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	PerPage     int   `json:"perPage"`
}
