package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/inkpress/printdesk/internal/model"
	"github.com/inkpress/printdesk/pkg/logger"
	"github.com/inkpress/printdesk/pkg/prom"
	"github.com/shopspring/decimal"
)

type ReportRepository interface {
	SumTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	RecordsInRange(ctx context.Context, f model.RecordFilter) ([]*model.RecordRow, int64, error)
	AllRecordsInRange(ctx context.Context, from, to time.Time) ([]*model.RecordRow, error)
	AllRecords(ctx context.Context) ([]*model.RecordRow, error)
}

type ReportService struct {
	repo     ReportRepository
	cache    Cache
	cacheTTL time.Duration
}

func NewReportService(repo ReportRepository, cache Cache, cacheTTL time.Duration) *ReportService {
	return &ReportService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Daily returns the sum of item totals for one calendar date.
func (s *ReportService) Daily(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	return s.repo.SumTotals(ctx, date, date)
}

// Monthly sums the inclusive range from the first to the last day of the
// month. The end bound is first-of-next-month minus a day, which handles
// December rollover and variable month lengths.
func (s *ReportService) Monthly(ctx context.Context, month time.Month, year int) (decimal.Decimal, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return s.repo.SumTotals(ctx, start, end)
}

// Yearly is the sum of the twelve monthly totals of a calendar year.
func (s *ReportService) Yearly(ctx context.Context, year int) (decimal.Decimal, error) {
	total := decimal.Zero
	for m := time.January; m <= time.December; m++ {
		v, err := s.Monthly(ctx, m, year)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(v)
	}
	return total, nil
}

// Range returns one page of rows for [from, to] inclusive plus summary
// statistics computed over the full unpaginated matching set.
func (s *ReportService) Range(ctx context.Context, from, to time.Time, page int) (*model.RangeReport, error) {
	started := time.Now()
	if page < 1 {
		page = 1
	}

	rows, total, err := s.repo.RecordsInRange(ctx, model.RecordFilter{
		From:   from,
		To:     to,
		Limit:  defaultPageSize,
		Offset: (page - 1) * defaultPageSize,
	})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*model.RecordRow{}
	}

	all, err := s.repo.AllRecordsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := model.RangeSummary{
		TotalSales:    sumRowTotals(all),
		PageBreakdown: breakdownRows(all),
	}

	prom.AddReportDuration(time.Since(started).Seconds())
	return &model.RangeReport{
		Records:    rows,
		Summary:    summary,
		Pagination: buildPagination(page, total, defaultPageSize),
	}, nil
}

// Summary is the dashboard aggregate: today/month/year income plus the
// category breakdown over every item ever recorded. The result is cached
// briefly; any write invalidates it.
func (s *ReportService) Summary(ctx context.Context) (*model.SalesSummary, error) {
	if cached := s.cachedSummary(); cached != nil {
		return cached, nil
	}

	now := time.Now().UTC()

	today, err := s.Daily(ctx, now)
	if err != nil {
		return nil, err
	}
	month, err := s.Monthly(ctx, now.Month(), now.Year())
	if err != nil {
		return nil, err
	}
	year, err := s.Yearly(ctx, now.Year())
	if err != nil {
		return nil, err
	}

	all, err := s.repo.AllRecords(ctx)
	if err != nil {
		return nil, err
	}

	summary := &model.SalesSummary{
		TodayIncome:   today,
		MonthIncome:   month,
		YearIncome:    year,
		PageBreakdown: breakdownRows(all),
	}
	s.storeSummary(summary)
	return summary, nil
}

func (s *ReportService) cachedSummary() *model.SalesSummary {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(salesSummaryCacheKey)
	if err != nil || len(raw) == 0 {
		return nil
	}
	var summary model.SalesSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		logger.Warn("discarding unreadable cached sales summary", "error", err)
		return nil
	}
	return &summary
}

func (s *ReportService) storeSummary(summary *model.SalesSummary) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(salesSummaryCacheKey, raw, s.cacheTTL); err != nil {
		logger.Warn("failed to cache sales summary", "error", err)
	}
}

func sumRowTotals(rows []*model.RecordRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Total)
	}
	return total
}

// breakdownRows buckets page counts case-insensitively; rows with unknown
// paper types or colors count toward TotalPages only.
func breakdownRows(rows []*model.RecordRow) model.PageBreakdown {
	var b model.PageBreakdown
	seen := make(map[string]struct{})

	for _, r := range rows {
		b.TotalPages += r.Pages
		seen[r.TransactionID] = struct{}{}

		switch strings.ToLower(r.PaperType) {
		case "short":
			b.ShortPages += r.Pages
		case "long":
			b.LongPages += r.Pages
		case "a4":
			b.A4Pages += r.Pages
		case "photopaper":
			b.PhotoPaperPages += r.Pages
		}

		switch strings.ToLower(r.Color) {
		case "black":
			b.BlackPages += r.Pages
		case "colored":
			b.ColoredPages += r.Pages
		}
	}

	b.NumTransactions = len(seen)
	return b
}
