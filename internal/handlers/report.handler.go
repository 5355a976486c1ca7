package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"
	"github.com/inkpress/printdesk/internal/model"
	xhttp "github.com/inkpress/printdesk/pkg/http"
)

type ReportService interface {
	Summary(ctx context.Context) (*model.SalesSummary, error)
	Range(ctx context.Context, from, to time.Time, page int) (*model.RangeReport, error)
}

type ReportHandler struct {
	svc ReportService
}

func RegisterReportRoutes(r *router.Router, h *ReportHandler) {
	r.GET("/get-sales-summary", h.SalesSummary)
	r.GET("/get-detailed-report", h.DetailedReport)
}

func NewReportHandler(svc ReportService) *ReportHandler {
	return &ReportHandler{
		svc: svc,
	}
}

type salesSummaryResponse struct {
	TodayIncome float64 `json:"todayIncome"`
	MonthIncome float64 `json:"monthIncome"`
	YearIncome  float64 `json:"yearIncome"`
	breakdownResponse
}

type breakdownResponse struct {
	TotalPages           int `json:"totalPages"`
	NumTransactions      int `json:"numTransactions"`
	TotalShortPages      int `json:"totalShortPages"`
	TotalLongPages       int `json:"totalLongPages"`
	TotalA4Pages         int `json:"totalA4Pages"`
	TotalPhotoPaperPages int `json:"totalPhotoPaperPages"`
	TotalBlackPages      int `json:"totalBlackPages"`
	TotalColoredPages    int `json:"totalColoredPages"`
}

type rangeSummaryResponse struct {
	TotalSales float64 `json:"totalSales"`
	breakdownResponse
}

type detailedReportResponse struct {
	Records    []recordRowResponse  `json:"records"`
	Summary    rangeSummaryResponse `json:"summary"`
	Pagination model.Pagination     `json:"pagination"`
}

func toBreakdownResponse(b model.PageBreakdown) breakdownResponse {
	return breakdownResponse{
		TotalPages:           b.TotalPages,
		NumTransactions:      b.NumTransactions,
		TotalShortPages:      b.ShortPages,
		TotalLongPages:       b.LongPages,
		TotalA4Pages:         b.A4Pages,
		TotalPhotoPaperPages: b.PhotoPaperPages,
		TotalBlackPages:      b.BlackPages,
		TotalColoredPages:    b.ColoredPages,
	}
}

/* --------------------------------- Routes ----------------------------------- */

func (h *ReportHandler) SalesSummary(ctx *xhttp.RequestCtx) {
	summary, err := h.svc.Summary(ctx)
	if err != nil {
		writeMessage(ctx, xhttp.StatusInternalServerError, "Failed to load sales summary: "+err.Error())
		return
	}

	writeJSON(ctx, xhttp.StatusOK, salesSummaryResponse{
		TodayIncome:       summary.TodayIncome.InexactFloat64(),
		MonthIncome:       summary.MonthIncome.InexactFloat64(),
		YearIncome:        summary.YearIncome.InexactFloat64(),
		breakdownResponse: toBreakdownResponse(summary.PageBreakdown),
	})
}

func (h *ReportHandler) DetailedReport(ctx *xhttp.RequestCtx) {
	fromStr := query(ctx, "fromDate")
	toStr := query(ctx, "toDate")
	if fromStr == "" || toStr == "" {
		writeMessage(ctx, xhttp.StatusBadRequest, "Missing date parameters")
		return
	}

	from, err := time.Parse(apiDateLayout, fromStr)
	if err != nil {
		writeMessage(ctx, xhttp.StatusBadRequest, "Invalid fromDate, expected MM/DD/YYYY")
		return
	}
	to, err := time.Parse(apiDateLayout, toStr)
	if err != nil {
		writeMessage(ctx, xhttp.StatusBadRequest, "Invalid toDate, expected MM/DD/YYYY")
		return
	}

	report, err := h.svc.Range(ctx, from, to, queryPage(ctx))
	if err != nil {
		writeMessage(ctx, xhttp.StatusInternalServerError, "Failed to build report: "+err.Error())
		return
	}

	writeJSON(ctx, xhttp.StatusOK, detailedReportResponse{
		Records: toRecordRowResponses(report.Records),
		Summary: rangeSummaryResponse{
			TotalSales:        report.Summary.TotalSales.InexactFloat64(),
			breakdownResponse: toBreakdownResponse(report.Summary.PageBreakdown),
		},
		Pagination: report.Pagination,
	})
}
