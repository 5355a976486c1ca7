package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/inkpress/printdesk/internal/model"
	"github.com/inkpress/printdesk/internal/services"
	xhttp "github.com/inkpress/printdesk/pkg/http"
	"github.com/shopspring/decimal"
)

// Wire formats for dates and times, matching what the storefront displays.
const (
	apiDateLayout = "01/02/2006"
	apiTimeLayout = "03:04PM"
)

type TransactionService interface {
	Record(ctx context.Context, items []model.LineItem) (*model.TransactionHeader, error)
	Records(ctx context.Context) ([]*model.RecordRow, error)
	Reset(ctx context.Context) error
}

type TransactionHandler struct {
	svc TransactionService
}

func RegisterTransactionRoutes(r *router.Router, h *TransactionHandler) {
	r.POST("/confirm-transaction", h.ConfirmTransaction)
	r.GET("/get-records", h.ListRecords)
	r.POST("/reset-records", h.ResetRecords)
}

func NewTransactionHandler(svc TransactionService) *TransactionHandler {
	return &TransactionHandler{
		svc: svc,
	}
}

type lineItemRequest struct {
	PaperType    string  `json:"paperType"`
	Color        string  `json:"color"`
	Pages        int     `json:"pages"`
	PricePerPage float64 `json:"pricePerPage"`
	ItemTotal    float64 `json:"itemTotal"`
}

func (r lineItemRequest) toModel() model.LineItem {
	return model.LineItem{
		PaperType:    r.PaperType,
		Color:        r.Color,
		Pages:        r.Pages,
		PricePerPage: decimal.NewFromFloat(r.PricePerPage),
		Total:        decimal.NewFromFloat(r.ItemTotal),
	}
}

func toLineItems(reqs []lineItemRequest) []model.LineItem {
	items := make([]model.LineItem, len(reqs))
	for i, r := range reqs {
		items[i] = r.toModel()
	}
	return items
}

type confirmTransactionRequest struct {
	Items []lineItemRequest `json:"items"`
}

type recordRowResponse struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	PaperType    string  `json:"paperType"`
	Color        string  `json:"color"`
	Pages        int     `json:"pages"`
	PricePerPage float64 `json:"pricePerPage"`
	Total        float64 `json:"total"`
}

func toRecordRowResponse(r *model.RecordRow) recordRowResponse {
	return recordRowResponse{
		ID:           r.TransactionID,
		Date:         r.Date.Format(apiDateLayout),
		Time:         r.Time.Format(apiTimeLayout),
		PaperType:    r.PaperType,
		Color:        r.Color,
		Pages:        r.Pages,
		PricePerPage: r.PricePerPage.InexactFloat64(),
		Total:        r.Total.InexactFloat64(),
	}
}

func toRecordRowResponses(rows []*model.RecordRow) []recordRowResponse {
	out := make([]recordRowResponse, len(rows))
	for i, r := range rows {
		out[i] = toRecordRowResponse(r)
	}
	return out
}

/* --------------------------------- Routes ----------------------------------- */

func (h *TransactionHandler) ConfirmTransaction(ctx *xhttp.RequestCtx) {
	var req confirmTransactionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeMessage(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	header, err := h.svc.Record(ctx, toLineItems(req.Items))
	if err != nil {
		if errors.Is(err, services.ErrEmptyItems) {
			writeMessage(ctx, xhttp.StatusBadRequest, "No items provided for transaction")
			return
		}
		writeMessage(ctx, xhttp.StatusInternalServerError, "Failed to confirm transaction: "+err.Error())
		return
	}

	writeJSON(ctx, xhttp.StatusOK, map[string]any{
		"message":       "Transaction confirmed and saved!",
		"transactionId": header.ID,
	})
}

func (h *TransactionHandler) ListRecords(ctx *xhttp.RequestCtx) {
	rows, err := h.svc.Records(ctx)
	if err != nil {
		writeMessage(ctx, xhttp.StatusInternalServerError, "Failed to load records: "+err.Error())
		return
	}
	writeJSON(ctx, xhttp.StatusOK, toRecordRowResponses(rows))
}

func (h *TransactionHandler) ResetRecords(ctx *xhttp.RequestCtx) {
	if err := h.svc.Reset(ctx); err != nil {
		writeMessage(ctx, xhttp.StatusInternalServerError, "Failed to reset records: "+err.Error())
		return
	}
	writeMessage(ctx, xhttp.StatusOK, "All records deleted successfully!")
}

/* -------------------------------- Helpers ----------------------------------- */

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	return json.Unmarshal(ctx.PostBody(), dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeMessage(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"message": msg})
}

func query(ctx *xhttp.RequestCtx, name string) string {
	return string(ctx.QueryArgs().Peek(name))
}

func queryPage(ctx *xhttp.RequestCtx) int {
	page := 1
	if v := query(ctx, "page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	return page
}
