package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fasthttp/router"
	"github.com/inkpress/printdesk/internal/model"
	"github.com/inkpress/printdesk/internal/services"
	xhttp "github.com/inkpress/printdesk/pkg/http"
)

type OrderService interface {
	Submit(ctx context.Context, p model.OrderCreateRequest) (*model.OrderRequest, error)
	Process(ctx context.Context, id int64) (string, error)
	Reject(ctx context.Context, id int64) error
	List(ctx context.Context, status model.OrderStatus, page int) ([]*model.OrderRequest, model.Pagination, error)
}

type OrderHandler struct {
	svc OrderService
}

func RegisterOrderRoutes(r *router.Router, h *OrderHandler) {
	r.POST("/submit-customer-order", h.SubmitOrder)
	r.GET("/get-customer-orders", h.ListOrders)
	r.POST("/process-order/{id}", h.ProcessOrder)
	r.POST("/reject-order/{id}", h.RejectOrder)
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{
		svc: svc,
	}
}

type submitOrderRequest struct {
	CustomerName string            `json:"customerName"`
	FileName     string            `json:"fileName"`
	FileURL      string            `json:"fileUrl"`
	Note         string            `json:"note"`
	Items        []lineItemRequest `json:"items"`
}

type orderItemResponse struct {
	PaperType    string  `json:"paperType"`
	Color        string  `json:"color"`
	Pages        int     `json:"pages"`
	PricePerPage float64 `json:"pricePerPage"`
	Total        float64 `json:"total"`
}

type orderResponse struct {
	RequestID    int64               `json:"requestId"`
	CustomerName string              `json:"customerName"`
	FileName     string              `json:"fileName"`
	FileURL      string              `json:"fileUrl"`
	Note         string              `json:"note"`
	RequestDate  string              `json:"requestDate"`
	Status       string              `json:"status"`
	Items        []orderItemResponse `json:"items"`
}

type listOrdersResponse struct {
	Orders     []orderResponse  `json:"orders"`
	Pagination model.Pagination `json:"pagination"`
}

func toOrderResponse(o *model.OrderRequest) orderResponse {
	resp := orderResponse{
		RequestID:    o.ID,
		CustomerName: o.CustomerName,
		FileName:     o.FileName,
		FileURL:      o.FileURL,
		Note:         o.Note,
		RequestDate:  o.RequestDate.Format(apiDateLayout + " " + apiTimeLayout),
		Status:       string(o.Status),
		Items:        make([]orderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			PaperType:    it.PaperType,
			Color:        it.Color,
			Pages:        it.Pages,
			PricePerPage: it.PricePerPage.InexactFloat64(),
			Total:        it.Total.InexactFloat64(),
		})
	}
	return resp
}

/* --------------------------------- Routes ----------------------------------- */

func (h *OrderHandler) SubmitOrder(ctx *xhttp.RequestCtx) {
	var req submitOrderRequest
	if err := readJSON(ctx, &req); err != nil {
		writeMessage(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	created, err := h.svc.Submit(ctx, model.OrderCreateRequest{
		CustomerName: req.CustomerName,
		FileName:     req.FileName,
		FileURL:      req.FileURL,
		Note:         req.Note,
		Items:        toLineItems(req.Items),
	})
	if err != nil {
		if errors.Is(err, services.ErrMissingCustomerName) ||
			errors.Is(err, services.ErrMissingFileName) ||
			errors.Is(err, services.ErrEmptyOrderItems) {
			writeMessage(ctx, xhttp.StatusBadRequest, "Missing required customer info or items.")
			return
		}
		writeMessage(ctx, xhttp.StatusInternalServerError, "Failed to submit order request: "+err.Error())
		return
	}

	writeJSON(ctx, xhttp.StatusOK, map[string]any{
		"message":   "Order request submitted successfully!",
		"requestId": created.ID,
	})
}

func (h *OrderHandler) ListOrders(ctx *xhttp.RequestCtx) {
	status := model.OrderStatus(query(ctx, "status"))
	if status == "" {
		status = model.OrderStatusAll
	}

	orders, pagination, err := h.svc.List(ctx, status, queryPage(ctx))
	if err != nil {
		writeMessage(ctx, xhttp.StatusInternalServerError, "Failed to load orders: "+err.Error())
		return
	}

	resp := listOrdersResponse{
		Orders:     make([]orderResponse, 0, len(orders)),
		Pagination: pagination,
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(o))
	}
	writeJSON(ctx, xhttp.StatusOK, resp)
}

func (h *OrderHandler) ProcessOrder(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		writeMessage(ctx, xhttp.StatusNotFound, "Order request not found.")
		return
	}

	txnID, err := h.svc.Process(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			writeMessage(ctx, xhttp.StatusNotFound, "Order request not found.")
		case errors.Is(err, services.ErrOrderAlreadyProcessed):
			writeMessage(ctx, xhttp.StatusBadRequest, "Order already processed.")
		default:
			writeMessage(ctx, xhttp.StatusInternalServerError,
				fmt.Sprintf("Failed to process order request %d: %s", id, err.Error()))
		}
		return
	}

	writeMessage(ctx, xhttp.StatusOK,
		fmt.Sprintf("Order request %d processed successfully! Transaction %s created.", id, txnID))
}

func (h *OrderHandler) RejectOrder(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		writeMessage(ctx, xhttp.StatusNotFound, "Order request not found.")
		return
	}

	if err := h.svc.Reject(ctx, id); err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			writeMessage(ctx, xhttp.StatusNotFound, "Order request not found.")
		case errors.Is(err, services.ErrOrderAlreadyRejected):
			writeMessage(ctx, xhttp.StatusBadRequest, "Order already rejected.")
		default:
			writeMessage(ctx, xhttp.StatusInternalServerError,
				fmt.Sprintf("Failed to reject order request %d: %s", id, err.Error()))
		}
		return
	}

	writeMessage(ctx, xhttp.StatusOK, fmt.Sprintf("Order request %d rejected successfully!", id))
}

func pathID(ctx *xhttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
