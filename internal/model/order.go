package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a customer order request.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusProcessed OrderStatus = "Processed"
	OrderStatusRejected  OrderStatus = "Rejected"

	// OrderStatusAll is the list-filter sentinel matching every status.
	OrderStatusAll OrderStatus = "All"
)

// OrderRequest is a customer's print-order submission awaiting shop action.
type OrderRequest struct {
	ID           int64
	CustomerName string
	FileName     string
	FileURL      string
	Note         string
	RequestDate  time.Time
	Status       OrderStatus
	Items        []OrderItem
}

// OrderItem mirrors the line shape of a transaction item but belongs to a
// request; it gains a transaction identity only when the order is processed.
type OrderItem struct {
	ID           int64
	RequestID    int64
	PaperType    string
	Color        string
	Pages        int
	PricePerPage decimal.Decimal
	Total        decimal.Decimal
}

// OrderCreateRequest is the input for submitting an order.
type OrderCreateRequest struct {
	CustomerName string
	FileName     string
	FileURL      string
	Note         string
	Items        []LineItem
}

// OrderFilter controls List queries.
type OrderFilter struct {
	Status OrderStatus // OrderStatusAll matches everything
	Limit  int
	Offset int
}
