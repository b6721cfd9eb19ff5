package delivery

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

// OrderSummary exposes the fields agents see in their delivery lists.
type OrderSummary struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	CustomerName    string              `json:"customerName"`
	CustomerPhone   string              `json:"customerPhone"`
	CustomerAddress string              `json:"customerAddress"`
	City            string              `json:"city,omitempty"`
	Total           decimal.Decimal     `json:"total"`
	PaymentMethod   enums.PaymentMethod `json:"paymentMethod"`
	Status          enums.OrderStatus   `json:"status"`
	DeliveryNote    *string             `json:"deliveryNote,omitempty"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// ScanResult tells the client what kind of entity a scanned code refers to.
type ScanResult struct {
	Kind      string            `json:"kind"` // "order" or "bordereau"
	Order     *OrderSummary     `json:"order,omitempty"`
	Bordereau *BordereauPreview `json:"bordereau,omitempty"`
}

// BordereauPreview is the read-only manifest summary returned by scans.
type BordereauPreview struct {
	ID          uuid.UUID             `json:"id"`
	Code        string                `json:"code"`
	Status      enums.BordereauStatus `json:"status"`
	OrderCount  int                   `json:"orderCount"`
	TotalAmount decimal.Decimal       `json:"totalAmount"`
	Orders      []OrderSummary        `json:"orders,omitempty"`
}

// NewOrderSummary maps a model row into the list shape.
func NewOrderSummary(order models.Order) OrderSummary {
	return OrderSummary{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		CustomerAddress: order.CustomerAddress,
		City:            order.City,
		Total:           order.Total,
		PaymentMethod:   order.PaymentMethod,
		Status:          order.Status,
		DeliveryNote:    order.DeliveryNote,
		DeliveredAt:     order.DeliveredAt,
		CreatedAt:       order.CreatedAt,
	}
}
