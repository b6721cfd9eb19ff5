package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

// Order represents a single customer shipment handled by the delivery fleet.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber     string              `gorm:"column:order_number;type:text;not null;uniqueIndex" json:"orderNumber"`
	OrganizationID  uuid.UUID           `gorm:"column:organization_id;type:uuid;not null;index" json:"organizationId"`
	FournisseurID   *uuid.UUID          `gorm:"column:fournisseur_id;type:uuid" json:"fournisseurId,omitempty"`
	CustomerName    string              `gorm:"column:customer_name;type:text;not null" json:"customerName"`
	CustomerPhone   string              `gorm:"column:customer_phone;type:text;not null" json:"customerPhone"`
	CustomerAddress string              `gorm:"column:customer_address;type:text;not null" json:"customerAddress"`
	City            string              `gorm:"column:city;type:text" json:"city"`
	Region          string              `gorm:"column:region;type:text" json:"region"`
	Total           decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null;default:'cash'" json:"paymentMethod"`
	Status          enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'" json:"status"`
	AssignedAgentID *uuid.UUID          `gorm:"column:assigned_agent_id;type:uuid;index" json:"assignedAgentId,omitempty"`
	BordereauID     *uuid.UUID          `gorm:"column:bordereau_id;type:uuid;index" json:"bordereauId,omitempty"`
	DeliveryNote    *string             `gorm:"column:delivery_note;type:text" json:"deliveryNote,omitempty"`
	DeliveredAt     *time.Time          `gorm:"column:delivered_at" json:"deliveredAt,omitempty"`
	ReturnedAt      *time.Time          `gorm:"column:returned_at" json:"returnedAt,omitempty"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// OrderItem is a single line on an order.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index" json:"orderId"`
	Name      string          `gorm:"column:name;type:text;not null" json:"name"`
	SKU       *string         `gorm:"column:sku;type:text" json:"sku,omitempty"`
	Qty       int             `gorm:"column:qty;not null" json:"qty"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unitPrice"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null" json:"lineTotal"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
