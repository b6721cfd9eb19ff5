package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

// Bordereau groups orders into a single scannable manifest for one agent run.
type Bordereau struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code           string                `gorm:"column:code;type:text;not null;uniqueIndex" json:"code"`
	OrganizationID uuid.UUID             `gorm:"column:organization_id;type:uuid;not null;index" json:"organizationId"`
	Status         enums.BordereauStatus `gorm:"column:status;type:bordereau_status;not null;default:'pending'" json:"status"`
	DeliveryManID  *uuid.UUID            `gorm:"column:delivery_man_id;type:uuid;index" json:"deliveryManId,omitempty"`
	TotalAmount    decimal.Decimal       `gorm:"column:total_amount;type:numeric(12,2);not null" json:"totalAmount"`
	ResolvedAt     *time.Time            `gorm:"column:resolved_at" json:"resolvedAt,omitempty"`
	Orders         []Order               `gorm:"foreignKey:BordereauID" json:"orders,omitempty"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
