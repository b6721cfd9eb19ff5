package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

// Deposit records cash a delivery agent hands back to the company.
// Amount is immutable after creation; only status and the resolver may change.
type Deposit struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DeliveryManID  uuid.UUID           `gorm:"column:delivery_man_id;type:uuid;not null;index" json:"deliveryManId"`
	OrganizationID uuid.UUID           `gorm:"column:organization_id;type:uuid;not null;index" json:"organizationId"`
	Amount         decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Status         enums.DepositStatus `gorm:"column:status;type:deposit_status;not null;default:'pending'" json:"status"`
	Date           time.Time           `gorm:"column:date;not null" json:"date"`
	Notes          *string             `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CollectedBy    *uuid.UUID          `gorm:"column:collected_by;type:uuid" json:"collectedBy,omitempty"`
	ResolvedBy     *uuid.UUID          `gorm:"column:resolved_by;type:uuid" json:"resolvedBy,omitempty"`
	ResolvedAt     *time.Time          `gorm:"column:resolved_at" json:"resolvedAt,omitempty"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
