package deposits

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

// ListFilters describe the inputs supported by the admin deposit list.
type ListFilters struct {
	Status        *enums.DepositStatus
	DeliveryManID *uuid.UUID
	DateFrom      *time.Time
	DateTo        *time.Time
}

// DepositSummary exposes the fields returned in deposit lists.
type DepositSummary struct {
	ID            uuid.UUID           `json:"id"`
	DeliveryManID uuid.UUID           `json:"deliveryManId"`
	Amount        decimal.Decimal     `json:"amount"`
	Status        enums.DepositStatus `json:"status"`
	Date          time.Time           `json:"date"`
	Notes         *string             `json:"notes,omitempty"`
	ResolvedBy    *uuid.UUID          `json:"resolvedBy,omitempty"`
	ResolvedAt    *time.Time          `json:"resolvedAt,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
}

// DepositList wraps a page of deposits plus the next cursor.
type DepositList struct {
	Deposits   []DepositSummary `json:"deposits"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// BalanceSnapshot is the real-time reconciliation view for one agent.
// Balance counts only confirmed deposits; pending money is reported
// separately and never reduces what the agent still owes.
type BalanceSnapshot struct {
	DeliveryManID  uuid.UUID       `json:"deliveryManId"`
	TotalCollected decimal.Decimal `json:"totalCollected"`
	TotalDeposited decimal.Decimal `json:"totalDeposited"`
	PendingAmount  decimal.Decimal `json:"pendingAmount"`
	Balance        decimal.Decimal `json:"balance"`
}
