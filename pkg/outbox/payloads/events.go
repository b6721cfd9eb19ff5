package payloads

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

// Room name fragments used when routing realtime notifications.
const (
	RoomAdminGroup    = "admin_group"
	RoomDeliveryGroup = "delivery_group"
)

// SupplierRoom returns the room for one supplier's notifications.
func SupplierRoom(supplierID uuid.UUID) string {
	return fmt.Sprintf("supplier_%s", supplierID)
}

// OrganizationRoom returns the tenant-wide room.
func OrganizationRoom(orgID uuid.UUID) string {
	return fmt.Sprintf("org_%s", orgID)
}

// RoomsProvider is implemented by payloads that know which realtime rooms
// should receive them.
type RoomsProvider interface {
	Rooms() []string
}

// OrderClaimedEvent is emitted when an agent wins the race for an order.
type OrderClaimedEvent struct {
	OrderID        uuid.UUID       `json:"orderId"`
	OrderNumber    string          `json:"orderNumber"`
	OrganizationID uuid.UUID       `json:"organizationId"`
	FournisseurID  *uuid.UUID      `json:"fournisseurId,omitempty"`
	AgentID        uuid.UUID       `json:"agentId"`
	AgentName      string          `json:"agentName"`
	Total          decimal.Decimal `json:"total"`
	ClaimedAt      time.Time       `json:"claimedAt"`
}

func (e OrderClaimedEvent) Rooms() []string {
	rooms := []string{RoomAdminGroup, OrganizationRoom(e.OrganizationID)}
	if e.FournisseurID != nil {
		rooms = append(rooms, SupplierRoom(*e.FournisseurID))
	}
	return rooms
}

// BordereauClaimedEvent is emitted when an agent claims a whole manifest.
type BordereauClaimedEvent struct {
	BordereauID    uuid.UUID       `json:"bordereauId"`
	Code           string          `json:"code"`
	OrganizationID uuid.UUID       `json:"organizationId"`
	AgentID        uuid.UUID       `json:"agentId"`
	AgentName      string          `json:"agentName"`
	OrderCount     int             `json:"orderCount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	ClaimedAt      time.Time       `json:"claimedAt"`
}

func (e BordereauClaimedEvent) Rooms() []string {
	return []string{RoomAdminGroup, OrganizationRoom(e.OrganizationID)}
}

// OrderStatusChangedEvent reports a status transition on a single order.
type OrderStatusChangedEvent struct {
	OrderID        uuid.UUID         `json:"orderId"`
	OrderNumber    string            `json:"orderNumber"`
	OrganizationID uuid.UUID         `json:"organizationId"`
	FournisseurID  *uuid.UUID        `json:"fournisseurId,omitempty"`
	AgentID        *uuid.UUID        `json:"agentId,omitempty"`
	OldStatus      enums.OrderStatus `json:"oldStatus"`
	NewStatus      enums.OrderStatus `json:"newStatus"`
	Note           *string           `json:"note,omitempty"`
	ChangedAt      time.Time         `json:"changedAt"`
}

func (e OrderStatusChangedEvent) Rooms() []string {
	rooms := []string{RoomAdminGroup, OrganizationRoom(e.OrganizationID)}
	if e.FournisseurID != nil {
		rooms = append(rooms, SupplierRoom(*e.FournisseurID))
	}
	// Orders entering the claimable pool are broadcast to the whole fleet.
	if e.NewStatus == enums.OrderStatusShipped {
		rooms = append(rooms, RoomDeliveryGroup)
	}
	return rooms
}

// BordereauResolvedEvent is emitted once every order on a manifest reached a
// terminal state.
type BordereauResolvedEvent struct {
	BordereauID    uuid.UUID `json:"bordereauId"`
	Code           string    `json:"code"`
	OrganizationID uuid.UUID `json:"organizationId"`
	AgentID        uuid.UUID `json:"agentId"`
	ResolvedAt     time.Time `json:"resolvedAt"`
}

func (e BordereauResolvedEvent) Rooms() []string {
	return []string{RoomAdminGroup, OrganizationRoom(e.OrganizationID)}
}

// DepositDeclaredEvent is emitted when an agent declares cash for handover.
type DepositDeclaredEvent struct {
	DepositID      uuid.UUID       `json:"depositId"`
	OrganizationID uuid.UUID       `json:"organizationId"`
	AgentID        uuid.UUID       `json:"agentId"`
	AgentName      string          `json:"agentName"`
	Amount         decimal.Decimal `json:"amount"`
	DeclaredAt     time.Time       `json:"declaredAt"`
}

func (e DepositDeclaredEvent) Rooms() []string {
	return []string{RoomAdminGroup, OrganizationRoom(e.OrganizationID)}
}

// DepositResolvedEvent is emitted when an admin confirms or rejects a deposit.
type DepositResolvedEvent struct {
	DepositID      uuid.UUID           `json:"depositId"`
	OrganizationID uuid.UUID           `json:"organizationId"`
	AgentID        uuid.UUID           `json:"agentId"`
	Amount         decimal.Decimal     `json:"amount"`
	Status         enums.DepositStatus `json:"status"`
	ResolvedBy     uuid.UUID           `json:"resolvedBy"`
	ResolvedAt     time.Time           `json:"resolvedAt"`
}

func (e DepositResolvedEvent) Rooms() []string {
	return []string{RoomAdminGroup, RoomDeliveryGroup, OrganizationRoom(e.OrganizationID)}
}
