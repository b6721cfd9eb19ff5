package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
	pkgerrors "github.com/colisdirect/colisdirect-backend/pkg/errors"
	"github.com/colisdirect/colisdirect-backend/pkg/outbox"
	"github.com/colisdirect/colisdirect-backend/pkg/outbox/payloads"
	"github.com/colisdirect/colisdirect-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Actor carries the authenticated identity driving an operation.
type Actor struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           enums.MemberRole
	Name           string
}

// ClaimInput captures an agent's request to claim one order.
type ClaimInput struct {
	OrderIdentifier string
	Actor           Actor
}

// TransitionInput captures a status change request on a held order.
type TransitionInput struct {
	OrderID uuid.UUID
	Target  enums.OrderStatus
	Note    *string
	Actor   Actor
}

// Service defines the claim and status-transition operations.
type Service interface {
	Claim(ctx context.Context, input ClaimInput) (*models.Order, error)
	Deliver(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	ApplyTransition(ctx context.Context, input TransitionInput) (*models.Order, error)
	MyDeliveries(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error)
	MyHistory(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error)
	Scan(ctx context.Context, code string) (*ScanResult, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a delivery service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

func (s *service) Claim(ctx context.Context, input ClaimInput) (*models.Order, error) {
	identifier := strings.TrimSpace(input.OrderIdentifier)
	if identifier == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order identifier required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var claimed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderByIdentifier(ctx, identifier)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		rows, err := repo.ClaimOrder(ctx, order.ID, input.Actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim order")
		}
		if rows == 0 {
			// Lost the race or order not claimable; re-read to tell which.
			current, err := repo.FindOrderByID(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}
			if current.AssignedAgentID != nil && *current.AssignedAgentID == input.Actor.UserID {
				// Same agent re-scan: idempotent success, no second event.
				claimed = current
				return nil
			}
			if current.AssignedAgentID != nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already assigned")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not ready for pickup")
		}

		order.AssignedAgentID = &input.Actor.UserID
		order.Status = enums.OrderStatusAssigned
		claimed = order

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderClaimed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.OrderClaimedEvent{
				OrderID:        order.ID,
				OrderNumber:    order.OrderNumber,
				OrganizationID: order.OrganizationID,
				FournisseurID:  order.FournisseurID,
				AgentID:        input.Actor.UserID,
				AgentName:      input.Actor.Name,
				Total:          order.Total,
				ClaimedAt:      time.Now(),
			},
		}
		return s.outbox.EmitIfNotExists(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (s *service) Deliver(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	return s.ApplyTransition(ctx, TransitionInput{
		OrderID: orderID,
		Target:  enums.OrderStatusDelivered,
		Actor:   actor,
	})
}

func (s *service) ApplyTransition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if err := authorizeTransition(order, input); err != nil {
			return err
		}
		if order.Status == input.Target {
			// Idempotent re-submission of the same target.
			updated = order
			return nil
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is in a terminal state")
		}
		if !canTransition(order.Status, input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot transition from %s to %s", order.Status, input.Target))
		}
		if input.Target.RequiresNote() && noteEmpty(input.Note) {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("a note is required for %s", input.Target))
		}

		from := order.Status
		now := time.Now()
		updates := map[string]any{
			"status":     input.Target,
			"updated_at": now,
		}
		if input.Note != nil && strings.TrimSpace(*input.Note) != "" {
			note := strings.TrimSpace(*input.Note)
			updates["delivery_note"] = note
		}
		switch input.Target {
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = now
		case enums.OrderStatusReturned:
			updates["returned_at"] = now
		}

		rows, err := repo.TransitionOrder(ctx, order.ID, from, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if rows == 0 {
			current, err := repo.FindOrderByID(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}
			if current.Status == input.Target {
				updated = current
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently")
		}

		order.Status = input.Target
		if v, ok := updates["delivery_note"].(string); ok {
			order.DeliveryNote = &v
		}
		if input.Target == enums.OrderStatusDelivered {
			order.DeliveredAt = &now
		}
		if input.Target == enums.OrderStatusReturned {
			order.ReturnedAt = &now
		}
		updated = order

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.OrderStatusChangedEvent{
				OrderID:        order.ID,
				OrderNumber:    order.OrderNumber,
				OrganizationID: order.OrganizationID,
				FournisseurID:  order.FournisseurID,
				AgentID:        order.AssignedAgentID,
				OldStatus:      from,
				NewStatus:      input.Target,
				Note:           order.DeliveryNote,
				ChangedAt:      now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		if input.Target.IsTerminal() && order.BordereauID != nil {
			return s.maybeResolveBordereau(ctx, tx, repo, *order.BordereauID, input.Actor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// maybeResolveBordereau is the cascade check run after each terminal
// transition: once nothing on the manifest is outstanding, resolve it.
func (s *service) maybeResolveBordereau(ctx context.Context, tx *gorm.DB, repo Repository, bordereauID uuid.UUID, actor Actor) error {
	// Lock the manifest row first. Without it, two terminal transitions on
	// the last two open orders can both count the other's uncommitted update
	// as unresolved, both skip the resolution, and the manifest never closes.
	bordereau, err := repo.FindBordereauByIDForUpdate(ctx, bordereauID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock bordereau")
	}
	remaining, err := repo.CountUnresolvedByBordereau(ctx, bordereauID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unresolved orders")
	}
	if remaining > 0 {
		return nil
	}
	rows, err := repo.ResolveBordereau(ctx, bordereauID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve bordereau")
	}
	if rows == 0 {
		// Already resolved by a concurrent transition.
		return nil
	}

	agentID := uuid.Nil
	if bordereau.DeliveryManID != nil {
		agentID = *bordereau.DeliveryManID
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventBordereauResolved,
		AggregateType: enums.AggregateBordereau,
		AggregateID:   bordereau.ID,
		Version:       1,
		Actor:         buildActor(actor),
		Data: payloads.BordereauResolvedEvent{
			BordereauID:    bordereau.ID,
			Code:           bordereau.Code,
			OrganizationID: bordereau.OrganizationID,
			AgentID:        agentID,
			ResolvedAt:     time.Now(),
		},
	}
	return s.outbox.EmitIfNotExists(ctx, tx, event)
}

func (s *service) MyDeliveries(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListAssignedOrders(ctx, agentID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assigned orders")
	}
	return list, nil
}

func (s *service) MyHistory(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListResolvedOrders(ctx, agentID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list resolved orders")
	}
	return list, nil
}

// Scan resolves a raw scanned code server-side so clients never guess at
// label prefixes. Bordereau codes win over order numbers on the rare clash.
func (s *service) Scan(ctx context.Context, code string) (*ScanResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scan code required")
	}

	bordereau, err := s.repo.FindBordereauByCode(ctx, code)
	if err == nil {
		return &ScanResult{
			Kind:      "bordereau",
			Bordereau: newBordereauPreview(bordereau),
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan bordereau lookup")
	}

	order, err := s.repo.FindOrderByIdentifier(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order or bordereau matches this code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan order lookup")
	}
	summary := NewOrderSummary(*order)
	return &ScanResult{Kind: "order", Order: &summary}, nil
}

func newBordereauPreview(bordereau *models.Bordereau) *BordereauPreview {
	preview := &BordereauPreview{
		ID:          bordereau.ID,
		Code:        bordereau.Code,
		Status:      bordereau.Status,
		OrderCount:  len(bordereau.Orders),
		TotalAmount: bordereau.TotalAmount,
		Orders:      make([]OrderSummary, 0, len(bordereau.Orders)),
	}
	for _, order := range bordereau.Orders {
		preview.Orders = append(preview.Orders, NewOrderSummary(order))
	}
	return preview
}

func authorizeTransition(order *models.Order, input TransitionInput) error {
	if input.Actor.Role.CanAdministrate() {
		return nil
	}
	if !agentTransitions[input.Target] {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may apply this transition")
	}
	if order.AssignedAgentID == nil || *order.AssignedAgentID != input.Actor.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to you")
	}
	return nil
}

func noteEmpty(note *string) bool {
	return note == nil || strings.TrimSpace(*note) == ""
}

func buildActor(actor Actor) *outbox.ActorRef {
	org := actor.OrganizationID
	return &outbox.ActorRef{
		UserID:         actor.UserID,
		OrganizationID: &org,
		Role:           actor.Role.String(),
	}
}
