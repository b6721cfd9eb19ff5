package deposits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/internal/delivery"
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
}

// DeclareInput captures an agent's own cash declaration.
type DeclareInput struct {
	Actor  delivery.Actor
	Amount decimal.Decimal
	Notes  *string
}

// ManualInput captures an admin recording cash already handed over.
type ManualInput struct {
	Actor         delivery.Actor
	DeliveryManID uuid.UUID
	Amount        decimal.Decimal
	Notes         *string
}

// ResolveInput captures an admin confirming or rejecting a pending deposit.
type ResolveInput struct {
	DepositID uuid.UUID
	Actor     delivery.Actor
	Decision  enums.DepositStatus
}

// Service defines the deposit reconciliation operations.
type Service interface {
	Declare(ctx context.Context, input DeclareInput) (*models.Deposit, error)
	RecordManual(ctx context.Context, input ManualInput) (*models.Deposit, error)
	Resolve(ctx context.Context, input ResolveInput) (*models.Deposit, error)
	Balance(ctx context.Context, actor delivery.Actor, agentID uuid.UUID) (*BalanceSnapshot, error)
	List(ctx context.Context, actor delivery.Actor, params pagination.Params, filters ListFilters) (*DepositList, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a deposits service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deposits repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

func (s *service) Declare(ctx context.Context, input DeclareInput) (*models.Deposit, error) {
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}

	var created *models.Deposit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		deposit := &models.Deposit{
			DeliveryManID:  input.Actor.UserID,
			OrganizationID: input.Actor.OrganizationID,
			Amount:         input.Amount,
			Status:         enums.DepositStatusPending,
			Date:           time.Now(),
			Notes:          trimNotes(input.Notes),
		}
		deposit, err := repo.Create(ctx, deposit)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deposit")
		}
		created = deposit

		event := outbox.DomainEvent{
			EventType:     enums.EventDepositDeclared,
			AggregateType: enums.AggregateDeposit,
			AggregateID:   deposit.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: payloads.DepositDeclaredEvent{
				DepositID:      deposit.ID,
				OrganizationID: deposit.OrganizationID,
				AgentID:        deposit.DeliveryManID,
				AgentName:      input.Actor.Name,
				Amount:         deposit.Amount,
				DeclaredAt:     deposit.Date,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RecordManual creates a deposit that is confirmed on arrival, for cash an
// admin physically received without a prior declaration.
func (s *service) RecordManual(ctx context.Context, input ManualInput) (*models.Deposit, error) {
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Actor.Role.CanAdministrate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may record manual deposits")
	}
	if input.DeliveryManID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery man id required")
	}
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}

	var created *models.Deposit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := time.Now()
		adminID := input.Actor.UserID
		deposit := &models.Deposit{
			DeliveryManID:  input.DeliveryManID,
			OrganizationID: input.Actor.OrganizationID,
			Amount:         input.Amount,
			Status:         enums.DepositStatusConfirmed,
			Date:           now,
			Notes:          trimNotes(input.Notes),
			CollectedBy:    &adminID,
			ResolvedBy:     &adminID,
			ResolvedAt:     &now,
		}
		deposit, err := repo.Create(ctx, deposit)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create manual deposit")
		}
		created = deposit

		event := outbox.DomainEvent{
			EventType:     enums.EventDepositResolved,
			AggregateType: enums.AggregateDeposit,
			AggregateID:   deposit.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: payloads.DepositResolvedEvent{
				DepositID:      deposit.ID,
				OrganizationID: deposit.OrganizationID,
				AgentID:        deposit.DeliveryManID,
				Amount:         deposit.Amount,
				Status:         deposit.Status,
				ResolvedBy:     adminID,
				ResolvedAt:     now,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Resolve(ctx context.Context, input ResolveInput) (*models.Deposit, error) {
	if input.DepositID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Actor.Role.CanAdministrate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may resolve deposits")
	}
	if !input.Decision.IsResolution() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be confirmed or rejected")
	}

	var resolved *models.Deposit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		rows, err := repo.ResolvePending(ctx, input.Actor.OrganizationID, input.DepositID, input.Decision, input.Actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve deposit")
		}
		if rows == 0 {
			deposit, err := repo.FindByID(ctx, input.Actor.OrganizationID, input.DepositID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "deposit not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deposit")
			}
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("deposit already resolved as %s", deposit.Status))
		}

		deposit, err := repo.FindByID(ctx, input.Actor.OrganizationID, input.DepositID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload deposit")
		}
		resolved = deposit

		event := outbox.DomainEvent{
			EventType:     enums.EventDepositResolved,
			AggregateType: enums.AggregateDeposit,
			AggregateID:   deposit.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: payloads.DepositResolvedEvent{
				DepositID:      deposit.ID,
				OrganizationID: deposit.OrganizationID,
				AgentID:        deposit.DeliveryManID,
				Amount:         deposit.Amount,
				Status:         deposit.Status,
				ResolvedBy:     input.Actor.UserID,
				ResolvedAt:     time.Now(),
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// Balance recomputes the agent's reconciliation snapshot from the ledger,
// scoped to the actor's organization.
func (s *service) Balance(ctx context.Context, actor delivery.Actor, agentID uuid.UUID) (*BalanceSnapshot, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if agentID != actor.UserID && !actor.Role.CanAdministrate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "agents may only read their own balance")
	}

	collected, err := s.repo.SumCashCollected(ctx, actor.OrganizationID, agentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum collected cash")
	}
	deposited, err := s.repo.SumDepositsByStatus(ctx, actor.OrganizationID, agentID, enums.DepositStatusConfirmed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum confirmed deposits")
	}
	pending, err := s.repo.SumDepositsByStatus(ctx, actor.OrganizationID, agentID, enums.DepositStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum pending deposits")
	}

	return &BalanceSnapshot{
		DeliveryManID:  agentID,
		TotalCollected: collected,
		TotalDeposited: deposited,
		PendingAmount:  pending,
		Balance:        collected.Sub(deposited),
	}, nil
}

func (s *service) List(ctx context.Context, actor delivery.Actor, params pagination.Params, filters ListFilters) (*DepositList, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.Role.CanAdministrate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may list deposits")
	}
	list, err := s.repo.List(ctx, actor.OrganizationID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deposits")
	}
	return list, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	return nil
}

func trimNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func actorRef(actor delivery.Actor) *outbox.ActorRef {
	org := actor.OrganizationID
	return &outbox.ActorRef{
		UserID:         actor.UserID,
		OrganizationID: &org,
		Role:           actor.Role.String(),
	}
}
