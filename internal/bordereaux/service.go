package bordereaux

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/internal/delivery"
	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
	pkgerrors "github.com/colisdirect/colisdirect-backend/pkg/errors"
	"github.com/colisdirect/colisdirect-backend/pkg/outbox"
	"github.com/colisdirect/colisdirect-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ClaimInput captures an agent's request to claim a whole manifest.
type ClaimInput struct {
	Code  string
	Actor delivery.Actor
}

// Service defines manifest claim and preview operations.
type Service interface {
	Claim(ctx context.Context, input ClaimInput) (*delivery.BordereauPreview, error)
	Preview(ctx context.Context, code string) (*delivery.BordereauPreview, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a bordereaux service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bordereaux repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

// Claim assigns the manifest and every contained order to the agent in one
// transaction. Either everything transfers or nothing does.
func (s *service) Claim(ctx context.Context, input ClaimInput) (*delivery.BordereauPreview, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bordereau code required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var claimed *models.Bordereau
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		bordereau, err := repo.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "bordereau not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bordereau")
		}

		if bordereau.DeliveryManID != nil {
			if *bordereau.DeliveryManID == input.Actor.UserID {
				// Same agent re-scan: idempotent success, no second event.
				claimed = bordereau
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "bordereau already assigned")
		}

		rows, err := repo.ClaimBordereau(ctx, bordereau.ID, input.Actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim bordereau")
		}
		if rows == 0 {
			current, err := repo.FindByID(ctx, bordereau.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload bordereau")
			}
			if current.DeliveryManID != nil && *current.DeliveryManID == input.Actor.UserID {
				claimed = current
				return nil
			}
			if current.DeliveryManID != nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "bordereau already assigned")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "bordereau is not ready for pickup")
		}

		total, err := repo.CountOrders(ctx, bordereau.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count manifest orders")
		}
		assigned, err := repo.ClaimContainedOrders(ctx, bordereau.ID, input.Actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim manifest orders")
		}
		if assigned != total {
			// Some order was already claimed individually; roll everything back
			// rather than claiming the remainder.
			return pkgerrors.New(pkgerrors.CodeConflict, "bordereau contains orders that are already assigned")
		}

		reloaded, err := repo.FindByID(ctx, bordereau.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload bordereau")
		}
		claimed = reloaded

		event := outbox.DomainEvent{
			EventType:     enums.EventBordereauClaimed,
			AggregateType: enums.AggregateBordereau,
			AggregateID:   bordereau.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: payloads.BordereauClaimedEvent{
				BordereauID:    bordereau.ID,
				Code:           bordereau.Code,
				OrganizationID: bordereau.OrganizationID,
				AgentID:        input.Actor.UserID,
				AgentName:      input.Actor.Name,
				OrderCount:     int(total),
				TotalAmount:    bordereau.TotalAmount,
				ClaimedAt:      time.Now(),
			},
		}
		return s.outbox.EmitIfNotExists(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return preview(claimed), nil
}

func (s *service) Preview(ctx context.Context, code string) (*delivery.BordereauPreview, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bordereau code required")
	}
	bordereau, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bordereau not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bordereau")
	}
	return preview(bordereau), nil
}

func preview(bordereau *models.Bordereau) *delivery.BordereauPreview {
	if bordereau == nil {
		return nil
	}
	p := &delivery.BordereauPreview{
		ID:          bordereau.ID,
		Code:        bordereau.Code,
		Status:      bordereau.Status,
		OrderCount:  len(bordereau.Orders),
		TotalAmount: bordereau.TotalAmount,
		Orders:      make([]delivery.OrderSummary, 0, len(bordereau.Orders)),
	}
	for _, order := range bordereau.Orders {
		p.Orders = append(p.Orders, delivery.NewOrderSummary(order))
	}
	return p
}

func actorRef(actor delivery.Actor) *outbox.ActorRef {
	org := actor.OrganizationID
	return &outbox.ActorRef{
		UserID:         actor.UserID,
		OrganizationID: &org,
		Role:           actor.Role.String(),
	}
}
