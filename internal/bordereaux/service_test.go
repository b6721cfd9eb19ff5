package bordereaux

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/internal/delivery"
	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
	pkgerrors "github.com/colisdirect/colisdirect-backend/pkg/errors"
	"github.com/colisdirect/colisdirect-backend/pkg/outbox"
)

type stubBordereauRepo struct {
	findByCode           func(ctx context.Context, code string) (*models.Bordereau, error)
	findByID             func(ctx context.Context, id uuid.UUID) (*models.Bordereau, error)
	claimBordereau       func(ctx context.Context, bordereauID, agentID uuid.UUID) (int64, error)
	claimContainedOrders func(ctx context.Context, bordereauID, agentID uuid.UUID) (int64, error)
	countOrders          func(ctx context.Context, bordereauID uuid.UUID) (int64, error)
}

func (s *stubBordereauRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubBordereauRepo) FindByCode(ctx context.Context, code string) (*models.Bordereau, error) {
	if s.findByCode != nil {
		return s.findByCode(ctx, code)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBordereauRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Bordereau, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBordereauRepo) ClaimBordereau(ctx context.Context, bordereauID, agentID uuid.UUID) (int64, error) {
	if s.claimBordereau != nil {
		return s.claimBordereau(ctx, bordereauID, agentID)
	}
	return 0, nil
}

func (s *stubBordereauRepo) ClaimContainedOrders(ctx context.Context, bordereauID, agentID uuid.UUID) (int64, error) {
	if s.claimContainedOrders != nil {
		return s.claimContainedOrders(ctx, bordereauID, agentID)
	}
	return 0, nil
}

func (s *stubBordereauRepo) CountOrders(ctx context.Context, bordereauID uuid.UUID) (int64, error) {
	if s.countOrders != nil {
		return s.countOrders(ctx, bordereauID)
	}
	return 0, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type capturingOutbox struct {
	events []outbox.DomainEvent
}

func (c *capturingOutbox) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	c.events = append(c.events, event)
	return nil
}

func newTestService(t *testing.T, repo Repository) (Service, *capturingOutbox) {
	t.Helper()
	events := &capturingOutbox{}
	svc, err := NewService(repo, stubTxRunner{}, events)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, events
}

func testAgent() delivery.Actor {
	return delivery.Actor{
		UserID:         uuid.New(),
		OrganizationID: uuid.New(),
		Role:           enums.MemberRoleDelivery,
		Name:           "Test Agent",
	}
}

func validatedBordereau() *models.Bordereau {
	return &models.Bordereau{
		ID:             uuid.New(),
		Code:           "BRD-42",
		OrganizationID: uuid.New(),
		Status:         enums.BordereauStatusValidated,
		TotalAmount:    decimal.NewFromInt(350),
	}
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", want)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != want {
		t.Fatalf("expected code %s, got %s (%v)", want, appErr.Code(), err)
	}
}

func TestClaimTransfersWholeManifest(t *testing.T) {
	bordereau := validatedBordereau()
	agent := testAgent()

	repo := &stubBordereauRepo{
		findByCode: func(ctx context.Context, code string) (*models.Bordereau, error) {
			return bordereau, nil
		},
		claimBordereau: func(ctx context.Context, bordereauID, agentID uuid.UUID) (int64, error) {
			if bordereauID != bordereau.ID || agentID != agent.UserID {
				t.Fatalf("claim called with wrong ids")
			}
			return 1, nil
		},
		countOrders: func(ctx context.Context, bordereauID uuid.UUID) (int64, error) {
			return 3, nil
		},
		claimContainedOrders: func(ctx context.Context, bordereauID, agentID uuid.UUID) (int64, error) {
			return 3, nil
		},
		findByID: func(ctx context.Context, id uuid.UUID) (*models.Bordereau, error) {
			assigned := *bordereau
			assigned.Status = enums.BordereauStatusAssigned
			assigned.DeliveryManID = &agent.UserID
			return &assigned, nil
		},
	}
	svc, events := newTestService(t, repo)

	preview, err := svc.Claim(context.Background(), ClaimInput{Code: bordereau.Code, Actor: agent})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if preview.Status != enums.BordereauStatusAssigned {
		t.Fatalf("expected assigned manifest, got %s", preview.Status)
	}
	if len(events.events) != 1 || events.events[0].EventType != enums.EventBordereauClaimed {
		t.Fatalf("expected one bordereau claimed event, got %+v", events.events)
	}
}

func TestClaimRollsBackOnPartiallyClaimedOrders(t *testing.T) {
	bordereau := validatedBordereau()

	repo := &stubBordereauRepo{
		findByCode: func(ctx context.Context, code string) (*models.Bordereau, error) {
			return bordereau, nil
		},
		claimBordereau: func(ctx context.Context, bordereauID, agentID uuid.UUID) (int64, error) {
			return 1, nil
		},
		countOrders: func(ctx context.Context, bordereauID uuid.UUID) (int64, error) {
			return 3, nil
		},
		claimContainedOrders: func(ctx context.Context, bordereauID, agentID uuid.UUID) (int64, error) {
			// One of the three was claimed individually beforehand.
			return 2, nil
		},
	}
	svc, events := newTestService(t, repo)

	_, err := svc.Claim(context.Background(), ClaimInput{Code: bordereau.Code, Actor: testAgent()})
	assertCode(t, err, pkgerrors.CodeConflict)
	if len(events.events) != 0 {
		t.Fatalf("failed claim must not emit events")
	}
}

func TestClaimIsIdempotentForSameAgent(t *testing.T) {
	agent := testAgent()
	bordereau := validatedBordereau()
	bordereau.Status = enums.BordereauStatusAssigned
	bordereau.DeliveryManID = &agent.UserID

	repo := &stubBordereauRepo{
		findByCode: func(ctx context.Context, code string) (*models.Bordereau, error) {
			return bordereau, nil
		},
	}
	svc, events := newTestService(t, repo)

	preview, err := svc.Claim(context.Background(), ClaimInput{Code: bordereau.Code, Actor: agent})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if preview.ID != bordereau.ID {
		t.Fatalf("expected same bordereau returned")
	}
	if len(events.events) != 0 {
		t.Fatalf("re-scan must not emit a second event")
	}
}

func TestClaimConflictWhenHeldByAnotherAgent(t *testing.T) {
	other := uuid.New()
	bordereau := validatedBordereau()
	bordereau.Status = enums.BordereauStatusAssigned
	bordereau.DeliveryManID = &other

	repo := &stubBordereauRepo{
		findByCode: func(ctx context.Context, code string) (*models.Bordereau, error) {
			return bordereau, nil
		},
	}
	svc, _ := newTestService(t, repo)

	_, err := svc.Claim(context.Background(), ClaimInput{Code: bordereau.Code, Actor: testAgent()})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestClaimRejectsUnreadyManifest(t *testing.T) {
	bordereau := validatedBordereau()
	bordereau.Status = enums.BordereauStatusPending

	repo := &stubBordereauRepo{
		findByCode: func(ctx context.Context, code string) (*models.Bordereau, error) {
			return bordereau, nil
		},
		claimBordereau: func(ctx context.Context, bordereauID, agentID uuid.UUID) (int64, error) {
			return 0, nil
		},
		findByID: func(ctx context.Context, id uuid.UUID) (*models.Bordereau, error) {
			return bordereau, nil
		},
	}
	svc, _ := newTestService(t, repo)

	_, err := svc.Claim(context.Background(), ClaimInput{Code: bordereau.Code, Actor: testAgent()})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestClaimUnknownCode(t *testing.T) {
	svc, _ := newTestService(t, &stubBordereauRepo{})

	_, err := svc.Claim(context.Background(), ClaimInput{Code: "BRD-404", Actor: testAgent()})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestPreviewReturnsManifestSummary(t *testing.T) {
	bordereau := validatedBordereau()
	bordereau.Orders = []models.Order{
		{ID: uuid.New(), OrderNumber: "CMD-1", Status: enums.OrderStatusShipped, Total: decimal.NewFromInt(100)},
		{ID: uuid.New(), OrderNumber: "CMD-2", Status: enums.OrderStatusShipped, Total: decimal.NewFromInt(250)},
	}

	repo := &stubBordereauRepo{
		findByCode: func(ctx context.Context, code string) (*models.Bordereau, error) {
			return bordereau, nil
		},
	}
	svc, _ := newTestService(t, repo)

	preview, err := svc.Preview(context.Background(), bordereau.Code)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.OrderCount != 2 || len(preview.Orders) != 2 {
		t.Fatalf("expected two orders in preview, got %+v", preview)
	}
	if !preview.TotalAmount.Equal(bordereau.TotalAmount) {
		t.Fatalf("expected total %s, got %s", bordereau.TotalAmount, preview.TotalAmount)
	}
}

func TestPreviewValidatesCode(t *testing.T) {
	svc, _ := newTestService(t, &stubBordereauRepo{})

	_, err := svc.Preview(context.Background(), "  ")
	assertCode(t, err, pkgerrors.CodeValidation)
}
