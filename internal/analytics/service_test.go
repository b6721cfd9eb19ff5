package analytics

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colisdirect/colisdirect-backend/internal/delivery"
	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
	pkgerrors "github.com/colisdirect/colisdirect-backend/pkg/errors"
)

type stubAnalyticsRepo struct {
	agentCounters func(ctx context.Context, agentID uuid.UUID, period Period) (*counters, error)
	sumCash       func(ctx context.Context, agentID uuid.UUID, period Period) (decimal.Decimal, error)
	listAgents    func(ctx context.Context, organizationID uuid.UUID) ([]models.User, error)
}

func (s *stubAnalyticsRepo) AgentCounters(ctx context.Context, agentID uuid.UUID, period Period) (*counters, error) {
	if s.agentCounters != nil {
		return s.agentCounters(ctx, agentID, period)
	}
	return &counters{}, nil
}

func (s *stubAnalyticsRepo) SumCashCollected(ctx context.Context, agentID uuid.UUID, period Period) (decimal.Decimal, error) {
	if s.sumCash != nil {
		return s.sumCash(ctx, agentID, period)
	}
	return decimal.Zero, nil
}

func (s *stubAnalyticsRepo) ListDeliveryAgents(ctx context.Context, organizationID uuid.UUID) ([]models.User, error) {
	if s.listAgents != nil {
		return s.listAgents(ctx, organizationID)
	}
	return nil, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, decimal.NewFromInt(7))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
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

func TestAgentStatsComputesEarningsAndRate(t *testing.T) {
	agent := delivery.Actor{UserID: uuid.New(), Role: enums.MemberRoleDelivery}
	repo := &stubAnalyticsRepo{
		agentCounters: func(ctx context.Context, agentID uuid.UUID, period Period) (*counters, error) {
			return &counters{Delivered: 10, Pending: 3, Returned: 2, TotalAssigned: 15}, nil
		},
		sumCash: func(ctx context.Context, agentID uuid.UUID, period Period) (decimal.Decimal, error) {
			return decimal.NewFromInt(1200), nil
		},
	}
	svc := newTestService(t, repo)

	stats, err := svc.AgentStats(context.Background(), agent, uuid.Nil, Period{})
	if err != nil {
		t.Fatalf("agent stats: %v", err)
	}
	if stats.AgentID != agent.UserID {
		t.Fatalf("nil agent id must default to the actor")
	}
	if !stats.TotalShippingEarnings.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected 10 deliveries x 7 DT = 70, got %s", stats.TotalShippingEarnings)
	}
	// 10 delivered out of 12 resolved.
	if !stats.SuccessRate.Equal(decimal.NewFromFloat(0.83)) {
		t.Fatalf("expected success rate 0.83, got %s", stats.SuccessRate)
	}
	if !stats.TotalCashCollected.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected 1200 cash collected, got %s", stats.TotalCashCollected)
	}
}

func TestAgentStatsZeroResolvedOrders(t *testing.T) {
	agent := delivery.Actor{UserID: uuid.New(), Role: enums.MemberRoleDelivery}
	repo := &stubAnalyticsRepo{
		agentCounters: func(ctx context.Context, agentID uuid.UUID, period Period) (*counters, error) {
			return &counters{Pending: 4, TotalAssigned: 4}, nil
		},
	}
	svc := newTestService(t, repo)

	stats, err := svc.AgentStats(context.Background(), agent, agent.UserID, Period{})
	if err != nil {
		t.Fatalf("agent stats: %v", err)
	}
	if !stats.SuccessRate.IsZero() {
		t.Fatalf("expected zero success rate with no resolved orders, got %s", stats.SuccessRate)
	}
}

func TestAgentStatsForbidsCrossAgentReads(t *testing.T) {
	agent := delivery.Actor{UserID: uuid.New(), Role: enums.MemberRoleDelivery}
	svc := newTestService(t, &stubAnalyticsRepo{})

	_, err := svc.AgentStats(context.Background(), agent, uuid.New(), Period{})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestAgentStatsAdminMayReadAnyAgent(t *testing.T) {
	admin := delivery.Actor{UserID: uuid.New(), Role: enums.MemberRoleAdmin}
	target := uuid.New()
	svc := newTestService(t, &stubAnalyticsRepo{})

	stats, err := svc.AgentStats(context.Background(), admin, target, Period{})
	if err != nil {
		t.Fatalf("admin read: %v", err)
	}
	if stats.AgentID != target {
		t.Fatalf("expected stats for target agent")
	}
}

func TestFleetStatsIsAdminOnly(t *testing.T) {
	agent := delivery.Actor{UserID: uuid.New(), Role: enums.MemberRoleDelivery}
	svc := newTestService(t, &stubAnalyticsRepo{})

	_, err := svc.FleetStats(context.Background(), agent, Period{})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestFleetStatsAggregatesAllAgents(t *testing.T) {
	admin := delivery.Actor{UserID: uuid.New(), OrganizationID: uuid.New(), Role: enums.MemberRoleAdmin}
	first := models.User{ID: uuid.New(), Name: "Amine"}
	second := models.User{ID: uuid.New(), Name: "Sami"}

	repo := &stubAnalyticsRepo{
		listAgents: func(ctx context.Context, organizationID uuid.UUID) ([]models.User, error) {
			if organizationID != admin.OrganizationID {
				t.Fatalf("fleet query must scope to the admin's organization")
			}
			return []models.User{first, second}, nil
		},
		agentCounters: func(ctx context.Context, agentID uuid.UUID, period Period) (*counters, error) {
			if agentID == first.ID {
				return &counters{Delivered: 5, TotalAssigned: 5}, nil
			}
			return &counters{Delivered: 1, Returned: 1, TotalAssigned: 2}, nil
		},
	}
	svc := newTestService(t, repo)

	fleet, err := svc.FleetStats(context.Background(), admin, Period{})
	if err != nil {
		t.Fatalf("fleet stats: %v", err)
	}
	if len(fleet.Agents) != 2 {
		t.Fatalf("expected two agent rows, got %d", len(fleet.Agents))
	}
	if fleet.Agents[0].AgentName != "Amine" {
		t.Fatalf("expected agent name carried into stats")
	}
	if !fleet.Agents[0].TotalShippingEarnings.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("expected 35 DT earnings for five deliveries, got %s", fleet.Agents[0].TotalShippingEarnings)
	}
}

func TestNewServiceRejectsNonPositiveRate(t *testing.T) {
	if _, err := NewService(&stubAnalyticsRepo{}, decimal.Zero); err == nil {
		t.Fatalf("expected error for zero shipping rate")
	}
}
