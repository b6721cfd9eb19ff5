package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colisdirect/colisdirect-backend/internal/delivery"
	pkgerrors "github.com/colisdirect/colisdirect-backend/pkg/errors"
)

// successRateScale keeps rates at two decimal places (e.g. 0.83).
const successRateScale = 2

// Service is the single analytics read path; authorization filtering happens
// here so controllers stay thin.
type Service interface {
	AgentStats(ctx context.Context, actor delivery.Actor, agentID uuid.UUID, period Period) (*AgentStats, error)
	FleetStats(ctx context.Context, actor delivery.Actor, period Period) (*FleetStats, error)
}

type service struct {
	repo         Repository
	shippingRate decimal.Decimal
}

// NewService builds an analytics service using the configured flat shipping
// rate per delivered order.
func NewService(repo Repository, shippingRate decimal.Decimal) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if shippingRate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("shipping rate must be positive")
	}
	return &service{repo: repo, shippingRate: shippingRate}, nil
}

func (s *service) AgentStats(ctx context.Context, actor delivery.Actor, agentID uuid.UUID, period Period) (*AgentStats, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if agentID == uuid.Nil {
		agentID = actor.UserID
	}
	// Agents may only read their own stats.
	if agentID != actor.UserID && !actor.Role.CanAdministrate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot read another agent's analytics")
	}
	return s.agentStats(ctx, agentID, "", period)
}

func (s *service) FleetStats(ctx context.Context, actor delivery.Actor, period Period) (*FleetStats, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.Role.CanAdministrate() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "fleet analytics is admin only")
	}

	agents, err := s.repo.ListDeliveryAgents(ctx, actor.OrganizationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery agents")
	}

	fleet := &FleetStats{Agents: make([]AgentStats, 0, len(agents))}
	for _, agent := range agents {
		stats, err := s.agentStats(ctx, agent.ID, agent.Name, period)
		if err != nil {
			return nil, err
		}
		fleet.Agents = append(fleet.Agents, *stats)
	}
	return fleet, nil
}

func (s *service) agentStats(ctx context.Context, agentID uuid.UUID, name string, period Period) (*AgentStats, error) {
	row, err := s.repo.AgentCounters(ctx, agentID, period)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate agent counters")
	}
	cash, err := s.repo.SumCashCollected(ctx, agentID, period)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum collected cash")
	}

	earnings := s.shippingRate.Mul(decimal.NewFromInt(row.Delivered))

	return &AgentStats{
		AgentID:               agentID,
		AgentName:             name,
		Delivered:             row.Delivered,
		Pending:               row.Pending,
		Returned:              row.Returned,
		TotalAssigned:         row.TotalAssigned,
		TotalShippingEarnings: earnings,
		TotalCashCollected:    cash,
		SuccessRate:           successRate(row.Delivered, row.Returned),
	}, nil
}

// successRate is delivered over resolved attempts; open orders don't count
// against the agent.
func successRate(delivered, returned int64) decimal.Decimal {
	resolved := delivered + returned
	if resolved == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(delivered).
		Div(decimal.NewFromInt(resolved)).
		Round(successRateScale)
}
