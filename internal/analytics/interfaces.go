package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
)

// Repository defines the aggregate reads behind the analytics views.
type Repository interface {
	AgentCounters(ctx context.Context, agentID uuid.UUID, period Period) (*counters, error)
	SumCashCollected(ctx context.Context, agentID uuid.UUID, period Period) (decimal.Decimal, error)
	ListDeliveryAgents(ctx context.Context, organizationID uuid.UUID) ([]models.User, error)
}
