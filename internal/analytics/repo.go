package analytics

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an analytics repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// AgentCounters recomputes the per-agent counts with one aggregate pass.
func (r *repository) AgentCounters(ctx context.Context, agentID uuid.UUID, period Period) (*counters, error) {
	var row counters
	query := r.db.WithContext(ctx).Model(&models.Order{}).
		Select(`
			COUNT(*) FILTER (WHERE status = 'delivered') AS delivered,
			COUNT(*) FILTER (WHERE status IN ('assigned', 'nrp')) AS pending,
			COUNT(*) FILTER (WHERE status = 'returned') AS returned,
			COUNT(*) AS total_assigned`).
		Where("assigned_agent_id = ?", agentID)
	query = applyPeriod(query, "created_at", period)
	if err := query.Scan(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) SumCashCollected(ctx context.Context, agentID uuid.UUID, period Period) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Where("assigned_agent_id = ? AND status = ? AND payment_method = ?",
			agentID, enums.OrderStatusDelivered, enums.PaymentMethodCash)
	query = applyPeriod(query, "delivered_at", period)
	err := query.Scan(&total).Error
	return total, err
}

func (r *repository) ListDeliveryAgents(ctx context.Context, organizationID uuid.UUID) ([]models.User, error) {
	var agents []models.User
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND role = ? AND active", organizationID, enums.MemberRoleDelivery).
		Order("name ASC").
		Find(&agents).Error
	return agents, err
}

// applyPeriod bounds the aggregate by the given column: counters use
// created_at, cash sums use the delivery time.
func applyPeriod(query *gorm.DB, column string, period Period) *gorm.DB {
	if period.From != nil {
		query = query.Where(column+" >= ?", *period.From)
	}
	if period.To != nil {
		query = query.Where(column+" <= ?", *period.To)
	}
	return query
}
