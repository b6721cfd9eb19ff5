package deposits

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
	"github.com/colisdirect/colisdirect-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deposits repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, deposit *models.Deposit) (*models.Deposit, error) {
	if err := r.db.WithContext(ctx).Create(deposit).Error; err != nil {
		return nil, err
	}
	return deposit, nil
}

func (r *repository) FindByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Deposit, error) {
	var deposit models.Deposit
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&deposit).Error
	if err != nil {
		return nil, err
	}
	return &deposit, nil
}

// ResolvePending flips a pending deposit to its resolution status. The WHERE
// clause on status guarantees a deposit resolves exactly once, and the
// organization filter keeps admins inside their own tenant.
func (r *repository) ResolvePending(ctx context.Context, organizationID, id uuid.UUID, status enums.DepositStatus, resolvedBy uuid.UUID) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Deposit{}).
		Where("id = ? AND organization_id = ? AND status = ?", id, organizationID, enums.DepositStatusPending).
		Updates(map[string]any{
			"status":      status,
			"resolved_by": resolvedBy,
			"resolved_at": now,
			"updated_at":  now,
		})
	return res.RowsAffected, res.Error
}

// SumCashCollected aggregates the cash an agent has taken from customers on
// delivered cash orders. Always recomputed, never cached.
func (r *repository) SumCashCollected(ctx context.Context, organizationID, agentID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Where("organization_id = ? AND assigned_agent_id = ? AND status = ? AND payment_method = ?",
			organizationID, agentID, enums.OrderStatusDelivered, enums.PaymentMethodCash).
		Scan(&total).Error
	return total, err
}

func (r *repository) SumDepositsByStatus(ctx context.Context, organizationID, agentID uuid.UUID, status enums.DepositStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.Deposit{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("organization_id = ? AND delivery_man_id = ? AND status = ?", organizationID, agentID, status).
		Scan(&total).Error
	return total, err
}

func (r *repository) List(ctx context.Context, organizationID uuid.UUID, params pagination.Params, filters ListFilters) (*DepositList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Deposit{}).
		Where("organization_id = ?", organizationID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DeliveryManID != nil {
		query = query.Where("delivery_man_id = ?", *filters.DeliveryManID)
	}
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", *filters.DateTo)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Deposit
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &DepositList{Deposits: make([]DepositSummary, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		list.Deposits = append(list.Deposits, DepositSummary{
			ID:            row.ID,
			DeliveryManID: row.DeliveryManID,
			Amount:        row.Amount,
			Status:        row.Status,
			Date:          row.Date,
			Notes:         row.Notes,
			ResolvedBy:    row.ResolvedBy,
			ResolvedAt:    row.ResolvedAt,
			CreatedAt:     row.CreatedAt,
		})
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}
