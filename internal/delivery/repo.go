package delivery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
	"github.com/colisdirect/colisdirect-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a delivery repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindOrderByIdentifier accepts either the order UUID or the human-facing
// order number scanned from the label.
func (r *repository) FindOrderByIdentifier(ctx context.Context, identifier string) (*models.Order, error) {
	var order models.Order
	query := r.db.WithContext(ctx).Preload("Items")
	if id, err := uuid.Parse(identifier); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("order_number = ?", identifier)
	}
	if err := query.First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ClaimOrder performs the conditional assignment write. The WHERE clause is
// the whole concurrency story: only one agent's UPDATE can match the
// unassigned row.
func (r *repository) ClaimOrder(ctx context.Context, orderID, agentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND assigned_agent_id IS NULL AND status = ?", orderID, enums.OrderStatusShipped).
		Updates(map[string]any{
			"assigned_agent_id": agentID,
			"status":            enums.OrderStatusAssigned,
			"updated_at":        time.Now(),
		})
	return res.RowsAffected, res.Error
}

// TransitionOrder applies updates only when the row is still in the expected
// prior status, serializing concurrent transitions on the same order.
func (r *repository) TransitionOrder(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) ListAssignedOrders(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error) {
	return r.listOrders(ctx, params, func(q *gorm.DB) *gorm.DB {
		return q.Where("assigned_agent_id = ? AND status IN ?", agentID,
			[]enums.OrderStatus{enums.OrderStatusAssigned, enums.OrderStatusNRP})
	})
}

func (r *repository) ListResolvedOrders(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error) {
	return r.listOrders(ctx, params, func(q *gorm.DB) *gorm.DB {
		return q.Where("assigned_agent_id = ? AND status IN ?", agentID,
			[]enums.OrderStatus{enums.OrderStatusDelivered, enums.OrderStatusReturned})
	})
}

func (r *repository) listOrders(ctx context.Context, params pagination.Params, scope func(*gorm.DB) *gorm.DB) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := scope(r.db.WithContext(ctx).Model(&models.Order{}))
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &OrderList{Orders: make([]OrderSummary, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		list.Orders = append(list.Orders, NewOrderSummary(row))
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

func (r *repository) CountUnresolvedByBordereau(ctx context.Context, bordereauID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("bordereau_id = ? AND status NOT IN ?", bordereauID,
			[]enums.OrderStatus{
				enums.OrderStatusDelivered,
				enums.OrderStatusReturned,
				enums.OrderStatusCancelled,
				enums.OrderStatusRefunded,
			}).
		Count(&count).Error
	return count, err
}

func (r *repository) ResolveBordereau(ctx context.Context, bordereauID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Bordereau{}).
		Where("id = ? AND status = ?", bordereauID, enums.BordereauStatusAssigned).
		Updates(map[string]any{
			"status":      enums.BordereauStatusResolved,
			"resolved_at": time.Now(),
			"updated_at":  time.Now(),
		})
	return res.RowsAffected, res.Error
}

// FindBordereauByIDForUpdate loads the manifest row under a row lock so that
// concurrent cascade checks on the same bordereau serialize.
func (r *repository) FindBordereauByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Bordereau, error) {
	var bordereau models.Bordereau
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&bordereau).Error
	if err != nil {
		return nil, err
	}
	return &bordereau, nil
}

func (r *repository) FindBordereauByCode(ctx context.Context, code string) (*models.Bordereau, error) {
	var bordereau models.Bordereau
	err := r.db.WithContext(ctx).
		Preload("Orders").
		Where("code = ?", code).
		First(&bordereau).Error
	if err != nil {
		return nil, err
	}
	return &bordereau, nil
}
