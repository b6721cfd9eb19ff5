package bordereaux

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bordereaux repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Bordereau, error) {
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

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Bordereau, error) {
	var bordereau models.Bordereau
	err := r.db.WithContext(ctx).
		Preload("Orders").
		Where("id = ?", id).
		First(&bordereau).Error
	if err != nil {
		return nil, err
	}
	return &bordereau, nil
}

// ClaimBordereau conditionally assigns the manifest to the agent. Matches
// only an unassigned manifest still waiting for pickup.
func (r *repository) ClaimBordereau(ctx context.Context, bordereauID, agentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Bordereau{}).
		Where("id = ? AND delivery_man_id IS NULL AND status IN ?", bordereauID,
			[]enums.BordereauStatus{enums.BordereauStatusPending, enums.BordereauStatusValidated}).
		Updates(map[string]any{
			"delivery_man_id": agentID,
			"status":          enums.BordereauStatusAssigned,
			"updated_at":      time.Now(),
		})
	return res.RowsAffected, res.Error
}

// ClaimContainedOrders bulk-assigns every unassigned order on the manifest.
// The caller compares the affected row count against the manifest size; any
// shortfall means some order was already claimed individually.
func (r *repository) ClaimContainedOrders(ctx context.Context, bordereauID, agentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("bordereau_id = ? AND assigned_agent_id IS NULL AND status = ?",
			bordereauID, enums.OrderStatusShipped).
		Updates(map[string]any{
			"assigned_agent_id": agentID,
			"status":            enums.OrderStatusAssigned,
			"updated_at":        time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) CountOrders(ctx context.Context, bordereauID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("bordereau_id = ?", bordereauID).
		Count(&count).Error
	return count, err
}
