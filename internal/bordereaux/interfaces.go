package bordereaux

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
)

// Repository defines persistence operations for bordereau claims.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.Bordereau, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Bordereau, error)
	ClaimBordereau(ctx context.Context, bordereauID, agentID uuid.UUID) (int64, error)
	ClaimContainedOrders(ctx context.Context, bordereauID, agentID uuid.UUID) (int64, error)
	CountOrders(ctx context.Context, bordereauID uuid.UUID) (int64, error)
}
