package deposits

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
	"github.com/colisdirect/colisdirect-backend/pkg/pagination"
)

// Repository defines persistence operations for the deposit ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, deposit *models.Deposit) (*models.Deposit, error)
	FindByID(ctx context.Context, organizationID, id uuid.UUID) (*models.Deposit, error)
	ResolvePending(ctx context.Context, organizationID, id uuid.UUID, status enums.DepositStatus, resolvedBy uuid.UUID) (int64, error)
	SumCashCollected(ctx context.Context, organizationID, agentID uuid.UUID) (decimal.Decimal, error)
	SumDepositsByStatus(ctx context.Context, organizationID, agentID uuid.UUID, status enums.DepositStatus) (decimal.Decimal, error)
	List(ctx context.Context, organizationID uuid.UUID, params pagination.Params, filters ListFilters) (*DepositList, error)
}
