package delivery

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
	"github.com/colisdirect/colisdirect-backend/pkg/pagination"
)

// Repository defines persistence operations for orders in the delivery flow.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderByIdentifier(ctx context.Context, identifier string) (*models.Order, error)
	ClaimOrder(ctx context.Context, orderID, agentID uuid.UUID) (int64, error)
	TransitionOrder(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, updates map[string]any) (int64, error)
	ListAssignedOrders(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListResolvedOrders(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*OrderList, error)
	CountUnresolvedByBordereau(ctx context.Context, bordereauID uuid.UUID) (int64, error)
	ResolveBordereau(ctx context.Context, bordereauID uuid.UUID) (int64, error)
	FindBordereauByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Bordereau, error)
	FindBordereauByCode(ctx context.Context, code string) (*models.Bordereau, error)
}
