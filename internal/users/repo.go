package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByRole returns the active members of an organization holding the role.
func (r *Repository) ListByRole(ctx context.Context, organizationID uuid.UUID, role enums.MemberRole) ([]models.User, error) {
	var members []models.User
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND role = ? AND active", organizationID, role).
		Order("name ASC").
		Find(&members).Error
	return members, err
}

// ListAdmins returns the active admins and managers of an organization.
func (r *Repository) ListAdmins(ctx context.Context, organizationID uuid.UUID) ([]models.User, error) {
	var admins []models.User
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND role IN ? AND active",
			organizationID, []enums.MemberRole{enums.MemberRoleAdmin, enums.MemberRoleManager}).
		Order("name ASC").
		Find(&admins).Error
	return admins, err
}

// SetActive toggles a member's active flag.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("active", active).Error
}
