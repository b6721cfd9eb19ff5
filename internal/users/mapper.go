package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

// UserDTO is the outward-facing user shape; the password hash never leaves
// the persistence layer.
type UserDTO struct {
	ID             uuid.UUID        `json:"id"`
	Email          string           `json:"email"`
	Name           string           `json:"name"`
	Phone          *string          `json:"phone,omitempty"`
	Role           enums.MemberRole `json:"role"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	Active         bool             `json:"active"`
	CreatedAt      time.Time        `json:"created_at"`
}

// FromModel maps a persisted user to its DTO.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Phone:          user.Phone,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
		Active:         user.Active,
		CreatedAt:      user.CreatedAt,
	}
}
