package users

import (
	"strings"

	"github.com/google/uuid"

	"github.com/colisdirect/colisdirect-backend/pkg/db/models"
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

// CreateUserDTO captures what we need to provision a member account.
type CreateUserDTO struct {
	Email          string
	PasswordHash   string
	Name           string
	Phone          *string
	Role           enums.MemberRole
	OrganizationID uuid.UUID
}

// ToModel converts the DTO into a persistable user.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:          strings.ToLower(strings.TrimSpace(d.Email)),
		PasswordHash:   d.PasswordHash,
		Name:           strings.TrimSpace(d.Name),
		Phone:          d.Phone,
		Role:           d.Role,
		OrganizationID: d.OrganizationID,
		Active:         true,
	}
}
