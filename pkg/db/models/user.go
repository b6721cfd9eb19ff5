package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

// User is a platform member: admin, manager, delivery agent, or supplier.
type User struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email          string           `gorm:"column:email;type:text;not null;uniqueIndex" json:"email"`
	PasswordHash   string           `gorm:"column:password_hash;type:text;not null" json:"-"`
	Name           string           `gorm:"column:name;type:text;not null" json:"name"`
	Phone          *string          `gorm:"column:phone;type:text" json:"phone,omitempty"`
	Role           enums.MemberRole `gorm:"column:role;type:member_role;not null" json:"role"`
	OrganizationID uuid.UUID        `gorm:"column:organization_id;type:uuid;not null;index" json:"organizationId"`
	Active         bool             `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
