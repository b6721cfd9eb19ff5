package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant boundary; every order, manifest, and deposit belongs to one.
type Organization struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:text;not null" json:"name"`
	Slug      string    `gorm:"column:slug;type:text;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
