package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account in the system.
// Accounts start inactive and become active once the confirmation token
// sent at signup is presented. IDs are generated in Go because sqlite has
// no server-side uuid function.
type User struct {
	ID               uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
	Email            string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string         `json:"-"`
	Name             string         `gorm:"not null" json:"name"`
	Description      string         `json:"description"`
	Image            string         `json:"image"` // filename under the profile uploads dir
	Active           bool           `gorm:"default:false" json:"active"`
	ConfirmToken     string         `gorm:"uniqueIndex" json:"-"`
	ConfirmExpiresAt time.Time      `json:"-"`

	// Relationships
	Groups   []Group   `gorm:"foreignKey:OwnerID" json:"groups,omitempty"`
	Meetings []Meeting `gorm:"foreignKey:OwnerID" json:"meetings,omitempty"`
}

// OwnerKey implements authz.Owned: a user always owns themselves.
func (u *User) OwnerKey() uuid.UUID {
	return u.ID
}
