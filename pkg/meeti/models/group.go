package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group represents an interest group that meetings are scheduled under.
// Only the owner may edit, re-image or delete it.
type Group struct {
	ID          uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description string         `json:"description"`
	Image       string         `json:"image"` // filename under the group uploads dir
	CategoryID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"category_id"`
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`

	// Relationships
	Category Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Owner    User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Meetings []Meeting `gorm:"foreignKey:GroupID" json:"meetings,omitempty"`
}

// OwnerKey implements authz.Owned.
func (g *Group) OwnerKey() uuid.UUID {
	return g.OwnerID
}
