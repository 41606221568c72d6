package models

import (
	"github.com/google/uuid"
)

// Category is read-only reference data groups are filed under.
// Seeded at startup, never mutated by handlers.
type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	Name string    `gorm:"uniqueIndex;not null" json:"name"`
	Slug string    `gorm:"uniqueIndex;not null" json:"slug"`
}
