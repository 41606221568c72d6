package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a remark left on a meeting by an authenticated user.
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	MeetingID uuid.UUID `gorm:"type:uuid;not null;index" json:"meeting_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Body      string    `gorm:"not null" json:"body"`

	Author  User    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Meeting Meeting `gorm:"foreignKey:MeetingID" json:"-"`
}

// OwnerKey implements authz.Owned: the author owns the comment.
func (c *Comment) OwnerKey() uuid.UUID {
	return c.AuthorID
}
