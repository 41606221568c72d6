package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meeting represents a scheduled event tied to a group.
// Date holds the day and Time the wall-clock start ("15:04"); listings
// partition future vs past by comparing Date against today.
type Meeting struct {
	ID          uuid.UUID      `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description string         `json:"description"`
	Guest       string         `json:"guest"`
	Capacity    int            `gorm:"default:0" json:"capacity"` // 0 means unlimited
	Date        time.Time      `gorm:"not null;index" json:"date"`
	Time        string         `gorm:"not null" json:"time"`
	Address     string         `json:"address"`
	City        string         `json:"city"`
	GroupID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"group_id"`
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`

	// Relationships
	Group     Group        `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Owner     User         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Attendees []Attendance `gorm:"foreignKey:MeetingID" json:"attendees,omitempty"`
	Comments  []Comment    `gorm:"foreignKey:MeetingID" json:"comments,omitempty"`
}

// OwnerKey implements authz.Owned.
func (m *Meeting) OwnerKey() uuid.UUID {
	return m.OwnerID
}

// Attendance records a user's RSVP to a meeting.
type Attendance struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	MeetingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_meeting_user" json:"meeting_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_meeting_user" json:"user_id"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
