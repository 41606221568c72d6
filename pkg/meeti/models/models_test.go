package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	return db
}

func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)

	err := AutoMigrate(db)
	if err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	// Verify tables exist by checking if we can query them
	tables := []string{"categories", "users", "groups", "meetings", "attendances", "comments"}
	for _, table := range tables {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist", table)
		}
	}
}

func TestUserEmailUniqueness(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	user := User{
		ID:           uuid.New(),
		Email:        "test@example.com",
		PasswordHash: "hashed_password",
		Name:         "Test User",
		ConfirmToken: uuid.New().String(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	user2 := User{
		ID:           uuid.New(),
		Email:        "test@example.com",
		PasswordHash: "another_hash",
		Name:         "Another User",
		ConfirmToken: uuid.New().String(),
	}
	if err := db.Create(&user2).Error; err == nil {
		t.Error("Expected error when creating user with duplicate email")
	}
}

func TestGroupSlugUniqueness(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	ownerID := uuid.New()
	categoryID := uuid.New()

	group1 := Group{ID: uuid.New(), Name: "First", Slug: "same-slug", CategoryID: categoryID, OwnerID: ownerID}
	if err := db.Create(&group1).Error; err != nil {
		t.Fatalf("Failed to create group: %v", err)
	}

	group2 := Group{ID: uuid.New(), Name: "Second", Slug: "same-slug", CategoryID: categoryID, OwnerID: ownerID}
	if err := db.Create(&group2).Error; err == nil {
		t.Error("Expected error when creating group with duplicate slug")
	}
}

func TestAttendanceUniquePerUserAndMeeting(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	meetingID := uuid.New()
	userID := uuid.New()

	if err := db.Create(&Attendance{MeetingID: meetingID, UserID: userID}).Error; err != nil {
		t.Fatalf("Failed to create attendance: %v", err)
	}
	if err := db.Create(&Attendance{MeetingID: meetingID, UserID: userID}).Error; err == nil {
		t.Error("Expected error on duplicate attendance for the same meeting and user")
	}
	// The same user can attend a different meeting.
	if err := db.Create(&Attendance{MeetingID: uuid.New(), UserID: userID}).Error; err != nil {
		t.Errorf("Expected attendance at another meeting to succeed: %v", err)
	}
}

func TestMeetingRelationships(t *testing.T) {
	db := setupTestDB(t)
	AutoMigrate(db)

	owner := User{
		ID: uuid.New(), Email: "owner@example.com", PasswordHash: "x",
		Name: "Owner", ConfirmToken: uuid.New().String(),
	}
	db.Create(&owner)

	category := Category{ID: uuid.New(), Name: "Technology", Slug: "technology"}
	db.Create(&category)

	group := Group{ID: uuid.New(), Name: "Go Berlin", Slug: "go-berlin", CategoryID: category.ID, OwnerID: owner.ID}
	db.Create(&group)

	meeting := Meeting{
		ID: uuid.New(), Title: "Meetup", Slug: "meetup",
		Date: time.Now(), Time: "19:00",
		GroupID: group.ID, OwnerID: owner.ID,
	}
	if err := db.Create(&meeting).Error; err != nil {
		t.Fatalf("Failed to create meeting: %v", err)
	}

	var loaded Meeting
	db.Preload("Group").Preload("Owner").First(&loaded, "id = ?", meeting.ID)
	if loaded.Group.Slug != "go-berlin" {
		t.Errorf("Expected preloaded group, got %s", loaded.Group.Slug)
	}
	if loaded.Owner.Email != "owner@example.com" {
		t.Errorf("Expected preloaded owner, got %s", loaded.Owner.Email)
	}
}

func TestOwnerKeys(t *testing.T) {
	ownerID := uuid.New()

	user := User{ID: ownerID}
	if user.OwnerKey() != ownerID {
		t.Error("Expected a user to own themselves")
	}

	group := Group{ID: uuid.New(), OwnerID: ownerID}
	if group.OwnerKey() != ownerID {
		t.Error("Expected group owner key to be the owner id")
	}

	meeting := Meeting{ID: uuid.New(), OwnerID: ownerID}
	if meeting.OwnerKey() != ownerID {
		t.Error("Expected meeting owner key to be the owner id")
	}

	comment := Comment{ID: uuid.New(), AuthorID: ownerID}
	if comment.OwnerKey() != ownerID {
		t.Error("Expected comment owner key to be the author id")
	}
}
