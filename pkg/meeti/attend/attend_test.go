package attend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bioxim/meeti/pkg/meeti/auth"
	"github.com/bioxim/meeti/pkg/meeti/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) models.User {
	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "x",
		Name:         "Test User",
		Active:       true,
		ConfirmToken: uuid.New().String(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createTestMeeting(t *testing.T, db *gorm.DB, owner models.User, capacity int) models.Meeting {
	meeting := models.Meeting{
		ID:       uuid.New(),
		Title:    "Test Meeting",
		Slug:     "test-meeting-" + uuid.New().String()[:8],
		Capacity: capacity,
		Date:     time.Now().AddDate(0, 0, 7),
		Time:     "18:00",
		GroupID:  uuid.New(),
		OwnerID:  owner.ID,
	}
	if err := db.Create(&meeting).Error; err != nil {
		t.Fatalf("Failed to create test meeting: %v", err)
	}
	return meeting
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)

	handler.RegisterPublicRoutes(r.Group(""))
	handler.RegisterRoutes(r.Group("", auth.Middleware(auth.NewMemoryRevoker())))

	return r
}

func getAuthHeader(user models.User) string {
	token, _ := auth.GenerateToken(user.ID, user.Email)
	return "Bearer " + token
}

func rsvp(router *gin.Engine, slug, action, authHeader string) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(RSVPRequest{Action: action})
	req, _ := http.NewRequest("POST", "/m/"+slug+"/rsvp", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestConfirmAttendance(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	attendee := createTestUser(t, db, "attendee@example.com")
	meeting := createTestMeeting(t, db, owner, 0)

	resp := rsvp(router, meeting.Slug, "confirm", getAuthHeader(attendee))
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.Attendance{}).Where("meeting_id = ? AND user_id = ?", meeting.ID, attendee.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 attendance record, got %d", count)
	}
}

func TestConfirmTwiceIsHarmless(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	attendee := createTestUser(t, db, "attendee@example.com")
	meeting := createTestMeeting(t, db, owner, 0)

	rsvp(router, meeting.Slug, "confirm", getAuthHeader(attendee))
	resp := rsvp(router, meeting.Slug, "confirm", getAuthHeader(attendee))

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200 on repeat confirm, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.Attendance{}).Where("meeting_id = ?", meeting.ID).Count(&count)
	if count != 1 {
		t.Errorf("Expected a single attendance record, got %d", count)
	}
}

func TestConfirmFullMeeting(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	first := createTestUser(t, db, "first@example.com")
	second := createTestUser(t, db, "second@example.com")
	meeting := createTestMeeting(t, db, owner, 1)

	if resp := rsvp(router, meeting.Slug, "confirm", getAuthHeader(first)); resp.Code != http.StatusCreated {
		t.Fatalf("Expected first confirm to succeed, got %d", resp.Code)
	}

	resp := rsvp(router, meeting.Slug, "confirm", getAuthHeader(second))
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 when full, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCancelAttendance(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	attendee := createTestUser(t, db, "attendee@example.com")
	meeting := createTestMeeting(t, db, owner, 0)

	rsvp(router, meeting.Slug, "confirm", getAuthHeader(attendee))
	resp := rsvp(router, meeting.Slug, "cancel", getAuthHeader(attendee))

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.Attendance{}).Where("meeting_id = ?", meeting.ID).Count(&count)
	if count != 0 {
		t.Errorf("Expected no attendance records, got %d", count)
	}
}

func TestCancelWithoutConfirming(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	attendee := createTestUser(t, db, "attendee@example.com")
	meeting := createTestMeeting(t, db, owner, 0)

	resp := rsvp(router, meeting.Slug, "cancel", getAuthHeader(attendee))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRSVPUnknownMeeting(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")

	resp := rsvp(router, "no-such-meeting", "confirm", getAuthHeader(user))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestRSVPInvalidAction(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	meeting := createTestMeeting(t, db, owner, 0)

	resp := rsvp(router, meeting.Slug, "maybe", getAuthHeader(owner))
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestListAttendeesPublic(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	attendee := createTestUser(t, db, "attendee@example.com")
	meeting := createTestMeeting(t, db, owner, 0)

	db.Create(&models.Attendance{MeetingID: meeting.ID, UserID: attendee.ID})

	// No Authorization header: the listing is public.
	req, _ := http.NewRequest("GET", "/m/"+meeting.Slug+"/attendees", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Attendees []AttendeeResponse `json:"attendees"`
		Count     int                `json:"count"`
	}
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body.Count != 1 || len(body.Attendees) != 1 {
		t.Fatalf("Expected 1 attendee, got count=%d len=%d", body.Count, len(body.Attendees))
	}
	if body.Attendees[0].Name != "Test User" {
		t.Errorf("Expected attendee name, got %s", body.Attendees[0].Name)
	}
}
