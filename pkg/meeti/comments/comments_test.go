package comments

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
	"github.com/bioxim/meeti/pkg/meeti/flash"
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

func createTestMeeting(t *testing.T, db *gorm.DB, owner models.User) models.Meeting {
	meeting := models.Meeting{
		ID:      uuid.New(),
		Title:   "Test Meeting",
		Slug:    "test-meeting-" + uuid.New().String()[:8],
		Date:    time.Now().AddDate(0, 0, 7),
		Time:    "18:00",
		GroupID: uuid.New(),
		OwnerID: owner.ID,
	}
	if err := db.Create(&meeting).Error; err != nil {
		t.Fatalf("Failed to create test meeting: %v", err)
	}
	return meeting
}

func createTestComment(t *testing.T, db *gorm.DB, meeting models.Meeting, author models.User) models.Comment {
	comment := models.Comment{
		ID:        uuid.New(),
		MeetingID: meeting.ID,
		AuthorID:  author.ID,
		Body:      "Looking forward to it",
	}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}
	return comment
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db, flash.NewMemoryStore())
	handler.RegisterRoutes(r.Group("", auth.Middleware(auth.NewMemoryRevoker())))
	return r
}

func getAuthHeader(user models.User) string {
	token, _ := auth.GenerateToken(user.ID, user.Email)
	return "Bearer " + token
}

func deleteComment(router *gin.Engine, id uuid.UUID, authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("DELETE", "/comments/"+id.String(), nil)
	req.Header.Set("Authorization", authHeader)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreateComment(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	commenter := createTestUser(t, db, "commenter@example.com")
	meeting := createTestMeeting(t, db, owner)

	jsonBody, _ := json.Marshal(CreateCommentRequest{Body: "  See you   there  "})
	req, _ := http.NewRequest("POST", "/m/"+meeting.Slug+"/comments", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(commenter))
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var body CommentResponse
	json.Unmarshal(resp.Body.Bytes(), &body)
	if body.Body != "See you there" {
		t.Errorf("Expected normalized body, got %q", body.Body)
	}
	if body.AuthorID != commenter.ID {
		t.Errorf("Expected author %s, got %s", commenter.ID, body.AuthorID)
	}
}

func TestCreateCommentEmptyBody(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	meeting := createTestMeeting(t, db, owner)

	jsonBody, _ := json.Marshal(CreateCommentRequest{})
	req, _ := http.NewRequest("POST", "/m/"+meeting.Slug+"/comments", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(owner))
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestDeleteOwnComment(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	commenter := createTestUser(t, db, "commenter@example.com")
	meeting := createTestMeeting(t, db, owner)
	comment := createTestComment(t, db, meeting, commenter)

	resp := deleteComment(router, comment.ID, getAuthHeader(commenter))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&count)
	if count != 0 {
		t.Error("Expected comment to be deleted")
	}
}

func TestMeetingOwnerModeratesComment(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	commenter := createTestUser(t, db, "commenter@example.com")
	meeting := createTestMeeting(t, db, owner)
	comment := createTestComment(t, db, meeting, commenter)

	// The meeting owner did not write the comment but may remove it.
	resp := deleteComment(router, comment.ID, getAuthHeader(owner))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&count)
	if count != 0 {
		t.Error("Expected comment to be deleted by the meeting owner")
	}
}

func TestThirdPartyCannotDeleteComment(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	owner := createTestUser(t, db, "owner@example.com")
	commenter := createTestUser(t, db, "commenter@example.com")
	bystander := createTestUser(t, db, "bystander@example.com")
	meeting := createTestMeeting(t, db, owner)
	comment := createTestComment(t, db, meeting, commenter)

	resp := deleteComment(router, comment.ID, getAuthHeader(bystander))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d: %s", resp.Code, resp.Body.String())
	}

	var count int64
	db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&count)
	if count != 1 {
		t.Error("Expected comment to survive")
	}
}

func TestDeleteMissingComment(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")

	resp := deleteComment(router, uuid.New(), getAuthHeader(user))
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}
