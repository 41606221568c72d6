package flash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestMemoryStorePopIsOneShot(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	store.Push(ctx, userID, Notice{Kind: Success, Messages: []string{"Group created"}})
	store.Push(ctx, userID, Notice{Kind: Error, Messages: []string{"Something failed"}})

	notices, err := store.Pop(ctx, userID)
	if err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if len(notices) != 2 {
		t.Fatalf("Expected 2 notices, got %d", len(notices))
	}
	if notices[0].Kind != Success || notices[1].Kind != Error {
		t.Error("Expected notices in push order")
	}

	again, _ := store.Pop(ctx, userID)
	if len(again) != 0 {
		t.Errorf("Expected the queue to be drained, got %d notices", len(again))
	}
}

func TestMemoryStoreIsolatesUsers(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	store.Push(ctx, alice, Notice{Kind: Success, Messages: []string{"hello alice"}})

	notices, _ := store.Pop(ctx, bob)
	if len(notices) != 0 {
		t.Errorf("Expected no notices for another user, got %d", len(notices))
	}
}

func TestPopHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewMemoryStore()
	userID := uuid.New()
	store.Push(context.Background(), userID, Notice{Kind: Success, Messages: []string{"Changes saved successfully"}})

	r := gin.New()
	// Stand-in for the auth middleware.
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
	})
	NewHandler(store).RegisterRoutes(r.Group(""))

	req, _ := http.NewRequest("GET", "/notifications", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Notifications []Notice `json:"notifications"`
	}
	json.Unmarshal(resp.Body.Bytes(), &body)
	if len(body.Notifications) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(body.Notifications))
	}
	if body.Notifications[0].Messages[0] != "Changes saved successfully" {
		t.Errorf("Unexpected message: %v", body.Notifications[0].Messages)
	}

	// The second fetch comes back empty.
	resp2 := httptest.NewRecorder()
	req2, _ := http.NewRequest("GET", "/notifications", nil)
	r.ServeHTTP(resp2, req2)
	json.Unmarshal(resp2.Body.Bytes(), &body)
	if len(body.Notifications) != 0 {
		t.Errorf("Expected empty list on second fetch, got %d", len(body.Notifications))
	}
}
