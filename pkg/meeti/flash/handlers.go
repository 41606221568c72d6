package flash

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bioxim/meeti/pkg/meeti/auth"
)

// Handler exposes the notification queue over HTTP
type Handler struct {
	store Store
}

// NewHandler creates a new flash handler
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Pop returns and clears the actor's queued notifications. A second call
// without intervening mutations returns an empty list.
func (h *Handler) Pop(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	notices, err := h.store.Pop(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	if notices == nil {
		notices = []Notice{}
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notices})
}

// RegisterRoutes registers notification routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.Pop)
}
