package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bioxim/meeti/pkg/meeti/auth"
	"github.com/bioxim/meeti/pkg/meeti/models"
)

// Handler serves the administration panel
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// Panel returns everything the actor administers: their groups, their
// upcoming meetings in date order, and their past meetings.
func (h *Handler) Panel(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	// Midnight today, so meetings later today still count as upcoming.
	today := time.Now().UTC().Truncate(24 * time.Hour)

	var groups []models.Group
	if err := h.db.Where("owner_id = ?", userID).Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	var upcoming []models.Meeting
	if err := h.db.Where("owner_id = ? AND date >= ?", userID, today).
		Order("date ASC").Find(&upcoming).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meetings"})
		return
	}

	var past []models.Meeting
	if err := h.db.Where("owner_id = ? AND date < ?", userID, today).
		Order("date DESC").Find(&past).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meetings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"groups":   groups,
		"upcoming": upcoming,
		"past":     past,
	})
}

// RegisterRoutes registers admin panel routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Panel)
}
