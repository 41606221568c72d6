package public

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bioxim/meeti/pkg/meeti/models"
)

// Handler serves the unauthenticated read surface: meeting pages, group
// pages, public profiles and the category reference list.
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new public handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// ShowMeeting returns a meeting with its group, comments and attendee count
func (h *Handler) ShowMeeting(c *gin.Context) {
	var meeting models.Meeting
	if err := h.db.Preload("Group").Preload("Owner").
		Where("slug = ?", c.Param("slug")).First(&meeting).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
		return
	}

	var comments []models.Comment
	h.db.Preload("Author").Where("meeting_id = ?", meeting.ID).
		Order("created_at ASC").Find(&comments)

	var attendeeCount int64
	h.db.Model(&models.Attendance{}).Where("meeting_id = ?", meeting.ID).Count(&attendeeCount)

	commentList := make([]gin.H, len(comments))
	for i, comment := range comments {
		commentList[i] = gin.H{
			"id":         comment.ID,
			"body":       comment.Body,
			"created_at": comment.CreatedAt,
			"author": gin.H{
				"id":    comment.Author.ID,
				"name":  comment.Author.Name,
				"image": comment.Author.Image,
			},
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"meeting": gin.H{
			"id":          meeting.ID,
			"title":       meeting.Title,
			"slug":        meeting.Slug,
			"description": meeting.Description,
			"guest":       meeting.Guest,
			"capacity":    meeting.Capacity,
			"date":        meeting.Date.Format("2006-01-02"),
			"time":        meeting.Time,
			"address":     meeting.Address,
			"city":        meeting.City,
		},
		"group": gin.H{
			"id":   meeting.Group.ID,
			"name": meeting.Group.Name,
			"slug": meeting.Group.Slug,
		},
		"organizer": gin.H{
			"id":   meeting.Owner.ID,
			"name": meeting.Owner.Name,
		},
		"comments":       commentList,
		"attendee_count": attendeeCount,
	})
}

// ShowGroup returns a group with its upcoming meetings
func (h *Handler) ShowGroup(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var group models.Group
	if err := h.db.Preload("Category").First(&group, "id = ?", groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var meetings []models.Meeting
	h.db.Where("group_id = ? AND date >= ?", group.ID, today).
		Order("date ASC").Find(&meetings)

	c.JSON(http.StatusOK, gin.H{
		"group":    group,
		"meetings": meetings,
	})
}

// ShowUser returns a public profile with the groups the user owns
func (h *Handler) ShowUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var groups []models.Group
	h.db.Where("owner_id = ?", user.ID).Find(&groups)

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":          user.ID,
			"name":        user.Name,
			"description": user.Description,
			"image":       user.Image,
		},
		"groups": groups,
	})
}

// ListCategories returns the category reference data
func (h *Handler) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := h.db.Order("name ASC").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// RegisterRoutes registers the public read routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/m/:slug", h.ShowMeeting)
	rg.GET("/groups/:id", h.ShowGroup)
	rg.GET("/users/:id", h.ShowUser)
	rg.GET("/categories", h.ListCategories)
}
