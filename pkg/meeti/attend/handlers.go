package attend

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bioxim/meeti/pkg/meeti/auth"
	"github.com/bioxim/meeti/pkg/meeti/models"
)

// Handler handles meeting RSVPs
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new attendance handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RSVPRequest represents an attendance confirmation or cancellation
type RSVPRequest struct {
	Action string `json:"action" binding:"required,oneof=confirm cancel"`
}

// AttendeeResponse represents an attendee in API responses
type AttendeeResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image"`
}

func (h *Handler) meetingBySlug(c *gin.Context) (*models.Meeting, bool) {
	var meeting models.Meeting
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&meeting).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
		return nil, false
	}
	return &meeting, true
}

// RSVP confirms or cancels the actor's attendance. Confirming twice is
// harmless; cancelling an absent RSVP reports that nothing was confirmed.
func (h *Handler) RSVP(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	meeting, ok := h.meetingBySlug(c)
	if !ok {
		return
	}

	var req RSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Action {
	case "confirm":
		var existing models.Attendance
		if err := h.db.Where("meeting_id = ? AND user_id = ?", meeting.ID, userID).First(&existing).Error; err == nil {
			c.JSON(http.StatusOK, gin.H{"message": "You are already confirmed"})
			return
		}

		if meeting.Capacity > 0 {
			var count int64
			h.db.Model(&models.Attendance{}).Where("meeting_id = ?", meeting.ID).Count(&count)
			if count >= int64(meeting.Capacity) {
				c.JSON(http.StatusConflict, gin.H{"error": "This meeting is full"})
				return
			}
		}

		attendance := models.Attendance{MeetingID: meeting.ID, UserID: userID}
		if err := h.db.Create(&attendance).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm attendance"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Attendance confirmed"})

	case "cancel":
		result := h.db.Where("meeting_id = ? AND user_id = ?", meeting.ID, userID).Delete(&models.Attendance{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel attendance"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "You had not confirmed attendance"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Attendance cancelled"})
	}
}

// ListAttendees returns who has confirmed attendance. Public.
func (h *Handler) ListAttendees(c *gin.Context) {
	meeting, ok := h.meetingBySlug(c)
	if !ok {
		return
	}

	var attendances []models.Attendance
	if err := h.db.Preload("User").Where("meeting_id = ?", meeting.ID).Find(&attendances).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendees"})
		return
	}

	attendees := make([]AttendeeResponse, len(attendances))
	for i, a := range attendances {
		attendees[i] = AttendeeResponse{
			ID:    a.User.ID,
			Name:  a.User.Name,
			Image: a.User.Image,
		}
	}

	c.JSON(http.StatusOK, gin.H{"attendees": attendees, "count": len(attendees)})
}

// RegisterRoutes registers the authenticated RSVP route
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/m/:slug/rsvp", h.RSVP)
}

// RegisterPublicRoutes registers the public attendee listing
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/m/:slug/attendees", h.ListAttendees)
}
