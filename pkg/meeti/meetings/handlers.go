package meetings

import (
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bioxim/meeti/pkg/logger"
	"github.com/bioxim/meeti/pkg/meeti/auth"
	"github.com/bioxim/meeti/pkg/meeti/authz"
	"github.com/bioxim/meeti/pkg/meeti/flash"
	"github.com/bioxim/meeti/pkg/meeti/models"
	"github.com/bioxim/meeti/pkg/meeti/sanitize"
)

const (
	// AdminRedirect is where successful meeting mutations point.
	AdminRedirect = "/admin"

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

const slugSuffixChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// Handler handles meeting administration requests
type Handler struct {
	db    *gorm.DB
	guard *authz.Guard
	flash flash.Store
}

// NewHandler creates a new meetings handler
func NewHandler(db *gorm.DB, flashStore flash.Store) *Handler {
	return &Handler{db: db, guard: authz.NewGuard(db), flash: flashStore}
}

// CreateMeetingRequest represents the request to schedule a meeting
type CreateMeetingRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Guest       string `json:"guest"`
	Capacity    int    `json:"capacity" binding:"omitempty,min=0"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Address     string `json:"address"`
	City        string `json:"city"`
	GroupID     string `json:"group_id" binding:"required"`
}

// UpdateMeetingRequest represents the request to edit a meeting.
// Omitted fields are left untouched.
type UpdateMeetingRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Guest       *string `json:"guest"`
	Capacity    *int    `json:"capacity"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
}

// MeetingResponse represents a meeting in API responses
type MeetingResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Guest       string    `json:"guest"`
	Capacity    int       `json:"capacity"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	GroupID     uuid.UUID `json:"group_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
}

func meetingToResponse(meeting models.Meeting) MeetingResponse {
	return MeetingResponse{
		ID:          meeting.ID,
		Title:       meeting.Title,
		Slug:        meeting.Slug,
		Description: meeting.Description,
		Guest:       meeting.Guest,
		Capacity:    meeting.Capacity,
		Date:        meeting.Date.Format(dateLayout),
		Time:        meeting.Time,
		Address:     meeting.Address,
		City:        meeting.City,
		GroupID:     meeting.GroupID,
		OwnerID:     meeting.OwnerID,
	}
}

// generateSlug builds a url-safe slug from the title plus a short random
// suffix so two meetings with the same title do not collide.
func generateSlug(title string) string {
	base := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if base == "" {
		base = "meeting"
	}
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = slugSuffixChars[rand.Intn(len(slugSuffixChars))]
	}
	return base + "-" + string(suffix)
}

func (h *Handler) notify(c *gin.Context, kind flash.Kind, messages ...string) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return
	}
	if err := h.flash.Push(c.Request.Context(), userID, flash.Notice{Kind: kind, Messages: messages}); err != nil {
		logger.Get().Warn().Err(err).Msg("failed to queue notification")
	}
}

func (h *Handler) denied(c *gin.Context) {
	h.notify(c, flash.Error, "Invalid operation")
	c.JSON(http.StatusNotFound, gin.H{"error": "Invalid operation", "redirect": AdminRedirect})
}

// Create schedules a meeting under a group the actor owns.
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		verr := authz.FromBinding(err)
		h.notify(c, flash.Error, verr.Fields...)
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields, "redirect": "/new-meeting"})
		return
	}

	groupID, err := uuid.Parse(req.GroupID)
	if err != nil {
		h.denied(c)
		return
	}

	// The group is the owned resource here: scheduling under somebody
	// else's group is an ownership violation.
	if _, err := h.guard.Group(groupID, userID); err != nil {
		if authz.IsDenial(err) {
			h.denied(c)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load group"})
		}
		return
	}

	var errs []string
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		errs = append(errs, "Date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse(timeLayout, req.Time); err != nil {
		errs = append(errs, "Time must be in HH:MM format")
	}
	if len(errs) > 0 {
		h.notify(c, flash.Error, errs...)
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs, "redirect": "/new-meeting"})
		return
	}

	meeting := models.Meeting{
		ID:          uuid.New(),
		Title:       sanitize.Clean(req.Title),
		Slug:        generateSlug(req.Title),
		Description: sanitize.Clean(req.Description),
		Guest:       sanitize.Clean(req.Guest),
		Capacity:    req.Capacity,
		Date:        date,
		Time:        req.Time,
		Address:     req.Address,
		City:        req.City,
		GroupID:     groupID,
		OwnerID:     userID,
	}

	if err := h.db.Create(&meeting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create meeting"})
		return
	}

	h.notify(c, flash.Success, "The meeting was created successfully")
	c.JSON(http.StatusCreated, gin.H{
		"meeting":  meetingToResponse(meeting),
		"message":  "The meeting was created successfully",
		"redirect": AdminRedirect,
	})
}

// Update edits an owned meeting. Omitted fields keep their values; id,
// owner and group are never touched.
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.denied(c)
		return
	}

	meeting, err := h.guard.Meeting(meetingID, userID)
	if err != nil {
		if authz.IsDenial(err) {
			h.denied(c)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load meeting"})
		}
		return
	}

	var req UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		verr := authz.FromBinding(err)
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields, "redirect": AdminRedirect})
		return
	}

	var errs []string
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			errs = append(errs, "Date must be in YYYY-MM-DD format")
		} else {
			meeting.Date = date
		}
	}
	if req.Time != nil {
		if _, err := time.Parse(timeLayout, *req.Time); err != nil {
			errs = append(errs, "Time must be in HH:MM format")
		} else {
			meeting.Time = *req.Time
		}
	}
	if len(errs) > 0 {
		h.notify(c, flash.Error, errs...)
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs, "redirect": AdminRedirect})
		return
	}

	if req.Title != nil {
		meeting.Title = sanitize.Clean(*req.Title)
	}
	if req.Description != nil {
		meeting.Description = sanitize.Clean(*req.Description)
	}
	if req.Guest != nil {
		meeting.Guest = sanitize.Clean(*req.Guest)
	}
	if req.Capacity != nil && *req.Capacity >= 0 {
		meeting.Capacity = *req.Capacity
	}
	if req.Address != nil {
		meeting.Address = *req.Address
	}
	if req.City != nil {
		meeting.City = *req.City
	}

	if err := h.db.Save(meeting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update meeting"})
		return
	}

	h.notify(c, flash.Success, "Changes saved successfully")
	c.JSON(http.StatusOK, gin.H{
		"meeting":  meetingToResponse(*meeting),
		"message":  "Changes saved successfully",
		"redirect": AdminRedirect,
	})
}

// Delete removes an owned meeting, scoped by the authorized record's id.
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.denied(c)
		return
	}

	meeting, err := h.guard.Meeting(meetingID, userID)
	if err != nil {
		if authz.IsDenial(err) {
			h.denied(c)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load meeting"})
		}
		return
	}

	if err := h.db.Delete(&models.Meeting{}, "id = ?", meeting.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete meeting"})
		return
	}

	h.notify(c, flash.Success, "Meeting deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Meeting deleted", "redirect": AdminRedirect})
}

// RegisterRoutes registers meeting administration routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
