package comments

import (
	"errors"
	"net/http"

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

// Handler handles meeting comments
type Handler struct {
	db    *gorm.DB
	guard *authz.Guard
	flash flash.Store
}

// NewHandler creates a new comments handler
func NewHandler(db *gorm.DB, flashStore flash.Store) *Handler {
	return &Handler{db: db, guard: authz.NewGuard(db), flash: flashStore}
}

// CreateCommentRequest represents a new comment
type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID       uuid.UUID `json:"id"`
	AuthorID uuid.UUID `json:"author_id"`
	Body     string    `json:"body"`
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

// Create adds a comment to a meeting. Any authenticated user may comment.
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var meeting models.Meeting
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&meeting).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		verr := authz.FromBinding(err)
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
		return
	}

	comment := models.Comment{
		ID:        uuid.New(),
		MeetingID: meeting.ID,
		AuthorID:  userID,
		Body:      sanitize.Clean(req.Body),
	}

	if err := h.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	c.JSON(http.StatusCreated, CommentResponse{
		ID:       comment.ID,
		AuthorID: comment.AuthorID,
		Body:     comment.Body,
	})
}

// Delete removes a comment. The author may delete their own comment, and
// the owner of the meeting may delete any comment on it (moderation).
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.denied(c)
		return
	}

	comment, err := h.guard.Comment(commentID, userID)
	if errors.Is(err, authz.ErrForbidden) {
		// Not the author; moderation still applies when the actor owns
		// the meeting the comment is on.
		var loaded models.Comment
		if err := h.db.First(&loaded, "id = ?", commentID).Error; err != nil {
			h.denied(c)
			return
		}
		if _, err := h.guard.Meeting(loaded.MeetingID, userID); err != nil {
			h.denied(c)
			return
		}
		comment = &loaded
	} else if err != nil {
		if authz.IsDenial(err) {
			h.denied(c)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comment"})
		}
		return
	}

	if err := h.db.Delete(&models.Comment{}, "id = ?", comment.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

func (h *Handler) denied(c *gin.Context) {
	h.notify(c, flash.Error, "Invalid operation")
	c.JSON(http.StatusNotFound, gin.H{"error": "Invalid operation"})
}

// RegisterRoutes registers comment routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/m/:slug/comments", h.Create)
	rg.DELETE("/comments/:id", h.Delete)
}
