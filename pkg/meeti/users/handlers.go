package users

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bioxim/meeti/pkg/logger"
	"github.com/bioxim/meeti/pkg/meeti/auth"
	"github.com/bioxim/meeti/pkg/meeti/authz"
	"github.com/bioxim/meeti/pkg/meeti/flash"
	"github.com/bioxim/meeti/pkg/meeti/models"
	"github.com/bioxim/meeti/pkg/meeti/sanitize"
	"github.com/bioxim/meeti/pkg/meeti/uploads"
)

// AdminRedirect is where successful profile mutations point.
const AdminRedirect = "/admin"

// Handler handles profile administration requests
type Handler struct {
	db      *gorm.DB
	files   *uploads.Store
	flash   flash.Store
	revoker auth.Revoker
}

// NewHandler creates a new users handler
func NewHandler(db *gorm.DB, files *uploads.Store, flashStore flash.Store, revoker auth.Revoker) *Handler {
	return &Handler{db: db, files: files, flash: flashStore, revoker: revoker}
}

// UpdateProfileRequest represents the request to edit the actor's profile.
// Omitted fields are left untouched.
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Email       *string `json:"email" binding:"omitempty,email"`
}

// ChangePasswordRequest represents the password change request
type ChangePasswordRequest struct {
	Current string `json:"current" binding:"required"`
	New     string `json:"new" binding:"required,min=8"`
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

// loadActor loads the authenticated user's own record. The actor always
// owns themselves, so no separate guard call is needed.
func (h *Handler) loadActor(c *gin.Context) (*models.User, bool) {
	userID, _ := auth.GetUserID(c)
	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid operation", "redirect": AdminRedirect})
		return nil, false
	}
	return &user, true
}

// UpdateProfile overwrites the editable profile fields (name, description,
// email). Fields not in the request are left unchanged.
func (h *Handler) UpdateProfile(c *gin.Context) {
	user, ok := h.loadActor(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		verr := authz.FromBinding(err)
		h.notify(c, flash.Error, verr.Fields...)
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields, "redirect": AdminRedirect})
		return
	}

	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		var existing models.User
		if err := h.db.Where("email = ? AND id != ?", email, user.ID).First(&existing).Error; err == nil {
			h.notify(c, flash.Error, "That email is already registered")
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"That email is already registered"}, "redirect": AdminRedirect})
			return
		}
		user.Email = email
	}
	if req.Name != nil {
		user.Name = sanitize.Clean(*req.Name)
	}
	if req.Description != nil {
		user.Description = sanitize.Clean(*req.Description)
	}

	if err := h.db.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	h.notify(c, flash.Success, "Changes saved successfully")
	c.JSON(http.StatusOK, gin.H{"message": "Changes saved successfully", "redirect": AdminRedirect})
}

// ChangePassword verifies the current password, stores the new hash and
// revokes the current session so the actor must sign in again.
func (h *Handler) ChangePassword(c *gin.Context) {
	user, ok := h.loadActor(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		verr := authz.FromBinding(err)
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields, "redirect": AdminRedirect})
		return
	}

	if !auth.CheckPassword(req.Current, user.PasswordHash) {
		h.notify(c, flash.Error, "The current password is incorrect")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "The current password is incorrect", "redirect": AdminRedirect})
		return
	}

	hash, err := auth.HashPassword(req.New)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}
	user.PasswordHash = hash

	if err := h.db.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	// Force re-authentication: the token that made this request is dead.
	if token, ok := auth.GetToken(c); ok {
		if exp, err := auth.TokenExpiry(token); err == nil {
			if err := h.revoker.Revoke(c.Request.Context(), token, time.Until(exp)); err != nil {
				logger.Get().Warn().Err(err).Msg("failed to revoke token after password change")
			}
		}
	}

	h.notify(c, flash.Success, "Password changed, please sign in again")
	c.JSON(http.StatusOK, gin.H{"message": "Password changed, please sign in again", "redirect": auth.SignInRedirect})
}

// UpdateImage replaces the actor's profile image with the same protocol
// as group images: the old file goes only when a new one arrived and the
// old one exists, and removal failure never blocks the save.
func (h *Handler) UpdateImage(c *gin.Context) {
	user, ok := h.loadActor(c)
	if !ok {
		return
	}

	if file, err := c.FormFile("image"); err == nil {
		name, err := h.files.Save(file, uploads.ProfilesDir)
		if err != nil {
			h.notify(c, flash.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{err.Error()}, "redirect": AdminRedirect})
			return
		}

		if user.Image != "" && h.files.Exists(uploads.ProfilesDir, user.Image) {
			if err := h.files.Remove(uploads.ProfilesDir, user.Image); err != nil {
				logger.Get().Warn().Err(err).Str("file", user.Image).Msg("failed to remove old profile image")
			}
		}
		user.Image = name
	}

	if err := h.db.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	h.notify(c, flash.Success, "Changes saved successfully")
	c.JSON(http.StatusOK, gin.H{"message": "Changes saved successfully", "redirect": AdminRedirect})
}

// RegisterRoutes registers profile routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/profile", h.UpdateProfile)
	rg.PUT("/profile/password", h.ChangePassword)
	rg.POST("/profile/image", h.UpdateImage)
}
