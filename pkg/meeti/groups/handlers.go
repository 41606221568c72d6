package groups

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bioxim/meeti/pkg/logger"
	"github.com/bioxim/meeti/pkg/meeti/auth"
	"github.com/bioxim/meeti/pkg/meeti/authz"
	"github.com/bioxim/meeti/pkg/meeti/flash"
	"github.com/bioxim/meeti/pkg/meeti/models"
	"github.com/bioxim/meeti/pkg/meeti/sanitize"
	"github.com/bioxim/meeti/pkg/meeti/uploads"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// AdminRedirect is where successful administrative mutations point.
const AdminRedirect = "/admin"

// Handler handles group administration requests
type Handler struct {
	db    *gorm.DB
	guard *authz.Guard
	files *uploads.Store
	flash flash.Store
}

// NewHandler creates a new groups handler
func NewHandler(db *gorm.DB, files *uploads.Store, flashStore flash.Store) *Handler {
	return &Handler{db: db, guard: authz.NewGuard(db), files: files, flash: flashStore}
}

// CreateGroupRequest represents the multipart form to create a group
type CreateGroupRequest struct {
	Name        string `form:"name" binding:"required"`
	Slug        string `form:"slug" binding:"required"`
	Description string `form:"description"`
	CategoryID  string `form:"category_id" binding:"required"`
}

// UpdateGroupRequest represents the request to update a group.
// Pointer fields distinguish "not sent" from "set to empty": omitted
// fields are left untouched.
type UpdateGroupRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	CategoryID  *string `json:"category_id"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CategoryID  uuid.UUID `json:"category_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
}

func groupToResponse(group models.Group) GroupResponse {
	return GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Slug:        group.Slug,
		Description: group.Description,
		Image:       group.Image,
		CategoryID:  group.CategoryID,
		OwnerID:     group.OwnerID,
	}
}

// notify queues a one-shot notice for the actor.
func (h *Handler) notify(c *gin.Context, kind flash.Kind, messages ...string) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		return
	}
	if err := h.flash.Push(c.Request.Context(), userID, flash.Notice{Kind: kind, Messages: messages}); err != nil {
		logger.Get().Warn().Err(err).Msg("failed to queue notification")
	}
}

// denied sends the generic denial outcome. NotFound and Forbidden look
// identical to the caller.
func (h *Handler) denied(c *gin.Context) {
	h.notify(c, flash.Error, "Invalid operation")
	c.JSON(http.StatusNotFound, gin.H{"error": "Invalid operation", "redirect": AdminRedirect})
}

// validateSlug checks format, reserved words and uniqueness of a group
// slug. Pass uuid.Nil as excludeID when creating.
func (h *Handler) validateSlug(slug string, excludeID uuid.UUID) []string {
	if !slugRegex.MatchString(slug) {
		return []string{"Slug must contain only lowercase letters, numbers, hyphens, and underscores"}
	}

	reserved := []string{"api", "health", "admin", "login", "register", "auth", "groups", "meetings"}
	for _, r := range reserved {
		if strings.EqualFold(slug, r) {
			return []string{"This slug is reserved"}
		}
	}

	var existing models.Group
	query := h.db.Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		query = query.Where("id != ?", excludeID)
	}
	if err := query.First(&existing).Error; err == nil {
		return []string{"This slug is already taken"}
	}
	return nil
}

// categoryExists reports whether id names a seeded category.
func (h *Handler) categoryExists(id uuid.UUID) bool {
	var category models.Category
	return h.db.First(&category, "id = ?", id).Error == nil
}

// Create stores a new group owned by the actor. Field problems are
// aggregated into a single error notice and the caller is sent back to
// the creation form; nothing is persisted on failure.
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateGroupRequest
	if err := c.ShouldBind(&req); err != nil {
		verr := authz.FromBinding(err)
		h.notify(c, flash.Error, verr.Fields...)
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields, "redirect": "/new-group"})
		return
	}

	var errs []string

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	errs = append(errs, h.validateSlug(slug, uuid.Nil)...)

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil || !h.categoryExists(categoryID) {
		errs = append(errs, "Unknown category")
	}

	var image string
	if file, err := c.FormFile("image"); err == nil {
		image, err = h.files.Save(file, uploads.GroupsDir)
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		h.notify(c, flash.Error, errs...)
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs, "redirect": "/new-group"})
		return
	}

	group := models.Group{
		ID:          uuid.New(),
		Name:        sanitize.Clean(req.Name),
		Slug:        slug,
		Description: sanitize.Clean(req.Description),
		Image:       image,
		CategoryID:  categoryID,
		OwnerID:     userID,
	}

	if err := h.db.Create(&group).Error; err != nil {
		h.notify(c, flash.Error, "Failed to create group")
		c.JSON(http.StatusInternalServerError, gin.H{"errors": []string{"Failed to create group"}, "redirect": "/new-group"})
		return
	}

	h.notify(c, flash.Success, "The group was created successfully")
	c.JSON(http.StatusCreated, gin.H{
		"group":    groupToResponse(group),
		"message":  "The group was created successfully",
		"redirect": AdminRedirect,
	})
}

// List returns the groups the actor owns
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var groups []models.Group
	if err := h.db.Where("owner_id = ?", userID).Order("created_at DESC").Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	responses := make([]GroupResponse, len(groups))
	for i, group := range groups {
		responses[i] = groupToResponse(group)
	}
	c.JSON(http.StatusOK, responses)
}

// Update overwrites the editable fields of an owned group. Fields not in
// the request are left unchanged; id and owner are never touched.
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.denied(c)
		return
	}

	group, err := h.guard.Group(groupID, userID)
	if err != nil {
		if authz.IsDenial(err) {
			h.denied(c)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load group"})
		}
		return
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		verr := authz.FromBinding(err)
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields, "redirect": AdminRedirect})
		return
	}

	var errs []string
	if req.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*req.Slug))
		errs = append(errs, h.validateSlug(slug, group.ID)...)
		if len(errs) == 0 {
			group.Slug = slug
		}
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil || !h.categoryExists(categoryID) {
			errs = append(errs, "Unknown category")
		} else {
			group.CategoryID = categoryID
		}
	}

	if len(errs) > 0 {
		h.notify(c, flash.Error, errs...)
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs, "redirect": AdminRedirect})
		return
	}

	if req.Name != nil {
		group.Name = sanitize.Clean(*req.Name)
	}
	if req.Description != nil {
		group.Description = sanitize.Clean(*req.Description)
	}

	if err := h.db.Save(group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
		return
	}

	h.notify(c, flash.Success, "Changes saved successfully")
	c.JSON(http.StatusOK, gin.H{
		"group":    groupToResponse(*group),
		"message":  "Changes saved successfully",
		"redirect": AdminRedirect,
	})
}

// UpdateImage replaces the group's image. The old file is removed only
// when a new file was actually supplied and the old one exists on disk;
// removal failure is logged and never blocks the save.
func (h *Handler) UpdateImage(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.denied(c)
		return
	}

	group, err := h.guard.Group(groupID, userID)
	if err != nil {
		if authz.IsDenial(err) {
			h.denied(c)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load group"})
		}
		return
	}

	if file, err := c.FormFile("image"); err == nil {
		name, err := h.files.Save(file, uploads.GroupsDir)
		if err != nil {
			h.notify(c, flash.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{err.Error()}, "redirect": AdminRedirect})
			return
		}

		if group.Image != "" && h.files.Exists(uploads.GroupsDir, group.Image) {
			if err := h.files.Remove(uploads.GroupsDir, group.Image); err != nil {
				logger.Get().Warn().Err(err).Str("file", group.Image).Msg("failed to remove old group image")
			}
		}
		group.Image = name
	}

	// Persist even when no file was sent: a plain save of the unchanged
	// record is harmless.
	if err := h.db.Save(group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
		return
	}

	h.notify(c, flash.Success, "Changes saved successfully")
	c.JSON(http.StatusOK, gin.H{
		"group":    groupToResponse(*group),
		"message":  "Changes saved successfully",
		"redirect": AdminRedirect,
	})
}

// Delete removes an owned group and its image file. The record delete is
// scoped by the id of the record the guard already authorized.
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.denied(c)
		return
	}

	group, err := h.guard.Group(groupID, userID)
	if err != nil {
		if authz.IsDenial(err) {
			h.denied(c)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load group"})
		}
		return
	}

	if group.Image != "" {
		if err := h.files.Remove(uploads.GroupsDir, group.Image); err != nil {
			logger.Get().Warn().Err(err).Str("file", group.Image).Msg("failed to remove group image")
		}
	}

	if err := h.db.Delete(&models.Group{}, "id = ?", group.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}

	h.notify(c, flash.Success, "Group deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Group deleted", "redirect": AdminRedirect})
}

// RegisterRoutes registers group administration routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/image", h.UpdateImage)
	rg.DELETE("/:id", h.Delete)
}
