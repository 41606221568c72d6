package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bioxim/meeti/pkg/logger"
	"github.com/bioxim/meeti/pkg/meeti/authz"
	"github.com/bioxim/meeti/pkg/meeti/mailer"
	"github.com/bioxim/meeti/pkg/meeti/sanitize"
	"github.com/bioxim/meeti/pkg/meeti/models"
)

// How long a confirmation link stays valid.
const confirmTokenTTL = 7 * 24 * time.Hour

// Handler handles authentication requests
type Handler struct {
	db      *gorm.DB
	revoker Revoker
	mail    mailer.Mailer
	baseURL string
}

// NewHandler creates a new auth handler
func NewHandler(db *gorm.DB, revoker Revoker, mail mailer.Mailer, baseURL string) *Handler {
	return &Handler{db: db, revoker: revoker, mail: mail, baseURL: baseURL}
}

// RegisterRequest represents the signup request body
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Confirm  string `json:"confirm" binding:"required,eqfield=Password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
}

func userToResponse(user models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Description: user.Description,
		Image:       user.Image,
	}
}

// newConfirmToken generates the random credential a signup must present
// to activate the account.
func newConfirmToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Register creates an inactive account and emails a confirmation link.
// All field-level problems are collected and surfaced together.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		verr := authz.FromBinding(err)
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields, "redirect": "/register"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))

	// Check if email already exists
	var existing models.User
	if err := h.db.Where("email = ?", email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"That email is already registered"}, "redirect": "/register"})
		return
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	token, err := newConfirmToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	user := models.User{
		ID:               uuid.New(),
		Email:            email,
		PasswordHash:     hashedPassword,
		Name:             sanitize.Clean(req.Name),
		Active:           false,
		ConfirmToken:     token,
		ConfirmExpiresAt: time.Now().Add(confirmTokenTTL),
	}

	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	// Delivery failure must not undo the signup; the link is logged so an
	// operator can resend it.
	confirmURL := h.baseURL + "/api/auth/confirm/" + token
	if err := h.mail.SendConfirmation(user.Email, user.Name, confirmURL); err != nil {
		logger.Get().Error().Err(err).Str("email", user.Email).Msg("confirmation email failed")
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "We have sent you an email, please confirm your account",
		"redirect": SignInRedirect,
	})
}

// Confirm activates the account matching the presented token. Confirming
// an already-active account is a harmless no-op, so retries of the same
// link succeed.
func (h *Handler) Confirm(c *gin.Context) {
	token := c.Param("token")

	var user models.User
	if err := h.db.Where("confirm_token = ?", token).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "That account does not exist", "redirect": "/register"})
		return
	}

	if !user.Active && time.Now().After(user.ConfirmExpiresAt) {
		c.JSON(http.StatusGone, gin.H{"error": "That confirmation link has expired", "redirect": "/register"})
		return
	}

	user.Active = true
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Your account is confirmed, you can now sign in",
		"redirect": SignInRedirect,
	})
}

// Login authenticates with email and password and returns a JWT.
// Inactive accounts are rejected until confirmed.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", strings.TrimSpace(strings.ToLower(req.Email))).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !user.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Please confirm your account before signing in"})
		return
	}

	token, err := GenerateToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: userToResponse(user)})
}

// Logout blacklists the current token until its natural expiry.
func (h *Handler) Logout(c *gin.Context) {
	tokenString, err := ExtractToken(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := TokenExpiry(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	if err := h.revoker.Revoke(c.Request.Context(), tokenString, time.Until(exp)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out", "redirect": SignInRedirect})
}

// Me returns the current authenticated user
func (h *Handler) Me(c *gin.Context) {
	userID, exists := GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required", "redirect": SignInRedirect})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

// RegisterRoutes registers auth routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.GET("/confirm/:token", h.Confirm)
	rg.POST("/login", h.Login)
	rg.POST("/logout", Middleware(h.revoker), h.Logout)
	rg.GET("/me", Middleware(h.revoker), h.Me)
}
