package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextKeyUserID is the key for the actor's user ID in gin context
	ContextKeyUserID = "user_id"
	// ContextKeyEmail is the key for the actor's email in gin context
	ContextKeyEmail = "email"
	// ContextKeyToken is the key for the raw bearer token in gin context
	ContextKeyToken = "token"

	// SignInRedirect is where unauthenticated requests are pointed.
	SignInRedirect = "/sign-in"
)

// ExtractToken pulls the bearer token out of the Authorization header.
func ExtractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header required")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

// Middleware validates the JWT, rejects revoked tokens and sets the actor
// in context. Unauthenticated requests get a sign-in redirect target.
func Middleware(revoker Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := ExtractToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "redirect": SignInRedirect})
			c.Abort()
			return
		}

		revoked, err := revoker.Revoked(c.Request.Context(), tokenString)
		if err != nil || revoked {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session is no longer valid", "redirect": SignInRedirect})
			c.Abort()
			return
		}

		claims, err := ValidateToken(tokenString)
		if err != nil {
			if err == ErrExpiredToken {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has expired", "redirect": SignInRedirect})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "redirect": SignInRedirect})
			}
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "redirect": SignInRedirect})
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyToken, tokenString)

		c.Next()
	}
}

// GetUserID returns the actor's user ID from the gin context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	return userID.(uuid.UUID), true
}

// GetToken returns the raw bearer token from the gin context
func GetToken(c *gin.Context) (string, bool) {
	token, exists := c.Get(ContextKeyToken)
	if !exists {
		return "", false
	}
	return token.(string), true
}
