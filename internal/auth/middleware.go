package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// userIDKey is the gin context key for the authenticated user ID.
const userIDKey = "halfsies:user-id"

// UserID returns the ID of the authenticated user for the request.
// It is only set on routes behind the Middleware.
func UserID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(userIDKey)

	userID, ok := id.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}

	return userID
}

// Middleware validates the bearer token of the request and stores the
// authenticated user ID on the context.
func Middleware(manager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			e := ErrMissingToken.Error()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": e})
			return
		}

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			e := ErrInvalidToken.Error()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": e})
			return
		}

		claims, err := manager.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}
