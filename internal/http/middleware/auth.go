package middleware

import (
	"net/http"
	"strings"

	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

const contextKeyUserID = "user_id"

// Auth verifies the Authorization bearer token and stores the principal
// id in the request context. The failure message is deliberately generic.
func Auth(tokens service.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized, token missing or invalid",
			})
			return
		}
		userID, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized, token missing or invalid",
			})
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

// UserID returns the principal id set by Auth. 0 when unauthenticated.
func UserID(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0
	}
	id, ok := v.(int64)
	if !ok {
		return 0
	}
	return id
}
