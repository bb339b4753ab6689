package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuth пропускает только запросы с валидными Telegram init data
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
			return
		}

		c.Next()
	}
}

// RequireAdmin пропускает только администраторов из ADMIN_IDS
func RequireAdmin(adminIDs []int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
			return
		}

		for _, adminID := range adminIDs {
			if user.ID == adminID {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
	}
}
