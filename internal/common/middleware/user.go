package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rewards-mini-app-backend/internal/common/logger"
	"rewards-mini-app-backend/internal/features/user/service"
)

// AutoCreateUser лениво заводит учетную запись при первом обращении.
// Профиль обновляется, если данные в Telegram изменились.
func AutoCreateUser(userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Next()
			return
		}

		_, err := userService.GetOrCreateUser(c.Request.Context(), user.ID, user.Username, user.FirstName, user.LastName)
		if err != nil {
			logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to auto-create user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to create/update user"})
			return
		}

		c.Next()
	}
}
