package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"rewards-mini-app-backend/internal/common/logger"
)

// HeaderInitData — заголовок с подписанными Telegram WebApp данными
const HeaderInitData = "x-telegram-init-data"

// ContextUserKey — ключ, под которым initdata.User лежит в контексте gin
const ContextUserKey = "user"

// TelegramInitData валидирует подпись init data и кладет пользователя в контекст
func TelegramInitData(botToken string, debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderInitData)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
			return
		}

		// Срок жизни init data не проверяем: фронт переиспользует его всю сессию
		expIn := time.Duration(0)

		if err := initdata.Validate(raw, botToken, expIn); err != nil {
			if debug {
				logger.Debug().Err(err).Msg("init data validation failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": fmt.Sprintf("Invalid init data: %v", err)})
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to parse init data: %v", err)})
			return
		}

		c.Set(ContextUserKey, parsed.User)
		c.Next()
	}
}

// CurrentUser достает аутентифицированного пользователя Telegram из контекста
func CurrentUser(c *gin.Context) (initdata.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return initdata.User{}, false
	}
	u, ok := v.(initdata.User)
	return u, ok
}
