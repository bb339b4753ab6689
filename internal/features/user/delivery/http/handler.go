package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "rewards-mini-app-backend/internal/common/errors"
	"rewards-mini-app-backend/internal/common/middleware"
	"rewards-mini-app-backend/internal/features/user/models"
	"rewards-mini-app-backend/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/me", h.getMe)
		users.GET("/me/history", h.getHistory)
	}
}

// RegisterPointsRoutes регистрирует внешний контракт /api/points
func (h *UserHandler) RegisterPointsRoutes(api *gin.RouterGroup) {
	api.GET("/points", h.getPoints)
	api.POST("/points", h.creditPoints)
}

// @Summary Текущий пользователь
// @Description Возвращает учетную запись аутентифицированного пользователя
// @Tags users
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.UserResponse "Учетная запись"
// @Failure 401 {object} map[string]string "Не авторизован"
// @Router /users/me [get]
func (h *UserHandler) getMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	resp, err := h.service.GetUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary История начислений
// @Description Возвращает последние записи журнала баллов, новые первыми
// @Tags users
// @Produce json
// @Security TelegramInitData
// @Param limit query int false "Максимум записей" default(50)
// @Success 200 {array} models.LedgerEntry "Записи журнала"
// @Failure 401 {object} map[string]string "Не авторизован"
// @Router /users/me/history [get]
func (h *UserHandler) getHistory(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	var query struct {
		Limit int64 `form:"limit,default=50"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.service.RewardHistory(c.Request.Context(), user.ID, query.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// PointsResponse — ответ контракта GET /api/points
type PointsResponse struct {
	Points int64 `json:"points" example:"150"`
}

// CreditRequest — тело контракта POST /api/points
type CreditRequest struct {
	Amount      int64                  `json:"amount" binding:"required" example:"25"`
	Type        string                 `json:"type" example:"manual"`
	Description string                 `json:"description" example:"promo bonus"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// @Summary Баланс баллов
// @Description Возвращает текущий баланс аутентифицированного пользователя
// @Tags points
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} PointsResponse "Баланс"
// @Failure 401 {object} map[string]string "Не авторизован"
// @Router /points [get]
func (h *UserHandler) getPoints(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	points, err := h.service.GetPoints(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PointsResponse{Points: points})
}

// @Summary Начислить баллы
// @Description Начисляет положительную сумму на счет аутентифицированного пользователя
// @Tags points
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param input body CreditRequest true "Параметры начисления"
// @Success 200 {object} map[string]bool "Успех"
// @Failure 400 {object} map[string]string "Неположительная сумма"
// @Failure 401 {object} map[string]string "Не авторизован"
// @Router /points [post]
func (h *UserHandler) creditPoints(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	var input CreditRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entryType := models.EntryType(input.Type)
	if entryType == "" {
		entryType = models.EntryTypeManual
	}

	if _, err := h.service.Credit(c.Request.Context(), user.ID, input.Amount, entryType, input.Description); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, service.ErrNonPositiveAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive integer"})
	case errors.Is(err, service.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient balance"})
	default:
		if appErr, ok := apperrors.AsAppError(err); ok {
			c.JSON(middleware.HTTPStatus(appErr), gin.H{"error": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
