package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "rewards-mini-app-backend/internal/common/errors"
	"rewards-mini-app-backend/internal/common/middleware"
	"rewards-mini-app-backend/internal/features/referral/models"
	"rewards-mini-app-backend/internal/features/referral/service"
)

type ReferralHandler struct {
	service service.ReferralService
}

func NewReferralHandler(service service.ReferralService) *ReferralHandler {
	return &ReferralHandler{service: service}
}

func (h *ReferralHandler) RegisterRoutes(router *gin.RouterGroup) {
	referrals := router.Group("/referrals")
	{
		referrals.GET("/code", h.getCode)
		referrals.POST("/redeem", h.redeem)
		referrals.GET("/friends", h.getFriends)
	}
}

// @Summary Инвайт-код пользователя
// @Description Возвращает постоянный инвайт-код, при первом обращении генерирует его
// @Tags referrals
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.CodeResponse "Инвайт-код"
// @Failure 401 {object} map[string]string "Не авторизован"
// @Router /referrals/code [get]
func (h *ReferralHandler) getCode(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	code, err := h.service.GenerateCode(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CodeResponse{Code: code})
}

// @Summary Погасить инвайт-код
// @Description Зачисляет награды пригласившему и приглашенному, строго один раз на приглашенного
// @Tags referrals
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param input body models.RedeemRequest true "Инвайт-код"
// @Success 200 {object} models.ReferralResult "Результат погашения"
// @Failure 400 {object} map[string]string "Невалидный код"
// @Failure 409 {object} map[string]string "Повторное погашение или свой код"
// @Router /referrals/redeem [post]
func (h *ReferralHandler) redeem(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	var input models.RedeemRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Redeem(c.Request.Context(), input.Code, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Приглашенные друзья
// @Description Возвращает список успешных рефералов пользователя
// @Tags referrals
// @Produce json
// @Security TelegramInitData
// @Success 200 {array} usermodels.FriendRef "Рефералы"
// @Failure 401 {object} map[string]string "Не авторизован"
// @Router /referrals/friends [get]
func (h *ReferralHandler) getFriends(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	friends, err := h.service.Friends(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, friends)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invite code"})
	case errors.Is(err, models.ErrSelfReferral):
		c.JSON(http.StatusConflict, gin.H{"error": "cannot redeem own invite code"})
	case errors.Is(err, models.ErrAlreadyReferred):
		c.JSON(http.StatusConflict, gin.H{"error": "user is already referred"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		if appErr, ok := apperrors.AsAppError(err); ok {
			c.JSON(middleware.HTTPStatus(appErr), gin.H{"error": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
