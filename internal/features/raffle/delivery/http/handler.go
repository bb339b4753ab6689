package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "rewards-mini-app-backend/internal/common/errors"
	"rewards-mini-app-backend/internal/common/middleware"
	"rewards-mini-app-backend/internal/features/raffle/models"
	"rewards-mini-app-backend/internal/features/raffle/service"
)

type RaffleHandler struct {
	service service.RaffleService
}

func NewRaffleHandler(service service.RaffleService) *RaffleHandler {
	return &RaffleHandler{service: service}
}

// RegisterRoutes вешает маршруты розыгрышей; requireAdmin закрывает
// административные операции
func (h *RaffleHandler) RegisterRoutes(router *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	raffles := router.Group("/raffles")
	{
		raffles.GET("", h.list)
		raffles.GET("/:id", h.get)
		raffles.GET("/:id/winners", h.getWinners)
		raffles.POST("/:id/join", h.join)

		raffles.POST("", requireAdmin, h.create)
		raffles.POST("/:id/close", requireAdmin, h.close)
		raffles.POST("/:id/draw", requireAdmin, h.draw)
	}
}

// @Summary Создать розыгрыш
// @Description Создает розыгрыш с взносом за участие и числом победителей
// @Tags raffles
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param input body models.CreateRaffleRequest true "Параметры розыгрыша"
// @Success 201 {object} models.Raffle "Созданный розыгрыш"
// @Failure 400 {object} map[string]string "Невалидные параметры"
// @Failure 403 {object} map[string]string "Требуются права администратора"
// @Router /raffles [post]
func (h *RaffleHandler) create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	var input models.CreateRaffleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raffle, err := h.service.Create(c.Request.Context(), user.ID, &input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, raffle)
}

// @Summary Список розыгрышей
// @Description Возвращает розыгрыши по статусу, по умолчанию открытые
// @Tags raffles
// @Produce json
// @Security TelegramInitData
// @Param status query string false "Статус: open, closed или drawn" default(open)
// @Success 200 {array} models.Raffle "Розыгрыши"
// @Router /raffles [get]
func (h *RaffleHandler) list(c *gin.Context) {
	status := models.RaffleStatus(c.DefaultQuery("status", string(models.RaffleStatusOpen)))
	switch status {
	case models.RaffleStatusOpen, models.RaffleStatusClosed, models.RaffleStatusDrawn:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown raffle status"})
		return
	}

	raffles, err := h.service.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, raffles)
}

// @Summary Розыгрыш по идентификатору
// @Tags raffles
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Идентификатор розыгрыша"
// @Success 200 {object} models.Raffle "Розыгрыш"
// @Failure 404 {object} map[string]string "Не найден"
// @Router /raffles/{id} [get]
func (h *RaffleHandler) get(c *gin.Context) {
	raffle, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, raffle)
}

// @Summary Вступить в розыгрыш
// @Description Атомарно списывает взнос и добавляет участника
// @Tags raffles
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Идентификатор розыгрыша"
// @Success 200 {object} models.JoinResponse "Участие оформлено"
// @Failure 400 {object} map[string]string "Недостаточно баллов"
// @Failure 409 {object} map[string]string "Уже участвует или прием закрыт"
// @Router /raffles/{id}/join [post]
func (h *RaffleHandler) join(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	result, err := h.service.Join(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Закрыть прием участников
// @Description Фиксирует состав участников, повторное закрытие безвредно
// @Tags raffles
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Идентификатор розыгрыша"
// @Success 200 {object} map[string]string "Розыгрыш закрыт"
// @Failure 403 {object} map[string]string "Требуются права администратора"
// @Failure 409 {object} map[string]string "Уже разыгран"
// @Router /raffles/{id}/close [post]
func (h *RaffleHandler) close(c *gin.Context) {
	if err := h.service.Close(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

// @Summary Разыграть призы
// @Description Выбирает победителей и начисляет призы из фонда. Повторный розыгрыш требует confirm=true
// @Tags raffles
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Идентификатор розыгрыша"
// @Param input body models.DrawRequest false "Подтверждение повторного розыгрыша"
// @Success 200 {object} models.DrawResponse "Итоги розыгрыша"
// @Failure 409 {object} map[string]string "Еще открыт, уже разыгран или нет участников"
// @Router /raffles/{id}/draw [post]
func (h *RaffleHandler) draw(c *gin.Context) {
	var input models.DrawRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.service.Draw(c.Request.Context(), c.Param("id"), input.Confirm)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Победители розыгрыша
// @Tags raffles
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Идентификатор розыгрыша"
// @Success 200 {array} models.Winner "Победители"
// @Failure 404 {object} map[string]string "Не найден"
// @Failure 409 {object} map[string]string "Еще не разыгран"
// @Router /raffles/{id}/winners [get]
func (h *RaffleHandler) getWinners(c *gin.Context) {
	winners, err := h.service.Winners(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, winners)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRaffleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "raffle not found"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, service.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient points balance"})
	case errors.Is(err, models.ErrRaffleClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "raffle is no longer open"})
	case errors.Is(err, models.ErrRaffleStillOpen):
		c.JSON(http.StatusConflict, gin.H{"error": "raffle is still open"})
	case errors.Is(err, models.ErrRaffleDrawn):
		c.JSON(http.StatusConflict, gin.H{"error": "raffle has already been drawn"})
	case errors.Is(err, models.ErrRaffleNotDrawn):
		c.JSON(http.StatusConflict, gin.H{"error": "raffle has not been drawn yet"})
	case errors.Is(err, models.ErrAlreadyJoined):
		c.JSON(http.StatusConflict, gin.H{"error": "user has already joined this raffle"})
	case errors.Is(err, models.ErrNoEntrants):
		c.JSON(http.StatusConflict, gin.H{"error": "raffle has no entrants"})
	default:
		if appErr, ok := apperrors.AsAppError(err); ok {
			c.JSON(middleware.HTTPStatus(appErr), gin.H{"error": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
