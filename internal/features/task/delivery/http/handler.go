package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "rewards-mini-app-backend/internal/common/errors"
	"rewards-mini-app-backend/internal/common/middleware"
	"rewards-mini-app-backend/internal/features/task/models"
	"rewards-mini-app-backend/internal/features/task/service"
)

type TaskHandler struct {
	service service.TaskService
}

func NewTaskHandler(service service.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	tasks := router.Group("/tasks")
	{
		tasks.GET("", h.list)
		tasks.POST("/:id/complete", h.complete)

		tasks.POST("", requireAdmin, h.create)
	}
}

// @Summary Создать задание
// @Description Создает задание с фиксированной наградой за выполнение
// @Tags tasks
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param input body models.CreateTaskRequest true "Параметры задания"
// @Success 201 {object} models.Task "Созданное задание"
// @Failure 400 {object} map[string]string "Невалидные параметры"
// @Failure 403 {object} map[string]string "Требуются права администратора"
// @Router /tasks [post]
func (h *TaskHandler) create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	var input models.CreateTaskRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.Create(c.Request.Context(), user.ID, &input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// @Summary Список заданий
// @Description Возвращает все задания с флагом выполнения текущим пользователем
// @Tags tasks
// @Produce json
// @Security TelegramInitData
// @Success 200 {array} models.TaskResponse "Задания"
// @Router /tasks [get]
func (h *TaskHandler) list(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	tasks, err := h.service.List(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// @Summary Выполнить задание
// @Description Отмечает выполнение и начисляет награду, строго один раз
// @Tags tasks
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Идентификатор задания"
// @Success 200 {object} models.CompleteResponse "Награда начислена"
// @Failure 404 {object} map[string]string "Задание не найдено"
// @Failure 409 {object} map[string]string "Уже выполнено"
// @Router /tasks/{id}/complete [post]
func (h *TaskHandler) complete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
		return
	}

	result, err := h.service.Complete(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, models.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "task already completed"})
	default:
		if appErr, ok := apperrors.AsAppError(err); ok {
			c.JSON(middleware.HTTPStatus(appErr), gin.H{"error": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
