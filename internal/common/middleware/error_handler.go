package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rewards-mini-app-backend/internal/common/errors"
)

// ErrorHandler перехватывает паники и отдает их клиенту как INTERNAL_ERROR
func ErrorHandler(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := getRequestID(c)

		log.Error().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
			WithDetail("panic", fmt.Sprintf("%v", recovered))

		sendErrorResponse(c, appErr, log)
	})
}

// RequestID проставляет сквозной идентификатор запроса
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
}

func sendErrorResponse(c *gin.Context, appErr *errors.AppError, log zerolog.Logger) {
	requestID := getRequestID(c)
	appErr.WithRequestID(requestID)

	response := ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: requestID,
	}

	logError(appErr, log, c)

	c.JSON(HTTPStatus(appErr), response)
}

// HTTPStatus возвращает HTTP статус код для ошибки
func HTTPStatus(appErr *errors.AppError) int {
	switch {
	case appErr.Code == errors.ErrCodeValidation || appErr.Code == errors.ErrCodeBadRequest:
		return http.StatusBadRequest
	case appErr.Code == errors.ErrCodeInsufficientBalance:
		return http.StatusBadRequest
	case appErr.Code == errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case appErr.Code == errors.ErrCodeForbidden:
		return http.StatusForbidden
	case appErr.IsNotFound():
		return http.StatusNotFound
	case appErr.IsConflict():
		return http.StatusConflict
	case appErr.Code == errors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func logError(appErr *errors.AppError, log zerolog.Logger, c *gin.Context) {
	evt := log.Error()
	switch {
	case appErr.Code == errors.ErrCodeUnauthorized || appErr.Code == errors.ErrCodeForbidden:
		evt = log.Warn()
	case appErr.IsConflict(), appErr.IsNotFound(), appErr.Code == errors.ErrCodeValidation:
		evt = log.Info()
	}

	evt = evt.
		Str("request_id", getRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code))

	if appErr.UserID != 0 {
		evt = evt.Int64("user_id", appErr.UserID)
	}
	if appErr.Cause != nil {
		evt = evt.Err(appErr.Cause)
	}

	evt.Msg(appErr.Message)
}

// HandleErrors отправляет накопленные в контексте ошибки как типизированный ответ.
// Обработчики кладут ошибку через c.Error и завершают работу.
func HandleErrors(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := errors.AsAppError(err)
		if !ok {
			appErr = errors.Wrap(err, errors.ErrCodeInternal, "Handler error occurred")
		}

		sendErrorResponse(c, appErr, log)
	}
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}
