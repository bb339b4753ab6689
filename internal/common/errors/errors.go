package errors

import (
	"fmt"
	"time"
)

// ErrorCode представляет код ошибки
type ErrorCode string

const (
	// Общие ошибки
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"

	// Ошибки пользователей и баланса
	ErrCodeUserNotFound        ErrorCode = "USER_NOT_FOUND"
	ErrCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"

	// Ошибки реферальной программы
	ErrCodeInvalidCode     ErrorCode = "INVALID_CODE"
	ErrCodeSelfReferral    ErrorCode = "SELF_REFERRAL"
	ErrCodeAlreadyReferred ErrorCode = "ALREADY_REFERRED"

	// Ошибки розыгрышей
	ErrCodeRaffleNotFound    ErrorCode = "RAFFLE_NOT_FOUND"
	ErrCodeEventClosed       ErrorCode = "EVENT_CLOSED"
	ErrCodeEventStillOpen    ErrorCode = "EVENT_STILL_OPEN"
	ErrCodeEventAlreadyDrawn ErrorCode = "EVENT_ALREADY_DRAWN"
	ErrCodeAlreadyJoined     ErrorCode = "ALREADY_JOINED"
	ErrCodeNoEntrants        ErrorCode = "NO_ENTRANTS"

	// Ошибки заданий
	ErrCodeTaskNotFound     ErrorCode = "TASK_NOT_FOUND"
	ErrCodeAlreadyCompleted ErrorCode = "ALREADY_COMPLETED"

	// Ошибки хранилища
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// AppError представляет типизированную ошибку приложения
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	UserID    int64                  `json:"user_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound проверяет, является ли ошибка ошибкой "не найдено"
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound ||
		e.Code == ErrCodeUserNotFound ||
		e.Code == ErrCodeRaffleNotFound ||
		e.Code == ErrCodeTaskNotFound
}

// IsConflict проверяет, нарушено ли бизнес-правило (повтор, неверное состояние)
func (e *AppError) IsConflict() bool {
	switch e.Code {
	case ErrCodeAlreadyJoined, ErrCodeAlreadyReferred, ErrCodeAlreadyCompleted,
		ErrCodeEventClosed, ErrCodeEventStillOpen, ErrCodeEventAlreadyDrawn,
		ErrCodeNoEntrants, ErrCodeSelfReferral:
		return true
	}
	return false
}

// IsInternal проверяет, является ли ошибка внутренней ошибкой
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal || e.Code == ErrCodeStoreUnavailable
}

// WithDetail добавляет детальную информацию к ошибке
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRequestID добавляет ID запроса к ошибке
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// WithUserID добавляет ID пользователя к ошибке
func (e *AppError) WithUserID(userID int64) *AppError {
	e.UserID = userID
	return e
}

// New создает новую ошибку приложения
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap оборачивает существующую ошибку
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf оборачивает существующую ошибку с форматированием
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewValidationError создает ошибку валидации
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// NewUserNotFoundError создает ошибку "пользователь не найден"
func NewUserNotFoundError(userID int64) *AppError {
	return New(ErrCodeUserNotFound, fmt.Sprintf("User not found: %d", userID)).
		WithDetail("user_id", userID)
}

// NewUnauthorizedError создает ошибку авторизации
func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

// NewForbiddenError создает ошибку доступа
func NewForbiddenError(reason string) *AppError {
	return New(ErrCodeForbidden, fmt.Sprintf("Forbidden: %s", reason)).
		WithDetail("reason", reason)
}

// NewStoreError создает ошибку хранилища
func NewStoreError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStoreUnavailable, fmt.Sprintf("Store operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError приводит ошибку к AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
