package repository

import (
	"context"
	"errors"
)

var ErrCodeNotFound = errors.New("invite code not found")

// CodeRepository хранит соответствие инвайт-кода и пригласившего.
// Код стабилен: повторная генерация для того же пользователя возвращает
// уже сохраненный код.
type CodeRepository interface {
	// SaveCode сохраняет код за пользователем, если кода у него еще нет,
	// и возвращает действующий код.
	SaveCode(ctx context.Context, inviterID int64, code string) (string, error)

	CodeForInviter(ctx context.Context, inviterID int64) (string, error)
	ResolveCode(ctx context.Context, code string) (int64, error)
}
