package repository

import (
	"context"
	"errors"

	"rewards-mini-app-backend/internal/features/user/models"
)

var ErrUserNotFound = errors.New("user not found")

// MutateFunc применяет бизнес-мутацию к учетной записи и возвращает записи
// журнала, которые должны быть зафиксированы вместе с ней.
type MutateFunc func(user *models.User) ([]*models.LedgerEntry, error)

// PairFunc — то же для пары учетных записей (реферальный сценарий)
type PairFunc func(first, second *models.User) ([]*models.LedgerEntry, error)

// UserRepository хранит учетные записи и их журнал баллов.
// Mutate и MutatePair атомарны относительно конкурентных мутаций тех же
// записей: документ и записи журнала фиксируются как единое целое.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// Save перезаписывает профильные поля; для баланса используется Mutate
	Save(ctx context.Context, user *models.User) error

	Mutate(ctx context.Context, id int64, fn MutateFunc) (*models.User, error)
	MutatePair(ctx context.Context, firstID, secondID int64, fn PairFunc) error

	// Ledger возвращает последние записи журнала, новые первыми
	Ledger(ctx context.Context, userID int64, limit int64) ([]*models.LedgerEntry, error)
}
