package repository

import (
	"context"
	"errors"

	"rewards-mini-app-backend/internal/features/raffle/models"
	usermodels "rewards-mini-app-backend/internal/features/user/models"
)

var ErrRaffleNotFound = errors.New("raffle not found")

// MutateFunc меняет только сам розыгрыш (закрытие, сброс розыгрыша)
type MutateFunc func(raffle *models.Raffle) error

// JoinFunc списывает взнос и добавляет участника; обе записи
// фиксируются одной транзакцией
type JoinFunc func(raffle *models.Raffle, user *usermodels.User) (*usermodels.LedgerEntry, error)

// DrawFunc выбирает победителей и начисляет призы. Карта содержит
// всех участников; сохраняются только те, для кого возвращена запись журнала.
type DrawFunc func(raffle *models.Raffle, participants map[int64]*usermodels.User) ([]*usermodels.LedgerEntry, error)

type RaffleRepository interface {
	Create(ctx context.Context, raffle *models.Raffle) error
	GetByID(ctx context.Context, id string) (*models.Raffle, error)
	ListByStatus(ctx context.Context, status models.RaffleStatus) ([]*models.Raffle, error)
	// OpenIDs возвращает идентификаторы открытых розыгрышей для фоновой проверки дедлайнов
	OpenIDs(ctx context.Context) ([]string, error)
	Mutate(ctx context.Context, id string, fn MutateFunc) error
	Join(ctx context.Context, raffleID string, userID int64, fn JoinFunc) error
	Draw(ctx context.Context, raffleID string, fn DrawFunc) error
}
