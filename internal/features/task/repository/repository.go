package repository

import (
	"context"
	"errors"

	"rewards-mini-app-backend/internal/features/task/models"
	usermodels "rewards-mini-app-backend/internal/features/user/models"
)

var ErrTaskNotFound = errors.New("task not found")

// CompleteFunc отмечает выполнение и начисляет награду; запись участия
// и начисление фиксируются одной транзакцией
type CompleteFunc func(task *models.Task, user *usermodels.User) (*usermodels.LedgerEntry, error)

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	Complete(ctx context.Context, taskID string, userID int64, fn CompleteFunc) error
}
