package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	apperrors "rewards-mini-app-backend/internal/common/errors"
	"rewards-mini-app-backend/internal/features/task/models"
	"rewards-mini-app-backend/internal/features/task/repository"
	usermodels "rewards-mini-app-backend/internal/features/user/models"
	userrepo "rewards-mini-app-backend/internal/features/user/repository"
	userredis "rewards-mini-app-backend/internal/features/user/repository/redis"
	"rewards-mini-app-backend/internal/platform/redis"
)

const taskIndexKey = "tasks:all"

func taskKey(id string) string {
	return fmt.Sprintf("task:%s", id)
}

type taskRepository struct {
	client *redis.Client
}

func NewTaskRepository(client *redis.Client) repository.TaskRepository {
	return &taskRepository{client: client}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = redis.WithRetry(ctx, func() error {
		_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, taskKey(task.ID), data, 0)
			pipe.SAdd(ctx, taskIndexKey, task.ID)
			return nil
		})
		return err
	})
	if err != nil {
		return apperrors.NewStoreError("task create", err)
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task

	err := redis.WithRetry(ctx, func() error {
		data, err := r.client.Get(ctx, taskKey(id)).Bytes()
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &task)
	})
	if errors.Is(err, goredis.Nil) {
		return nil, repository.ErrTaskNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("task get", err)
	}

	return &task, nil
}

func (r *taskRepository) List(ctx context.Context) ([]*models.Task, error) {
	var ids []string
	err := redis.WithRetry(ctx, func() error {
		var err error
		ids, err = r.client.SMembers(ctx, taskIndexKey).Result()
		return err
	})
	if err != nil {
		return nil, apperrors.NewStoreError("task list", err)
	}

	tasks := make([]*models.Task, 0, len(ids))
	for _, id := range ids {
		task, err := r.GetByID(ctx, id)
		if errors.Is(err, repository.ErrTaskNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

func (r *taskRepository) Complete(ctx context.Context, taskID string, userID int64, fn repository.CompleteFunc) error {
	err := redis.WatchRetry(ctx, r.client, func(tx *goredis.Tx) error {
		data, err := tx.Get(ctx, taskKey(taskID)).Bytes()
		if errors.Is(err, goredis.Nil) {
			return repository.ErrTaskNotFound
		}
		if err != nil {
			return err
		}

		var task models.Task
		if err := json.Unmarshal(data, &task); err != nil {
			return err
		}

		user, err := userredis.GetUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		entry, err := fn(&task, user)
		if err != nil {
			return err
		}

		updated, err := json.Marshal(&task)
		if err != nil {
			return fmt.Errorf("failed to marshal task: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, taskKey(task.ID), updated, 0)
			if err := userredis.PutUserTx(ctx, pipe, user); err != nil {
				return err
			}
			if entry != nil {
				return userredis.AppendLedgerTx(ctx, pipe, []*usermodels.LedgerEntry{entry})
			}
			return nil
		})
		return err
	}, taskKey(taskID), userredis.UserKey(userID))

	if err != nil {
		return completionError(err)
	}
	return nil
}

func completionError(err error) error {
	if errors.Is(err, repository.ErrTaskNotFound) ||
		errors.Is(err, userrepo.ErrUserNotFound) ||
		errors.Is(err, models.ErrAlreadyCompleted) ||
		errors.Is(err, usermodels.ErrNonPositiveAmount) {
		return err
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	if redis.IsTransient(err) || errors.Is(err, goredis.TxFailedErr) {
		return apperrors.NewStoreError("task complete", err)
	}
	return err
}
