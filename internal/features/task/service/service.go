package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rewards-mini-app-backend/internal/common/cache"
	apperrors "rewards-mini-app-backend/internal/common/errors"
	"rewards-mini-app-backend/internal/common/logger"
	"rewards-mini-app-backend/internal/common/metrics"
	"rewards-mini-app-backend/internal/common/validation"
	"rewards-mini-app-backend/internal/features/task/models"
	"rewards-mini-app-backend/internal/features/task/repository"
	usermodels "rewards-mini-app-backend/internal/features/user/models"
	userrepo "rewards-mini-app-backend/internal/features/user/repository"
)

var (
	ErrTaskNotFound = repository.ErrTaskNotFound
	ErrUserNotFound = userrepo.ErrUserNotFound
)

const cacheTasksKey = "cache:tasks:all"

type TaskService interface {
	Create(ctx context.Context, creatorID int64, input *models.CreateTaskRequest) (*models.Task, error)
	List(ctx context.Context, userID int64) ([]*models.TaskResponse, error)
	Complete(ctx context.Context, taskID string, userID int64) (*models.CompleteResponse, error)
}

type taskService struct {
	repo     repository.TaskRepository
	cache    *cache.CacheService
	cacheTTL time.Duration
	log      zerolog.Logger
}

func NewTaskService(repo repository.TaskRepository, cacheService *cache.CacheService, cacheTTL time.Duration) TaskService {
	return &taskService{
		repo:     repo,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		log:      logger.With("task"),
	}
}

func (s *taskService) Create(ctx context.Context, creatorID int64, input *models.CreateTaskRequest) (*models.Task, error) {
	if err := validation.ValidateTitle(input.Title); err != nil {
		return nil, apperrors.NewValidationError("title", err.Error())
	}
	if err := validation.ValidateReward(input.Reward); err != nil {
		return nil, apperrors.NewValidationError("reward", err.Error())
	}

	task := models.NewTask(uuid.New().String(), creatorID,
		input.Title, input.Description, input.Link, input.Reward, time.Now())

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	s.log.Info().
		Str("task_id", task.ID).
		Int64("creator_id", creatorID).
		Int64("reward", task.Reward).
		Msg("task created")

	return task, nil
}

func (s *taskService) List(ctx context.Context, userID int64) ([]*models.TaskResponse, error) {
	// Кэшируется общий список, флаг выполнения вычисляется на пользователя
	var tasks []*models.Task
	err := s.cache.GetOrSet(ctx, cacheTasksKey, &tasks, s.cacheTTL, func() (interface{}, error) {
		return s.repo.List(ctx)
	})
	if err != nil {
		return nil, err
	}

	responses := make([]*models.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, task.ToResponse(userID))
	}
	return responses, nil
}

func (s *taskService) Complete(ctx context.Context, taskID string, userID int64) (*models.CompleteResponse, error) {
	var reward, balance int64

	err := s.repo.Complete(ctx, taskID, userID, func(task *models.Task, user *usermodels.User) (*usermodels.LedgerEntry, error) {
		now := time.Now()

		if err := task.Complete(userID, now); err != nil {
			return nil, err
		}

		var entry *usermodels.LedgerEntry
		if task.Reward > 0 {
			var err error
			entry, err = user.Credit(task.Reward, usermodels.EntryTypeTaskReward,
				fmt.Sprintf("reward for task %q", task.Title), now)
			if err != nil {
				return nil, err
			}
		}

		reward = task.Reward
		balance = user.Points
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	metrics.RecordTaskCompletion()
	if reward > 0 {
		metrics.RecordMutation(string(usermodels.EntryTypeTaskReward), reward)
	}

	s.log.Info().
		Str("task_id", taskID).
		Int64("user_id", userID).
		Int64("reward", reward).
		Msg("task completed")

	return &models.CompleteResponse{TaskID: taskID, Reward: reward, Balance: balance}, nil
}

func (s *taskService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateTasks(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate tasks cache")
	}
}
