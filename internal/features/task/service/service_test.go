package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewards-mini-app-backend/internal/common/cache"
	"rewards-mini-app-backend/internal/features/task/models"
	"rewards-mini-app-backend/internal/features/task/repository"
	usermodels "rewards-mini-app-backend/internal/features/user/models"
	userrepo "rewards-mini-app-backend/internal/features/user/repository"
)

type memTaskRepo struct {
	mu     sync.Mutex
	tasks  map[string]*models.Task
	users  map[int64]*usermodels.User
	ledger map[int64][]*usermodels.LedgerEntry
}

func newMemTaskRepo(userIDs ...int64) *memTaskRepo {
	r := &memTaskRepo{
		tasks:  make(map[string]*models.Task),
		users:  make(map[int64]*usermodels.User),
		ledger: make(map[int64][]*usermodels.LedgerEntry),
	}
	for _, id := range userIDs {
		r.users[id] = usermodels.NewUser(id, "", "", "", time.Now())
	}
	return r
}

func cloneTask(t *models.Task) *models.Task {
	data, _ := json.Marshal(t)
	var clone models.Task
	_ = json.Unmarshal(data, &clone)
	return &clone
}

func cloneUser(u *usermodels.User) *usermodels.User {
	data, _ := json.Marshal(u)
	var clone usermodels.User
	_ = json.Unmarshal(data, &clone)
	return &clone
}

func (r *memTaskRepo) Create(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = cloneTask(task)
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

func (r *memTaskRepo) List(_ context.Context) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, cloneTask(task))
	}
	return out, nil
}

func (r *memTaskRepo) Complete(_ context.Context, taskID string, userID int64, fn repository.CompleteFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	storedTask, ok := r.tasks[taskID]
	if !ok {
		return repository.ErrTaskNotFound
	}
	storedUser, ok := r.users[userID]
	if !ok {
		return userrepo.ErrUserNotFound
	}

	task, user := cloneTask(storedTask), cloneUser(storedUser)
	entry, err := fn(task, user)
	if err != nil {
		return err
	}

	r.tasks[taskID] = task
	r.users[userID] = user
	if entry != nil {
		r.ledger[entry.UserID] = append(r.ledger[entry.UserID], entry)
	}
	return nil
}

func (r *memTaskRepo) userPoints(id int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id].Points
}

func newTestService(repo *memTaskRepo) TaskService {
	return NewTaskService(repo, cache.NewCacheService(nil), 0)
}

func createTask(t *testing.T, svc TaskService, reward int64) *models.Task {
	t.Helper()
	task, err := svc.Create(context.Background(), 1, &models.CreateTaskRequest{
		Title:  "follow the channel",
		Reward: reward,
	})
	require.NoError(t, err)
	return task
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newMemTaskRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &models.CreateTaskRequest{Title: ""})
	assert.Error(t, err)

	_, err = svc.Create(ctx, 1, &models.CreateTaskRequest{Title: "x", Reward: -1})
	assert.Error(t, err)
}

func TestCompleteCreditsReward(t *testing.T) {
	repo := newMemTaskRepo(2)
	svc := newTestService(repo)
	ctx := context.Background()

	task := createTask(t, svc, 25)

	result, err := svc.Complete(ctx, task.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(25), result.Reward)
	assert.Equal(t, int64(25), result.Balance)
	assert.Equal(t, int64(25), repo.userPoints(2))
}

func TestCompleteIsOncePerUser(t *testing.T) {
	repo := newMemTaskRepo(2)
	svc := newTestService(repo)
	ctx := context.Background()

	task := createTask(t, svc, 25)

	_, err := svc.Complete(ctx, task.ID, 2)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, task.ID, 2)
	assert.ErrorIs(t, err, models.ErrAlreadyCompleted)

	// Награда начислена ровно один раз
	assert.Equal(t, int64(25), repo.userPoints(2))
}

func TestConcurrentComplete(t *testing.T) {
	repo := newMemTaskRepo(2)
	svc := newTestService(repo)
	ctx := context.Background()

	task := createTask(t, svc, 25)

	const attempts = 10
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Complete(ctx, task.ID, 2)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, models.ErrAlreadyCompleted)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(25), repo.userPoints(2))
}

func TestCompleteZeroRewardTask(t *testing.T) {
	repo := newMemTaskRepo(2)
	svc := newTestService(repo)
	ctx := context.Background()

	task := createTask(t, svc, 0)

	result, err := svc.Complete(ctx, task.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Reward)
	assert.Equal(t, int64(0), repo.userPoints(2))

	_, err = svc.Complete(ctx, task.ID, 2)
	assert.ErrorIs(t, err, models.ErrAlreadyCompleted)
}

func TestCompleteUnknownTask(t *testing.T) {
	svc := newTestService(newMemTaskRepo(2))
	_, err := svc.Complete(context.Background(), "missing", 2)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListWithCompletionFlag(t *testing.T) {
	repo := newMemTaskRepo(2)
	svc := newTestService(repo)
	ctx := context.Background()

	done := createTask(t, svc, 10)
	createTask(t, svc, 20)

	_, err := svc.Complete(ctx, done.ID, 2)
	require.NoError(t, err)

	tasks, err := svc.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	for _, task := range tasks {
		if task.ID == done.ID {
			assert.True(t, task.Completed)
		} else {
			assert.False(t, task.Completed)
		}
	}
}
