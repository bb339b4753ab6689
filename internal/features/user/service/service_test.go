package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewards-mini-app-backend/internal/features/user/models"
	"rewards-mini-app-backend/internal/features/user/repository"
)

// memUserRepo повторяет транзакционную семантику redis-репозитория:
// замыкание работает с копией, изменения видны только после успешного
// завершения, журнал и документ фиксируются вместе.
type memUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	ledger map[int64][]*models.LedgerEntry
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		users:  make(map[int64]*models.User),
		ledger: make(map[int64][]*models.LedgerEntry),
	}
}

func cloneUser(u *models.User) *models.User {
	data, _ := json.Marshal(u)
	var clone models.User
	_ = json.Unmarshal(data, &clone)
	return &clone
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		return nil
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *memUserRepo) Save(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memUserRepo) Mutate(_ context.Context, id int64, fn repository.MutateFunc) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	work := cloneUser(stored)
	entries, err := fn(work)
	if err != nil {
		return nil, err
	}

	r.users[id] = work
	for _, entry := range entries {
		r.ledger[entry.UserID] = append(r.ledger[entry.UserID], entry)
	}
	return cloneUser(work), nil
}

func (r *memUserRepo) MutatePair(_ context.Context, firstID, secondID int64, fn repository.PairFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	storedFirst, ok := r.users[firstID]
	if !ok {
		return repository.ErrUserNotFound
	}
	storedSecond, ok := r.users[secondID]
	if !ok {
		return repository.ErrUserNotFound
	}

	first, second := cloneUser(storedFirst), cloneUser(storedSecond)
	entries, err := fn(first, second)
	if err != nil {
		return err
	}

	r.users[firstID] = first
	r.users[secondID] = second
	for _, entry := range entries {
		r.ledger[entry.UserID] = append(r.ledger[entry.UserID], entry)
	}
	return nil
}

func (r *memUserRepo) Ledger(_ context.Context, userID, limit int64) ([]*models.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.ledger[userID]
	if limit <= 0 {
		limit = 50
	}
	start := len(all) - int(limit)
	if start < 0 {
		start = 0
	}

	// Новые первыми
	out := make([]*models.LedgerEntry, 0, len(all)-start)
	for i := len(all) - 1; i >= start; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (r *memUserRepo) sumLedger(userID int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, entry := range r.ledger[userID] {
		sum += entry.Amount
	}
	return sum
}

func seedUser(t *testing.T, repo *memUserRepo, id, points int64) {
	t.Helper()
	svc := NewUserService(repo)
	_, err := svc.GetOrCreateUser(context.Background(), id, "user", "User", "")
	require.NoError(t, err)
	if points > 0 {
		_, err = svc.Credit(context.Background(), id, points, models.EntryTypeManual, "seed")
		require.NoError(t, err)
	}
}

func TestGetOrCreateUser(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()

	created, err := svc.GetOrCreateUser(ctx, 42, "alice", "Alice", "")
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, int64(0), created.Points)

	// Повторный вызов возвращает существующего и обновляет профиль
	again, err := svc.GetOrCreateUser(ctx, 42, "alice_new", "Alice", "")
	require.NoError(t, err)
	assert.Equal(t, "alice_new", again.Username)

	points, err := svc.GetPoints(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), points)
}

func TestCreditAndDebit(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()
	seedUser(t, repo, 1, 0)

	user, err := svc.Credit(ctx, 1, 100, models.EntryTypeTaskReward, "task")
	require.NoError(t, err)
	assert.Equal(t, int64(100), user.Points)

	user, err = svc.Debit(ctx, 1, 30, models.EntryTypeRaffleEntry, "fee")
	require.NoError(t, err)
	assert.Equal(t, int64(70), user.Points)

	assert.Equal(t, int64(70), repo.sumLedger(1))
}

func TestDebitInsufficientBalance(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()
	seedUser(t, repo, 1, 10)

	_, err := svc.Debit(ctx, 1, 11, models.EntryTypeRaffleEntry, "fee")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Отказ не оставляет следов ни в балансе, ни в журнале
	points, err := svc.GetPoints(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), points)
	assert.Equal(t, int64(10), repo.sumLedger(1))
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()
	seedUser(t, repo, 1, 0)

	_, err := svc.Credit(ctx, 1, 0, models.EntryTypeManual, "")
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = svc.Credit(ctx, 1, -10, models.EntryTypeManual, "")
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestCreditUnknownUser(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo)

	_, err := svc.Credit(context.Background(), 99, 10, models.EntryTypeManual, "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRewardHistoryNewestFirst(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()
	seedUser(t, repo, 1, 0)

	_, err := svc.Credit(ctx, 1, 10, models.EntryTypeTaskReward, "first")
	require.NoError(t, err)
	_, err = svc.Credit(ctx, 1, 20, models.EntryTypeTaskReward, "second")
	require.NoError(t, err)

	history, err := svc.RewardHistory(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].Description)
	assert.Equal(t, "first", history[1].Description)
}

func TestConcurrentCredits(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewUserService(repo)
	ctx := context.Background()
	seedUser(t, repo, 1, 0)

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Credit(ctx, 1, 5, models.EntryTypeManual, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	points, err := svc.GetPoints(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*5), points)
	assert.Equal(t, points, repo.sumLedger(1))
}
