package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewards-mini-app-backend/internal/features/referral/models"
	"rewards-mini-app-backend/internal/features/referral/repository"
	usermodels "rewards-mini-app-backend/internal/features/user/models"
	userrepo "rewards-mini-app-backend/internal/features/user/repository"
)

type memCodeRepo struct {
	mu          sync.Mutex
	byCode      map[string]int64
	byInviterID map[int64]string
}

func newMemCodeRepo() *memCodeRepo {
	return &memCodeRepo{
		byCode:      make(map[string]int64),
		byInviterID: make(map[int64]string),
	}
}

func (r *memCodeRepo) SaveCode(_ context.Context, inviterID int64, code string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byInviterID[inviterID]; ok {
		return existing, nil
	}
	r.byInviterID[inviterID] = code
	r.byCode[code] = inviterID
	return code, nil
}

func (r *memCodeRepo) CodeForInviter(_ context.Context, inviterID int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.byInviterID[inviterID]
	if !ok {
		return "", repository.ErrCodeNotFound
	}
	return code, nil
}

func (r *memCodeRepo) ResolveCode(_ context.Context, code string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inviterID, ok := r.byCode[code]
	if !ok {
		return 0, repository.ErrCodeNotFound
	}
	return inviterID, nil
}

type memUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*usermodels.User
	ledger map[int64][]*usermodels.LedgerEntry
}

func newMemUserRepo(ids ...int64) *memUserRepo {
	r := &memUserRepo{
		users:  make(map[int64]*usermodels.User),
		ledger: make(map[int64][]*usermodels.LedgerEntry),
	}
	for _, id := range ids {
		r.users[id] = usermodels.NewUser(id, "", "", "", time.Now())
	}
	return r
}

func cloneUser(u *usermodels.User) *usermodels.User {
	data, _ := json.Marshal(u)
	var clone usermodels.User
	_ = json.Unmarshal(data, &clone)
	return &clone
}

func (r *memUserRepo) Create(_ context.Context, user *usermodels.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*usermodels.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, userrepo.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *memUserRepo) Save(_ context.Context, user *usermodels.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *memUserRepo) Mutate(_ context.Context, id int64, fn userrepo.MutateFunc) (*usermodels.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return nil, userrepo.ErrUserNotFound
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

func (r *memUserRepo) MutatePair(_ context.Context, firstID, secondID int64, fn userrepo.PairFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	storedFirst, ok := r.users[firstID]
	if !ok {
		return userrepo.ErrUserNotFound
	}
	storedSecond, ok := r.users[secondID]
	if !ok {
		return userrepo.ErrUserNotFound
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

func (r *memUserRepo) Ledger(_ context.Context, userID, limit int64) ([]*usermodels.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.ledger[userID]
	out := make([]*usermodels.LedgerEntry, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

var testRewards = Rewards{InviterBonus: 10, InviteeBonus: 5}

func TestGenerateCodeIsStable(t *testing.T) {
	svc := NewReferralService(newMemCodeRepo(), newMemUserRepo(1), testRewards)
	ctx := context.Background()

	code, err := svc.GenerateCode(ctx, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(code), 11)

	again, err := svc.GenerateCode(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, code, again)
}

func TestGenerateCodeDistinctPerUser(t *testing.T) {
	svc := NewReferralService(newMemCodeRepo(), newMemUserRepo(1, 2), testRewards)
	ctx := context.Background()

	first, err := svc.GenerateCode(ctx, 1)
	require.NoError(t, err)
	second, err := svc.GenerateCode(ctx, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestRedeem(t *testing.T) {
	users := newMemUserRepo(1, 2)
	svc := NewReferralService(newMemCodeRepo(), users, testRewards)
	ctx := context.Background()

	code, err := svc.GenerateCode(ctx, 1)
	require.NoError(t, err)

	result, err := svc.Redeem(ctx, code, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.InviterID)
	assert.Equal(t, int64(2), result.InviteeID)
	assert.Equal(t, int64(10), result.InviterReward)
	assert.Equal(t, int64(5), result.InviteeReward)

	inviter, err := users.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), inviter.Points)
	assert.Equal(t, int64(1), inviter.InvitationCount)
	require.Len(t, inviter.Friends, 1)
	assert.Equal(t, int64(2), inviter.Friends[0].UserID)

	invitee, err := users.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), invitee.Points)
	require.NotNil(t, invitee.InvitedBy)
	assert.Equal(t, int64(1), *invitee.InvitedBy)
}

func TestRedeemIsOncePerInvitee(t *testing.T) {
	users := newMemUserRepo(1, 2, 3)
	svc := NewReferralService(newMemCodeRepo(), users, testRewards)
	ctx := context.Background()

	code, err := svc.GenerateCode(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, code, 2)
	require.NoError(t, err)

	// Повтор того же кода
	_, err = svc.Redeem(ctx, code, 2)
	assert.ErrorIs(t, err, models.ErrAlreadyReferred)

	// И любого другого кода
	other, err := svc.GenerateCode(ctx, 3)
	require.NoError(t, err)
	_, err = svc.Redeem(ctx, other, 2)
	assert.ErrorIs(t, err, models.ErrAlreadyReferred)

	// Награды не задвоились
	inviter, err := users.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), inviter.Points)
	invitee, err := users.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), invitee.Points)
}

func TestRedeemOwnCode(t *testing.T) {
	svc := NewReferralService(newMemCodeRepo(), newMemUserRepo(1), testRewards)
	ctx := context.Background()

	code, err := svc.GenerateCode(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, code, 1)
	assert.ErrorIs(t, err, models.ErrSelfReferral)
}

func TestRedeemInvalidCode(t *testing.T) {
	svc := NewReferralService(newMemCodeRepo(), newMemUserRepo(1), testRewards)
	ctx := context.Background()

	// Слишком короткий
	_, err := svc.Redeem(ctx, "abc", 1)
	assert.ErrorIs(t, err, models.ErrInvalidCode)

	// Правильной формы, но несуществующий
	_, err = svc.Redeem(ctx, "AAAAAAAAAAA-zz", 1)
	assert.ErrorIs(t, err, models.ErrInvalidCode)
}

func TestFriends(t *testing.T) {
	users := newMemUserRepo(1, 2, 3)
	svc := NewReferralService(newMemCodeRepo(), users, testRewards)
	ctx := context.Background()

	code, err := svc.GenerateCode(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Redeem(ctx, code, 2)
	require.NoError(t, err)
	_, err = svc.Redeem(ctx, code, 3)
	require.NoError(t, err)

	friends, err := svc.Friends(ctx, 1)
	require.NoError(t, err)
	require.Len(t, friends, 2)
}
