package service

import (
	"context"
	"errors"
	"time"

	"rewards-mini-app-backend/internal/common/metrics"
	"rewards-mini-app-backend/internal/common/validation"
	"rewards-mini-app-backend/internal/features/user/models"
	"rewards-mini-app-backend/internal/features/user/repository"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = models.ErrInsufficientBalance
	ErrNonPositiveAmount   = models.ErrNonPositiveAmount
)

// UserService — единственная точка изменения балансов.
// Все движки (рефералы, розыгрыши, задания) начисляют и списывают через него,
// поэтому инвариант "баланс равен сумме журнала" держится для любого вызова.
type UserService interface {
	GetUser(ctx context.Context, id int64) (*models.UserResponse, error)
	GetOrCreateUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*models.UserResponse, error)
	GetPoints(ctx context.Context, id int64) (int64, error)
	Credit(ctx context.Context, userID, amount int64, entryType models.EntryType, description string) (*models.User, error)
	Debit(ctx context.Context, userID, amount int64, entryType models.EntryType, description string) (*models.User, error)
	RewardHistory(ctx context.Context, userID, limit int64) ([]*models.LedgerEntry, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetUser(ctx context.Context, id int64) (*models.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user.ToResponse(), nil
}

func (s *userService) GetOrCreateUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*models.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, telegramID)
	if err == nil {
		if user.Username != username || user.FirstName != firstName || user.LastName != lastName {
			user.Username = username
			user.FirstName = firstName
			user.LastName = lastName
			user.UpdatedAt = time.Now()
			if err := s.repo.Save(ctx, user); err != nil {
				return nil, err
			}
		}
		return user.ToResponse(), nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	newUser := models.NewUser(telegramID, username, firstName, lastName, time.Now())
	if err := s.repo.Create(ctx, newUser); err != nil {
		return nil, err
	}

	return newUser.ToResponse(), nil
}

func (s *userService) GetPoints(ctx context.Context, id int64) (int64, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	return user.Points, nil
}

func (s *userService) Credit(ctx context.Context, userID, amount int64, entryType models.EntryType, description string) (*models.User, error) {
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, ErrNonPositiveAmount
	}

	user, err := s.repo.Mutate(ctx, userID, func(u *models.User) ([]*models.LedgerEntry, error) {
		entry, err := u.Credit(amount, entryType, description, time.Now())
		if err != nil {
			return nil, err
		}
		return []*models.LedgerEntry{entry}, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	metrics.RecordMutation(string(entryType), amount)
	return user, nil
}

func (s *userService) Debit(ctx context.Context, userID, amount int64, entryType models.EntryType, description string) (*models.User, error) {
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, ErrNonPositiveAmount
	}

	user, err := s.repo.Mutate(ctx, userID, func(u *models.User) ([]*models.LedgerEntry, error) {
		entry, err := u.Debit(amount, entryType, description, time.Now())
		if err != nil {
			return nil, err
		}
		return []*models.LedgerEntry{entry}, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	metrics.RecordMutation(string(entryType), -amount)
	return user, nil
}

func (s *userService) RewardHistory(ctx context.Context, userID, limit int64) ([]*models.LedgerEntry, error) {
	return s.repo.Ledger(ctx, userID, limit)
}
