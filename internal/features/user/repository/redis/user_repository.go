package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	apperrors "rewards-mini-app-backend/internal/common/errors"
	"rewards-mini-app-backend/internal/features/user/models"
	"rewards-mini-app-backend/internal/features/user/repository"
	"rewards-mini-app-backend/internal/platform/redis"
)

// UserKey — ключ документа учетной записи
func UserKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// LedgerKey — ключ append-only журнала баллов
func LedgerKey(id int64) string {
	return fmt.Sprintf("ledger:%d", id)
}

// GetUserTx читает учетную запись внутри WATCH-транзакции
func GetUserTx(ctx context.Context, tx *goredis.Tx, id int64) (*models.User, error) {
	data, err := tx.Get(ctx, UserKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// PutUserTx пишет документ учетной записи в пайплайн транзакции
func PutUserTx(ctx context.Context, pipe goredis.Pipeliner, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	pipe.Set(ctx, UserKey(user.ID), data, 0)
	return nil
}

// AppendLedgerTx добавляет записи журнала в пайплайн транзакции.
// Журнал только пополняется: RPUSH сохраняет порядок событий.
func AppendLedgerTx(ctx context.Context, pipe goredis.Pipeliner, entries []*models.LedgerEntry) error {
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal ledger entry: %w", err)
		}
		pipe.RPush(ctx, LedgerKey(entry.UserID), data)
	}
	return nil
}

type userRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) repository.UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	err = redis.WithRetry(ctx, func() error {
		// NX: существующая запись никогда не перезаписывается при создании
		return r.client.SetNX(ctx, UserKey(user.ID), data, 0).Err()
	})
	if err != nil {
		return apperrors.NewStoreError("user create", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User

	err := redis.WithRetry(ctx, func() error {
		data, err := r.client.Get(ctx, UserKey(id)).Bytes()
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &user)
	})
	if errors.Is(err, goredis.Nil) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("user get", err)
	}

	return &user, nil
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	err = redis.WithRetry(ctx, func() error {
		return r.client.Set(ctx, UserKey(user.ID), data, 0).Err()
	})
	if err != nil {
		return apperrors.NewStoreError("user save", err)
	}
	return nil
}

func (r *userRepository) Mutate(ctx context.Context, id int64, fn repository.MutateFunc) (*models.User, error) {
	var updated *models.User

	err := redis.WatchRetry(ctx, r.client, func(tx *goredis.Tx) error {
		user, err := GetUserTx(ctx, tx, id)
		if err != nil {
			return err
		}

		entries, err := fn(user)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			if err := PutUserTx(ctx, pipe, user); err != nil {
				return err
			}
			return AppendLedgerTx(ctx, pipe, entries)
		})
		if err != nil {
			return err
		}

		updated = user
		return nil
	}, UserKey(id))

	if err != nil {
		return nil, mutationError("user mutate", err)
	}
	return updated, nil
}

func (r *userRepository) MutatePair(ctx context.Context, firstID, secondID int64, fn repository.PairFunc) error {
	err := redis.WatchRetry(ctx, r.client, func(tx *goredis.Tx) error {
		first, err := GetUserTx(ctx, tx, firstID)
		if err != nil {
			return err
		}
		second, err := GetUserTx(ctx, tx, secondID)
		if err != nil {
			return err
		}

		entries, err := fn(first, second)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			if err := PutUserTx(ctx, pipe, first); err != nil {
				return err
			}
			if err := PutUserTx(ctx, pipe, second); err != nil {
				return err
			}
			return AppendLedgerTx(ctx, pipe, entries)
		})
		return err
	}, UserKey(firstID), UserKey(secondID))

	if err != nil {
		return mutationError("user mutate pair", err)
	}
	return nil
}

func (r *userRepository) Ledger(ctx context.Context, userID int64, limit int64) ([]*models.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	var raw []string
	err := redis.WithRetry(ctx, func() error {
		var err error
		raw, err = r.client.LRange(ctx, LedgerKey(userID), -limit, -1).Result()
		return err
	})
	if err != nil {
		return nil, apperrors.NewStoreError("ledger read", err)
	}

	// LRange отдает старые записи первыми, наружу — новые первыми
	entries := make([]*models.LedgerEntry, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var entry models.LedgerEntry
		if err := json.Unmarshal([]byte(raw[i]), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

// mutationError отделяет бизнес-исходы от инфраструктурных сбоев
func mutationError(operation string, err error) error {
	if errors.Is(err, repository.ErrUserNotFound) ||
		errors.Is(err, models.ErrInsufficientBalance) ||
		errors.Is(err, models.ErrNonPositiveAmount) {
		return err
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	if redis.IsTransient(err) || errors.Is(err, goredis.TxFailedErr) {
		return apperrors.NewStoreError(operation, err)
	}
	return err
}
