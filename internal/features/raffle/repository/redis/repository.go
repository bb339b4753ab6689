package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	apperrors "rewards-mini-app-backend/internal/common/errors"
	"rewards-mini-app-backend/internal/features/raffle/models"
	"rewards-mini-app-backend/internal/features/raffle/repository"
	usermodels "rewards-mini-app-backend/internal/features/user/models"
	userrepo "rewards-mini-app-backend/internal/features/user/repository"
	userredis "rewards-mini-app-backend/internal/features/user/repository/redis"
	"rewards-mini-app-backend/internal/platform/redis"
)

func raffleKey(id string) string {
	return fmt.Sprintf("raffle:%s", id)
}

func statusSetKey(status models.RaffleStatus) string {
	return fmt.Sprintf("raffles:%s", status)
}

type raffleRepository struct {
	client *redis.Client
}

func NewRaffleRepository(client *redis.Client) repository.RaffleRepository {
	return &raffleRepository{client: client}
}

func (r *raffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	data, err := json.Marshal(raffle)
	if err != nil {
		return fmt.Errorf("failed to marshal raffle: %w", err)
	}

	err = redis.WithRetry(ctx, func() error {
		_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, raffleKey(raffle.ID), data, 0)
			pipe.SAdd(ctx, statusSetKey(raffle.Status), raffle.ID)
			return nil
		})
		return err
	})
	if err != nil {
		return apperrors.NewStoreError("raffle create", err)
	}
	return nil
}

func (r *raffleRepository) GetByID(ctx context.Context, id string) (*models.Raffle, error) {
	var raffle models.Raffle

	err := redis.WithRetry(ctx, func() error {
		data, err := r.client.Get(ctx, raffleKey(id)).Bytes()
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &raffle)
	})
	if errors.Is(err, goredis.Nil) {
		return nil, repository.ErrRaffleNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("raffle get", err)
	}

	return &raffle, nil
}

func (r *raffleRepository) ListByStatus(ctx context.Context, status models.RaffleStatus) ([]*models.Raffle, error) {
	var ids []string
	err := redis.WithRetry(ctx, func() error {
		var err error
		ids, err = r.client.SMembers(ctx, statusSetKey(status)).Result()
		return err
	})
	if err != nil {
		return nil, apperrors.NewStoreError("raffle list", err)
	}

	raffles := make([]*models.Raffle, 0, len(ids))
	for _, id := range ids {
		raffle, err := r.GetByID(ctx, id)
		if errors.Is(err, repository.ErrRaffleNotFound) {
			// Индекс может опережать удаление документа, пропускаем
			continue
		}
		if err != nil {
			return nil, err
		}
		raffles = append(raffles, raffle)
	}

	return raffles, nil
}

func (r *raffleRepository) OpenIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := redis.WithRetry(ctx, func() error {
		var err error
		ids, err = r.client.SMembers(ctx, statusSetKey(models.RaffleStatusOpen)).Result()
		return err
	})
	if err != nil {
		return nil, apperrors.NewStoreError("raffle open ids", err)
	}
	return ids, nil
}

func getRaffleTx(ctx context.Context, tx *goredis.Tx, id string) (*models.Raffle, error) {
	data, err := tx.Get(ctx, raffleKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, repository.ErrRaffleNotFound
	}
	if err != nil {
		return nil, err
	}

	var raffle models.Raffle
	if err := json.Unmarshal(data, &raffle); err != nil {
		return nil, err
	}
	return &raffle, nil
}

// putRaffleTx пишет документ розыгрыша и переносит его между
// индексами статусов, если статус изменился
func putRaffleTx(ctx context.Context, pipe goredis.Pipeliner, raffle *models.Raffle, prevStatus models.RaffleStatus) error {
	data, err := json.Marshal(raffle)
	if err != nil {
		return fmt.Errorf("failed to marshal raffle: %w", err)
	}
	pipe.Set(ctx, raffleKey(raffle.ID), data, 0)
	if raffle.Status != prevStatus {
		pipe.SRem(ctx, statusSetKey(prevStatus), raffle.ID)
		pipe.SAdd(ctx, statusSetKey(raffle.Status), raffle.ID)
	}
	return nil
}

func (r *raffleRepository) Mutate(ctx context.Context, id string, fn repository.MutateFunc) error {
	err := redis.WatchRetry(ctx, r.client, func(tx *goredis.Tx) error {
		raffle, err := getRaffleTx(ctx, tx, id)
		if err != nil {
			return err
		}
		prev := raffle.Status

		if err := fn(raffle); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			return putRaffleTx(ctx, pipe, raffle, prev)
		})
		return err
	}, raffleKey(id))

	if err != nil {
		return mutationError("raffle mutate", err)
	}
	return nil
}

func (r *raffleRepository) Join(ctx context.Context, raffleID string, userID int64, fn repository.JoinFunc) error {
	err := redis.WatchRetry(ctx, r.client, func(tx *goredis.Tx) error {
		raffle, err := getRaffleTx(ctx, tx, raffleID)
		if err != nil {
			return err
		}
		prev := raffle.Status

		user, err := userredis.GetUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		entry, err := fn(raffle, user)
		if err != nil {
			return err
		}

		// Списание взноса, запись участия и журнал — один коммит
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			if err := putRaffleTx(ctx, pipe, raffle, prev); err != nil {
				return err
			}
			if err := userredis.PutUserTx(ctx, pipe, user); err != nil {
				return err
			}
			if entry != nil {
				return userredis.AppendLedgerTx(ctx, pipe, []*usermodels.LedgerEntry{entry})
			}
			return nil
		})
		return err
	}, raffleKey(raffleID), userredis.UserKey(userID))

	if err != nil {
		return mutationError("raffle join", err)
	}
	return nil
}

func (r *raffleRepository) Draw(ctx context.Context, raffleID string, fn repository.DrawFunc) error {
	// Набор наблюдаемых ключей зависит от состава участников и известен только
	// после предварительного чтения. Пока розыгрыш открыт, состав между этим
	// чтением и WATCH еще может вырасти, поэтому он сверяется со снимком уже
	// внутри транзакции, а при расхождении попытка начинается заново с
	// пересчетом ключей.
	var err error
	for attempt := 0; attempt < redis.MaxTxRetries; attempt++ {
		var snapshot *models.Raffle
		snapshot, err = r.GetByID(ctx, raffleID)
		if err != nil {
			return err
		}

		watched := make([]string, 0, len(snapshot.Participants)+1)
		watched = append(watched, raffleKey(raffleID))
		for _, p := range snapshot.Participants {
			watched = append(watched, userredis.UserKey(p.UserID))
		}

		err = r.client.Watch(ctx, func(tx *goredis.Tx) error {
			raffle, err := getRaffleTx(ctx, tx, raffleID)
			if err != nil {
				return err
			}
			if !sameParticipants(snapshot.Participants, raffle.Participants) {
				// Ключ нового участника не под WATCH, коммитить нельзя
				return goredis.TxFailedErr
			}
			prev := raffle.Status

			participants := make(map[int64]*usermodels.User, len(raffle.Participants))
			for _, p := range raffle.Participants {
				user, err := userredis.GetUserTx(ctx, tx, p.UserID)
				if err != nil {
					return err
				}
				participants[p.UserID] = user
			}

			entries, err := fn(raffle, participants)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
				if err := putRaffleTx(ctx, pipe, raffle, prev); err != nil {
					return err
				}
				// Сохраняются только участники с начислениями
				for _, entry := range entries {
					if err := userredis.PutUserTx(ctx, pipe, participants[entry.UserID]); err != nil {
						return err
					}
				}
				return userredis.AppendLedgerTx(ctx, pipe, entries)
			})
			return err
		}, watched...)
		if !errors.Is(err, goredis.TxFailedErr) {
			break
		}
	}

	if err != nil {
		return mutationError("raffle draw", err)
	}
	return nil
}

// sameParticipants сверяет состав участников снимка с транзакционным чтением.
// Состав только растет, поэтому достаточно позиционного сравнения.
func sameParticipants(a, b []models.Participant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].UserID != b[i].UserID {
			return false
		}
	}
	return true
}

func mutationError(operation string, err error) error {
	if errors.Is(err, repository.ErrRaffleNotFound) ||
		errors.Is(err, userrepo.ErrUserNotFound) ||
		errors.Is(err, models.ErrRaffleClosed) ||
		errors.Is(err, models.ErrRaffleStillOpen) ||
		errors.Is(err, models.ErrRaffleDrawn) ||
		errors.Is(err, models.ErrAlreadyJoined) ||
		errors.Is(err, models.ErrNoEntrants) ||
		errors.Is(err, models.ErrInvalidTransition) ||
		errors.Is(err, usermodels.ErrInsufficientBalance) ||
		errors.Is(err, usermodels.ErrNonPositiveAmount) {
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
