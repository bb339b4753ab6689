package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	apperrors "rewards-mini-app-backend/internal/common/errors"
	"rewards-mini-app-backend/internal/features/referral/repository"
	"rewards-mini-app-backend/internal/platform/redis"
)

const (
	keyPrefixCode        = "invite_code:"
	keyPrefixInviterCode = "user_invite_code:"
)

type codeRepository struct {
	client *redis.Client
}

func NewCodeRepository(client *redis.Client) repository.CodeRepository {
	return &codeRepository{client: client}
}

func makeCodeKey(code string) string {
	return keyPrefixCode + code
}

func makeInviterKey(inviterID int64) string {
	return keyPrefixInviterCode + strconv.FormatInt(inviterID, 10)
}

func (r *codeRepository) SaveCode(ctx context.Context, inviterID int64, code string) (string, error) {
	effective := code

	err := redis.WatchRetry(ctx, r.client, func(tx *goredis.Tx) error {
		existing, err := tx.Get(ctx, makeInviterKey(inviterID)).Result()
		if err == nil {
			effective = existing
			return nil
		}
		if !errors.Is(err, goredis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, makeInviterKey(inviterID), code, 0)
			pipe.Set(ctx, makeCodeKey(code), inviterID, 0)
			return nil
		})
		return err
	}, makeInviterKey(inviterID))

	if err != nil {
		return "", apperrors.NewStoreError("invite code save", err)
	}
	return effective, nil
}

func (r *codeRepository) CodeForInviter(ctx context.Context, inviterID int64) (string, error) {
	var code string
	err := redis.WithRetry(ctx, func() error {
		var err error
		code, err = r.client.Get(ctx, makeInviterKey(inviterID)).Result()
		return err
	})
	if errors.Is(err, goredis.Nil) {
		return "", repository.ErrCodeNotFound
	}
	if err != nil {
		return "", apperrors.NewStoreError("invite code get", err)
	}
	return code, nil
}

func (r *codeRepository) ResolveCode(ctx context.Context, code string) (int64, error) {
	var raw string
	err := redis.WithRetry(ctx, func() error {
		var err error
		raw, err = r.client.Get(ctx, makeCodeKey(code)).Result()
		return err
	})
	if errors.Is(err, goredis.Nil) {
		return 0, repository.ErrCodeNotFound
	}
	if err != nil {
		return 0, apperrors.NewStoreError("invite code resolve", err)
	}

	inviterID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupted invite code mapping: %w", err)
	}
	return inviterID, nil
}
