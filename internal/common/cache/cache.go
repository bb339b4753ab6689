package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rewards-mini-app-backend/internal/platform/redis"
)

// ErrDisabled возвращается из Get, когда кэширование выключено
var ErrDisabled = errors.New("cache disabled")

// CacheService — read-through проекция поверх хранилища.
// Кэш никогда не является источником истины: любая мутация инвалидирует его.
type CacheService struct {
	client *redis.Client
}

// NewCacheService создает кэш поверх redis; nil клиент отключает кэширование
func NewCacheService(client *redis.Client) *CacheService {
	return &CacheService{client: client}
}

// Get получает значение из кэша
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrDisabled
	}

	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), dest)
}

// Set сохраняет значение в кэш
func (c *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.client.Set(ctx, key, string(data), ttl).Err()
}

// Delete удаляет значение из кэша
func (c *CacheService) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// GetOrSet получает значение из кэша или вычисляет и сохраняет новое
func (c *CacheService) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, setter func() (interface{}, error)) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}

	value, err := setter()
	if err != nil {
		return err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// InvalidateRaffle инвалидирует кэш розыгрыша и списков розыгрышей
func (c *CacheService) InvalidateRaffle(ctx context.Context, raffleID string) error {
	return c.Delete(ctx,
		fmt.Sprintf("cache:raffle:%s", raffleID),
		"cache:raffles:open",
		"cache:raffles:closed",
		"cache:raffles:drawn",
	)
}

// InvalidateTasks инвалидирует кэш списка заданий
func (c *CacheService) InvalidateTasks(ctx context.Context) error {
	return c.Delete(ctx, "cache:tasks:all")
}
