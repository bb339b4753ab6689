package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps go-redis client to allow future extensions.
type Client struct {
	*redis.Client
}

// Open creates a new Redis client and pings it to validate the connection.
func Open(ctx context.Context, host string, port int, password string, db int) (*Client, error) {
	if host == "" {
		return nil, fmt.Errorf("empty redis host")
	}

	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}

	return &Client{Client: c}, nil
}

const (
	// MaxTxRetries bounds the optimistic-concurrency retry loop on WATCH conflicts.
	MaxTxRetries = 16

	// MaxStoreRetries bounds retries of transient infrastructure failures.
	MaxStoreRetries = 3

	retryBaseDelay = 50 * time.Millisecond
)

// IsTransient reports whether the error is an infrastructure failure worth retrying.
// Business outcomes and WATCH conflicts are never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) || errors.Is(err, redis.TxFailedErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// WithRetry runs fn, retrying transient store errors with exponential backoff.
// If retries exhaust, the last error is returned unchanged; the caller wraps it
// as a store-unavailable outcome.
func WithRetry(ctx context.Context, fn func() error) error {
	var err error
	delay := retryBaseDelay

	for attempt := 0; attempt < MaxStoreRetries; attempt++ {
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return err
}

// WatchRetry runs a WATCH-based optimistic transaction, retrying on conflicts.
// fn runs at most MaxTxRetries times; each run must be side-effect free until
// the final pipeline commit.
func WatchRetry(ctx context.Context, client *Client, fn func(tx *redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < MaxTxRetries; attempt++ {
		err := client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return redis.TxFailedErr
}
