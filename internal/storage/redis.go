package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/novelterm/aetheria/pkg/state"
)

// sessionKey is the fixed save slot. The game is single-player and
// single-device, so there is exactly one.
const sessionKey = "aetheria:session:v1"

// RedisStorage implements Storage using Redis. Saves never expire; a
// playthrough must survive restarts.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection polls until Redis answers a ping, bounded by the
// context. Startup races the container coming up, so a failed first ping is
// normal.
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	const pollDelay = time.Second

	for attempt := 1; ; attempt++ {
		err := r.Ping(ctx)
		if err == nil {
			r.logger.Info("Redis connection established", "attempt", attempt)
			return nil
		}
		r.logger.Debug("Redis not ready", "error", err, "attempt", attempt)

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up waiting for redis after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(pollDelay):
		}
	}
}

func (r *RedisStorage) SaveSession(ctx context.Context, s *state.Session) error {
	s.UpdatedAt = time.Now()

	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("Failed to marshal session", "id", s.ID, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save session", "id", s.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context) (*state.Session, error) {
	data, err := r.client.Get(ctx, sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("No saved session found")
			return nil, nil
		}
		r.logger.Error("Failed to load session", "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s state.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		// A corrupt save is discarded so the caller starts a fresh world.
		r.logger.Error("Saved session is corrupt, discarding", "error", err)
		return nil, nil
	}

	return &s, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context) error {
	if err := r.client.Del(ctx, sessionKey).Err(); err != nil {
		r.logger.Error("Failed to delete session", "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
