// Package redis stores the whole document as a JSON value under one key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
)

type RedisRepository struct {
	Client *redis.Client
	key    string
}

func NewRedisRepository(ctx context.Context, client *redis.Client, key string) (*RedisRepository, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &RedisRepository{Client: client, key: key}, nil
}

// Load reads the document. A missing key is an empty document.
func (r *RedisRepository) Load(ctx context.Context) (*domain.State, error) {
	data, err := r.Client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", r.key, err)
	}

	state := domain.NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("redis: decode %s: %w", r.key, err)
	}
	return state.Normalize(), nil
}

// Save replaces the value with no expiry.
func (r *RedisRepository) Save(ctx context.Context, state *domain.State) error {
	data, err := json.Marshal(state.Normalize())
	if err != nil {
		return fmt.Errorf("redis: encode: %w", err)
	}
	if err := r.Client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisRepository) Close() error {
	return r.Client.Close()
}
