package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key is absent from the store.
var ErrNotFound = errors.New("store: not found")

// KV is the persistence gateway contract: plain key-value access with a
// prefix scan. No transactions, no compare-and-swap; concurrent writers to
// the same key follow last-write-wins.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	KeysByPrefix(ctx context.Context, prefix string) ([]string, error)
}

// Redis implements KV on a redis client with JSON string values.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	return data, err
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	return n > 0, err
}

func (r *Redis) KeysByPrefix(ctx context.Context, prefix string) ([]string, error) {
	return r.client.Keys(ctx, prefix+"*").Result()
}
