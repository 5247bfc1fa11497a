package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPersister stores each cart snapshot as a single string value. A
// zero ttl keeps snapshots until they are overwritten.
type RedisPersister struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisPersister(client redis.Cmdable, ttl time.Duration) *RedisPersister {
	return &RedisPersister{client: client, ttl: ttl}
}

func (r *RedisPersister) Load(ctx context.Context, key string) (State, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	s, err := decodeSnapshot(b)
	if err != nil {
		return State{}, false, err
	}
	return s, true, nil
}

func (r *RedisPersister) Save(ctx context.Context, key string, s State) error {
	b, err := encodeSnapshot(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
