package elevation

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a shared cache tier. Heights are stored as decimal strings.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenRedis returns a client for addr, or nil when addr is empty.
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// NewRedisStore wraps client. A non-positive ttl keeps keys forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{client: client, ttl: ttl}
}

// GetMany implements Store.
func (r *RedisStore) GetMany(ctx context.Context, keys []string) (map[string]float64, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		h, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue
		}
		out[keys[i]] = h
	}
	return out, nil
}

// SetMany implements Store with one pipelined round trip.
func (r *RedisStore) SetMany(ctx context.Context, values map[string]float64) error {
	if len(values) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for k, h := range values {
		pipe.Set(ctx, k, strconv.FormatFloat(h, 'g', -1, 64), r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Ping checks the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
