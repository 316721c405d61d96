// Package cache stores derived dashboard summaries in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/srsports/backend/internal/model"
)

var (
	// ErrMiss is returned by Get when no summary is cached for the user.
	ErrMiss = errors.New("cache: miss")
	// ErrStale is returned by Set when the user's summary was invalidated
	// after the generation passed to Set was read.
	ErrStale = errors.New("cache: stale generation")
)

const (
	keyPrefix = "srsports:dashboard:"
	genPrefix = "srsports:dashboard-gen:"

	// 集計にかかる時間より十分長ければよい
	generationTTL = 24 * time.Hour
)

// Key returns the Redis key holding a user's dashboard summary.
func Key(userID string) string {
	return keyPrefix + userID
}

// GenerationKey returns the Redis key holding the user's invalidation counter.
func GenerationKey(userID string) string {
	return genPrefix + userID
}

// setIfGeneration は世代が一致するときだけ SET する
var setIfGeneration = redis.NewScript(`
if (redis.call("GET", KEYS[1]) or "0") ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// NewClient parses a redis:// URL and verifies the server answers PING.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Redis caches summaries as JSON strings with a fixed TTL.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedis returns a summary cache backed by client.
func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Redis{client: client, ttl: ttl}
}

// Get returns the cached summary or ErrMiss.
func (c *Redis) Get(ctx context.Context, userID string) (*model.DashboardSummary, error) {
	raw, err := c.client.Get(ctx, Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var s model.DashboardSummary
	if err := json.Unmarshal(raw, &s); err != nil {
		// 壊れたエントリは捨ててミス扱いにする
		_ = c.client.Del(ctx, Key(userID)).Err()
		return nil, ErrMiss
	}
	return &s, nil
}

// Generation returns the user's invalidation counter. A user never
// invalidated is at generation 0.
func (c *Redis) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set stores the summary for the user if the counter still equals gen.
// It returns ErrStale otherwise.
func (c *Redis) Set(ctx context.Context, userID string, gen int64, s *model.DashboardSummary) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	keys := []string{GenerationKey(userID), Key(userID)}
	stored, err := setIfGeneration.Run(ctx, c.client, keys, strconv.FormatInt(gen, 10), raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if stored == 0 {
		return ErrStale
	}
	return nil
}

// Invalidate bumps the user's counter and drops the cached summary.
func (c *Redis) Invalidate(ctx context.Context, userID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey(userID))
		pipe.Expire(ctx, GenerationKey(userID), generationTTL)
		pipe.Del(ctx, Key(userID))
		return nil
	})
	return err
}

// Noop is used when no Redis is configured. Every Get misses.
type Noop struct{}

func (Noop) Get(context.Context, string) (*model.DashboardSummary, error) { return nil, ErrMiss }

func (Noop) Generation(context.Context, string) (int64, error) { return 0, nil }

func (Noop) Set(context.Context, string, int64, *model.DashboardSummary) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }
