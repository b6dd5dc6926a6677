package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"

	applog "heavyequip/internal/log"
	"heavyequip/internal/metrics"
)

// Redis stores entries in a shared redis so every replica serves the same
// cached pages. Calls go through a circuit breaker; an open breaker or any
// redis error is a miss.
type Redis struct {
	rdb     *redis.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
	timeout time.Duration
}

const breakerName = "redis-cache"

func NewRedis(rdb *redis.Client) *Redis {
	metrics.BreakerState.WithLabelValues(breakerName).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// redis.Nil is an ordinary miss, not a failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l := applog.Logger()
			l.Warn().Str("action", "cache.breaker").Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	return &Redis{rdb: rdb, cb: cb, timeout: 200 * time.Millisecond}
}

// NewRedisFromURL parses a redis:// URL.
func NewRedisFromURL(url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedis(redis.NewClient(opt)), nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	val, err := r.cb.Execute(func() ([]byte, error) {
		return r.rdb.Get(ctx, key).Bytes()
	})
	if err != nil {
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	_, _ = r.cb.Execute(func() ([]byte, error) {
		return nil, r.rdb.Set(ctx, key, val, ttl).Err()
	})
}

// DeletePrefix scans for keys under prefix and unlinks them in batches.
func (r *Redis) DeletePrefix(ctx context.Context, prefix string) {
	ctx, cancel := context.WithTimeout(ctx, 5*r.timeout)
	defer cancel()
	_, err := r.cb.Execute(func() ([]byte, error) {
		iter := r.rdb.Scan(ctx, 0, prefix+"*", 500).Iterator()
		batch := make([]string, 0, 500)
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
			if len(batch) == cap(batch) {
				if err := r.rdb.Unlink(ctx, batch...).Err(); err != nil {
					return nil, err
				}
				batch = batch[:0]
			}
		}
		if err := iter.Err(); err != nil {
			return nil, err
		}
		if len(batch) > 0 {
			return nil, r.rdb.Unlink(ctx, batch...).Err()
		}
		return nil, nil
	})
	if err != nil {
		l := applog.Logger()
		l.Warn().Err(err).Str("action", "cache.invalidate.fail").Str("prefix", prefix).Msg("could not drop cached entries")
	}
}

func (r *Redis) Close() error { return r.rdb.Close() }
