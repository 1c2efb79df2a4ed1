// Package ratelimit 按调用方 key 放行或拒绝请求。
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter 判断 key 对应的调用方能否继续。
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type redisRateCounter interface {
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

// incrWithTTL 在同一个 MULTI/EXEC 中执行 INCR 与 EXPIRE，计数键不会遗留为永久键。
func incrWithTTL(ctx context.Context, client redisRateCounter, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	if _, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ttl)
		return nil
	}); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RedisLimiter 以一分钟固定窗口按 key 计数，所有 API 实例共享。
type RedisLimiter struct {
	client    redisRateCounter
	perMinute int
	prefix    string
	now       func() time.Time
}

func NewRedisLimiter(client redis.UniversalClient, perMinute int) *RedisLimiter {
	return newRedisLimiter(client, perMinute)
}

func newRedisLimiter(client redisRateCounter, perMinute int) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		perMinute: perMinute,
		prefix:    "rate:api:",
		now:       time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := l.now().UTC().Format("200601021504")
	count, err := incrWithTTL(ctx, l.client, l.prefix+key+":"+window, time.Minute)
	if err != nil {
		return true, err
	}
	return count <= int64(l.perMinute), nil
}

// MemoryLimiter 在进程内为每个 key 维护令牌桶：每秒补充 perMinute/60 个，容量为 perMinute。
type MemoryLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(perMinute int) *MemoryLimiter {
	return &MemoryLimiter{
		limiters: make(map[string]*entry),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
		idleTTL:  10 * time.Minute,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}

// Sweep 清理空闲超过 idleTTL 的令牌桶，需定期调用。
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.idleTTL)
	removed := 0
	for key, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// StartSweeper 每隔 interval 执行一次 Sweep，直到 ctx 结束。
func (l *MemoryLimiter) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}
