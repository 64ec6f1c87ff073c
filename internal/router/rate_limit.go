package router

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aima-hub/internal/http/response"
	"github.com/aima-hub/internal/logger"
	"github.com/aima-hub/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Name          string
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	Message       string
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

// RateLimiter 判断一次请求是否放行，拒绝时返回需等待的秒数
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, int, error)
}

// NewRateLimiter client 为空时退化为进程内限流
func NewRateLimiter(client redis.UniversalClient, rule RateLimitRule) RateLimiter {
	if client == nil {
		return newLocalRateLimiter(rule, time.Now)
	}
	return &redisRateLimiter{client: client, rule: rule}
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// redisRateLimiter 固定窗口计数，多实例共享
type redisRateLimiter struct {
	client redis.UniversalClient
	rule   RateLimitRule
}

func (l *redisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	if l.rule.Prefix != "" {
		key = fmt.Sprintf("%s:%s", l.rule.Prefix, key)
	}
	result, err := rateLimitScript.Run(ctx, l.client, []string{key}, l.rule.WindowSeconds).Result()
	if err != nil {
		return false, 0, err
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return false, 0, fmt.Errorf("unexpected rate limit result %T", result)
	}
	count, ok := toInt64(values[0])
	if !ok {
		return false, 0, fmt.Errorf("unexpected rate limit counter %T", values[0])
	}
	if count <= int64(l.rule.MaxRequests) {
		return true, 0, nil
	}
	ttlSeconds, _ := toInt64(values[1])
	wait := int(ttlSeconds)
	if wait < 1 {
		wait = l.rule.WindowSeconds
	}
	return false, wait, nil
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localRateLimiter 每个 key 一个令牌桶，容量等于窗口内上限
type localRateLimiter struct {
	mu        sync.Mutex
	rule      RateLimitRule
	now       func() time.Time
	buckets   map[string]*localBucket
	lastSweep time.Time
}

func newLocalRateLimiter(rule RateLimitRule, now func() time.Time) *localRateLimiter {
	return &localRateLimiter{
		rule:      rule,
		now:       now,
		buckets:   make(map[string]*localBucket),
		lastSweep: now(),
	}
}

func (l *localRateLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	now := l.now()
	window := time.Duration(l.rule.WindowSeconds) * time.Second

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now, window)
	bucket, ok := l.buckets[key]
	if !ok {
		every := window / time.Duration(l.rule.MaxRequests)
		bucket = &localBucket{limiter: rate.NewLimiter(rate.Every(every), l.rule.MaxRequests)}
		l.buckets[key] = bucket
	}
	bucket.lastSeen = now

	reservation := bucket.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, l.rule.WindowSeconds, nil
	}
	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return true, 0, nil
	}
	reservation.CancelAt(now)
	return false, int(math.Ceil(delay.Seconds())), nil
}

// sweep 清理超过一个窗口未访问的 key，此时令牌桶已回满
func (l *localRateLimiter) sweep(now time.Time, window time.Duration) {
	if now.Sub(l.lastSweep) < window {
		return
	}
	for key, bucket := range l.buckets {
		if now.Sub(bucket.lastSeen) >= window {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// RateLimitMiddleware 频率限制中间件
func RateLimitMiddleware(limiter RateLimiter, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !rule.enabled() {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}

		allowed, waitSeconds, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Errorw("rate_limit_unavailable", "rule", rule.Name, "error", err)
			response.Abort(c, response.NewError(response.CodeInternal, "rate limit unavailable", err))
			return
		}
		if !allowed {
			if waitSeconds < 1 {
				waitSeconds = 1
			}
			metrics.RateLimitedTotal.WithLabelValues(rule.Name).Inc()
			msg := strings.TrimSpace(rule.Message)
			if msg == "" {
				msg = "too many requests"
			}
			c.Header("Retry-After", strconv.Itoa(waitSeconds))
			response.Abort(c, response.NewError(response.CodeTooManyRequests, fmt.Sprintf("%s, retry in %d seconds", msg, waitSeconds), nil))
			return
		}

		c.Next()
	}
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
