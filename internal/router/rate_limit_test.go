package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newLimitedEngine(limiter RateLimiter, rule RateLimitRule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(limiter, rule, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func hit(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddlewareWithoutLimiter(t *testing.T) {
	r := newLimitedEngine(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1})
	for i := 0; i < 3; i++ {
		w := hit(r, "1.2.3.4:5678")
		if w.Code != http.StatusOK {
			t.Fatalf("status want 200 got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("expected handler response body, got %s", w.Body.String())
		}
	}
}

func TestRedisRateLimiterFixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rule := RateLimitRule{Name: "test", Prefix: "aima:rate:test", WindowSeconds: 60, MaxRequests: 2}
	r := newLimitedEngine(NewRateLimiter(client, rule), rule)

	for i := 0; i < 2; i++ {
		if w := hit(r, "1.2.3.4:1000"); w.Code != http.StatusOK {
			t.Fatalf("request %d want 200 got %d", i+1, w.Code)
		}
	}
	w := hit(r, "1.2.3.4:1000")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request want 429 got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("429 should carry Retry-After")
	}
	if other := hit(r, "5.6.7.8:1000"); other.Code != http.StatusOK {
		t.Fatalf("other ip want 200 got %d", other.Code)
	}
	if !mr.Exists("aima:rate:test:1.2.3.4") {
		t.Fatalf("counter key should be prefixed")
	}

	mr.FastForward(61 * time.Second)
	if w := hit(r, "1.2.3.4:1000"); w.Code != http.StatusOK {
		t.Fatalf("after window want 200 got %d", w.Code)
	}
}

func TestRedisRateLimiterUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	rule := RateLimitRule{Name: "test", WindowSeconds: 60, MaxRequests: 2}
	r := newLimitedEngine(NewRateLimiter(client, rule), rule)
	if w := hit(r, "1.2.3.4:1000"); w.Code != http.StatusInternalServerError {
		t.Fatalf("unavailable redis want 500 got %d", w.Code)
	}
}

func TestLocalRateLimiter(t *testing.T) {
	now := time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	limiter := newLocalRateLimiter(RateLimitRule{WindowSeconds: 300, MaxRequests: 5}, clock)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if allowed, _, _ := limiter.Allow(ctx, "ip"); !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	allowed, wait, err := limiter.Allow(ctx, "ip")
	if err != nil || allowed {
		t.Fatalf("sixth request should be rejected, allowed=%v err=%v", allowed, err)
	}
	if wait < 1 || wait > 300 {
		t.Fatalf("wait should be within the window, got %d", wait)
	}
	if allowed, _, _ := limiter.Allow(ctx, "other"); !allowed {
		t.Fatalf("other key should be allowed")
	}

	now = now.Add(5 * time.Minute)
	for i := 0; i < 5; i++ {
		if allowed, _, _ := limiter.Allow(ctx, "ip"); !allowed {
			t.Fatalf("after refill request %d should be allowed", i+1)
		}
	}
}

func TestLocalRateLimiterSweepsIdleKeys(t *testing.T) {
	now := time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)
	limiter := newLocalRateLimiter(RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, func() time.Time { return now })
	_, _, _ = limiter.Allow(context.Background(), "a")
	_, _, _ = limiter.Allow(context.Background(), "b")

	now = now.Add(2 * time.Minute)
	_, _, _ = limiter.Allow(context.Background(), "c")
	if len(limiter.buckets) != 1 {
		t.Fatalf("idle buckets should be swept, got %d", len(limiter.buckets))
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(10), want: 10, ok: true},
		{name: "int", input: int(11), want: 11, ok: true},
		{name: "float64", input: float64(13.9), want: 13, ok: true},
		{name: "string", input: "bad", want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("value want %d got %d", tc.want, got)
			}
		})
	}
}
