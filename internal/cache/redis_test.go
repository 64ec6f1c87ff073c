package cache

import (
	"context"
	"strconv"
	"testing"

	"github.com/aima-hub/internal/config"

	"github.com/alicebob/miniredis/v2"
)

func TestInitRedisDisabled(t *testing.T) {
	if err := InitRedis(context.Background(), &config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("disabled redis should not fail: %v", err)
	}
	if Enabled() || Client() != nil {
		t.Fatalf("redis should be disabled")
	}
}

func TestInitRedisConnects(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Cleanup(func() { _ = Close() })

	err := InitRedis(context.Background(), &config.RedisConfig{
		Enabled: true,
		Host:    mr.Host(),
		Port:    mustPort(t, mr.Port()),
		Prefix:  " blog ",
	})
	if err != nil {
		t.Fatalf("init redis failed: %v", err)
	}
	if !Enabled() || Client() == nil {
		t.Fatalf("redis should be enabled")
	}
	if Prefix() != "blog" {
		t.Fatalf("prefix want blog got %q", Prefix())
	}
}

func TestInitRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	port := mustPort(t, mr.Port())
	mr.Close()

	err := InitRedis(context.Background(), &config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: port})
	if err == nil {
		t.Fatalf("unreachable redis should fail")
	}
	if Enabled() {
		t.Fatalf("redis should stay disabled after failure")
	}
}

func mustPort(t *testing.T, raw string) int {
	t.Helper()
	port, err := strconv.Atoi(raw)
	if err != nil {
		t.Fatalf("invalid port %q: %v", raw, err)
	}
	return port
}
