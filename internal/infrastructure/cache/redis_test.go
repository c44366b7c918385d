package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestOpenRedis_SingleNode(t *testing.T) {
	s := miniredis.RunT(t)

	c, err := OpenRedis(" "+s.Addr()+" ", 2)
	if err != nil {
		t.Fatalf("OpenRedis returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	// one address means a plain client on the requested DB
	rc, ok := c.(*redis.Client)
	if !ok {
		t.Fatalf("client type = %T, want *redis.Client", c)
	}
	if got := rc.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Set(ctx, "k", "v", 0).Err(); err != nil {
		t.Fatalf("SET err: %v", err)
	}
	if v, err := c.Get(ctx, "k").Result(); err != nil || v != "v" {
		t.Fatalf("GET = %q, %v", v, err)
	}
}

func TestOpenRedis_Failure(t *testing.T) {
	if _, err := OpenRedis("not-a-real-host:6379", 0); err == nil {
		t.Fatal("expected error, got nil")
	}
	if _, err := OpenRedis(" , ", 0); err == nil {
		t.Fatal("expected error for empty address list")
	}
}

func TestPing_AfterServerStops(t *testing.T) {
	s := miniredis.RunT(t)
	c, err := OpenRedis(s.Addr(), 0)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := Ping(context.Background(), c); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	s.Close()
	if err := Ping(context.Background(), c); err == nil {
		t.Fatal("expected ping error after close")
	}
}
