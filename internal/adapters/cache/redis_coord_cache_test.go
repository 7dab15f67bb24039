package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"fuel-route-service/internal/domain"
)

func newTestRedisCache(t *testing.T) *RedisCoordCache {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCoordCache(client)
}

func TestRedisCoordCacheRoundTrip(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()

	key := "102-I-40 Exit 10-Kingman-AZ"
	want := domain.Coordinates{Lat: 35.1894, Lon: -114.0530}

	if _, ok := c.Get(ctx, key); ok {
		t.Fatal("expected miss before set")
	}

	c.Set(ctx, key, want)

	got, ok := c.Get(ctx, key)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestRedisCoordCacheMalformedValue(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	c := NewRedisCoordCache(client)
	srv.Set(c.Prefix+"bad", "not-a-coordinate")

	if _, ok := c.Get(context.Background(), "bad"); ok {
		t.Fatal("malformed entry should read as a miss")
	}
}

func TestCoordValueFormat(t *testing.T) {
	in := domain.Coordinates{Lat: 33.4484, Lon: -112.074}
	out, ok := parseCoordValue(formatCoordValue(in))
	if !ok || out != in {
		t.Fatalf("round trip = %+v ok=%v, want %+v", out, ok, in)
	}

	if _, ok := parseCoordValue("33.44"); ok {
		t.Fatal("value without separator should not parse")
	}
}
