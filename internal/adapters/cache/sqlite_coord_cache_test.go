package cache

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"fuel-route-service/internal/domain"
)

func newTestSqliteCache(t *testing.T) *SqliteCoordCache {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := InitSqliteCoordSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return NewSqliteCoordCache(db)
}

func TestSqliteCoordCacheRoundTrip(t *testing.T) {
	c := newTestSqliteCache(t)
	ctx := context.Background()

	key := "101-I-10 Exit 200-Phoenix-AZ"
	want := domain.Coordinates{Lat: 33.4484, Lon: -112.0740}

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

func TestSqliteCoordCacheOverwrite(t *testing.T) {
	c := newTestSqliteCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", domain.Coordinates{Lat: 1, Lon: 2})
	c.Set(ctx, "k", domain.Coordinates{Lat: 3, Lon: 4})

	got, ok := c.Get(ctx, "k")
	if !ok || got.Lat != 3 || got.Lon != 4 {
		t.Fatalf("got %+v ok=%v, want lat 3 lon 4", got, ok)
	}
}
