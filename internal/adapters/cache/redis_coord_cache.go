package cache

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"fuel-route-service/internal/domain"
)

// RedisCoordCache is a Redis-backed durable coordinate cache for
// deployments that share one cache across several service processes.
// Values are stored as "lat,lon" strings under a key prefix; failures
// degrade to cache misses.
type RedisCoordCache struct {
	Client *redis.Client
	Prefix string
}

func NewRedisCoordCache(client *redis.Client) *RedisCoordCache {
	return &RedisCoordCache{Client: client, Prefix: "station_coords:"}
}

// Get fetches the cached coordinate for a station cache key.
func (r *RedisCoordCache) Get(ctx context.Context, key string) (domain.Coordinates, bool) {
	if r.Client == nil || strings.TrimSpace(key) == "" {
		return domain.Coordinates{}, false
	}

	val, err := r.Client.Get(ctx, r.Prefix+key).Result()
	if err == redis.Nil {
		return domain.Coordinates{}, false
	}
	if err != nil {
		log.Printf("coord cache read failed key=%q err=%v", key, err)
		return domain.Coordinates{}, false
	}

	coords, ok := parseCoordValue(val)
	if !ok {
		log.Printf("coord cache entry malformed key=%q value=%q", key, val)
		return domain.Coordinates{}, false
	}
	return coords, true
}

// Set stores a coordinate for a station cache key.
func (r *RedisCoordCache) Set(ctx context.Context, key string, coords domain.Coordinates) {
	if r.Client == nil || strings.TrimSpace(key) == "" {
		return
	}

	val := formatCoordValue(coords)
	if err := r.Client.Set(ctx, r.Prefix+key, val, 0).Err(); err != nil {
		log.Printf("coord cache write failed key=%q err=%v", key, err)
	}
}

func formatCoordValue(coords domain.Coordinates) string {
	return strconv.FormatFloat(coords.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(coords.Lon, 'f', -1, 64)
}

func parseCoordValue(val string) (domain.Coordinates, bool) {
	parts := strings.SplitN(val, ",", 2)
	if len(parts) != 2 {
		return domain.Coordinates{}, false
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return domain.Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return domain.Coordinates{}, false
	}
	return domain.Coordinates{Lat: lat, Lon: lon}, true
}
