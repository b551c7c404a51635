// Package cache wraps the optional Redis connection used to memoize
// athlete birth-year lookups across competitions.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// birthYearTTL keeps memoized birth years for a season's worth of runs.
const birthYearTTL = 90 * 24 * time.Hour

// RedisCache handles lookup memoization. A nil *RedisCache is valid and
// caches nothing, so the scraper works without Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates and pings a Redis connection.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

// HealthCheck pings Redis to verify the connection.
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Ping(ctx).Err()
}

func birthYearKey(athleteID int64) string {
	return fmt.Sprintf("swimmer:birthyear:%d", athleteID)
}

// GetBirthYear returns a memoized birth year, or ok=false on a miss.
func (rc *RedisCache) GetBirthYear(ctx context.Context, athleteID int64) (int, bool) {
	if rc == nil || rc.client == nil {
		return 0, false
	}

	val, err := rc.client.Get(ctx, birthYearKey(athleteID)).Result()
	if err != nil {
		return 0, false
	}
	year, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return year, true
}

// SetBirthYear memoizes a birth year. Failures are ignored; the cache is
// an optimization, not a store.
func (rc *RedisCache) SetBirthYear(ctx context.Context, athleteID int64, year int) {
	if rc == nil || rc.client == nil {
		return
	}
	rc.client.Set(ctx, birthYearKey(athleteID), strconv.Itoa(year), birthYearTTL)
}
