package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces weather entries away from anything else sharing the
// Redis instance.
const keyPrefix = "weather:"

// WeatherCache stores raw provider payloads under time-expiring keys.
// Key format: weather:<lowercased city>, so lookups are case-insensitive.
type WeatherCache struct {
	client *redis.Client
}

// NewWeatherCache creates a WeatherCache wrapping the given Redis client.
func NewWeatherCache(client *redis.Client) *WeatherCache {
	return &WeatherCache{client: client}
}

// Get returns the cached payload for a city, with ok reporting whether an
// entry existed. A missing key is not an error.
func (c *WeatherCache) Get(ctx context.Context, city string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, c.key(city)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return payload, true, nil
}

// Set stores a payload for a city, expiring after ttl.
func (c *WeatherCache) Set(ctx context.Context, city string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(city), payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *WeatherCache) key(city string) string {
	return keyPrefix + strings.ToLower(city)
}
