package geo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL keeps resolved addresses for a day.
const DefaultCacheTTL = 24 * time.Hour

// CachedGeocoder memoizes a Geocoder in Redis, keyed by coordinates rounded to
// five decimals (about one metre). Concurrent lookups of the same key share one
// upstream call. A nil Redis client disables the cache but keeps de-duplication.
type CachedGeocoder struct {
	next   Geocoder
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	group  singleflight.Group
}

// NewCachedGeocoder wraps next.
func NewCachedGeocoder(next Geocoder, client *redis.Client, ttl time.Duration) *CachedGeocoder {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedGeocoder{next: next, redis: client, ttl: ttl, prefix: "geocode"}
}

// CacheKey returns the Redis key for a coordinate pair.
func (g *CachedGeocoder) CacheKey(lat, lon float64) string {
	return fmt.Sprintf("%s:%.5f,%.5f", g.prefix, lat, lon)
}

// ReverseGeocode implements Geocoder.
func (g *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	key := g.CacheKey(lat, lon)

	if g.redis != nil {
		// a Redis failure other than a miss falls through to the upstream lookup
		if cached, err := g.redis.Get(ctx, key).Result(); err == nil {
			return cached, nil
		}
	}

	v, err, _ := g.group.Do(key, func() (any, error) {
		addr, err := g.next.ReverseGeocode(ctx, lat, lon)
		if err != nil {
			return "", err
		}
		if g.redis != nil && addr != "" {
			_ = g.redis.Set(ctx, key, addr, g.ttl).Err()
		}
		return addr, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
