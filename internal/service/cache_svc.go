package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// CacheMetrics counts cache-aside outcomes. The counters work without
// registration; the server registers them to expose them on /metrics.
var CacheMetrics = struct {
	Hits   prometheus.Counter
	Misses prometheus.Counter
}{
	Hits: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inviteai_cache_hits_total",
		Help: "Total Redis cache hits.",
	}),
	Misses: prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inviteai_cache_misses_total",
		Help: "Total Redis cache misses.",
	}),
}

// RegisterCacheMetrics adds the cache collectors to the default registry.
// Call once, from the process that serves /metrics.
func RegisterCacheMetrics() {
	prometheus.MustRegister(CacheMetrics.Hits, CacheMetrics.Misses)
}

// Redis key TTLs. Profiles change only when a discovery run upserts them,
// stats aggregate the whole directory so they expire faster.
const (
	ProfileCacheTTL = 30 * time.Minute
	StatsCacheTTL   = 5 * time.Minute
)

const statsKey = "directory:stats"

// CacheService provides a Redis cache-aside layer for profile and stats lookups.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or connection
// fails, it returns a CacheService with a nil client (cache operations become no-ops).
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// Enabled reports whether a Redis connection is actually in use.
func (c *CacheService) Enabled() bool {
	return c.rdb != nil
}

// GetProfile retrieves a cached profile response. Returns nil if not cached or cache is disabled.
func (c *CacheService) GetProfile(ctx context.Context, channelID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, profileKey(channelID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetProfile stores a profile response in cache.
func (c *CacheService) SetProfile(ctx context.Context, channelID string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, profileKey(channelID), b, ProfileCacheTTL).Err()
}

// InvalidateProfile removes a profile from cache (called after a discovery run rescores it).
func (c *CacheService) InvalidateProfile(ctx context.Context, channelID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, profileKey(channelID)).Err()
}

// GetStats retrieves the cached directory stats. Returns nil if not cached.
func (c *CacheService) GetStats(ctx context.Context) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, statsKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetStats stores the directory stats in cache.
func (c *CacheService) SetStats(ctx context.Context, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, statsKey, b, StatsCacheTTL).Err()
}

// InvalidateStats removes the directory stats from cache.
func (c *CacheService) InvalidateStats(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, statsKey).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func profileKey(channelID string) string {
	return fmt.Sprintf("profile:%s", channelID)
}
