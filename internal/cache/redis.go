package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"busline/internal/models"
)

const keyPrefix = "busline:search:"

type Config struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// SearchCache keeps journey search results in Redis. Journeys are immutable
// once provisioned; seat state is never stored here.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSearchCache(ctx context.Context, cfg Config) (*SearchCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewSearchCacheWithClient(rdb, cfg.TTL), nil
}

func NewSearchCacheWithClient(client *redis.Client, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &SearchCache{client: client, ttl: ttl}
}

// GetJourneys returns ok=false on a miss.
func (c *SearchCache) GetJourneys(ctx context.Context, key string) ([]models.Journey, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache lookup error: %w", err)
	}

	var journeys []models.Journey
	if err := json.Unmarshal(data, &journeys); err != nil {
		return nil, false, fmt.Errorf("invalid cached search result: %w", err)
	}
	return journeys, true, nil
}

func (c *SearchCache) SetJourneys(ctx context.Context, key string, journeys []models.Journey) error {
	if journeys == nil {
		journeys = []models.Journey{}
	}
	data, err := json.Marshal(journeys)
	if err != nil {
		return fmt.Errorf("failed to marshal search result: %w", err)
	}
	return c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err()
}

// HealthCheck pings Redis.
func (c *SearchCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *SearchCache) Close() error {
	return c.client.Close()
}
