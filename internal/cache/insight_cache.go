package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hataichanokpan-dev/fonpick/internal/domain"
)

// InsightCache keeps the most recent resolved insight per market as JSON with
// a short TTL. It is the read fast path for the API, bot and TUI; Postgres
// stays the source of truth.
type InsightCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewInsightCache(client *redis.Client, ttl time.Duration) *InsightCache {
	return &InsightCache{client: client, ttl: ttl}
}

func insightKey(market string) string {
	return fmt.Sprintf("insight:latest:%s", market)
}

// SetLatest stores the record, replacing any previous value for the market.
func (c *InsightCache) SetLatest(ctx context.Context, record *domain.InsightRecord) error {
	if c == nil || c.client == nil || record == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal insight record: %w", err)
	}
	if err := c.client.Set(ctx, insightKey(record.Market), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache insight for %s: %w", record.Market, err)
	}
	return nil
}

// GetLatest returns the cached record for a market, or (nil, nil) on a miss.
func (c *InsightCache) GetLatest(ctx context.Context, market string) (*domain.InsightRecord, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	payload, err := c.client.Get(ctx, insightKey(market)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cached insight for %s: %w", market, err)
	}
	var record domain.InsightRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode cached insight for %s: %w", market, err)
	}
	return &record, nil
}

// Invalidate drops the cached record for a market.
func (c *InsightCache) Invalidate(ctx context.Context, market string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, insightKey(market)).Err()
}
