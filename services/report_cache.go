package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"webtraffic/model"

	"github.com/redis/go-redis/v9"
)

// ReportCache keeps the latest aggregation per window in Redis: a fresh
// copy with a short TTL to absorb dashboard polling, and a last-known-good
// copy with a long TTL so the dashboard can still render something when a
// store scan fails.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

const lastKnownGoodTTL = 24 * time.Hour

func NewReportCache(redisURL string, ttl time.Duration) (*ReportCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &ReportCache{client: client, ttl: ttl}, nil
}

func freshKey(window string) string {
	return fmt.Sprintf("report:%s", window)
}

func staleKey(window string) string {
	return fmt.Sprintf("report_lkg:%s", window)
}

// SetReport caches a freshly computed report under both keys.
func (rc *ReportCache) SetReport(ctx context.Context, window string, report *model.AnalyticsReport) error {
	if report == nil {
		return fmt.Errorf("cannot cache nil report")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %v", err)
	}

	if err := rc.client.Set(ctx, freshKey(window), data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %v", err)
	}
	if err := rc.client.Set(ctx, staleKey(window), data, lastKnownGoodTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache last-known-good report: %v", err)
	}

	return nil
}

// GetReport returns the fresh cached report or (nil, nil) on a miss.
func (rc *ReportCache) GetReport(ctx context.Context, window string) (*model.AnalyticsReport, error) {
	return rc.get(ctx, freshKey(window))
}

// GetLastKnownGood returns the stale fallback report or (nil, nil) when
// none has ever been stored.
func (rc *ReportCache) GetLastKnownGood(ctx context.Context, window string) (*model.AnalyticsReport, error) {
	return rc.get(ctx, staleKey(window))
}

func (rc *ReportCache) get(ctx context.Context, key string) (*model.AnalyticsReport, error) {
	data, err := rc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report from cache: %v", err)
	}

	var report model.AnalyticsReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %v", err)
	}

	return &report, nil
}
