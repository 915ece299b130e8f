package config

import (
	"time"

	"webtraffic/utils"
)

type TrackingConfig struct {
	StoreDriver     string // "mongo" or "memory"
	RedisURL        string // empty disables the report cache
	ReportCacheTTL  time.Duration
	RetentionDays   int // 0 disables the TTL index
	RecentSessionsN int
	ShutdownTimeout time.Duration
}

func LoadTrackingConfig() TrackingConfig {
	return TrackingConfig{
		StoreDriver:     utils.GetEnvAsString("STORE_DRIVER", "mongo"),
		RedisURL:        utils.GetEnvAsString("REDIS_URL", ""),
		ReportCacheTTL:  utils.GetEnvAsDuration("REPORT_CACHE_TTL", 30*time.Second),
		RetentionDays:   utils.GetEnvAsInt("SESSION_RETENTION_DAYS", 0),
		RecentSessionsN: utils.GetEnvAsInt("RECENT_SESSIONS_LIMIT", 10),
		ShutdownTimeout: utils.GetEnvAsDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}
