package model

import "time"

// AnalyticsReport is the full dashboard payload for one time window.
type AnalyticsReport struct {
	Overview        Overview        `json:"overview"`
	DailySeries     []DailyStat     `json:"daily_series"`
	BounceHistogram []BounceBucket  `json:"bounce_histogram"`
	RecentSessions  []RecentSession `json:"recent_sessions"`
	Window          string          `json:"window"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

type Overview struct {
	TotalSessions  int    `json:"total_sessions"`
	UniqueVisitors int    `json:"unique_visitors"`
	AvgSessionTime string `json:"avg_session_time"` // "M:SS"
	BounceRate     string `json:"bounce_rate"`      // "N%"
	TotalPageViews int    `json:"total_page_views"`
	// ConversionRate has no real derivation yet; it stays null so consumers
	// can tell "not implemented" from "zero conversions".
	ConversionRate *string `json:"conversion_rate"`
}

// DailyStat is one local-calendar-day bucket of the time series.
type DailyStat struct {
	Name           string `json:"name"` // weekday short name, e.g. "Mon"
	Date           string `json:"date"` // "2006-01-02"
	Visits         int    `json:"visits"`
	UniqueVisitors int    `json:"unique_visitors"`
	AvgTime        int    `json:"avg_time"` // seconds
	BounceRate     int    `json:"bounce_rate"`
	PageViews      int    `json:"page_views"`
}

type BounceBucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// RecentSession is one row of the dashboard's recent-sessions table.
type RecentSession struct {
	ID        string    `json:"id"`
	Visitor   string    `json:"visitor"` // visitor ID, truncated for display
	PageViews int       `json:"page_views"`
	Duration  string    `json:"duration"` // "M:SS"
	Bounced   string    `json:"bounced"`  // "Yes" / "No"
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}
