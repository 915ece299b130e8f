package model

import (
	"strings"
	"time"
)

// Lifecycle actions emitted by the tracking client.
const (
	ActionStart  = "start"
	ActionUpdate = "update"
	ActionEnd    = "end"
)

// BounceThresholdSeconds is the engagement cutoff: a session shorter than
// this with no navigation counts as bounced.
const BounceThresholdSeconds = 30

type Session struct {
	SessionID    string     `bson:"session_id" json:"session_id"`
	StartTime    time.Time  `bson:"start_time" json:"start_time"`
	LastActivity time.Time  `bson:"last_activity" json:"last_activity"`
	EndTime      *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`
	PageURL      string     `bson:"page_url" json:"page_url"`
	UserAgent    string     `bson:"user_agent" json:"user_agent"`
	IsActive     bool       `bson:"is_active" json:"is_active"`
	Duration     int        `bson:"duration" json:"duration"` // seconds
	PageViews    int        `bson:"page_views" json:"page_views"`
	Bounced      bool       `bson:"bounced" json:"bounced"`
}

// VisitorID returns the stable visitor identity encoded in the session ID.
// Session IDs are composed client-side as "<visitorId>-<epochMs>".
func (s *Session) VisitorID() string {
	return VisitorIDFromSession(s.SessionID)
}

func VisitorIDFromSession(sessionID string) string {
	if i := strings.Index(sessionID, "-"); i >= 0 {
		return sessionID[:i]
	}
	return sessionID
}

// TrackingEvent is one lifecycle signal from the client.
type TrackingEvent struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	PageURL   string `json:"page_url"`
	UserAgent string `json:"user_agent"`
}

// Time converts the event's epoch-ms timestamp to time.Time.
func (e *TrackingEvent) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}
