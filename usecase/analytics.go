package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"webtraffic/middleware"
	"webtraffic/model"
	"webtraffic/utils"
)

// ErrQueryFailed signals that an aggregation could not complete. No
// partial report is ever returned alongside it.
var ErrQueryFailed = errors.New("analytics query failed")

// AnalyticsService derives dashboard metrics from the session store. It
// only reads; session records are never mutated here.
type AnalyticsService struct {
	store       SessionStore
	recentLimit int

	// now is swapped out in tests for deterministic windows.
	now func() time.Time
}

func NewAnalyticsService(store SessionStore, recentLimit int) *AnalyticsService {
	if recentLimit <= 0 {
		recentLimit = 10
	}
	return &AnalyticsService{
		store:       store,
		recentLimit: recentLimit,
		now:         time.Now,
	}
}

// WindowDays maps a window name to its lookback in days. Anything
// unrecognized falls back to a single day, matching the dashboard's
// historical behavior.
func WindowDays(window string) int {
	switch window {
	case "7d":
		return 7
	case "30d":
		return 30
	default:
		return 1
	}
}

// Aggregate scans the window's sessions and builds the full report:
// overview totals, a per-local-calendar-day series (zero days included),
// the bounce histogram, and the ten most recent sessions.
func (s *AnalyticsService) Aggregate(ctx context.Context, window string) (*model.AnalyticsReport, error) {
	now := s.now()
	days := WindowDays(window)
	windowStart := now.Add(-time.Duration(days) * 24 * time.Hour)

	// The scan has no upper cut: sessions stamped ahead of server time by
	// a skewed client clock still count toward the overview totals, even
	// when they land past every daily bucket.
	sessions, err := s.store.ScanRange(ctx, windowStart, now.AddDate(100, 0, 0))
	if err != nil {
		middleware.TrackAnalyticsQuery(window, "error")
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	report := &model.AnalyticsReport{
		Overview:        buildOverview(sessions),
		DailySeries:     buildDailySeries(sessions, now, days),
		BounceHistogram: buildBounceHistogram(sessions),
		RecentSessions:  buildRecentSessions(sessions, s.recentLimit),
		Window:          window,
		GeneratedAt:     now,
	}

	middleware.TrackAnalyticsQuery(window, "ok")
	return report, nil
}

func buildOverview(sessions []*model.Session) model.Overview {
	totalSessions := len(sessions)
	visitors := make(map[string]struct{})
	totalDuration, bounced, totalPageViews := 0, 0, 0

	for _, s := range sessions {
		visitors[s.VisitorID()] = struct{}{}
		totalDuration += s.Duration
		if s.Bounced {
			bounced++
		}
		totalPageViews += s.PageViews
	}

	return model.Overview{
		TotalSessions:  totalSessions,
		UniqueVisitors: len(visitors),
		AvgSessionTime: utils.FormatClock(roundedMean(totalDuration, totalSessions)),
		BounceRate:     utils.FormatPercent(roundedRate(bounced, totalSessions)),
		TotalPageViews: totalPageViews,
		ConversionRate: nil, // no conversion tracking yet
	}
}

func buildDailySeries(sessions []*model.Session, now time.Time, days int) []model.DailyStat {
	series := make([]model.DailyStat, 0, days)

	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		dayEnd := dayStart.Add(24 * time.Hour)

		visitors := make(map[string]struct{})
		visits, duration, bounced, pageViews := 0, 0, 0, 0
		for _, s := range sessions {
			if s.StartTime.Before(dayStart) || !s.StartTime.Before(dayEnd) {
				continue
			}
			visits++
			visitors[s.VisitorID()] = struct{}{}
			duration += s.Duration
			if s.Bounced {
				bounced++
			}
			pageViews += s.PageViews
		}

		series = append(series, model.DailyStat{
			Name:           dayStart.Format("Mon"),
			Date:           dayStart.Format("2006-01-02"),
			Visits:         visits,
			UniqueVisitors: len(visitors),
			AvgTime:        roundedMean(duration, visits),
			BounceRate:     roundedRate(bounced, visits),
			PageViews:      pageViews,
		})
	}

	return series
}

func buildBounceHistogram(sessions []*model.Session) []model.BounceBucket {
	low, medium, high := 0, 0, 0
	for _, s := range sessions {
		switch {
		case s.Bounced:
			high++
		case s.Duration > 120:
			low++
		case s.Duration > model.BounceThresholdSeconds:
			medium++
		}
		// Non-bounced sessions of 30s or less land in no bucket. The
		// dashboard chart has always rendered it that way, so the gap is
		// kept rather than silently reshaping historical graphs.
	}

	return []model.BounceBucket{
		{Name: "Low (0-20%)", Value: low},
		{Name: "Medium (21-40%)", Value: medium},
		{Name: "High (41%+)", Value: high},
	}
}

func buildRecentSessions(sessions []*model.Session, limit int) []model.RecentSession {
	sorted := make([]*model.Session, len(sessions))
	copy(sorted, sessions)

	// Newest first; ties broken by session ID so repeated queries over the
	// same data list the same rows in the same order.
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].StartTime.After(sorted[j].StartTime)
		}
		return sorted[i].SessionID < sorted[j].SessionID
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	recent := make([]model.RecentSession, 0, len(sorted))
	for _, s := range sorted {
		browser, os, device := utils.ParseUserAgent(s.UserAgent)
		bounced := "No"
		if s.Bounced {
			bounced = "Yes"
		}
		recent = append(recent, model.RecentSession{
			ID:        s.SessionID,
			Visitor:   utils.TruncateVisitor(s.VisitorID()),
			PageViews: s.PageViews,
			Duration:  utils.FormatClock(s.Duration),
			Bounced:   bounced,
			Browser:   browser,
			OS:        os,
			Device:    device,
			Timestamp: s.StartTime,
		})
	}

	return recent
}

func roundedMean(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

func roundedRate(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
