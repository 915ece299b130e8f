package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"webtraffic/model"
	"webtraffic/repository"
)

// failingStore errors on every operation, standing in for a store whose
// backend is unreachable.
type failingStore struct{}

func (failingStore) CreateSession(context.Context, *model.Session) error {
	return errors.New("store unreachable")
}

func (failingStore) GetSession(context.Context, string) (*model.Session, error) {
	return nil, errors.New("store unreachable")
}

func (failingStore) UpdateSession(context.Context, string, func(*model.Session)) error {
	return errors.New("store unreachable")
}

func (failingStore) ScanRange(context.Context, time.Time, time.Time) ([]*model.Session, error) {
	return nil, errors.New("store unreachable")
}

// fixedNow keeps daily buckets deterministic: mid-afternoon local time so
// same-day fixtures never straddle a midnight boundary.
var fixedNow = time.Date(2026, time.August, 31, 15, 0, 0, 0, time.Local)

func newTestAnalytics(store SessionStore) *AnalyticsService {
	svc := NewAnalyticsService(store, 10)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func seedSession(t *testing.T, store SessionStore, sessionID string, start time.Time, duration, pageViews int, bounced bool) {
	t.Helper()
	err := store.CreateSession(context.Background(), &model.Session{
		SessionID:    sessionID,
		StartTime:    start,
		LastActivity: start.Add(time.Duration(duration) * time.Second),
		PageURL:      "https://example.com/",
		UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.131 Safari/537.36",
		IsActive:     true,
		Duration:     duration,
		PageViews:    pageViews,
		Bounced:      bounced,
	})
	if err != nil {
		t.Fatal("seeding session failed:", err)
	}
}

func TestAggregateEmptyWindow(t *testing.T) {
	svc := newTestAnalytics(repository.NewMemorySessionRepo())

	report, err := svc.Aggregate(context.Background(), "7d")
	if err != nil {
		t.Fatal("aggregate over empty store failed:", err)
	}

	if report.Overview.TotalSessions != 0 {
		t.Errorf("TotalSessions = %d, want 0", report.Overview.TotalSessions)
	}
	if report.Overview.AvgSessionTime != "0:00" {
		t.Errorf("AvgSessionTime = %q, want \"0:00\"", report.Overview.AvgSessionTime)
	}
	if report.Overview.BounceRate != "0%" {
		t.Errorf("BounceRate = %q, want \"0%%\"", report.Overview.BounceRate)
	}
	if report.Overview.ConversionRate != nil {
		t.Errorf("ConversionRate = %v, want nil", *report.Overview.ConversionRate)
	}
	if len(report.RecentSessions) != 0 {
		t.Errorf("RecentSessions has %d entries, want 0", len(report.RecentSessions))
	}
	if len(report.DailySeries) != 7 {
		t.Fatalf("DailySeries has %d entries, want 7", len(report.DailySeries))
	}
	for i, day := range report.DailySeries {
		if day.Visits != 0 {
			t.Errorf("day %d Visits = %d, want 0", i, day.Visits)
		}
	}
}

func TestAggregateOverview(t *testing.T) {
	store := repository.NewMemorySessionRepo()
	svc := newTestAnalytics(store)

	// Three sessions, two visitors. Durations 30+60+90 average to 60s.
	seedSession(t, store, "alice-1", fixedNow.Add(-1*time.Hour), 30, 1, true)
	seedSession(t, store, "alice-2", fixedNow.Add(-2*time.Hour), 60, 3, false)
	seedSession(t, store, "bob-1", fixedNow.Add(-3*time.Hour), 90, 2, false)

	report, err := svc.Aggregate(context.Background(), "1d")
	if err != nil {
		t.Fatal("aggregate failed:", err)
	}

	ov := report.Overview
	if ov.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d, want 3", ov.TotalSessions)
	}
	if ov.UniqueVisitors != 2 {
		t.Errorf("UniqueVisitors = %d, want 2", ov.UniqueVisitors)
	}
	if ov.AvgSessionTime != "1:00" {
		t.Errorf("AvgSessionTime = %q, want \"1:00\"", ov.AvgSessionTime)
	}
	if ov.BounceRate != "33%" {
		t.Errorf("BounceRate = %q, want \"33%%\"", ov.BounceRate)
	}
	if ov.TotalPageViews != 6 {
		t.Errorf("TotalPageViews = %d, want 6", ov.TotalPageViews)
	}
}

func TestAggregateDailySeries(t *testing.T) {
	store := repository.NewMemorySessionRepo()
	svc := newTestAnalytics(store)

	// Same visitor twice in one calendar day, two hours apart.
	today := time.Date(fixedNow.Year(), fixedNow.Month(), fixedNow.Day(), 9, 0, 0, 0, time.Local)
	seedSession(t, store, "carol-1", today, 45, 2, false)
	seedSession(t, store, "carol-2", today.Add(2*time.Hour), 15, 1, true)

	// One session three days back.
	seedSession(t, store, "dave-1", fixedNow.AddDate(0, 0, -3), 120, 4, false)

	report, err := svc.Aggregate(context.Background(), "7d")
	if err != nil {
		t.Fatal("aggregate failed:", err)
	}

	if len(report.DailySeries) != 7 {
		t.Fatalf("DailySeries has %d entries, want 7", len(report.DailySeries))
	}

	// Oldest first: the last entry is today.
	todayStat := report.DailySeries[6]
	if todayStat.Visits != 2 {
		t.Errorf("today Visits = %d, want 2", todayStat.Visits)
	}
	if todayStat.UniqueVisitors != 1 {
		t.Errorf("today UniqueVisitors = %d, want 1", todayStat.UniqueVisitors)
	}
	if todayStat.AvgTime != 30 {
		t.Errorf("today AvgTime = %d, want 30", todayStat.AvgTime)
	}
	if todayStat.BounceRate != 50 {
		t.Errorf("today BounceRate = %d, want 50", todayStat.BounceRate)
	}
	if todayStat.PageViews != 3 {
		t.Errorf("today PageViews = %d, want 3", todayStat.PageViews)
	}
	if want := fixedNow.Format("Mon"); todayStat.Name != want {
		t.Errorf("today Name = %q, want %q", todayStat.Name, want)
	}

	threeDaysBack := report.DailySeries[3]
	if threeDaysBack.Visits != 1 {
		t.Errorf("day -3 Visits = %d, want 1", threeDaysBack.Visits)
	}

	for i, day := range report.DailySeries {
		if i == 3 || i == 6 {
			continue
		}
		if day.Visits != 0 {
			t.Errorf("day %d Visits = %d, want 0", i, day.Visits)
		}
	}
}

func TestAggregateBounceHistogram(t *testing.T) {
	store := repository.NewMemorySessionRepo()
	svc := newTestAnalytics(store)

	seedSession(t, store, "v1-1", fixedNow.Add(-1*time.Hour), 150, 3, false) // Low
	seedSession(t, store, "v2-1", fixedNow.Add(-1*time.Hour), 60, 2, false)  // Medium
	seedSession(t, store, "v3-1", fixedNow.Add(-1*time.Hour), 10, 1, true)   // High
	// Engaged-but-brief: not bounced, 20s. Falls into no bucket; the
	// dashboard chart has always excluded these.
	seedSession(t, store, "v4-1", fixedNow.Add(-1*time.Hour), 20, 2, false)

	report, err := svc.Aggregate(context.Background(), "1d")
	if err != nil {
		t.Fatal("aggregate failed:", err)
	}

	if len(report.BounceHistogram) != 3 {
		t.Fatalf("BounceHistogram has %d buckets, want 3", len(report.BounceHistogram))
	}

	wantValues := []int{1, 1, 1}
	total := 0
	for i, bucket := range report.BounceHistogram {
		if bucket.Value != wantValues[i] {
			t.Errorf("bucket %q = %d, want %d", bucket.Name, bucket.Value, wantValues[i])
		}
		total += bucket.Value
	}
	if total != 3 {
		t.Errorf("histogram covers %d of 4 sessions, want 3 (short engaged sessions excluded)", total)
	}
}

func TestAggregateRecentSessions(t *testing.T) {
	store := repository.NewMemorySessionRepo()
	svc := newTestAnalytics(store)

	for i := 0; i < 12; i++ {
		start := fixedNow.Add(-time.Duration(i+1) * time.Minute)
		seedSession(t, store, "visitor0000-"+start.Format("150405"), start, 65, 2, false)
	}

	report, err := svc.Aggregate(context.Background(), "1d")
	if err != nil {
		t.Fatal("aggregate failed:", err)
	}

	if len(report.RecentSessions) != 10 {
		t.Fatalf("RecentSessions has %d entries, want 10", len(report.RecentSessions))
	}

	for i := 1; i < len(report.RecentSessions); i++ {
		if report.RecentSessions[i].Timestamp.After(report.RecentSessions[i-1].Timestamp) {
			t.Errorf("RecentSessions not sorted newest-first at index %d", i)
		}
	}

	first := report.RecentSessions[0]
	if first.Visitor != "visitor0" {
		t.Errorf("Visitor = %q, want 8-char prefix \"visitor0\"", first.Visitor)
	}
	if first.Duration != "1:05" {
		t.Errorf("Duration = %q, want \"1:05\"", first.Duration)
	}
	if first.Bounced != "No" {
		t.Errorf("Bounced = %q, want \"No\"", first.Bounced)
	}
	if first.Browser != "Chrome" {
		t.Errorf("Browser = %q, want \"Chrome\"", first.Browser)
	}
}

func TestAggregateRecentSessionsTieBreak(t *testing.T) {
	store := repository.NewMemorySessionRepo()
	svc := newTestAnalytics(store)

	start := fixedNow.Add(-10 * time.Minute)
	seedSession(t, store, "zed-100", start, 40, 1, false)
	seedSession(t, store, "amy-100", start, 40, 1, false)

	report, err := svc.Aggregate(context.Background(), "1d")
	if err != nil {
		t.Fatal("aggregate failed:", err)
	}

	if report.RecentSessions[0].ID != "amy-100" || report.RecentSessions[1].ID != "zed-100" {
		t.Errorf("tie not broken by session ID: got %q, %q",
			report.RecentSessions[0].ID, report.RecentSessions[1].ID)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	store := repository.NewMemorySessionRepo()
	svc := newTestAnalytics(store)

	seedSession(t, store, "v1-1", fixedNow.Add(-1*time.Hour), 45, 2, false)
	seedSession(t, store, "v2-1", fixedNow.Add(-30*time.Hour), 10, 1, true)

	first, err := svc.Aggregate(context.Background(), "7d")
	if err != nil {
		t.Fatal("first aggregate failed:", err)
	}
	second, err := svc.Aggregate(context.Background(), "7d")
	if err != nil {
		t.Fatal("second aggregate failed:", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("aggregate is not idempotent over unchanged data")
	}
}

func TestAggregateScanFailure(t *testing.T) {
	svc := newTestAnalytics(failingStore{})

	report, err := svc.Aggregate(context.Background(), "7d")
	if !errors.Is(err, ErrQueryFailed) {
		t.Errorf("err = %v, want ErrQueryFailed", err)
	}
	if report != nil {
		t.Errorf("report = %+v, want nil when the scan fails", report)
	}
}

func TestAggregateFutureStampedSession(t *testing.T) {
	store := repository.NewMemorySessionRepo()
	svc := newTestAnalytics(store)

	seedSession(t, store, "now-1", fixedNow.Add(-1*time.Hour), 40, 1, false)
	// Client clock running three days fast.
	seedSession(t, store, "fast-1", fixedNow.Add(72*time.Hour), 40, 1, false)

	report, err := svc.Aggregate(context.Background(), "1d")
	if err != nil {
		t.Fatal("aggregate failed:", err)
	}

	if report.Overview.TotalSessions != 2 {
		t.Errorf("TotalSessions = %d, want 2 (future-stamped session counted)", report.Overview.TotalSessions)
	}

	// The future session has no daily bucket to land in.
	visits := 0
	for _, day := range report.DailySeries {
		visits += day.Visits
	}
	if visits != 1 {
		t.Errorf("daily visits total = %d, want 1", visits)
	}
}

func TestAggregateWindowFiltering(t *testing.T) {
	store := repository.NewMemorySessionRepo()
	svc := newTestAnalytics(store)

	seedSession(t, store, "in-1", fixedNow.Add(-2*time.Hour), 40, 1, false)
	seedSession(t, store, "out-1", fixedNow.Add(-48*time.Hour), 40, 1, false)

	report, err := svc.Aggregate(context.Background(), "1d")
	if err != nil {
		t.Fatal("aggregate failed:", err)
	}
	if report.Overview.TotalSessions != 1 {
		t.Errorf("1d window TotalSessions = %d, want 1", report.Overview.TotalSessions)
	}

	report, err = svc.Aggregate(context.Background(), "7d")
	if err != nil {
		t.Fatal("aggregate failed:", err)
	}
	if report.Overview.TotalSessions != 2 {
		t.Errorf("7d window TotalSessions = %d, want 2", report.Overview.TotalSessions)
	}
}

func TestWindowDays(t *testing.T) {
	tests := []struct {
		window string
		want   int
	}{
		{"1d", 1},
		{"7d", 7},
		{"30d", 30},
		{"", 1},
		{"90d", 1}, // unknown windows collapse to a single day
	}

	for _, tt := range tests {
		if got := WindowDays(tt.window); got != tt.want {
			t.Errorf("WindowDays(%q) = %d, want %d", tt.window, got, tt.want)
		}
	}
}
