package usecase

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"webtraffic/middleware"
	"webtraffic/model"
)

// ErrInvalidEvent rejects malformed lifecycle submissions before they
// touch the store.
var ErrInvalidEvent = errors.New("invalid tracking event")

// SessionStore is the persistence boundary for session records.
type SessionStore interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	UpdateSession(ctx context.Context, sessionID string, mutate func(*model.Session)) error
	ScanRange(ctx context.Context, start, end time.Time) ([]*model.Session, error)
}

const lockStripes = 64

// SessionTracker applies lifecycle events to the store. Events for one
// session are serialized through a striped mutex so concurrent
// read-modify-writes cannot lose an update; events for different sessions
// proceed independently.
type SessionTracker struct {
	store SessionStore
	locks [lockStripes]sync.Mutex
}

func NewSessionTracker(store SessionStore) *SessionTracker {
	return &SessionTracker{store: store}
}

func (t *SessionTracker) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &t.locks[h.Sum32()%lockStripes]
}

// Apply validates and applies one lifecycle event. Updates and ends for
// unknown sessions are dropped silently: the client delivers events
// at-least-once over a lossy channel, so a stray event is expected noise,
// not an error.
func (t *SessionTracker) Apply(ctx context.Context, event model.TrackingEvent) error {
	if event.SessionID == "" {
		return fmt.Errorf("%w: missing session id", ErrInvalidEvent)
	}
	if event.Timestamp <= 0 {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidEvent)
	}

	mu := t.lockFor(event.SessionID)
	mu.Lock()
	defer mu.Unlock()

	switch event.Action {
	case model.ActionStart:
		return t.start(ctx, event)
	case model.ActionUpdate:
		return t.update(ctx, event)
	case model.ActionEnd:
		return t.end(ctx, event)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidEvent, event.Action)
	}
}

func (t *SessionTracker) start(ctx context.Context, event model.TrackingEvent) error {
	session := &model.Session{
		SessionID:    event.SessionID,
		StartTime:    event.Time(),
		LastActivity: event.Time(),
		PageURL:      event.PageURL,
		UserAgent:    event.UserAgent,
		IsActive:     true,
		Duration:     0,
		PageViews:    1,
		Bounced:      false,
	}

	if err := t.store.CreateSession(ctx, session); err != nil {
		return err
	}
	middleware.TrackSessionEvent(model.ActionStart)
	return nil
}

func (t *SessionTracker) update(ctx context.Context, event model.TrackingEvent) error {
	session, err := t.store.GetSession(ctx, event.SessionID)
	if err != nil {
		return err
	}
	if session == nil {
		middleware.TrackDroppedEvent()
		return nil
	}

	err = t.store.UpdateSession(ctx, event.SessionID, func(s *model.Session) {
		duration := int((event.Timestamp - s.StartTime.UnixMilli()) / 1000)
		if duration < 0 {
			// Client clocks drift; never report a negative duration.
			duration = 0
		}
		hasNavigated := event.PageURL != s.PageURL

		s.Duration = duration
		// Bounced reflects the most recent evaluation only: a bounced
		// session un-flips once it outlives the threshold or navigates.
		s.Bounced = duration < model.BounceThresholdSeconds && !hasNavigated
		if hasNavigated {
			s.PageViews++
		}
		s.LastActivity = event.Time()
		s.PageURL = event.PageURL
	})
	if err != nil {
		return err
	}
	middleware.TrackSessionEvent(model.ActionUpdate)
	return nil
}

func (t *SessionTracker) end(ctx context.Context, event model.TrackingEvent) error {
	session, err := t.store.GetSession(ctx, event.SessionID)
	if err != nil {
		return err
	}
	if session == nil {
		middleware.TrackDroppedEvent()
		return nil
	}

	err = t.store.UpdateSession(ctx, event.SessionID, func(s *model.Session) {
		endTime := event.Time()
		s.IsActive = false
		s.EndTime = &endTime
	})
	if err != nil {
		return err
	}
	middleware.TrackSessionEvent(model.ActionEnd)
	return nil
}
