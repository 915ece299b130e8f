package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"webtraffic/model"
)

// MemorySessionRepo keeps sessions in a mutex-guarded map. It backs tests
// and single-process deployments (STORE_DRIVER=memory); records do not
// survive a restart.
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
}

func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{
		sessions: make(map[string]model.Session),
	}
}

func (r *MemorySessionRepo) CreateSession(_ context.Context, session *model.Session) error {
	if session == nil || session.SessionID == "" {
		return fmt.Errorf("invalid session data: missing session id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.SessionID]; ok {
		return fmt.Errorf("session %s: %w", session.SessionID, ErrDuplicateSession)
	}
	r.sessions[session.SessionID] = *session
	return nil
}

func (r *MemorySessionRepo) GetSession(_ context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (r *MemorySessionRepo) UpdateSession(_ context.Context, sessionID string, mutate func(*model.Session)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	mutate(&session)
	r.sessions[sessionID] = session
	return nil
}

func (r *MemorySessionRepo) ScanRange(_ context.Context, start, end time.Time) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []*model.Session
	for _, session := range r.sessions {
		if !session.StartTime.Before(start) && session.StartTime.Before(end) {
			s := session
			sessions = append(sessions, &s)
		}
	}
	return sessions, nil
}
