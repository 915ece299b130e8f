package repository

import (
	"context"
	"fmt"
	"time"

	"webtraffic/middleware"
	"webtraffic/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const opTimeout = 10 * time.Second

// SessionRepo is the MongoDB-backed session store. One document per
// browsing session, keyed by session_id (unique index, see SetupIndexes).
type SessionRepo struct {
	MongoCollection *mongo.Collection
}

func GetSessionRepo(client *mongo.Client, dbName, collectionName string) *SessionRepo {
	return &SessionRepo{
		MongoCollection: client.Database(dbName).Collection(collectionName),
	}
}

func (r *SessionRepo) CreateSession(ctx context.Context, session *model.Session) error {
	timer := middleware.TrackDBOperation("insert", "sessions")
	defer timer.ObserveDuration()

	if session == nil || session.SessionID == "" {
		middleware.TrackError("database")
		return fmt.Errorf("invalid session data: missing session id")
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, session); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("session %s: %w", session.SessionID, ErrDuplicateSession)
		}
		middleware.TrackError("database")
		return fmt.Errorf("failed to create session: %w: %v", ErrStorageUnavailable, err)
	}

	return nil
}

// GetSession returns the session or (nil, nil) when no record exists.
func (r *SessionRepo) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	timer := middleware.TrackDBOperation("find", "sessions")
	defer timer.ObserveDuration()

	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var session model.Session
	err := r.MongoCollection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		middleware.TrackError("database")
		return nil, fmt.Errorf("failed to fetch session: %w: %v", ErrStorageUnavailable, err)
	}

	return &session, nil
}

// UpdateSession loads the record, applies mutate and writes it back.
// A missing record is a silent no-op: the client delivers events
// at-least-once and may report sessions this store never saw start.
// Callers are expected to serialize updates per session ID.
func (r *SessionRepo) UpdateSession(ctx context.Context, sessionID string, mutate func(*model.Session)) error {
	timer := middleware.TrackDBOperation("update", "sessions")
	defer timer.ObserveDuration()

	session, err := r.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	mutate(session)

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err = r.MongoCollection.ReplaceOne(ctx, bson.M{"session_id": sessionID}, session)
	if err != nil {
		middleware.TrackError("database")
		return fmt.Errorf("failed to update session: %w: %v", ErrStorageUnavailable, err)
	}

	return nil
}

// ScanRange returns every session with start <= startTime < end, in no
// particular order. Each call re-runs the scan.
func (r *SessionRepo) ScanRange(ctx context.Context, start, end time.Time) ([]*model.Session, error) {
	timer := middleware.TrackDBOperation("scan", "sessions")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.MongoCollection.Find(ctx, bson.M{
		"start_time": bson.M{"$gte": start, "$lt": end},
	})
	if err != nil {
		middleware.TrackError("database")
		return nil, fmt.Errorf("failed to scan sessions: %w: %v", ErrStorageUnavailable, err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		middleware.TrackError("database")
		return nil, fmt.Errorf("failed to decode sessions: %w: %v", ErrStorageUnavailable, err)
	}

	return sessions, nil
}
