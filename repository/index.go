package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupIndexes creates the session collection indexes. The unique
// session_id index is what turns a replayed "start" into a duplicate-key
// signal instead of a second record. When retentionDays > 0 a TTL index on
// start_time lets Mongo expire old sessions; retention is otherwise left
// to the operator.
func SetupIndexes(db *mongo.Database, collectionName string, retentionDays int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sessionsCollection := db.Collection(collectionName)

	// Mongo allows only one index per key pattern, so the range-scan index
	// doubles as the TTL index when retention is enabled.
	startTimeOpts := options.Index().SetName("session_start_time")
	if retentionDays > 0 {
		startTimeOpts = startTimeOpts.SetExpireAfterSeconds(int32(retentionDays * 24 * 60 * 60))
	}

	sessionIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().
				SetName("session_id_unique").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "start_time", Value: 1}},
			Options: startTimeOpts,
		},
	}

	if _, err := sessionsCollection.Indexes().CreateMany(ctx, sessionIndexes); err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}

	log.Println("Successfully created all indexes")
	return nil
}
