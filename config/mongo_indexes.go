package config

import (
	"context"
	"errors"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func MongoDBName() string {
	if v := os.Getenv("MONGO_DB"); v != "" {
		return v
	}
	return "marco_interviews"
}

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}

	db := MongoClient.Database(MongoDBName())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// proctoring_events: append-only log, read back in timestamp order
	events := db.Collection("proctoring_events")
	_, err := events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("by_session_ts"),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "type", Value: 1}},
			Options: options.Index().SetName("by_session_type"),
		},
	})
	if err != nil {
		return err
	}

	// sessions indexes
	sessions := db.Collection("sessions")
	_, err = sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_session_id").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "candidate_id", Value: 1}, {Key: "started_at", Value: -1}},
			Options: options.Index().SetName("by_candidate_started"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("by_status"),
		},
	})
	return err
}
