package mongo

import (
	"context"
	"time"

	"github.com/marcohq/marco-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository is the append-only proctoring audit log. Records are
// write-once; there is no update or delete path.
type EventRepository interface {
	Append(ctx context.Context, e *models.ProctoringEvent) error
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.ProctoringEvent, error)
}

type eventRepo struct {
	col *mongo.Collection
}

func NewEventRepo(db *mongo.Database) EventRepository {
	return &eventRepo{col: db.Collection("proctoring_events")}
}

func (r *eventRepo) Append(ctx context.Context, e *models.ProctoringEvent) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, e)
	return err
}

func (r *eventRepo) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.ProctoringEvent, error) {
	if limit <= 0 {
		limit = 200
	}

	cur, err := r.col.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ProctoringEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
