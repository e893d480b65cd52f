package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/marcohq/marco-backend/internal/models"
	"github.com/marcohq/marco-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error)
	UpdateCounters(ctx context.Context, sessionID string, gazeViolations, tabSwitches, questionsAsked int) error
	// Terminate flips the session out of in_progress. It only matches documents
	// still in progress, so a concurrent second terminate is a no-op and the
	// first recorded reason wins. Returns whether this call did the flip.
	Terminate(ctx context.Context, sessionID, status, reason string, endedAt time.Time) (bool, error)
}

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{col: db.Collection("sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *sessionRepo) UpdateCounters(ctx context.Context, sessionID string, gazeViolations, tabSwitches, questionsAsked int) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "status": models.SessionInProgress},
		bson.M{"$set": bson.M{
			"gaze_violations": gazeViolations,
			"tab_switches":    tabSwitches,
			"questions_asked": questionsAsked,
		}},
	)
	return err
}

func (r *sessionRepo) Terminate(ctx context.Context, sessionID, status, reason string, endedAt time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "status": models.SessionInProgress},
		bson.M{"$set": bson.M{
			"status":             status,
			"termination_reason": reason,
			"ended_at":           endedAt.UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
