package postgres

import (
	"context"
	"errors"

	"github.com/marcohq/marco-backend/internal/models"
	"github.com/marcohq/marco-backend/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EvaluationRepository interface {
	Upsert(ctx context.Context, e *models.Evaluation) error
	GetBySession(ctx context.Context, sessionID string) (*models.Evaluation, error)
}

type evaluationRepo struct {
	db *gorm.DB
}

func NewEvaluationRepo(db *gorm.DB) EvaluationRepository {
	return &evaluationRepo{db: db}
}

func (r *evaluationRepo) Upsert(ctx context.Context, e *models.Evaluation) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			UpdateAll: true,
		}).
		Create(e).Error
}

func (r *evaluationRepo) GetBySession(ctx context.Context, sessionID string) (*models.Evaluation, error) {
	var row models.Evaluation
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}
