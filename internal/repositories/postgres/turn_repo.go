package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/marcohq/marco-backend/internal/models"
	"github.com/marcohq/marco-backend/internal/utils"
	"gorm.io/gorm"
)

type TurnRepository interface {
	Insert(ctx context.Context, t *models.Turn) error
	RecordAnswer(ctx context.Context, id, answerText string, answeredAt time.Time, audioDuration float64) error
	ListBySession(ctx context.Context, sessionID string) ([]models.Turn, error)
	GetByID(ctx context.Context, id string) (*models.Turn, error)
}

type turnRepo struct {
	db *gorm.DB
}

func NewTurnRepo(db *gorm.DB) TurnRepository {
	return &turnRepo{db: db}
}

func (r *turnRepo) Insert(ctx context.Context, t *models.Turn) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *turnRepo) RecordAnswer(ctx context.Context, id, answerText string, answeredAt time.Time, audioDuration float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Turn{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"answer_text":    answerText,
			"answered_at":    answeredAt,
			"audio_duration": audioDuration,
		}).Error
}

func (r *turnRepo) ListBySession(ctx context.Context, sessionID string) ([]models.Turn, error) {
	var rows []models.Turn
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_number ASC").
		Find(&rows).Error
	return rows, err
}

func (r *turnRepo) GetByID(ctx context.Context, id string) (*models.Turn, error) {
	var row models.Turn
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}
