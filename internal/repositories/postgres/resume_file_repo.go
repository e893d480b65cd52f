package postgres

import (
	"context"

	"github.com/marcohq/marco-backend/internal/models"
	"gorm.io/gorm"
)

type ResumeFileRepository interface {
	Insert(ctx context.Context, f *models.ResumeFile) error
	ListByCandidate(ctx context.Context, candidateID string) ([]models.ResumeFile, error)
}

type resumeFileRepo struct {
	db *gorm.DB
}

func NewResumeFileRepo(db *gorm.DB) ResumeFileRepository {
	return &resumeFileRepo{db: db}
}

func (r *resumeFileRepo) Insert(ctx context.Context, f *models.ResumeFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *resumeFileRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.ResumeFile, error) {
	var rows []models.ResumeFile
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("uploaded_at DESC").
		Find(&rows).Error
	return rows, err
}
