package postgres

import (
	"context"
	"errors"

	"github.com/marcohq/marco-backend/internal/models"
	"github.com/marcohq/marco-backend/internal/utils"
	"gorm.io/gorm"
)

type CandidateRepository interface {
	Insert(ctx context.Context, c *models.Candidate) error
	GetByID(ctx context.Context, id string) (*models.Candidate, error)
	Update(ctx context.Context, c *models.Candidate) error
}

type candidateRepo struct {
	db *gorm.DB
}

func NewCandidateRepo(db *gorm.DB) CandidateRepository {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) Insert(ctx context.Context, c *models.Candidate) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *candidateRepo) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	var row models.Candidate
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *candidateRepo) Update(ctx context.Context, c *models.Candidate) error {
	return r.db.WithContext(ctx).Save(c).Error
}
