package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/marcohq/marco-backend/internal/models"
	pgrepo "github.com/marcohq/marco-backend/internal/repositories/postgres"
	"github.com/marcohq/marco-backend/internal/storage"
	"github.com/marcohq/marco-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type CandidateService interface {
	Create(ctx context.Context, fullName, email, targetPosition string) (*models.Candidate, error)
	Get(ctx context.Context, id string) (*models.Candidate, error)
	// UploadResume stores the original file and records the extracted text,
	// skills, and embedding on the profile. Extraction itself happens
	// upstream; this layer only accepts its output.
	UploadResume(ctx context.Context, candidateID, fileName string, fileSize int, mimeType string, r io.Reader, resumeText string, skills []string, embedding []float32) (*models.ResumeFile, error)
}

type candidateService struct {
	repo     pgrepo.CandidateRepository
	files    pgrepo.ResumeFileRepository
	uploader storage.Uploader
}

func NewCandidateService(repo pgrepo.CandidateRepository, files pgrepo.ResumeFileRepository, uploader storage.Uploader) CandidateService {
	return &candidateService{repo: repo, files: files, uploader: uploader}
}

func (s *candidateService) Create(ctx context.Context, fullName, email, targetPosition string) (*models.Candidate, error) {
	const op = "CandidateService.Create"

	if fullName == "" || targetPosition == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "full_name and target_position are required", nil)
	}

	now := time.Now().UTC()
	row := &models.Candidate{
		ID:             uuid.NewString(),
		FullName:       fullName,
		Email:          email,
		TargetPosition: targetPosition,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create candidate", err)
	}
	return row, nil
}

func (s *candidateService) Get(ctx context.Context, id string) (*models.Candidate, error) {
	const op = "CandidateService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate id is required", nil)
	}
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "candidate not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get candidate", err)
	}
	return row, nil
}

func (s *candidateService) UploadResume(ctx context.Context, candidateID, fileName string, fileSize int, mimeType string, r io.Reader, resumeText string, skills []string, embedding []float32) (*models.ResumeFile, error) {
	const op = "CandidateService.UploadResume"

	if candidateID == "" || fileName == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id and file_name are required", nil)
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeInternal, op, "uploader is not configured", nil)
	}

	cand, err := s.repo.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "candidate not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get candidate", err)
	}

	objectName := fmt.Sprintf("resumes/%s/%s-%s", candidateID, uuid.NewString(), fileName)
	storedPath, err := s.uploader.Upload(ctx, objectName, mimeType, r)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload resume file", err)
	}

	row := &models.ResumeFile{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		FileName:    fileName,
		FilePath:    storedPath,
		FileSize:    fileSize,
		MimeType:    mimeType,
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.files.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist resume metadata", err)
	}

	if resumeText != "" {
		cand.ResumeText = resumeText
	}
	if len(skills) > 0 {
		cand.Skills = skills
	}
	if len(embedding) > 0 {
		vec := pgvector.NewVector(embedding)
		cand.ResumeEmbedding = &vec
	}
	cand.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, cand); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update candidate profile", err)
	}

	return row, nil
}
