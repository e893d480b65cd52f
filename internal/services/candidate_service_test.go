package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcohq/marco-backend/internal/models"
	"github.com/marcohq/marco-backend/internal/utils"
)

type candidateFixture struct {
	repo     *fakeCandidateRepo
	files    *fakeResumeFileRepo
	uploader *fakeUploader
	svc      CandidateService
}

func newCandidateFixture(t *testing.T) *candidateFixture {
	t.Helper()

	fx := &candidateFixture{
		repo:     newFakeCandidateRepo(),
		files:    &fakeResumeFileRepo{},
		uploader: newFakeUploader(),
	}
	fx.svc = NewCandidateService(fx.repo, fx.files, fx.uploader)
	return fx
}

func TestCandidateCreateLeavesEmbeddingNull(t *testing.T) {
	fx := newCandidateFixture(t)

	cand, err := fx.svc.Create(context.Background(), "Ada Example", "ada@example.com", "Backend Engineer")
	require.NoError(t, err)

	stored, err := fx.repo.GetByID(context.Background(), cand.ID)
	require.NoError(t, err)
	// The embedding column only accepts real vectors, so the profile must
	// carry NULL until one is supplied.
	assert.Nil(t, stored.ResumeEmbedding)
}

func TestUploadResumeStoresFileAndProfile(t *testing.T) {
	fx := newCandidateFixture(t)
	ctx := context.Background()

	cand, err := fx.svc.Create(ctx, "Ada Example", "ada@example.com", "Backend Engineer")
	require.NoError(t, err)

	embedding := []float32{0.1, -0.2, 0.3}
	row, err := fx.svc.UploadResume(ctx, cand.ID, "resume.pdf", 42, "application/pdf",
		strings.NewReader("pdf bytes"), "Backend engineer with Go.", []string{"go", "postgres"}, embedding)
	require.NoError(t, err)

	assert.Equal(t, cand.ID, row.CandidateID)
	assert.Equal(t, "resume.pdf", row.FileName)
	assert.Equal(t, 42, row.FileSize)
	assert.Contains(t, fx.uploader.objects, row.FilePath)

	stored, err := fx.repo.GetByID(ctx, cand.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend engineer with Go.", stored.ResumeText)
	assert.Equal(t, []string{"go", "postgres"}, []string(stored.Skills))
	require.NotNil(t, stored.ResumeEmbedding)
	assert.Equal(t, embedding, stored.ResumeEmbedding.Slice())
}

func TestUploadResumeWithoutEmbeddingKeepsNull(t *testing.T) {
	fx := newCandidateFixture(t)
	ctx := context.Background()

	cand, err := fx.svc.Create(ctx, "Ada Example", "", "Backend Engineer")
	require.NoError(t, err)

	_, err = fx.svc.UploadResume(ctx, cand.ID, "resume.pdf", 42, "application/pdf",
		strings.NewReader("pdf bytes"), "Backend engineer.", nil, nil)
	require.NoError(t, err)

	stored, err := fx.repo.GetByID(ctx, cand.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResumeEmbedding)
}

func TestUploadResumeUnknownCandidate(t *testing.T) {
	fx := newCandidateFixture(t)

	_, err := fx.svc.UploadResume(context.Background(), "nope", "resume.pdf", 1, "application/pdf",
		strings.NewReader("x"), "", nil, nil)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	var empty []models.ResumeFile
	assert.Equal(t, empty, fx.files.files)
}
