package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcohq/marco-backend/internal/clock"
	"github.com/marcohq/marco-backend/internal/models"
	"github.com/marcohq/marco-backend/internal/providers/llm"
	"github.com/marcohq/marco-backend/internal/utils"
)

type evalFixture struct {
	sessions   *fakeSessionRepo
	turns      *fakeTurnRepo
	candidates *fakeCandidateRepo
	evals      *fakeEvaluationRepo
	gen        *scriptedGenerator
	svc        EvaluationService
}

func newEvalFixture(t *testing.T) *evalFixture {
	t.Helper()

	fx := &evalFixture{
		sessions:   newFakeSessionRepo(),
		turns:      &fakeTurnRepo{},
		candidates: newFakeCandidateRepo(),
		evals:      newFakeEvaluationRepo(),
		gen: &scriptedGenerator{
			evalOut: llm.Evaluation{
				OverallScore: 78,
				Subscores:    map[string]float64{"technical": 80, "clarity": 75, "relevance": 79},
				Strengths:    []string{"clear explanations"},
				Improvements: []string{"more depth on indexing"},
				Feedback:     "Solid performance overall.",
			},
		},
		svc: NewEvaluationService(nil, nil, nil, nil, testInterviewConfig(), clock.NewManual(testStart), nil),
	}

	impl := fx.svc.(*evaluationService)
	impl.sessions = fx.sessions
	impl.turns = fx.turns
	impl.candidates = fx.candidates
	impl.evals = fx.evals
	impl.newGenerator = scriptedFactory(fx.gen)

	require.NoError(t, fx.candidates.Insert(context.Background(), &models.Candidate{
		ID:         "cand-1",
		FullName:   "Ada Example",
		ResumeText: "Backend engineer.",
	}))
	return fx
}

func (fx *evalFixture) seedSession(t *testing.T, status string, answered bool) string {
	t.Helper()
	ctx := context.Background()

	ended := testStart.Add(20 * time.Minute)
	sess := &models.Session{
		SessionID:         "sess-1",
		CandidateID:       "cand-1",
		Status:            status,
		TerminationReason: models.ReasonCompleted,
		StartedAt:         testStart,
	}
	if status != models.SessionInProgress {
		sess.EndedAt = &ended
	}
	require.NoError(t, fx.sessions.Create(ctx, sess))

	turn := &models.Turn{
		ID:             "turn-1",
		SessionID:      "sess-1",
		QuestionNumber: 1,
		QuestionText:   "Why Go?",
		AskedAt:        testStart,
	}
	require.NoError(t, fx.turns.Insert(ctx, turn))
	if answered {
		require.NoError(t, fx.turns.RecordAnswer(ctx, "turn-1", "Concurrency model.", testStart.Add(time.Minute), 30))
	}
	return sess.SessionID
}

func TestEvaluationGenerate(t *testing.T) {
	fx := newEvalFixture(t)
	id := fx.seedSession(t, models.SessionCompleted, true)

	row, err := fx.svc.Generate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, row.SessionID)
	assert.Equal(t, 78.0, row.OverallScore)
	assert.Equal(t, "Solid performance overall.", row.Feedback)

	stored, err := fx.evals.GetBySession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, row.OverallScore, stored.OverallScore)
}

func TestEvaluationRejectsInProgressSession(t *testing.T) {
	fx := newEvalFixture(t)
	id := fx.seedSession(t, models.SessionInProgress, true)

	_, err := fx.svc.Generate(context.Background(), id)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidState))
}

func TestEvaluationNeedsAnsweredTurns(t *testing.T) {
	fx := newEvalFixture(t)
	id := fx.seedSession(t, models.SessionCompleted, false)

	_, err := fx.svc.Generate(context.Background(), id)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidState))
}

func TestEvaluationGeneratorFailureIsRetryable(t *testing.T) {
	fx := newEvalFixture(t)
	id := fx.seedSession(t, models.SessionCompleted, true)
	fx.gen.evalErr = errScriptedFailure

	_, err := fx.svc.Generate(context.Background(), id)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
	assert.Equal(t, 2, fx.gen.evalCalls, "timeout-and-one-retry contract")

	_, err = fx.evals.GetBySession(context.Background(), id)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestEvaluationGetUnknownSession(t *testing.T) {
	fx := newEvalFixture(t)
	_, err := fx.svc.Get(context.Background(), "nope")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}
