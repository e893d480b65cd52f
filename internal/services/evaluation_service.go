package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/marcohq/marco-backend/config"
	"github.com/marcohq/marco-backend/internal/clock"
	"github.com/marcohq/marco-backend/internal/models"
	"github.com/marcohq/marco-backend/internal/providers/llm"
	mongorepo "github.com/marcohq/marco-backend/internal/repositories/mongo"
	pgrepo "github.com/marcohq/marco-backend/internal/repositories/postgres"
	"github.com/marcohq/marco-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type EvaluationService interface {
	Generate(ctx context.Context, sessionID string) (*models.Evaluation, error)
	Get(ctx context.Context, sessionID string) (*models.Evaluation, error)
}

type evaluationService struct {
	sessions   mongorepo.SessionRepository
	turns      pgrepo.TurnRepository
	candidates pgrepo.CandidateRepository
	evals      pgrepo.EvaluationRepository

	newGenerator GeneratorFactory
	cfg          config.Interview
	clk          clock.Clock
	log          *logrus.Logger
}

func NewEvaluationService(
	sessions mongorepo.SessionRepository,
	turns pgrepo.TurnRepository,
	candidates pgrepo.CandidateRepository,
	evals pgrepo.EvaluationRepository,
	cfg config.Interview,
	clk clock.Clock,
	log *logrus.Logger,
) EvaluationService {
	if clk == nil {
		clk = clock.Real()
	}
	if log == nil {
		log = logrus.New()
	}
	return &evaluationService{
		sessions:     sessions,
		turns:        turns,
		candidates:   candidates,
		evals:        evals,
		newGenerator: llm.New,
		cfg:          cfg,
		clk:          clk,
		log:          log,
	}
}

// Generate produces the final AI evaluation for an ended session. The
// generator is rebuilt from the session's sealed credentials, so it works
// after a restart. Transient generator failures surface as retryable errors;
// nothing about the session changes on failure.
func (s *evaluationService) Generate(ctx context.Context, sessionID string) (*models.Evaluation, error) {
	const op = "EvaluationService.Generate"

	sess, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}
	if !sess.Terminal() {
		return nil, utils.E(utils.CodeInvalidState, op, "session is still in progress", nil)
	}

	turns, err := s.turns.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load turns", err)
	}

	contexts := make([]llm.TurnContext, 0, len(turns))
	for _, t := range turns {
		if !t.Answered() {
			continue
		}
		contexts = append(contexts, llm.TurnContext{Question: t.QuestionText, Answer: *t.AnswerText})
	}
	if len(contexts) == 0 {
		return nil, utils.E(utils.CodeInvalidState, op, "no answered questions to evaluate", nil)
	}

	cand, err := s.candidates.GetByID(ctx, sess.CandidateID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load candidate", err)
	}

	apiKey := ""
	if sess.Provider.SealedAPIKey != "" {
		apiKey, err = utils.OpenString(os.Getenv("CREDENTIALS_SECRET"), sess.Provider.SealedAPIKey)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to unseal provider credentials", err)
		}
	}
	gen, err := s.newGenerator(ctx, llm.Config{
		Provider: sess.Provider.Name,
		APIKey:   apiKey,
		Model:    sess.Provider.Model,
		BaseURL:  sess.Provider.BaseURL,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to initialize llm provider", err)
	}
	defer gen.Close()

	in := llm.EvaluationInput{
		CandidateName: cand.FullName,
		ResumeSummary: cand.ResumeText,
		Turns:         contexts,
	}
	result, err := generateEvaluation(ctx, gen, in, s.cfg.GenerationTimeout, s.log.WithField("session_id", sessionID))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "evaluation generation unavailable", err)
	}

	subscores, err := json.Marshal(result.Subscores)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode subscores", err)
	}

	row := &models.Evaluation{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		OverallScore: result.OverallScore,
		Subscores:    subscores,
		Strengths:    result.Strengths,
		Improvements: result.Improvements,
		Feedback:     result.Feedback,
		CreatedAt:    s.clk.Now(),
	}
	if err := s.evals.Upsert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist evaluation", err)
	}

	s.log.WithFields(logrus.Fields{
		"session_id":    sessionID,
		"overall_score": row.OverallScore,
	}).Info("evaluation generated")
	return row, nil
}

func (s *evaluationService) Get(ctx context.Context, sessionID string) (*models.Evaluation, error) {
	const op = "EvaluationService.Get"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	row, err := s.evals.GetBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "evaluation not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load evaluation", err)
	}
	return row, nil
}
