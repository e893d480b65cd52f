package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/marcohq/marco-backend/internal/models"
	"github.com/marcohq/marco-backend/internal/providers/llm"
	"github.com/marcohq/marco-backend/internal/utils"
)

// In-memory repository fakes mirroring the store-level contracts, including
// the conditional terminate that makes the first recorded reason win.

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]models.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.SessionID] = *s
	return nil
}

func (r *fakeSessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	out := s
	return &out, nil
}

func (r *fakeSessionRepo) UpdateCounters(ctx context.Context, sessionID string, gazeViolations, tabSwitches, questionsAsked int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.Status != models.SessionInProgress {
		return nil
	}
	s.GazeViolations = gazeViolations
	s.TabSwitches = tabSwitches
	s.QuestionsAsked = questionsAsked
	r.sessions[sessionID] = s
	return nil
}

func (r *fakeSessionRepo) Terminate(ctx context.Context, sessionID, status, reason string, endedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.Status != models.SessionInProgress {
		return false, nil
	}
	s.Status = status
	s.TerminationReason = reason
	ended := endedAt.UTC()
	s.EndedAt = &ended
	r.sessions[sessionID] = s
	return true, nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []models.ProctoringEvent
}

func (r *fakeEventRepo) Append(ctx context.Context, e *models.ProctoringEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return nil
}

func (r *fakeEventRepo) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.ProctoringEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ProctoringEvent
	for _, e := range r.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) countByType(sessionID, evType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.SessionID == sessionID && e.Type == evType {
			n++
		}
	}
	return n
}

type fakeTurnRepo struct {
	mu    sync.Mutex
	turns []models.Turn
}

func (r *fakeTurnRepo) Insert(ctx context.Context, t *models.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, *t)
	return nil
}

func (r *fakeTurnRepo) RecordAnswer(ctx context.Context, id, answerText string, answeredAt time.Time, audioDuration float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.turns {
		if r.turns[i].ID == id {
			text := answerText
			at := answeredAt
			r.turns[i].AnswerText = &text
			r.turns[i].AnsweredAt = &at
			r.turns[i].AudioDuration = audioDuration
			return nil
		}
	}
	return utils.ErrNotFound
}

func (r *fakeTurnRepo) ListBySession(ctx context.Context, sessionID string) ([]models.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Turn
	for _, t := range r.turns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTurnRepo) GetByID(ctx context.Context, id string) (*models.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.turns {
		if t.ID == id {
			out := t
			return &out, nil
		}
	}
	return nil, utils.ErrNotFound
}

type fakeCandidateRepo struct {
	mu         sync.Mutex
	candidates map[string]models.Candidate
}

func newFakeCandidateRepo() *fakeCandidateRepo {
	return &fakeCandidateRepo{candidates: make(map[string]models.Candidate)}
}

func (r *fakeCandidateRepo) Insert(ctx context.Context, c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates[c.ID] = *c
	return nil
}

func (r *fakeCandidateRepo) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	out := c
	return &out, nil
}

func (r *fakeCandidateRepo) Update(ctx context.Context, c *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates[c.ID] = *c
	return nil
}

type fakeResumeFileRepo struct {
	mu    sync.Mutex
	files []models.ResumeFile
}

func (r *fakeResumeFileRepo) Insert(ctx context.Context, f *models.ResumeFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, *f)
	return nil
}

func (r *fakeResumeFileRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.ResumeFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ResumeFile
	for _, f := range r.files {
		if f.CandidateID == candidateID {
			out = append(out, f)
		}
	}
	return out, nil
}

// fakeUploader records the object key and body it was handed.
type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string][]byte)}
}

func (u *fakeUploader) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[objectName] = b
	return objectName, nil
}

type fakeEvaluationRepo struct {
	mu   sync.Mutex
	rows map[string]models.Evaluation // keyed by session_id
}

func newFakeEvaluationRepo() *fakeEvaluationRepo {
	return &fakeEvaluationRepo{rows: make(map[string]models.Evaluation)}
}

func (r *fakeEvaluationRepo) Upsert(ctx context.Context, e *models.Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[e.SessionID] = *e
	return nil
}

func (r *fakeEvaluationRepo) GetBySession(ctx context.Context, sessionID string) (*models.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	out := e
	return &out, nil
}

// scriptedGenerator plays back queued questions and failures in order.
type scriptedGenerator struct {
	mu        sync.Mutex
	questions []llm.Question
	failures  int // consume failures before any queued question
	evalOut   llm.Evaluation
	evalErr   error
	calls     int
	evalCalls int
}

var errScriptedFailure = errors.New("scripted generator failure")

func (g *scriptedGenerator) GenerateQuestion(ctx context.Context, in llm.QuestionInput) (llm.Question, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.failures > 0 {
		g.failures--
		return llm.Question{}, errScriptedFailure
	}
	if len(g.questions) == 0 {
		return llm.Question{Text: "Tell me about yourself.", Category: "general"}, nil
	}
	q := g.questions[0]
	g.questions = g.questions[1:]
	return q, nil
}

func (g *scriptedGenerator) GenerateEvaluation(ctx context.Context, in llm.EvaluationInput) (llm.Evaluation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.evalCalls++
	if g.evalErr != nil {
		return llm.Evaluation{}, g.evalErr
	}
	return g.evalOut, nil
}

func (g *scriptedGenerator) Close() error { return nil }

func scriptedFactory(g *scriptedGenerator) GeneratorFactory {
	return func(ctx context.Context, cfg llm.Config) (llm.Generator, error) {
		return g, nil
	}
}
