package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/marcohq/marco-backend/config"
	"github.com/marcohq/marco-backend/internal/clock"
	"github.com/marcohq/marco-backend/internal/models"
	"github.com/marcohq/marco-backend/internal/proctoring"
	"github.com/marcohq/marco-backend/internal/providers/llm"
	mongorepo "github.com/marcohq/marco-backend/internal/repositories/mongo"
	pgrepo "github.com/marcohq/marco-backend/internal/repositories/postgres"
	"github.com/marcohq/marco-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// GeneratorFactory builds a question/evaluation generator from a provider
// config. Swappable so tests can script the collaborator.
type GeneratorFactory func(ctx context.Context, cfg llm.Config) (llm.Generator, error)

// SessionManager owns the interview session lifecycle. It is the single point
// of mutation for session status: proctoring signals, answers, and question
// requests all funnel through a per-session critical section here, so a
// violation increment and a termination check can never interleave
// inconsistently. Sessions never share a lock, so one slow session cannot
// stall another.
type SessionManager struct {
	sessions   mongorepo.SessionRepository
	events     mongorepo.EventRepository
	turns      pgrepo.TurnRepository
	candidates pgrepo.CandidateRepository

	newGenerator GeneratorFactory
	clk          clock.Clock
	cfg          config.Interview
	log          *logrus.Logger
	rdb          *redis.Client // optional; live status fan-out

	mu   sync.Mutex
	live map[string]*liveSession
}

// liveSession is the in-process state for one session: the durable record plus
// the transient proctoring trackers and sequencer. All fields are guarded by
// mu. genBusy marks a generator call in flight; the lock is NOT held during
// that call so pose and tab events are never starved by a slow provider.
type liveSession struct {
	mu sync.Mutex

	sess *models.Session
	gaze *proctoring.GazeTracker
	tabs *proctoring.TabCounter
	flow *questionFlow

	gen     llm.Generator
	genBusy bool

	// candidate context for prompts, loaded once
	targetPosition string
	skills         []string
	resumeSummary  string
}

func NewSessionManager(
	sessions mongorepo.SessionRepository,
	events mongorepo.EventRepository,
	turns pgrepo.TurnRepository,
	candidates pgrepo.CandidateRepository,
	cfg config.Interview,
	clk clock.Clock,
	log *logrus.Logger,
	rdb *redis.Client,
) *SessionManager {
	if clk == nil {
		clk = clock.Real()
	}
	if log == nil {
		log = logrus.New()
	}
	return &SessionManager{
		sessions:     sessions,
		events:       events,
		turns:        turns,
		candidates:   candidates,
		newGenerator: llm.New,
		clk:          clk,
		cfg:          cfg,
		log:          log,
		rdb:          rdb,
		live:         make(map[string]*liveSession),
	}
}

// SetGeneratorFactory overrides the LLM factory (tests).
func (m *SessionManager) SetGeneratorFactory(f GeneratorFactory) { m.newGenerator = f }

func (m *SessionManager) limits() proctoring.Limits {
	return proctoring.Limits{
		MaxGazeViolations: m.cfg.MaxGazeViolations,
		MaxTabSwitches:    m.cfg.MaxTabSwitches,
		TimeBudget:        m.cfg.SessionTimeBudget,
	}
}

// StartResult is returned by Start: the new session and its first turn.
type StartResult struct {
	Session  models.Session `json:"session"`
	Question *models.Turn   `json:"question,omitempty"`
}

// Start creates a session for the candidate and asks the generator for the
// first question. If generation fails after its retry the session is still
// created and stays in progress; the caller retries via NextQuestion.
func (m *SessionManager) Start(ctx context.Context, candidateID string, provider llm.Config) (*StartResult, error) {
	const op = "SessionManager.Start"

	if candidateID == "" || provider.Provider == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "candidate_id and provider are required", nil)
	}

	cand, err := m.candidates.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "candidate not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load candidate", err)
	}

	gen, err := m.newGenerator(ctx, provider)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "failed to initialize llm provider", err)
	}

	sealed := ""
	if provider.APIKey != "" {
		sealed, err = utils.SealString(os.Getenv("CREDENTIALS_SECRET"), provider.APIKey)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to seal provider credentials", err)
		}
	}

	now := m.clk.Now()
	sess := &models.Session{
		SessionID:         uuid.NewString(),
		CandidateID:       candidateID,
		Status:            models.SessionInProgress,
		TerminationReason: models.ReasonNone,
		StartedAt:         now,
		TimeBudgetSeconds: int(m.cfg.SessionTimeBudget.Seconds()),
		TotalQuestions:    m.cfg.TotalQuestions,
		Provider: models.ProviderRef{
			Name:         provider.Provider,
			SealedAPIKey: sealed,
			Model:        provider.Model,
			BaseURL:      provider.BaseURL,
		},
	}

	if err := m.sessions.Create(ctx, sess); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}

	ls := &liveSession{
		sess:           sess,
		gaze:           proctoring.NewGazeTracker(m.cfg.LookAwayDuration, m.cfg.StaleSampleGap),
		tabs:           proctoring.NewTabCounter(0),
		flow:           newQuestionFlow(),
		gen:            gen,
		targetPosition: cand.TargetPosition,
		skills:         cand.Skills,
		resumeSummary:  cand.ResumeText,
	}

	m.mu.Lock()
	m.live[sess.SessionID] = ls
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"session_id":   sess.SessionID,
		"candidate_id": candidateID,
		"provider":     provider.Provider,
	}).Info("interview session started")

	res := &StartResult{Session: *sess}
	next, err := m.NextQuestion(ctx, sess.SessionID)
	if err != nil {
		// Session exists; surface the generation failure so the client retries.
		return res, err
	}

	ls.mu.Lock()
	res.Session = *ls.sess
	ls.mu.Unlock()
	res.Question = next.Turn
	return res, nil
}

// PoseVerdict is the outcome of one pose sample.
type PoseVerdict struct {
	Classification    string `json:"classification"`
	ViolationRecorded bool   `json:"violation_recorded"`
	GazeViolations    int    `json:"gaze_violations"`
	TabSwitches       int    `json:"tab_switches"`
	Terminated        bool   `json:"terminated"`
	TerminationReason string `json:"termination_reason,omitempty"`
}

// RecordPoseSample folds one head-pose estimate into the session. Samples for
// a terminal session are accepted but are logged no-ops; stale or duplicate
// timestamps are silently dropped.
func (m *SessionManager) RecordPoseSample(ctx context.Context, sessionID string, sample proctoring.PoseSample, at time.Time) (*PoseVerdict, error) {
	const op = "SessionManager.RecordPoseSample"

	ls, err := m.loadLive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = m.clk.Now()
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.sess.Terminal() {
		m.log.WithField("session_id", sessionID).Debug("pose sample after terminal state ignored")
		return m.verdictLocked(ls, "", false), nil
	}

	class := proctoring.Classify(sample, m.cfg.YawThresholdDegrees)

	res := ls.gaze.Observe(class, at)
	if res.Stale {
		// Stale samples are dropped whole: no audit events either.
		m.log.WithFields(logrus.Fields{"session_id": sessionID, "op": op}).Debug("stale pose sample dropped")
		return m.verdictLocked(ls, class.String(), false), nil
	}

	if sample.MultipleFaces {
		m.appendEvent(ctx, sessionID, models.EventMultipleFaces, models.SeverityWarning, at, map[string]any{
			"confidence": sample.Confidence,
		})
	}

	if res.Violation {
		ls.sess.GazeViolations++

		evType := models.EventGazeShift
		if class == proctoring.FaceLost {
			evType = models.EventFaceLost
		}
		m.appendEvent(ctx, sessionID, evType, models.SeverityViolation, at, map[string]any{
			"pitch":           sample.Pitch,
			"yaw":             sample.Yaw,
			"roll":            sample.Roll,
			"violation_count": ls.sess.GazeViolations,
		})
		m.persistCountersLocked(ctx, ls)
	}

	m.applyPolicyLocked(ctx, ls)
	return m.verdictLocked(ls, class.String(), res.Violation), nil
}

// RecordTabSwitch counts one visibility-hidden event. No debouncing: the
// switch itself is the violation.
func (m *SessionManager) RecordTabSwitch(ctx context.Context, sessionID string) (*PoseVerdict, error) {
	ls, err := m.loadLive(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.sess.Terminal() {
		m.log.WithField("session_id", sessionID).Debug("tab switch after terminal state ignored")
		return m.verdictLocked(ls, "", false), nil
	}

	ls.sess.TabSwitches = ls.tabs.Record()
	m.appendEvent(ctx, sessionID, models.EventTabSwitch, models.SeverityViolation, m.clk.Now(), map[string]any{
		"tab_switches": ls.sess.TabSwitches,
	})
	m.persistCountersLocked(ctx, ls)

	m.applyPolicyLocked(ctx, ls)
	return m.verdictLocked(ls, "", false), nil
}

// SubmitAnswer records the candidate's answer on the open turn.
func (m *SessionManager) SubmitAnswer(ctx context.Context, sessionID, answerText string, audioDuration float64) (*models.Turn, error) {
	const op = "SessionManager.SubmitAnswer"

	if answerText == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "answer_text is required", nil)
	}

	ls, err := m.loadLive(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.sess.Terminal() {
		return nil, utils.E(utils.CodeInvalidState, op, "session is not in progress", nil)
	}

	open := ls.flow.openTurn()
	if open == nil {
		return nil, utils.E(utils.CodeInvalidState, op, "no open question to answer", nil)
	}

	now := m.clk.Now()
	if err := m.turns.RecordAnswer(ctx, open.ID, answerText, now, audioDuration); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist answer", err)
	}

	open.AnswerText = &answerText
	open.AnsweredAt = &now
	open.AudioDuration = audioDuration
	ls.flow.phase = answerSubmitted

	m.log.WithFields(logrus.Fields{
		"session_id":      sessionID,
		"question_number": open.QuestionNumber,
	}).Info("answer recorded")

	out := *open
	return &out, nil
}

// NextQuestionResult is either the next turn or a completion signal.
type NextQuestionResult struct {
	Completed bool         `json:"completed"`
	Turn      *models.Turn `json:"turn,omitempty"`
	IsLast    bool         `json:"is_last"`
}

// NextQuestion advances the sequencer: after the last planned answer it
// completes the session, otherwise it asks the generator for the next
// question. The per-session lock is released for the duration of the
// generator call and re-acquired to commit its result.
func (m *SessionManager) NextQuestion(ctx context.Context, sessionID string) (*NextQuestionResult, error) {
	const op = "SessionManager.NextQuestion"

	ls, err := m.loadLive(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	if ls.sess.Terminal() {
		ls.mu.Unlock()
		return nil, utils.E(utils.CodeInvalidState, op, "session is not in progress", nil)
	}
	if ls.genBusy {
		ls.mu.Unlock()
		return nil, utils.E(utils.CodeInvalidState, op, "a question request is already in flight", nil)
	}
	if !ls.flow.canRequestQuestion() {
		phase := ls.flow.phase.String()
		ls.mu.Unlock()
		return nil, utils.E(utils.CodeInvalidState, op, "cannot request a question while "+phase, nil)
	}

	if ls.sess.QuestionsAsked >= ls.sess.TotalQuestions {
		ls.flow.phase = flowFinished
		m.terminateLocked(ctx, ls, models.ReasonCompleted)
		ls.mu.Unlock()
		return &NextQuestionResult{Completed: true}, nil
	}

	in := llm.QuestionInput{
		ResumeSummary:  ls.resumeSummary,
		TargetPosition: ls.targetPosition,
		Skills:         ls.skills,
		PriorTurns:     ls.flow.priorContexts(),
		QuestionNumber: ls.sess.QuestionsAsked + 1,
	}
	gen := ls.gen
	providerRef := ls.sess.Provider
	ls.genBusy = true
	ls.mu.Unlock()

	log := m.log.WithFields(logrus.Fields{"session_id": sessionID, "question_number": in.QuestionNumber})

	var genErr error
	if gen == nil {
		// Rebuilt after a restart: unseal stored credentials (the path the
		// evaluation flow also relies on).
		gen, genErr = m.rebuildGenerator(ctx, providerRef)
	}

	var q llm.Question
	if genErr == nil {
		q, genErr = generateQuestion(ctx, gen, in, m.cfg.GenerationTimeout, log)
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.genBusy = false
	if ls.gen == nil && gen != nil {
		ls.gen = gen
	}

	if genErr != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "question generation unavailable", genErr)
	}
	if ls.sess.Terminal() {
		// Best-effort cancellation: the result of a slow call is discarded if
		// the session ended while it was in flight.
		log.Debug("discarding generated question for terminal session")
		return nil, utils.E(utils.CodeInvalidState, op, "session ended during question generation", nil)
	}

	turn := models.Turn{
		ID:             uuid.NewString(),
		SessionID:      sessionID,
		QuestionNumber: in.QuestionNumber,
		QuestionText:   q.Text,
		Category:       q.Category,
		AskedAt:        m.clk.Now(),
	}
	if err := m.turns.Insert(ctx, &turn); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist question", err)
	}

	ls.sess.QuestionsAsked = in.QuestionNumber
	ls.flow.turns = append(ls.flow.turns, turn)
	ls.flow.phase = questionOpen
	m.persistCountersLocked(ctx, ls)

	log.WithField("category", turn.Category).Info("question issued")

	out := turn
	return &NextQuestionResult{
		Turn:   &out,
		IsLast: in.QuestionNumber == ls.sess.TotalQuestions,
	}, nil
}

// End is the caller-initiated termination path. Same idempotency contract as
// internal termination: the first recorded reason wins.
func (m *SessionManager) End(ctx context.Context, sessionID, reason string) (*models.Session, error) {
	const op = "SessionManager.End"

	switch reason {
	case "":
		reason = models.ReasonUserEnded
	case models.ReasonUserEnded, models.ReasonCompleted,
		models.ReasonGazeViolation, models.ReasonTabSwitch, models.ReasonTimeLimit:
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown termination reason", nil)
	}

	ls, err := m.loadLive(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	m.terminateLocked(ctx, ls, reason)
	out := *ls.sess
	return &out, nil
}

// Get returns a snapshot of the session record.
func (m *SessionManager) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	ls, err := m.loadLive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	out := *ls.sess
	return &out, nil
}

// Turns returns the session's turn history in question order.
func (m *SessionManager) Turns(ctx context.Context, sessionID string) ([]models.Turn, error) {
	ls, err := m.loadLive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	out := make([]models.Turn, len(ls.flow.turns))
	copy(out, ls.flow.turns)
	return out, nil
}

// ViolationStatus is the read-side proctoring summary.
type ViolationStatus struct {
	Status            string  `json:"status"`
	GazeViolations    int     `json:"gaze_violations"`
	TabSwitches       int     `json:"tab_switches"`
	ElapsedSeconds    float64 `json:"elapsed_seconds"`
	ShouldTerminate   bool    `json:"should_terminate"`
	TerminationReason string  `json:"termination_reason,omitempty"`
}

func (m *SessionManager) Status(ctx context.Context, sessionID string) (*ViolationStatus, error) {
	ls, err := m.loadLive(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	st := &ViolationStatus{
		Status:         ls.sess.Status,
		GazeViolations: ls.sess.GazeViolations,
		TabSwitches:    ls.sess.TabSwitches,
		ElapsedSeconds: m.elapsedLocked(ls).Seconds(),
	}
	if ls.sess.Terminal() {
		st.ShouldTerminate = true
		st.TerminationReason = ls.sess.TerminationReason
		return st, nil
	}

	d := proctoring.Decide(m.elapsedLocked(ls), ls.sess.GazeViolations, ls.sess.TabSwitches, m.limits())
	st.ShouldTerminate = d.Terminate
	st.TerminationReason = d.Reason
	return st, nil
}

// Sweep enforces the time budget on idle sessions. Run periodically; events
// also trigger the same check, this catches sessions receiving no events.
func (m *SessionManager) Sweep(ctx context.Context) {
	m.mu.Lock()
	snapshot := make([]*liveSession, 0, len(m.live))
	for _, ls := range m.live {
		snapshot = append(snapshot, ls)
	}
	m.mu.Unlock()

	for _, ls := range snapshot {
		ls.mu.Lock()
		if !ls.sess.Terminal() {
			m.applyPolicyLocked(ctx, ls)
		}
		ls.mu.Unlock()
	}
}

// RunSweeper blocks, sweeping on the interval until the context ends.
func (m *SessionManager) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep(ctx)
		}
	}
}

// --- internals, all called with ls.mu held ---

func (m *SessionManager) elapsedLocked(ls *liveSession) time.Duration {
	if ls.sess.EndedAt != nil {
		return ls.sess.EndedAt.Sub(ls.sess.StartedAt)
	}
	return m.clk.Since(ls.sess.StartedAt)
}

func (m *SessionManager) applyPolicyLocked(ctx context.Context, ls *liveSession) {
	d := proctoring.Decide(m.elapsedLocked(ls), ls.sess.GazeViolations, ls.sess.TabSwitches, m.limits())
	if d.Terminate {
		m.terminateLocked(ctx, ls, d.Reason)
	}
}

// terminateLocked is idempotent: once terminal, later calls with a different
// reason leave the first recorded reason untouched.
func (m *SessionManager) terminateLocked(ctx context.Context, ls *liveSession, reason string) {
	if ls.sess.Terminal() {
		return
	}

	status := models.SessionTerminated
	if reason == models.ReasonCompleted || reason == models.ReasonUserEnded {
		status = models.SessionCompleted
	}

	now := m.clk.Now()
	ls.sess.Status = status
	ls.sess.TerminationReason = reason
	ls.sess.EndedAt = &now
	ls.flow.phase = flowFinished

	if _, err := m.sessions.Terminate(ctx, ls.sess.SessionID, status, reason, now); err != nil {
		// The in-memory record is authoritative for the live session; a failed
		// write must not leave the status ambiguous.
		m.log.WithError(err).WithField("session_id", ls.sess.SessionID).
			Error("failed to persist session termination")
	}

	m.log.WithFields(logrus.Fields{
		"session_id": ls.sess.SessionID,
		"status":     status,
		"reason":     reason,
	}).Info("session ended")

	m.publish(ctx, ls.sess.SessionID, map[string]any{
		"type":   "session_ended",
		"status": status,
		"reason": reason,
	})
}

func (m *SessionManager) verdictLocked(ls *liveSession, classification string, violation bool) *PoseVerdict {
	v := &PoseVerdict{
		Classification:    classification,
		ViolationRecorded: violation,
		GazeViolations:    ls.sess.GazeViolations,
		TabSwitches:       ls.sess.TabSwitches,
		Terminated:        ls.sess.Terminal(),
	}
	if v.Terminated {
		v.TerminationReason = ls.sess.TerminationReason
	}
	return v
}

// appendEvent writes to the audit log. Failures are surfaced to operators via
// the error log but never block or alter termination decisions: the in-memory
// counters stay authoritative.
func (m *SessionManager) appendEvent(ctx context.Context, sessionID, evType, severity string, at time.Time, details map[string]any) {
	err := m.events.Append(ctx, &models.ProctoringEvent{
		SessionID: sessionID,
		Type:      evType,
		Severity:  severity,
		Timestamp: at,
		Details:   details,
	})
	if err != nil {
		m.log.WithError(err).WithFields(logrus.Fields{
			"session_id": sessionID,
			"event_type": evType,
		}).Error("failed to append proctoring event")
		return
	}

	m.publish(ctx, sessionID, map[string]any{
		"type":     "proctoring_event",
		"event":    evType,
		"severity": severity,
		"details":  details,
	})
}

func (m *SessionManager) persistCountersLocked(ctx context.Context, ls *liveSession) {
	err := m.sessions.UpdateCounters(ctx, ls.sess.SessionID,
		ls.sess.GazeViolations, ls.sess.TabSwitches, ls.sess.QuestionsAsked)
	if err != nil {
		m.log.WithError(err).WithField("session_id", ls.sess.SessionID).
			Error("failed to persist session counters")
	}
}

func (m *SessionManager) publish(ctx context.Context, sessionID string, payload map[string]any) {
	if m.rdb == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := m.rdb.Publish(ctx, "session:"+sessionID+":proctor", b).Err(); err != nil {
		m.log.WithError(err).WithField("session_id", sessionID).Warn("failed to publish session event")
	}
}

func (m *SessionManager) rebuildGenerator(ctx context.Context, ref models.ProviderRef) (llm.Generator, error) {
	apiKey := ""
	if ref.SealedAPIKey != "" {
		var err error
		apiKey, err = utils.OpenString(os.Getenv("CREDENTIALS_SECRET"), ref.SealedAPIKey)
		if err != nil {
			return nil, err
		}
	}
	return m.newGenerator(ctx, llm.Config{
		Provider: ref.Name,
		APIKey:   apiKey,
		Model:    ref.Model,
		BaseURL:  ref.BaseURL,
	})
}

// loadLive returns the in-process state for a session, rehydrating from the
// stores after a restart. The proctoring trackers restart empty: transient
// gaze state is summarized into the violation counter, never persisted.
func (m *SessionManager) loadLive(ctx context.Context, sessionID string) (*liveSession, error) {
	const op = "SessionManager.Load"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	m.mu.Lock()
	ls, ok := m.live[sessionID]
	m.mu.Unlock()
	if ok {
		return ls, nil
	}

	sess, err := m.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}

	turns, err := m.turns.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load turns", err)
	}

	cand, err := m.candidates.GetByID(ctx, sess.CandidateID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load candidate", err)
	}

	ls = &liveSession{
		sess:           sess,
		gaze:           proctoring.NewGazeTracker(m.cfg.LookAwayDuration, m.cfg.StaleSampleGap),
		tabs:           proctoring.NewTabCounter(sess.TabSwitches),
		flow:           rebuildFlow(sess, turns),
		targetPosition: cand.TargetPosition,
		skills:         cand.Skills,
		resumeSummary:  cand.ResumeText,
	}

	m.mu.Lock()
	if existing, ok := m.live[sessionID]; ok {
		ls = existing
	} else {
		m.live[sessionID] = ls
	}
	m.mu.Unlock()
	return ls, nil
}
