package services

import (
	"context"
	"time"

	"github.com/marcohq/marco-backend/internal/models"
	"github.com/marcohq/marco-backend/internal/providers/llm"

	"github.com/sirupsen/logrus"
)

// flowPhase is the question/answer sequencer state for one session.
type flowPhase int

const (
	awaitingFirstQuestion flowPhase = iota
	questionOpen
	answerSubmitted
	flowFinished
)

func (p flowPhase) String() string {
	switch p {
	case awaitingFirstQuestion:
		return "awaiting_first_question"
	case questionOpen:
		return "question_open"
	case answerSubmitted:
		return "answer_submitted"
	case flowFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// questionFlow tracks the turn history and sequencer phase for one session.
// It is the sole writer of question numbers, which is what keeps the sequence
// gapless and duplicate-free. Access is serialized by the owning session lock.
type questionFlow struct {
	phase flowPhase
	turns []models.Turn // question_number order; last entry may be unanswered
}

func newQuestionFlow() *questionFlow {
	return &questionFlow{phase: awaitingFirstQuestion}
}

// rebuildFlow derives sequencer state from persisted turns after a restart.
func rebuildFlow(sess *models.Session, turns []models.Turn) *questionFlow {
	f := &questionFlow{turns: turns}
	switch {
	case sess.Terminal():
		f.phase = flowFinished
	case len(turns) == 0:
		f.phase = awaitingFirstQuestion
	case !turns[len(turns)-1].Answered():
		f.phase = questionOpen
	default:
		f.phase = answerSubmitted
	}
	return f
}

// openTurn returns the single unanswered turn, or nil. The one-outstanding-
// question invariant means it can only ever be the last one.
func (f *questionFlow) openTurn() *models.Turn {
	if f.phase != questionOpen || len(f.turns) == 0 {
		return nil
	}
	last := &f.turns[len(f.turns)-1]
	if last.Answered() {
		return nil
	}
	return last
}

func (f *questionFlow) priorContexts() []llm.TurnContext {
	out := make([]llm.TurnContext, 0, len(f.turns))
	for _, t := range f.turns {
		tc := llm.TurnContext{Question: t.QuestionText}
		if t.AnswerText != nil {
			tc.Answer = *t.AnswerText
		}
		out = append(out, tc)
	}
	return out
}

// canRequestQuestion reports whether a new question may legally be generated.
// Legal from the initial phase (first question, including a caller retry after
// a failed start) and after an answer; never while a question is open.
func (f *questionFlow) canRequestQuestion() bool {
	return f.phase == awaitingFirstQuestion || f.phase == answerSubmitted
}

// generateQuestion calls the external generator with a bounded timeout and
// retries exactly once with identical input. It never fabricates a question:
// after the retry the error surfaces to the caller.
func generateQuestion(ctx context.Context, gen llm.Generator, in llm.QuestionInput, timeout time.Duration, log *logrus.Entry) (llm.Question, error) {
	q, err := generateQuestionOnce(ctx, gen, in, timeout)
	if err == nil {
		return q, nil
	}
	log.WithError(err).Warn("question generation failed, retrying once")
	return generateQuestionOnce(ctx, gen, in, timeout)
}

func generateQuestionOnce(ctx context.Context, gen llm.Generator, in llm.QuestionInput, timeout time.Duration) (llm.Question, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return gen.GenerateQuestion(cctx, in)
}

// generateEvaluation applies the same timeout-and-one-retry contract to the
// final evaluation call.
func generateEvaluation(ctx context.Context, gen llm.Generator, in llm.EvaluationInput, timeout time.Duration, log *logrus.Entry) (llm.Evaluation, error) {
	ev, err := generateEvaluationOnce(ctx, gen, in, timeout)
	if err == nil {
		return ev, nil
	}
	log.WithError(err).Warn("evaluation generation failed, retrying once")
	return generateEvaluationOnce(ctx, gen, in, timeout)
}

func generateEvaluationOnce(ctx context.Context, gen llm.Generator, in llm.EvaluationInput, timeout time.Duration) (llm.Evaluation, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return gen.GenerateEvaluation(cctx, in)
}
