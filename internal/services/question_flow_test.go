package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marcohq/marco-backend/internal/models"
)

func answeredTurn(n int) models.Turn {
	text := "answer"
	at := testStart.Add(time.Duration(n) * time.Minute)
	return models.Turn{
		ID:             "t" + string(rune('0'+n)),
		SessionID:      "s",
		QuestionNumber: n,
		QuestionText:   "q",
		AnswerText:     &text,
		AnsweredAt:     &at,
	}
}

func openTurnModel(n int) models.Turn {
	return models.Turn{
		ID:             "t" + string(rune('0'+n)),
		SessionID:      "s",
		QuestionNumber: n,
		QuestionText:   "q",
	}
}

func TestFlowPhaseTransitions(t *testing.T) {
	f := newQuestionFlow()
	assert.Equal(t, awaitingFirstQuestion, f.phase)
	assert.True(t, f.canRequestQuestion())
	assert.Nil(t, f.openTurn())

	f.turns = append(f.turns, openTurnModel(1))
	f.phase = questionOpen
	assert.False(t, f.canRequestQuestion())
	assert.NotNil(t, f.openTurn())
	assert.Equal(t, 1, f.openTurn().QuestionNumber)

	f.phase = answerSubmitted
	assert.True(t, f.canRequestQuestion())
	assert.Nil(t, f.openTurn())

	f.phase = flowFinished
	assert.False(t, f.canRequestQuestion())
}

func TestRebuildFlow(t *testing.T) {
	inProgress := &models.Session{Status: models.SessionInProgress}
	ended := &models.Session{Status: models.SessionCompleted}

	tests := []struct {
		name  string
		sess  *models.Session
		turns []models.Turn
		want  flowPhase
	}{
		{"no turns yet", inProgress, nil, awaitingFirstQuestion},
		{"open question", inProgress, []models.Turn{answeredTurn(1), openTurnModel(2)}, questionOpen},
		{"all answered", inProgress, []models.Turn{answeredTurn(1), answeredTurn(2)}, answerSubmitted},
		{"terminal session", ended, []models.Turn{answeredTurn(1)}, flowFinished},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := rebuildFlow(tt.sess, tt.turns)
			assert.Equal(t, tt.want, f.phase)
		})
	}
}

func TestPriorContextsIncludeUnanswered(t *testing.T) {
	f := rebuildFlow(&models.Session{Status: models.SessionInProgress},
		[]models.Turn{answeredTurn(1), openTurnModel(2)})

	ctxs := f.priorContexts()
	assert.Len(t, ctxs, 2)
	assert.Equal(t, "answer", ctxs[0].Answer)
	assert.Empty(t, ctxs[1].Answer)
}

func TestFlowPhaseStrings(t *testing.T) {
	assert.Equal(t, "awaiting_first_question", awaitingFirstQuestion.String())
	assert.Equal(t, "question_open", questionOpen.String())
	assert.Equal(t, "answer_submitted", answerSubmitted.String())
	assert.Equal(t, "finished", flowFinished.String())
}
