package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session status values.
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionTerminated = "terminated"
)

// Termination reasons. ReasonNone is only valid while the session is in progress.
const (
	ReasonNone          = "none"
	ReasonGazeViolation = "gaze_violation"
	ReasonTabSwitch     = "tab_switch"
	ReasonTimeLimit     = "time_limit"
	ReasonUserEnded     = "user_ended"
	ReasonCompleted     = "completed"
)

type Session struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID   string             `bson:"session_id" json:"session_id"` // uuid v4
	CandidateID string             `bson:"candidate_id" json:"candidate_id"`

	Status            string `bson:"status" json:"status"`                         // in_progress|completed|terminated
	TerminationReason string `bson:"termination_reason" json:"termination_reason"` // none|gaze_violation|tab_switch|time_limit|user_ended|completed

	StartedAt time.Time  `bson:"started_at" json:"started_at"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`

	TimeBudgetSeconds int `bson:"time_budget_seconds" json:"time_budget_seconds"`

	GazeViolations int `bson:"gaze_violations" json:"gaze_violations"`
	TabSwitches    int `bson:"tab_switches" json:"tab_switches"`

	QuestionsAsked int `bson:"questions_asked" json:"questions_asked"`
	TotalQuestions int `bson:"total_questions" json:"total_questions"`

	Provider ProviderRef `bson:"provider" json:"provider"`
}

// ProviderRef records which LLM backend drives the session. The API key is
// sealed before it is written anywhere.
type ProviderRef struct {
	Name         string `bson:"name" json:"name"` // openai|gemini|groq|anthropic|openrouter
	SealedAPIKey string `bson:"sealed_api_key,omitempty" json:"-"`
	Model        string `bson:"model,omitempty" json:"model,omitempty"`
	BaseURL      string `bson:"base_url,omitempty" json:"base_url,omitempty"`
}

// Terminal reports whether the session has left the in-progress state.
func (s *Session) Terminal() bool { return s.Status != SessionInProgress }
