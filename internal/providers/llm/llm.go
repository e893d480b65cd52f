package llm

import (
	"context"
	"fmt"
	"strings"
)

// TurnContext is one prior question/answer pair fed back into the prompt.
type TurnContext struct {
	Question string
	Answer   string
}

// QuestionInput seeds one question generation.
type QuestionInput struct {
	ResumeSummary  string
	TargetPosition string
	Skills         []string
	PriorTurns     []TurnContext
	QuestionNumber int // 1-based
}

type Question struct {
	Text     string
	Category string
}

// EvaluationInput seeds the final evaluation over a full session.
type EvaluationInput struct {
	CandidateName string
	ResumeSummary string
	Turns         []TurnContext
}

type Evaluation struct {
	OverallScore float64
	Subscores    map[string]float64 // technical, clarity, relevance
	Strengths    []string
	Improvements []string
	Feedback     string
}

// Generator is the external question/evaluation collaborator. Calls may fail
// transiently; the caller owns timeout and retry policy.
type Generator interface {
	GenerateQuestion(ctx context.Context, in QuestionInput) (Question, error)
	GenerateEvaluation(ctx context.Context, in EvaluationInput) (Evaluation, error)
	Close() error
}

// Config selects and authenticates a provider backend.
type Config struct {
	Provider string // openai|gemini|groq|anthropic|openrouter
	APIKey   string
	Model    string
	BaseURL  string
}

// New builds a Generator for the configured provider. Gemini runs through
// Vertex AI; the rest all speak the OpenAI chat-completions dialect.
func New(ctx context.Context, cfg Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gemini":
		return NewVertexGemini(ctx, cfg)
	case "openai", "groq", "anthropic", "openrouter":
		return NewOpenAICompat(cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}
