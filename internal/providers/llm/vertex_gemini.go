package llm

import (
	"context"
	"errors"
	"os"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

// VertexGemini generates questions and evaluations through Vertex AI. Auth is
// ambient (ADC); the session's API key is unused for this provider.
type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, cfg Config) (*VertexGemini, error) {
	projectID := os.Getenv("VERTEX_PROJECT_ID")
	location := os.Getenv("VERTEX_LOCATION")
	if location == "" {
		location = "us-central1"
	}
	if projectID == "" {
		return nil, errors.New("VERTEX_PROJECT_ID environment variable is not set")
	}

	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	return &VertexGemini{client: c, model: c.GenerativeModel(modelName)}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) GenerateQuestion(ctx context.Context, in QuestionInput) (Question, error) {
	raw, err := v.complete(ctx, buildQuestionPrompt(in))
	if err != nil {
		return Question{}, err
	}
	return parseQuestion(raw)
}

func (v *VertexGemini) GenerateEvaluation(ctx context.Context, in EvaluationInput) (Evaluation, error) {
	raw, err := v.complete(ctx, buildEvaluationPrompt(in))
	if err != nil {
		return Evaluation{}, err
	}
	return parseEvaluation(raw)
}

func (v *VertexGemini) complete(ctx context.Context, prompt string) (string, error) {
	var out strings.Builder

	it := v.model.GenerateContentStream(ctx, vertexgenai.Text(prompt))
	for {
		resp, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", err
		}

		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if t, ok := part.(vertexgenai.Text); ok {
					out.WriteString(string(t))
				}
			}
		}
	}

	if out.Len() == 0 {
		return "", errors.New("empty response from vertex gemini")
	}
	return out.String(), nil
}
