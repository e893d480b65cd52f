package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAICompat talks to any chat-completions endpoint: OpenAI itself, Groq,
// OpenRouter, and Anthropic's compatibility surface.
type OpenAICompat struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

var compatDefaults = map[string]struct{ baseURL, model string }{
	"openai":     {"https://api.openai.com/v1", "gpt-4o-mini"},
	"groq":       {"https://api.groq.com/openai/v1", "openai/gpt-oss-120b"},
	"openrouter": {"https://openrouter.ai/api/v1", "openai/gpt-4o-mini"},
	"anthropic":  {"https://api.anthropic.com/v1", "claude-sonnet-4-20250514"},
}

func NewOpenAICompat(cfg Config) (*OpenAICompat, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s provider requires an API key", cfg.Provider)
	}

	def, ok := compatDefaults[strings.ToLower(cfg.Provider)]
	if !ok {
		return nil, fmt.Errorf("unsupported openai-compatible provider: %q", cfg.Provider)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = def.baseURL
	}
	model := cfg.Model
	if model == "" {
		model = def.model
	}

	return &OpenAICompat{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

func (o *OpenAICompat) Close() error { return nil }

func (o *OpenAICompat) GenerateQuestion(ctx context.Context, in QuestionInput) (Question, error) {
	raw, err := o.complete(ctx, buildQuestionPrompt(in), 500)
	if err != nil {
		return Question{}, err
	}
	return parseQuestion(raw)
}

func (o *OpenAICompat) GenerateEvaluation(ctx context.Context, in EvaluationInput) (Evaluation, error) {
	raw, err := o.complete(ctx, buildEvaluationPrompt(in), 1200)
	if err != nil {
		return Evaluation{}, err
	}
	return parseEvaluation(raw)
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (o *OpenAICompat) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       o.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("chat completions: status %d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", fmt.Errorf("chat completions: status %d: %s", resp.StatusCode, msg)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("chat completions: no choices in response")
	}
	return parsed.Choices[0].Message.Content, nil
}
