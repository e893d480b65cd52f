package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, false},
		{"markdown fence", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"prose around", `Sure! Here it is: {"a":{"b":2}} hope that helps`, `{"a":{"b":2}}`, false},
		{"brace inside string", `{"q":"what does {x} mean?"}`, `{"q":"what does {x} mean?"}`, false},
		{"escaped quote", `{"q":"she said \"hi\" {"}`, `{"q":"she said \"hi\" {"}`, false},
		{"no object", "just text", "", true},
		{"unbalanced", `{"a":1`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuestion(t *testing.T) {
	q, err := parseQuestion(`{"question": "How does GC work in Go?", "category": "runtime"}`)
	require.NoError(t, err)
	assert.Equal(t, "How does GC work in Go?", q.Text)
	assert.Equal(t, "runtime", q.Category)
}

func TestParseQuestionDefaultsCategory(t *testing.T) {
	q, err := parseQuestion(`{"question": "Why channels?"}`)
	require.NoError(t, err)
	assert.Equal(t, "general", q.Category)
}

func TestParseQuestionAcceptsBareText(t *testing.T) {
	q, err := parseQuestion("Explain optimistic locking.")
	require.NoError(t, err)
	assert.Equal(t, "Explain optimistic locking.", q.Text)
	assert.Equal(t, "general", q.Category)
}

func TestParseQuestionRejectsEmpty(t *testing.T) {
	_, err := parseQuestion(`{"question": "  "}`)
	assert.Error(t, err)

	_, err = parseQuestion("   ")
	assert.Error(t, err)
}

func TestParseEvaluation(t *testing.T) {
	raw := `{"overall_score": 82, "technical": 85, "clarity": 78, "relevance": 84,
		"strengths": ["clear", "precise"], "improvements": ["depth"],
		"analysis": "Strong fundamentals."}`

	ev, err := parseEvaluation(raw)
	require.NoError(t, err)
	assert.Equal(t, 82.0, ev.OverallScore)
	assert.Equal(t, 85.0, ev.Subscores["technical"])
	assert.Equal(t, []string{"clear", "precise"}, ev.Strengths)
	assert.Equal(t, "Strong fundamentals.", ev.Feedback)
}

func TestParseEvaluationRequiresAnalysis(t *testing.T) {
	_, err := parseEvaluation(`{"overall_score": 82, "analysis": ""}`)
	assert.Error(t, err)
}

func TestQuestionPromptIncludesHistory(t *testing.T) {
	p := buildQuestionPrompt(QuestionInput{
		TargetPosition: "Backend Engineer",
		Skills:         []string{"go", "postgres"},
		PriorTurns: []TurnContext{
			{Question: "Why Go?", Answer: "Concurrency."},
		},
		QuestionNumber: 2,
	})

	assert.Contains(t, p, "question 2")
	assert.Contains(t, p, "Backend Engineer")
	assert.Contains(t, p, "go, postgres")
	assert.Contains(t, p, "Q1: Why Go?")
	assert.Contains(t, p, "A1: Concurrency.")
}

func TestQuestionPromptHandlesEmptyProfile(t *testing.T) {
	p := buildQuestionPrompt(QuestionInput{TargetPosition: "SRE", QuestionNumber: 1})
	assert.Contains(t, p, "Not specified")
	assert.Contains(t, p, "(none yet)")
}

func TestQuestionPromptTruncatesLongSummary(t *testing.T) {
	p := buildQuestionPrompt(QuestionInput{
		TargetPosition: "SRE",
		ResumeSummary:  strings.Repeat("x", 2000),
		QuestionNumber: 1,
	})
	assert.NotContains(t, p, strings.Repeat("x", 501))
}
