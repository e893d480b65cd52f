package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

func buildQuestionPrompt(in QuestionInput) string {
	skills := "Not specified"
	if len(in.Skills) > 0 {
		n := len(in.Skills)
		if n > 10 {
			n = 10
		}
		skills = strings.Join(in.Skills[:n], ", ")
	}

	summary := in.ResumeSummary
	if len(summary) > 500 {
		summary = summary[:500]
	}
	if summary == "" {
		summary = "Not specified"
	}

	var prior strings.Builder
	for i, t := range in.PriorTurns {
		fmt.Fprintf(&prior, "Q%d: %s\n", i+1, t.Question)
		if t.Answer != "" {
			fmt.Fprintf(&prior, "A%d: %s\n", i+1, t.Answer)
		}
	}
	previous := prior.String()
	if previous == "" {
		previous = "(none yet)"
	}

	return fmt.Sprintf(`You are an expert technical interviewer. Generate interview question %d for a %s position.

Candidate Profile:
- Skills: %s
- Experience: %s

Previous Questions and Answers:
%s

Generate ONE technical interview question that:
1. Is relevant to the candidate's skills
2. Is distinct from previous questions
3. Digs deeper into their expertise or covers a new relevant topic
4. Tests theoretical knowledge or practical application

Return ONLY a JSON object with these exact keys: question (string), category (string, e.g. "algorithms", "system design", "behavioral").
Example: {"question": "How does a hash map handle collisions?", "category": "data structures"}`,
		in.QuestionNumber, in.TargetPosition, skills, summary, previous)
}

func buildEvaluationPrompt(in EvaluationInput) string {
	var qa strings.Builder
	for i, t := range in.Turns {
		fmt.Fprintf(&qa, "Q%d: %s\nA%d: %s\n\n", i+1, t.Question, i+1, t.Answer)
	}

	name := in.CandidateName
	if name == "" {
		name = "the candidate"
	}

	return fmt.Sprintf(`You are an expert technical interviewer providing the final evaluation for %s.

Interview Transcript:
%s
Provide:
1. Overall Score (0-100): holistic assessment of the candidate
2. Subscores (0-100 each) for technical accuracy, clarity, relevance
3. Strengths: 3-5 key strengths demonstrated
4. Improvements: 3-5 areas for improvement
5. Analysis: 2-3 paragraph detailed analysis of performance

Return ONLY a JSON object with these exact keys: overall_score (number), technical (number), clarity (number), relevance (number), strengths (array of strings), improvements (array of strings), analysis (string).`,
		name, qa.String())
}

// extractJSON pulls the first balanced top-level JSON object out of a model
// response, tolerating prose or markdown fences around it.
func extractJSON(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", errors.New("no JSON object in response")
	}

	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", errors.New("unbalanced JSON object in response")
}

func parseQuestion(raw string) (Question, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		// Some models ignore the JSON instruction and return bare text; accept
		// it rather than failing a live interview over formatting.
		text := strings.TrimSpace(strings.Trim(raw, "`\" \n"))
		if text == "" {
			return Question{}, err
		}
		return Question{Text: text, Category: "general"}, nil
	}

	var body struct {
		Question string `json:"question"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(obj), &body); err != nil {
		return Question{}, fmt.Errorf("parse question response: %w", err)
	}
	if strings.TrimSpace(body.Question) == "" {
		return Question{}, errors.New("empty question in response")
	}
	if body.Category == "" {
		body.Category = "general"
	}
	return Question{Text: strings.TrimSpace(body.Question), Category: body.Category}, nil
}

func parseEvaluation(raw string) (Evaluation, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		return Evaluation{}, err
	}

	var body struct {
		OverallScore float64  `json:"overall_score"`
		Technical    float64  `json:"technical"`
		Clarity      float64  `json:"clarity"`
		Relevance    float64  `json:"relevance"`
		Strengths    []string `json:"strengths"`
		Improvements []string `json:"improvements"`
		Analysis     string   `json:"analysis"`
	}
	if err := json.Unmarshal([]byte(obj), &body); err != nil {
		return Evaluation{}, fmt.Errorf("parse evaluation response: %w", err)
	}
	if strings.TrimSpace(body.Analysis) == "" {
		return Evaluation{}, errors.New("empty analysis in evaluation response")
	}

	return Evaluation{
		OverallScore: body.OverallScore,
		Subscores: map[string]float64{
			"technical": body.Technical,
			"clarity":   body.Clarity,
			"relevance": body.Relevance,
		},
		Strengths:    body.Strengths,
		Improvements: body.Improvements,
		Feedback:     strings.TrimSpace(body.Analysis),
	}, nil
}
