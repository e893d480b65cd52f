package models

import (
	"time"

	"gorm.io/datatypes"
)

// Turn is one question/answer pair. At most one turn per session has a nil
// AnswerText (the open turn).
type Turn struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string `gorm:"column:session_id;type:uuid;index" json:"session_id"`

	QuestionNumber int    `gorm:"column:question_number;type:integer" json:"question_number"` // 1-based, no gaps
	QuestionText   string `gorm:"column:question_text;type:text" json:"question_text"`
	Category       string `gorm:"column:category;type:text" json:"category"`

	AnswerText    *string `gorm:"column:answer_text;type:text" json:"answer_text,omitempty"`
	AudioDuration float64 `gorm:"column:audio_duration;type:double precision" json:"audio_duration"`

	AskedAt    time.Time  `gorm:"column:asked_at;type:timestamptz;index" json:"asked_at"`
	AnsweredAt *time.Time `gorm:"column:answered_at;type:timestamptz" json:"answered_at,omitempty"`

	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
}

func (Turn) TableName() string { return "interview_turns" }

// Answered reports whether the turn has a recorded answer.
func (t *Turn) Answered() bool { return t.AnswerText != nil }
