package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Evaluation is the final AI assessment of a completed session.
type Evaluation struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string `gorm:"column:session_id;type:uuid;uniqueIndex" json:"session_id"`

	OverallScore float64 `gorm:"column:overall_score;type:double precision" json:"overall_score"`

	// per-criterion averages: {"technical": 82, "clarity": 75, "relevance": 88}
	Subscores datatypes.JSON `gorm:"column:subscores;type:jsonb" json:"subscores"`

	Strengths    pq.StringArray `gorm:"column:strengths;type:text[]" json:"strengths"`
	Improvements pq.StringArray `gorm:"column:improvements;type:text[]" json:"improvements"`

	Feedback string `gorm:"column:feedback;type:text" json:"feedback"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Evaluation) TableName() string { return "evaluations" }
