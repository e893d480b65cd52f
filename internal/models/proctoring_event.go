package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Proctoring event types.
const (
	EventGazeShift     = "gaze_shift"
	EventTabSwitch     = "tab_switch"
	EventFaceLost      = "face_lost"
	EventMultipleFaces = "multiple_faces"
)

// Severities.
const (
	SeverityWarning   = "warning"
	SeverityViolation = "violation"
	SeverityCritical  = "critical"
)

// ProctoringEvent is an append-only audit record. Events are never mutated or
// deleted while the session is active.
type ProctoringEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	Type      string             `bson:"type" json:"type"`         // gaze_shift|tab_switch|face_lost|multiple_faces
	Severity  string             `bson:"severity" json:"severity"` // warning|violation|critical
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Details   map[string]any     `bson:"details,omitempty" json:"details,omitempty"`
}
