package proctoring

import "math"

// Classification of one head-pose sample.
type Classification int

const (
	Attentive Classification = iota
	LookingAway
	FaceLost
)

func (c Classification) String() string {
	switch c {
	case Attentive:
		return "attentive"
	case LookingAway:
		return "looking_away"
	case FaceLost:
		return "face_lost"
	default:
		return "unknown"
	}
}

// NonCompliant reports whether the sample counts toward away-time. A lost face
// is treated the same as looking away: the absence of an attentive face is
// itself non-compliant.
func (c Classification) NonCompliant() bool { return c != Attentive }

// PoseSample is one head-pose estimate delivered by the client-side tracker.
// Angles are in degrees.
type PoseSample struct {
	FaceDetected  bool    `json:"face_detected"`
	MultipleFaces bool    `json:"multiple_faces"`
	Pitch         float64 `json:"pitch"`
	Yaw           float64 `json:"yaw"`
	Roll          float64 `json:"roll"`
	Confidence    float64 `json:"confidence"`
}

// Classify grades a single sample against the yaw threshold. Yaw is the
// authoritative signal; pitch and roll are carried through for the event log
// but do not change the verdict.
func Classify(s PoseSample, yawThreshold float64) Classification {
	if !s.FaceDetected {
		return FaceLost
	}
	if math.Abs(s.Yaw) > yawThreshold {
		return LookingAway
	}
	return Attentive
}
