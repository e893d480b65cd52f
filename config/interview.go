package config

import (
	"os"
	"strconv"
	"time"
)

// Interview holds the proctoring and question-flow limits. Every field has a
// default; env vars override.
type Interview struct {
	YawThresholdDegrees float64       // YAW_THRESHOLD_DEGREES
	LookAwayDuration    time.Duration // LOOK_AWAY_DURATION_SECONDS
	StaleSampleGap      time.Duration // STALE_SAMPLE_GAP_SECONDS
	MaxGazeViolations   int           // MAX_GAZE_VIOLATIONS
	MaxTabSwitches      int           // MAX_TAB_SWITCHES
	SessionTimeBudget   time.Duration // SESSION_TIME_BUDGET_SECONDS
	TotalQuestions      int           // TOTAL_QUESTIONS
	GenerationTimeout   time.Duration // GENERATION_TIMEOUT_SECONDS
}

func LoadInterview() Interview {
	return Interview{
		YawThresholdDegrees: envFloat("YAW_THRESHOLD_DEGREES", 30.0),
		LookAwayDuration:    envSeconds("LOOK_AWAY_DURATION_SECONDS", 2.0),
		StaleSampleGap:      envSeconds("STALE_SAMPLE_GAP_SECONDS", 5.0),
		MaxGazeViolations:   envInt("MAX_GAZE_VIOLATIONS", 5),
		MaxTabSwitches:      envInt("MAX_TAB_SWITCHES", 2),
		SessionTimeBudget:   envSeconds("SESSION_TIME_BUDGET_SECONDS", 1800),
		TotalQuestions:      envInt("TOTAL_QUESTIONS", 10),
		GenerationTimeout:   envSeconds("GENERATION_TIMEOUT_SECONDS", 30),
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func envSeconds(key string, def float64) time.Duration {
	return time.Duration(envFloat(key, def) * float64(time.Second))
}
