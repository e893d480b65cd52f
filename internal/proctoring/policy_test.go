package proctoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	lim := Limits{MaxGazeViolations: 5, MaxTabSwitches: 2, TimeBudget: 30 * time.Minute}

	tests := []struct {
		name    string
		elapsed time.Duration
		gaze    int
		tabs    int
		want    Decision
	}{
		{"clean", 10 * time.Minute, 0, 0, Decision{}},
		{"under all limits", 29 * time.Minute, 4, 1, Decision{}},
		{"gaze limit", 10 * time.Minute, 5, 0, Decision{true, "gaze_violation"}},
		{"tab limit", 10 * time.Minute, 0, 2, Decision{true, "tab_switch"}},
		{"time limit exact", 30 * time.Minute, 0, 0, Decision{true, "time_limit"}},
		{"time beats gaze", 31 * time.Minute, 5, 0, Decision{true, "time_limit"}},
		{"time beats tab", 31 * time.Minute, 0, 2, Decision{true, "time_limit"}},
		{"gaze beats tab", 10 * time.Minute, 5, 2, Decision{true, "gaze_violation"}},
		{"all breached", 31 * time.Minute, 9, 9, Decision{true, "time_limit"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.elapsed, tt.gaze, tt.tabs, lim))
		})
	}
}

func TestDecideDisabledLimits(t *testing.T) {
	// Non-positive limits disable the corresponding check.
	d := Decide(100*time.Hour, 100, 100, Limits{})
	assert.False(t, d.Terminate)

	d = Decide(time.Minute, 100, 0, Limits{MaxTabSwitches: 2})
	assert.False(t, d.Terminate)
}
