package proctoring

import "time"

// Limits are the configured termination thresholds for a session.
type Limits struct {
	MaxGazeViolations int
	MaxTabSwitches    int
	TimeBudget        time.Duration
}

// Decision is the outcome of the termination policy.
type Decision struct {
	Terminate bool
	Reason    string // gaze_violation|tab_switch|time_limit when Terminate
}

// Decide is the pure termination policy, evaluated after every counter
// mutation and on periodic time checks. When several limits are breached at
// once the reported reason is deterministic: time_limit first, then
// gaze_violation, then tab_switch.
func Decide(elapsed time.Duration, gazeViolations, tabSwitches int, lim Limits) Decision {
	switch {
	case lim.TimeBudget > 0 && elapsed >= lim.TimeBudget:
		return Decision{Terminate: true, Reason: "time_limit"}
	case lim.MaxGazeViolations > 0 && gazeViolations >= lim.MaxGazeViolations:
		return Decision{Terminate: true, Reason: "gaze_violation"}
	case lim.MaxTabSwitches > 0 && tabSwitches >= lim.MaxTabSwitches:
		return Decision{Terminate: true, Reason: "tab_switch"}
	default:
		return Decision{}
	}
}
