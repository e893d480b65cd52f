package proctoring

import "time"

// GazeTracker accumulates continuous looking-away time for one session and
// emits a discrete violation once the configured duration is crossed. One
// violation per continuous away window: the counter resets to zero the moment
// a violation fires, so a sustained 10s look-away yields floor(10/2)=5
// violations at most, never one per frame.
//
// Not safe for concurrent use; the session owner serializes access.
type GazeTracker struct {
	awayThreshold time.Duration
	staleGap      time.Duration

	consecutiveAway time.Duration
	lastSampleAt    time.Time
}

// GazeResult describes the effect of one observed sample.
type GazeResult struct {
	Violation bool // a debounced violation fired on this sample
	Stale     bool // sample was not newer than the last one and was dropped
	GapReset  bool // delivery gap exceeded the stale gap; away-time was reset
}

func NewGazeTracker(awayThreshold, staleGap time.Duration) *GazeTracker {
	if awayThreshold <= 0 {
		awayThreshold = 2 * time.Second
	}
	if staleGap <= 0 {
		staleGap = 5 * time.Second
	}
	return &GazeTracker{awayThreshold: awayThreshold, staleGap: staleGap}
}

// Observe folds one classified sample into the tracker.
//
// Order matters: a stale or duplicate timestamp is dropped before any state
// changes; a delivery gap beyond staleGap resets away-time so a frozen camera
// feed cannot accumulate a violation from stale state.
func (g *GazeTracker) Observe(c Classification, at time.Time) GazeResult {
	var res GazeResult

	if !g.lastSampleAt.IsZero() && !at.After(g.lastSampleAt) {
		res.Stale = true
		return res
	}

	first := g.lastSampleAt.IsZero()
	var delta time.Duration
	if !first {
		delta = at.Sub(g.lastSampleAt)
	}

	if !first && delta > g.staleGap {
		g.consecutiveAway = 0
		res.GapReset = true
		delta = 0
	}

	if !c.NonCompliant() {
		g.consecutiveAway = 0
	} else if !first {
		g.consecutiveAway += delta
		if g.consecutiveAway >= g.awayThreshold {
			res.Violation = true
			g.consecutiveAway = 0
		}
	}

	g.lastSampleAt = at
	return res
}

// ConsecutiveAway exposes the current accumulated away-time (status endpoint).
func (g *GazeTracker) ConsecutiveAway() time.Duration { return g.consecutiveAway }
