package clock

import "time"

// Clock abstracts the time source so elapsed-time and stale-gap logic
// can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

type realClock struct{}

func (realClock) Now() time.Time                  { return time.Now().UTC() }
func (realClock) Since(t time.Time) time.Duration { return time.Now().UTC().Sub(t) }

func Real() Clock { return realClock{} }

// Manual is a hand-advanced clock for tests.
type Manual struct {
	now time.Time
}

func NewManual(start time.Time) *Manual { return &Manual{now: start.UTC()} }

func (m *Manual) Now() time.Time                  { return m.now }
func (m *Manual) Since(t time.Time) time.Duration { return m.now.Sub(t) }

func (m *Manual) Advance(d time.Duration) time.Time {
	m.now = m.now.Add(d)
	return m.now
}
