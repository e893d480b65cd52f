package proctoring

// TabCounter counts visibility-hidden events for one session. Unlike gaze
// there is no debouncing: a single tab switch is itself the violation, so
// every event increments by exactly one.
//
// Not safe for concurrent use; the session owner serializes access.
type TabCounter struct {
	count int
}

// NewTabCounter seeds the counter, e.g. from a persisted session record.
func NewTabCounter(initial int) *TabCounter {
	if initial < 0 {
		initial = 0
	}
	return &TabCounter{count: initial}
}

func (t *TabCounter) Record() int {
	t.count++
	return t.count
}

func (t *TabCounter) Count() int { return t.count }
