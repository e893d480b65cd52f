package proctoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTabCounterIncrementsPerEvent(t *testing.T) {
	c := NewTabCounter(0)
	assert.Equal(t, 1, c.Record())
	assert.Equal(t, 2, c.Record())
	assert.Equal(t, 2, c.Count())
}

func TestTabCounterSeedsFromPersistedCount(t *testing.T) {
	c := NewTabCounter(3)
	assert.Equal(t, 3, c.Count())
	assert.Equal(t, 4, c.Record())
}

func TestTabCounterNegativeSeedClamped(t *testing.T) {
	c := NewTabCounter(-1)
	assert.Equal(t, 0, c.Count())
}
