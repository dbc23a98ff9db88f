package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock_DefaultsToEpoch(t *testing.T) {
	c := NewManualClock(time.Time{})
	assert.Equal(t, Epoch, c.Now())
}

func TestManualClock_AdvanceAndSet(t *testing.T) {
	c := NewManualClock(Epoch)

	got := c.Advance(90 * time.Minute)
	assert.Equal(t, Epoch.Add(90*time.Minute), got)
	assert.Equal(t, got, c.Now())

	later := Epoch.Add(48 * time.Hour)
	c.Set(later)
	assert.Equal(t, later, c.Now())
}

func TestManualClock_StandsStill(t *testing.T) {
	c := NewManualClock(Epoch)
	assert.Equal(t, c.Now(), c.Now())
}
