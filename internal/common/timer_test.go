package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer(t *testing.T) {
	timer := NewTimer()
	time.Sleep(5 * time.Millisecond)
	d := timer.Stop()

	assert.GreaterOrEqual(t, d, 5*time.Millisecond)
	assert.Equal(t, d, timer.Duration())
	assert.GreaterOrEqual(t, timer.Milliseconds(), int64(5))
	assert.Empty(t, timer.Name())
}

func TestNamedTimer(t *testing.T) {
	timer := NewNamedTimer("detect")
	timer.Stop()

	assert.Equal(t, "detect", timer.Name())
	assert.Contains(t, timer.String(), "detect:")
}
