package cpu

import (
	"math"
	"time"
)

// Clock describes instruction pacing. It is never used for correctness.
type Clock struct {
	Interval time.Duration // Time per cycle, or 0 for no pacing.
}

// NewClock derives a clock from a frequency in Hz. A frequency of zero gives
// an unpaced clock.
func NewClock(hz float64) (clock Clock, err error) {
	if hz < 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		err = ErrFrequencyInvalid
		return
	}

	if hz == 0 {
		return
	}

	clock.Interval = time.Duration(float64(time.Second) / hz)
	if clock.Interval == 0 {
		clock.Interval = time.Nanosecond
	}

	return
}

// Duration returns the time taken by a number of cycles.
func (clock Clock) Duration(cycles int) time.Duration {
	return time.Duration(cycles) * clock.Interval
}

// Paced is false for an unpaced clock.
func (clock Clock) Paced() bool {
	return clock.Interval > 0
}
