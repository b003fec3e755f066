package cpu

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		hz       float64
		interval time.Duration
		err      error
	}{
		{0, 0, nil},
		{1, time.Second, nil},
		{2_000_000, 500 * time.Nanosecond, nil},
		{4e9, time.Nanosecond, nil},
		{-1, 0, ErrFrequencyInvalid},
		{math.NaN(), 0, ErrFrequencyInvalid},
		{math.Inf(1), 0, ErrFrequencyInvalid},
	}

	for _, entry := range table {
		clock, err := NewClock(entry.hz)
		assert.ErrorIs(err, entry.err, "%v", entry.hz)
		assert.Equal(entry.interval, clock.Interval, "%v", entry.hz)
		assert.Equal(entry.interval != 0, clock.Paced(), "%v", entry.hz)
	}
}

func TestClock_Duration(t *testing.T) {
	assert := assert.New(t)

	clock, err := NewClock(2_000_000)
	assert.NoError(err)
	assert.Equal(5*time.Microsecond, clock.Duration(10))
	assert.Equal(time.Duration(0), Clock{}.Duration(10))
}
