package peripheral

import (
	"github.com/ezrec/retrocore/device"
)

// TIMER_PORTS is the number of ports of a timer.
const TIMER_PORTS = 4

// Timer counts instructions.
//
// The 32-bit count is read little-endian from its four ports. Any write
// clears it.
type Timer struct {
	*device.Ports

	Divider uint64 // Ticks per count. Zero counts every tick.

	ticks uint64
	count uint32
}

var _ Peripheral = (*Timer)(nil)

// NewTimer creates a timer that counts once per divider ticks.
func NewTimer(divider uint64) (timer *Timer) {
	timer = &Timer{
		Ports:   device.NewPorts(TIMER_PORTS, nil),
		Divider: divider,
	}
	timer.Label = "Timer"
	timer.OnIn = timer.in
	timer.OnOut = timer.out

	return
}

// Count returns the current count.
func (timer *Timer) Count() uint32 {
	return timer.count
}

// Reset clears the count.
func (timer *Timer) Reset() {
	timer.ticks = 0
	timer.count = 0
}

// Tick advances the timer.
func (timer *Timer) Tick() error {
	timer.ticks++
	if timer.ticks >= timer.Divider {
		timer.ticks = 0
		timer.count++
	}
	return nil
}

func (timer *Timer) in(port uint64, width device.Width) (value uint64, err error) {
	value = uint64(timer.count) >> (8 * port)
	return
}

func (timer *Timer) out(port uint64, width device.Width, value uint64) (err error) {
	timer.Reset()
	return
}
