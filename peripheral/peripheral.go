// Package peripheral provides port mapped devices that are ticked by the
// emulator once per instruction.
package peripheral

import (
	"errors"

	"github.com/ezrec/retrocore/device"
	"github.com/ezrec/retrocore/translate"
)

var f = translate.From

var (
	ErrFull = errors.New(f("peripheral buffer full"))
)

// Peripheral is a device that is registered in an I/O address space and
// advanced by the emulator after every instruction.
type Peripheral interface {
	device.Device
	// Reset returns the peripheral to its power on state.
	Reset()
	// Tick advances the peripheral by one instruction. An error faults the
	// processor.
	Tick() error
}
