package device

import (
	"encoding/binary"
)

// InFunc services a read from a port block.
type InFunc func(port uint64, width Width) (value uint64, err error)

// OutFunc services a write to a port block.
type OutFunc func(port uint64, width Width, value uint64) (err error)

// Ports is a block of I/O ports.
//
// Without handlers, each port latches the last value written to it.
// Ports are addressed by their offset within the block.
type Ports struct {
	Label string  // Name of the device.
	OnIn  InFunc  // If set, services all reads.
	OnOut OutFunc // If set, services all writes.

	latch storage
}

var _ Device = (*Ports)(nil)

// NewPorts creates a block of count latching ports.
func NewPorts(count uint64, order binary.ByteOrder) *Ports {
	return &Ports{latch: newStorage(count, order)}
}

// Name returns the label of the port block.
func (p *Ports) Name() string {
	if len(p.Label) != 0 {
		return p.Label
	}
	return "Ports"
}

// Size returns the number of ports.
func (p *Ports) Size() uint64 {
	return p.latch.size()
}

// Writable is always true for ports.
func (p *Ports) Writable() bool {
	return true
}

// Fetch reads from a port.
func (p *Ports) Fetch(port uint64, width Width) (value uint64, err error) {
	err = p.latch.check(p.Name(), port, width)
	if err != nil {
		return
	}

	if p.OnIn != nil {
		value, err = p.OnIn(port, width)
		value &= width.Mask()
		return
	}

	value = p.latch.fetch(port, width)
	return
}

// Store writes to a port.
func (p *Ports) Store(port uint64, width Width, value uint64) (err error) {
	err = p.latch.check(p.Name(), port, width)
	if err != nil {
		return
	}

	if p.OnOut != nil {
		err = p.OnOut(port, width, value&width.Mask())
		return
	}

	p.latch.store(port, width, value)
	return
}

// In is an alias of Fetch.
func (p *Ports) In(port uint64, width Width) (uint64, error) {
	return p.Fetch(port, width)
}

// Out is an alias of Store.
func (p *Ports) Out(port uint64, width Width, value uint64) error {
	return p.Store(port, width, value)
}
