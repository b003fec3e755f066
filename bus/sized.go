package bus

import (
	"github.com/ezrec/retrocore/device"
)

// Fetch8 reads a byte.
func (as *AddressSpace) Fetch8(addr uint64) (value uint8, err error) {
	v, err := as.Fetch(addr, device.W8)
	value = uint8(v)
	return
}

// Fetch16 reads a word.
func (as *AddressSpace) Fetch16(addr uint64) (value uint16, err error) {
	v, err := as.Fetch(addr, device.W16)
	value = uint16(v)
	return
}

// Fetch32 reads a dword.
func (as *AddressSpace) Fetch32(addr uint64) (value uint32, err error) {
	v, err := as.Fetch(addr, device.W32)
	value = uint32(v)
	return
}

// Fetch64 reads a qword.
func (as *AddressSpace) Fetch64(addr uint64) (value uint64, err error) {
	return as.Fetch(addr, device.W64)
}

// Store8 writes a byte.
func (as *AddressSpace) Store8(addr uint64, value uint8) error {
	return as.Store(addr, device.W8, uint64(value))
}

// Store16 writes a word.
func (as *AddressSpace) Store16(addr uint64, value uint16) error {
	return as.Store(addr, device.W16, uint64(value))
}

// Store32 writes a dword.
func (as *AddressSpace) Store32(addr uint64, value uint32) error {
	return as.Store(addr, device.W32, uint64(value))
}

// Store64 writes a qword.
func (as *AddressSpace) Store64(addr uint64, value uint64) error {
	return as.Store(addr, device.W64, value)
}
