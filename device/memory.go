package device

import (
	"encoding/binary"
	"log"
)

// ERASED is the value of ROM bytes not covered by a loaded image.
const ERASED = 0xff

// Memory is a RAM or ROM device.
type Memory struct {
	Verbose bool   // If set, enables verbose logging.
	Label   string // Name of the device.
	Policy  Policy // Write policy.

	loaded bool
	storage
}

var _ Device = (*Memory)(nil)

// NewRam creates a zeroed, writable memory device.
func NewRam(size uint64, order binary.ByteOrder) (mem *Memory) {
	mem = &Memory{
		Policy:  POLICY_READ_WRITE,
		storage: newStorage(size, order),
	}
	return
}

// NewRom creates an erased, read-only memory device.
// The contents are set once with Load.
func NewRom(size uint64, order binary.ByteOrder) (mem *Memory) {
	mem = &Memory{
		Policy:  POLICY_READ_ONLY,
		storage: newStorage(size, order),
	}
	for n := range mem.data {
		mem.data[n] = ERASED
	}
	return
}

// Name returns the label of the device.
func (mem *Memory) Name() string {
	if len(mem.Label) != 0 {
		return mem.Label
	}
	if mem.Policy == POLICY_READ_ONLY {
		return "ROM"
	}
	return "RAM"
}

// Size returns the capacity in bytes.
func (mem *Memory) Size() uint64 {
	return mem.size()
}

// Writable is false for read-only memory.
func (mem *Memory) Writable() bool {
	return mem.Policy == POLICY_READ_WRITE
}

// Load sets the initial contents, starting at offset 0.
// It bypasses the write policy and may only be called once, while the
// machine is being assembled.
func (mem *Memory) Load(data []byte) (err error) {
	if mem.loaded {
		err = ErrLoaded
		return
	}

	if uint64(len(data)) > mem.size() {
		err = &ErrOutOfRange{Device: mem.Name(), Offset: 0, Size: mem.size(), Span: uint64(len(data))}
		return
	}

	copy(mem.data, data)
	mem.loaded = true

	if mem.Verbose {
		log.Printf("device: %v: loaded %d bytes", mem.Name(), len(data))
	}

	return
}

// Clear zeroes a writable memory.
func (mem *Memory) Clear() (err error) {
	if !mem.Writable() {
		err = &ErrWriteProtected{Device: mem.Name()}
		return
	}
	clear(mem.data)
	return
}

// Fetch reads from the memory.
func (mem *Memory) Fetch(offset uint64, width Width) (value uint64, err error) {
	err = mem.check(mem.Name(), offset, width)
	if err != nil {
		return
	}

	value = mem.fetch(offset, width)
	return
}

// Store writes to the memory. Stores to read-only memory always fail,
// whatever the offset.
func (mem *Memory) Store(offset uint64, width Width, value uint64) (err error) {
	if !mem.Writable() {
		err = &ErrWriteProtected{Device: mem.Name(), Offset: offset}
		return
	}

	err = mem.check(mem.Name(), offset, width)
	if err != nil {
		return
	}

	mem.store(offset, width, value)
	return
}
