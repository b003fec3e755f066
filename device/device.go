package device

import (
	"encoding/binary"
)

// Device is a single addressable unit of storage or I/O.
type Device interface {
	// Name returns a human readable name, used in diagnostics.
	Name() string
	// Size returns the number of addressable bytes.
	Size() uint64
	// Writable returns false if every Store will be rejected.
	Writable() bool
	// Fetch reads width bits starting at a local offset.
	Fetch(offset uint64, width Width) (value uint64, err error)
	// Store writes width bits starting at a local offset.
	Store(offset uint64, width Width, value uint64) (err error)
}

// Policy is the write policy of a memory device.
type Policy int

//go:generate go tool stringer -linecomment -type=Policy
const (
	POLICY_READ_WRITE = Policy(0) // rw
	POLICY_READ_ONLY  = Policy(1) // ro
)

// storage is a byte array accessed at any Width in a fixed byte order.
type storage struct {
	order binary.ByteOrder
	data  []byte
}

func newStorage(size uint64, order binary.ByteOrder) storage {
	if order == nil {
		order = binary.LittleEndian
	}
	return storage{order: order, data: make([]byte, size)}
}

func (s *storage) size() uint64 {
	return uint64(len(s.data))
}

// check validates that [offset, offset+width/8) lies within the storage.
func (s *storage) check(name string, offset uint64, width Width) (err error) {
	if !width.Valid() {
		err = ErrWidthInvalid
		return
	}

	span := width.Bytes()
	size := s.size()
	if offset >= size || span > size-offset {
		err = &ErrOutOfRange{Device: name, Offset: offset, Size: size, Span: span}
	}

	return
}

func (s *storage) fetch(offset uint64, width Width) (value uint64) {
	b := s.data[offset : offset+width.Bytes()]
	switch width {
	case W8:
		value = uint64(b[0])
	case W16:
		value = uint64(s.order.Uint16(b))
	case W32:
		value = uint64(s.order.Uint32(b))
	case W64:
		value = s.order.Uint64(b)
	}
	return
}

func (s *storage) store(offset uint64, width Width, value uint64) {
	b := s.data[offset : offset+width.Bytes()]
	switch width {
	case W8:
		b[0] = uint8(value)
	case W16:
		s.order.PutUint16(b, uint16(value))
	case W32:
		s.order.PutUint32(b, uint32(value))
	case W64:
		s.order.PutUint64(b, value)
	}
}
