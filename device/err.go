package device

import (
	"errors"

	"github.com/ezrec/retrocore/translate"
)

var f = translate.From

var (
	ErrWidthInvalid = errors.New(f("access width invalid"))
	ErrLoaded       = errors.New(f("contents already loaded"))
)

// ErrOutOfRange is returned when an access falls outside of a device.
type ErrOutOfRange struct {
	Device string // Name of the device.
	Offset uint64 // Requested local offset.
	Size   uint64 // Size of the device.
	Span   uint64 // Number of bytes requested.
}

func (err *ErrOutOfRange) Error() string {
	if err.Span > 1 {
		return f("%v: offset 0x%x span %d outside [0x0, 0x%x)", err.Device, err.Offset, err.Span, err.Size)
	}
	return f("%v: offset 0x%x outside [0x0, 0x%x)", err.Device, err.Offset, err.Size)
}

func (err *ErrOutOfRange) Is(target error) (ok bool) {
	_, ok = target.(*ErrOutOfRange)
	return
}

// ErrWriteProtected is returned by any store to a read-only device.
type ErrWriteProtected struct {
	Device string // Name of the device.
	Offset uint64 // Requested local offset.
}

func (err *ErrWriteProtected) Error() string {
	return f("%v: write to offset 0x%x is protected", err.Device, err.Offset)
}

func (err *ErrWriteProtected) Is(target error) (ok bool) {
	_, ok = target.(*ErrWriteProtected)
	return
}
