package bus

import (
	"errors"
	"strings"

	"github.com/ezrec/retrocore/device"
	"github.com/ezrec/retrocore/translate"
)

var f = translate.From

var (
	ErrDeviceMissing = errors.New(f("device missing"))
	ErrSizeInvalid   = errors.New(f("size invalid"))
)

// ErrUnmapped is returned when no registered device owns an access.
type ErrUnmapped struct {
	Space   string       // Name of the address space.
	Address uint64       // Requested global address.
	Width   device.Width // Requested access width.
	Ranges  []Range      // All registered ranges, for diagnostics.
}

func (err *ErrUnmapped) Error() string {
	mapped := make([]string, len(err.Ranges))
	for n, r := range err.Ranges {
		mapped[n] = r.String()
	}
	return f("%v: unmapped %v access at 0x%x (mapped: %v)", err.Space, err.Width, err.Address, strings.Join(mapped, ", "))
}

func (err *ErrUnmapped) Is(target error) (ok bool) {
	_, ok = target.(*ErrUnmapped)
	return
}

// ErrOverlap is returned when a registration intersects an existing one.
type ErrOverlap struct {
	Space    string // Name of the address space.
	Range    Range  // Rejected range.
	Existing Range  // Registered range that it intersects.
}

func (err *ErrOverlap) Error() string {
	return f("%v: %v overlaps %v", err.Space, err.Range, err.Existing)
}

func (err *ErrOverlap) Is(target error) (ok bool) {
	_, ok = target.(*ErrOverlap)
	return
}
