// Package bus routes global address accesses to the devices that own them.
//
// An AddressSpace is assembled once, before the machine starts, by
// registering devices at non-overlapping base addresses. After that it is
// only read, so it needs no locking. A machine normally has two: one for
// memory and one for I/O ports.
package bus

import (
	"iter"
	"log"
	"slices"
	"sort"

	"github.com/ezrec/retrocore/device"
)

type entry struct {
	Range
	device device.Device
}

// AddressSpace composes devices into a single global address range.
type AddressSpace struct {
	Verbose bool   // If set, enables verbose logging.
	Name    string // Name used in diagnostics.
	Span    uint64 // Number of addressable locations, or 0 for the full 64-bit range.

	entries []entry // Sorted by base address.
}

// NewAddressSpace creates an empty address space.
func NewAddressSpace(name string, span uint64) *AddressSpace {
	return &AddressSpace{Name: name, Span: span}
}

// Register maps size bytes of a device, starting at its offset 0, to the
// global address base. Overlapping an existing registration, or exceeding
// the span of the space or the size of the device, is an error and leaves
// the space unchanged.
func (as *AddressSpace) Register(dev device.Device, base uint64, size uint64) (err error) {
	if dev == nil {
		err = ErrDeviceMissing
		return
	}

	if size == 0 || size > dev.Size() {
		err = ErrSizeInvalid
		return
	}

	if size-1 > ^uint64(0)-base || (as.Span != 0 && (base >= as.Span || size > as.Span-base)) {
		err = &device.ErrOutOfRange{Device: as.Name, Offset: base, Size: as.Span, Span: size}
		return
	}

	r := Range{Name: dev.Name(), Base: base, Size: size}
	for _, e := range as.entries {
		if e.Overlaps(r) {
			err = &ErrOverlap{Space: as.Name, Range: r, Existing: e.Range}
			return
		}
	}

	index := sort.Search(len(as.entries), func(n int) bool {
		return as.entries[n].Base > base
	})
	as.entries = slices.Insert(as.entries, index, entry{Range: r, device: dev})

	if as.Verbose {
		log.Printf("bus: %v: registered %v", as.Name, r)
	}

	return
}

// Ranges returns an iterator over the registered ranges, in address order.
func (as *AddressSpace) Ranges() iter.Seq[Range] {
	return func(yield func(r Range) bool) {
		for _, e := range as.entries {
			if !yield(e.Range) {
				return
			}
		}
	}
}

// Device returns the device that owns an address, and the local offset of
// the address within it.
func (as *AddressSpace) Device(addr uint64) (dev device.Device, offset uint64, ok bool) {
	e := as.find(addr)
	if e == nil {
		return
	}

	return e.device, addr - e.Base, true
}

// find returns the entry containing addr, or nil.
func (as *AddressSpace) find(addr uint64) *entry {
	index := sort.Search(len(as.entries), func(n int) bool {
		return as.entries[n].Last() >= addr
	})
	if index < len(as.entries) && as.entries[index].Contains(addr) {
		return &as.entries[index]
	}
	return nil
}

// resolve finds the single entry that owns every byte of an access.
func (as *AddressSpace) resolve(addr uint64, width device.Width) (e *entry, offset uint64, err error) {
	e = as.find(addr)
	if e != nil {
		offset = addr - e.Base
		if width.Bytes() <= e.Size-offset {
			return
		}
	}

	err = &ErrUnmapped{
		Space:   as.Name,
		Address: addr,
		Width:   width,
		Ranges:  slices.Collect(as.Ranges()),
	}
	e = nil
	return
}

// Fetch reads width bits from a global address.
func (as *AddressSpace) Fetch(addr uint64, width device.Width) (value uint64, err error) {
	if !width.Valid() {
		err = device.ErrWidthInvalid
		return
	}

	e, offset, err := as.resolve(addr, width)
	if err != nil {
		return
	}

	return e.device.Fetch(offset, width)
}

// Store writes width bits to a global address.
func (as *AddressSpace) Store(addr uint64, width device.Width, value uint64) (err error) {
	if !width.Valid() {
		err = device.ErrWidthInvalid
		return
	}

	e, offset, err := as.resolve(addr, width)
	if err != nil {
		return
	}

	return e.device.Store(offset, width, value)
}

// In reads from an I/O port; it is Fetch under the name used for port spaces.
func (as *AddressSpace) In(port uint64, width device.Width) (uint64, error) {
	return as.Fetch(port, width)
}

// Out writes to an I/O port; it is Store under the name used for port spaces.
func (as *AddressSpace) Out(port uint64, width device.Width, value uint64) error {
	return as.Store(port, width, value)
}

// imageLoader is a read-only device that takes a one-time image.
type imageLoader interface {
	Load(data []byte) error
}

// Load copies data into the space starting at addr.
// Data starting at the first byte of a read-only device that accepts an image
// is loaded as that device's image. Otherwise data is stored one byte at a
// time, and device write policies apply.
func (as *AddressSpace) Load(addr uint64, data []byte) (err error) {
	dev, offset, ok := as.Device(addr)
	if ok && offset == 0 && !dev.Writable() {
		if image, ok := dev.(imageLoader); ok {
			if as.Verbose {
				log.Printf("bus: %v: image 0x%04x (%v bytes)", as.Name, addr, len(data))
			}
			return image.Load(data)
		}
	}

	for n, b := range data {
		err = as.Store(addr+uint64(n), device.W8, uint64(b))
		if err != nil {
			return
		}
	}
	return
}
