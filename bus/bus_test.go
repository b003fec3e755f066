package bus

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/retrocore/device"
)

func newSpace(t *testing.T) (as *AddressSpace, ram *device.Memory, rom *device.Memory) {
	as = NewAddressSpace("memory", 0x10000)

	ram = device.NewRam(0x1000, nil)
	rom = device.NewRom(0x100, nil)
	assert.NoError(t, rom.Load([]byte{0x3e, 0x05, 0x76}))

	assert.NoError(t, as.Register(ram, 0x0000, 0x1000))
	assert.NoError(t, as.Register(rom, 0x1000, 0x100))

	return
}

func TestAddressSpace_Register(t *testing.T) {
	assert := assert.New(t)

	as, _, _ := newSpace(t)

	ranges := slices.Collect(as.Ranges())
	assert.Equal([]Range{
		{Name: "RAM", Base: 0x0000, Size: 0x1000},
		{Name: "ROM", Base: 0x1000, Size: 0x100},
	}, ranges)
}

func TestAddressSpace_Overlap(t *testing.T) {
	assert := assert.New(t)

	as, _, _ := newSpace(t)
	before := slices.Collect(as.Ranges())

	shadow := device.NewRam(0x10, nil)
	err := as.Register(shadow, 0x0800, 0x10)
	assert.ErrorIs(err, &ErrOverlap{})

	var overlap *ErrOverlap
	assert.True(errors.As(err, &overlap))
	assert.Equal(Range{Name: "RAM", Base: 0, Size: 0x1000}, overlap.Existing)
	assert.Equal(Range{Name: "RAM", Base: 0x0800, Size: 0x10}, overlap.Range)

	assert.Equal(before, slices.Collect(as.Ranges()))
	dev, _, ok := as.Device(0x0800)
	assert.True(ok)
	assert.NotSame(shadow, dev)

	// Closed-open: touching ranges do not overlap.
	assert.NoError(as.Register(shadow, 0x1100, 0x10))
	assert.ErrorIs(as.Register(device.NewRam(2, nil), 0x10ff, 2), &ErrOverlap{})
	assert.ErrorIs(as.Register(device.NewRam(2, nil), 0x110f, 2), &ErrOverlap{})
}

func TestAddressSpace_RegisterInvalid(t *testing.T) {
	assert := assert.New(t)

	as := NewAddressSpace("io", 0x100)

	assert.ErrorIs(as.Register(nil, 0, 1), ErrDeviceMissing)
	assert.ErrorIs(as.Register(device.NewPorts(4, nil), 0, 0), ErrSizeInvalid)
	assert.ErrorIs(as.Register(device.NewPorts(4, nil), 0, 5), ErrSizeInvalid)
	assert.ErrorIs(as.Register(device.NewPorts(4, nil), 0xfe, 4), &device.ErrOutOfRange{})
	assert.ErrorIs(as.Register(device.NewPorts(4, nil), 0x100, 1), &device.ErrOutOfRange{})

	// Partial registration of a larger device is permitted.
	assert.NoError(as.Register(device.NewPorts(4, nil), 0xfe, 2))

	wide := NewAddressSpace("wide", 0)
	assert.ErrorIs(wide.Register(device.NewRam(4, nil), ^uint64(0)-1, 4), &device.ErrOutOfRange{})
	assert.NoError(wide.Register(device.NewRam(4, nil), ^uint64(0)-3, 4))
}

func TestAddressSpace_Isolation(t *testing.T) {
	assert := assert.New(t)

	as, ram, rom := newSpace(t)
	other := device.NewRam(0x100, nil)
	assert.NoError(as.Register(other, 0x2000, 0x100))

	for addr := uint64(0); addr < 0x1000; addr += 0x7f {
		assert.NoError(as.Store8(addr, 0xaa))
	}

	for offset := range other.Size() {
		value, err := other.Fetch(offset, device.W8)
		assert.NoError(err)
		assert.Equal(uint64(0), value)
	}

	value, err := rom.Fetch(0, device.W32)
	assert.NoError(err)
	assert.Equal(uint64(0xff76053e), value)

	value, err = ram.Fetch(0x7f, device.W8)
	assert.NoError(err)
	assert.Equal(uint64(0xaa), value)
}

func TestAddressSpace_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	as, _, _ := newSpace(t)

	assert.NoError(as.Store8(0x10, 0x12))
	v8, err := as.Fetch8(0x10)
	assert.NoError(err)
	assert.Equal(uint8(0x12), v8)

	assert.NoError(as.Store16(0x20, 0x1234))
	v16, err := as.Fetch16(0x20)
	assert.NoError(err)
	assert.Equal(uint16(0x1234), v16)

	assert.NoError(as.Store32(0x30, 0x12345678))
	v32, err := as.Fetch32(0x30)
	assert.NoError(err)
	assert.Equal(uint32(0x12345678), v32)

	assert.NoError(as.Store64(0xff8, 0x123456789abcdef0))
	v64, err := as.Fetch64(0xff8)
	assert.NoError(err)
	assert.Equal(uint64(0x123456789abcdef0), v64)

	// Little-endian device: the low byte is first.
	v8, err = as.Fetch8(0x20)
	assert.NoError(err)
	assert.Equal(uint8(0x34), v8)
}

func TestAddressSpace_Unmapped(t *testing.T) {
	assert := assert.New(t)

	as, _, _ := newSpace(t)

	for _, addr := range []uint64{0x1100, 0x8000, 0xffff, 0x10000} {
		_, err := as.Fetch(addr, device.W8)
		assert.ErrorIs(err, &ErrUnmapped{}, "0x%x", addr)

		err = as.Store(addr, device.W8, 0)
		assert.ErrorIs(err, &ErrUnmapped{}, "0x%x", addr)
	}

	_, err := as.Fetch(0x9000, device.W16)
	var unmapped *ErrUnmapped
	assert.True(errors.As(err, &unmapped))
	assert.Equal("memory", unmapped.Space)
	assert.Equal(uint64(0x9000), unmapped.Address)
	assert.Equal(device.W16, unmapped.Width)
	assert.Len(unmapped.Ranges, 2)
}

func TestAddressSpace_Straddle(t *testing.T) {
	assert := assert.New(t)

	as, ram, _ := newSpace(t)

	// RAM ends at 0x0fff, ROM starts at 0x1000.
	err := as.Store16(0x0fff, 0xbeef)
	assert.ErrorIs(err, &ErrUnmapped{})

	value, err := ram.Fetch(0xfff, device.W8)
	assert.NoError(err)
	assert.Equal(uint64(0), value)

	_, err = as.Fetch32(0x0ffe)
	assert.ErrorIs(err, &ErrUnmapped{})

	// ROM ends at 0x10ff, followed by nothing.
	_, err = as.Fetch16(0x10ff)
	assert.ErrorIs(err, &ErrUnmapped{})
}

func TestAddressSpace_WriteProtected(t *testing.T) {
	assert := assert.New(t)

	as, _, _ := newSpace(t)

	err := as.Store8(0x1000, 0x00)
	assert.ErrorIs(err, &device.ErrWriteProtected{})

	v8, err := as.Fetch8(0x1000)
	assert.NoError(err)
	assert.Equal(uint8(0x3e), v8)

	err = as.Load(0x0ffe, []byte{1, 2, 3})
	assert.ErrorIs(err, &device.ErrWriteProtected{})
	v8, _ = as.Fetch8(0x0fff)
	assert.Equal(uint8(2), v8)

	// Already holds its image.
	err = as.Load(0x1000, []byte{0x00})
	assert.ErrorIs(err, device.ErrLoaded)
}

func TestAddressSpace_LoadImage(t *testing.T) {
	assert := assert.New(t)

	as := NewAddressSpace("memory", 0x10000)
	rom := device.NewRom(0x100, nil)
	assert.NoError(as.Register(rom, 0x2000, 0x100))

	err := as.Load(0x2000, []byte{0xc3, 0x00, 0x20})
	assert.NoError(err)

	v16, err := as.Fetch16(0x2001)
	assert.NoError(err)
	assert.Equal(uint16(0x2000), v16)

	v8, err := as.Fetch8(0x2003)
	assert.NoError(err)
	assert.Equal(uint8(device.ERASED), v8)
}

func TestAddressSpace_Ports(t *testing.T) {
	assert := assert.New(t)

	io := NewAddressSpace("io", 0x100)
	ports := device.NewPorts(2, nil)
	assert.NoError(io.Register(ports, 0x10, 2))

	assert.NoError(io.Out(0x11, device.W8, 0x55))
	value, err := ports.Fetch(1, device.W8)
	assert.NoError(err)
	assert.Equal(uint64(0x55), value)

	value, err = io.In(0x11, device.W8)
	assert.NoError(err)
	assert.Equal(uint64(0x55), value)

	_, err = io.In(0x12, device.W8)
	assert.ErrorIs(err, &ErrUnmapped{})

	_, err = io.In(0x10, device.Width(3))
	assert.ErrorIs(err, device.ErrWidthInvalid)
}

func TestRange(t *testing.T) {
	assert := assert.New(t)

	r := Range{Name: "RAM", Base: 0x10, Size: 0x10}
	assert.True(r.Contains(0x10))
	assert.True(r.Contains(0x1f))
	assert.False(r.Contains(0x20))
	assert.False(r.Contains(0x0f))
	assert.Equal(uint64(0x1f), r.Last())
	assert.Equal("RAM[0x0010-0x001f]", r.String())

	assert.True(r.Overlaps(Range{Base: 0x1f, Size: 1}))
	assert.False(r.Overlaps(Range{Base: 0x20, Size: 1}))
	assert.False(r.Overlaps(Range{Base: 0x0, Size: 0x10}))
	assert.True(r.Overlaps(Range{Base: 0x0, Size: 0x100}))
	assert.False(r.Overlaps(Range{Base: 0x10, Size: 0}))
}
