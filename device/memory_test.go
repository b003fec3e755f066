package device

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		order binary.ByteOrder
	}){
		{"little", binary.LittleEndian},
		{"big", binary.BigEndian},
		{"default", nil},
	}

	values := map[Width]uint64{
		W8:  0xa5,
		W16: 0xbeef,
		W32: 0xcafef00d,
		W64: 0x0123456789abcdef,
	}

	for _, entry := range table {
		ram := NewRam(16, entry.order)
		for _, width := range Widths {
			for offset := uint64(0); offset+width.Bytes() <= ram.Size(); offset++ {
				err := ram.Store(offset, width, values[width])
				assert.NoError(err, entry.name)
				value, err := ram.Fetch(offset, width)
				assert.NoError(err, entry.name)
				assert.Equal(values[width], value, "%v %v 0x%x", entry.name, width, offset)
			}
		}
	}
}

func TestMemory_ByteOrder(t *testing.T) {
	assert := assert.New(t)

	le := NewRam(4, binary.LittleEndian)
	be := NewRam(4, binary.BigEndian)

	assert.NoError(le.Store(0, W16, 0x1234))
	assert.NoError(be.Store(0, W16, 0x1234))

	lo, _ := le.Fetch(0, W8)
	assert.Equal(uint64(0x34), lo)
	hi, _ := be.Fetch(0, W8)
	assert.Equal(uint64(0x12), hi)
}

func TestMemory_Truncate(t *testing.T) {
	assert := assert.New(t)

	ram := NewRam(8, nil)
	assert.NoError(ram.Store(0, W8, 0x1ff))
	value, err := ram.Fetch(0, W8)
	assert.NoError(err)
	assert.Equal(uint64(0xff), value)

	value, err = ram.Fetch(1, W8)
	assert.NoError(err)
	assert.Equal(uint64(0), value)
}

func TestMemory_OutOfRange(t *testing.T) {
	assert := assert.New(t)

	ram := NewRam(8, nil)
	ram.Label = "scratch"

	_, err := ram.Fetch(8, W8)
	var oor *ErrOutOfRange
	assert.True(errors.As(err, &oor))
	assert.Equal(&ErrOutOfRange{Device: "scratch", Offset: 8, Size: 8, Span: 1}, oor)

	err = ram.Store(4, W64, 0)
	assert.True(errors.As(err, &oor))
	assert.Equal(uint64(8), oor.Span)
	assert.Equal(uint64(4), oor.Offset)

	_, err = ram.Fetch(^uint64(0), W16)
	assert.ErrorIs(err, &ErrOutOfRange{})

	_, err = ram.Fetch(0, Width(12))
	assert.ErrorIs(err, ErrWidthInvalid)
}

func TestMemory_ReadOnly(t *testing.T) {
	assert := assert.New(t)

	rom := NewRom(4, nil)
	assert.False(rom.Writable())
	assert.Equal("ROM", rom.Name())

	value, err := rom.Fetch(0, W32)
	assert.NoError(err)
	assert.Equal(uint64(0xffffffff), value)

	assert.NoError(rom.Load([]byte{0x3e, 0x05, 0x76}))
	assert.ErrorIs(rom.Load([]byte{0}), ErrLoaded)

	for offset := range uint64(8) {
		for _, width := range Widths {
			err = rom.Store(offset, width, 0)
			assert.ErrorIs(err, &ErrWriteProtected{}, "0x%x %v", offset, width)
		}
	}

	value, err = rom.Fetch(0, W32)
	assert.NoError(err)
	assert.Equal(uint64(0xff76053e), value)

	assert.ErrorIs(rom.Clear(), &ErrWriteProtected{})
}

func TestMemory_LoadTooLarge(t *testing.T) {
	assert := assert.New(t)

	rom := NewRom(2, nil)
	err := rom.Load([]byte{1, 2, 3})
	assert.ErrorIs(err, &ErrOutOfRange{})

	// A failed load does not consume the one-time load.
	assert.NoError(rom.Load([]byte{1, 2}))
}

func TestMemory_Clear(t *testing.T) {
	assert := assert.New(t)

	ram := NewRam(4, nil)
	assert.True(ram.Writable())
	assert.NoError(ram.Load([]byte{1, 2, 3, 4}))
	assert.NoError(ram.Clear())

	value, err := ram.Fetch(0, W32)
	assert.NoError(err)
	assert.Equal(uint64(0), value)
}
