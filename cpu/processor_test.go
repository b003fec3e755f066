package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/retrocore/bus"
	"github.com/ezrec/retrocore/device"
)

func newToy(t *testing.T, code []byte) (p *Processor, mem *bus.AddressSpace, io *bus.AddressSpace, ports *device.Ports) {
	assert := assert.New(t)

	mem = bus.NewAddressSpace("memory", 0x10000)
	assert.NoError(mem.Register(device.NewRam(0x1000, nil), 0x0000, 0x1000))
	rom := device.NewRom(0x100, nil)
	assert.NoError(rom.Load(code))
	assert.NoError(mem.Register(rom, 0x1000, 0x100))

	io = bus.NewAddressSpace("io", 0x100)
	ports = device.NewPorts(4, nil)
	assert.NoError(io.Register(ports, 0x10, 4))

	p = NewProcessor(&toyTarget{reset: 0x1000}, Clock{})
	p.Setup(mem, io)

	return
}

func TestProcessor_Reset(t *testing.T) {
	assert := assert.New(t)

	p, _, _, _ := newToy(t, []byte{0xff})

	assert.Equal(STATE_RESET, p.State())
	assert.Equal(uint64(0x1000), p.Registers().PC())
	assert.Equal(uint64(0), p.Index())

	_, err := p.Step()
	assert.NoError(err)
	assert.True(p.Halted())

	p.Reset()
	assert.False(p.Halted())
	assert.Equal(uint64(0x1000), p.Registers().PC())
	reason, fault := p.HaltReason()
	assert.Equal(HALT_NONE, reason)
	assert.NoError(fault)
}

func TestProcessor_Phases(t *testing.T) {
	assert := assert.New(t)

	p, _, _, _ := newToy(t, []byte{0x01, 0x05, 0xff})

	_, err := p.ExecuteInstruction()
	assert.ErrorIs(err, ErrPhase)
	assert.ErrorIs(p.DecodeInstruction(), ErrPhase)

	assert.NoError(p.FetchInstruction())
	assert.Equal(STATE_DECODING, p.State())
	assert.Equal(uint64(0x1002), p.Registers().PC())
	assert.Equal([]byte{0x01, 0x05}, p.Instruction().Raw)
	assert.ErrorIs(p.FetchInstruction(), ErrPhase)

	assert.NoError(p.DecodeInstruction())
	assert.Equal(STATE_EXECUTING, p.State())
	assert.Equal("ldi 0x05", p.Instruction().Op.String())

	cycles, err := p.ExecuteInstruction()
	assert.NoError(err)
	assert.Equal(4, cycles)
	assert.Equal(STATE_FETCHING, p.State())
	assert.Equal(uint64(1), p.Index())

	// Execute decodes when needed.
	assert.NoError(p.FetchInstruction())
	_, err = p.ExecuteInstruction()
	assert.NoError(err)
	assert.True(p.Halted())
	reason, fault := p.HaltReason()
	assert.Equal(HALT_INSTRUCTION, reason)
	assert.NoError(fault)

	assert.ErrorIs(p.FetchInstruction(), ErrHalted)
	_, err = p.Step()
	assert.ErrorIs(err, ErrHalted)
}

func TestProcessor_Setup(t *testing.T) {
	assert := assert.New(t)

	p := NewProcessor(&toyTarget{}, Clock{})
	assert.ErrorIs(p.FetchInstruction(), ErrSetup)
	assert.False(p.Halted())
}

func TestProcessor_Io(t *testing.T) {
	assert := assert.New(t)

	p, mem, _, ports := newToy(t, []byte{
		0x01, 0x42, // ldi 0x42
		0x03, 0x11, // out 0x11
		0x05, 0x00, 0x02, // st 0x0200
		0x01, 0x00, // ldi 0
		0x04, 0x11, // in 0x11
		0xff,
	})

	for !p.Halted() {
		_, err := p.Step()
		assert.NoError(err)
	}

	v8, err := ports.In(1, device.W8)
	assert.NoError(err)
	assert.Equal(uint64(0x42), v8)

	m8, err := mem.Fetch8(0x0200)
	assert.NoError(err)
	assert.Equal(uint8(0x42), m8)

	assert.Equal(uint64(0x42), p.Registers().(*toyRegisters).a)
	assert.Equal(uint64(6), p.Index())
}

func TestProcessor_Fault(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		name    string
		code    []byte
		address uint64
		err     error
	}{
		{"unknown", []byte{0x01, 0x05, 0x77}, 0x1002, ErrUnknownInstruction(0)},
		{"unmapped-io", []byte{0x03, 0x80}, 0x1000, &bus.ErrUnmapped{}},
		{"protected", []byte{0x05, 0x00, 0x10}, 0x1000, &device.ErrWriteProtected{}},
		{"unmapped-fetch", []byte{0x02, 0x00, 0x20}, 0x2000, &bus.ErrUnmapped{}},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			p, _, _, _ := newToy(t, entry.code)

			var err error
			for range 4 {
				_, err = p.Step()
				if err != nil {
					break
				}
			}

			var fault *ErrFault
			if assert.ErrorAs(err, &fault) {
				assert.Equal(entry.address, fault.Address)
			}
			assert.ErrorIs(err, entry.err)
			assert.True(p.Halted())

			reason, kept := p.HaltReason()
			assert.Equal(HALT_FAULT, reason)
			assert.Equal(err, kept)
		})
	}
}

func TestProcessor_Debug(t *testing.T) {
	assert := assert.New(t)

	// Loop forever.
	p, _, _, _ := newToy(t, []byte{0x00, 0x02, 0x00, 0x10})

	var seen []uint64
	p.SetupDebug(func(index uint64, regs RegisterView) bool {
		seen = append(seen, index)
		return index < 4
	})

	for !p.Halted() {
		_, err := p.Step()
		assert.NoError(err)
	}

	assert.Equal([]uint64{0, 1, 2, 3, 4}, seen)
	reason, fault := p.HaltReason()
	assert.Equal(HALT_DEBUG, reason)
	assert.NoError(fault)
	assert.Equal(uint64(5), p.Index())

	p.Reset()
	p.StopDebug()
	for range 10 {
		_, err := p.Step()
		assert.NoError(err)
	}
	assert.False(p.Halted())
}

func TestProcessor_Assemble(t *testing.T) {
	assert := assert.New(t)

	p := NewProcessor(&toyTarget{}, Clock{})

	raw, err := p.AssembleInstruction("jmp 0x1234")
	assert.NoError(err)
	assert.Equal([]byte{0x02, 0x34, 0x12}, raw)

	text, err := p.DisassembleInstruction(raw)
	assert.NoError(err)
	assert.Equal("jmp 0x1234", text)

	_, err = p.AssembleInstruction("bogus")
	assert.ErrorIs(err, ErrUnknownOpcode(""))

	_, err = p.AssembleInstruction("jmp x")
	assert.ErrorIs(err, &ErrInvalidOperand{})

	_, err = p.DisassembleInstruction([]byte{0x77})
	assert.ErrorIs(err, ErrUnknownInstruction(0))
}

func TestProcessor_String(t *testing.T) {
	assert := assert.New(t)

	p := NewProcessor(&toyTarget{reset: 0x100}, Clock{})
	assert.Equal("    a: 0x0000\n   pc: 0x0100\nstate: reset\n", p.String())
}

func TestProcessor_ExternalFault(t *testing.T) {
	assert := assert.New(t)

	p, _, _, _ := newToy(t, []byte{0x01, 0x05, 0xff})

	_, err := p.Step()
	assert.NoError(err)

	errTest := errors.New("peripheral")
	err = p.Fault(errTest)
	assert.ErrorIs(err, errTest)
	assert.True(p.Halted())

	var fault *ErrFault
	if assert.ErrorAs(err, &fault) {
		assert.Equal(uint64(0x1000), fault.Address)
		assert.Equal("ldi 0x05", fault.Instruction)
	}

	// The first fault is kept.
	assert.Equal(err, p.Fault(errors.New("other")))
}

func TestProcessor_FetchWrap(t *testing.T) {
	assert := assert.New(t)

	mem := bus.NewAddressSpace("memory", 0x10000)
	ram := device.NewRam(0x10000, nil)
	assert.NoError(mem.Register(ram, 0, 0x10000))
	assert.NoError(mem.Store8(0xffff, 0x06)) // ldi 0x1234
	assert.NoError(mem.Store8(0x0000, 0x34))
	assert.NoError(mem.Store8(0x0001, 0x12))

	p := NewProcessor(&toyTarget{reset: 0xffff}, Clock{})
	p.Setup(mem, bus.NewAddressSpace("io", 0x100))

	_, err := p.Step()
	assert.NoError(err)
	assert.Equal([]byte{0x06, 0x34, 0x12}, p.Instruction().Raw)
	assert.Equal(uint64(0xffff), p.Instruction().Address)
	assert.Equal(uint64(0x1234), p.Registers().(*toyRegisters).a)
	assert.Equal(uint64(0x0002), p.Registers().PC())
}
