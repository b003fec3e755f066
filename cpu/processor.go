package cpu

import (
	"errors"
	"fmt"
	"log"

	"github.com/ezrec/retrocore/device"
)

// DebugFunc is called after every executed instruction with the sequence
// index of the instruction and a view of the registers. Returning false halts
// the processor.
type DebugFunc func(index uint64, regs RegisterView) bool

// Instruction is the instruction most recently fetched.
type Instruction struct {
	Address uint64    // Address of the first byte.
	Raw     []byte    // Encoded bytes.
	Op      Operation // Decoded operation, once decoded.
}

// Processor is the simulation context of a single CPU.
type Processor struct {
	Verbose bool // Set to enable verbose logging.

	Target Target // Instruction set.
	Clock  Clock  // Instruction pacing.

	regs  RegisterFile
	mem   Space
	io    Space
	debug DebugFunc

	state  State
	reason HaltReason
	fault  error
	index  uint64
	ins    Instruction
}

// NewProcessor creates a processor for a target, in its reset state.
func NewProcessor(target Target, clock Clock) (p *Processor) {
	p = &Processor{
		Target: target,
		Clock:  clock,
		regs:   target.NewRegisters(),
	}
	p.Reset()

	return
}

// Setup attaches the memory and I/O address spaces.
// The processor does not own them.
func (p *Processor) Setup(mem Space, io Space) {
	p.mem = mem
	p.io = io
}

// Reset the processor.
// - Resets the registers to the target's reset state.
// - Sets the program counter to the reset vector.
// - Clears the halt state and instruction index.
func (p *Processor) Reset() {
	if p.Verbose {
		log.Printf("cpu: reset")
	}

	p.regs.Reset()
	p.regs.SetPC(p.Target.ResetVector())

	p.state = STATE_RESET
	p.reason = HALT_NONE
	p.fault = nil
	p.index = 0
	p.ins = Instruction{}
}

// Registers returns the register file.
func (p *Processor) Registers() RegisterFile {
	return p.regs
}

// State returns the next phase of the instruction cycle.
func (p *Processor) State() State {
	return p.state
}

// Halted returns true once the processor has halted.
func (p *Processor) Halted() bool {
	return p.state == STATE_HALTED
}

// HaltReason returns why the processor halted, and the fault for HALT_FAULT.
func (p *Processor) HaltReason() (reason HaltReason, fault error) {
	return p.reason, p.fault
}

// Index returns the number of instructions executed since the last reset.
func (p *Processor) Index() uint64 {
	return p.index
}

// Instruction returns the instruction most recently fetched.
func (p *Processor) Instruction() Instruction {
	return p.ins
}

// SetupDebug installs the per-instruction debug callback.
func (p *Processor) SetupDebug(debug DebugFunc) {
	p.debug = debug
}

// StopDebug removes the debug callback.
func (p *Processor) StopDebug() {
	p.debug = nil
}

// halt stops the processor until the next reset.
func (p *Processor) halt(reason HaltReason, fault error) {
	if p.Verbose {
		log.Printf("cpu: halt %v at 0x%04x: %v", reason, p.ins.Address, fault)
	}
	p.state = STATE_HALTED
	p.reason = reason
	p.fault = fault
}

// Fault halts the processor for an error raised outside of an instruction,
// such as by a peripheral. The fault is attributed to the last instruction.
func (p *Processor) Fault(err error) error {
	if p.Halted() {
		return p.fault
	}

	fault := &ErrFault{Address: p.ins.Address, Err: err}
	if p.ins.Op != nil {
		fault.Instruction = p.ins.Op.String()
	}
	p.halt(HALT_FAULT, fault)

	return fault
}

// wrap an instruction address around the target span.
func (p *Processor) wrap(addr uint64) uint64 {
	span := p.Target.Span()
	if span == 0 {
		return addr
	}
	return addr % span
}

// FetchInstruction reads the instruction at the program counter, one byte at
// a time, and advances the program counter past it. The first byte selects
// the instruction length, and no more bytes than that are read.
func (p *Processor) FetchInstruction() (err error) {
	switch p.state {
	case STATE_RESET, STATE_FETCHING:
	case STATE_HALTED:
		return ErrHalted
	default:
		return ErrPhase
	}

	if p.mem == nil || p.io == nil {
		return ErrSetup
	}

	pc := p.regs.PC()
	p.ins = Instruction{Address: pc}

	defer func() {
		if err != nil {
			err = &ErrFault{Address: pc, Err: err}
			p.halt(HALT_FAULT, err)
		}
	}()

	first, err := p.mem.Fetch(pc, device.W8)
	if err != nil {
		return
	}

	length, err := p.Target.Length(byte(first))
	if err != nil {
		return
	}

	raw := make([]byte, length)
	raw[0] = byte(first)
	for n := 1; n < length; n++ {
		var value uint64
		value, err = p.mem.Fetch(p.wrap(pc+uint64(n)), device.W8)
		if err != nil {
			return
		}
		raw[n] = byte(value)
	}

	p.ins.Raw = raw
	p.regs.SetPC(p.wrap(pc + uint64(length)))
	p.state = STATE_DECODING

	return
}

// DecodeInstruction decodes the fetched instruction.
func (p *Processor) DecodeInstruction() (err error) {
	switch p.state {
	case STATE_DECODING:
	case STATE_HALTED:
		return ErrHalted
	default:
		return ErrPhase
	}

	op, err := p.Target.Decode(p.ins.Raw)
	if err != nil {
		err = &ErrFault{Address: p.ins.Address, Err: err}
		p.halt(HALT_FAULT, err)
		return
	}

	p.ins.Op = op
	p.state = STATE_EXECUTING

	return
}

// ExecuteInstruction executes the decoded instruction, decoding it first if
// needed, and returns the cycles it took. The debug callback, if any, is
// called after the instruction completes.
func (p *Processor) ExecuteInstruction() (cycles int, err error) {
	if p.state == STATE_DECODING {
		err = p.DecodeInstruction()
		if err != nil {
			return
		}
	}

	switch p.state {
	case STATE_EXECUTING:
	case STATE_HALTED:
		err = ErrHalted
		return
	default:
		err = ErrPhase
		return
	}

	if p.Verbose {
		log.Printf("0x%04x: %v", p.ins.Address, p.ins.Op)
	}

	cycles, err = p.ins.Op.Execute(p.regs, p.mem, p.io)
	index := p.index
	p.index++

	switch {
	case errors.Is(err, ErrHalt):
		err = nil
		p.halt(HALT_INSTRUCTION, nil)
	case err != nil:
		err = &ErrFault{Address: p.ins.Address, Instruction: p.ins.Op.String(), Err: err}
		p.halt(HALT_FAULT, err)
		return
	default:
		p.state = STATE_FETCHING
	}

	if p.debug != nil && !p.debug(index, p.regs) && !p.Halted() {
		p.halt(HALT_DEBUG, nil)
	}

	return
}

// Step runs one complete instruction cycle.
func (p *Processor) Step() (cycles int, err error) {
	err = p.FetchInstruction()
	if err != nil {
		return
	}

	return p.ExecuteInstruction()
}

// AssembleInstruction encodes a single instruction.
func (p *Processor) AssembleInstruction(text string) ([]byte, error) {
	return p.Target.Assemble(text)
}

// DisassembleInstruction decodes a single instruction into its text.
func (p *Processor) DisassembleInstruction(raw []byte) (string, error) {
	return p.Target.Disassemble(raw)
}

// String returns the current register state as a string.
func (p *Processor) String() (text string) {
	for name, value := range p.regs.Registers() {
		text += fmt.Sprintf("% 5s: 0x%04x\n", name, value)
	}
	text += fmt.Sprintf("% 5s: %v\n", "state", p.state)

	return
}
