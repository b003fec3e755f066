package cpu

import (
	"encoding/binary"
	"iter"

	"github.com/ezrec/retrocore/device"
)

// Space is an address space as seen by a processor.
type Space interface {
	Fetch(addr uint64, width device.Width) (value uint64, err error)
	Store(addr uint64, width device.Width, value uint64) (err error)
}

// RegisterView is a read-only view of a register file.
type RegisterView interface {
	// PC returns the program counter.
	PC() uint64
	// Registers returns an iterator over the register names and values, in
	// display order.
	Registers() iter.Seq2[string, uint64]
}

// RegisterFile is the register storage of a processor.
type RegisterFile interface {
	RegisterView
	// Reset sets all registers to their architectural reset state.
	Reset()
	// SetPC sets the program counter.
	SetPC(pc uint64)
}

// Operation is a decoded instruction.
type Operation interface {
	// String returns the canonical assembly text of the operation.
	String() string
	// Execute runs the operation, and returns the number of clock cycles it
	// took. A halting operation returns ErrHalt.
	Execute(regs RegisterFile, mem Space, io Space) (cycles int, err error)
}

// Target is an instruction set.
type Target interface {
	// Name of the instruction set.
	Name() string
	// NewRegisters creates a register file in its reset state.
	NewRegisters() RegisterFile
	// ResetVector is the program counter after a reset.
	ResetVector() uint64
	// ByteOrder of multi-byte instruction operands and data.
	ByteOrder() binary.ByteOrder
	// Span of the memory address space. Instruction fetches wrap around it.
	// Zero means no wrap.
	Span() uint64
	// Length returns the encoded length, in bytes, of the instruction
	// selected by its first byte.
	Length(opcode byte) (length int, err error)
	// Decode decodes a complete instruction.
	Decode(raw []byte) (op Operation, err error)
	// Assemble encodes a single instruction.
	Assemble(text string) (raw []byte, err error)
	// Disassemble decodes a single instruction into its canonical text.
	Disassemble(raw []byte) (text string, err error)
	// Reserved returns true for words that are part of the operand syntax,
	// such as register names, and so can never be labels.
	Reserved(word string) bool
}
