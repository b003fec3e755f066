package i8080

import (
	"encoding/binary"
	"errors"
	"strings"

	"github.com/ezrec/retrocore/cpu"
	"github.com/ezrec/retrocore/translate"
)

var f = translate.From

// ErrLength is returned when decoding a truncated or overlong instruction.
var ErrLength = errors.New(f("instruction length mismatch"))

// Address space spans.
const (
	MEMORY_SPAN = 0x10000
	IO_SPAN     = 0x100
)

var reserved = map[string]bool{
	"a": true, "b": true, "c": true, "d": true, "e": true, "h": true, "l": true,
	"m": true, "sp": true, "psw": true,
}

// Target is the 8080 instruction set.
type Target struct {
	Vector uint16 // Program counter after reset.
}

var _ cpu.Target = (*Target)(nil)

func (t *Target) Name() string {
	return "i8080"
}

// NewRegisters creates a register file in its reset state.
func (t *Target) NewRegisters() cpu.RegisterFile {
	regs := &Registers{}
	regs.Reset()
	return regs
}

func (t *Target) ResetVector() uint64 {
	return uint64(t.Vector)
}

func (t *Target) ByteOrder() binary.ByteOrder {
	return binary.LittleEndian
}

// Span is the 16-bit address space.
func (t *Target) Span() uint64 {
	return MEMORY_SPAN
}

// Reserved is true for register names, which can not be labels.
func (t *Target) Reserved(word string) bool {
	return reserved[strings.ToLower(word)]
}

// Length returns the length of the instruction starting with opcode.
func (t *Target) Length(opcode byte) (length int, err error) {
	info := opcodes[opcode]
	if info == nil {
		err = cpu.ErrUnknownInstruction(opcode)
		return
	}

	length = info.length
	return
}

// Decode decodes a complete instruction.
func (t *Target) Decode(raw []byte) (op cpu.Operation, err error) {
	if len(raw) == 0 {
		err = ErrLength
		return
	}

	info := opcodes[raw[0]]
	if info == nil {
		err = cpu.ErrUnknownInstruction(raw[0])
		return
	}

	if len(raw) != info.length {
		err = ErrLength
		return
	}

	decoded := &Operation{
		Opcode: raw[0],
		info:   info,
	}
	switch info.length {
	case 2:
		decoded.Data = uint16(raw[1])
	case 3:
		decoded.Data = binary.LittleEndian.Uint16(raw[1:])
	}

	op = decoded
	return
}

// Disassemble returns the canonical text of an instruction.
func (t *Target) Disassemble(raw []byte) (text string, err error) {
	op, err := t.Decode(raw)
	if err != nil {
		return
	}

	text = op.String()
	return
}

// Assemble encodes a single instruction. Mnemonics and register names are
// not case sensitive.
func (t *Target) Assemble(text string) (raw []byte, err error) {
	mnemonic, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	mnemonic = strings.ToLower(mnemonic)

	var operands []string
	rest = strings.TrimSpace(rest)
	if len(rest) != 0 {
		for _, operand := range strings.Split(rest, ",") {
			operands = append(operands, strings.ToLower(strings.TrimSpace(operand)))
		}
	}

	codes, ok := mnemonics[mnemonic]
	if !ok {
		err = cpu.ErrUnknownOpcode(mnemonic)
		return
	}

	// Report the operand that got furthest into a candidate form.
	worst := -1
	for _, code := range codes {
		var bad int
		raw, bad, ok = opcodes[code].match(code, operands)
		if ok {
			return
		}
		worst = max(worst, bad)
	}

	actual := strings.Join(operands, ",")
	if worst >= 0 {
		actual = operands[worst]
	}

	err = &cpu.ErrInvalidOperand{
		Expected: expected(codes),
		Actual:   actual,
	}
	return
}
