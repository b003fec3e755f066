package cpu

import (
	"encoding/binary"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/ezrec/retrocore/device"
)

// toyTarget is a minimal instruction set for exercising the processor.
//
//	0x00          nop
//	0x01 NN       ldi NN
//	0x06 NN NN    ldi NNNN
//	0x02 NN NN    jmp NNNN
//	0x03 NN       out NN
//	0x04 NN       in NN
//	0x05 NN NN    st NNNN
//	0xff          hlt
type toyTarget struct {
	reset uint64
}

type toyRegisters struct {
	a  uint64
	pc uint64
}

func (regs *toyRegisters) PC() uint64 { return regs.pc }

func (regs *toyRegisters) SetPC(pc uint64) { regs.pc = pc }

func (regs *toyRegisters) Reset() { *regs = toyRegisters{} }

func (regs *toyRegisters) Registers() iter.Seq2[string, uint64] {
	return func(yield func(string, uint64) bool) {
		_ = yield("a", regs.a) && yield("pc", regs.pc)
	}
}

var toyLength = map[byte]int{
	0x00: 1, 0x01: 2, 0x02: 3, 0x03: 2, 0x04: 2, 0x05: 3, 0x06: 3, 0xff: 1,
}

var toyMnemonic = map[byte]string{
	0x00: "nop", 0x01: "ldi", 0x02: "jmp", 0x03: "out", 0x04: "in", 0x05: "st", 0x06: "ldi", 0xff: "hlt",
}

type toyOp []byte

func (op toyOp) String() string {
	switch len(op) {
	case 2:
		return fmt.Sprintf("%v 0x%02x", toyMnemonic[op[0]], op[1])
	case 3:
		return fmt.Sprintf("%v 0x%04x", toyMnemonic[op[0]], binary.LittleEndian.Uint16(op[1:]))
	}
	return toyMnemonic[op[0]]
}

func (op toyOp) Execute(rf RegisterFile, mem Space, io Space) (cycles int, err error) {
	regs := rf.(*toyRegisters)
	cycles = 4
	switch op[0] {
	case 0x01:
		regs.a = uint64(op[1])
	case 0x06:
		regs.a = uint64(binary.LittleEndian.Uint16(op[1:]))
	case 0x02:
		regs.pc = uint64(binary.LittleEndian.Uint16(op[1:]))
	case 0x03:
		err = io.Store(uint64(op[1]), device.W8, regs.a)
	case 0x04:
		regs.a, err = io.Fetch(uint64(op[1]), device.W8)
	case 0x05:
		err = mem.Store(uint64(binary.LittleEndian.Uint16(op[1:])), device.W8, regs.a)
	case 0xff:
		err = ErrHalt
	}
	return
}

func (toy *toyTarget) Name() string { return "toy" }

func (toy *toyTarget) NewRegisters() RegisterFile { return &toyRegisters{} }

func (toy *toyTarget) ResetVector() uint64 { return toy.reset }

func (toy *toyTarget) ByteOrder() binary.ByteOrder { return binary.LittleEndian }

func (toy *toyTarget) Span() uint64 { return 0x10000 }

func (toy *toyTarget) Reserved(word string) bool { return word == "a" }

func (toy *toyTarget) Length(opcode byte) (length int, err error) {
	length, ok := toyLength[opcode]
	if !ok {
		err = ErrUnknownInstruction(opcode)
	}
	return
}

func (toy *toyTarget) Decode(raw []byte) (op Operation, err error) {
	length, err := toy.Length(raw[0])
	if err != nil {
		return
	}
	if len(raw) != length {
		err = ErrUnknownInstruction(raw[0])
		return
	}
	op = toyOp(raw)
	return
}

func (toy *toyTarget) Disassemble(raw []byte) (text string, err error) {
	op, err := toy.Decode(raw)
	if err != nil {
		return
	}
	text = op.String()
	return
}

func (toy *toyTarget) Assemble(text string) (raw []byte, err error) {
	mnemonic, operand, _ := strings.Cut(text, " ")
	var value uint64
	if len(operand) != 0 {
		value, err = strconv.ParseUint(operand, 0, 16)
		if err != nil {
			err = &ErrInvalidOperand{Expected: "number", Actual: operand}
			return
		}
	}
	switch mnemonic {
	case "nop":
		raw = []byte{0x00}
	case "hlt":
		raw = []byte{0xff}
	case "ldi":
		if value > 0xff {
			raw = binary.LittleEndian.AppendUint16([]byte{0x06}, uint16(value))
		} else {
			raw = []byte{0x01, byte(value)}
		}
	case "out":
		raw = []byte{0x03, byte(value)}
	case "in":
		raw = []byte{0x04, byte(value)}
	case "jmp":
		raw = binary.LittleEndian.AppendUint16([]byte{0x02}, uint16(value))
	case "st":
		raw = binary.LittleEndian.AppendUint16([]byte{0x05}, uint16(value))
	default:
		err = ErrUnknownOpcode(mnemonic)
	}
	return
}
