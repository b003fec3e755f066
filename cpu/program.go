package cpu

import (
	"fmt"
	"io"
	"iter"
	"strings"
)

// Opcode is a single assembled statement.
type Opcode struct {
	LineNo    int      // Source line.
	Addr      uint64   // Address of the first byte.
	Words     []string // Mnemonic and operands, after equate substitution.
	Bytes     []byte   // Encoded bytes.
	LinkLabel string   // Forward referenced label, if any.
}

// Program is an assembled program.
type Program struct {
	Opcodes []Opcode
}

// Debug locates an address within a program.
type Debug struct {
	*Opcode
	Index int // Byte index of the address within the opcode.
}

// Debug returns the opcode that contains an address.
// The Opcode is nil if no opcode contains it.
func (prog *Program) Debug(addr uint64) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if addr >= op.Addr && addr < op.Addr+uint64(len(op.Bytes)) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr - op.Addr),
			}
			break
		}
	}

	return
}

// Origin returns the lowest address of the program.
func (prog *Program) Origin() (origin uint64) {
	first := true
	for addr := range prog.Codes() {
		if first || addr < origin {
			origin = addr
			first = false
		}
	}

	return
}

// End returns the address just past the highest byte of the program.
func (prog *Program) End() (end uint64) {
	for addr := range prog.Codes() {
		if addr+1 > end {
			end = addr + 1
		}
	}

	return
}

// Binary returns the program image from its origin to its end.
// Gaps between opcodes are zero.
func (prog *Program) Binary() (bin []byte) {
	origin := prog.Origin()
	end := prog.End()
	if end <= origin {
		return
	}

	bin = make([]byte, end-origin)
	for addr, b := range prog.Codes() {
		bin[addr-origin] = b
	}

	return
}

// Codes iterates over every byte of the program, with its address.
func (prog *Program) Codes() iter.Seq2[uint64, byte] {
	return func(yield func(addr uint64, b byte) bool) {
		for _, op := range prog.Opcodes {
			for n, b := range op.Bytes {
				if !yield(op.Addr+uint64(n), b) {
					return
				}
			}
		}
	}
}

// Listing writes an assembly listing of the program.
func (prog *Program) Listing(w io.Writer) (err error) {
	for _, op := range prog.Opcodes {
		var hex []string
		for _, b := range op.Bytes {
			hex = append(hex, fmt.Sprintf("%02x", b))
		}
		_, err = fmt.Fprintf(w, "%04x: %-12s %5d  %v\n", op.Addr, strings.Join(hex, " "), op.LineNo, strings.Join(op.Words, " "))
		if err != nil {
			return
		}
	}

	return
}
