package i8080

import (
	"iter"

	"github.com/ezrec/retrocore/internal"
)

// Flag bits of the F register.
const (
	FLAG_CY = byte(0x01) // Carry
	FLAG_1  = byte(0x02) // Always set
	FLAG_P  = byte(0x04) // Even parity
	FLAG_AC = byte(0x10) // Auxiliary carry
	FLAG_Z  = byte(0x40) // Zero
	FLAG_S  = byte(0x80) // Sign

	flagMask = FLAG_CY | FLAG_P | FLAG_AC | FLAG_Z | FLAG_S
)

// Registers is the 8080 register file.
// The 8-bit registers are packed in pairs, high byte first, so the pair
// always reflects the latest write to either half.
type Registers struct {
	psw uint16 // A:F
	bc  uint16
	de  uint16
	hl  uint16
	sp  uint16
	pc  uint16

	inte bool // Interrupts enabled
}

func hi(pair uint16) byte {
	return byte(pair >> 8)
}

func lo(pair uint16) byte {
	return byte(pair)
}

func setHi(pair *uint16, value byte) {
	*pair = (*pair & 0x00ff) | (uint16(value) << 8)
}

func setLo(pair *uint16, value byte) {
	*pair = (*pair & 0xff00) | uint16(value)
}

// Reset clears all registers. Bit 1 of F is always set.
func (regs *Registers) Reset() {
	*regs = Registers{psw: uint16(FLAG_1)}
}

func (regs *Registers) A() byte { return hi(regs.psw) }
func (regs *Registers) F() byte { return lo(regs.psw) }
func (regs *Registers) B() byte { return hi(regs.bc) }
func (regs *Registers) C() byte { return lo(regs.bc) }
func (regs *Registers) D() byte { return hi(regs.de) }
func (regs *Registers) E() byte { return lo(regs.de) }
func (regs *Registers) H() byte { return hi(regs.hl) }
func (regs *Registers) L() byte { return lo(regs.hl) }

func (regs *Registers) SetA(value byte) { setHi(&regs.psw, value) }
func (regs *Registers) SetB(value byte) { setHi(&regs.bc, value) }
func (regs *Registers) SetC(value byte) { setLo(&regs.bc, value) }
func (regs *Registers) SetD(value byte) { setHi(&regs.de, value) }
func (regs *Registers) SetE(value byte) { setLo(&regs.de, value) }
func (regs *Registers) SetH(value byte) { setHi(&regs.hl, value) }
func (regs *Registers) SetL(value byte) { setLo(&regs.hl, value) }

// SetF sets the flags. Bit 1 is forced on, and bits 3 and 5 off.
func (regs *Registers) SetF(value byte) {
	setLo(&regs.psw, (value&flagMask)|FLAG_1)
}

func (regs *Registers) PSW() uint16 { return regs.psw }
func (regs *Registers) BC() uint16  { return regs.bc }
func (regs *Registers) DE() uint16  { return regs.de }
func (regs *Registers) HL() uint16  { return regs.hl }
func (regs *Registers) SP() uint16  { return regs.sp }

// SetPSW sets A and F together, normalizing F.
func (regs *Registers) SetPSW(value uint16) {
	regs.SetA(hi(value))
	regs.SetF(lo(value))
}

func (regs *Registers) SetBC(value uint16) { regs.bc = value }
func (regs *Registers) SetDE(value uint16) { regs.de = value }
func (regs *Registers) SetHL(value uint16) { regs.hl = value }
func (regs *Registers) SetSP(value uint16) { regs.sp = value }

// PC returns the program counter.
func (regs *Registers) PC() uint64 {
	return uint64(regs.pc)
}

// SetPC sets the program counter, modulo 64K.
func (regs *Registers) SetPC(pc uint64) {
	regs.pc = uint16(pc)
}

// IE is true when interrupts are enabled.
func (regs *Registers) IE() bool {
	return regs.inte
}

// Flag returns true if all the flag bits in mask are set.
func (regs *Registers) Flag(mask byte) bool {
	return regs.F()&mask == mask
}

func (regs *Registers) setFlag(mask byte, on bool) {
	f := regs.F() &^ mask
	if on {
		f |= mask
	}
	regs.SetF(f)
}

// setSZP sets the sign, zero and parity flags from a result.
func (regs *Registers) setSZP(value byte) {
	regs.setFlag(FLAG_S, value&0x80 != 0)
	regs.setFlag(FLAG_Z, value == 0)
	regs.setFlag(FLAG_P, parity(value))
}

// parity is true for an even number of set bits.
func parity(value byte) bool {
	value ^= value >> 4
	value ^= value >> 2
	value ^= value >> 1
	return value&1 == 0
}

// condition evaluates a 3-bit condition code: nz z nc c po pe p m
func (regs *Registers) condition(cc byte) bool {
	var flag byte
	switch cc >> 1 {
	case 0:
		flag = FLAG_Z
	case 1:
		flag = FLAG_CY
	case 2:
		flag = FLAG_P
	case 3:
		flag = FLAG_S
	}
	return regs.Flag(flag) == (cc&1 == 1)
}

func (regs *Registers) halves() iter.Seq2[string, uint64] {
	return func(yield func(string, uint64) bool) {
		for _, reg := range []struct {
			name  string
			value byte
		}{
			{"a", regs.A()},
			{"f", regs.F()},
			{"b", regs.B()},
			{"c", regs.C()},
			{"d", regs.D()},
			{"e", regs.E()},
			{"h", regs.H()},
			{"l", regs.L()},
		} {
			if !yield(reg.name, uint64(reg.value)) {
				return
			}
		}
	}
}

func (regs *Registers) pointers() iter.Seq2[string, uint64] {
	return func(yield func(string, uint64) bool) {
		_ = yield("sp", uint64(regs.sp)) && yield("pc", uint64(regs.pc))
	}
}

// Registers iterates over the 8-bit registers, then the stack pointer and
// program counter.
func (regs *Registers) Registers() iter.Seq2[string, uint64] {
	return internal.Concat2(regs.halves(), regs.pointers())
}
