package i8080

import (
	"fmt"
	"strings"

	"github.com/ezrec/retrocore/cpu"
	"github.com/ezrec/retrocore/device"
)

// Operation is a decoded 8080 instruction.
type Operation struct {
	Opcode byte   // First byte.
	Data   uint16 // Immediate byte or word, if any.

	info *opcode
}

// String returns the canonical assembly text.
func (op *Operation) String() string {
	text := op.info.syntax
	switch op.info.length {
	case 2:
		text = strings.Replace(text, "%b", fmt.Sprintf("0x%02x", byte(op.Data)), 1)
	case 3:
		text = strings.Replace(text, "%w", fmt.Sprintf("0x%04x", op.Data), 1)
	}
	return text
}

// Execute runs the operation. The program counter is already past it.
func (op *Operation) Execute(rf cpu.RegisterFile, mem cpu.Space, io cpu.Space) (cycles int, err error) {
	regs, ok := rf.(*Registers)
	if !ok {
		err = cpu.ErrRegisterFile
		return
	}

	m := &machine{regs: regs, mem: mem, io: io}
	taken, err := op.info.exec(m, op)

	cycles = op.info.cycles
	if taken && op.info.taken != 0 {
		cycles = op.info.taken
	}

	return
}

// machine is the context of a single operation.
type machine struct {
	regs *Registers
	mem  cpu.Space
	io   cpu.Space
}

func (m *machine) read8(addr uint16) (value byte, err error) {
	v, err := m.mem.Fetch(uint64(addr), device.W8)
	value = byte(v)
	return
}

func (m *machine) write8(addr uint16, value byte) error {
	return m.mem.Store(uint64(addr), device.W8, uint64(value))
}

// read16 reads a little-endian word. The high byte wraps at 64K.
func (m *machine) read16(addr uint16) (value uint16, err error) {
	low, err := m.read8(addr)
	if err != nil {
		return
	}
	high, err := m.read8(addr + 1)
	if err != nil {
		return
	}
	value = uint16(high)<<8 | uint16(low)
	return
}

func (m *machine) write16(addr uint16, value uint16) (err error) {
	err = m.write8(addr, lo(value))
	if err != nil {
		return
	}
	return m.write8(addr+1, hi(value))
}

func (m *machine) push(value uint16) (err error) {
	m.regs.sp -= 2
	return m.write16(m.regs.sp, value)
}

func (m *machine) pop() (value uint16, err error) {
	value, err = m.read16(m.regs.sp)
	if err != nil {
		return
	}
	m.regs.sp += 2
	return
}

// get reads a register by its 3-bit index.
func (m *machine) get(r byte) (value byte, err error) {
	regs := m.regs
	switch r {
	case 0:
		value = regs.B()
	case 1:
		value = regs.C()
	case 2:
		value = regs.D()
	case 3:
		value = regs.E()
	case 4:
		value = regs.H()
	case 5:
		value = regs.L()
	case REG_M:
		value, err = m.read8(regs.hl)
	case 7:
		value = regs.A()
	}
	return
}

// set writes a register by its 3-bit index.
func (m *machine) set(r byte, value byte) (err error) {
	regs := m.regs
	switch r {
	case 0:
		regs.SetB(value)
	case 1:
		regs.SetC(value)
	case 2:
		regs.SetD(value)
	case 3:
		regs.SetE(value)
	case 4:
		regs.SetH(value)
	case 5:
		regs.SetL(value)
	case REG_M:
		err = m.write8(regs.hl, value)
	case 7:
		regs.SetA(value)
	}
	return
}

// pair returns a register pair by its 2-bit index: bc de hl sp
func (m *machine) pair(rp byte) *uint16 {
	switch rp {
	case 0:
		return &m.regs.bc
	case 1:
		return &m.regs.de
	case 2:
		return &m.regs.hl
	}
	return &m.regs.sp
}

// alu performs add adc sub sbb ana xra ora cmp on the accumulator.
func (m *machine) alu(op byte, value byte) {
	regs := m.regs
	a := regs.A()

	var carry byte
	if regs.Flag(FLAG_CY) {
		carry = 1
	}

	switch op {
	case 0, 1: // add, adc
		if op == 0 {
			carry = 0
		}
		sum := uint16(a) + uint16(value) + uint16(carry)
		regs.setFlag(FLAG_AC, (a&0xf)+(value&0xf)+carry > 0xf)
		regs.setFlag(FLAG_CY, sum > 0xff)
		a = byte(sum)
	case 2, 3, 7: // sub, sbb, cmp
		if op != 3 {
			carry = 0
		}
		diff := int(a) - int(value) - int(carry)
		regs.setFlag(FLAG_AC, (a&0xf)+(^value&0xf)+(1-carry) > 0xf)
		regs.setFlag(FLAG_CY, diff < 0)
		if op == 7 {
			regs.setSZP(byte(diff))
			return
		}
		a = byte(diff)
	case 4: // ana
		regs.setFlag(FLAG_AC, (a|value)&0x08 != 0)
		regs.setFlag(FLAG_CY, false)
		a &= value
	case 5: // xra
		regs.setFlag(FLAG_AC|FLAG_CY, false)
		a ^= value
	case 6: // ora
		regs.setFlag(FLAG_AC|FLAG_CY, false)
		a |= value
	}

	regs.setSZP(a)
	regs.SetA(a)
}

func regDst(op *Operation) byte {
	return (op.Opcode >> 3) & 7
}

func regSrc(op *Operation) byte {
	return op.Opcode & 7
}

func regPair(op *Operation) byte {
	return (op.Opcode >> 4) & 3
}

func execNop(m *machine, op *Operation) (taken bool, err error) {
	return
}

func execHlt(m *machine, op *Operation) (taken bool, err error) {
	err = cpu.ErrHalt
	return
}

func execLxi(m *machine, op *Operation) (taken bool, err error) {
	*m.pair(regPair(op)) = op.Data
	return
}

func execInx(m *machine, op *Operation) (taken bool, err error) {
	*m.pair(regPair(op)) += 1
	return
}

func execDcx(m *machine, op *Operation) (taken bool, err error) {
	*m.pair(regPair(op)) -= 1
	return
}

func execDad(m *machine, op *Operation) (taken bool, err error) {
	sum := uint32(m.regs.hl) + uint32(*m.pair(regPair(op)))
	m.regs.setFlag(FLAG_CY, sum > 0xffff)
	m.regs.hl = uint16(sum)
	return
}

func execStax(m *machine, op *Operation) (taken bool, err error) {
	err = m.write8(*m.pair(regPair(op)), m.regs.A())
	return
}

func execLdax(m *machine, op *Operation) (taken bool, err error) {
	value, err := m.read8(*m.pair(regPair(op)))
	if err != nil {
		return
	}
	m.regs.SetA(value)
	return
}

func execShld(m *machine, op *Operation) (taken bool, err error) {
	err = m.write16(op.Data, m.regs.hl)
	return
}

func execLhld(m *machine, op *Operation) (taken bool, err error) {
	value, err := m.read16(op.Data)
	if err != nil {
		return
	}
	m.regs.hl = value
	return
}

func execSta(m *machine, op *Operation) (taken bool, err error) {
	err = m.write8(op.Data, m.regs.A())
	return
}

func execLda(m *machine, op *Operation) (taken bool, err error) {
	value, err := m.read8(op.Data)
	if err != nil {
		return
	}
	m.regs.SetA(value)
	return
}

func execInr(m *machine, op *Operation) (taken bool, err error) {
	r := regDst(op)
	value, err := m.get(r)
	if err != nil {
		return
	}
	value++
	m.regs.setFlag(FLAG_AC, value&0xf == 0)
	m.regs.setSZP(value)
	err = m.set(r, value)
	return
}

func execDcr(m *machine, op *Operation) (taken bool, err error) {
	r := regDst(op)
	value, err := m.get(r)
	if err != nil {
		return
	}
	value--
	m.regs.setFlag(FLAG_AC, value&0xf != 0xf)
	m.regs.setSZP(value)
	err = m.set(r, value)
	return
}

func execMvi(m *machine, op *Operation) (taken bool, err error) {
	err = m.set(regDst(op), byte(op.Data))
	return
}

func execMov(m *machine, op *Operation) (taken bool, err error) {
	value, err := m.get(regSrc(op))
	if err != nil {
		return
	}
	err = m.set(regDst(op), value)
	return
}

func execRlc(m *machine, op *Operation) (taken bool, err error) {
	a := m.regs.A()
	m.regs.setFlag(FLAG_CY, a&0x80 != 0)
	m.regs.SetA(a<<1 | a>>7)
	return
}

func execRrc(m *machine, op *Operation) (taken bool, err error) {
	a := m.regs.A()
	m.regs.setFlag(FLAG_CY, a&0x01 != 0)
	m.regs.SetA(a>>1 | a<<7)
	return
}

func execRal(m *machine, op *Operation) (taken bool, err error) {
	a := m.regs.A()
	var carry byte
	if m.regs.Flag(FLAG_CY) {
		carry = 0x01
	}
	m.regs.setFlag(FLAG_CY, a&0x80 != 0)
	m.regs.SetA(a<<1 | carry)
	return
}

func execRar(m *machine, op *Operation) (taken bool, err error) {
	a := m.regs.A()
	var carry byte
	if m.regs.Flag(FLAG_CY) {
		carry = 0x80
	}
	m.regs.setFlag(FLAG_CY, a&0x01 != 0)
	m.regs.SetA(a>>1 | carry)
	return
}

func execDaa(m *machine, op *Operation) (taken bool, err error) {
	regs := m.regs
	a := regs.A()
	low := a & 0x0f
	high := a >> 4
	carry := regs.Flag(FLAG_CY)

	var correction byte
	if regs.Flag(FLAG_AC) || low > 9 {
		correction |= 0x06
	}
	if carry || high > 9 || (high >= 9 && low > 9) {
		correction |= 0x60
		carry = true
	}

	regs.setFlag(FLAG_AC, low+(correction&0x0f) > 0x0f)
	a += correction
	regs.setFlag(FLAG_CY, carry)
	regs.setSZP(a)
	regs.SetA(a)
	return
}

func execCma(m *machine, op *Operation) (taken bool, err error) {
	m.regs.SetA(^m.regs.A())
	return
}

func execStc(m *machine, op *Operation) (taken bool, err error) {
	m.regs.setFlag(FLAG_CY, true)
	return
}

func execCmc(m *machine, op *Operation) (taken bool, err error) {
	m.regs.setFlag(FLAG_CY, !m.regs.Flag(FLAG_CY))
	return
}

func execAlu(m *machine, op *Operation) (taken bool, err error) {
	value, err := m.get(regSrc(op))
	if err != nil {
		return
	}
	m.alu(regDst(op), value)
	return
}

func execAluImmed(m *machine, op *Operation) (taken bool, err error) {
	m.alu(regDst(op), byte(op.Data))
	return
}

func execPush(m *machine, op *Operation) (taken bool, err error) {
	rp := regPair(op)
	value := m.regs.psw
	if rp != 3 {
		value = *m.pair(rp)
	}
	err = m.push(value)
	return
}

func execPop(m *machine, op *Operation) (taken bool, err error) {
	value, err := m.pop()
	if err != nil {
		return
	}
	rp := regPair(op)
	if rp == 3 {
		m.regs.SetPSW(value)
	} else {
		*m.pair(rp) = value
	}
	return
}

func execJmp(m *machine, op *Operation) (taken bool, err error) {
	m.regs.pc = op.Data
	return
}

func execJcc(m *machine, op *Operation) (taken bool, err error) {
	if m.regs.condition(regDst(op)) {
		m.regs.pc = op.Data
		taken = true
	}
	return
}

func execCall(m *machine, op *Operation) (taken bool, err error) {
	err = m.push(m.regs.pc)
	if err != nil {
		return
	}
	m.regs.pc = op.Data
	return
}

func execCcc(m *machine, op *Operation) (taken bool, err error) {
	if !m.regs.condition(regDst(op)) {
		return
	}
	taken = true
	_, err = execCall(m, op)
	return
}

func execRet(m *machine, op *Operation) (taken bool, err error) {
	pc, err := m.pop()
	if err != nil {
		return
	}
	m.regs.pc = pc
	return
}

func execRcc(m *machine, op *Operation) (taken bool, err error) {
	if !m.regs.condition(regDst(op)) {
		return
	}
	taken = true
	_, err = execRet(m, op)
	return
}

func execRst(m *machine, op *Operation) (taken bool, err error) {
	err = m.push(m.regs.pc)
	if err != nil {
		return
	}
	m.regs.pc = uint16(regDst(op)) * 8
	return
}

func execOut(m *machine, op *Operation) (taken bool, err error) {
	err = m.io.Store(uint64(byte(op.Data)), device.W8, uint64(m.regs.A()))
	return
}

func execIn(m *machine, op *Operation) (taken bool, err error) {
	value, err := m.io.Fetch(uint64(byte(op.Data)), device.W8)
	if err != nil {
		return
	}
	m.regs.SetA(byte(value))
	return
}

func execXthl(m *machine, op *Operation) (taken bool, err error) {
	value, err := m.read16(m.regs.sp)
	if err != nil {
		return
	}
	err = m.write16(m.regs.sp, m.regs.hl)
	if err != nil {
		return
	}
	m.regs.hl = value
	return
}

func execPchl(m *machine, op *Operation) (taken bool, err error) {
	m.regs.pc = m.regs.hl
	return
}

func execSphl(m *machine, op *Operation) (taken bool, err error) {
	m.regs.sp = m.regs.hl
	return
}

func execXchg(m *machine, op *Operation) (taken bool, err error) {
	m.regs.de, m.regs.hl = m.regs.hl, m.regs.de
	return
}

func execDi(m *machine, op *Operation) (taken bool, err error) {
	m.regs.inte = false
	return
}

func execEi(m *machine, op *Operation) (taken bool, err error) {
	m.regs.inte = true
	return
}
