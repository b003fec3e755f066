package i8080

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

var (
	regNames   = [8]string{"b", "c", "d", "e", "h", "l", "m", "a"}
	pairNames  = [4]string{"b", "d", "h", "sp"}
	stackNames = [4]string{"b", "d", "h", "psw"}
	condNames  = [8]string{"nz", "z", "nc", "c", "po", "pe", "p", "m"}
	aluNames   = [8]string{"add", "adc", "sub", "sbb", "ana", "xra", "ora", "cmp"}
	aluImmed   = [8]string{"adi", "aci", "sui", "sbi", "ani", "xri", "ori", "cpi"}
)

// REG_M is the register index of the memory operand at HL.
const REG_M = 6

// execFunc runs an operation. Taken is true when a conditional
// branch was taken.
type execFunc func(m *machine, op *Operation) (taken bool, err error)

type opcode struct {
	syntax string // Canonical syntax; %b is a byte operand, %w a word.
	length int    // Encoded length.
	cycles int    // Clock cycles.
	taken  int    // Clock cycles when a conditional branch is taken.
	exec   execFunc
}

var (
	opcodes   [256]*opcode
	mnemonics = map[string][]byte{}
)

func define(code byte, syntax string, cycles int, exec execFunc) *opcode {
	length := 1
	switch {
	case strings.Contains(syntax, "%b"):
		length = 2
	case strings.Contains(syntax, "%w"):
		length = 3
	}

	info := &opcode{
		syntax: syntax,
		length: length,
		cycles: cycles,
		exec:   exec,
	}
	opcodes[code] = info

	mnemonic, _, _ := strings.Cut(syntax, " ")
	mnemonics[mnemonic] = append(mnemonics[mnemonic], code)

	return info
}

func init() {
	define(0x00, "nop", 4, execNop)

	for rp := range byte(4) {
		name := pairNames[rp]
		define(0x01|rp<<4, "lxi "+name+",%w", 10, execLxi)
		define(0x03|rp<<4, "inx "+name, 5, execInx)
		define(0x09|rp<<4, "dad "+name, 10, execDad)
		define(0x0b|rp<<4, "dcx "+name, 5, execDcx)
		define(0xc1|rp<<4, "pop "+stackNames[rp], 10, execPop)
		define(0xc5|rp<<4, "push "+stackNames[rp], 11, execPush)
	}

	define(0x02, "stax b", 7, execStax)
	define(0x12, "stax d", 7, execStax)
	define(0x0a, "ldax b", 7, execLdax)
	define(0x1a, "ldax d", 7, execLdax)
	define(0x22, "shld %w", 16, execShld)
	define(0x2a, "lhld %w", 16, execLhld)
	define(0x32, "sta %w", 13, execSta)
	define(0x3a, "lda %w", 13, execLda)

	for r := range byte(8) {
		name := regNames[r]
		mem := r == REG_M
		define(0x04|r<<3, "inr "+name, pick(mem, 10, 5), execInr)
		define(0x05|r<<3, "dcr "+name, pick(mem, 10, 5), execDcr)
		define(0x06|r<<3, "mvi "+name+",%b", pick(mem, 10, 7), execMvi)
	}

	define(0x07, "rlc", 4, execRlc)
	define(0x0f, "rrc", 4, execRrc)
	define(0x17, "ral", 4, execRal)
	define(0x1f, "rar", 4, execRar)
	define(0x27, "daa", 4, execDaa)
	define(0x2f, "cma", 4, execCma)
	define(0x37, "stc", 4, execStc)
	define(0x3f, "cmc", 4, execCmc)

	for dst := range byte(8) {
		for src := range byte(8) {
			if dst == REG_M && src == REG_M {
				continue
			}
			mem := dst == REG_M || src == REG_M
			define(0x40|dst<<3|src, "mov "+regNames[dst]+","+regNames[src], pick(mem, 7, 5), execMov)
		}
	}
	define(0x76, "hlt", 7, execHlt)

	for alu := range byte(8) {
		for src := range byte(8) {
			define(0x80|alu<<3|src, aluNames[alu]+" "+regNames[src], pick(src == REG_M, 7, 4), execAlu)
		}
		define(0xc6|alu<<3, aluImmed[alu]+" %b", 7, execAluImmed)
	}

	for cc := range byte(8) {
		name := condNames[cc]
		define(0xc0|cc<<3, "r"+name, 5, execRcc).taken = 11
		define(0xc2|cc<<3, "j"+name+" %w", 10, execJcc)
		define(0xc4|cc<<3, "c"+name+" %w", 11, execCcc).taken = 17
		define(0xc7|cc<<3, fmt.Sprintf("rst %d", cc), 11, execRst)
	}

	define(0xc3, "jmp %w", 10, execJmp)
	define(0xc9, "ret", 10, execRet)
	define(0xcd, "call %w", 17, execCall)
	define(0xd3, "out %b", 10, execOut)
	define(0xdb, "in %b", 10, execIn)
	define(0xe3, "xthl", 18, execXthl)
	define(0xe9, "pchl", 5, execPchl)
	define(0xeb, "xchg", 4, execXchg)
	define(0xf3, "di", 4, execDi)
	define(0xf9, "sphl", 5, execSphl)
	define(0xfb, "ei", 4, execEi)
}

func pick(cond bool, yes int, no int) int {
	if cond {
		return yes
	}
	return no
}

// operands returns the operand syntax of the opcode.
func (info *opcode) operands() (operands []string) {
	_, pattern, _ := strings.Cut(info.syntax, " ")
	if len(pattern) != 0 {
		operands = strings.Split(pattern, ",")
	}
	return
}

// match encodes the opcode if the operands fit its syntax.
// match encodes the operands for code. On failure, bad is the index of the
// first operand that does not fit, or -1 if the operand count differs.
func (info *opcode) match(code byte, operands []string) (raw []byte, bad int, ok bool) {
	want := info.operands()
	if len(want) != len(operands) {
		bad = -1
		return
	}

	raw = []byte{code}
	for n, pattern := range want {
		bad = n
		switch pattern {
		case "%b":
			value, valid := parseValue(operands[n], 8)
			if !valid {
				return nil, bad, false
			}
			raw = append(raw, byte(value))
		case "%w":
			value, valid := parseValue(operands[n], 16)
			if !valid {
				return nil, bad, false
			}
			raw = binary.LittleEndian.AppendUint16(raw, uint16(value))
		default:
			if pattern != operands[n] {
				return nil, bad, false
			}
		}
	}

	ok = true
	return
}

// parseValue parses a number that fits in bits, signed or unsigned.
func parseValue(word string, bits int) (value uint64, ok bool) {
	v, err := strconv.ParseInt(word, 0, 64)
	if err != nil {
		return
	}

	limit := int64(1) << bits
	if v < -limit/2 || v >= limit {
		return
	}

	value = uint64(v) & uint64(limit-1)
	ok = true
	return
}

// expected describes the operand syntax of a set of opcodes.
func expected(codes []byte) string {
	var forms []string
	for _, code := range codes {
		form := strings.Join(opcodes[code].operands(), ",")
		form = strings.ReplaceAll(form, "%b", "byte")
		form = strings.ReplaceAll(form, "%w", "word")
		forms = append(forms, form)
	}
	if len(forms) > 8 {
		forms = append(forms[:8], "...")
	}
	return strings.Join(forms, "|")
}
