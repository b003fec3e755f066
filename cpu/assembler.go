// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// symbolRe matches words that may name a label.
var symbolRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Assembler is a single pass assembler for any Target.
//
// Syntax, one statement per line:
//
//	label: mnemonic operand, operand ; comment
//	.equ NAME VALUE
//	.org ADDRESS
//	.db BYTE, ...
//	.dw WORD, ...
//
// Operands may be numbers, 'c' character constants, equates, labels, or
// $(...) compile-time expressions. Labels may be referenced before they are
// defined; such instructions are re-encoded once all labels are known.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Target  Target   // Instruction set to assemble for.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]uint64 // Map of labels to addresses.
	Equate    map[string]string // Map of equates.

	addr uint64 // Address of the next opcode.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint64, err error) {
	v64, err := strconv.ParseInt(word, 0, 64)
	if err == nil {
		value = uint64(v64)
		return
	}

	value, err = strconv.ParseUint(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
	}

	return
}

// isSymbol returns true if the word could be a label reference.
func (asm *Assembler) isSymbol(word string) bool {
	return symbolRe.MatchString(word) && !asm.Target.Reserved(word)
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v uint64
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeUint64(v)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeUint64(addr)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	if st_int64, ok := st_int.Int64(); ok {
		value = uint64(st_int64)
		return
	}
	value, ok = st_int.Uint64()
	if !ok {
		err = ErrParseExpression(expr)
	}
	return
}

// parseLine expands a single line into its words.
// Labels and equates are processed here.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	fields := strings.Fields(line)

	// .equ CONST VALUE
	if len(fields) > 0 && fields[0] == ".equ" {
		if len(fields) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[fields[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[fields[1]] = fields[2]
		return
	}

	for len(fields) > 0 && strings.HasSuffix(fields[0], ":") {
		label := fields[0][:len(fields[0])-1]
		if !asm.isSymbol(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]uint64, 16)
		}
		asm.Label[label] = asm.addr
		if asm.Verbose {
			log.Printf("%v: 0x%04x", label, asm.addr)
		}
		fields = fields[1:]
	}

	if len(fields) == 0 {
		return
	}

	// mnemonic operand, operand, ...
	words = []string{fields[0]}
	rest := strings.TrimSpace(strings.Join(fields[1:], " "))
	if len(rest) != 0 {
		for _, operand := range strings.Split(rest, ",") {
			words = append(words, strings.TrimSpace(operand))
		}
	}

	for n, word := range words {
		if n == 0 {
			continue
		}

		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	return
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	if asm.Target == nil {
		err = ErrTargetMissing
		return
	}

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.addr = 0
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		code, _, _ := strings.Cut(text, ";")
		line = strings.TrimSpace(code)

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of forward referenced labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}

		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		var linked []byte
		linked, _, err = asm.encode(op.Words, true)
		if err != nil {
			return
		}
		if len(linked) != len(op.Bytes) {
			err = ErrLinkLength
			return
		}
		op.Bytes = linked
	}

	// Check for overlapping code, in address order.
	sorted := slices.Clone(asm.Opcode)
	slices.SortStableFunc(sorted, func(a, b Opcode) int {
		switch {
		case a.Addr < b.Addr:
			return -1
		case a.Addr > b.Addr:
			return 1
		}
		return 0
	})
	for n := 1; n < len(sorted); n++ {
		prior := sorted[n-1]
		if prior.Addr+uint64(len(prior.Bytes)) > sorted[n].Addr {
			lineno = sorted[n].LineNo
			line = strings.Join(sorted[n].Words, " ")
			err = ErrOriginOverlap
			return
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// encode converts the words of a statement into bytes.
// Unless final is set, unknown labels are encoded as zero and the first of
// them is returned as missing.
func (asm *Assembler) encode(words []string, final bool) (data []byte, missing string, err error) {
	operands := slices.Clone(words[1:])
	for n, word := range operands {
		if !asm.isSymbol(word) {
			continue
		}
		addr, ok := asm.Label[word]
		if !ok {
			if final {
				err = ErrLabelMissing(word)
				return
			}
			if len(missing) == 0 {
				missing = word
			}
		}
		operands[n] = fmt.Sprintf("%#x", addr)
	}

	switch words[0] {
	case ".db":
		data, err = asm.encodeData(operands, 1)
	case ".dw":
		data, err = asm.encodeData(operands, 2)
	default:
		text := words[0]
		if len(operands) != 0 {
			text += " " + strings.Join(operands, ",")
		}
		data, err = asm.Target.Assemble(text)
	}

	return
}

// encodeData encodes .db and .dw operands, in the byte order of the target.
func (asm *Assembler) encodeData(operands []string, size int) (data []byte, err error) {
	if len(operands) == 0 {
		err = ErrDataSyntax
		return
	}

	limit := uint64(1)<<(8*size) - 1
	for _, operand := range operands {
		var value uint64
		value, err = asm.valueOf(operand)
		if err != nil {
			return
		}
		// Negative values are accepted in two's complement.
		if value > limit && ^value >= limit>>1+1 {
			err = ErrDataSyntax
			return
		}
		switch size {
		case 1:
			data = append(data, byte(value))
		case 2:
			var word [2]byte
			asm.Target.ByteOrder().PutUint16(word[:], uint16(value))
			data = append(data, word[:]...)
		}
	}

	return
}

// parseWords evaluates the words of a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	if words[0] == ".org" {
		if len(words) != 2 {
			err = ErrOriginSyntax
			return
		}
		word := words[1]
		if addr, ok := asm.Label[word]; ok {
			asm.addr = addr
			return
		}
		asm.addr, err = asm.valueOf(word)
		return
	}

	data, missing, err := asm.encode(words, false)
	if err != nil {
		return
	}

	opcode := Opcode{
		LineNo:    lineno,
		Addr:      asm.addr,
		Words:     words,
		Bytes:     data,
		LinkLabel: missing,
	}
	asm.Opcode = append(asm.Opcode, opcode)
	asm.addr += uint64(len(data))

	return
}
