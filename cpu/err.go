package cpu

import (
	"errors"

	"github.com/ezrec/retrocore/translate"
)

var f = translate.From

var (
	// Processor errors
	ErrHalt             = errors.New(f("halt"))
	ErrHalted           = errors.New(f("processor halted"))
	ErrPhase            = errors.New(f("instruction phase out of order"))
	ErrSetup            = errors.New(f("address spaces not set up"))
	ErrRegisterFile     = errors.New(f("register file invalid"))
	ErrFrequencyInvalid = errors.New(f("clock frequency invalid"))

	// Assembler errors
	ErrTargetMissing   = errors.New(f("target missing"))
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrLabelInvalid    = errors.New(f("label invalid"))
	ErrOriginSyntax    = errors.New(f(".org syntax"))
	ErrOriginOverlap   = errors.New(f(".org overlaps prior code"))
	ErrDataSyntax      = errors.New(f("data syntax"))
	ErrLinkLength      = errors.New(f("linked instruction changed length"))
)

// ErrUnknownInstruction is returned when a byte does not start any
// instruction of the target.
type ErrUnknownInstruction byte

func (err ErrUnknownInstruction) Error() string {
	return f("unknown instruction 0x%02x", byte(err))
}

func (err ErrUnknownInstruction) Is(target error) (ok bool) {
	_, ok = target.(ErrUnknownInstruction)
	return
}

// ErrUnknownOpcode is returned when a mnemonic is not part of the target.
type ErrUnknownOpcode string

func (err ErrUnknownOpcode) Error() string {
	return f("unknown opcode '%v'", string(err))
}

func (err ErrUnknownOpcode) Is(target error) (ok bool) {
	_, ok = target.(ErrUnknownOpcode)
	return
}

// ErrInvalidOperand is returned for malformed operand syntax.
type ErrInvalidOperand struct {
	Expected string // Expected operand syntax.
	Actual   string // Operand text found.
}

func (err *ErrInvalidOperand) Error() string {
	return f("invalid operand '%v', expected '%v'", err.Actual, err.Expected)
}

func (err *ErrInvalidOperand) Is(target error) (ok bool) {
	_, ok = target.(*ErrInvalidOperand)
	return
}

// ErrFault indicates the instruction that failed at runtime.
type ErrFault struct {
	Address     uint64 // Address of the instruction.
	Instruction string // Disassembly, if the instruction was decoded.
	Err         error
}

func (err *ErrFault) Error() string {
	if len(err.Instruction) == 0 {
		return f("0x%04x: %v", err.Address, err.Err)
	}
	return f("0x%04x: %v: %v", err.Address, err.Instruction, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

// ErrLabelMissing is returned when a referenced label is never defined.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

func (el ErrLabelMissing) Is(target error) (ok bool) {
	_, ok = target.(ErrLabelMissing)
	return
}

// ErrSyntax wraps an assembler error with its source location.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

func (err ErrParseNumber) Is(target error) (ok bool) {
	_, ok = target.(ErrParseNumber)
	return
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

func (err ErrParseExpression) Is(target error) (ok bool) {
	_, ok = target.(ErrParseExpression)
	return
}
