package emulator

import (
	"errors"

	"github.com/ezrec/retrocore/translate"
)

var f = translate.From

var (
	ErrRunning = errors.New(f("engine running"))
	ErrSetup   = errors.New(f("engine needs a processor and address spaces"))
)

// ErrRuntime indicates the source line of a runtime fault.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
