package config

import (
	"errors"
	"strings"

	"github.com/ezrec/retrocore/translate"
)

var f = translate.From

var (
	ErrCpuUnknown     = errors.New(f("cpu unknown"))
	ErrKindUnknown    = errors.New(f("region kind unknown"))
	ErrVectorInvalid  = errors.New(f("reset vector invalid"))
	ErrContentsSyntax = errors.New(f("contents must be bytes"))
	ErrContentsTwice  = errors.New(f("both image and contents given"))
)

// ErrUnknownKey lists keys of a machine file that are not understood.
type ErrUnknownKey []string

func (err ErrUnknownKey) Error() string {
	return f("unknown keys: %v", strings.Join(err, ", "))
}

func (err ErrUnknownKey) Is(target error) (ok bool) {
	_, ok = target.(ErrUnknownKey)
	return
}

// ErrRegion indicates which region of a machine could not be built.
type ErrRegion struct {
	Section string
	Index   int
	Err     error
}

func (err *ErrRegion) Error() string {
	return f("%v[%d]: %v", err.Section, err.Index, err.Err)
}

func (err *ErrRegion) Unwrap() error {
	return err.Err
}
