package elf

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	SectionNotFoundError = errors.New("section not found")
	MalformedInputError  = errors.New("malformed ELF input")
	NotELFError          = errors.New("not an ELF64 image")
	ClosedError          = errors.New("ELF image already closed")
)

// Op names the step of opening an image that failed.
type Op string

const (
	OpOpen   Op = "open"
	OpStat   Op = "stat"
	OpMap    Op = "map"
	OpNotELF Op = "not-elf"
)

// IOError is returned when the image cannot be opened, sized, mapped or
// recognised as ELF64.
type IOError struct {
	Op   Op
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Cause() error { return e.Err }

func IsNotFound(err error) bool {
	return errors.Is(err, SectionNotFoundError)
}

func IsMalformed(err error) bool {
	return errors.Is(err, MalformedInputError)
}

// IsIOError reports whether err is an IOError for the given step. An empty
// op matches any step.
func IsIOError(err error, op Op) bool {
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		return false
	}
	return op == "" || ioErr.Op == op
}
