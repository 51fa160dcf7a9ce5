package script

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyStep indicates a step without operation.
	ErrEmptyStep = errors.New("step has neither write nor read")
	// ErrAmbiguousStep indicates a step with both write and read.
	ErrAmbiguousStep = errors.New("step has both write and read")
	// ErrWritePayload indicates a write step without exactly one of value and data.
	ErrWritePayload = errors.New("write requires exactly one of value and data")
	// ErrDataTooLong indicates a write payload exceeding one chip operation.
	ErrDataTooLong = errors.New("write data too long")
	// ErrReadLength indicates an invalid read length.
	ErrReadLength = errors.New("invalid read length")
)

// UnknownOpcodeError indicates an opcode which is neither a name nor a number.
type UnknownOpcodeError struct {
	Op string
}

// Error implements error.
func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %q", e.Op)
}

// MismatchError indicates a read returning an unexpected value.
type MismatchError struct {
	Step     int
	Expected uint32
	Actual   uint32
}

// Error implements error.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("step %d: expected 0x%x, read 0x%x", e.Step, e.Expected, e.Actual)
}
