package cpu

import (
	"errors"

	"github.com/ezrec/chip16/translate"
)

var f = translate.From

var (
	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
)

// ErrBadOpcode reports a fetched opcode byte with no dispatch entry.
// The program counter is left at the failing instruction.
type ErrBadOpcode struct {
	Addr uint16 // Address the opcode was fetched from.
	Op   uint8  // The offending opcode byte.
}

func (eo ErrBadOpcode) Error() string {
	return f("bad opcode 0x%02x at 0x%04x", eo.Op, eo.Addr)
}

func (eo ErrBadOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrBadOpcode)
	return
}

// ErrMemoryRange reports address arithmetic past the top of memory.
type ErrMemoryRange struct {
	Addr  int  // Address of the faulting access.
	Write bool // True for a write access, false for a read.
}

func (em ErrMemoryRange) Error() string {
	access := "read"
	if em.Write {
		access = "write"
	}
	return f("memory %v at 0x%04x out of range", access, em.Addr)
}

func (em ErrMemoryRange) Is(err error) (ok bool) {
	_, ok = err.(ErrMemoryRange)
	return
}

// ErrLabelMissing reports a jump target that was never defined.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
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

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
