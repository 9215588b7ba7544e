package rename

import "errors"

// Table operation errors. Every operation validates its arguments before
// mutating, so a returned error means the table is unchanged.
var (
	// ErrConfiguration means the table could not be constructed.
	ErrConfiguration = errors.New("invalid register alias table configuration")

	// ErrOutOfRange means a register index is outside its register file.
	ErrOutOfRange = errors.New("register index out of range")

	// ErrExhausted means automatic allocation found the free list empty.
	ErrExhausted = errors.New("no free physical registers")

	// ErrUnavailable means an explicitly requested physical register is not
	// in the free list.
	ErrUnavailable = errors.New("physical register not available")

	// ErrDoubleFree means a physical register was freed while already free.
	ErrDoubleFree = errors.New("physical register already free")
)
