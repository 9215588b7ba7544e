package core

import (
	"errors"
	"fmt"

	"github.com/sarchlab/ratsim/insts"
	"github.com/sarchlab/ratsim/timing/rename"
)

// SourceLookup records the binding observed for one source operand.
type SourceLookup struct {
	// Arch is the architectural source register.
	Arch int
	// Phys is the binding before the destination rename.
	Phys rename.PhysReg
}

// Decision is the outcome of renaming one instruction.
type Decision struct {
	// Index counts processed instructions, starting at 0.
	Index int

	// Inst is the instruction that was renamed.
	Inst *insts.Instruction

	// Sources holds one lookup per register-shaped source operand, in
	// operand order.
	Sources []SourceLookup

	// HasDest is true if the first operand is a destination register.
	HasDest bool
	// Dest is the architectural destination register when HasDest is set.
	Dest int

	// Renamed is true if a new physical register was allocated. Rename holds
	// the old and new bindings.
	Renamed bool
	Rename  rename.RenameResult

	// Skipped is true if the destination kept its binding because of the
	// skip marker.
	Skipped bool

	// Operands is the reconstructed operand list.
	Operands []string

	// Converted is the renamed instruction text.
	Converted string

	// Snapshot is the table state after the instruction.
	Snapshot string
}

// ErrNoInstruction is reported when Process is given a nil instruction.
var ErrNoInstruction = errors.New("no instruction")

// InstructionError reports a fault that aborted one instruction. The table is
// left as it was before the instruction.
type InstructionError struct {
	Index int
	Text  string
	Err   error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction %d %q: %v", e.Index, e.Text, e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}
