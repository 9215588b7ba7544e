// Package core provides the renaming driver that applies a register alias
// table to one decoded instruction at a time.
package core

import (
	"strings"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/ratsim/insts"
	"github.com/sarchlab/ratsim/timing/rename"
)

// Hook positions invoked by the Driver. Every hook receives the in-progress
// *Decision as the item.
var (
	// HookPosInstStart fires before an instruction is classified.
	HookPosInstStart = &sim.HookPos{Name: "Rename Inst Start"}
	// HookPosSourceLookup fires per source operand. Detail: SourceLookup.
	HookPosSourceLookup = &sim.HookPos{Name: "Rename Source Lookup"}
	// HookPosDestRename fires after a destination rename. Detail:
	// rename.RenameResult.
	HookPosDestRename = &sim.HookPos{Name: "Rename Dest Rename"}
	// HookPosRenameSkipped fires when the skip marker keeps the destination
	// binding. Detail: the architectural destination.
	HookPosRenameSkipped = &sim.HookPos{Name: "Rename Skipped"}
	// HookPosConverted fires with the reconstructed instruction. Detail:
	// the converted text.
	HookPosConverted = &sim.HookPos{Name: "Rename Converted"}
	// HookPosFault fires when an instruction is aborted. Detail: the
	// *InstructionError.
	HookPosFault = &sim.HookPos{Name: "Rename Fault"}
	// HookPosInstEnd fires last for every instruction. Detail: the table
	// snapshot.
	HookPosInstEnd = &sim.HookPos{Name: "Rename Inst End"}
)

// Stats holds renaming statistics.
type Stats struct {
	// Instructions is the number of instructions processed, including
	// aborted ones.
	Instructions uint64
	// Lookups is the number of source register lookups.
	Lookups uint64
	// Renames is the number of destination renames.
	Renames uint64
	// Skipped is the number of destinations kept by the skip marker.
	Skipped uint64
	// Faults is the number of aborted instructions.
	Faults uint64
}

// Driver renames instructions against a register alias table. It never
// frees physical registers; retirement is up to the caller.
type Driver struct {
	*sim.HookableBase

	table *rename.Table

	archPrefix string
	physPrefix string

	next  int
	stats Stats
}

// DriverOption is a functional option for configuring the Driver.
type DriverOption func(*Driver)

// WithArchPrefix sets the prefix of register-shaped operands.
func WithArchPrefix(prefix string) DriverOption {
	return func(d *Driver) {
		d.archPrefix = prefix
	}
}

// WithPhysPrefix sets the prefix of physical registers in converted output.
func WithPhysPrefix(prefix string) DriverOption {
	return func(d *Driver) {
		d.physPrefix = prefix
	}
}

// NewDriver creates a driver over table. Prefixes default to the table's.
func NewDriver(table *rename.Table, opts ...DriverOption) *Driver {
	d := &Driver{
		HookableBase: sim.NewHookableBase(),
		table:        table,
		archPrefix:   table.ArchPrefix(),
		physPrefix:   table.PhysPrefix(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Table returns the underlying alias table.
func (d *Driver) Table() *rename.Table {
	return d.table
}

// Stats returns renaming statistics.
func (d *Driver) Stats() Stats {
	return d.stats
}

// Process renames a single instruction. On error the instruction is aborted,
// the table is unchanged and the error is an *InstructionError.
func (d *Driver) Process(inst *insts.Instruction) (*Decision, error) {
	dec := d.begin(inst)

	if inst == nil {
		return nil, d.fail(dec, ErrNoInstruction)
	}

	if err := d.renameInst(dec); err != nil {
		return nil, d.fail(dec, err)
	}

	d.invoke(HookPosConverted, dec, dec.Converted)
	d.end(dec)

	return dec, nil
}

// Abort records an instruction that could not be processed, for example
// because it failed to tokenize. The returned error wraps cause.
func (d *Driver) Abort(inst *insts.Instruction, cause error) error {
	dec := d.begin(inst)
	return d.fail(dec, cause)
}

func (d *Driver) begin(inst *insts.Instruction) *Decision {
	dec := &Decision{Index: d.next, Inst: inst}
	d.next++
	d.stats.Instructions++

	d.invoke(HookPosInstStart, dec, nil)

	return dec
}

func (d *Driver) fail(dec *Decision, cause error) error {
	d.stats.Faults++

	err := &InstructionError{Index: dec.Index, Err: cause}
	if dec.Inst != nil {
		err.Text = dec.Inst.Text
	}

	d.invoke(HookPosFault, dec, err)
	d.end(dec)

	return err
}

func (d *Driver) end(dec *Decision) {
	dec.Snapshot = d.table.Serialize()
	d.invoke(HookPosInstEnd, dec, dec.Snapshot)
}

func (d *Driver) renameInst(dec *Decision) error {
	operands := dec.Inst.Operands

	regs, err := d.classify(dec)
	if err != nil {
		return err
	}

	// All reads observe the bindings from before the destination rename.
	for i, op := range operands {
		if !regs[i] || d.isDestPos(dec, i) {
			continue
		}
		if err := d.lookupSource(dec, op); err != nil {
			return err
		}
	}

	if dec.HasDest {
		if err := d.renameDest(dec); err != nil {
			return err
		}
	}

	return d.reconstruct(dec, regs)
}

// classify marks register-shaped operands and picks the destination.
func (d *Driver) classify(dec *Decision) ([]bool, error) {
	operands := dec.Inst.Operands
	regs := make([]bool, len(operands))

	for i, op := range operands {
		regs[i] = insts.IsRegister(d.archPrefix, op)
	}

	if !dec.Inst.IsBranch && len(operands) > 0 && regs[0] {
		dest, err := insts.ParseRegister(d.archPrefix, operands[0])
		if err != nil {
			return nil, err
		}
		dec.HasDest = true
		dec.Dest = dest
	}

	return regs, nil
}

func (d *Driver) isDestPos(dec *Decision, pos int) bool {
	return dec.HasDest && pos == 0
}

func (d *Driver) lookupSource(dec *Decision, op string) error {
	arch, err := insts.ParseRegister(d.archPrefix, op)
	if err != nil {
		return err
	}

	phys, err := d.table.GetMapping(arch)
	if err != nil {
		return err
	}

	lookup := SourceLookup{Arch: arch, Phys: phys}
	dec.Sources = append(dec.Sources, lookup)
	d.stats.Lookups++

	d.invoke(HookPosSourceLookup, dec, lookup)

	return nil
}

func (d *Driver) renameDest(dec *Decision) error {
	if dec.Inst.SkipRename {
		// The destination is still range-checked so a bad register is
		// reported rather than echoed.
		if _, err := d.table.GetMapping(dec.Dest); err != nil {
			return err
		}

		dec.Skipped = true
		d.stats.Skipped++
		d.invoke(HookPosRenameSkipped, dec, dec.Dest)

		return nil
	}

	result, err := d.table.Rename(dec.Dest)
	if err != nil {
		return err
	}

	dec.Renamed = true
	dec.Rename = result
	d.stats.Renames++
	d.invoke(HookPosDestRename, dec, result)

	return nil
}

// reconstruct substitutes physical registers into the operand list. The
// destination shows its current binding, sources show the bindings they
// observed before the rename.
func (d *Driver) reconstruct(dec *Decision, regs []bool) error {
	operands := dec.Inst.Operands
	dec.Operands = make([]string, len(operands))

	src := 0
	for i, op := range operands {
		switch {
		case d.isDestPos(dec, i):
			phys, err := d.table.GetMapping(dec.Dest)
			if err != nil {
				return err
			}
			dec.Operands[i] = d.physName(dec.Dest, phys)
		case regs[i]:
			lookup := dec.Sources[src]
			src++
			dec.Operands[i] = d.physName(lookup.Arch, lookup.Phys)
		default:
			dec.Operands[i] = op
		}
	}

	dec.Converted = dec.Inst.Opcode
	if len(dec.Operands) > 0 {
		dec.Converted += " " + strings.Join(dec.Operands, ", ")
	}

	return nil
}

// physName renders a binding, falling back to the architectural name when
// the register has never been written.
func (d *Driver) physName(arch int, phys rename.PhysReg) string {
	if !phys.IsMapped() {
		return insts.FormatRegister(d.archPrefix, arch)
	}
	return phys.Format(d.physPrefix)
}

func (d *Driver) invoke(pos *sim.HookPos, dec *Decision, detail interface{}) {
	if d.NumHooks() == 0 {
		return
	}

	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    pos,
		Item:   dec,
		Detail: detail,
	})
}
