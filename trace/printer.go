// Package trace turns renaming events into human-readable traces and
// structured logs.
package trace

import (
	"fmt"
	"io"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/ratsim/timing/core"
	"github.com/sarchlab/ratsim/timing/rename"
)

// Printer writes a line-oriented renaming trace. Attach it to a core.Driver
// and, to see retirements, to the rename.Table.
type Printer struct {
	w          io.Writer
	archPrefix string
	physPrefix string
}

// NewPrinter creates a Printer using the register prefixes of table.
func NewPrinter(w io.Writer, table *rename.Table) *Printer {
	return &Printer{
		w:          w,
		archPrefix: table.ArchPrefix(),
		physPrefix: table.PhysPrefix(),
	}
}

// PrintHeader writes the initial table state.
func (p *Printer) PrintHeader(table *rename.Table) {
	fmt.Fprintf(p.w, "Initialized RAT with %d architectural and %d physical registers.\n",
		table.ArchRegs(), table.PhysRegs())
	fmt.Fprintf(p.w, "Initial State: %s\n\n", table.Serialize())
}

// PrintError writes an error line. Errors are part of the trace and share its
// writer.
func (p *Printer) PrintError(err error) {
	fmt.Fprintf(p.w, "  ERROR: %v\n", err)
}

// Func implements sim.Hook.
func (p *Printer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case rename.HookPosFree:
		fmt.Fprintf(p.w, "  Freed PhysReg %s%d\n", p.physPrefix, ctx.Detail.(int))
		return
	case rename.HookPosAllocate:
		return
	}

	dec, ok := ctx.Item.(*core.Decision)
	if !ok {
		return
	}

	switch ctx.Pos {
	case core.HookPosInstStart:
		fmt.Fprintf(p.w, "--- Processing Instruction %d: \"%s\" ---\n",
			dec.Index, instText(dec))
	case core.HookPosSourceLookup:
		p.printLookup(ctx.Detail.(core.SourceLookup))
	case core.HookPosDestRename:
		result := ctx.Detail.(rename.RenameResult)
		fmt.Fprintf(p.w, "  Destination Rename: ArchReg %s%d -> New PhysReg %s\n",
			p.archPrefix, result.Arch, result.New.Format(p.physPrefix))
	case core.HookPosRenameSkipped:
		fmt.Fprintf(p.w,
			"  Skipping rename for destination ArchReg %s%d as instructed by '!'.\n",
			p.archPrefix, ctx.Detail.(int))
	case core.HookPosConverted:
		fmt.Fprintf(p.w, "  Converted: %s\n", ctx.Detail.(string))
	case core.HookPosFault:
		p.PrintError(ctx.Detail.(error))
	case core.HookPosInstEnd:
		fmt.Fprintf(p.w, "End of Inst %d State: %s\n\n", dec.Index, ctx.Detail.(string))
	}
}

func (p *Printer) printLookup(lookup core.SourceLookup) {
	if !lookup.Phys.IsMapped() {
		fmt.Fprintf(p.w, "  Source Lookup: ArchReg %s%d -> (Not Mapped)\n",
			p.archPrefix, lookup.Arch)
		return
	}

	fmt.Fprintf(p.w, "  Source Lookup: ArchReg %s%d -> PhysReg %s\n",
		p.archPrefix, lookup.Arch, lookup.Phys.Format(p.physPrefix))
}

func instText(dec *core.Decision) string {
	if dec.Inst == nil {
		return ""
	}
	return dec.Inst.Text
}
