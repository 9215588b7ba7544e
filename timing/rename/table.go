// Package rename provides the register alias table used by the renaming
// stage of an out-of-order core.
package rename

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sarchlab/akita/v4/sim"
)

// HookPosAllocate marks a successful physical register allocation. The hook
// detail is a RenameResult.
var HookPosAllocate = &sim.HookPos{Name: "RAT Allocate"}

// HookPosFree marks a physical register returning to the free list. The hook
// detail is the freed index.
var HookPosFree = &sim.HookPos{Name: "RAT Free"}

// RenameResult describes one destination rename.
type RenameResult struct {
	// Arch is the renamed architectural register.
	Arch int
	// Old is the binding before the rename. It is not freed by the rename.
	Old PhysReg
	// New is the freshly allocated physical register.
	New PhysReg
}

// Table is a register alias table. It maps each architectural register to
// the physical register holding its latest value and keeps the pool of
// unbound physical registers.
//
// A physical register is bound to at most one architectural register and is
// never bound and free at the same time. Rename does not free the evicted
// binding, so a register can also be pending until the caller frees it. The
// free list is kept in ascending order so automatic allocation always hands
// out the lowest free index.
type Table struct {
	*sim.HookableBase

	archRegs int
	physRegs int

	archPrefix string
	physPrefix string

	mapping  []PhysReg
	freeList []int
}

// NewTable creates a table with the default register prefixes.
func NewTable(archRegs, physRegs int, mode InitMode) (*Table, error) {
	if archRegs < 1 {
		return nil, fmt.Errorf("%w: %d architectural registers",
			ErrConfiguration, archRegs)
	}
	if physRegs < archRegs {
		return nil, fmt.Errorf(
			"%w: %d physical registers cannot back %d architectural registers",
			ErrConfiguration, physRegs, archRegs)
	}

	t := &Table{
		HookableBase: sim.NewHookableBase(),
		archRegs:     archRegs,
		physRegs:     physRegs,
		archPrefix:   DefaultArchPrefix,
		physPrefix:   DefaultPhysPrefix,
		mapping:      make([]PhysReg, archRegs),
	}

	switch mode {
	case InitIdentity:
		for a := range t.mapping {
			t.mapping[a] = Phys(a)
		}
		t.freeList = makeRange(archRegs, physRegs)
	case InitUnmapped:
		t.freeList = makeRange(0, physRegs)
	default:
		return nil, fmt.Errorf("%w: unknown init mode %q", ErrConfiguration, mode)
	}

	return t, nil
}

// NewTableWithConfig creates a table from a configuration.
func NewTableWithConfig(config *Config) (*Table, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	t, err := NewTable(config.ArchRegs, config.PhysRegs, config.InitMode)
	if err != nil {
		return nil, err
	}

	t.archPrefix = config.ArchPrefix
	t.physPrefix = config.PhysPrefix

	return t, nil
}

func makeRange(from, to int) []int {
	r := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		r = append(r, i)
	}
	return r
}

// ArchRegs returns the number of architectural registers.
func (t *Table) ArchRegs() int {
	return t.archRegs
}

// PhysRegs returns the number of physical registers.
func (t *Table) PhysRegs() int {
	return t.physRegs
}

// ArchPrefix returns the display prefix of architectural registers.
func (t *Table) ArchPrefix() string {
	return t.archPrefix
}

// PhysPrefix returns the display prefix of physical registers.
func (t *Table) PhysPrefix() string {
	return t.physPrefix
}

// GetMapping returns the physical register currently bound to arch.
func (t *Table) GetMapping(arch int) (PhysReg, error) {
	if err := t.checkArch(arch); err != nil {
		return Unmapped, err
	}
	return t.mapping[arch], nil
}

// Rename binds arch to the lowest free physical register.
func (t *Table) Rename(arch int) (RenameResult, error) {
	if err := t.checkArch(arch); err != nil {
		return RenameResult{}, err
	}
	if len(t.freeList) == 0 {
		return RenameResult{}, fmt.Errorf("%w: cannot rename %s",
			ErrExhausted, t.archName(arch))
	}

	return t.bind(arch, 0), nil
}

// RenameTo binds arch to the requested physical register, which must be free.
func (t *Table) RenameTo(arch, phys int) (RenameResult, error) {
	if err := t.checkArch(arch); err != nil {
		return RenameResult{}, err
	}

	pos, found := slices.BinarySearch(t.freeList, phys)
	if !found {
		return RenameResult{}, fmt.Errorf("%w: %s%d is not in the free list",
			ErrUnavailable, t.physPrefix, phys)
	}

	return t.bind(arch, pos), nil
}

// bind removes freeList[pos] and maps arch to it. Arguments must already be
// validated.
func (t *Table) bind(arch, pos int) RenameResult {
	phys := t.freeList[pos]
	t.freeList = slices.Delete(t.freeList, pos, pos+1)

	result := RenameResult{
		Arch: arch,
		Old:  t.mapping[arch],
		New:  Phys(phys),
	}
	t.mapping[arch] = result.New

	if t.NumHooks() > 0 {
		t.InvokeHook(sim.HookCtx{
			Domain: t,
			Pos:    HookPosAllocate,
			Detail: result,
		})
	}

	return result
}

// FreePhysicalRegister returns phys to the free list. It does not check
// whether an architectural register is still bound to phys.
func (t *Table) FreePhysicalRegister(phys int) error {
	if phys < 0 || phys >= t.physRegs {
		return fmt.Errorf("%w: physical register %d (have %d)",
			ErrOutOfRange, phys, t.physRegs)
	}

	pos, found := slices.BinarySearch(t.freeList, phys)
	if found {
		return fmt.Errorf("%w: %s%d", ErrDoubleFree, t.physPrefix, phys)
	}
	t.freeList = slices.Insert(t.freeList, pos, phys)

	if t.NumHooks() > 0 {
		t.InvokeHook(sim.HookCtx{
			Domain: t,
			Pos:    HookPosFree,
			Detail: phys,
		})
	}

	return nil
}

// IsFree returns true if phys is in the free list.
func (t *Table) IsFree(phys int) bool {
	_, found := slices.BinarySearch(t.freeList, phys)
	return found
}

// NumFree returns the number of free physical registers.
func (t *Table) NumFree() int {
	return len(t.freeList)
}

// FreeList returns a copy of the free list in allocation order.
func (t *Table) FreeList() []int {
	return slices.Clone(t.freeList)
}

// Mappings returns a copy of the architectural to physical mapping.
func (t *Table) Mappings() []PhysReg {
	return slices.Clone(t.mapping)
}

// Pending returns the physical registers that are neither bound nor free.
// These are bindings evicted by Rename that the caller has not retired yet.
func (t *Table) Pending() []int {
	bound := make([]bool, t.physRegs)
	for _, p := range t.mapping {
		if idx, ok := p.Index(); ok {
			bound[idx] = true
		}
	}

	var pending []int
	for p := 0; p < t.physRegs; p++ {
		if !bound[p] && !t.IsFree(p) {
			pending = append(pending, p)
		}
	}
	return pending
}

// CheckInvariants verifies that no physical register is bound twice, that
// the free list is sorted and duplicate-free, and that no free register is
// also bound.
func (t *Table) CheckInvariants() error {
	if len(t.mapping) != t.archRegs {
		return fmt.Errorf("mapping has %d entries, want %d",
			len(t.mapping), t.archRegs)
	}

	owner := make([]int, t.physRegs)
	for i := range owner {
		owner[i] = -1
	}

	for a, p := range t.mapping {
		idx, ok := p.Index()
		if !ok {
			continue
		}
		if idx < 0 || idx >= t.physRegs {
			return fmt.Errorf("%s is bound to out-of-range %s",
				t.archName(a), p.Format(t.physPrefix))
		}
		if owner[idx] >= 0 {
			return fmt.Errorf("%s is bound to both %s and %s",
				p.Format(t.physPrefix), t.archName(owner[idx]), t.archName(a))
		}
		owner[idx] = a
	}

	for i, p := range t.freeList {
		if p < 0 || p >= t.physRegs {
			return fmt.Errorf("free list holds out-of-range %s%d", t.physPrefix, p)
		}
		if i > 0 && t.freeList[i-1] >= p {
			return fmt.Errorf("free list is not strictly ascending at %s%d",
				t.physPrefix, p)
		}
		if owner[p] >= 0 {
			return fmt.Errorf("%s%d is free but bound to %s",
				t.physPrefix, p, t.archName(owner[p]))
		}
		owner[p] = t.archRegs
	}

	return nil
}

// String renders the mapping and the free list.
func (t *Table) String() string {
	var sb strings.Builder

	sb.WriteString("RAT(mapping=[")
	for a, p := range t.mapping {
		if a > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.archName(a))
		sb.WriteString("->")
		sb.WriteString(p.Format(t.physPrefix))
	}

	sb.WriteString("], free_list=[")
	for i, p := range t.freeList {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s%d", t.physPrefix, p)
	}
	sb.WriteString("])")

	return sb.String()
}

// Serialize returns the human-readable snapshot printed in traces.
func (t *Table) Serialize() string {
	return t.String()
}

func (t *Table) checkArch(arch int) error {
	if arch < 0 || arch >= t.archRegs {
		return fmt.Errorf("%w: architectural register %d (have %d)",
			ErrOutOfRange, arch, t.archRegs)
	}
	return nil
}

func (t *Table) archName(arch int) string {
	return fmt.Sprintf("%s%d", t.archPrefix, arch)
}
