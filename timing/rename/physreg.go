package rename

import "strconv"

// PhysReg is a physical register binding that may be absent. The zero value
// is Unmapped.
type PhysReg struct {
	idx    int
	mapped bool
}

// Unmapped is the binding of an architectural register that has never been
// written.
var Unmapped = PhysReg{}

// Phys returns the binding to physical register idx.
func Phys(idx int) PhysReg {
	return PhysReg{idx: idx, mapped: true}
}

// Index returns the physical register index and whether the binding exists.
func (p PhysReg) Index() (int, bool) {
	return p.idx, p.mapped
}

// IsMapped returns true if the binding refers to a physical register.
func (p PhysReg) IsMapped() bool {
	return p.mapped
}

// Format renders the binding with the given prefix, or "N/A" when unmapped.
func (p PhysReg) Format(prefix string) string {
	if !p.mapped {
		return "N/A"
	}
	return prefix + strconv.Itoa(p.idx)
}

// String implements fmt.Stringer using the default physical prefix.
func (p PhysReg) String() string {
	return p.Format(DefaultPhysPrefix)
}
