package algebra

import "fmt"

// IndexType distinguishes integer from half-integer angular momenta.
type IndexType uint8

const (
	Int IndexType = iota
	HalfInt
)

func (t IndexType) String() string {
	if t == HalfInt {
		return "hint"
	}
	return "int"
}

// CoupledType returns the type of the angular momentum obtained by coupling
// two momenta of the given types. Two like types couple to integer, mixed
// types couple to half-integer.
func CoupledType(a, b IndexType) IndexType {
	if a == b {
		return Int
	}
	return HalfInt
}

// Index is a named angular-momentum label in a (reduced) equation.
type Index struct {
	Name string
	Type IndexType

	// Rank marks a tensor-rank label, which gets its own naming sequence.
	Rank bool

	// ConstrainedTo points to the index this one is forced equal to by a
	// Kronecker delta in the reduced equation, or nil if unconstrained.
	ConstrainedTo *Index
}

func NewIndex(name string, typ IndexType) *Index {
	return &Index{Name: name, Type: typ}
}

func (ix *Index) String() string {
	return ix.Name
}

// IndexNamer generates fresh auxiliary index names: J0, J1, ... for integer,
// j0, j1, ... for half-integer, and k0, k1, ... for tensor ranks.
type IndexNamer struct {
	counts [3]int
}

// Clone copies the namer so that per-term naming can continue from the
// current counters without affecting other terms.
func (nm *IndexNamer) Clone() *IndexNamer {
	cp := *nm
	return &cp
}

func (nm *IndexNamer) Next(typ IndexType, rank bool) *Index {
	var name string
	switch {
	case rank:
		name = fmt.Sprintf("k%d", nm.counts[2])
		nm.counts[2]++
	case typ == HalfInt:
		name = fmt.Sprintf("j%d", nm.counts[1])
		nm.counts[1]++
	default:
		name = fmt.Sprintf("J%d", nm.counts[0])
		nm.counts[0]++
	}
	return &Index{Name: name, Type: typ, Rank: rank}
}
