package goamc

import "strings"

// Convention selects where the Wigner-Eckart jhat deduction is placed when a
// tensor variable is expanded into its Clebsch-Gordan coupling network. The
// two conventions are not numerically interchangeable.
type Convention int32

const (
	Wigner Convention = iota
	Sakurai
)

func (cv Convention) String() string {
	switch cv {
	case Wigner:
		return "wigner"
	case Sakurai:
		return "sakurai"
	}
	return "unknown"
}

func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(s) {
	case "wigner":
		return Wigner, nil
	case "sakurai":
		return Sakurai, nil
	}
	return Wigner, ErrBadConvention
}

// DefaultMaxIter caps the rewrite loops (zero-line fixed point, graph
// reduction). Hitting the cap is an invariant violation, not a normal
// failure mode.
const DefaultMaxIter = 100

// ReduceOpts configures equation reduction.
type ReduceOpts struct {

	// Permute enables searching subscript permutations for a reducible
	// coupling order. Accepted for forward compatibility; reduction fails
	// with ErrNotImplemented when set.
	Permute bool

	// CollectNineJs fuses sums over products of three 6j-symbols sharing an
	// auxiliary index into 9j-symbols.
	CollectNineJs bool

	// CollectTwelveJs additionally fuses sums over one 9j-symbol and two
	// 6j-symbols into 12j-symbols of the first kind. Implies nothing unless
	// CollectNineJs produced 9j-symbols first.
	CollectTwelveJs bool

	Convention Convention

	// MaxIter overrides DefaultMaxIter when positive.
	MaxIter int

	// Workers is the number of terms reduced concurrently. Values below 2
	// select sequential reduction. Terms share no mutable state, so any
	// worker count is safe.
	Workers int
}

func (opts *ReduceOpts) IterCap() int {
	if opts.MaxIter > 0 {
		return opts.MaxIter
	}
	return DefaultMaxIter
}
