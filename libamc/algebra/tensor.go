package algebra

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
)

// Scheme is a node of a tensor's coupling-scheme tree. A leaf names a
// one-based subscript position; a negative leaf couples the time-reversed
// state. An inner node couples the momenta of its two children into a new
// collective angular momentum.
//
// The scheme ((1,2),(3,4)) couples subscripts 1,2 to an intermediate J0,
// subscripts 3,4 to J1, and J0,J1 to the tensor rank.
type Scheme struct {
	Leaf int // nonzero for leaves
	L, R *Scheme
}

func Leaf(k int) *Scheme          { return &Scheme{Leaf: k} }
func Couple(l, r *Scheme) *Scheme { return &Scheme{L: l, R: r} }

func (s *Scheme) IsLeaf() bool { return s.Leaf != 0 }

func (s *Scheme) String() string {
	if s == nil {
		return "()"
	}
	if s.IsLeaf() {
		return fmt.Sprintf("%d", s.Leaf)
	}
	return fmt.Sprintf("(%s,%s)", s.L, s.R)
}

// DefaultScheme couples creator subscripts left-to-right, annihilator
// subscripts left-to-right, and the two chains to the rank. Tensors with only
// one kind of index get a single left-to-right chain.
func DefaultScheme(mode [2]int) *Scheme {
	if mode[0] > 0 && mode[1] > 0 {
		return Couple(chainScheme(1, mode[0]), chainScheme(mode[0]+1, mode[1]))
	}
	n := mode[0]
	if mode[1] > n {
		n = mode[1]
	}
	return chainScheme(1, n)
}

func chainScheme(start, num int) *Scheme {
	if num == 1 {
		return Leaf(start)
	}
	return Couple(chainScheme(start, num-1), Leaf(start+num-1))
}

// checkScheme verifies that each subscript position 1..num appears exactly
// once among the leaves.
func checkScheme(s *Scheme, num int) error {
	seen := make(map[int]bool, num)

	var rec func(sub *Scheme) error
	rec = func(sub *Scheme) error {
		if sub == nil {
			return errors.Wrap(goamc.ErrBadScheme, "nil scheme node")
		}
		if sub.IsLeaf() {
			k := sub.Leaf
			if k < 0 {
				k = -k
			}
			if k < 1 || k > num {
				return errors.Wrapf(goamc.ErrBadScheme, "unexpected index %d, expected 1..%d", k, num)
			}
			if seen[k] {
				return errors.Wrapf(goamc.ErrBadScheme, "duplicate index %d", k)
			}
			seen[k] = true
			return nil
		}
		if err := rec(sub.L); err != nil {
			return err
		}
		return rec(sub.R)
	}

	if err := rec(s); err != nil {
		return err
	}
	if len(seen) != num {
		return errors.Wrapf(goamc.ErrBadScheme, "scheme covers %d of %d subscripts", len(seen), num)
	}
	return nil
}

// TensorOpts carries the declaration attributes of a tensor.
type TensorOpts struct {
	// NonScalar declares a tensor of nonzero rank.
	NonScalar bool

	// Reduce requests reduced matrix elements even for a scalar tensor.
	// Nonscalar tensors are always reduced.
	Reduce bool

	// Diagonal tensors have half as many subscripts as their mode suggests
	// and no coupling scheme; they pass through the reduction untouched.
	Diagonal bool

	// Scheme overrides the default left-to-right coupling order.
	Scheme *Scheme
}

// Tensor is a declared tensor variable kind.
type Tensor struct {
	Name     string
	Mode     [2]int // number of creator and annihilator subscripts
	Scalar   bool
	Reduce   bool
	Diagonal bool
	Scheme   *Scheme // nil for diagonal and mode-zero tensors
}

func NewTensor(name string, mode [2]int, opts TensorOpts) (*Tensor, error) {
	if mode[0] < 0 || mode[1] < 0 {
		return nil, errors.Wrapf(goamc.ErrBadScheme, "tensor %s: negative mode", name)
	}

	tn := &Tensor{
		Name:     name,
		Mode:     mode,
		Scalar:   !opts.NonScalar,
		Reduce:   opts.Reduce || opts.NonScalar,
		Diagonal: opts.Diagonal,
	}

	total := mode[0] + mode[1]
	if tn.Diagonal || total == 0 {
		if opts.Scheme != nil {
			return nil, errors.Wrapf(goamc.ErrBadScheme, "tensor %s: scheme given for %s tensor",
				name, map[bool]string{true: "diagonal", false: "mode-zero"}[tn.Diagonal])
		}
		return tn, nil
	}

	scheme := opts.Scheme
	if scheme == nil {
		scheme = DefaultScheme(mode)
	}
	if scheme.IsLeaf() {
		return nil, errors.Wrapf(goamc.ErrBadScheme, "tensor %s: scheme root must couple two subtrees", name)
	}
	if err := checkScheme(scheme, total); err != nil {
		return nil, errors.Wrapf(err, "tensor %s", name)
	}
	tn.Scheme = scheme
	return tn, nil
}

// TotalMode is the number of subscripts of a non-diagonal variable of this
// tensor. Diagonal variables carry half as many.
func (tn *Tensor) TotalMode() int {
	return tn.Mode[0] + tn.Mode[1]
}

func (tn *Tensor) NumSubscripts() int {
	if tn.Diagonal {
		return tn.TotalMode() / 2
	}
	return tn.TotalMode()
}
