package yutsis

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
)

// IdxType distinguishes integer from half-integer angular momenta. The type
// decides the modulus of the phase exponents: 2 for integer, 4 for
// half-integer.
type IdxType uint8

const (
	Int IdxType = iota
	HalfInt
)

func (t IdxType) String() string {
	if t == HalfInt {
		return "hint"
	}
	return "int"
}

// CoupledType returns the type of the angular momentum obtained by coupling
// momenta of the two given types.
func CoupledType(a, b IdxType) IdxType {
	if a == b {
		return Int
	}
	return HalfInt
}

// IdxID is a handle into a Bag. All graph structures (edges, nodes, deltas,
// output symbols) reference indices by handle, never by pointer, so an index
// created during reduction stays valid in symbols that outlive the graph.
type IdxID int32

// NoIdx is the null handle.
const NoIdx IdxID = -1

// Idx is one angular-momentum index of a single term's coupling network.
// Its accumulator fields (JPhase, MPhase, Sign, JHat) are mutated in place by
// the reduction pass that owns the Bag; indices are never shared across
// terms.
type Idx struct {
	Type IdxType
	Name string

	Zero     bool // forced to zero angular momentum
	External bool // free index of the equation's left-hand side
	Particle bool // single-particle index (as opposed to a coupled label)
	Rank     bool // tensor-rank index

	// Phase exponents of (-1)^(JPhase*j + MPhase*m), the sign prefactor, and
	// the power of the sqrt(2j+1) hat factor.
	JPhase int
	MPhase int
	Sign   int
	JHat   int

	constrainedTo IdxID
}

// IdxOpts carries the flag set of a new index.
type IdxOpts struct {
	Zero     bool
	External bool
	Particle bool
	Rank     bool
}

// Bag is the arena owning every index of one term's reduction. Handles stay
// valid for the lifetime of the Bag; pointers returned by At must not be
// retained across a NewIdx call.
type Bag struct {
	idxs     []Idx
	autoName [2]int
}

func NewBag() *Bag {
	return &Bag{
		idxs: make([]Idx, 0, 32),
	}
}

// NewIdx allocates an index. An empty name draws from the per-type naming
// sequence (J0, J1, ... for integer, j0, j1, ... for half-integer).
func (b *Bag) NewIdx(typ IdxType, name string, opts IdxOpts) IdxID {
	if name == "" {
		if typ == HalfInt {
			name = fmt.Sprintf("j%d", b.autoName[1])
			b.autoName[1]++
		} else {
			name = fmt.Sprintf("J%d", b.autoName[0])
			b.autoName[0]++
		}
	}
	b.idxs = append(b.idxs, Idx{
		Type:          typ,
		Name:          name,
		Zero:          opts.Zero,
		External:      opts.External,
		Particle:      opts.Particle,
		Rank:          opts.Rank,
		Sign:          1,
		constrainedTo: NoIdx,
	})
	return IdxID(len(b.idxs) - 1)
}

func (b *Bag) At(id IdxID) *Idx {
	return &b.idxs[id]
}

func (b *Bag) Len() int {
	return len(b.idxs)
}

// Root follows the constraint chain of id to its final free index,
// compressing the path on the way.
func (b *Bag) Root(id IdxID) IdxID {
	root := id
	for b.idxs[root].constrainedTo != NoIdx {
		root = b.idxs[root].constrainedTo
	}
	for b.idxs[id].constrainedTo != NoIdx {
		next := b.idxs[id].constrainedTo
		b.idxs[id].constrainedTo = root
		id = next
	}
	return root
}

// ConstrainedTo returns the index id is constrained to, or NoIdx.
func (b *Bag) ConstrainedTo(id IdxID) IdxID {
	return b.idxs[id].constrainedTo
}

// Constrain marks id as equal to another index, transferring all of id's
// accumulated factors onto it. After the call, id carries no independent
// meaning. The link is set once and never changed back.
func (b *Bag) Constrain(id, to IdxID) error {
	ix := b.At(id)
	tgt := b.At(to)
	if ix.Type != tgt.Type {
		return errors.Wrapf(goamc.ErrIdxTypeMismatch, "constrain %s to %s", ix.Name, tgt.Name)
	}
	if ix.constrainedTo != NoIdx {
		return errors.Wrapf(goamc.ErrMalformed, "index %s already constrained", ix.Name)
	}

	tgt.Sign *= ix.Sign
	tgt.JPhase += ix.JPhase
	tgt.MPhase += ix.MPhase
	tgt.JHat += ix.JHat

	ix.setDefault()
	ix.constrainedTo = to
	return nil
}

func (ix *Idx) setDefault() {
	ix.JPhase = 0
	ix.MPhase = 0
	ix.Sign = 1
	ix.JHat = 0
}

// Simplify folds the phase exponents into [0, modulus) where the modulus is
// 2 for integer and 4 for half-integer indices. A half-integer exponent
// reduced past the modulus folds an extra factor into Sign.
func (ix *Idx) Simplify() {
	if ix.Zero {
		ix.setDefault()
		return
	}

	switch ix.Type {
	case Int:
		ix.JPhase = posMod(ix.JPhase, 2)
		ix.MPhase = posMod(ix.MPhase, 2)

	case HalfInt:
		ix.JPhase = posMod(ix.JPhase, 4)
		if ix.JPhase/2 == 1 {
			ix.JPhase -= 2
			ix.Sign *= -1
		}
		ix.MPhase = posMod(ix.MPhase, 4)
		if ix.MPhase/2 == 1 {
			ix.MPhase -= 2
			ix.Sign *= -1
		}
	}
}

func (ix *Idx) String() string {
	return fmt.Sprintf("index %s sign=%2d phase=(-1)^{%dj+%dm} jhat=%d type=%s zero=%v external=%v",
		ix.Name, ix.Sign, ix.JPhase, ix.MPhase, ix.JHat, ix.Type, ix.Zero, ix.External)
}

func posMod(a, m int) int {
	a %= m
	if a < 0 {
		a += m
	}
	return a
}
