package yutsis

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
)

// SixJ is a Wigner 6j-symbol
//
//	{ j1 j2 j3 }
//	{ j4 j5 j6 }
//
// stored row-major. The four triangular inequalities admit only 2, 3, or 6
// integer indices.
type SixJ struct {
	Indices [6]IdxID

	nint int
}

func (b *Bag) NewSixJ(i1, i2, i3, i4, i5, i6 IdxID) (*SixJ, error) {
	s := &SixJ{Indices: [6]IdxID{i1, i2, i3, i4, i5, i6}}

	for _, ix := range s.Indices {
		if b.At(ix).Type == Int {
			s.nint++
		}
	}
	switch s.nint {
	case 2, 3, 6:
	default:
		return nil, errors.Wrapf(goamc.ErrBadSymbol, "6j-symbol with %d integer indices", s.nint)
	}
	return s, nil
}

// Contains reports whether id appears in the symbol.
func (s *SixJ) Contains(id IdxID) bool {
	for _, ix := range s.Indices {
		if ix == id {
			return true
		}
	}
	return false
}

// IndexOf returns the first position of id in the symbol, or -1.
func (s *SixJ) IndexOf(id IdxID) int {
	for k, ix := range s.Indices {
		if ix == id {
			return k
		}
	}
	return -1
}

// ContainsTriangularDelta reports whether the triple of t forms one of the
// symbol's four triads, making an explicit triangular delta redundant.
func (s *SixJ) ContainsTriangularDelta(t TriangularDelta) bool {
	positions := make([]int, 0, 3)
	for k, ix := range s.Indices {
		for _, tix := range t.Indices {
			if ix == tix {
				positions = append(positions, k)
			}
		}
	}
	if len(positions) != 3 {
		return false
	}
	// positions is already sorted: k runs in increasing order and each
	// symbol position matches at most one delta index.
	triads := [4][3]int{{0, 1, 2}, {0, 4, 5}, {1, 3, 5}, {2, 3, 4}}
	for _, tr := range triads {
		if positions[0] == tr[0] && positions[1] == tr[1] && positions[2] == tr[2] {
			return true
		}
	}
	return false
}

// PermuteColumns swaps two columns. Column permutations carry no phase.
func (s *SixJ) PermuteColumns(col1, col2 int) error {
	if col1 < 0 || col1 > 2 || col2 < 0 || col2 > 2 {
		return errors.Wrap(goamc.ErrBadSymbol, "6j column out of range")
	}
	s.Indices[col1], s.Indices[col2] = s.Indices[col2], s.Indices[col1]
	s.Indices[col1+3], s.Indices[col2+3] = s.Indices[col2+3], s.Indices[col1+3]
	return nil
}

// PermuteLinesForColumns swaps upper and lower entries in two columns. This
// symmetry carries no phase.
func (s *SixJ) PermuteLinesForColumns(col1, col2 int) error {
	if col1 < 0 || col1 > 2 || col2 < 0 || col2 > 2 {
		return errors.Wrap(goamc.ErrBadSymbol, "6j column out of range")
	}
	s.Indices[col1], s.Indices[col1+3] = s.Indices[col1+3], s.Indices[col1]
	s.Indices[col2], s.Indices[col2+3] = s.Indices[col2+3], s.Indices[col2]
	return nil
}

// Canonicalize permutes the symbol into one of the canonical type patterns:
//
//	2 integers: { h h i / h h i } with the integers in the third column
//	3 integers: { i i i / h h h }
//	6 integers: { i i i / i i i } (already canonical)
//
// In the 2-integer case a non-particle index among the half-integers is
// additionally moved to the fifth position.
func (s *SixJ) Canonicalize(b *Bag) error {
	typ := func(k int) IdxType { return b.At(s.Indices[k]).Type }

	switch s.nint {
	case 2:
		if typ(0) == Int {
			s.Indices = [6]IdxID{s.Indices[1], s.Indices[2], s.Indices[0], s.Indices[4], s.Indices[5], s.Indices[3]}
		}
		if typ(1) == Int {
			s.Indices = [6]IdxID{s.Indices[0], s.Indices[2], s.Indices[1], s.Indices[3], s.Indices[5], s.Indices[4]}
		}

		// Move the collective (non-particle) half-integer index to the
		// fifth position.
		for k, pos := range [4]int{0, 1, 3, 4} {
			if b.At(s.Indices[pos]).Particle {
				continue
			}
			switch k {
			case 0:
				s.Indices[0], s.Indices[1], s.Indices[3], s.Indices[4] =
					s.Indices[4], s.Indices[3], s.Indices[1], s.Indices[0]
			case 1:
				s.Indices[0], s.Indices[1], s.Indices[3], s.Indices[4] =
					s.Indices[3], s.Indices[4], s.Indices[0], s.Indices[1]
			case 2:
				s.Indices[0], s.Indices[1], s.Indices[3], s.Indices[4] =
					s.Indices[1], s.Indices[0], s.Indices[4], s.Indices[3]
			}
			break
		}

	case 3:
		var hints []int
		for k := 0; k < 3; k++ {
			if typ(k) == HalfInt {
				hints = append(hints, k)
			}
		}
		switch len(hints) {
		case 0:
			// already { i i i / h h h }
		case 2:
			for _, k := range hints {
				s.Indices[k], s.Indices[k+3] = s.Indices[k+3], s.Indices[k]
			}
		default:
			return errors.Wrapf(goamc.ErrBadSymbol, "6j-symbol with %d half-integers in the first row", len(hints))
		}
	}
	return nil
}

func (s *SixJ) String(b *Bag) string {
	return fmt.Sprintf("6j{%s %s %s; %s %s %s}",
		b.At(s.Indices[0]).Name, b.At(s.Indices[1]).Name, b.At(s.Indices[2]).Name,
		b.At(s.Indices[3]).Name, b.At(s.Indices[4]).Name, b.At(s.Indices[5]).Name)
}
