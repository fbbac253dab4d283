package yutsis

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
)

// ClebschGordan is a coupling coefficient ( j1 m1, j2 m2 | j3 m3 ) with a
// projection sign per index.
type ClebschGordan struct {
	Indices [3]IdxID
	Signs   [3]int
}

// ThreeJM converts the coefficient into its 3JM-symbol form, recording the
// conversion phases and hat factor on the bag:
//
//	( j1 j2 | j3 )                                       ( j1 j2  j3 )
//	( m1 m2 | m3 ) = (-1)^{ j1 - j2 + m3 } sqrt{2j3 + 1} ( m1 m2 -m3 )
//
// The returned symbol owns its own copy of indices and signs.
func (cg ClebschGordan) ThreeJM(b *Bag) *ThreeJM {
	t := &ThreeJM{
		Indices: cg.Indices,
		Signs:   cg.Signs,
	}

	b.At(t.Indices[0]).JPhase++
	b.At(t.Indices[1]).JPhase--
	b.At(t.Indices[2]).MPhase += t.Signs[2]
	b.At(t.Indices[2]).JHat++
	t.Signs[2] *= -1

	// A negative projection in a 3JM-symbol is assumed to carry a
	// (-1)^{j-m} phase; (-1)^{2j-2m} = 1 keeps the bookkeeping consistent.
	for k := range t.Indices {
		if t.Signs[k] == -1 {
			ix := b.At(t.Indices[k])
			ix.JPhase++
			ix.MPhase--
		}
	}

	return t
}

// ThreeJM is a Wigner 3jm-symbol: three indices with a projection sign each.
// One symbol becomes one trivalent node of the Yutsis graph.
type ThreeJM struct {
	Indices [3]IdxID
	Signs   [3]int
}

// Exchange swaps two (index, sign) slots, adding the odd-permutation phase
// (-1)^{j1+j2+j3}.
func (t *ThreeJM) Exchange(k1, k2 int, b *Bag) error {
	if k1 < 0 || k1 > 2 || k2 < 0 || k2 > 2 {
		return errors.Wrap(goamc.ErrBadSymbol, "3jm slot out of range")
	}
	if k1 == k2 {
		return nil
	}

	t.Indices[k1], t.Indices[k2] = t.Indices[k2], t.Indices[k1]
	t.Signs[k1], t.Signs[k2] = t.Signs[k2], t.Signs[k1]

	for k := range t.Indices {
		b.At(t.Indices[k]).JPhase++
	}
	return nil
}

// FlipSigns negates all three projection signs. The compensating phase +2j
// is added to exactly the indices whose sign becomes positive:
//
//	             ( j1 j2 j3 )                                 ( j1 j2 j3 )
//	(-1)^{j1-m1} (-m1 m2 m3 ) = (-1)^{2j1} (-1)^{j2-m2+j3-m3} ( m1-m2-m3 )
func (t *ThreeJM) FlipSigns(b *Bag) {
	for k := range t.Signs {
		t.Signs[k] *= -1
	}
	for k := range t.Indices {
		if t.Signs[k] == +1 {
			b.At(t.Indices[k]).JPhase += 2
		}
	}
}

// IndexOf returns the first slot holding id, or -1.
func (t *ThreeJM) IndexOf(id IdxID) int {
	for k, ix := range t.Indices {
		if ix == id {
			return k
		}
	}
	return -1
}

// Count returns how many slots hold id.
func (t *ThreeJM) Count(id IdxID) int {
	n := 0
	for _, ix := range t.Indices {
		if ix == id {
			n++
		}
	}
	return n
}

func (t *ThreeJM) String(b *Bag) string {
	sgn := func(s int) string {
		if s == 1 {
			return "+"
		}
		return "-"
	}
	return fmt.Sprintf("3jm: %s(%s) %s(%s) %s(%s)",
		b.At(t.Indices[0]).Name, sgn(t.Signs[0]),
		b.At(t.Indices[1]).Name, sgn(t.Signs[1]),
		b.At(t.Indices[2]).Name, sgn(t.Signs[2]))
}
