package yutsis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amc-systems/goamc/goamc"
	"github.com/amc-systems/goamc/libamc/yutsis"
)

func TestClebschGordanToThreeJM(t *testing.T) {
	bag := yutsis.NewBag()
	j1 := bag.NewIdx(yutsis.HalfInt, "j1", yutsis.IdxOpts{})
	j2 := bag.NewIdx(yutsis.HalfInt, "j2", yutsis.IdxOpts{})
	J := bag.NewIdx(yutsis.Int, "J", yutsis.IdxOpts{})

	cg := yutsis.ClebschGordan{
		Indices: [3]yutsis.IdxID{j1, j2, J},
		Signs:   [3]int{1, 1, 1},
	}
	tjm := cg.ThreeJM(bag)

	// (-1)^{j1 - j2 + M} sqrt(2J+1), with the coupled projection negated and
	// the resulting negative slot normalized to carry (-1)^{J - M}.
	require.Equal(t, [3]int{1, 1, -1}, tjm.Signs)
	require.Equal(t, 1, bag.At(j1).JPhase)
	require.Equal(t, -1, bag.At(j2).JPhase)
	require.Equal(t, 1, bag.At(J).JPhase)
	require.Equal(t, 0, bag.At(J).MPhase)
	require.Equal(t, 1, bag.At(J).JHat)
}

func TestThreeJMExchange(t *testing.T) {
	bag := yutsis.NewBag()
	a := bag.NewIdx(yutsis.HalfInt, "a", yutsis.IdxOpts{})
	c := bag.NewIdx(yutsis.HalfInt, "c", yutsis.IdxOpts{})
	J := bag.NewIdx(yutsis.Int, "J", yutsis.IdxOpts{})

	tjm := &yutsis.ThreeJM{
		Indices: [3]yutsis.IdxID{a, c, J},
		Signs:   [3]int{1, -1, -1},
	}

	require.NoError(t, tjm.Exchange(0, 2, bag))
	require.Equal(t, [3]yutsis.IdxID{J, c, a}, tjm.Indices)
	require.Equal(t, [3]int{-1, -1, 1}, tjm.Signs)

	// Odd permutation: (-1)^{ja + jc + J} on top.
	require.Equal(t, 1, bag.At(a).JPhase)
	require.Equal(t, 1, bag.At(c).JPhase)
	require.Equal(t, 1, bag.At(J).JPhase)

	// Exchanging a slot with itself is free.
	require.NoError(t, tjm.Exchange(1, 1, bag))
	require.Equal(t, 1, bag.At(a).JPhase)

	require.ErrorIs(t, tjm.Exchange(0, 3, bag), goamc.ErrBadSymbol)
}

func TestThreeJMFlipSigns(t *testing.T) {
	bag := yutsis.NewBag()
	a := bag.NewIdx(yutsis.HalfInt, "a", yutsis.IdxOpts{})
	c := bag.NewIdx(yutsis.HalfInt, "c", yutsis.IdxOpts{})
	J := bag.NewIdx(yutsis.Int, "J", yutsis.IdxOpts{})

	tjm := &yutsis.ThreeJM{
		Indices: [3]yutsis.IdxID{a, c, J},
		Signs:   [3]int{1, -1, 1},
	}
	tjm.FlipSigns(bag)

	require.Equal(t, [3]int{-1, 1, -1}, tjm.Signs)
	require.Equal(t, 0, bag.At(a).JPhase)
	require.Equal(t, 2, bag.At(c).JPhase)
	require.Equal(t, 0, bag.At(J).JPhase)
}

func TestThreeJMCount(t *testing.T) {
	bag := yutsis.NewBag()
	a := bag.NewIdx(yutsis.HalfInt, "a", yutsis.IdxOpts{})
	J := bag.NewIdx(yutsis.Int, "J", yutsis.IdxOpts{})

	tjm := &yutsis.ThreeJM{
		Indices: [3]yutsis.IdxID{a, a, J},
		Signs:   [3]int{1, -1, 1},
	}
	require.Equal(t, 2, tjm.Count(a))
	require.Equal(t, 1, tjm.Count(J))
	require.Equal(t, 0, tjm.IndexOf(a))
	require.Equal(t, 2, tjm.IndexOf(J))
	require.Equal(t, -1, tjm.IndexOf(yutsis.IdxID(99)))
}
