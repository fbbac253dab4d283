package yutsis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amc-systems/goamc/goamc"
	"github.com/amc-systems/goamc/libamc/yutsis"
)

func TestZeroLineCollapsesToDelta(t *testing.T) {
	bag := yutsis.NewBag()
	zero := bag.NewIdx(yutsis.Int, "0", yutsis.IdxOpts{Zero: true})
	j1 := bag.NewIdx(yutsis.HalfInt, "j1", yutsis.IdxOpts{})
	j2 := bag.NewIdx(yutsis.HalfInt, "j2", yutsis.IdxOpts{})

	tjm := &yutsis.ThreeJM{
		Indices: [3]yutsis.IdxID{j1, j2, zero},
		Signs:   [3]int{1, -1, 1},
	}

	rest, deltas, err := yutsis.HandleZeroLines(bag, []*yutsis.ThreeJM{tjm}, zero, goamc.DefaultMaxIter)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Len(t, deltas, 1)
	require.Equal(t, j1, deltas[0].Indices[0])
	require.Equal(t, j2, deltas[0].Indices[1])

	// 1/sqrt(2j+1) lands on the surviving index.
	require.Equal(t, -1, bag.At(j1).JHat)
}

func TestZeroLineWithRepeatedIndexLeavesHatFactor(t *testing.T) {
	bag := yutsis.NewBag()
	zero := bag.NewIdx(yutsis.Int, "0", yutsis.IdxOpts{Zero: true})
	j1 := bag.NewIdx(yutsis.HalfInt, "j1", yutsis.IdxOpts{})

	tjm := &yutsis.ThreeJM{
		Indices: [3]yutsis.IdxID{j1, j1, zero},
		Signs:   [3]int{1, -1, 1},
	}

	rest, deltas, err := yutsis.HandleZeroLines(bag, []*yutsis.ThreeJM{tjm}, zero, goamc.DefaultMaxIter)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Empty(t, deltas)
	require.Equal(t, 1, bag.At(j1).JHat)
}

func TestDuplicatedIndexForcesThirdToZero(t *testing.T) {
	bag := yutsis.NewBag()
	zero := bag.NewIdx(yutsis.Int, "0", yutsis.IdxOpts{Zero: true})
	j1 := bag.NewIdx(yutsis.HalfInt, "j1", yutsis.IdxOpts{})
	J := bag.NewIdx(yutsis.Int, "J", yutsis.IdxOpts{})

	tjm := &yutsis.ThreeJM{
		Indices: [3]yutsis.IdxID{j1, j1, J},
		Signs:   [3]int{1, -1, 1},
	}

	rest, deltas, err := yutsis.HandleZeroLines(bag, []*yutsis.ThreeJM{tjm}, zero, goamc.DefaultMaxIter)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, bag.At(J).Zero)
	require.Len(t, deltas, 1)
	require.Equal(t, zero, deltas[0].Indices[0])
	require.Equal(t, J, deltas[0].Indices[1])
}

func TestZeroLineEqualSignsFlipsOtherOccurrence(t *testing.T) {
	bag := yutsis.NewBag()
	zero := bag.NewIdx(yutsis.Int, "0", yutsis.IdxOpts{Zero: true})
	j1 := bag.NewIdx(yutsis.HalfInt, "j1", yutsis.IdxOpts{})
	j2 := bag.NewIdx(yutsis.HalfInt, "j2", yutsis.IdxOpts{})
	j3 := bag.NewIdx(yutsis.HalfInt, "j3", yutsis.IdxOpts{})
	J := bag.NewIdx(yutsis.Int, "J", yutsis.IdxOpts{})

	t1 := &yutsis.ThreeJM{
		Indices: [3]yutsis.IdxID{j1, j2, zero},
		Signs:   [3]int{1, 1, 1},
	}
	t2 := &yutsis.ThreeJM{
		Indices: [3]yutsis.IdxID{j2, j3, J},
		Signs:   [3]int{-1, 1, -1},
	}

	rest, deltas, err := yutsis.HandleZeroLines(bag, []*yutsis.ThreeJM{t1, t2}, zero, goamc.DefaultMaxIter)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Len(t, deltas, 1)

	// j2's projection got negated: its other occurrence flipped to +1 and the
	// symbol now references the delta survivor j1.
	require.Equal(t, j1, rest[0].Indices[0])
	require.Equal(t, 1, rest[0].Signs[0])
	require.Equal(t, 2, bag.At(j2).JPhase)
	require.Equal(t, 0, bag.At(j2).MPhase)
}

func TestMultipleZeroLinesRejected(t *testing.T) {
	bag := yutsis.NewBag()
	zero := bag.NewIdx(yutsis.Int, "0", yutsis.IdxOpts{Zero: true})
	zero2 := bag.NewIdx(yutsis.Int, "z", yutsis.IdxOpts{Zero: true})
	j1 := bag.NewIdx(yutsis.HalfInt, "j1", yutsis.IdxOpts{})

	tjm := &yutsis.ThreeJM{
		Indices: [3]yutsis.IdxID{zero, zero2, j1},
		Signs:   [3]int{1, -1, 1},
	}

	_, _, err := yutsis.HandleZeroLines(bag, []*yutsis.ThreeJM{tjm}, zero, goamc.DefaultMaxIter)
	require.ErrorIs(t, err, goamc.ErrBadSymbol)
}

func TestTripleIndexRejected(t *testing.T) {
	bag := yutsis.NewBag()
	zero := bag.NewIdx(yutsis.Int, "0", yutsis.IdxOpts{Zero: true})
	j1 := bag.NewIdx(yutsis.HalfInt, "j1", yutsis.IdxOpts{})

	tjm := &yutsis.ThreeJM{
		Indices: [3]yutsis.IdxID{j1, j1, j1},
		Signs:   [3]int{1, -1, 1},
	}

	_, _, err := yutsis.HandleZeroLines(bag, []*yutsis.ThreeJM{tjm}, zero, goamc.DefaultMaxIter)
	require.ErrorIs(t, err, goamc.ErrBadSymbol)
}
