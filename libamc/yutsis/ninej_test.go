package yutsis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amc-systems/goamc/goamc"
	"github.com/amc-systems/goamc/libamc/yutsis"
)

func newNineJBag(t *testing.T, types [9]yutsis.IdxType) (*yutsis.Bag, [9]yutsis.IdxID) {
	t.Helper()
	bag := yutsis.NewBag()
	var ids [9]yutsis.IdxID
	names := [9]string{"x1", "x2", "x3", "x4", "x5", "x6", "x7", "x8", "x9"}
	for k := range ids {
		ids[k] = bag.NewIdx(types[k], names[k], yutsis.IdxOpts{})
	}
	return bag, ids
}

func TestNewNineJCanonicalizesThreeIntegers(t *testing.T) {
	h, i := yutsis.HalfInt, yutsis.Int

	// The integers already sit on the anti-diagonal, but the first one found
	// (position 2) belongs at position 6, so the placement applies one column
	// and one line permutation that rotates the whole symbol by half a turn.
	bag, ids := newNineJBag(t, [9]yutsis.IdxType{h, h, i, h, i, h, i, h, h})
	n := bag.NewNineJ([9]yutsis.IdxID{
		ids[0], ids[1], ids[2],
		ids[3], ids[4], ids[5],
		ids[6], ids[7], ids[8],
	})

	require.Equal(t, [9]yutsis.IdxID{
		ids[8], ids[7], ids[6],
		ids[5], ids[4], ids[3],
		ids[2], ids[1], ids[0],
	}, n.Indices)

	// One column swap plus one line swap: every index picked up (-1)^{2j}.
	for _, id := range ids {
		require.Equal(t, 2, bag.At(id).JPhase, bag.At(id).Name)
	}
}

func TestNewNineJLeavesOtherTypePatternsAlone(t *testing.T) {
	h, i := yutsis.HalfInt, yutsis.Int

	bag, ids := newNineJBag(t, [9]yutsis.IdxType{h, h, i, h, h, h, h, h, h})
	n := bag.NewNineJ([9]yutsis.IdxID{
		ids[0], ids[1], ids[2],
		ids[3], ids[4], ids[5],
		ids[6], ids[7], ids[8],
	})

	require.Equal(t, [9]yutsis.IdxID{
		ids[0], ids[1], ids[2],
		ids[3], ids[4], ids[5],
		ids[6], ids[7], ids[8],
	}, n.Indices)
	for _, id := range ids {
		require.Equal(t, 0, bag.At(id).JPhase, bag.At(id).Name)
	}
}

func TestNineJPermutationsChargePhase(t *testing.T) {
	h := yutsis.HalfInt
	bag, ids := newNineJBag(t, [9]yutsis.IdxType{h, h, h, h, h, h, h, h, h})
	n := bag.NewNineJ([9]yutsis.IdxID{
		ids[0], ids[1], ids[2],
		ids[3], ids[4], ids[5],
		ids[6], ids[7], ids[8],
	})

	require.NoError(t, n.PermuteColumns(0, 1, bag))
	require.Equal(t, [9]yutsis.IdxID{
		ids[1], ids[0], ids[2],
		ids[4], ids[3], ids[5],
		ids[7], ids[6], ids[8],
	}, n.Indices)
	for _, id := range ids {
		require.Equal(t, 1, bag.At(id).JPhase, bag.At(id).Name)
	}

	require.NoError(t, n.PermuteLines(1, 2, bag))
	require.Equal(t, [9]yutsis.IdxID{
		ids[1], ids[0], ids[2],
		ids[7], ids[6], ids[8],
		ids[4], ids[3], ids[5],
	}, n.Indices)
	for _, id := range ids {
		require.Equal(t, 2, bag.At(id).JPhase, bag.At(id).Name)
	}

	require.ErrorIs(t, n.PermuteColumns(0, 3, bag), goamc.ErrBadSymbol)
	require.ErrorIs(t, n.PermuteLines(-1, 0, bag), goamc.ErrBadSymbol)
}

func TestNineJReflectionsAreFree(t *testing.T) {
	h := yutsis.HalfInt
	bag, ids := newNineJBag(t, [9]yutsis.IdxType{h, h, h, h, h, h, h, h, h})
	n := bag.NewNineJ([9]yutsis.IdxID{
		ids[0], ids[1], ids[2],
		ids[3], ids[4], ids[5],
		ids[6], ids[7], ids[8],
	})

	n.ReflectionFirstDiagonal()
	require.Equal(t, [9]yutsis.IdxID{
		ids[0], ids[3], ids[6],
		ids[1], ids[4], ids[7],
		ids[2], ids[5], ids[8],
	}, n.Indices)

	// Anti-transposing the transpose rotates the original by half a turn.
	n.ReflectionSecondDiagonal()
	require.Equal(t, [9]yutsis.IdxID{
		ids[8], ids[7], ids[6],
		ids[5], ids[4], ids[3],
		ids[2], ids[1], ids[0],
	}, n.Indices)

	for _, id := range ids {
		require.Equal(t, 0, bag.At(id).JPhase, bag.At(id).Name)
	}
}
