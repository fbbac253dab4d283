package yutsis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amc-systems/goamc/goamc"
)

func edgeIdxSet(g *Graph) map[IdxID]bool {
	set := make(map[IdxID]bool, len(g.edges))
	for _, e := range g.edges {
		set[e.Idx] = true
	}
	return set
}

func ladderGraph(t *testing.T) (*Graph, *Bag, map[string]IdxID) {
	t.Helper()
	bag := NewBag()
	zero := bag.NewIdx(Int, "0", IdxOpts{Zero: true})
	ids := map[string]IdxID{}
	for _, name := range []string{"a", "c", "d", "e", "p", "q"} {
		ids[name] = bag.NewIdx(HalfInt, name, IdxOpts{Particle: true})
	}

	// n1 --a,c-- n2, n3 --d,e-- n4, n1 --p-- n3, n2 --q-- n4.
	threejms := []*ThreeJM{
		{Indices: [3]IdxID{ids["a"], ids["c"], ids["p"]}, Signs: [3]int{1, -1, -1}},
		{Indices: [3]IdxID{ids["a"], ids["c"], ids["q"]}, Signs: [3]int{-1, 1, 1}},
		{Indices: [3]IdxID{ids["d"], ids["e"], ids["p"]}, Signs: [3]int{1, -1, 1}},
		{Indices: [3]IdxID{ids["d"], ids["e"], ids["q"]}, Signs: [3]int{-1, 1, -1}},
	}
	g, err := NewGraph(bag, threejms, nil, zero)
	require.NoError(t, err)
	return g, bag, ids
}

// One bubble application removes exactly two nodes and touches nothing
// outside the bubble and its two external lines.
func TestBubbleReductionStep(t *testing.T) {
	g, bag, ids := ladderGraph(t)

	eA, eB, ok := g.bubbleSearch()
	require.True(t, ok)
	require.ElementsMatch(t, []IdxID{ids["a"], ids["c"]}, []IdxID{eA.Idx, eB.Idx})

	before := len(g.nodes)
	require.NoError(t, g.bubbleReduction(eA, eB))

	require.Equal(t, before-2, len(g.nodes))
	require.Equal(t, len(g.nodes), 2*g.n)

	set := edgeIdxSet(g)
	require.True(t, set[ids["d"]])
	require.True(t, set[ids["e"]])
	require.Len(t, g.edges, 3)

	// The bubble's externals fuse into one line carrying the delta survivor
	// and the 1/(2j+1) normalization.
	require.Len(t, g.Deltas, 1)
	require.True(t, set[g.Deltas[0].Indices[0]])
	require.Equal(t, -2, bag.At(ids["p"]).JHat)
}

func completeFourGraph(t *testing.T) (*Graph, [6]IdxID) {
	t.Helper()
	bag := NewBag()
	zero := bag.NewIdx(Int, "0", IdxOpts{Zero: true})
	var ids [6]IdxID
	for k, name := range []string{"E01", "E02", "E03", "E12", "E13", "E23"} {
		ids[k] = bag.NewIdx(Int, name, IdxOpts{})
	}
	e01, e02, e03, e12, e13, e23 := ids[0], ids[1], ids[2], ids[3], ids[4], ids[5]

	threejms := []*ThreeJM{
		{Indices: [3]IdxID{e01, e02, e03}, Signs: [3]int{1, 1, 1}},
		{Indices: [3]IdxID{e01, e12, e13}, Signs: [3]int{-1, 1, 1}},
		{Indices: [3]IdxID{e02, e12, e23}, Signs: [3]int{-1, -1, 1}},
		{Indices: [3]IdxID{e03, e13, e23}, Signs: [3]int{-1, -1, -1}},
	}
	g, err := NewGraph(bag, threejms, nil, zero)
	require.NoError(t, err)
	return g, ids
}

// One triangle application on the tetrahedron: two nodes gone, one 6j-symbol
// out, the three off-cycle lines intact.
func TestTriangleReductionStep(t *testing.T) {
	g, ids := completeFourGraph(t)

	eAB, eBC, eCA, ok := g.triangleSearch()
	require.True(t, ok)

	cycle := map[IdxID]bool{eAB.Idx: true, eBC.Idx: true, eCA.Idx: true}
	var external []IdxID
	for _, id := range ids {
		if !cycle[id] {
			external = append(external, id)
		}
	}
	require.Len(t, external, 3)

	before := len(g.nodes)
	require.NoError(t, g.triangleReduction(eAB, eBC, eCA))

	require.Equal(t, before-2, len(g.nodes))
	require.Equal(t, len(g.nodes), 2*g.n)
	require.Len(t, g.SixJs, 1)

	set := edgeIdxSet(g)
	for _, id := range external {
		require.True(t, set[id])
	}
	require.Len(t, g.edges, 3)
}

func completeBipartiteGraph(t *testing.T) (*Graph, *Bag, [3][3]IdxID) {
	t.Helper()
	bag := NewBag()
	zero := bag.NewIdx(Int, "0", IdxOpts{Zero: true})

	var e [3][3]IdxID
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			e[i][j] = bag.NewIdx(Int, "", IdxOpts{})
		}
	}

	var threejms []*ThreeJM
	for i := 0; i < 3; i++ {
		threejms = append(threejms, &ThreeJM{
			Indices: [3]IdxID{e[i][0], e[i][1], e[i][2]},
			Signs:   [3]int{1, 1, 1},
		})
	}
	for j := 0; j < 3; j++ {
		threejms = append(threejms, &ThreeJM{
			Indices: [3]IdxID{e[0][j], e[1][j], e[2][j]},
			Signs:   [3]int{-1, -1, -1},
		})
	}
	g, err := NewGraph(bag, threejms, nil, zero)
	require.NoError(t, err)
	return g, bag, e
}

// One square application on K3,3 (girth four): two nodes gone, two 6j-symbols
// sharing a fresh summation index, all off-cycle lines intact.
func TestSquareReductionStep(t *testing.T) {
	g, bag, e := completeBipartiteGraph(t)

	e1, e2, e3, e4, ok := g.squareSearch()
	require.True(t, ok)

	cycle := map[IdxID]bool{e1.Idx: true, e2.Idx: true, e3.Idx: true, e4.Idx: true}
	var external []IdxID
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !cycle[e[i][j]] {
				external = append(external, e[i][j])
			}
		}
	}
	require.Len(t, external, 5)

	before := len(g.nodes)
	require.NoError(t, g.squareReduction(e1, e2, e3, e4))

	require.Equal(t, before-2, len(g.nodes))
	require.Equal(t, len(g.nodes), 2*g.n)
	require.Len(t, g.SixJs, 2)

	require.Len(t, g.AdditionalIndices, 1)
	addIdx := g.AdditionalIndices[0]
	require.Equal(t, 2, bag.At(addIdx).JHat)
	require.True(t, g.SixJs[0].Contains(addIdx))
	require.True(t, g.SixJs[1].Contains(addIdx))

	set := edgeIdxSet(g)
	require.True(t, set[addIdx])
	for _, id := range external {
		require.True(t, set[id])
	}
	require.Len(t, g.edges, 6)
}

// A component that cannot close into a triangular delta is a structural
// failure, not a corrupt graph.
func TestFinalTriangularDeltaOnOpenComponent(t *testing.T) {
	g, _, _ := ladderGraph(t)
	require.ErrorIs(t, g.finalTriangularDelta(), goamc.ErrNotReducible)

	bag := NewBag()
	zero := bag.NewIdx(Int, "0", IdxOpts{Zero: true})
	a := bag.NewIdx(HalfInt, "a", IdxOpts{Particle: true})
	c := bag.NewIdx(HalfInt, "c", IdxOpts{Particle: true})
	J := bag.NewIdx(Int, "J", IdxOpts{})
	theta, err := NewGraph(bag, []*ThreeJM{
		{Indices: [3]IdxID{a, c, J}, Signs: [3]int{1, 1, 1}},
		{Indices: [3]IdxID{a, c, J}, Signs: [3]int{-1, -1, -1}},
	}, nil, zero)
	require.NoError(t, err)

	theta.edges = theta.edges[:2]
	require.ErrorIs(t, theta.finalTriangularDelta(), goamc.ErrNotReducible)
}
