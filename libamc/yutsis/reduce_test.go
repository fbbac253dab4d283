package yutsis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amc-systems/goamc/goamc"
	"github.com/amc-systems/goamc/libamc/yutsis"
)

// Two nodes joined by three lines dissolve directly into a triangular delta.
func TestReduceThetaGraph(t *testing.T) {
	bag := yutsis.NewBag()
	zero := bag.NewIdx(yutsis.Int, "0", yutsis.IdxOpts{Zero: true})
	a := bag.NewIdx(yutsis.HalfInt, "a", yutsis.IdxOpts{Particle: true})
	c := bag.NewIdx(yutsis.HalfInt, "c", yutsis.IdxOpts{Particle: true})
	J := bag.NewIdx(yutsis.Int, "J", yutsis.IdxOpts{})

	threejms := []*yutsis.ThreeJM{
		{Indices: [3]yutsis.IdxID{a, c, J}, Signs: [3]int{1, 1, 1}},
		{Indices: [3]yutsis.IdxID{a, c, J}, Signs: [3]int{-1, -1, -1}},
	}

	g, err := yutsis.ReduceThreeJMs(bag, threejms, nil, zero, goamc.DefaultMaxIter)
	require.NoError(t, err)
	require.Equal(t, 0, g.NumNodes())
	require.Empty(t, g.SixJs)
	require.Len(t, g.TriangularDeltas, 1)

	td := g.TriangularDeltas[0]
	require.True(t, td.Contains(a))
	require.True(t, td.Contains(c))
	require.True(t, td.Contains(J))
}

// A four-node ladder: two nodes joined by a double line (the bubble), hanging
// between two more nodes that end up as a theta graph.
func TestReduceBubble(t *testing.T) {
	bag := yutsis.NewBag()
	zero := bag.NewIdx(yutsis.Int, "0", yutsis.IdxOpts{Zero: true})
	mk := func(name string) yutsis.IdxID {
		return bag.NewIdx(yutsis.HalfInt, name, yutsis.IdxOpts{Particle: true})
	}
	a, c := mk("a"), mk("c")
	d, e := mk("d"), mk("e")
	p, q := mk("p"), mk("q")

	// n1 --a,c-- n2, n3 --d,e-- n4, n1 --p-- n3, n2 --q-- n4.
	threejms := []*yutsis.ThreeJM{
		{Indices: [3]yutsis.IdxID{a, c, p}, Signs: [3]int{1, -1, -1}},
		{Indices: [3]yutsis.IdxID{a, c, q}, Signs: [3]int{-1, 1, 1}},
		{Indices: [3]yutsis.IdxID{d, e, p}, Signs: [3]int{1, -1, 1}},
		{Indices: [3]yutsis.IdxID{d, e, q}, Signs: [3]int{-1, 1, -1}},
	}

	g, err := yutsis.ReduceThreeJMs(bag, threejms, nil, zero, goamc.DefaultMaxIter)
	require.NoError(t, err)
	require.Equal(t, 0, g.NumNodes())

	// The bubble contracts p and q into one line via a delta; the bubble and
	// the final theta each leave a triangular delta.
	require.Len(t, g.Deltas, 1)
	require.True(t, g.Deltas[0].Contains(p) || g.Deltas[0].Contains(q))
	require.Len(t, g.TriangularDeltas, 2)
}

// The Petersen graph has girth five: no bubble, triangle or square exists and
// the reduction must give up with the graph intact.
func TestReducePetersenNotReducible(t *testing.T) {
	bag := yutsis.NewBag()
	zero := bag.NewIdx(yutsis.Int, "0", yutsis.IdxOpts{Zero: true})

	var outer, spoke, inner [5]yutsis.IdxID
	for v := 0; v < 5; v++ {
		outer[v] = bag.NewIdx(yutsis.HalfInt, "", yutsis.IdxOpts{Particle: true})
		spoke[v] = bag.NewIdx(yutsis.Int, "", yutsis.IdxOpts{})
		inner[v] = bag.NewIdx(yutsis.HalfInt, "", yutsis.IdxOpts{Particle: true})
	}

	var threejms []*yutsis.ThreeJM
	for v := 0; v < 5; v++ {
		// Outer vertex v: ring edges v-1 -> v -> v+1 plus its spoke.
		threejms = append(threejms, &yutsis.ThreeJM{
			Indices: [3]yutsis.IdxID{outer[(v+4)%5], outer[v], spoke[v]},
			Signs:   [3]int{-1, 1, 1},
		})
		// Inner vertex v: the spoke plus pentagram chords v -> v+2.
		threejms = append(threejms, &yutsis.ThreeJM{
			Indices: [3]yutsis.IdxID{spoke[v], inner[v], inner[(v+3)%5]},
			Signs:   [3]int{-1, 1, -1},
		})
	}

	g, err := yutsis.ReduceThreeJMs(bag, threejms, nil, zero, goamc.DefaultMaxIter)
	require.ErrorIs(t, err, goamc.ErrNotReducible)
	require.NotNil(t, g)
	require.Equal(t, 10, g.NumNodes())
}
