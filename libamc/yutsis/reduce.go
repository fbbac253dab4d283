package yutsis

import (
	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
)

// Reduce turns a string of Clebsch-Gordan coefficients into recoupling
// symbols: the coefficients become 3jm-symbols, zero lines are eliminated,
// the string is canonicalized and the resulting Yutsis graph reduced to
// nothing. The returned graph holds only the produced symbols.
func Reduce(b *Bag, clebsches []ClebschGordan, zeroIdx IdxID, maxIter int) (*Graph, error) {
	threejms := make([]*ThreeJM, 0, len(clebsches))
	for _, cg := range clebsches {
		threejms = append(threejms, cg.ThreeJM(b))
	}

	threejms, deltas, err := HandleZeroLines(b, threejms, zeroIdx, maxIter)
	if err != nil {
		return nil, err
	}

	if err := Canonicalize(b, threejms); err != nil {
		return nil, err
	}

	return ReduceThreeJMs(b, threejms, deltas, zeroIdx, maxIter)
}

// ReduceThreeJMs reduces a canonical 3jm-symbol string. The graph is first
// cut along single internal lines and split into connected components; each
// component then shrinks by bubble, triangle and square reductions until two
// nodes remain and dissolve into a triangular delta. A component that offers
// none of the three cycles fails with ErrNotReducible; the partially reduced
// graph comes back with the error for inspection.
func ReduceThreeJMs(b *Bag, threejms []*ThreeJM, deltas []Delta, zeroIdx IdxID, maxIter int) (*Graph, error) {
	main, err := NewGraph(b, threejms, deltas, zeroIdx)
	if err != nil {
		return nil, err
	}

	if err := main.Separate(); err != nil {
		return nil, err
	}

	graphs := main.Disconnected()

	for _, g := range graphs {
		iter := 0
		for g.NumNodes() > 2 {
			if iter >= maxIter {
				return g, errors.Wrapf(goamc.ErrIterCap, "graph reduction after %d passes", iter)
			}
			iter++

			if e := g.onecycleSearch(); e != nil {
				return g, errors.Wrapf(goamc.ErrMalformed,
					"one-cycle on index %s after separation", b.At(e.Idx).Name)
			}
			if eA, eB, ok := g.bubbleSearch(); ok {
				if err := g.bubbleReduction(eA, eB); err != nil {
					return g, err
				}
				continue
			}
			if eA, eB, eC, ok := g.triangleSearch(); ok {
				if err := g.triangleReduction(eA, eB, eC); err != nil {
					return g, err
				}
				continue
			}
			if eA, eB, eC, eD, ok := g.squareSearch(); ok {
				if err := g.squareReduction(eA, eB, eC, eD); err != nil {
					return g, err
				}
				continue
			}

			// Smallest cycle is a pentagon or larger.
			return g, errors.Wrapf(goamc.ErrNotReducible, "%d nodes left", g.NumNodes())
		}

		if g.NumNodes() == 2 {
			if err := g.finalTriangularDelta(); err != nil {
				return g, err
			}
		}
		if g.NumNodes() != 0 {
			return g, errors.Wrapf(goamc.ErrNotReducible, "%d nodes left", g.NumNodes())
		}

		g.RemoveRedundantTriangularDeltas()
	}

	for _, g := range graphs[1:] {
		if err := main.Merge(g); err != nil {
			return main, err
		}
	}

	return main, nil
}
