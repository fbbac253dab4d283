package yutsis

import (
	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
)

// CollectNineJs factorizes 9j-symbols out of triples of 6j-symbols that
// share a summation index created by a square reduction.
func (g *Graph) CollectNineJs() error {
	for _, addIdx := range append([]IdxID(nil), g.AdditionalIndices...) {
		if err := g.collectNineJ(addIdx); err != nil {
			return err
		}
	}
	return nil
}

// collectNineJ recognizes the sum
//
//	{ j1 j2 j3 }
//	{ j4 j5 j6 }                          { j1 j4 j7 } { j2 j5 j8 } { j3 j6 j9 }
//	{ j7 j8 j9 } = sum_x (-1)^{2x} (2x+1) { j8 j9  x } { j4  x j6 } {  x j1 j2 }
//
// read right to left: three 6j-symbols sharing the summation index x with a
// bare (2x+1) weight fold into one 9j-symbol.
func (g *Graph) collectNineJ(addIdx IdxID) error {
	var sixjs []*SixJ
	for _, sixj := range g.SixJs {
		if sixj.Contains(addIdx) {
			sixjs = append(sixjs, sixj)
		}
	}
	if len(sixjs) != 3 {
		return nil
	}

	ix := g.bag.At(addIdx)
	if ix.JPhase%2 != 0 {
		return nil
	}
	if ix.JHat != 2 {
		return nil
	}

	// Drive x into position 5 of the first symbol, 4 of the second, 3 of
	// the third (all in the lower row).
	for ksixj, sixj := range sixjs {
		pos := sixj.IndexOf(addIdx)
		col := pos % 3
		line := pos / 3
		if line != 1 {
			if err := sixj.PermuteLinesForColumns(col, (col+1)%3); err != nil {
				return err
			}
		}
		if col != 2-ksixj {
			if err := sixj.PermuteColumns(col, 2-ksixj); err != nil {
				return err
			}
		}
	}

	sixj1, sixj2, sixj3 := sixjs[0], sixjs[1], sixjs[2]

	idx7 := sixj1.Indices[2]
	idx5 := sixj2.Indices[1]
	idx3 := sixj3.Indices[0]

	// The first symbol's upper-left entry must be the one NOT shared with
	// the second symbol.
	if sixj2.Contains(sixj1.Indices[0]) {
		if err := sixj1.PermuteLinesForColumns(0, 1); err != nil {
			return err
		}
	}

	// j8 sits at sixj1[3] and must land at sixj2[4]'s partner slot.
	idx8 := sixj1.Indices[3]
	pos := sixj2.IndexOf(idx8)
	if pos < 0 {
		return errors.Wrap(goamc.ErrBadSymbol, "9j factorization: shared index missing from second 6j-symbol")
	}
	if pos/3 == 1 {
		if err := sixj2.PermuteLinesForColumns(0, 2); err != nil {
			return err
		}
	}
	if sixj2.IndexOf(idx8)%3 == 0 {
		if err := sixj2.PermuteColumns(0, 2); err != nil {
			return err
		}
	}

	idx4 := sixj1.Indices[1]
	if sixj2.IndexOf(idx4) != 3 {
		return errors.Wrap(goamc.ErrBadSymbol, "9j factorization: second 6j-symbol misaligned")
	}

	idx1 := sixj1.Indices[0]
	pos = sixj3.IndexOf(idx1)
	if pos < 0 {
		return errors.Wrap(goamc.ErrBadSymbol, "9j factorization: shared index missing from third 6j-symbol")
	}
	if pos/3 == 0 {
		if err := sixj3.PermuteLinesForColumns(1, 2); err != nil {
			return err
		}
	}
	if sixj3.IndexOf(idx1)%3 == 2 {
		if err := sixj3.PermuteColumns(1, 2); err != nil {
			return err
		}
	}

	idx9 := sixj1.Indices[4]
	if sixj3.IndexOf(idx9) != 2 {
		return errors.Wrap(goamc.ErrBadSymbol, "9j factorization: third 6j-symbol misaligned")
	}
	idx2 := sixj2.Indices[0]
	if sixj3.IndexOf(idx2) != 5 {
		return errors.Wrap(goamc.ErrBadSymbol, "9j factorization: third 6j-symbol misaligned")
	}
	idx6 := sixj2.Indices[5]
	if sixj3.IndexOf(idx6) != 1 {
		return errors.Wrap(goamc.ErrBadSymbol, "9j factorization: third 6j-symbol misaligned")
	}

	// (-1)^{2x} = -1 for half-integer x.
	ix = g.bag.At(addIdx)
	ix.Simplify()
	if ix.Type == HalfInt {
		ix.Sign *= -1
	}
	g.Sign *= ix.Sign
	ix.setDefault()

	g.removeAdditionalIndex(addIdx)
	g.removeSixJ(sixj1)
	g.removeSixJ(sixj2)
	g.removeSixJ(sixj3)

	g.NineJs = append(g.NineJs, g.bag.NewNineJ([9]IdxID{
		idx1, idx2, idx3,
		idx4, idx5, idx6,
		idx7, idx8, idx9,
	}))
	return nil
}

// CollectTwelveJFirsts factorizes 12j-symbols of the first kind out of pairs
// of 6j-symbols and a 9j-symbol sharing a summation index.
func (g *Graph) CollectTwelveJFirsts() error {
	for _, addIdx := range append([]IdxID(nil), g.AdditionalIndices...) {
		if err := g.collectTwelveJFirst(addIdx); err != nil {
			return err
		}
	}
	return nil
}

// collectTwelveJFirst recognizes the sum
//
//	                     { j1  j2   j3   j4   }
//	                     {   j5   j6   j7   j8}
//	(-1)^{j1+j3-j9-j11}  { j9  j10  j11  j12  }
//
//	                { j1  j3  x   }
//	                { j8  j4  j9  } { j3  j1  x  } { j9  j11 x   }
//	 = sum_x (2x+1) { j12 j7  j11 } { j5  j6  j2 } { j6  j5  j10 }
func (g *Graph) collectTwelveJFirst(addIdx IdxID) error {
	var sixjs []*SixJ
	for _, sixj := range g.SixJs {
		if sixj.Contains(addIdx) {
			sixjs = append(sixjs, sixj)
		}
	}
	if len(sixjs) != 2 {
		return nil
	}

	var ninejs []*NineJ
	for _, ninej := range g.NineJs {
		if ninej.Contains(addIdx) {
			ninejs = append(ninejs, ninej)
		}
	}
	if len(ninejs) != 1 {
		return nil
	}
	ninej := ninejs[0]

	if g.bag.At(addIdx).JHat != 2 {
		return nil
	}

	// Drive x into the upper-right corner of both 6j-symbols and position
	// 2 of the 9j-symbol.
	ninej.placeIndex(addIdx, 2, g.bag)
	for _, sixj := range sixjs {
		pos := sixj.IndexOf(addIdx)
		col := pos % 3
		line := pos / 3
		if line != 0 {
			if err := sixj.PermuteLinesForColumns(col, (col+1)%3); err != nil {
				return err
			}
		}
		if col != 2 {
			if err := sixj.PermuteColumns(col, 2); err != nil {
				return err
			}
		}
	}

	sixj1, sixj2 := sixjs[0], sixjs[1]

	idx2 := sixj1.Indices[5]
	idx10 := sixj2.Indices[5]
	if sixj2.Contains(idx2) || ninej.Contains(idx2) {
		return errors.Wrap(goamc.ErrBadSymbol, "12j factorization: unshared index appears twice")
	}
	if sixj1.Contains(idx10) || ninej.Contains(idx10) {
		return errors.Wrap(goamc.ErrBadSymbol, "12j factorization: unshared index appears twice")
	}

	if !ninej.Contains(sixj1.Indices[0]) {
		if err := sixj1.PermuteLinesForColumns(0, 1); err != nil {
			return err
		}
	}
	if sixj1.Indices[0] != ninej.Indices[0] && sixj1.Indices[0] != ninej.Indices[1] {
		ninej.ReflectionSecondDiagonal()
	}
	if sixj1.Indices[0] != ninej.Indices[1] {
		if err := ninej.PermuteColumns(0, 1, g.bag); err != nil {
			return err
		}
	}
	if sixj1.Indices[0] != ninej.Indices[1] || sixj1.Indices[1] != ninej.Indices[0] {
		return errors.Wrap(goamc.ErrBadSymbol, "12j factorization: first 6j-symbol misaligned")
	}
	idx3 := sixj1.Indices[0]
	idx1 := sixj1.Indices[1]
	idx5 := sixj1.Indices[3]
	idx6 := sixj1.Indices[4]

	// The permutations above may have shifted phases onto x, so the phase
	// check comes after them.
	if g.bag.At(addIdx).JPhase%2 != 0 {
		return nil
	}

	if !ninej.Contains(sixj2.Indices[0]) {
		if err := sixj2.PermuteLinesForColumns(0, 1); err != nil {
			return err
		}
	}
	if sixj2.Indices[4] != idx5 {
		if err := sixj2.PermuteColumns(0, 1); err != nil {
			return err
		}
	}
	if sixj2.Indices[0] != ninej.Indices[5] || sixj2.Indices[1] != ninej.Indices[8] {
		return errors.Wrap(goamc.ErrBadSymbol, "12j factorization: second 6j-symbol misaligned")
	}
	idx9 := sixj2.Indices[0]
	idx11 := sixj2.Indices[1]
	if sixj2.Indices[4] != idx5 || sixj2.Indices[3] != idx6 {
		return errors.Wrap(goamc.ErrBadSymbol, "12j factorization: second 6j-symbol misaligned")
	}

	idx8 := ninej.Indices[3]
	idx4 := ninej.Indices[4]
	idx12 := ninej.Indices[6]
	idx7 := ninej.Indices[7]
	for _, own := range [4]IdxID{idx8, idx4, idx12, idx7} {
		if sixj1.Contains(own) || sixj2.Contains(own) {
			return errors.Wrap(goamc.ErrBadSymbol, "12j factorization: 9j-only index appears in a 6j-symbol")
		}
	}

	g.bag.At(idx1).JPhase++
	g.bag.At(idx3).JPhase++
	g.bag.At(idx9).JPhase--
	g.bag.At(idx11).JPhase--

	ix := g.bag.At(addIdx)
	ix.Simplify()
	g.Sign *= ix.Sign
	ix.setDefault()
	g.removeAdditionalIndex(addIdx)

	g.removeNineJ(ninej)
	g.removeSixJ(sixj1)
	g.removeSixJ(sixj2)

	g.TwelveJFirsts = append(g.TwelveJFirsts, NewTwelveJFirst([12]IdxID{
		idx1, idx2, idx3, idx4,
		idx5, idx6, idx7, idx8,
		idx9, idx10, idx11, idx12,
	}))
	return nil
}

func (g *Graph) removeAdditionalIndex(id IdxID) {
	for k, idx := range g.AdditionalIndices {
		if idx == id {
			g.AdditionalIndices = append(g.AdditionalIndices[:k], g.AdditionalIndices[k+1:]...)
			return
		}
	}
}

func (g *Graph) removeSixJ(s *SixJ) {
	for k, sixj := range g.SixJs {
		if sixj == s {
			g.SixJs = append(g.SixJs[:k], g.SixJs[k+1:]...)
			return
		}
	}
}

func (g *Graph) removeNineJ(n *NineJ) {
	for k, ninej := range g.NineJs {
		if ninej == n {
			g.NineJs = append(g.NineJs[:k], g.NineJs[k+1:]...)
			return
		}
	}
}
