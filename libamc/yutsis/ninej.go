package yutsis

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
)

// NineJ is a Wigner 9j-symbol
//
//	{ j1 j2 j3 }
//	{ j4 j5 j6 }
//	{ j7 j8 j9 }
//
// stored row-major. Swapping two rows or two columns is an odd permutation
// and charges a (-1)^{sum of all nine j} phase; reflections over either
// diagonal are free.
type NineJ struct {
	Indices [9]IdxID
}

func (b *Bag) NewNineJ(ixs [9]IdxID) *NineJ {
	n := &NineJ{Indices: ixs}
	n.canonicalize(b)
	return n
}

// canonicalize applies only to symbols with exactly three integer indices:
// those get their integers placed on the anti-diagonal,
//
//	{ j1 j3 J3 }
//	{ j2 J2 j6 }
//	{ J1 j4 j5 }
func (n *NineJ) canonicalize(b *Bag) {
	var ints []IdxID
	for _, ix := range n.Indices {
		if b.At(ix).Type == Int {
			ints = append(ints, ix)
		}
	}
	if len(ints) != 3 {
		return
	}

	n.placeIndex(ints[0], 6, b)
	n.placeIndex(ints[1], 4, b)
	n.placeIndex(ints[2], 2, b)
}

// placeIndex moves id to the given position by one column and one line
// permutation.
func (n *NineJ) placeIndex(id IdxID, pos int, b *Bag) {
	cur := n.IndexOf(id)
	if cur < 0 {
		return
	}
	if cur%3 != pos%3 {
		_ = n.PermuteColumns(cur%3, pos%3, b)
		cur = n.IndexOf(id)
	}
	if cur/3 != pos/3 {
		_ = n.PermuteLines(cur/3, pos/3, b)
	}
}

// IndexOf returns the first position of id, or -1.
func (n *NineJ) IndexOf(id IdxID) int {
	for k, ix := range n.Indices {
		if ix == id {
			return k
		}
	}
	return -1
}

// Contains reports whether id appears in the symbol.
func (n *NineJ) Contains(id IdxID) bool {
	return n.IndexOf(id) >= 0
}

func (n *NineJ) addPermutationPhase(b *Bag) {
	for _, ix := range n.Indices {
		b.At(ix).JPhase++
	}
}

// PermuteColumns swaps two columns and charges the odd-permutation phase.
func (n *NineJ) PermuteColumns(col1, col2 int, b *Bag) error {
	if col1 < 0 || col1 > 2 || col2 < 0 || col2 > 2 {
		return errors.Wrap(goamc.ErrBadSymbol, "9j column out of range")
	}
	for row := 0; row < 3; row++ {
		n.Indices[3*row+col1], n.Indices[3*row+col2] = n.Indices[3*row+col2], n.Indices[3*row+col1]
	}
	n.addPermutationPhase(b)
	return nil
}

// PermuteLines swaps two rows and charges the odd-permutation phase.
func (n *NineJ) PermuteLines(line1, line2 int, b *Bag) error {
	if line1 < 0 || line1 > 2 || line2 < 0 || line2 > 2 {
		return errors.Wrap(goamc.ErrBadSymbol, "9j line out of range")
	}
	for col := 0; col < 3; col++ {
		n.Indices[3*line1+col], n.Indices[3*line2+col] = n.Indices[3*line2+col], n.Indices[3*line1+col]
	}
	n.addPermutationPhase(b)
	return nil
}

// ReflectionFirstDiagonal transposes the symbol over its main diagonal.
func (n *NineJ) ReflectionFirstDiagonal() {
	n.Indices[1], n.Indices[3] = n.Indices[3], n.Indices[1]
	n.Indices[2], n.Indices[6] = n.Indices[6], n.Indices[2]
	n.Indices[5], n.Indices[7] = n.Indices[7], n.Indices[5]
}

// ReflectionSecondDiagonal transposes the symbol over its anti-diagonal.
func (n *NineJ) ReflectionSecondDiagonal() {
	n.Indices[0], n.Indices[8] = n.Indices[8], n.Indices[0]
	n.Indices[1], n.Indices[5] = n.Indices[5], n.Indices[1]
	n.Indices[3], n.Indices[7] = n.Indices[7], n.Indices[3]
}

func (n *NineJ) String(b *Bag) string {
	return fmt.Sprintf("9j{%s %s %s; %s %s %s; %s %s %s}",
		b.At(n.Indices[0]).Name, b.At(n.Indices[1]).Name, b.At(n.Indices[2]).Name,
		b.At(n.Indices[3]).Name, b.At(n.Indices[4]).Name, b.At(n.Indices[5]).Name,
		b.At(n.Indices[6]).Name, b.At(n.Indices[7]).Name, b.At(n.Indices[8]).Name)
}
