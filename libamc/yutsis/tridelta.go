package yutsis

import (
	"fmt"
)

// TriangularDelta marks the triangular inequality between three angular
// momenta: |j1 - j2| <= j3 <= j1 + j2.
type TriangularDelta struct {
	Indices [3]IdxID
}

func NewTriangularDelta(i1, i2, i3 IdxID) TriangularDelta {
	return TriangularDelta{Indices: [3]IdxID{i1, i2, i3}}
}

func (t TriangularDelta) Contains(id IdxID) bool {
	for _, ix := range t.Indices {
		if ix == id {
			return true
		}
	}
	return false
}

func (t TriangularDelta) String(b *Bag) string {
	return fmt.Sprintf("tri(%s %s %s)",
		b.At(t.Indices[0]).Name, b.At(t.Indices[1]).Name, b.At(t.Indices[2]).Name)
}
