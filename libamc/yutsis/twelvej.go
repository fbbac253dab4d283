package yutsis

import (
	"strings"
)

// TwelveJFirst is a 12j-symbol of the first kind,
//
//	{ j1   j2   j3   j4 }
//	{   j5   j6   j7  j8}
//	{ j9  j10  j11  j12 }
//
// stored row-major.
type TwelveJFirst struct {
	Indices [12]IdxID
}

func NewTwelveJFirst(ixs [12]IdxID) *TwelveJFirst {
	return &TwelveJFirst{Indices: ixs}
}

// Contains reports whether id appears in the symbol.
func (t *TwelveJFirst) Contains(id IdxID) bool {
	for _, ix := range t.Indices {
		if ix == id {
			return true
		}
	}
	return false
}

func (t *TwelveJFirst) String(b *Bag) string {
	parts := make([]string, len(t.Indices))
	for k, ix := range t.Indices {
		parts[k] = b.At(ix).Name
	}
	return "12j1{" + strings.Join(parts, " ") + "}"
}
