package yutsis

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
)

// Delta is an equality constraint between two indices of the same type. The
// pair is kept sorted so that Indices[0] is the preferred survivor: zero
// indices first, then external indices, then by name.
type Delta struct {
	Indices [2]IdxID
}

func (b *Bag) NewDelta(i1, i2 IdxID) (Delta, error) {
	a := b.At(i1)
	c := b.At(i2)
	if a.Type != c.Type {
		return Delta{}, errors.Wrapf(goamc.ErrIdxTypeMismatch, "delta between %s (%s) and %s (%s)",
			a.Name, a.Type, c.Name, c.Type)
	}

	d := Delta{Indices: [2]IdxID{i1, i2}}
	d.sortIndices(b)
	return d, nil
}

func (d *Delta) sortIndices(b *Bag) {
	if deltaKeyLess(b.At(d.Indices[1]), b.At(d.Indices[0])) {
		d.Indices[0], d.Indices[1] = d.Indices[1], d.Indices[0]
	}
}

func deltaKeyLess(a, c *Idx) bool {
	if a.Zero != c.Zero {
		return a.Zero
	}
	if a.External != c.External {
		return a.External
	}
	return a.Name < c.Name
}

// Apply folds the second index's accumulated factors onto the first and
// resets the second to defaults.
func (d Delta) Apply(b *Bag) {
	first := b.At(d.Indices[0])
	second := b.At(d.Indices[1])

	first.JPhase += second.JPhase
	first.MPhase += second.MPhase
	first.Sign *= second.Sign
	first.JHat += second.JHat
	second.setDefault()
}

func (d Delta) Contains(id IdxID) bool {
	return d.Indices[0] == id || d.Indices[1] == id
}

func (d Delta) String(b *Bag) string {
	return fmt.Sprintf("delta(%s %s)", b.At(d.Indices[0]).Name, b.At(d.Indices[1]).Name)
}
