package yutsis

import (
	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
)

// HandleZeroLines eliminates zero angular-momentum lines from the symbol
// string before graph construction. Three rewrites apply until a fixed
// point:
//
//  1. a symbol with a duplicated index forces its third index to zero,
//  2. a symbol with one zero line and two distinct indices collapses to a
//     delta between them,
//     ( j1  j2  0 )
//     ( m1 -m2  0 ) = delta(j1 j2) delta(m1 m2) (-1)^{j1-m1} / sqrt(2j1+1)
//  3. a symbol with one zero line and a repeated index reduces to a bare
//     hat factor.
//     ( j1  j1  0 )
//     ( m1 -m1  0 ) = (-1)^{j1-m1} / sqrt(2j1+1)
//
// The returned slice holds the surviving symbols. A zero line left in a
// surviving symbol is a malformed input.
func HandleZeroLines(b *Bag, threejms []*ThreeJM, zeroIdx IdxID, maxIter int) ([]*ThreeJM, []Delta, error) {
	var deltas []Delta

	for iter := 0; ; iter++ {
		if iter >= maxIter {
			return nil, nil, errors.Wrapf(goamc.ErrIterCap, "zero-line elimination after %d passes", iter)
		}

		progress := false

		// 1) A duplicated index forces the remaining one to zero.
		for _, t := range threejms {
			for _, idx := range t.Indices {
				switch t.Count(idx) {
				case 1:
					continue
				case 3:
					return nil, nil, errors.Wrapf(goamc.ErrBadSymbol,
						"index %s appears three times in a 3jm-symbol", b.At(idx).Name)
				}

				var forced IdxID = NoIdx
				for _, other := range t.Indices {
					if other != idx {
						forced = other
					}
				}
				if forced == NoIdx {
					return nil, nil, errors.Wrap(goamc.ErrBadSymbol, "3jm-symbol with a single distinct index")
				}

				if !b.At(forced).Zero {
					b.At(forced).Zero = true
					d, err := b.NewDelta(zeroIdx, forced)
					if err != nil {
						return nil, nil, err
					}
					deltas = append(deltas, d)
					progress = true
				}
				break
			}
		}

		// 2) One zero line, two distinct indices.
		for _, t := range snapshot(threejms) {
			handled, err := zeroLineDelta(b, t, threejms, &deltas)
			if err != nil {
				return nil, nil, err
			}
			if handled {
				threejms = removeThreeJM(threejms, t)
				progress = true
			}
		}

		// 3) One zero line, repeated index.
		for _, t := range snapshot(threejms) {
			handled, err := zeroLineHat(b, t)
			if err != nil {
				return nil, nil, err
			}
			if handled {
				threejms = removeThreeJM(threejms, t)
				progress = true
			}
		}

		if !progress {
			break
		}
	}

	for _, t := range threejms {
		for _, idx := range t.Indices {
			if b.At(idx).Zero {
				return nil, nil, errors.Wrapf(goamc.ErrBadSymbol,
					"zero line %s left in a 3jm-symbol", b.At(idx).Name)
			}
		}
	}

	return threejms, deltas, nil
}

func zeroLineDelta(b *Bag, t *ThreeJM, all []*ThreeJM, deltas *[]Delta) (bool, error) {
	for k, idx := range t.Indices {
		if !b.At(idx).Zero {
			continue
		}

		if err := t.Exchange(k, 2, b); err != nil {
			return false, err
		}

		if b.At(t.Indices[0]).Zero || b.At(t.Indices[1]).Zero {
			return false, errors.Wrap(goamc.ErrBadSymbol, "3jm-symbol with multiple zero lines")
		}
		if t.Indices[0] == t.Indices[1] {
			// Repeated index case, handled by zeroLineHat.
			return false, nil
		}

		idx1 := t.Indices[0]
		idx2 := t.Indices[1]

		// Equal projection signs mean the delta needs m2 -> -m2 first,
		// propagated to the index's other occurrence.
		if t.Signs[0] == t.Signs[1] {
			b.At(idx2).MPhase *= -1
			for _, tp := range all {
				for kp, idxp := range tp.Indices {
					if idxp != idx2 {
						continue
					}
					tp.Signs[kp] *= -1
					ix := b.At(idx2)
					if tp.Signs[kp] == -1 {
						ix.JPhase++
						ix.MPhase--
					} else {
						ix.JPhase++
						ix.MPhase++
					}
				}
			}
		}

		if t.Signs[0] == -1 {
			if err := t.Exchange(0, 1, b); err != nil {
				return false, err
			}
		}

		d, err := b.NewDelta(idx1, idx2)
		if err != nil {
			return false, err
		}
		*deltas = append(*deltas, d)

		surv := d.Indices[0]
		other := d.Indices[1]
		b.At(surv).JHat--

		for _, tp := range all {
			for kp, idxp := range tp.Indices {
				if idxp == other {
					tp.Indices[kp] = surv
				}
			}
		}
		return true, nil
	}
	return false, nil
}

func zeroLineHat(b *Bag, t *ThreeJM) (bool, error) {
	for k, idx := range t.Indices {
		if !b.At(idx).Zero {
			continue
		}

		if err := t.Exchange(k, 2, b); err != nil {
			return false, err
		}

		if t.Indices[0] != t.Indices[1] {
			return false, errors.Wrap(goamc.ErrBadSymbol, "zero line with two distinct indices left")
		}
		idx1 := t.Indices[0]
		if b.At(idx1).Zero {
			return false, errors.Wrap(goamc.ErrBadSymbol, "3jm-symbol with multiple zero lines")
		}
		if t.Signs[0] == t.Signs[1] {
			return false, errors.Wrap(goamc.ErrBadSymbol, "zero line with equal projection signs")
		}
		if t.Signs[0] == -1 {
			if err := t.Exchange(0, 1, b); err != nil {
				return false, err
			}
		}

		b.At(idx1).JHat++
		return true, nil
	}
	return false, nil
}

func snapshot(threejms []*ThreeJM) []*ThreeJM {
	return append([]*ThreeJM(nil), threejms...)
}

func removeThreeJM(threejms []*ThreeJM, t *ThreeJM) []*ThreeJM {
	for k, tp := range threejms {
		if tp == t {
			return append(threejms[:k], threejms[k+1:]...)
		}
	}
	return threejms
}
