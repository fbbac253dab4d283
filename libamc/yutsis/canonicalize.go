package yutsis

import (
	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
)

// Canonicalize brings the 3jm-symbol string into the form the graph builder
// expects: every index appears in exactly two symbols with opposite
// projection signs. Symbols are visited by connectivity; a symbol whose
// shared projection clashes with an already placed one gets its signs
// flipped, and a clash among placed symbols means the input string is
// inconsistent.
func Canonicalize(b *Bag, threejms []*ThreeJM) error {
	occurrences := make(map[IdxID]int)
	for _, t := range threejms {
		for _, idx := range t.Indices {
			occurrences[idx]++
		}
	}
	for idx, n := range occurrences {
		if n > 2 {
			return errors.Wrapf(goamc.ErrBadSymbol, "index %s appears %d times", b.At(idx).Name, n)
		}
		if n < 2 {
			return errors.Wrapf(goamc.ErrBadSymbol, "index %s appears only once", b.At(idx).Name)
		}
	}
	if len(threejms) == 0 {
		return nil
	}

	placed := []*ThreeJM{threejms[0]}
	inPlaced := map[*ThreeJM]bool{threejms[0]: true}

	for k := 0; k < len(placed); k++ {
		t := placed[k]
		for _, tp := range threejms {
			if tp == t {
				continue
			}
			for i, idx := range t.Indices {
				for j, idxp := range tp.Indices {
					if idx != idxp {
						continue
					}
					if t.Signs[i] == tp.Signs[j] {
						if inPlaced[tp] {
							return errors.Wrapf(goamc.ErrBadSymbol,
								"inconsistent projection signs on index %s", b.At(idx).Name)
						}
						tp.FlipSigns(b)
					}
					if !inPlaced[tp] {
						placed = append(placed, tp)
						inPlaced[tp] = true
					}
				}
			}
		}

		// Disconnected string: restart from any unplaced symbol.
		if k == len(placed)-1 && len(placed) != len(threejms) {
			for _, tp := range threejms {
				if !inPlaced[tp] {
					placed = append(placed, tp)
					inPlaced[tp] = true
					break
				}
			}
		}
	}

	return nil
}
