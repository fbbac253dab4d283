package yutsis

import (
	"fmt"
)

// FlipKind selects how a node sign flip is paid for. A direct flip charges
// the (-1)^{j1+j2+j3} phase to the node's three edges; an indirect flip is
// free because the caller absorbs the phase elsewhere (typically into a
// symbol it is about to emit).
type FlipKind uint8

const (
	FlipDirect FlipKind = iota
	FlipIndirect
)

// Node is one trivalent vertex of the Yutsis graph. Sign +1 means the node's
// three edges are read anticlockwise, -1 clockwise.
type Node struct {
	Sign  int
	Edges [3]*Edge
}

func NewNode(sign int) *Node {
	return &Node{Sign: sign}
}

// ChangeSign flips the node's orientation.
func (n *Node) ChangeSign(kind FlipKind, b *Bag) {
	n.Sign = -n.Sign
	if kind == FlipDirect {
		for _, e := range n.Edges {
			b.At(e.Idx).JPhase++
		}
	}
}

// EdgeIndex returns the slot of e among the node's edges, or -1.
func (n *Node) EdgeIndex(e *Edge) int {
	for k, ne := range n.Edges {
		if ne == e {
			return k
		}
	}
	return -1
}

// FirstOfTwo returns which of e1, e2 comes first in the node's cyclic edge
// order when the third edge is taken as the origin.
func (n *Node) FirstOfTwo(e1, e2 *Edge) *Edge {
	k1 := n.EdgeIndex(e1)
	k2 := n.EdgeIndex(e2)
	// With the remaining slot as origin, the successor in cyclic order
	// comes first.
	if (k1+1)%3 == k2 {
		return e1
	}
	return e2
}

// PlaceFirst rotates the node's edge slots so that e sits in slot 0. Cyclic
// rotation preserves the symbol's value so no phase is charged.
func (n *Node) PlaceFirst(e *Edge) {
	for n.Edges[0] != e {
		n.Edges[0], n.Edges[1], n.Edges[2] = n.Edges[1], n.Edges[2], n.Edges[0]
	}
}

func (n *Node) String(b *Bag) string {
	return fmt.Sprintf("node(%+d: %s %s %s)", n.Sign,
		b.At(n.Edges[0].Idx).Name, b.At(n.Edges[1].Idx).Name, b.At(n.Edges[2].Idx).Name)
}
