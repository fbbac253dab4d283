package yutsis

import (
	"fmt"
)

// Edge is one internal line of the Yutsis graph, directed from its outgoing
// node to its incoming node. Reversing the direction costs a (-1)^{2j} phase
// on the edge's index.
type Edge struct {
	Idx IdxID

	out *Node
	in  *Node
}

func NewEdge(id IdxID) *Edge {
	return &Edge{Idx: id}
}

func (e *Edge) Outgoing() *Node { return e.out }
func (e *Edge) Incoming() *Node { return e.in }

func (e *Edge) SetOutgoing(n *Node) { e.out = n }
func (e *Edge) SetIncoming(n *Node) { e.in = n }

// Connects reports whether the edge joins the two given nodes in either
// direction.
func (e *Edge) Connects(n1, n2 *Node) bool {
	return (e.out == n1 && e.in == n2) || (e.out == n2 && e.in == n1)
}

// Touches reports whether n is one of the edge's endpoints.
func (e *Edge) Touches(n *Node) bool {
	return e.out == n || e.in == n
}

// Other returns the endpoint opposite to n.
func (e *Edge) Other(n *Node) *Node {
	if e.out == n {
		return e.in
	}
	return e.out
}

// ChangeDirection swaps the edge's orientation, charging the (-1)^{2j} phase.
func (e *Edge) ChangeDirection(b *Bag) {
	e.out, e.in = e.in, e.out
	b.At(e.Idx).JPhase += 2
}

func (e *Edge) String(b *Bag) string {
	return fmt.Sprintf("edge %s", b.At(e.Idx).Name)
}
