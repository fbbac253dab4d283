package yutsis

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
)

// Graph is the Yutsis graph of one term: a trivalent multigraph whose 2n
// nodes are 3jm-symbols and whose 3n directed edges are the shared angular
// momentum indices. Reduction shrinks the graph rule by rule, depositing
// deltas, triangular deltas and recoupling symbols on the way.
type Graph struct {
	// Sign is the overall prefactor accumulated by symbol factorization.
	Sign int

	// Deltas, TriangularDeltas, SixJs, NineJs and TwelveJFirsts are the
	// symbols produced so far.
	Deltas           []Delta
	TriangularDeltas []TriangularDelta
	SixJs            []*SixJ
	NineJs           []*NineJ
	TwelveJFirsts    []*TwelveJFirst

	// AdditionalIndices are the summation indices created by square
	// reductions that have not been absorbed into a higher symbol.
	AdditionalIndices []IdxID

	n       int
	nodes   []*Node
	edges   []*Edge
	zeroIdx IdxID
	bag     *Bag
}

// NewGraph builds the graph of a canonical 3jm-symbol set. Each index must
// appear in exactly two symbols with opposite projection signs; a positive
// sign makes the symbol's node the outgoing end of the index's edge.
func NewGraph(b *Bag, threejms []*ThreeJM, deltas []Delta, zeroIdx IdxID) (*Graph, error) {
	g := &Graph{
		Sign:    1,
		Deltas:  append([]Delta(nil), deltas...),
		n:       len(threejms) / 2,
		zeroIdx: zeroIdx,
		bag:     b,
	}

	if len(threejms)%2 != 0 {
		return nil, errors.Wrapf(goamc.ErrMalformed, "odd number of 3jm-symbols (%d)", len(threejms))
	}

	g.nodes = make([]*Node, 2*g.n)
	for k := range g.nodes {
		g.nodes[k] = NewNode(1)
	}
	g.edges = make([]*Edge, 3*g.n)
	for k := range g.edges {
		g.edges[k] = NewEdge(NoIdx)
	}

	for k, t := range threejms {
		for l, idx := range t.Indices {
			var edge *Edge
			for _, e := range g.edges {
				if e.Idx == idx || e.Idx == NoIdx {
					edge = e
					break
				}
			}
			if edge == nil {
				return nil, errors.Wrapf(goamc.ErrMalformed, "no edge slot for index %s", b.At(idx).Name)
			}
			edge.Idx = idx

			switch t.Signs[l] {
			case 1:
				if edge.Outgoing() != nil {
					return nil, errors.Wrapf(goamc.ErrMalformed, "index %s outgoing twice", b.At(idx).Name)
				}
				edge.SetOutgoing(g.nodes[k])
			case -1:
				if edge.Incoming() != nil {
					return nil, errors.Wrapf(goamc.ErrMalformed, "index %s incoming twice", b.At(idx).Name)
				}
				edge.SetIncoming(g.nodes[k])
			default:
				return nil, errors.Wrapf(goamc.ErrMalformed, "3jm sign %d", t.Signs[l])
			}

			g.nodes[k].Edges[l] = edge
		}
	}

	return g, nil
}

// Bag returns the index arena the graph operates on.
func (g *Graph) Bag() *Bag { return g.bag }

// NumNodes returns the current number of graph nodes.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// ZeroIdx returns the canonical zero index of the term.
func (g *Graph) ZeroIdx() IdxID { return g.zeroIdx }

// Disconnected splits the graph into its connected components. The receiver
// keeps one component; every further component comes back as its own graph
// sharing the receiver's bag and zero index. Symbols accumulated so far stay
// on the receiver.
func (g *Graph) Disconnected() []*Graph {
	graphs := []*Graph{g}
	if g.n == 0 {
		return graphs
	}

	for {
		nodes := []*Node{g.nodes[0]}
		var edges []*Edge
		for k := 0; k < len(nodes); k++ {
			for _, e := range nodes[k].Edges {
				if containsEdge(edges, e) {
					continue
				}
				edges = append(edges, e)
				for _, en := range [2]*Node{e.Outgoing(), e.Incoming()} {
					if !containsNode(nodes, en) {
						nodes = append(nodes, en)
					}
				}
			}
		}

		if len(nodes) >= len(g.nodes) {
			return graphs
		}

		part := &Graph{
			Sign:    1,
			n:       len(nodes) / 2,
			nodes:   nodes,
			edges:   edges,
			zeroIdx: g.zeroIdx,
			bag:     g.bag,
		}
		graphs = append(graphs, part)

		g.n -= part.n
		for _, node := range part.nodes {
			g.removeNode(node)
		}
		for _, e := range part.edges {
			g.removeEdge(e)
		}
	}
}

// Separate cuts every single internal line of the graph: an edge whose
// removal disconnects the graph splits into two deltas, a zero constraint on
// the cut index and a merged pair of external lines. Repeats until no single
// internal line remains.
func (g *Graph) Separate() error {
	for {
		separated := false
		for _, internal := range g.edges {
			nodes := []*Node{internal.Outgoing()}
			var edges []*Edge
			for k := 0; k < len(nodes); k++ {
				for _, e := range nodes[k].Edges {
					if e == internal || containsEdge(edges, e) {
						continue
					}
					edges = append(edges, e)
					for _, en := range [2]*Node{e.Outgoing(), e.Incoming()} {
						if !containsNode(nodes, en) {
							nodes = append(nodes, en)
						}
					}
				}
			}

			// An odd component on one side means the line is the only
			// connection to the rest of the graph.
			if len(nodes)%2 != 0 {
				if err := g.cutSingleInternalLine(internal); err != nil {
					return err
				}
				separated = true
				break
			}
		}
		if !separated {
			return nil
		}
	}
}

func (g *Graph) cutSingleInternalLine(edgeInt *Edge) error {
	nodeInt1 := edgeInt.Outgoing()
	nodeInt2 := edgeInt.Incoming()

	var ext1, ext2 []*Edge
	for _, e := range nodeInt1.Edges {
		if e != edgeInt {
			ext1 = append(ext1, e)
		}
	}
	for _, e := range nodeInt2.Edges {
		if e != edgeInt {
			ext2 = append(ext2, e)
		}
	}
	if len(ext1) != 2 || len(ext2) != 2 {
		return errors.Wrap(goamc.ErrMalformed, "separated node is not trivalent")
	}

	// Orient ext[0] into and ext[1] out of each internal node.
	if ext1[0].Outgoing() == nodeInt1 {
		ext1[0].ChangeDirection(g.bag)
	}
	if ext1[1].Incoming() == nodeInt1 {
		ext1[1].ChangeDirection(g.bag)
	}
	if ext2[0].Outgoing() == nodeInt2 {
		ext2[0].ChangeDirection(g.bag)
	}
	if ext2[1].Incoming() == nodeInt2 {
		ext2[1].ChangeDirection(g.bag)
	}

	if nodeInt1.FirstOfTwo(ext1[0], ext1[1]) == ext1[0] {
		nodeInt1.ChangeSign(FlipDirect, g.bag)
	}
	if nodeInt2.FirstOfTwo(ext2[0], ext2[1]) == ext2[0] {
		nodeInt2.ChangeSign(FlipDirect, g.bag)
	}

	g.bag.At(ext1[0].Idx).JHat--
	g.bag.At(ext2[0].Idx).JHat--

	d1, err := g.bag.NewDelta(ext1[0].Idx, ext1[1].Idx)
	if err != nil {
		return err
	}
	d2, err := g.bag.NewDelta(ext2[0].Idx, ext2[1].Idx)
	if err != nil {
		return err
	}
	d3, err := g.bag.NewDelta(g.zeroIdx, edgeInt.Idx)
	if err != nil {
		return err
	}
	g.Deltas = append(g.Deltas, d1, d2, d3)

	g.n--
	g.removeEdge(edgeInt)
	g.removeNode(nodeInt1)
	g.removeNode(nodeInt2)
	g.mergeEdges(ext1[1], ext1[0])
	g.mergeEdges(ext2[1], ext2[0])
	return nil
}

// Merge folds a fully reduced graph's results into the receiver.
func (g *Graph) Merge(other *Graph) error {
	if g.n != 0 || other.n != 0 {
		return errors.Wrap(goamc.ErrMalformed, "merging graphs that are not fully reduced")
	}
	g.Sign *= other.Sign
	g.Deltas = append(g.Deltas, other.Deltas...)
	g.TriangularDeltas = append(g.TriangularDeltas, other.TriangularDeltas...)
	g.SixJs = append(g.SixJs, other.SixJs...)
	g.NineJs = append(g.NineJs, other.NineJs...)
	g.TwelveJFirsts = append(g.TwelveJFirsts, other.TwelveJFirsts...)
	g.AdditionalIndices = append(g.AdditionalIndices, other.AdditionalIndices...)
	return nil
}

// mergeEdges fuses the two external lines left by a removed subgraph:
// outgoingEdge takes over incomingEdge's outgoing node and incomingEdge
// disappears.
func (g *Graph) mergeEdges(outgoingEdge, incomingEdge *Edge) {
	outgoingEdge.SetOutgoing(incomingEdge.Outgoing())

	incomingEdge.Outgoing().PlaceFirst(incomingEdge)
	incomingEdge.Outgoing().Edges[0] = outgoingEdge

	g.removeEdge(incomingEdge)
}

// onecycleSearch finds an edge with both endpoints on the same node. Such a
// loop survives separation only if the graph is malformed.
func (g *Graph) onecycleSearch() *Edge {
	for _, node := range g.nodes {
		for k, e := range node.Edges {
			for l := k + 1; l < 3; l++ {
				if node.Edges[l] == e {
					return e
				}
			}
		}
	}
	return nil
}

// bubbleSearch finds two nodes sharing two edges.
func (g *Graph) bubbleSearch() (*Edge, *Edge, bool) {
	for ka, nodeA := range g.nodes {
		for _, nodeB := range g.nodes[ka+1:] {
			common := commonEdges(nodeA, nodeB)
			if len(common) == 2 {
				return common[0], common[1], true
			}
		}
	}
	return nil, nil, false
}

// triangleSearch finds a 3-cycle: three nodes pairwise sharing one edge.
func (g *Graph) triangleSearch() (edgeAB, edgeBC, edgeCA *Edge, ok bool) {
	for ka, nodeA := range g.nodes {
		for kb, nodeB := range g.nodes[ka+1:] {
			commonAB := commonEdges(nodeA, nodeB)
			if len(commonAB) != 1 {
				continue
			}
			for _, nodeC := range g.nodes[ka+kb+2:] {
				commonBC := commonEdges(nodeB, nodeC)
				commonCA := commonEdges(nodeC, nodeA)
				if len(commonBC) == 1 && len(commonCA) == 1 {
					return commonAB[0], commonBC[0], commonCA[0], true
				}
			}
		}
	}
	return nil, nil, nil, false
}

// squareSearch finds a 4-cycle A-B-C-D with no chords, returned as the four
// edges (AB, BC, CD, DA) in cycle order.
func (g *Graph) squareSearch() (e1, e2, e3, e4 *Edge, ok bool) {
	for ka, nodeA := range g.nodes {
		for _, nodeB := range g.nodes[ka+1:] {
			commonAB := commonEdges(nodeA, nodeB)
			if len(commonAB) != 1 {
				continue
			}
			for _, nodeC := range g.nodes[ka+1:] {
				if nodeC == nodeB {
					continue
				}
				commonAC := commonEdges(nodeA, nodeC)
				commonBC := commonEdges(nodeB, nodeC)

				if len(commonAC) == 1 && len(commonBC) == 0 {
					// Cycle A-B-?-C with C adjacent to A.
					for _, nodeD := range g.nodes[ka+1:] {
						if nodeD == nodeB || nodeD == nodeC {
							continue
						}
						commonBD := commonEdges(nodeB, nodeD)
						commonCD := commonEdges(nodeC, nodeD)
						if len(commonBD) == 1 && len(commonCD) == 1 {
							return commonAB[0], commonBD[0], commonCD[0], commonAC[0], true
						}
					}
				}
				if len(commonAC) == 0 && len(commonBC) == 1 {
					// Cycle A-B-C-? with ? adjacent to A.
					for _, nodeD := range g.nodes[ka+1:] {
						if nodeD == nodeB || nodeD == nodeC {
							continue
						}
						commonCD := commonEdges(nodeC, nodeD)
						commonDA := commonEdges(nodeD, nodeA)
						if len(commonCD) == 1 && len(commonDA) == 1 {
							return commonAB[0], commonBC[0], commonCD[0], commonDA[0], true
						}
					}
				}
			}
		}
	}
	return nil, nil, nil, nil, false
}

// RemoveRedundantTriangularDeltas drops triangular deltas whose triple is
// already one of the triads of a produced 6j-symbol.
func (g *Graph) RemoveRedundantTriangularDeltas() {
	kept := g.TriangularDeltas[:0]
	for _, td := range g.TriangularDeltas {
		redundant := false
		for _, sixj := range g.SixJs {
			if sixj.ContainsTriangularDelta(td) {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, td)
		}
	}
	g.TriangularDeltas = kept
}

func (g *Graph) removeNode(n *Node) {
	for k, node := range g.nodes {
		if node == n {
			g.nodes = append(g.nodes[:k], g.nodes[k+1:]...)
			return
		}
	}
}

func (g *Graph) removeEdge(e *Edge) {
	for k, edge := range g.edges {
		if edge == e {
			g.edges = append(g.edges[:k], g.edges[k+1:]...)
			return
		}
	}
}

func (g *Graph) String() string {
	var sb strings.Builder
	for _, node := range g.nodes {
		sb.WriteString(node.String(g.bag))
		sb.WriteString("\n")
	}
	return sb.String()
}

func commonEdges(a, b *Node) []*Edge {
	var common []*Edge
	for _, e := range a.Edges {
		for _, f := range b.Edges {
			if e == f {
				common = append(common, e)
				break
			}
		}
	}
	return common
}

func containsEdge(edges []*Edge, e *Edge) bool {
	for _, f := range edges {
		if f == e {
			return true
		}
	}
	return false
}

func containsNode(nodes []*Node, n *Node) bool {
	for _, m := range nodes {
		if m == n {
			return true
		}
	}
	return false
}
