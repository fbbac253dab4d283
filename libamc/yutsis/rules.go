package yutsis

import (
	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
)

// orientFrom makes node the outgoing end of e, flipping the edge if needed.
func orientFrom(e *Edge, node *Node, b *Bag) error {
	if e.Outgoing() == node {
		return nil
	}
	if e.Incoming() != node {
		return errors.Wrap(goamc.ErrMalformed, "edge does not touch its node")
	}
	e.ChangeDirection(b)
	return nil
}

// orientInto makes node the incoming end of e.
func orientInto(e *Edge, node *Node, b *Bag) error {
	if e.Incoming() == node {
		return nil
	}
	if e.Outgoing() != node {
		return errors.Wrap(goamc.ErrMalformed, "edge does not touch its node")
	}
	e.ChangeDirection(b)
	return nil
}

// sharedNode returns the node common to both edges.
func sharedNode(e1, e2 *Edge) (*Node, error) {
	for _, n1 := range [2]*Node{e1.Outgoing(), e1.Incoming()} {
		for _, n2 := range [2]*Node{e2.Outgoing(), e2.Incoming()} {
			if n1 == n2 {
				return n1, nil
			}
		}
	}
	return nil, errors.Wrap(goamc.ErrMalformed, "edges share no node")
}

// externalEdge returns the one edge of node not among the given cycle edges.
func externalEdge(node *Node, cycle []*Edge) (*Edge, error) {
	for _, e := range node.Edges {
		if !containsEdge(cycle, e) {
			return e, nil
		}
	}
	return nil, errors.Wrap(goamc.ErrMalformed, "node has no external edge")
}

// bubbleReduction removes two nodes sharing the two edges edgeA, edgeB,
// producing a delta between the two external lines and a triangular delta
// among the surviving index and the bubble's internal pair:
//
//	          __A__
//	 ext1 ==o<     >o== ext2   =>   delta(ext1 ext2) tri(ext1 A B) / (2 ext1 + 1)
//	          ‾‾B‾‾
func (g *Graph) bubbleReduction(edgeA, edgeB *Edge) error {
	node1 := edgeA.Outgoing()
	node2 := edgeA.Incoming()

	bubble := []*Edge{edgeA, edgeB}
	edgeExt1, err := externalEdge(node1, bubble)
	if err != nil {
		return err
	}
	edgeExt2, err := externalEdge(node2, bubble)
	if err != nil {
		return err
	}

	if err := orientFrom(edgeB, node1, g.bag); err != nil {
		return err
	}
	if err := orientFrom(edgeExt1, node1, g.bag); err != nil {
		return err
	}
	if err := orientInto(edgeExt2, node2, g.bag); err != nil {
		return err
	}

	if node1.FirstOfTwo(edgeA, edgeB) == node2.FirstOfTwo(edgeA, edgeB) {
		node2.ChangeSign(FlipIndirect, g.bag)
	}
	if node1.Sign == node2.Sign {
		node2.ChangeSign(FlipDirect, g.bag)
	}

	g.bag.At(edgeExt1.Idx).JHat -= 2

	idxA := edgeA.Idx
	idxB := edgeB.Idx

	g.n--
	g.removeNode(node1)
	g.removeNode(node2)
	g.removeEdge(edgeA)
	g.removeEdge(edgeB)

	d, err := g.bag.NewDelta(edgeExt1.Idx, edgeExt2.Idx)
	if err != nil {
		return err
	}
	g.Deltas = append(g.Deltas, d)

	// Continue with the delta's surviving index.
	edgeExt1.Idx = d.Indices[0]

	g.TriangularDeltas = append(g.TriangularDeltas, NewTriangularDelta(edgeExt1.Idx, idxA, idxB))

	if edgeExt1.Incoming() == edgeExt2.Outgoing() {
		// The externals close a loop around the rest of the graph.
		g.removeEdge(edgeExt1)
		g.removeEdge(edgeExt2)
	} else {
		g.mergeEdges(edgeExt1, edgeExt2)
	}
	return nil
}

// triangleReduction removes a 3-cycle, producing one 6j-symbol
//
//	{ extBC extCA extAB }
//	{   A     B     C   }
//
// and leaving a single node joining the three external lines.
func (g *Graph) triangleReduction(edgeA, edgeB, edgeC *Edge) error {
	nodeAB, err := sharedNode(edgeA, edgeB)
	if err != nil {
		return err
	}
	nodeBC, err := sharedNode(edgeB, edgeC)
	if err != nil {
		return err
	}
	nodeCA, err := sharedNode(edgeC, edgeA)
	if err != nil {
		return err
	}

	cycle := []*Edge{edgeA, edgeB, edgeC}
	edgeExtAB, err := externalEdge(nodeAB, cycle)
	if err != nil {
		return err
	}
	edgeExtBC, err := externalEdge(nodeBC, cycle)
	if err != nil {
		return err
	}
	edgeExtCA, err := externalEdge(nodeCA, cycle)
	if err != nil {
		return err
	}

	for _, or := range []struct {
		e *Edge
		n *Node
	}{
		{edgeA, nodeAB}, {edgeB, nodeBC}, {edgeC, nodeCA},
		{edgeExtAB, nodeAB}, {edgeExtBC, nodeBC}, {edgeExtCA, nodeCA},
	} {
		if err := orientFrom(or.e, or.n, g.bag); err != nil {
			return err
		}
	}

	if nodeAB.FirstOfTwo(edgeA, edgeB) != edgeA {
		nodeAB.ChangeSign(FlipIndirect, g.bag)
	}
	if nodeBC.FirstOfTwo(edgeB, edgeC) != edgeB {
		nodeBC.ChangeSign(FlipIndirect, g.bag)
	}
	if nodeCA.FirstOfTwo(edgeC, edgeA) != edgeC {
		nodeCA.ChangeSign(FlipIndirect, g.bag)
	}
	for _, node := range [3]*Node{nodeAB, nodeBC, nodeCA} {
		if node.Sign != -1 {
			node.ChangeSign(FlipDirect, g.bag)
		}
	}

	sixj, err := g.bag.NewSixJ(edgeExtBC.Idx, edgeExtCA.Idx, edgeExtAB.Idx, edgeA.Idx, edgeB.Idx, edgeC.Idx)
	if err != nil {
		return err
	}
	g.SixJs = append(g.SixJs, sixj)

	// Collapse the triangle onto nodeAB.
	g.n--
	nodeAB.Sign = 1
	nodeAB.PlaceFirst(edgeExtAB)
	nodeAB.Edges[1] = edgeExtCA
	nodeAB.Edges[2] = edgeExtBC
	edgeExtBC.SetOutgoing(nodeAB)
	edgeExtCA.SetOutgoing(nodeAB)
	g.removeNode(nodeBC)
	g.removeNode(nodeCA)
	g.removeEdge(edgeA)
	g.removeEdge(edgeB)
	g.removeEdge(edgeC)
	return nil
}

// squareReduction removes a chordless 4-cycle by introducing a new summation
// index x, producing two 6j-symbols
//
//	{ extAB extDA x }   { extBC extCD x }
//	{   D     B   A }   {   D     B   C }
//
// and leaving a bubble-like pair of nodes joined by the new edge.
func (g *Graph) squareReduction(edgeA, edgeB, edgeC, edgeD *Edge) error {
	nodeAB, err := sharedNode(edgeA, edgeB)
	if err != nil {
		return err
	}
	nodeBC, err := sharedNode(edgeB, edgeC)
	if err != nil {
		return err
	}
	nodeCD, err := sharedNode(edgeC, edgeD)
	if err != nil {
		return err
	}
	nodeDA, err := sharedNode(edgeD, edgeA)
	if err != nil {
		return err
	}

	cycle := []*Edge{edgeA, edgeB, edgeC, edgeD}
	edgeExtAB, err := externalEdge(nodeAB, cycle)
	if err != nil {
		return err
	}
	edgeExtBC, err := externalEdge(nodeBC, cycle)
	if err != nil {
		return err
	}
	edgeExtCD, err := externalEdge(nodeCD, cycle)
	if err != nil {
		return err
	}
	edgeExtDA, err := externalEdge(nodeDA, cycle)
	if err != nil {
		return err
	}

	for _, or := range []struct {
		e *Edge
		n *Node
	}{
		{edgeA, nodeAB}, {edgeB, nodeBC}, {edgeC, nodeCD}, {edgeD, nodeDA},
		{edgeExtAB, nodeAB}, {edgeExtBC, nodeBC}, {edgeExtCD, nodeCD}, {edgeExtDA, nodeDA},
	} {
		if err := orientFrom(or.e, or.n, g.bag); err != nil {
			return err
		}
	}

	if nodeAB.FirstOfTwo(edgeA, edgeB) != edgeA {
		nodeAB.ChangeSign(FlipIndirect, g.bag)
	}
	if nodeBC.FirstOfTwo(edgeB, edgeC) != edgeB {
		nodeBC.ChangeSign(FlipIndirect, g.bag)
	}
	if nodeCD.FirstOfTwo(edgeC, edgeD) != edgeC {
		nodeCD.ChangeSign(FlipIndirect, g.bag)
	}
	if nodeDA.FirstOfTwo(edgeD, edgeA) != edgeD {
		nodeDA.ChangeSign(FlipIndirect, g.bag)
	}
	for _, node := range [4]*Node{nodeAB, nodeBC, nodeCD, nodeDA} {
		if node.Sign != -1 {
			node.ChangeSign(FlipDirect, g.bag)
		}
	}

	// Coupling edgeB and edgeD momenta decides the new index's type.
	addIdx := g.bag.NewIdx(CoupledType(g.bag.At(edgeB.Idx).Type, g.bag.At(edgeD.Idx).Type), "", IdxOpts{})
	g.AdditionalIndices = append(g.AdditionalIndices, addIdx)

	addEdge := NewEdge(addIdx)
	g.edges = append(g.edges, addEdge)

	g.bag.At(addIdx).JPhase++
	g.bag.At(edgeB.Idx).JPhase++
	g.bag.At(edgeD.Idx).JPhase--
	g.bag.At(addIdx).JHat += 2

	sixj1, err := g.bag.NewSixJ(edgeExtAB.Idx, edgeExtDA.Idx, addIdx, edgeD.Idx, edgeB.Idx, edgeA.Idx)
	if err != nil {
		return err
	}
	sixj2, err := g.bag.NewSixJ(edgeExtBC.Idx, edgeExtCD.Idx, addIdx, edgeD.Idx, edgeB.Idx, edgeC.Idx)
	if err != nil {
		return err
	}
	g.SixJs = append(g.SixJs, sixj1, sixj2)

	// Collapse the square onto nodeAB and nodeBC, joined by the new edge.
	g.n--
	nodeAB.Sign = 1
	nodeAB.PlaceFirst(edgeExtAB)
	nodeAB.Edges[1] = edgeExtDA
	nodeAB.Edges[2] = addEdge
	nodeBC.Sign = 1
	nodeBC.PlaceFirst(edgeExtBC)
	nodeBC.Edges[1] = addEdge
	nodeBC.Edges[2] = edgeExtCD
	edgeExtDA.SetOutgoing(nodeAB)
	edgeExtCD.SetOutgoing(nodeBC)
	addEdge.SetOutgoing(nodeAB)
	addEdge.SetIncoming(nodeBC)
	g.removeNode(nodeCD)
	g.removeNode(nodeDA)
	g.removeEdge(edgeA)
	g.removeEdge(edgeB)
	g.removeEdge(edgeC)
	g.removeEdge(edgeD)
	return nil
}

// finalTriangularDelta dissolves the last two nodes of a fully reduced
// component into the triangular delta of their three shared edges.
func (g *Graph) finalTriangularDelta() error {
	if g.NumNodes() > 2 {
		return errors.Wrapf(goamc.ErrNotReducible, "final reduction with %d nodes left", g.NumNodes())
	}
	if g.NumNodes() == 0 {
		return nil
	}
	if len(g.edges) != 3 {
		return errors.Wrapf(goamc.ErrNotReducible, "final reduction with %d edges left", len(g.edges))
	}

	for _, e := range g.edges {
		if err := orientInto(e, g.nodes[0], g.bag); err != nil {
			return err
		}
	}

	for _, node := range g.nodes {
		node.PlaceFirst(g.edges[0])
	}
	if g.nodes[0].FirstOfTwo(g.edges[1], g.edges[2]) == g.nodes[1].FirstOfTwo(g.edges[1], g.edges[2]) {
		g.nodes[1].ChangeSign(FlipIndirect, g.bag)
	}
	if g.nodes[0].Sign == g.nodes[1].Sign {
		g.nodes[1].ChangeSign(FlipDirect, g.bag)
	}

	g.TriangularDeltas = append(g.TriangularDeltas,
		NewTriangularDelta(g.edges[0].Idx, g.edges[1].Idx, g.edges[2].Idx))

	g.n--
	g.nodes = g.nodes[:0]
	g.edges = g.edges[:0]
	return nil
}
