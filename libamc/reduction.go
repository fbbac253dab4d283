package libamc

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
	"github.com/amc-systems/goamc/libamc/algebra"
	"github.com/amc-systems/goamc/libamc/yutsis"
)

// ReduceEquation reduces an equation over m-scheme tensor variables to
// angular-momentum coupled form. The left-hand side becomes a reduced
// variable carrying its coupling labels; every right-hand term is multiplied
// by the left-hand coupling network, summed over all projections, and the
// resulting Clebsch-Gordan string is collapsed into deltas, triangular
// deltas, 6j-, 9j- and 12j-symbols.
func ReduceEquation(eq *algebra.Equation, opts goamc.ReduceOpts) (*algebra.ReducedEquation, error) {
	if opts.Permute {
		return nil, errors.Wrap(goamc.ErrNotImplemented, "subscript permutation search")
	}
	switch opts.Convention {
	case goamc.Wigner, goamc.Sakurai:
	default:
		return nil, errors.Wrapf(goamc.ErrBadConvention, "convention %d", opts.Convention)
	}

	var terms []algebra.Expr
	if add, ok := eq.RHS.(algebra.Add); ok {
		terms = add
	} else {
		terms = []algebra.Expr{eq.RHS}
	}

	namer := &algebra.IndexNamer{}
	zero := algebra.NewIndex("0", algebra.Int)
	auxAST, err := generateAuxiliaryASTIndices(eq.LHS, namer, zero)
	if err != nil {
		return nil, err
	}

	newLHS := &algebra.ReducedVariable{
		Tensor:     eq.LHS.Tensor,
		Subscripts: eq.LHS.Subscripts,
		Labels:     auxAST,
	}

	newTerms, err := StreamTerms(terms).
		Reduce(eq.LHS, auxAST, namer, zero, opts).
		PullAll(len(terms))
	if err != nil {
		return nil, err
	}

	var newRHS algebra.Expr
	if len(newTerms) == 1 {
		newRHS = newTerms[0]
	} else {
		newRHS = algebra.Add(newTerms)
	}

	return &algebra.ReducedEquation{LHS: newLHS, RHS: newRHS}, nil
}

// splitTerm separates a term into its summation subscripts, its couplable
// tensor variables and its passthrough factors (numbers, diagonal tensors).
func splitTerm(term algebra.Expr) (internals []*algebra.Index, variables []*algebra.Variable, factors []algebra.Expr, err error) {
	var walk func(e algebra.Expr) error
	walk = func(e algebra.Expr) error {
		switch n := e.(type) {
		case *algebra.Sum:
			internals = append(internals, n.Subscripts...)
			return walk(n.Expr)
		case algebra.Mul:
			for _, f := range n {
				if err := walk(f); err != nil {
					return err
				}
			}
			return nil
		case *algebra.Variable:
			if n.Tensor.Diagonal {
				factors = append(factors, n)
			} else {
				variables = append(variables, n)
			}
			return nil
		case algebra.Add:
			return errors.Wrap(goamc.ErrExpandFirst, "term contains a sum of factors")
		default:
			factors = append(factors, e)
			return nil
		}
	}

	switch term.(type) {
	case *algebra.Sum, algebra.Mul, *algebra.Variable:
	default:
		return nil, nil, nil, errors.Wrap(goamc.ErrMalformed, "term is not (a sum over) a product of factors")
	}

	if err := walk(term); err != nil {
		return nil, nil, nil, err
	}
	return internals, variables, factors, nil
}

// jVariable pairs a right-hand tensor variable with the auxiliary coupling
// indices its Clebsch-Gordan network introduced. The last one is the
// variable's rank index.
type jVariable struct {
	v   *algebra.Variable
	aux []yutsis.IdxID
}

func reduceTerm(lhs *algebra.Variable, auxAST []*algebra.Index, term algebra.Expr,
	namer *algebra.IndexNamer, zeroAST *algebra.Index, opts goamc.ReduceOpts) (algebra.Expr, error) {

	internals, variables, factors, err := splitTerm(term)
	if err != nil {
		return nil, err
	}

	b := yutsis.NewBag()

	// Single-particle indices: the left-hand subscripts are the external
	// lines, the summation subscripts the internal ones.
	externalOrder := append([]*algebra.Index(nil), lhs.Subscripts...)
	externalIdx := make(map[*algebra.Index]yutsis.IdxID, len(externalOrder))
	for _, astidx := range externalOrder {
		externalIdx[astidx] = b.NewIdx(yutsis.HalfInt, astidx.Name,
			yutsis.IdxOpts{External: true, Particle: true})
	}

	internalOrder := append([]*algebra.Index(nil), internals...)
	internalIdx := make(map[*algebra.Index]yutsis.IdxID, len(internalOrder)+1)
	for _, astidx := range internalOrder {
		internalIdx[astidx] = b.NewIdx(yutsis.HalfInt, astidx.Name,
			yutsis.IdxOpts{Particle: true})
	}

	zeroY := b.NewIdx(yutsis.Int, "0", yutsis.IdxOpts{Zero: true})
	internalIdx[zeroAST] = zeroY
	internalOrder = append(internalOrder, zeroAST)

	idxmap := make(map[*algebra.Index]yutsis.IdxID, len(externalIdx)+len(internalIdx))
	for astidx, id := range externalIdx {
		idxmap[astidx] = id
	}
	for astidx, id := range internalIdx {
		idxmap[astidx] = id
	}

	var clebsches []yutsis.ClebschGordan
	var auxIdx []yutsis.IdxID
	var jvariables []jVariable

	for _, v := range variables {
		cl, aux, err := variableToClebsches(b, v, idxmap, opts.Convention, false)
		if err != nil {
			return nil, err
		}
		clebsches = append(clebsches, cl...)
		auxIdx = append(auxIdx, aux...)
		jvariables = append(jvariables, jVariable{v: v, aux: aux})
	}

	clLHS, auxLHS, err := variableToClebsches(b, lhs, externalIdx, opts.Convention, true)
	if err != nil {
		return nil, err
	}
	if len(auxLHS) != len(auxAST) {
		return nil, errors.Wrapf(goamc.ErrMalformed,
			"left-hand coupling produced %d labels, expected %d", len(auxLHS), len(auxAST))
	}
	for k, astidx := range auxAST {
		if _, dup := externalIdx[astidx]; !dup {
			externalOrder = append(externalOrder, astidx)
		}
		externalIdx[astidx] = auxLHS[k]
	}

	clebsches = append(clebsches, clLHS...)
	auxIdx = append(append([]yutsis.IdxID(nil), auxLHS...), auxIdx...)

	// Couple the tensor ranks of the right-hand variables to the rank of
	// the left-hand side.
	rankLHS := auxLHS[len(auxLHS)-1]
	var rankIndices []yutsis.IdxID
	for _, jv := range jvariables {
		rankIndices = append(rankIndices, jv.aux[len(jv.aux)-1])
	}

	switch {
	case len(rankIndices) == 1:
		if !b.At(rankIndices[0]).Zero {
			clebsches = append(clebsches, yutsis.ClebschGordan{
				Indices: [3]yutsis.IdxID{rankIndices[0], zeroY, rankLHS},
				Signs:   [3]int{1, 1, 1},
			})
		}

	case len(rankIndices) > 1:
		left := rankIndices[0]
		for k := 1; k < len(rankIndices); k++ {
			cur := rankIndices[k]
			if b.At(left).Zero && b.At(cur).Zero {
				left = zeroY
				continue
			}
			var next yutsis.IdxID
			if k+1 == len(rankIndices) {
				next = rankLHS
			} else {
				next = b.NewIdx(yutsis.CoupledType(b.At(left).Type, b.At(cur).Type), "", yutsis.IdxOpts{})
				auxIdx = append(auxIdx, next)
			}
			clebsches = append(clebsches, yutsis.ClebschGordan{
				Indices: [3]yutsis.IdxID{left, cur, next},
				Signs:   [3]int{1, 1, 1},
			})
			left = next
		}
	}

	graph, err := yutsis.Reduce(b, clebsches, zeroY, opts.IterCap())
	if err != nil {
		return nil, err
	}

	if opts.CollectNineJs {
		if err := graph.CollectNineJs(); err != nil {
			return nil, err
		}
		if opts.CollectTwelveJs {
			if err := graph.CollectTwelveJFirsts(); err != nil {
				return nil, err
			}
		}
	}

	// Canonicalize the 6j-symbols, then register the square-reduction
	// summation indices that surfaced in the produced symbols.
	for _, sixj := range graph.SixJs {
		if err := sixj.Canonicalize(b); err != nil {
			return nil, err
		}
	}
	known := make(map[yutsis.IdxID]bool, len(idxmap)+len(auxIdx))
	for _, id := range idxmap {
		known[id] = true
	}
	for _, id := range auxIdx {
		known[id] = true
	}
	for _, id := range symbolIndices(graph) {
		if !known[id] {
			known[id] = true
			auxIdx = append(auxIdx, id)
		}
	}

	if err := handleDeltas(graph); err != nil {
		return nil, err
	}

	// Map every Yutsis index back to an AST index, generating fresh names
	// for the auxiliary ones.
	subscriptMap := make(map[yutsis.IdxID]*algebra.Index, b.Len())
	for astidx, id := range externalIdx {
		subscriptMap[id] = astidx
	}
	for astidx, id := range internalIdx {
		subscriptMap[id] = astidx
	}
	yutsisAuxiliaryIndicesToAST(b, auxIdx, subscriptMap, namer, zeroAST)

	// Propagate constraints onto the named AST indices.
	for _, astidx := range internalOrder {
		id := internalIdx[astidx]
		if to := b.ConstrainedTo(id); to != yutsis.NoIdx {
			astidx.ConstrainedTo = subscriptMap[to]
		}
	}

	// One representative Yutsis index per AST index, preferring the ones
	// that still carry factors: unconstrained survivors, externals and
	// particles.
	idxByAST := make(map[*algebra.Index]yutsis.IdxID, len(subscriptMap))
	for id := yutsis.IdxID(0); int(id) < b.Len(); id++ {
		astidx, ok := subscriptMap[id]
		if !ok {
			continue
		}
		ix := b.At(id)
		if b.ConstrainedTo(id) == yutsis.NoIdx || ix.External || ix.Particle {
			idxByAST[astidx] = id
		}
	}

	reducedVariables := make([]algebra.Expr, 0, len(jvariables))
	for _, jv := range jvariables {
		labels := make([]*algebra.Index, len(jv.aux))
		for k, id := range jv.aux {
			labels[k] = subscriptMap[id]
		}
		reducedVariables = append(reducedVariables, &algebra.ReducedVariable{
			Tensor:     jv.v.Tensor,
			Subscripts: jv.v.Subscripts,
			Labels:     labels,
		})
	}

	var deltas []algebra.Expr
	for _, astidx := range externalOrder {
		id := externalIdx[astidx]
		if to := b.ConstrainedTo(id); to != yutsis.NoIdx {
			deltas = append(deltas, &algebra.DeltaJ{A: astidx, B: subscriptMap[to]})
		}
	}

	var trideltas []algebra.Expr
	for _, td := range graph.TriangularDeltas {
		trideltas = append(trideltas, &algebra.TriangularDelta{Indices: [3]*algebra.Index{
			subscriptMap[td.Indices[0]], subscriptMap[td.Indices[1]], subscriptMap[td.Indices[2]],
		}})
	}
	var sixjs []algebra.Expr
	for _, s := range graph.SixJs {
		var ixs [6]*algebra.Index
		for k, id := range s.Indices {
			ixs[k] = subscriptMap[id]
		}
		sixjs = append(sixjs, &algebra.SixJ{Indices: ixs})
	}
	var ninejs []algebra.Expr
	for _, n := range graph.NineJs {
		var ixs [9]*algebra.Index
		for k, id := range n.Indices {
			ixs[k] = subscriptMap[id]
		}
		ninejs = append(ninejs, &algebra.NineJ{Indices: ixs})
	}
	var twelvejs []algebra.Expr
	for _, t := range graph.TwelveJFirsts {
		var ixs [12]*algebra.Index
		for k, id := range t.Indices {
			ixs[k] = subscriptMap[id]
		}
		twelvejs = append(twelvejs, &algebra.TwelveJFirst{Indices: ixs})
	}

	var hatfactors []algebra.Expr
	for _, astidx := range sortedASTIndices(idxByAST) {
		ix := b.At(idxByAST[astidx])
		ix.Simplify()
		h := algebra.NewHatPhaseFactor(astidx, ix.JHat, ix.JPhase, ix.MPhase, ix.Sign)
		if !h.IsTrivial() {
			hatfactors = append(hatfactors, h)
		}
	}

	var mul algebra.Mul
	if graph.Sign == -1 {
		mul = append(mul, algebra.Rational{Num: -1, Den: 1})
	}
	mul = append(mul, deltas...)
	mul = append(mul, factors...)
	mul = append(mul, hatfactors...)
	mul = append(mul, trideltas...)
	mul = append(mul, sixjs...)
	mul = append(mul, ninejs...)
	mul = append(mul, twelvejs...)
	mul = append(mul, reducedVariables...)

	// Sum over the original internal subscripts plus every auxiliary
	// coupling index that neither belongs to the left-hand side nor was
	// constrained away onto one.
	sumSubs := append([]*algebra.Index(nil), internals...)
	seen := make(map[*algebra.Index]bool, len(sumSubs)+len(auxIdx))
	for _, astidx := range sumSubs {
		seen[astidx] = true
	}
	for _, id := range auxIdx {
		astidx := subscriptMap[id]
		if astidx == nil || astidx == zeroAST || seen[astidx] {
			continue
		}
		if _, isExternal := externalIdx[astidx]; isExternal {
			continue
		}
		seen[astidx] = true
		sumSubs = append(sumSubs, astidx)
	}

	if len(sumSubs) == 0 {
		return mul, nil
	}
	return &algebra.Sum{Subscripts: sumSubs, Expr: mul}, nil
}

// symbolIndices lists every index appearing in the graph's produced symbols,
// in production order.
func symbolIndices(g *yutsis.Graph) []yutsis.IdxID {
	var ids []yutsis.IdxID
	for _, s := range g.SixJs {
		ids = append(ids, s.Indices[:]...)
	}
	for _, n := range g.NineJs {
		ids = append(ids, n.Indices[:]...)
	}
	for _, t := range g.TwelveJFirsts {
		ids = append(ids, t.Indices[:]...)
	}
	return ids
}

func sortedASTIndices(idxByAST map[*algebra.Index]yutsis.IdxID) []*algebra.Index {
	keys := make([]*algebra.Index, 0, len(idxByAST))
	for astidx := range idxByAST {
		keys = append(keys, astidx)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys
}

// variableToClebsches expands a tensor variable into the Clebsch-Gordan
// network of its coupling scheme. Returns the coefficients and the auxiliary
// indices created for the intermediate couplings, rank index last.
//
// With lhs set the network reduces the right-hand side against the left-hand
// variable: the auxiliary indices become external, and an unreduced scalar
// left-hand side gets an extra hat factor to cancel the unrestricted
// projection sum that remains after reduction.
func variableToClebsches(b *yutsis.Bag, v *algebra.Variable, idxmap map[*algebra.Index]yutsis.IdxID,
	convention goamc.Convention, lhs bool) ([]yutsis.ClebschGordan, []yutsis.IdxID, error) {

	tensor := v.Tensor

	// A scheme-less variable contributes no coupling; it still gets a zero
	// rank index so that rank chaining stays uniform.
	if tensor.Scheme == nil {
		rank := b.NewIdx(yutsis.Int, "", yutsis.IdxOpts{External: lhs, Zero: true})
		return nil, []yutsis.IdxID{rank}, nil
	}

	var clebsches []yutsis.ClebschGordan
	var aux []yutsis.IdxID

	leafIdx := func(leaf int) (yutsis.IdxID, int, error) {
		pos := leaf
		sign := 1
		if pos < 0 {
			pos = -pos
			sign = -1
		}
		if pos < 1 || pos > len(v.Subscripts) {
			return yutsis.NoIdx, 0, errors.Wrapf(goamc.ErrBadSubscripts,
				"tensor %s: scheme leaf %d out of range", tensor.Name, leaf)
		}
		id, ok := idxmap[v.Subscripts[pos-1]]
		if !ok {
			return yutsis.NoIdx, 0, errors.Wrapf(goamc.ErrBadSubscripts,
				"tensor %s: subscript %s is neither external nor summed", tensor.Name, v.Subscripts[pos-1].Name)
		}
		return id, sign, nil
	}

	var rec func(s *algebra.Scheme) (yutsis.IdxID, error)
	rec = func(s *algebra.Scheme) (yutsis.IdxID, error) {
		resolve := func(sub *algebra.Scheme) (yutsis.IdxID, int, error) {
			if sub.IsLeaf() {
				return leafIdx(sub.Leaf)
			}
			id, err := rec(sub)
			return id, 1, err
		}

		s0, sign0, err := resolve(s.L)
		if err != nil {
			return yutsis.NoIdx, err
		}
		s1, sign1, err := resolve(s.R)
		if err != nil {
			return yutsis.NoIdx, err
		}

		cpidx := b.NewIdx(yutsis.CoupledType(b.At(s0).Type, b.At(s1).Type), "",
			yutsis.IdxOpts{External: lhs})
		clebsches = append(clebsches, yutsis.ClebschGordan{
			Indices: [3]yutsis.IdxID{s0, s1, cpidx},
			Signs:   [3]int{sign0, sign1, 1},
		})

		// Coupling a time-reversed state brings a (-1)^{j-m} phase.
		if sign0 < 0 {
			b.At(s0).JPhase++
			b.At(s0).MPhase--
		}
		if sign1 < 0 {
			b.At(s1).JPhase++
			b.At(s1).MPhase--
		}

		aux = append(aux, cpidx)
		return cpidx, nil
	}

	resolveTop := func(sub *algebra.Scheme) (yutsis.IdxID, int, error) {
		if sub.IsLeaf() {
			return leafIdx(sub.Leaf)
		}
		id, err := rec(sub)
		return id, 1, err
	}

	s0, sign0, err := resolveTop(tensor.Scheme.L)
	if err != nil {
		return nil, nil, err
	}
	s1, sign1, err := resolveTop(tensor.Scheme.R)
	if err != nil {
		return nil, nil, err
	}

	// The topmost coupling follows the Wigner-Eckart conventions for
	// reduced matrix elements.
	rankidx := b.NewIdx(yutsis.CoupledType(b.At(s0).Type, b.At(s1).Type), "",
		yutsis.IdxOpts{External: lhs, Zero: tensor.Scalar, Rank: true})

	if !tensor.Scalar || tensor.Reduce {
		switch convention {
		case goamc.Wigner:
			b.At(rankidx).JPhase += 2
			b.At(s0).JHat--
		case goamc.Sakurai:
			b.At(s1).JHat--
		}
	}

	if lhs && tensor.Scalar && !tensor.Reduce {
		b.At(s1).JHat -= 2
	}

	// Equal to a delta when the tensor is scalar.
	clebsches = append(clebsches, yutsis.ClebschGordan{
		Indices: [3]yutsis.IdxID{s1, rankidx, s0},
		Signs:   [3]int{sign1, 1, sign0},
	})
	aux = append(aux, rankidx)
	return clebsches, aux, nil
}

// generateAuxiliaryASTIndices creates the coupling labels of the reduced
// left-hand variable, mirroring the auxiliary index structure that
// variableToClebsches will create for it.
func generateAuxiliaryASTIndices(v *algebra.Variable, namer *algebra.IndexNamer, zero *algebra.Index) ([]*algebra.Index, error) {
	tensor := v.Tensor
	if tensor.Scheme == nil {
		return []*algebra.Index{zero}, nil
	}

	var auxAST []*algebra.Index

	leafType := func(leaf int) (algebra.IndexType, error) {
		pos := leaf
		if pos < 0 {
			pos = -pos
		}
		if pos < 1 || pos > len(v.Subscripts) {
			return algebra.Int, errors.Wrapf(goamc.ErrBadSubscripts,
				"tensor %s: scheme leaf %d out of range", tensor.Name, leaf)
		}
		return v.Subscripts[pos-1].Type, nil
	}

	var rec func(s *algebra.Scheme) (algebra.IndexType, error)
	rec = func(s *algebra.Scheme) (algebra.IndexType, error) {
		resolve := func(sub *algebra.Scheme) (algebra.IndexType, error) {
			if sub.IsLeaf() {
				return leafType(sub.Leaf)
			}
			return rec(sub)
		}
		t0, err := resolve(s.L)
		if err != nil {
			return algebra.Int, err
		}
		t1, err := resolve(s.R)
		if err != nil {
			return algebra.Int, err
		}
		cpidx := namer.Next(algebra.CoupledType(t0, t1), false)
		auxAST = append(auxAST, cpidx)
		return cpidx.Type, nil
	}

	resolveTop := func(sub *algebra.Scheme) (algebra.IndexType, error) {
		if sub.IsLeaf() {
			return leafType(sub.Leaf)
		}
		return rec(sub)
	}

	t0, err := resolveTop(tensor.Scheme.L)
	if err != nil {
		return nil, err
	}
	t1, err := resolveTop(tensor.Scheme.R)
	if err != nil {
		return nil, err
	}

	if tensor.Scalar {
		auxAST = append(auxAST, zero)
	} else {
		auxAST = append(auxAST, namer.Next(algebra.CoupledType(t0, t1), true))
	}
	return auxAST, nil
}

// yutsisAuxiliaryIndicesToAST names the auxiliary Yutsis indices that
// survived reduction. Constrained indices alias their survivor's AST index;
// zero indices alias the canonical zero index.
func yutsisAuxiliaryIndicesToAST(b *yutsis.Bag, auxIdx []yutsis.IdxID,
	subscriptMap map[yutsis.IdxID]*algebra.Index, namer *algebra.IndexNamer, zero *algebra.Index) {

	register := func(id yutsis.IdxID) {
		if _, ok := subscriptMap[id]; ok {
			return
		}
		ix := b.At(id)
		if ix.Zero {
			subscriptMap[id] = zero
			return
		}
		typ := algebra.Int
		if ix.Type == yutsis.HalfInt {
			typ = algebra.HalfInt
		}
		subscriptMap[id] = namer.Next(typ, ix.Rank)
	}

	for _, id := range auxIdx {
		if _, ok := subscriptMap[id]; ok {
			continue
		}
		if to := b.ConstrainedTo(id); to != yutsis.NoIdx {
			root := b.Root(id)
			register(root)
			subscriptMap[id] = subscriptMap[root]
			continue
		}
		register(id)
	}
}

// handleDeltas resolves the graph's delta constraints: indices connected by
// deltas form disjoint groups; one index per group survives, chosen in the
// order zero, external, particle, shortest name. All other members transfer
// their factors to the survivor and record the constraint.
func handleDeltas(g *yutsis.Graph) error {
	b := g.Bag()
	deltas := append([]yutsis.Delta(nil), g.Deltas...)
	processed := make(map[int]bool, len(deltas))

	for start := range deltas {
		if processed[start] {
			continue
		}

		// Gather the connected group of deltas sharing indices.
		group := []int{start}
		processed[start] = true
		for k := 0; k < len(group); k++ {
			d := deltas[group[k]]
			for other := range deltas {
				if processed[other] {
					continue
				}
				if deltas[other].Contains(d.Indices[0]) || deltas[other].Contains(d.Indices[1]) {
					group = append(group, other)
					processed[other] = true
				}
			}
		}

		sort.SliceStable(group, func(i, j int) bool {
			return deltaGroupLess(b.At(deltas[group[i]].Indices[0]), b.At(deltas[group[j]].Indices[0]))
		})

		survivor := b.Root(deltas[group[0]].Indices[0])

		for _, k := range group {
			for _, id := range deltas[k].Indices {
				if id == survivor || b.ConstrainedTo(id) != yutsis.NoIdx {
					continue
				}
				if err := b.Constrain(id, survivor); err != nil {
					return err
				}
			}
		}
	}

	g.Deltas = nil
	return nil
}

func deltaGroupLess(a, c *yutsis.Idx) bool {
	if a.Zero != c.Zero {
		return a.Zero
	}
	if a.External != c.External {
		return a.External
	}
	if a.Particle != c.Particle {
		return a.Particle
	}
	if len(a.Name) != len(c.Name) {
		return len(a.Name) < len(c.Name)
	}
	return a.Name < c.Name
}
