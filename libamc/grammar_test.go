package libamc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amc-systems/goamc/goamc"
	"github.com/amc-systems/goamc/libamc"
	"github.com/amc-systems/goamc/libamc/algebra"
)

func TestParseDeclarations(t *testing.T) {
	p := libamc.NewParser()
	_, err := p.Parse("decl.amc", `
# two-body Hamiltonian
declare H {
    mode = 4,
    scalar = true,
    reduce = true,
}

declare Xbar {
    mode = (2, 2),
    scheme = ((1, -4), (3, -2)),
}

declare n {
    mode = 2,
    diagonal = true,
}
`)
	require.NoError(t, err)

	h, err := p.Tensor("H")
	require.NoError(t, err)
	require.Equal(t, [2]int{2, 2}, h.Mode)
	require.True(t, h.Scalar)
	require.True(t, h.Reduce)
	require.Equal(t, "((1,2),(3,4))", h.Scheme.String())

	xbar, err := p.Tensor("Xbar")
	require.NoError(t, err)
	require.True(t, xbar.Scalar)
	require.Equal(t, "((1,-4),(3,-2))", xbar.Scheme.String())

	occ, err := p.Tensor("n")
	require.NoError(t, err)
	require.True(t, occ.Diagonal)
	require.Equal(t, 1, occ.NumSubscripts())

	_, err = p.Tensor("G")
	require.ErrorIs(t, err, goamc.ErrUnknownTensor)
}

func TestParseEquation(t *testing.T) {
	p := libamc.NewParser()
	eqs, err := p.Parse("eq.amc", `
declare X { mode = 2, scalar = true }
declare A { mode = 2, scalar = true }
declare B { mode = 2, scalar = true }

X_ab = 1/2 * sum_c (A_ac * B_cb) - A_ab;
`)
	require.NoError(t, err)
	require.Len(t, eqs, 1)

	eq := eqs[0]
	require.Equal(t, "X", eq.LHS.Tensor.Name)
	require.Len(t, eq.LHS.Subscripts, 2)
	require.Equal(t, "a", eq.LHS.Subscripts[0].Name)

	add, ok := eq.RHS.(algebra.Add)
	require.True(t, ok)
	require.Len(t, add, 2)

	term1, ok := add[0].(algebra.Mul)
	require.True(t, ok)
	require.Equal(t, algebra.Rational{Num: 1, Den: 2}, term1[0])

	sum, ok := term1[1].(*algebra.Sum)
	require.True(t, ok)
	require.Len(t, sum.Subscripts, 1)
	require.Equal(t, "c", sum.Subscripts[0].Name)

	prod, ok := sum.Expr.(algebra.Mul)
	require.True(t, ok)
	va := prod[0].(*algebra.Variable)
	vb := prod[1].(*algebra.Variable)
	require.Equal(t, "A", va.Tensor.Name)
	require.Equal(t, "B", vb.Tensor.Name)

	// Subscript identity: the summed c is the same index in both factors,
	// and a of the LHS is a of the subtracted term.
	require.Same(t, sum.Subscripts[0], va.Subscripts[1])
	require.Same(t, sum.Subscripts[0], vb.Subscripts[0])

	term2, ok := add[1].(algebra.Mul)
	require.True(t, ok)
	require.Equal(t, algebra.Rational{Num: -1, Den: 1}, term2[0])
	negA := term2[1].(*algebra.Variable)
	require.Same(t, eq.LHS.Subscripts[0], negA.Subscripts[0])
}

func TestParseBracedSubscripts(t *testing.T) {
	p := libamc.NewParser()
	eqs, err := p.Parse("eq.amc", `
declare X { mode = 2, scalar = true }
X_{p1 p2} = X_{p2 p1};
`)
	require.NoError(t, err)
	require.Len(t, eqs, 1)
	require.Equal(t, "p1", eqs[0].LHS.Subscripts[0].Name)
	require.Equal(t, "p2", eqs[0].LHS.Subscripts[1].Name)

	rhs := eqs[0].RHS.(*algebra.Variable)
	require.Same(t, eqs[0].LHS.Subscripts[0], rhs.Subscripts[1])
}

func TestParseErrors(t *testing.T) {
	p := libamc.NewParser()

	_, err := p.Parse("eq.amc", `Y_ab = Y_ab;`)
	require.ErrorIs(t, err, goamc.ErrUnknownTensor)

	_, err = p.Parse("eq.amc", `
declare X { mode = 2, scalar = true }
X_abc = X_abc;
`)
	require.ErrorIs(t, err, goamc.ErrBadSubscripts)

	_, err = p.Parse("eq.amc", `declare X { mode = 2, wibble = true }`)
	require.ErrorIs(t, err, goamc.ErrMalformed)

	_, err = p.Parse("eq.amc", `declare X { scalar = true }`)
	require.ErrorIs(t, err, goamc.ErrMalformed)

	_, err = p.Parse("eq.amc", `declare X { mode = 2, scheme = (1, 2, 3) }`)
	require.ErrorIs(t, err, goamc.ErrBadScheme)
}

func TestSumScopesSubscripts(t *testing.T) {
	p := libamc.NewParser()
	eqs, err := p.Parse("eq.amc", `
declare X { mode = 2, scalar = true }
declare A { mode = 2, scalar = true }
X_ab = sum_c (A_ac * A_cb) + sum_c (A_ac * A_cb);
`)
	require.NoError(t, err)

	add := eqs[0].RHS.(algebra.Add)
	s1 := add[0].(*algebra.Sum)
	s2 := add[1].(*algebra.Sum)
	require.NotSame(t, s1.Subscripts[0], s2.Subscripts[0])
}
