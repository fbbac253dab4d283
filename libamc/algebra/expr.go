package algebra

import (
	"fmt"
	"strings"
)

// Expr is a node of the (expanded) algebraic tree: sums of products of
// indexed tensor variables and the factor objects produced by reduction.
type Expr interface {
	String() string
	isExpr()
}

// Rational is a plain numeric prefactor.
type Rational struct {
	Num, Den int64
}

func (r Rational) isExpr() {}

func (r Rational) String() string {
	if r.Den == 1 {
		return fmt.Sprintf("%d", r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Variable is an occurrence of a declared tensor with named subscripts.
type Variable struct {
	Tensor     *Tensor
	Subscripts []*Index
}

func (v *Variable) isExpr() {}

func (v *Variable) String() string {
	return fmt.Sprintf("%s_{%s}", v.Tensor.Name, joinIndices(v.Subscripts))
}

// DependsOn returns the set of subscript indices of the variable.
func (v *Variable) DependsOn() map[*Index]bool {
	deps := make(map[*Index]bool, len(v.Subscripts))
	for _, ix := range v.Subscripts {
		deps[ix] = true
	}
	return deps
}

// ReducedVariable is a tensor occurrence in the reduced equation: the
// original subscripts plus the coupling labels of its scheme's intermediate
// and rank angular momenta.
type ReducedVariable struct {
	Tensor     *Tensor
	Subscripts []*Index
	Labels     []*Index
}

func (v *ReducedVariable) isExpr() {}

func (v *ReducedVariable) String() string {
	return fmt.Sprintf("%s^{%s}_{%s}", v.Tensor.Name, joinIndices(v.Labels), joinIndices(v.Subscripts))
}

// DeltaJ constrains two angular momenta to be equal.
type DeltaJ struct {
	A, B *Index
}

func (d *DeltaJ) isExpr() {}

func (d *DeltaJ) String() string {
	return fmt.Sprintf("delta(%s %s)", d.A, d.B)
}

// TriangularDelta marks the triangular inequality |a-b| <= c <= a+b.
type TriangularDelta struct {
	Indices [3]*Index
}

func (t *TriangularDelta) isExpr() {}

func (t *TriangularDelta) String() string {
	return fmt.Sprintf("tri(%s %s %s)", t.Indices[0], t.Indices[1], t.Indices[2])
}

// SixJ is a Wigner 6j-symbol. Indices are stored row-major.
type SixJ struct {
	Indices [6]*Index
}

func (s *SixJ) isExpr() {}

func (s *SixJ) String() string {
	return fmt.Sprintf("sixj{%s %s %s; %s %s %s}",
		s.Indices[0], s.Indices[1], s.Indices[2],
		s.Indices[3], s.Indices[4], s.Indices[5])
}

// NineJ is a Wigner 9j-symbol. Indices are stored row-major.
type NineJ struct {
	Indices [9]*Index
}

func (n *NineJ) isExpr() {}

func (n *NineJ) String() string {
	return fmt.Sprintf("ninej{%s %s %s; %s %s %s; %s %s %s}",
		n.Indices[0], n.Indices[1], n.Indices[2],
		n.Indices[3], n.Indices[4], n.Indices[5],
		n.Indices[6], n.Indices[7], n.Indices[8])
}

// TwelveJFirst is a 12j-symbol of the first kind.
type TwelveJFirst struct {
	Indices [12]*Index
}

func (t *TwelveJFirst) isExpr() {}

func (t *TwelveJFirst) String() string {
	parts := make([]string, len(t.Indices))
	for i, ix := range t.Indices {
		parts[i] = ix.Name
	}
	return "twelvej1{" + strings.Join(parts, " ") + "}"
}

// HatPhaseFactor collects the hat power and phase exponents accumulated on
// one index: sign * (2j+1)^(hatpower/2) * (-1)^(jphase*j + mphase*m).
type HatPhaseFactor struct {
	Index    *Index
	HatPower int
	JPhase   int
	MPhase   int
	Sign     int
}

// NewHatPhaseFactor folds the raw phase exponents into their canonical range
// before storing them: modulo 2 for integer indices, modulo 4 for
// half-integer ones with the extra factor absorbed into the sign.
func NewHatPhaseFactor(index *Index, hatPower, jphase, mphase, sign int) *HatPhaseFactor {
	mod := func(a, m int) int {
		a %= m
		if a < 0 {
			a += m
		}
		return a
	}

	if index.Type == Int {
		jphase = mod(jphase, 2)
		mphase = mod(mphase, 2)
	} else {
		jphase = mod(jphase, 4)
		if jphase/2 == 1 {
			sign *= -1
			jphase -= 2
		}
		mphase = mod(mphase, 4)
		if mphase/2 == 1 {
			sign *= -1
			mphase -= 2
		}
	}

	return &HatPhaseFactor{
		Index:    index,
		HatPower: hatPower,
		JPhase:   jphase,
		MPhase:   mphase,
		Sign:     sign,
	}
}

func (h *HatPhaseFactor) isExpr() {}

// IsTrivial reports whether the factor multiplies to 1.
func (h *HatPhaseFactor) IsTrivial() bool {
	return h.Sign == 1 && h.HatPower == 0 && h.JPhase == 0 && h.MPhase == 0
}

func (h *HatPhaseFactor) String() string {
	b := strings.Builder{}
	if h.Sign < 0 {
		b.WriteString("-")
	}
	if h.HatPower != 0 {
		fmt.Fprintf(&b, "hat(%s)^%d", h.Index, h.HatPower)
	}
	if h.JPhase != 0 || h.MPhase != 0 {
		if h.HatPower != 0 {
			b.WriteString(" ")
		}
		b.WriteString("(-1)^{")
		switch {
		case h.JPhase != 0 && h.MPhase != 0:
			fmt.Fprintf(&b, "%dj_%s + %dm_%s", h.JPhase, h.Index, h.MPhase, h.Index)
		case h.JPhase != 0:
			fmt.Fprintf(&b, "%dj_%s", h.JPhase, h.Index)
		default:
			fmt.Fprintf(&b, "%dm_%s", h.MPhase, h.Index)
		}
		b.WriteString("}")
	}
	if b.Len() == 0 {
		return "1"
	}
	return b.String()
}

// Mul is a product of factors.
type Mul []Expr

func (m Mul) isExpr() {}

func (m Mul) String() string {
	parts := make([]string, 0, len(m))
	for _, f := range m {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, " ")
}

// Add is a sum of terms.
type Add []Expr

func (a Add) isExpr() {}

func (a Add) String() string {
	parts := make([]string, 0, len(a))
	for _, t := range a {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, "\n  + ")
}

// Sum is a summation over the given subscripts.
type Sum struct {
	Subscripts []*Index
	Expr       Expr
}

func (s *Sum) isExpr() {}

func (s *Sum) String() string {
	if len(s.Subscripts) == 0 {
		return s.Expr.String()
	}
	return fmt.Sprintf("sum_{%s} %s", joinIndices(s.Subscripts), s.Expr)
}

// Equation pairs a left-hand variable with a right-hand expression.
type Equation struct {
	LHS *Variable
	RHS Expr
}

func (eq *Equation) String() string {
	return fmt.Sprintf("%s = %s;", eq.LHS, eq.RHS)
}

// ReducedEquation is the output of the reduction driver.
type ReducedEquation struct {
	LHS *ReducedVariable
	RHS Expr
}

func (eq *ReducedEquation) String() string {
	return fmt.Sprintf("%s = %s;", eq.LHS, eq.RHS)
}

func joinIndices(ixs []*Index) string {
	parts := make([]string, len(ixs))
	for i, ix := range ixs {
		parts[i] = ix.Name
	}
	return strings.Join(parts, " ")
}
