package libamc

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"

	"github.com/amc-systems/goamc/goamc"
	"github.com/amc-systems/goamc/libamc/algebra"
)

// The input language: tensor declarations followed by equations over them.
//
//	declare H {
//	    mode = 2,
//	    scalar = true,
//	    reduce = true,
//	}
//
//	Gamma_{abcd} = 1/2 * sum_{ij} (H_{abij} * rho_{ijcd});
//
// A subscript names one single-particle index per letter, or
// space-separated multi-letter names inside braces.

type fileExpr struct {
	Statements []*statementExpr `@@*`
}

type statementExpr struct {
	Declaration *declarationExpr `  @@`
	Equation    *equationExpr    `| @@`
}

type declarationExpr struct {
	Name  string    `"declare" @Ident`
	Pairs []*kvPair `"{" (@@ ("," @@)* ","?)? "}"`
}

type kvPair struct {
	Key   string   `@Ident "="`
	Value *kvValue `@@`
}

type kvValue struct {
	Number *fractionExpr `  @@`
	Bool   *string       `| @("true" | "false")`
	Str    *string       `| @String`
	List   *listExpr     `| @@`
}

type listExpr struct {
	Items []*listItem `"(" (@@ ("," @@)* ","?)? ")"`
}

type listItem struct {
	Neg    bool      `(@"-"?`
	Number *int      ` @Number)`
	List   *listExpr `| @@`
}

type equationExpr struct {
	LHS *variableRef    `@@ "="`
	RHS *expressionExpr `@@ ";"`
}

type expressionExpr struct {
	Neg   bool        `@"-"?`
	First *termExpr   `@@`
	Rest  []*exprTail `@@*`
}

type exprTail struct {
	Op   string    `@("+" | "-")`
	Term *termExpr `@@`
}

type termExpr struct {
	Factors []*factorExpr `@@ ("*" @@)*`
}

type factorExpr struct {
	Number   *fractionExpr   `  @@`
	Sum      *sumExpr        `| @@`
	Paren    *expressionExpr `| "(" @@ ")"`
	Variable *variableRef    `| @@`
}

type fractionExpr struct {
	Num int  `@Number`
	Den *int `("/" @Number)?`
}

type sumExpr struct {
	Subscript string          `"sum" @Subscript`
	Expr      *expressionExpr `"(" @@ ")"`
}

type variableRef struct {
	Name      string  `@Ident`
	Subscript *string `@Subscript?`
}

var amcLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Subscript", Pattern: `_\{[^}]*\}|_[A-Za-z0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9]*`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Punct", Pattern: `[+\-*/;(){}=,^]`},
})

var parseFileExpr = participle.MustBuild[fileExpr](
	participle.Lexer(amcLexer),
	participle.Elide("Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Parser builds tensor declarations and equations from input text.
// Declarations persist across Parse calls so that equation files can be
// split; subscript index identity is scoped to one equation.
type Parser struct {
	tensors map[string]*algebra.Tensor
}

func NewParser() *Parser {
	return &Parser{tensors: make(map[string]*algebra.Tensor)}
}

// Tensor returns a declared tensor by name.
func (p *Parser) Tensor(name string) (*algebra.Tensor, error) {
	tn, ok := p.tensors[name]
	if !ok {
		return nil, errors.Wrap(goamc.ErrUnknownTensor, name)
	}
	return tn, nil
}

// Parse reads declarations and equations from src. Declarations are
// registered on the parser; equations are returned in input order.
func (p *Parser) Parse(filename, src string) ([]*algebra.Equation, error) {
	file, err := parseFileExpr.ParseString(filename, src)
	if err != nil {
		return nil, err
	}

	var equations []*algebra.Equation
	for _, stmt := range file.Statements {
		switch {
		case stmt.Declaration != nil:
			if err := p.applyDeclaration(stmt.Declaration); err != nil {
				return nil, err
			}
		case stmt.Equation != nil:
			eq, err := p.buildEquation(stmt.Equation)
			if err != nil {
				return nil, err
			}
			equations = append(equations, eq)
		}
	}
	return equations, nil
}

func (p *Parser) applyDeclaration(decl *declarationExpr) error {
	var mode [2]int
	var opts algebra.TensorOpts
	modeSeen := false

	for _, pair := range decl.Pairs {
		switch pair.Key {
		case "mode":
			m, err := parseMode(pair.Value)
			if err != nil {
				return errors.Wrapf(err, "tensor %s", decl.Name)
			}
			mode = m
			modeSeen = true
		case "scalar":
			v, err := pair.Value.boolean()
			if err != nil {
				return errors.Wrapf(err, "tensor %s: scalar", decl.Name)
			}
			opts.NonScalar = !v
		case "reduce":
			v, err := pair.Value.boolean()
			if err != nil {
				return errors.Wrapf(err, "tensor %s: reduce", decl.Name)
			}
			opts.Reduce = v
		case "diagonal":
			v, err := pair.Value.boolean()
			if err != nil {
				return errors.Wrapf(err, "tensor %s: diagonal", decl.Name)
			}
			opts.Diagonal = v
		case "scheme":
			if pair.Value.List == nil {
				return errors.Wrapf(goamc.ErrBadScheme, "tensor %s: scheme must be a nested pair list", decl.Name)
			}
			s, err := schemeFromList(pair.Value.List)
			if err != nil {
				return errors.Wrapf(err, "tensor %s", decl.Name)
			}
			opts.Scheme = s
		case "latex":
			// Presentation hint, not used for reduction.
		default:
			return errors.Wrapf(goamc.ErrMalformed, "tensor %s: unknown attribute %q", decl.Name, pair.Key)
		}
	}

	if !modeSeen {
		return errors.Wrapf(goamc.ErrMalformed, "tensor %s: missing mode", decl.Name)
	}

	tn, err := algebra.NewTensor(decl.Name, mode, opts)
	if err != nil {
		return err
	}
	p.tensors[decl.Name] = tn
	return nil
}

// parseMode accepts a single number n (meaning n creators, n annihilators)
// or an explicit (n, m) pair.
func parseMode(v *kvValue) ([2]int, error) {
	if v.Number != nil {
		if v.Number.Den != nil {
			return [2]int{}, errors.Wrap(goamc.ErrMalformed, "mode must be an integer or a pair")
		}
		n := v.Number.Num
		return [2]int{(n + 1) / 2, n / 2}, nil
	}
	if v.List != nil && len(v.List.Items) == 2 &&
		v.List.Items[0].Number != nil && v.List.Items[1].Number != nil {
		return [2]int{v.List.Items[0].value(), v.List.Items[1].value()}, nil
	}
	return [2]int{}, errors.Wrap(goamc.ErrMalformed, "mode must be an integer or a pair")
}

func (v *kvValue) boolean() (bool, error) {
	if v.Bool == nil {
		return false, errors.Wrap(goamc.ErrMalformed, "expected a boolean")
	}
	return *v.Bool == "true", nil
}

func (it *listItem) value() int {
	n := *it.Number
	if it.Neg {
		return -n
	}
	return n
}

func schemeFromList(l *listExpr) (*algebra.Scheme, error) {
	if len(l.Items) != 2 {
		return nil, errors.Wrapf(goamc.ErrBadScheme, "scheme node couples %d entries, expected 2", len(l.Items))
	}
	sub := func(it *listItem) (*algebra.Scheme, error) {
		if it.Number != nil {
			return algebra.Leaf(it.value()), nil
		}
		return schemeFromList(it.List)
	}
	left, err := sub(l.Items[0])
	if err != nil {
		return nil, err
	}
	right, err := sub(l.Items[1])
	if err != nil {
		return nil, err
	}
	return algebra.Couple(left, right), nil
}

// equationBuilder scopes subscript identity to one equation: the same name
// resolves to the same Index, and summation subscripts leave scope with
// their sum.
type equationBuilder struct {
	parser     *Parser
	subscripts map[string]*algebra.Index
}

func (p *Parser) buildEquation(eq *equationExpr) (*algebra.Equation, error) {
	eb := &equationBuilder{
		parser:     p,
		subscripts: make(map[string]*algebra.Index),
	}

	lhs, err := eb.variable(eq.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := eb.expression(eq.RHS)
	if err != nil {
		return nil, err
	}
	return &algebra.Equation{LHS: lhs, RHS: rhs}, nil
}

func (eb *equationBuilder) indices(subscript string) []*algebra.Index {
	var names []string
	body := subscript[1:]
	if strings.HasPrefix(body, "{") {
		body = strings.TrimSuffix(strings.TrimPrefix(body, "{"), "}")
		names = strings.Fields(body)
	} else {
		for _, r := range body {
			names = append(names, string(r))
		}
	}

	ret := make([]*algebra.Index, len(names))
	for k, name := range names {
		ix, ok := eb.subscripts[name]
		if !ok {
			ix = algebra.NewIndex(name, algebra.HalfInt)
			eb.subscripts[name] = ix
		}
		ret[k] = ix
	}
	return ret
}

func (eb *equationBuilder) releaseIndices(ixs []*algebra.Index) {
	for _, ix := range ixs {
		delete(eb.subscripts, ix.Name)
	}
}

func (eb *equationBuilder) variable(ref *variableRef) (*algebra.Variable, error) {
	tn, err := eb.parser.Tensor(ref.Name)
	if err != nil {
		return nil, err
	}

	var subs []*algebra.Index
	if ref.Subscript != nil {
		subs = eb.indices(*ref.Subscript)
	}
	if len(subs) != tn.NumSubscripts() {
		return nil, errors.Wrapf(goamc.ErrBadSubscripts, "tensor %s: got %d subscripts, expected %d",
			tn.Name, len(subs), tn.NumSubscripts())
	}
	return &algebra.Variable{Tensor: tn, Subscripts: subs}, nil
}

func (eb *equationBuilder) expression(e *expressionExpr) (algebra.Expr, error) {
	first, err := eb.term(e.First)
	if err != nil {
		return nil, err
	}
	if e.Neg {
		first = negate(first)
	}

	terms := []algebra.Expr{first}
	for _, tail := range e.Rest {
		t, err := eb.term(tail.Term)
		if err != nil {
			return nil, err
		}
		if tail.Op == "-" {
			t = negate(t)
		}
		terms = append(terms, t)
	}

	if len(terms) == 1 {
		return terms[0], nil
	}
	return algebra.Add(terms), nil
}

func (eb *equationBuilder) term(t *termExpr) (algebra.Expr, error) {
	factors := make([]algebra.Expr, 0, len(t.Factors))
	for _, f := range t.Factors {
		expr, err := eb.factor(f)
		if err != nil {
			return nil, err
		}
		factors = append(factors, expr)
	}
	if len(factors) == 1 {
		return factors[0], nil
	}
	return algebra.Mul(factors), nil
}

func (eb *equationBuilder) factor(f *factorExpr) (algebra.Expr, error) {
	switch {
	case f.Number != nil:
		den := int64(1)
		if f.Number.Den != nil {
			den = int64(*f.Number.Den)
		}
		return algebra.Rational{Num: int64(f.Number.Num), Den: den}, nil

	case f.Sum != nil:
		subs := eb.indices(f.Sum.Subscript)
		inner, err := eb.expression(f.Sum.Expr)
		if err != nil {
			return nil, err
		}
		eb.releaseIndices(subs)
		return &algebra.Sum{Subscripts: subs, Expr: inner}, nil

	case f.Paren != nil:
		return eb.expression(f.Paren)

	case f.Variable != nil:
		return eb.variable(f.Variable)
	}
	return nil, errors.Wrap(goamc.ErrMalformed, "empty factor")
}

func negate(e algebra.Expr) algebra.Expr {
	if m, ok := e.(algebra.Mul); ok {
		return append(algebra.Mul{algebra.Rational{Num: -1, Den: 1}}, m...)
	}
	return algebra.Mul{algebra.Rational{Num: -1, Den: 1}, e}
}
