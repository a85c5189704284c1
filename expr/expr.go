// Package expr implements the symbolic expression kernel behind funclens.
//
// Expressions are immutable trees over one free variable, exact rational
// constants (math/big.Rat), named irrational constants, and a small closed
// set of operators and functions. Constructors simplify on the way in, so a
// tree handed to the analyzers is already in a stable, deterministic form.
package expr

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// Expr is the closed set of expression nodes. The node method seals the
// interface so type switches over the kinds below are exhaustive.
type Expr interface {
	Simplify() Expr
	String() string
	Substitute(name string, value Expr) Expr
	Derivative(name string) Expr
	Eval() (*Number, bool)
	Equal(other Expr) bool
	node()
}

// ============================================================
// Number — exact rational constant
// ============================================================

type Number struct{ val *big.Rat }

func Int(n int64) *Number { return &Number{val: new(big.Rat).SetInt64(n)} }

func Frac(p, q int64) *Number {
	if q == 0 {
		panic("expr: zero denominator")
	}
	return &Number{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

func Float(f float64) *Number { return &Number{val: new(big.Rat).SetFloat64(f)} }

func FromRat(r *big.Rat) *Number { return &Number{val: new(big.Rat).Set(r)} }

func (n *Number) node()                         {}
func (n *Number) Simplify() Expr                { return n }
func (n *Number) Substitute(string, Expr) Expr  { return n }
func (n *Number) Derivative(string) Expr        { return Int(0) }
func (n *Number) Eval() (*Number, bool)         { return n, true }
func (n *Number) Rat() *big.Rat                 { return new(big.Rat).Set(n.val) }
func (n *Number) Float64() float64              { f, _ := n.val.Float64(); return f }
func (n *Number) Sign() int                     { return n.val.Sign() }
func (n *Number) IsZero() bool                  { return n.val.Sign() == 0 }
func (n *Number) IsOne() bool                   { return n.val.Cmp(ratOne) == 0 }
func (n *Number) IsMinusOne() bool              { return n.val.Cmp(ratMinusOne) == 0 }
func (n *Number) IsInteger() bool               { return n.val.IsInt() }

var (
	ratOne      = new(big.Rat).SetInt64(1)
	ratMinusOne = new(big.Rat).SetInt64(-1)
)

func (n *Number) Equal(other Expr) bool {
	o, ok := other.(*Number)
	return ok && n.val.Cmp(o.val) == 0
}

func (n *Number) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func numAdd(a, b *Number) *Number { return &Number{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Number) *Number { return &Number{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Number) *Number    { return &Number{val: new(big.Rat).Neg(a.val)} }

func numRecip(a *Number) (*Number, bool) {
	if a.IsZero() {
		return nil, false
	}
	return &Number{val: new(big.Rat).Inv(a.val)}, true
}

// ============================================================
// Variable — the free variable
// ============================================================

type Variable struct{ name string }

func Var(name string) *Variable { return &Variable{name: name} }

func (v *Variable) node()                 {}
func (v *Variable) Simplify() Expr        { return v }
func (v *Variable) String() string        { return v.name }
func (v *Variable) Name() string          { return v.name }
func (v *Variable) Eval() (*Number, bool) { return nil, false }

func (v *Variable) Equal(other Expr) bool {
	o, ok := other.(*Variable)
	return ok && v.name == o.name
}

func (v *Variable) Substitute(name string, value Expr) Expr {
	if v.name == name {
		return value
	}
	return v
}

func (v *Variable) Derivative(name string) Expr {
	if v.name == name {
		return Int(1)
	}
	return Int(0)
}

// ============================================================
// Constant — named irrational constant
// ============================================================

type Constant struct {
	name string
	val  float64
}

func Pi() *Constant { return &Constant{name: "pi", val: math.Pi} }
func E() *Constant  { return &Constant{name: "e", val: math.E} }

func (c *Constant) node()                        {}
func (c *Constant) Simplify() Expr               { return c }
func (c *Constant) String() string               { return c.name }
func (c *Constant) Name() string                 { return c.name }
func (c *Constant) Substitute(string, Expr) Expr { return c }
func (c *Constant) Derivative(string) Expr       { return Int(0) }
func (c *Constant) Eval() (*Number, bool)        { return Float(c.val), true }

func (c *Constant) Equal(other Expr) bool {
	o, ok := other.(*Constant)
	return ok && c.name == o.name
}

// ============================================================
// Sum — n-ary addition
// ============================================================

type Sum struct{ terms []Expr }

func Add(terms ...Expr) Expr { return (&Sum{terms: terms}).Simplify() }

func Sub(a, b Expr) Expr { return Add(a, Neg(b)) }

func (s *Sum) node()         {}
func (s *Sum) Terms() []Expr { return s.terms }

func (s *Sum) Simplify() Expr {
	flat := make([]Expr, 0, len(s.terms))
	for _, t := range s.terms {
		switch v := t.Simplify().(type) {
		case *Sum:
			flat = append(flat, v.terms...)
		default:
			flat = append(flat, v)
		}
	}

	// Fold numeric terms and collect like terms by their non-numeric part.
	acc := Int(0)
	type group struct {
		coeff *Number
		rest  Expr
	}
	groups := map[string]*group{}
	order := []string{}
	for _, t := range flat {
		if n, ok := t.(*Number); ok {
			acc = numAdd(acc, n)
			continue
		}
		coeff, rest := splitCoefficient(t)
		key := rest.String()
		g, seen := groups[key]
		if !seen {
			groups[key] = &group{coeff: coeff, rest: rest}
			order = append(order, key)
			continue
		}
		g.coeff = numAdd(g.coeff, coeff)
	}

	sort.Strings(order)
	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		switch {
		case g.coeff.IsZero():
		case g.coeff.IsOne():
			result = append(result, g.rest)
		default:
			result = append(result, Mul(g.coeff, g.rest))
		}
	}
	if !acc.IsZero() {
		result = append(result, acc)
	}

	switch len(result) {
	case 0:
		return Int(0)
	case 1:
		return result[0]
	}
	return &Sum{terms: result}
}

func (s *Sum) String() string {
	if len(s.terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range s.terms {
		part := t.String()
		if i == 0 {
			b.WriteString(part)
			continue
		}
		if rest, ok := strings.CutPrefix(part, "-"); ok {
			b.WriteString(" - ")
			b.WriteString(rest)
		} else {
			b.WriteString(" + ")
			b.WriteString(part)
		}
	}
	return b.String()
}

func (s *Sum) Substitute(name string, value Expr) Expr {
	out := make([]Expr, len(s.terms))
	for i, t := range s.terms {
		out[i] = t.Substitute(name, value)
	}
	return Add(out...)
}

func (s *Sum) Derivative(name string) Expr {
	out := make([]Expr, len(s.terms))
	for i, t := range s.terms {
		out[i] = t.Derivative(name)
	}
	return Add(out...)
}

func (s *Sum) Eval() (*Number, bool) {
	acc := Int(0)
	for _, t := range s.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (s *Sum) Equal(other Expr) bool {
	o, ok := other.(*Sum)
	if !ok || len(s.terms) != len(o.terms) {
		return false
	}
	for i := range s.terms {
		if !s.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

// ============================================================
// Product — n-ary multiplication
// ============================================================

type Product struct{ factors []Expr }

func Mul(factors ...Expr) Expr { return (&Product{factors: factors}).Simplify() }

func Neg(e Expr) Expr { return Mul(Int(-1), e) }

// Div builds a/b as a * b^-1, the canonical quotient form.
func Div(a, b Expr) Expr { return Mul(a, Pow(b, Int(-1))) }

func (p *Product) node()           {}
func (p *Product) Factors() []Expr { return p.factors }

func (p *Product) Simplify() Expr {
	flat := make([]Expr, 0, len(p.factors))
	for _, f := range p.factors {
		switch v := f.Simplify().(type) {
		case *Product:
			flat = append(flat, v.factors...)
		default:
			flat = append(flat, v)
		}
	}

	coeff := Int(1)
	// Merge factors sharing a base into one power: x * x^-1 -> 1.
	type group struct {
		base Expr
		exp  Expr
	}
	groups := map[string]*group{}
	order := []string{}
	for _, f := range flat {
		if n, ok := f.(*Number); ok {
			coeff = numMul(coeff, n)
			continue
		}
		base, exp := Expr(f), Expr(Int(1))
		if pw, ok := f.(*Power); ok {
			base, exp = pw.base, pw.exp
		}
		key := base.String()
		g, seen := groups[key]
		if !seen {
			groups[key] = &group{base: base, exp: exp}
			order = append(order, key)
			continue
		}
		g.exp = Add(g.exp, exp)
	}

	sort.Strings(order)
	rest := make([]Expr, 0, len(order))
	for _, key := range order {
		g := groups[key]
		f := Pow(g.base, g.exp)
		if n, ok := f.(*Number); ok {
			coeff = numMul(coeff, n)
			continue
		}
		rest = append(rest, f)
	}

	if coeff.IsZero() {
		return Int(0)
	}
	if len(rest) == 0 {
		return coeff
	}
	if coeff.IsOne() {
		if len(rest) == 1 {
			return rest[0]
		}
		return &Product{factors: rest}
	}
	return &Product{factors: append([]Expr{coeff}, rest...)}
}

func (p *Product) String() string {
	if len(p.factors) == 0 {
		return "1"
	}
	parts := make([]string, 0, len(p.factors))
	prefix := ""
	for i, f := range p.factors {
		if i == 0 {
			if n, ok := f.(*Number); ok && n.IsMinusOne() && len(p.factors) > 1 {
				prefix = "-"
				continue
			}
		}
		s := f.String()
		if _, ok := f.(*Sum); ok {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	return prefix + strings.Join(parts, "*")
}

func (p *Product) Substitute(name string, value Expr) Expr {
	out := make([]Expr, len(p.factors))
	for i, f := range p.factors {
		out[i] = f.Substitute(name, value)
	}
	return Mul(out...)
}

// Derivative applies the product rule over all factors.
func (p *Product) Derivative(name string) Expr {
	terms := make([]Expr, len(p.factors))
	for i, fi := range p.factors {
		parts := make([]Expr, 0, len(p.factors))
		parts = append(parts, fi.Derivative(name))
		for j, fj := range p.factors {
			if j != i {
				parts = append(parts, fj)
			}
		}
		terms[i] = Mul(parts...)
	}
	return Add(terms...)
}

func (p *Product) Eval() (*Number, bool) {
	acc := Int(1)
	for _, f := range p.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (p *Product) Equal(other Expr) bool {
	o, ok := other.(*Product)
	if !ok || len(p.factors) != len(o.factors) {
		return false
	}
	for i := range p.factors {
		if !p.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

// splitCoefficient splits e into a leading numeric coefficient and the rest.
func splitCoefficient(e Expr) (*Number, Expr) {
	p, ok := e.(*Product)
	if !ok || len(p.factors) < 2 {
		return Int(1), e
	}
	n, ok := p.factors[0].(*Number)
	if !ok {
		return Int(1), e
	}
	rest := p.factors[1:]
	if len(rest) == 1 {
		return n, rest[0]
	}
	return n, &Product{factors: rest}
}

// ============================================================
// Power — base^exponent
// ============================================================

type Power struct{ base, exp Expr }

func Pow(base, exp Expr) Expr { return (&Power{base: base, exp: exp}).Simplify() }

// Sqrt is the canonical square root form base^(1/2).
func Sqrt(e Expr) Expr { return Pow(e, Frac(1, 2)) }

func (p *Power) node()          {}
func (p *Power) Base() Expr     { return p.base }
func (p *Power) Exponent() Expr { return p.exp }

func (p *Power) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Number); ok {
		if en.IsZero() {
			if bn, ok := base.(*Number); ok && bn.IsZero() {
				// 0^0 stays symbolic; Eval reports it undefined.
				return &Power{base: base, exp: exp}
			}
			return Int(1)
		}
		if en.IsOne() {
			return base
		}
	}

	if bn, ok := base.(*Number); ok {
		if bn.IsZero() {
			if en, ok := exp.(*Number); ok && en.Sign() < 0 {
				// 0^negative is a division by zero; keep it for Eval to reject.
				return &Power{base: base, exp: exp}
			}
			return Int(0)
		}
		if bn.IsOne() {
			return Int(1)
		}
		if en, ok := exp.(*Number); ok {
			if r, done := numPow(bn, en); done {
				return r
			}
		}
	}

	if inner, ok := base.(*Power); ok {
		return Pow(inner.base, Mul(inner.exp, exp))
	}
	return &Power{base: base, exp: exp}
}

// numPow folds small integer powers and exact even roots of rationals.
// 0^0 and 0^negative never fold; Eval reports them undefined.
func numPow(b, e *Number) (*Number, bool) {
	if b.IsZero() && e.Sign() <= 0 {
		return nil, false
	}
	if e.IsInteger() {
		if !e.val.Num().IsInt64() {
			return nil, false
		}
		n := e.val.Num().Int64()
		if n > 40 || n < -40 {
			return nil, false
		}
		mag := n
		if mag < 0 {
			mag = -mag
		}
		acc := Int(1)
		for i := int64(0); i < mag; i++ {
			acc = numMul(acc, b)
		}
		if n < 0 {
			r, ok := numRecip(acc)
			if !ok {
				return nil, false
			}
			return r, true
		}
		return acc, true
	}
	// Exact square root of a perfect-square rational, e.g. sqrt(4) -> 2.
	if e.val.Cmp(new(big.Rat).SetFrac64(1, 2)) == 0 && b.Sign() >= 0 {
		num := new(big.Int).Sqrt(b.val.Num())
		den := new(big.Int).Sqrt(b.val.Denom())
		if new(big.Int).Mul(num, num).Cmp(b.val.Num()) == 0 &&
			new(big.Int).Mul(den, den).Cmp(b.val.Denom()) == 0 {
			return &Number{val: new(big.Rat).SetFrac(num, den)}, true
		}
	}
	return nil, false
}

func (p *Power) String() string {
	if en, ok := p.exp.(*Number); ok && en.val.Cmp(new(big.Rat).SetFrac64(1, 2)) == 0 {
		return "sqrt(" + p.base.String() + ")"
	}
	baseStr := p.base.String()
	switch p.base.(type) {
	case *Sum, *Product:
		baseStr = "(" + baseStr + ")"
	}
	expStr := p.exp.String()
	switch p.exp.(type) {
	case *Sum, *Product:
		expStr = "(" + expStr + ")"
	default:
		if strings.ContainsAny(expStr, "/") {
			expStr = "(" + expStr + ")"
		}
	}
	return baseStr + "^" + expStr
}

func (p *Power) Substitute(name string, value Expr) Expr {
	return Pow(p.base.Substitute(name, value), p.exp.Substitute(name, value))
}

func (p *Power) Derivative(name string) Expr {
	du := p.base.Derivative(name)
	if _, ok := p.exp.Eval(); ok {
		// d/dx u^c = c*u^(c-1)*u'
		return Mul(p.exp, Pow(p.base, Add(p.exp, Int(-1))), du)
	}
	dv := p.exp.Derivative(name)
	if _, ok := p.base.Eval(); ok {
		// d/dx c^v = c^v * ln(c) * v'
		return Mul(Pow(p.base, p.exp), Log(p.base), dv)
	}
	// General case: u^v * (v'*ln(u) + v*u'/u)
	return Mul(Pow(p.base, p.exp),
		Add(Mul(dv, Log(p.base)), Mul(p.exp, du, Pow(p.base, Int(-1)))))
}

func (p *Power) Eval() (*Number, bool) {
	b, ok := p.base.Eval()
	if !ok {
		return nil, false
	}
	e, ok := p.exp.Eval()
	if !ok {
		return nil, false
	}
	if r, done := numPow(b, e); done {
		return r, true
	}
	if b.IsZero() && e.Sign() <= 0 {
		return nil, false
	}
	f := math.Pow(b.Float64(), e.Float64())
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return Float(f), true
}

func (p *Power) Equal(other Expr) bool {
	o, ok := other.(*Power)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

// ============================================================
// Call — named function application
// ============================================================

// FuncName enumerates the supported functions. Square roots are represented
// as Power nodes with exponent 1/2, and log with an explicit base is lowered
// to a quotient of natural logs at parse time, so the set stays closed.
type FuncName string

const (
	FuncSin FuncName = "sin"
	FuncCos FuncName = "cos"
	FuncTan FuncName = "tan"
	FuncLog FuncName = "log"
	FuncExp FuncName = "exp"
	FuncAbs FuncName = "abs"
)

type Call struct {
	fn  FuncName
	arg Expr
}

func Sin(arg Expr) Expr { return (&Call{fn: FuncSin, arg: arg}).Simplify() }
func Cos(arg Expr) Expr { return (&Call{fn: FuncCos, arg: arg}).Simplify() }
func Tan(arg Expr) Expr { return (&Call{fn: FuncTan, arg: arg}).Simplify() }
func Log(arg Expr) Expr { return (&Call{fn: FuncLog, arg: arg}).Simplify() }
func Exp(arg Expr) Expr { return (&Call{fn: FuncExp, arg: arg}).Simplify() }
func Abs(arg Expr) Expr { return (&Call{fn: FuncAbs, arg: arg}).Simplify() }

// LogBase lowers log base b to ln(arg)/ln(b).
func LogBase(arg, base Expr) Expr { return Div(Log(arg), Log(base)) }

func (c *Call) node()          {}
func (c *Call) Func() FuncName { return c.fn }
func (c *Call) Arg() Expr      { return c.arg }

func (c *Call) Simplify() Expr {
	arg := c.arg.Simplify()
	if n, ok := arg.(*Number); ok {
		switch c.fn {
		case FuncSin:
			if n.IsZero() {
				return Int(0)
			}
		case FuncCos:
			if n.IsZero() {
				return Int(1)
			}
		case FuncTan:
			if n.IsZero() {
				return Int(0)
			}
		case FuncLog:
			if n.IsOne() {
				return Int(0)
			}
		case FuncExp:
			if n.IsZero() {
				return Int(1)
			}
		case FuncAbs:
			if n.Sign() >= 0 {
				return n
			}
			return numNeg(n)
		}
	}
	switch c.fn {
	case FuncLog:
		if inner, ok := arg.(*Call); ok && inner.fn == FuncExp {
			return inner.arg
		}
		if cst, ok := arg.(*Constant); ok && cst.name == "e" {
			return Int(1)
		}
	case FuncExp:
		if inner, ok := arg.(*Call); ok && inner.fn == FuncLog {
			return inner.arg
		}
	case FuncAbs:
		if coeff, rest := splitCoefficient(arg); coeff.Sign() < 0 {
			return Abs(Mul(numNeg(coeff), rest))
		}
	}
	return &Call{fn: c.fn, arg: arg}
}

func (c *Call) String() string { return string(c.fn) + "(" + c.arg.String() + ")" }

func (c *Call) Substitute(name string, value Expr) Expr {
	return (&Call{fn: c.fn, arg: c.arg.Substitute(name, value)}).Simplify()
}

func (c *Call) Derivative(name string) Expr {
	du := c.arg.Derivative(name)
	var outer Expr
	switch c.fn {
	case FuncSin:
		outer = Cos(c.arg)
	case FuncCos:
		outer = Neg(Sin(c.arg))
	case FuncTan:
		outer = Add(Int(1), Pow(Tan(c.arg), Int(2)))
	case FuncLog:
		outer = Pow(c.arg, Int(-1))
	case FuncExp:
		outer = Exp(c.arg)
	case FuncAbs:
		outer = Mul(c.arg, Pow(Abs(c.arg), Int(-1)))
	}
	return Mul(outer, du)
}

func (c *Call) Eval() (*Number, bool) {
	n, ok := c.arg.Eval()
	if !ok {
		return nil, false
	}
	v := n.Float64()
	var f float64
	switch c.fn {
	case FuncSin:
		f = math.Sin(v)
	case FuncCos:
		f = math.Cos(v)
	case FuncTan:
		if math.Abs(math.Cos(v)) < 1e-12 {
			return nil, false
		}
		f = math.Tan(v)
	case FuncLog:
		if v <= 0 {
			return nil, false
		}
		f = math.Log(v)
	case FuncExp:
		f = math.Exp(v)
	case FuncAbs:
		f = math.Abs(v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return Float(f), true
}

func (c *Call) Equal(other Expr) bool {
	o, ok := other.(*Call)
	return ok && c.fn == o.fn && c.arg.Equal(o.arg)
}

// ============================================================
// Traversal helpers
// ============================================================

// Walk visits every node of e in depth-first order.
func Walk(e Expr, visit func(Expr)) {
	visit(e)
	switch v := e.(type) {
	case *Sum:
		for _, t := range v.terms {
			Walk(t, visit)
		}
	case *Product:
		for _, f := range v.factors {
			Walk(f, visit)
		}
	case *Power:
		Walk(v.base, visit)
		Walk(v.exp, visit)
	case *Call:
		Walk(v.arg, visit)
	}
}

// FreeVars returns the set of variable names occurring in e.
func FreeVars(e Expr) map[string]struct{} {
	out := map[string]struct{}{}
	Walk(e, func(n Expr) {
		if v, ok := n.(*Variable); ok {
			out[v.name] = struct{}{}
		}
	})
	return out
}

// ContainsVar reports whether the variable name occurs in e.
func ContainsVar(e Expr, name string) bool {
	_, ok := FreeVars(e)[name]
	return ok
}

// At substitutes a float for the variable and evaluates numerically.
func At(e Expr, name string, x float64) (float64, bool) {
	v, ok := e.Substitute(name, Float(x)).Eval()
	if !ok {
		return 0, false
	}
	f := v.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
