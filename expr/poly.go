package expr

import "math/big"

// Coefficients extracts numeric polynomial coefficients of e in the variable
// name, indexed by degree. ok is false when e is not a polynomial with
// constant coefficients (function calls, fractional powers, the variable in
// an exponent).
func Coefficients(e Expr, name string) ([]*Number, bool) {
	m, ok := polyCoeffs(e.Simplify(), name)
	if !ok {
		return nil, false
	}
	deg := 0
	for d, c := range m {
		if d > deg && c.Sign() != 0 {
			deg = d
		}
	}
	out := make([]*Number, deg+1)
	for i := range out {
		out[i] = Int(0)
	}
	for d, c := range m {
		if d <= deg {
			out[d] = &Number{val: c}
		}
	}
	return out, true
}

func polyCoeffs(e Expr, name string) (map[int]*big.Rat, bool) {
	switch v := e.(type) {
	case *Number:
		return map[int]*big.Rat{0: v.Rat()}, true
	case *Constant:
		n, _ := v.Eval()
		return map[int]*big.Rat{0: n.Rat()}, true
	case *Variable:
		if v.name != name {
			return nil, false
		}
		return map[int]*big.Rat{1: big.NewRat(1, 1)}, true
	case *Sum:
		acc := map[int]*big.Rat{}
		for _, t := range v.terms {
			m, ok := polyCoeffs(t, name)
			if !ok {
				return nil, false
			}
			for d, c := range m {
				if prev, seen := acc[d]; seen {
					acc[d] = new(big.Rat).Add(prev, c)
				} else {
					acc[d] = c
				}
			}
		}
		return acc, true
	case *Product:
		acc := map[int]*big.Rat{0: big.NewRat(1, 1)}
		for _, f := range v.factors {
			m, ok := polyCoeffs(f, name)
			if !ok {
				return nil, false
			}
			acc = convolve(acc, m)
		}
		return acc, true
	case *Power:
		en, ok := v.exp.(*Number)
		if !ok || !en.IsInteger() || en.Sign() < 0 || !en.val.Num().IsInt64() {
			return nil, false
		}
		n := en.val.Num().Int64()
		if n > 64 {
			return nil, false
		}
		base, ok := polyCoeffs(v.base, name)
		if !ok {
			return nil, false
		}
		acc := map[int]*big.Rat{0: big.NewRat(1, 1)}
		for i := int64(0); i < n; i++ {
			acc = convolve(acc, base)
		}
		return acc, true
	case *Call:
		return nil, false
	}
	return nil, false
}

func convolve(a, b map[int]*big.Rat) map[int]*big.Rat {
	out := map[int]*big.Rat{}
	for da, ca := range a {
		for db, cb := range b {
			p := new(big.Rat).Mul(ca, cb)
			if prev, seen := out[da+db]; seen {
				out[da+db] = new(big.Rat).Add(prev, p)
			} else {
				out[da+db] = p
			}
		}
	}
	return out
}

// Degree returns the polynomial degree of e in name, or ok=false when e is
// not a polynomial with constant coefficients.
func Degree(e Expr, name string) (int, bool) {
	coeffs, ok := Coefficients(e, name)
	if !ok {
		return 0, false
	}
	return len(coeffs) - 1, true
}

// IsPolynomial reports whether e is a polynomial in name.
func IsPolynomial(e Expr, name string) bool {
	_, ok := Coefficients(e, name)
	return ok
}

// AsQuotient splits e into numerator and denominator by pulling apart
// negative-exponent power factors, the canonical form Div produces.
// ok is false when e carries no denominator at all.
func AsQuotient(e Expr) (num, den Expr, ok bool) {
	var numFactors, denFactors []Expr
	push := func(f Expr) bool {
		p, isPow := f.(*Power)
		if isPow {
			if en, isNum := p.exp.(*Number); isNum && en.Sign() < 0 {
				denFactors = append(denFactors, Pow(p.base, numNeg(en)))
				return true
			}
		}
		numFactors = append(numFactors, f)
		return false
	}

	switch v := e.Simplify().(type) {
	case *Product:
		for _, f := range v.factors {
			push(f)
		}
	case *Power:
		push(v)
	default:
		return nil, nil, false
	}
	if len(denFactors) == 0 {
		return nil, nil, false
	}
	if len(numFactors) == 0 {
		num = Int(1)
	} else {
		num = Mul(numFactors...)
	}
	den = Mul(denFactors...)
	return num, den, true
}
