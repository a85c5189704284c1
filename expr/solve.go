package expr

import (
	"math"
	"math/big"
	"sort"
)

// Root is one real solution. Exact is set when the root is a known rational;
// approximate roots found numerically leave it nil.
type Root struct {
	Value float64
	Exact *Number
}

// SolveOutcome collects the real roots of one equation. Closed reports that a
// closed-form formula produced them (linear, quadratic, Cardano); otherwise
// the roots come from a capped numeric scan and carry scan accuracy only.
type SolveOutcome struct {
	Roots  []Root
	Closed bool
}

// Solver caps keep pathological inputs bounded.
const (
	maxNewtonIter = 100
	maxBisectIter = 80
	rootDedupeTol = 1e-7
	rootResidTol  = 1e-9
)

// SolvePoly finds the real roots of the polynomial with the given
// coefficients (index = degree). Degrees 1-3 use closed forms; higher degrees
// fall back to a Newton grid scan over [-scan, scan].
func SolvePoly(coeffs []*Number, scan float64) SolveOutcome {
	// Strip leading zeros.
	for len(coeffs) > 1 && coeffs[len(coeffs)-1].IsZero() {
		coeffs = coeffs[:len(coeffs)-1]
	}
	switch len(coeffs) {
	case 0, 1:
		return SolveOutcome{Closed: true}
	case 2:
		return solveLinear(coeffs[1], coeffs[0])
	case 3:
		return solveQuadratic(coeffs[2], coeffs[1], coeffs[0])
	case 4:
		return solveCubic(coeffs[2].Float64()/coeffs[3].Float64(),
			coeffs[1].Float64()/coeffs[3].Float64(),
			coeffs[0].Float64()/coeffs[3].Float64())
	}
	f := func(x float64) float64 {
		acc := 0.0
		for d := len(coeffs) - 1; d >= 0; d-- {
			acc = acc*x + coeffs[d].Float64()
		}
		return acc
	}
	df := func(x float64) float64 {
		acc := 0.0
		for d := len(coeffs) - 1; d >= 1; d-- {
			acc = acc*x + float64(d)*coeffs[d].Float64()
		}
		return acc
	}
	return SolveOutcome{Roots: newtonScan(f, df, scan)}
}

// a*x + b = 0
func solveLinear(a, b *Number) SolveOutcome {
	if a.IsZero() {
		return SolveOutcome{Closed: true}
	}
	r := new(big.Rat).Neg(b.val)
	r.Quo(r, a.val)
	exact := &Number{val: r}
	return SolveOutcome{Roots: []Root{{Value: exact.Float64(), Exact: exact}}, Closed: true}
}

// a*x^2 + b*x + c = 0
func solveQuadratic(a, b, c *Number) SolveOutcome {
	if a.IsZero() {
		return solveLinear(b, c)
	}
	// disc = b^2 - 4ac, exact.
	disc := new(big.Rat).Mul(b.val, b.val)
	four := new(big.Rat).SetInt64(4)
	disc.Sub(disc, new(big.Rat).Mul(four, new(big.Rat).Mul(a.val, c.val)))
	sign := disc.Sign()
	if sign < 0 {
		return SolveOutcome{Closed: true}
	}
	if sqrtRat, ok := ratSqrt(disc); ok {
		twoA := new(big.Rat).Add(a.val, a.val)
		negB := new(big.Rat).Neg(b.val)
		r1 := new(big.Rat).Add(negB, sqrtRat)
		r1.Quo(r1, twoA)
		r2 := new(big.Rat).Sub(negB, sqrtRat)
		r2.Quo(r2, twoA)
		e1, e2 := &Number{val: r1}, &Number{val: r2}
		roots := []Root{{Value: e1.Float64(), Exact: e1}, {Value: e2.Float64(), Exact: e2}}
		if sign == 0 {
			roots = roots[:1]
		}
		sortRoots(roots)
		return SolveOutcome{Roots: roots, Closed: true}
	}
	af, bf := ratF(a.val), ratF(b.val)
	sq := math.Sqrt(ratF(disc))
	roots := []Root{{Value: (-bf - sq) / (2 * af)}, {Value: (-bf + sq) / (2 * af)}}
	sortRoots(roots)
	return SolveOutcome{Roots: roots, Closed: true}
}

// Depressed-form Cardano for x^3 + b*x^2 + c*x + d = 0 (monic input).
func solveCubic(b, c, d float64) SolveOutcome {
	p := c - b*b/3
	q := 2*b*b*b/27 - b*c/3 + d
	offset := b / 3
	disc := -(4*p*p*p + 27*q*q)
	// A computed discriminant is never exactly zero at a repeated root, so
	// the classification compares against a tolerance scaled to its terms.
	eps := 1e-9 * (4*math.Abs(p*p*p) + 27*q*q + 1)

	var roots []Root
	switch {
	case disc > eps:
		m := 2 * math.Sqrt(-p/3)
		theta := math.Acos(3*q/(p*m)) / 3
		for k := 0; k < 3; k++ {
			roots = append(roots, Root{Value: m*math.Cos(theta-2*math.Pi*float64(k)/3) - offset})
		}
	case disc >= -eps:
		if math.Abs(p) <= eps {
			// p and q both vanish: triple root.
			roots = []Root{{Value: -offset}}
		} else {
			roots = []Root{{Value: 3*q/p - offset}, {Value: -3*q/(2*p) - offset}}
		}
	default:
		shift := math.Sqrt(q*q/4 + p*p*p/27)
		u := math.Cbrt(-q/2 + shift)
		v := 0.0
		if u != 0 {
			v = -p / (3 * u)
		}
		roots = []Root{{Value: u + v - offset}}
	}
	sortRoots(roots)
	return SolveOutcome{Roots: roots, Closed: true}
}

// newtonScan seeds Newton iterations from a grid over [-scan, scan],
// deduplicating converged roots. Iteration counts are capped.
func newtonScan(f, df func(float64) float64, scan float64) []Root {
	if scan <= 0 {
		scan = 100
	}
	const seeds = 200
	var found []float64
	for i := 0; i <= seeds; i++ {
		x := -scan + 2*scan*float64(i)/seeds
		for iter := 0; iter < maxNewtonIter; iter++ {
			fx := f(x)
			if math.IsNaN(fx) {
				break
			}
			if math.Abs(fx) < rootResidTol {
				if !containsNear(found, x, rootDedupeTol) {
					found = append(found, x)
				}
				break
			}
			dfx := df(x)
			if math.IsNaN(dfx) || math.Abs(dfx) < 1e-15 {
				break
			}
			x -= fx / dfx
			if math.Abs(x) > scan*10 {
				break
			}
		}
	}
	sort.Float64s(found)
	roots := make([]Root, len(found))
	for i, r := range found {
		roots[i] = Root{Value: r}
	}
	return roots
}

// BisectScan locates sign changes of f on [lo, hi] by uniform sampling and
// refines each bracket by bisection. A sign change across a pole is not a
// zero: candidates where f is undefined or larger than at the bracket edges
// are rejected.
func BisectScan(f func(float64) (float64, bool), lo, hi float64, samples int) []Root {
	if samples < 2 {
		samples = 256
	}
	var roots []Root
	step := (hi - lo) / float64(samples)
	prevX := lo
	prevV, prevOK := f(lo)
	for i := 1; i <= samples; i++ {
		x := lo + step*float64(i)
		v, ok := f(x)
		if ok && prevOK {
			if prevV == 0 {
				roots = appendRoot(roots, prevX)
			} else if v == 0 {
				roots = appendRoot(roots, x)
			} else if (prevV < 0) != (v < 0) {
				r := bisect(f, prevX, x, prevV)
				rv, rok := f(r)
				if rok && math.Abs(rv) <= math.Min(math.Abs(prevV), math.Abs(v)) {
					roots = appendRoot(roots, r)
				}
			}
		}
		prevX, prevV, prevOK = x, v, ok
	}
	return roots
}

func bisect(f func(float64) (float64, bool), lo, hi, loV float64) float64 {
	for i := 0; i < maxBisectIter; i++ {
		mid := (lo + hi) / 2
		v, ok := f(mid)
		if !ok || v == 0 {
			return mid
		}
		if (v < 0) == (loV < 0) {
			lo, loV = mid, v
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

func appendRoot(roots []Root, x float64) []Root {
	for _, r := range roots {
		if math.Abs(r.Value-x) < rootDedupeTol {
			return roots
		}
	}
	return append(roots, Root{Value: x})
}

func containsNear(xs []float64, x, tol float64) bool {
	for _, v := range xs {
		if math.Abs(v-x) < tol {
			return true
		}
	}
	return false
}

func sortRoots(roots []Root) {
	sort.Slice(roots, func(i, j int) bool { return roots[i].Value < roots[j].Value })
}

// ratSqrt returns the exact square root of a non-negative rational when both
// numerator and denominator are perfect squares.
func ratSqrt(r *big.Rat) (*big.Rat, bool) {
	if r.Sign() < 0 {
		return nil, false
	}
	num := new(big.Int).Sqrt(r.Num())
	den := new(big.Int).Sqrt(r.Denom())
	if new(big.Int).Mul(num, num).Cmp(r.Num()) != 0 ||
		new(big.Int).Mul(den, den).Cmp(r.Denom()) != 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(num, den), true
}

func ratF(r *big.Rat) float64 { f, _ := r.Float64(); return f }
