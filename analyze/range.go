package analyze

import (
	"context"
	"math"
	"math/big"

	"go.uber.org/zap"

	"github.com/funclens/funclens/expr"
)

// RangeReport is the outcome of the range analysis. Strategy names the
// technique that produced it; Approximate marks results that rest on
// sampling rather than exact reasoning.
type RangeReport struct {
	Excluded    *ExcludedSet
	Description string
	Strategy    string
	Approximate bool
	Steps       []string
}

const (
	strategyRational   = "rational"
	strategyPolynomial = "polynomial"
	strategyTrig       = "trigonometric"
	strategySampling   = "sampling"
)

// AnalyzeRange tries a chain of strategies from most to least exact:
// rational quotients, polynomials, scaled trigonometric terms, and
// finally numeric sampling over the domain.
func AnalyzeRange(ctx context.Context, f expr.Expr, dom DomainReport, opts Options) RangeReport {
	opts = opts.withDefaults()
	if rep, ok := rationalRange(f, opts); ok {
		opts.Logger.Debug("range analysis done", zap.String("strategy", rep.Strategy))
		return rep
	}
	if rep, ok := polynomialRange(f, opts); ok {
		opts.Logger.Debug("range analysis done", zap.String("strategy", rep.Strategy))
		return rep
	}
	if rep, ok := trigRange(f, opts); ok {
		opts.Logger.Debug("range analysis done", zap.String("strategy", rep.Strategy))
		return rep
	}
	rep := samplingRange(ctx, f, dom, opts)
	opts.Logger.Debug("range analysis done", zap.String("strategy", rep.Strategy))
	return rep
}

// rationalRange handles quotients of polynomials with deg(num) <= deg(den).
// The horizontal asymptote value and the images lost to removable
// discontinuities are candidates for exclusion; each candidate y is kept
// out only when num - y*den has no root inside the domain.
func rationalRange(f expr.Expr, opts Options) (RangeReport, bool) {
	x := opts.Variable
	num, den, ok := expr.AsQuotient(f)
	if !ok || !expr.ContainsVar(den, x) {
		return RangeReport{}, false
	}
	nc, ok := expr.Coefficients(num, x)
	if !ok {
		return RangeReport{}, false
	}
	dc, ok := expr.Coefficients(den, x)
	if !ok {
		return RangeReport{}, false
	}
	degN, degD := len(nc)-1, len(dc)-1
	if degN > degD {
		// The quotient grows without bound in both directions; sampling
		// handles it better than asymptote reasoning.
		return RangeReport{}, false
	}

	var trace Trace
	trace.Addf("f is a quotient of polynomials: (%s) / (%s)", num, den)

	var cands []rangeCandidate
	if degN == degD {
		lead := new(big.Rat).Quo(nc[degN].Rat(), dc[degD].Rat())
		v, _ := lead.Float64()
		cands = append(cands, rangeCandidate{value: v, exact: lead, why: "horizontal asymptote y = " + lead.RatString()})
	} else {
		cands = append(cands, rangeCandidate{value: 0, exact: big.NewRat(0, 1), why: "horizontal asymptote y = 0"})
	}

	// A hole at x = r removes the limit value from the image when the
	// numerator vanishes there too.
	dn := num.Derivative(x)
	dd := den.Derivative(x)
	for _, r := range expr.SolvePoly(dc, opts.ScanMax).Roots {
		nv, ok := expr.At(num, x, r.Value)
		if !ok || math.Abs(nv) > 1e-7 {
			continue
		}
		dnv, okN := expr.At(dn, x, r.Value)
		ddv, okD := expr.At(dd, x, r.Value)
		if !okN || !okD || math.Abs(ddv) < 1e-12 {
			continue
		}
		lim := dnv / ddv
		cands = append(cands, rangeCandidate{value: lim, why: "removable discontinuity at x = " + rootLabel(r) + " with limit " + fmtShort(lim)})
	}

	set := &ExcludedSet{}
	for _, c := range cands {
		trace.Addf("candidate missing value: %s", c.why)
		label := fmtShort(c.value)
		if c.exact != nil {
			label = c.exact.RatString()
		}
		if rationalAttained(nc, dc, den, c, x, opts) {
			trace.Addf("y = %s is attained at a finite x, so it stays in the range", label)
			continue
		}
		trace.Addf("num - y*den has no admissible root for y = %s: excluded", label)
		set.AddPoint(c.value, label, c.exact == nil)
	}

	desc := set.String()
	trace.Addf("range: %s", desc)
	return RangeReport{
		Excluded:    set,
		Description: desc,
		Strategy:    strategyRational,
		Approximate: set.HasApprox(),
		Steps:       trace.Steps(),
	}, true
}

// rangeCandidate is a value the quotient may never reach: either its
// horizontal asymptote or the lost image of a removable discontinuity.
type rangeCandidate struct {
	value float64
	exact *big.Rat
	why   string
}

// rationalAttained reports whether f(x) = y has a solution with den(x) != 0.
func rationalAttained(nc, dc []*expr.Number, den expr.Expr, c rangeCandidate, x string, opts Options) bool {
	n := len(nc)
	if len(dc) > n {
		n = len(dc)
	}
	diff := make([]*expr.Number, n)
	for i := 0; i < n; i++ {
		v := new(big.Rat)
		if i < len(nc) {
			v.Set(nc[i].Rat())
		}
		if i < len(dc) {
			y := c.exact
			if y == nil {
				y = new(big.Rat).SetFloat64(c.value)
			}
			v.Sub(v, new(big.Rat).Mul(y, dc[i].Rat()))
		}
		diff[i] = expr.FromRat(v)
	}
	for n > 1 && diff[n-1].IsZero() {
		n--
	}
	diff = diff[:n]
	if n == 1 {
		// num - y*den is a constant: either f is identically y or y is
		// never reached.
		return diff[0].IsZero()
	}
	for _, r := range expr.SolvePoly(diff, opts.ScanMax).Roots {
		dv, ok := expr.At(den, x, r.Value)
		if ok && math.Abs(dv) > 1e-9 {
			return true
		}
	}
	return false
}

// polynomialRange handles polynomials of degree >= 1. Odd degree covers all
// of R; even degree is bounded on one side by the extremum over the
// derivative's critical points.
func polynomialRange(f expr.Expr, opts Options) (RangeReport, bool) {
	x := opts.Variable
	coeffs, ok := expr.Coefficients(f, x)
	if !ok || len(coeffs) < 2 {
		return RangeReport{}, false
	}
	deg := len(coeffs) - 1

	var trace Trace
	trace.Addf("f is a polynomial of degree %d", deg)
	if deg%2 == 1 {
		trace.Addf("odd degree: f takes every real value")
		trace.Addf("range: ℝ")
		return RangeReport{
			Excluded:    &ExcludedSet{},
			Description: "ℝ",
			Strategy:    strategyPolynomial,
			Steps:       trace.Steps(),
		}, true
	}

	// Even degree: critical points of f' bracket the single global extremum
	// side; the other side is unbounded.
	dcoeffs := make([]*expr.Number, deg)
	for i := 1; i <= deg; i++ {
		dcoeffs[i-1] = expr.FromRat(new(big.Rat).Mul(coeffs[i].Rat(), big.NewRat(int64(i), 1)))
	}
	out := expr.SolvePoly(dcoeffs, opts.ScanMax)
	if len(out.Roots) == 0 {
		return RangeReport{}, false
	}

	best := math.Inf(1)
	var bestExact *big.Rat
	leadPos := coeffs[deg].Sign() > 0
	if !leadPos {
		best = math.Inf(-1)
	}
	for _, r := range out.Roots {
		var v float64
		var exact *big.Rat
		if r.Exact != nil {
			exact = hornerRat(coeffs, r.Exact.Rat())
			v, _ = exact.Float64()
		} else {
			v = hornerFloat(coeffs, r.Value)
		}
		trace.Addf("critical point x = %s gives f(x) = %s", rootLabel(r), fmtShort(v))
		if (leadPos && v < best) || (!leadPos && v > best) {
			best, bestExact = v, exact
		}
	}

	label := fmtShort(best)
	if bestExact != nil {
		label = bestExact.RatString()
	}
	set := &ExcludedSet{}
	var desc string
	if leadPos {
		set.AddInterval(Interval{Lo: math.Inf(-1), Hi: best, LoClosed: false, HiClosed: false})
		desc = "[" + label + ", ∞)"
		trace.Addf("positive leading coefficient: global minimum %s", label)
	} else {
		set.AddInterval(Interval{Lo: best, Hi: math.Inf(1), LoClosed: false, HiClosed: false})
		desc = "(-∞, " + label + "]"
		trace.Addf("negative leading coefficient: global maximum %s", label)
	}
	trace.Addf("range: %s", desc)
	return RangeReport{
		Excluded:    set,
		Description: desc,
		Strategy:    strategyPolynomial,
		Approximate: bestExact == nil,
		Steps:       trace.Steps(),
	}, true
}

func hornerRat(coeffs []*expr.Number, x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, coeffs[i].Rat())
	}
	return acc
}

func hornerFloat(coeffs []*expr.Number, x float64) float64 {
	acc := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = acc*x + coeffs[i].Float64()
	}
	return acc
}

// trigRange handles a single scaled sine or cosine term plus numeric terms:
// a*sin(u) + d covers exactly [d-|a|, d+|a|] when u is a polynomial of
// degree >= 1 in the variable.
func trigRange(f expr.Expr, opts Options) (RangeReport, bool) {
	x := opts.Variable
	terms := []expr.Expr{f}
	if s, ok := f.(*expr.Sum); ok {
		terms = s.Terms()
	}

	shift := 0.0
	amp := 0.0
	seen := false
	var osc expr.Expr
	for _, t := range terms {
		if v, ok := t.Eval(); ok {
			shift += v.Float64()
			continue
		}
		a, call, ok := splitTrigTerm(t)
		if !ok || seen {
			return RangeReport{}, false
		}
		if deg, ok := expr.Degree(call.Arg(), x); !ok || deg < 1 {
			return RangeReport{}, false
		}
		seen = true
		amp = math.Abs(a)
		osc = t
	}
	if !seen || amp == 0 {
		return RangeReport{}, false
	}

	lo, hi := shift-amp, shift+amp
	var trace Trace
	trace.Addf("f oscillates: %s has amplitude %s", osc, fmtShort(amp))
	if shift != 0 {
		trace.Addf("vertical shift %s moves the band to [%s, %s]", fmtShort(shift), fmtShort(lo), fmtShort(hi))
	}
	set := &ExcludedSet{}
	set.AddInterval(Interval{Lo: math.Inf(-1), Hi: lo, LoClosed: false, HiClosed: false})
	set.AddInterval(Interval{Lo: hi, Hi: math.Inf(1), LoClosed: false, HiClosed: false})
	desc := "[" + fmtShort(lo) + ", " + fmtShort(hi) + "]"
	trace.Addf("range: %s", desc)
	return RangeReport{
		Excluded:    set,
		Description: desc,
		Strategy:    strategyTrig,
		Steps:       trace.Steps(),
	}, true
}

// splitTrigTerm matches c * sin(u) or c * cos(u) with a numeric c.
func splitTrigTerm(t expr.Expr) (float64, *expr.Call, bool) {
	if c, ok := t.(*expr.Call); ok && (c.Func() == expr.FuncSin || c.Func() == expr.FuncCos) {
		return 1, c, true
	}
	p, ok := t.(*expr.Product)
	if !ok {
		return 0, nil, false
	}
	coeff := 1.0
	var call *expr.Call
	for _, fac := range p.Factors() {
		if v, ok := fac.Eval(); ok {
			coeff *= v.Float64()
			continue
		}
		c, ok := fac.(*expr.Call)
		if !ok || (c.Func() != expr.FuncSin && c.Func() != expr.FuncCos) || call != nil {
			return 0, nil, false
		}
		call = c
	}
	if call == nil {
		return 0, nil, false
	}
	return coeff, call, true
}

// samplingRange is the fallback: sweep the scan window, skip excluded
// inputs, and report the observed band. Always approximate.
func samplingRange(ctx context.Context, f expr.Expr, dom DomainReport, opts Options) RangeReport {
	x := opts.Variable
	var trace Trace
	trace.Addf("no closed form matched: sampling %d points over [%s, %s]",
		opts.Samples, fmtShort(opts.ScanMin), fmtShort(opts.ScanMax))

	lo, hi := math.Inf(1), math.Inf(-1)
	count := 0
	unbounded := false
	step := (opts.ScanMax - opts.ScanMin) / float64(opts.Samples)
	for i := 0; i <= opts.Samples; i++ {
		if i%256 == 0 && ctx.Err() != nil {
			break
		}
		xv := opts.ScanMin + float64(i)*step
		if dom.Excluded.Contains(xv) {
			continue
		}
		v, ok := expr.At(f, x, xv)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if math.Abs(v) > 1e8 {
			unbounded = true
			continue
		}
		count++
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	rep := RangeReport{
		Excluded:    &ExcludedSet{},
		Strategy:    strategySampling,
		Approximate: true,
	}
	switch {
	case count == 0:
		rep.Description = "could not be determined"
		trace.Addf("no admissible sample produced a finite value")
	case unbounded:
		rep.Description = "ℝ (approximate)"
		trace.Addf("sampled values exceed the overflow guard: treating the range as unbounded")
	default:
		rep.Description = "≈ [" + fmtShort(lo) + ", " + fmtShort(hi) + "]"
		rep.Excluded.AddInterval(Interval{Lo: math.Inf(-1), Hi: lo, LoClosed: false, HiClosed: false})
		rep.Excluded.AddInterval(Interval{Lo: hi, Hi: math.Inf(1), LoClosed: false, HiClosed: false})
		trace.Addf("observed values span [%s, %s]", fmtShort(lo), fmtShort(hi))
	}
	trace.Addf("range: %s", rep.Description)
	rep.Steps = trace.Steps()
	return rep
}
