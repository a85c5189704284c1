package analyze

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/funclens/funclens/expr"
)

// DomainReport is the outcome of the domain analysis: the excluded values,
// their rendered complement, and the derivation steps.
type DomainReport struct {
	Excluded    *ExcludedSet
	Description string
	Steps       []string
}

// AnalyzeDomain walks the expression structurally and emits one exclusion
// rule per risky subexpression: denominators, even roots, logarithms and
// tangent poles. Each rule leaves a trace line even when it contributes
// nothing.
func AnalyzeDomain(ctx context.Context, f expr.Expr, opts Options) DomainReport {
	opts = opts.withDefaults()
	x := opts.Variable
	set := &ExcludedSet{}
	var trace Trace

	// Collect risky subexpressions in one pass.
	var denominators, evenRoots, strictPositive, tanArgs []expr.Expr
	seen := map[string]bool{}
	note := func(bucket *[]expr.Expr, kind string, e expr.Expr) {
		key := kind + "|" + e.String()
		if seen[key] {
			return
		}
		seen[key] = true
		*bucket = append(*bucket, e)
	}
	expr.Walk(f, func(n expr.Expr) {
		switch v := n.(type) {
		case *expr.Power:
			en, ok := v.Exponent().(*expr.Number)
			if !ok || !expr.ContainsVar(v.Base(), x) {
				return
			}
			rat := en.Rat()
			evenIndex := !en.IsInteger() && rat.Denom().Bit(0) == 0
			switch {
			case evenIndex && en.Sign() < 0:
				// Even root in a denominator: radicand must be strictly positive.
				note(&strictPositive, "pos", v.Base())
			case evenIndex:
				note(&evenRoots, "root", v.Base())
			case en.Sign() < 0:
				note(&denominators, "den", v.Base())
			}
		case *expr.Call:
			if !expr.ContainsVar(v.Arg(), x) {
				return
			}
			switch v.Func() {
			case expr.FuncLog:
				note(&strictPositive, "pos", v.Arg())
			case expr.FuncTan:
				note(&tanArgs, "tan", v.Arg())
			}
		}
	})

	numerator := topLevelNumerator(f)

	// Division rule.
	if len(denominators) == 0 {
		trace.Addf("Checked for division: no denominator depends on %s.", x)
	}
	for _, den := range denominators {
		trace.Addf("Division by %s: require %s ≠ 0.", den, den)
		excludeZeros(ctx, den, numerator, x, set, &trace, opts)
	}

	// Even root rule (radicand ≥ 0).
	if len(evenRoots) == 0 && len(strictPositive) == 0 {
		trace.Addf("Checked for even roots: none found.")
	}
	for _, rad := range evenRoots {
		trace.Addf("Even root of %s: require %s ≥ 0.", rad, rad)
		excludeRegion(ctx, rad, false, x, set, &trace, opts)
	}

	// Logarithm rule (argument > 0), shared with even roots in denominators.
	if len(strictPositive) == 0 {
		trace.Addf("Checked for logarithms: none found.")
	}
	for _, arg := range strictPositive {
		trace.Addf("Require %s > 0.", arg)
		excludeRegion(ctx, arg, true, x, set, &trace, opts)
	}

	// Tangent pole rule.
	if len(tanArgs) == 0 {
		trace.Addf("Checked for tangent poles: none found.")
	}
	for _, arg := range tanArgs {
		trace.Addf("tan(%s) has poles where cos(%s) = 0.", arg, arg)
		excludeTanPoles(ctx, arg, x, set, &trace, opts)
	}

	desc := set.String()
	trace.Addf("Domain: %s", desc)
	opts.Logger.Debug("domain analysis done",
		zap.String("expr", f.String()), zap.String("domain", desc))
	return DomainReport{Excluded: set, Description: desc, Steps: trace.Steps()}
}

// topLevelNumerator returns the numerator when f is a quotient, used to spot
// removable discontinuities.
func topLevelNumerator(f expr.Expr) expr.Expr {
	if num, _, ok := expr.AsQuotient(f); ok {
		return num
	}
	return nil
}

// excludeZeros removes the zero set of a denominator. Polynomial
// denominators are solved; anything else is sampled for sign changes and
// reported as approximate.
func excludeZeros(ctx context.Context, den, numerator expr.Expr, x string, set *ExcludedSet, trace *Trace, opts Options) {
	if coeffs, ok := expr.Coefficients(den, x); ok {
		out := expr.SolvePoly(coeffs, opts.ScanMax)
		if len(out.Roots) == 0 {
			trace.Addf("%s = 0 has no real solution; nothing excluded.", den)
			return
		}
		for _, r := range out.Roots {
			label := rootLabel(r)
			set.AddPoint(r.Value, label, !out.Closed)
			trace.Addf("%s = 0 at x = %s: excluded.", den, label)
			if numerator != nil {
				if nv, ok := expr.At(numerator, x, r.Value); ok && math.Abs(nv) < containsTol {
					trace.Addf("Numerator also vanishes at x = %s: removable discontinuity, still excluded from the domain.", label)
				}
			}
		}
		return
	}

	roots := scanZeros(ctx, den, x, opts)
	if len(roots) == 0 {
		trace.Addf("%s has no zero in the scanned range; nothing excluded.", den)
		return
	}
	for _, r := range roots {
		label := "near x ≈ " + fmtShort(r.Value)
		set.AddPoint(r.Value, fmtShort(r.Value), true)
		trace.Addf("%s = 0 %s (found numerically): excluded.", den, label)
	}
}

// excludeRegion removes the region where e < 0 (strict=false, even roots) or
// e ≤ 0 (strict=true, logarithms). Linear and quadratic expressions are
// solved exactly; anything else is sampled.
func excludeRegion(ctx context.Context, e expr.Expr, strict bool, x string, set *ExcludedSet, trace *Trace, opts Options) {
	coeffs, ok := expr.Coefficients(e, x)
	if ok && len(coeffs) <= 3 {
		ivs := negativeRegion(coeffs, strict)
		if len(ivs) == 0 {
			trace.Addf("%s never violates the condition; nothing excluded.", e)
			return
		}
		for _, iv := range ivs {
			set.AddInterval(iv)
			trace.Addf("Condition fails on %s: excluded.", iv)
		}
		return
	}

	// Numeric fallback: sample the sign of e over the scan range.
	bad := func(v float64) bool {
		if strict {
			return v <= 0
		}
		return v < 0
	}
	ivs := scanRegion(ctx, e, x, bad, opts)
	if len(ivs) == 0 {
		trace.Addf("Sampled %s over [%s, %s]: condition holds everywhere checked.",
			e, fmtShort(opts.ScanMin), fmtShort(opts.ScanMax))
		return
	}
	for _, iv := range ivs {
		set.AddInterval(iv)
		trace.Addf("Sampled %s: condition fails near %s (approximate): excluded.", e, iv)
	}
}

// negativeRegion returns the intervals where the degree ≤ 2 polynomial is
// negative (or non-positive when strict).
func negativeRegion(coeffs []*expr.Number, strict bool) []Interval {
	inf := math.Inf(1)
	switch len(coeffs) {
	case 0:
		return nil
	case 1:
		c := coeffs[0].Float64()
		if c < 0 || (strict && c == 0) {
			return []Interval{{Lo: -inf, Hi: inf}}
		}
		return nil
	case 2:
		a, b := coeffs[1].Float64(), coeffs[0].Float64()
		r := -b / a
		if a > 0 {
			return []Interval{{Lo: -inf, Hi: r, HiClosed: strict}}
		}
		return []Interval{{Lo: r, Hi: inf, LoClosed: strict}}
	}

	a := coeffs[2].Float64()
	out := expr.SolvePoly(coeffs, 0)
	switch len(out.Roots) {
	case 0:
		if a < 0 {
			// Negative everywhere: nothing remains.
			return []Interval{{Lo: -inf, Hi: inf}}
		}
		return nil
	case 1:
		r := out.Roots[0].Value
		if a < 0 {
			return []Interval{{Lo: -inf, Hi: r, HiClosed: strict}, {Lo: r, Hi: inf, LoClosed: strict}}
		}
		if strict {
			return []Interval{{Lo: r, Hi: r, LoClosed: true, HiClosed: true}}
		}
		return nil
	}
	r1, r2 := out.Roots[0].Value, out.Roots[1].Value
	if a > 0 {
		return []Interval{{Lo: r1, Hi: r2, LoClosed: strict, HiClosed: strict}}
	}
	return []Interval{
		{Lo: -inf, Hi: r1, HiClosed: strict},
		{Lo: r2, Hi: inf, LoClosed: strict},
	}
}

// excludeTanPoles excludes the pole family of tan. A linear argument gives
// the closed-form family; anything else falls back to sampling cos(arg).
func excludeTanPoles(ctx context.Context, arg expr.Expr, x string, set *ExcludedSet, trace *Trace, opts Options) {
	if coeffs, ok := expr.Coefficients(arg, x); ok && len(coeffs) == 2 && !coeffs[1].IsZero() {
		b := coeffs[1].Float64()
		c := coeffs[0].Float64()
		offset := (math.Pi/2 - c) / b
		period := math.Pi / math.Abs(b)
		label := "π/2 + kπ"
		if !(coeffs[1].IsOne() && coeffs[0].IsZero()) {
			label = fmtShort(offset) + " + k·" + fmtShort(period)
		}
		set.AddPeriodic(offset, period, label)
		trace.Addf("cos(%s) = 0 at x = %s (k ∈ ℤ): excluded.", arg, label)
		return
	}

	poles := scanZeros(ctx, expr.Cos(arg), x, opts)
	if len(poles) == 0 {
		trace.Addf("cos(%s) has no zero in the scanned range; nothing excluded.", arg)
		return
	}
	for _, r := range poles {
		set.AddPoint(r.Value, fmtShort(r.Value), true)
		trace.Addf("cos(%s) = 0 near x ≈ %s (found numerically): excluded.", arg, fmtShort(r.Value))
	}
}

// scanZeros samples e over the scan range and refines sign changes by
// bisection. Capped by Options.Samples and the context deadline.
func scanZeros(ctx context.Context, e expr.Expr, x string, opts Options) []expr.Root {
	f := func(v float64) (float64, bool) {
		if ctx.Err() != nil {
			return 0, false
		}
		return expr.At(e, x, v)
	}
	return expr.BisectScan(f, opts.ScanMin, opts.ScanMax, opts.Samples)
}

// scanRegion samples a predicate over the scan range and returns the
// maximal runs where it holds.
func scanRegion(ctx context.Context, e expr.Expr, x string, bad func(float64) bool, opts Options) []Interval {
	var out []Interval
	step := (opts.ScanMax - opts.ScanMin) / float64(opts.Samples)
	inRun := false
	runStart := 0.0
	for i := 0; i <= opts.Samples; i++ {
		if i%256 == 0 && ctx.Err() != nil {
			break
		}
		xv := opts.ScanMin + step*float64(i)
		v, ok := expr.At(e, x, xv)
		hit := ok && bad(v)
		switch {
		case hit && !inRun:
			inRun, runStart = true, xv
		case !hit && inRun:
			out = append(out, Interval{Lo: runStart, Hi: xv})
			inRun = false
		}
	}
	if inRun {
		out = append(out, Interval{Lo: runStart, Hi: opts.ScanMax})
	}
	return out
}

func rootLabel(r expr.Root) string {
	if r.Exact != nil {
		return r.Exact.String()
	}
	return fmtShort(r.Value)
}
