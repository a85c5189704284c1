package analyze

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/funclens/funclens/expr"
)

// Point is a single axis crossing. Label carries the exact form when one is
// known ("-1", "1/3"); Approx marks numerically found coordinates.
type Point struct {
	X, Y   float64
	Label  string
	Approx bool
}

func (p Point) String() string {
	return "(" + fmtShort(p.X) + ", " + fmtShort(p.Y) + ")"
}

// InterceptReport lists axis crossings. YIntercept is nil when x = 0 lies
// outside the domain; Complete is false when the x-intercept search was
// numeric and may have missed roots outside the scan window.
type InterceptReport struct {
	YIntercept  *Point
	XIntercepts []Point
	Complete    bool
	Steps       []string
}

// AnalyzeIntercepts finds where the curve meets the axes. The y-intercept
// is a direct evaluation at zero; x-intercepts come from the numerator's
// roots when it is polynomial, otherwise from a sign-change sweep.
func AnalyzeIntercepts(ctx context.Context, f expr.Expr, dom DomainReport, opts Options) InterceptReport {
	opts = opts.withDefaults()
	x := opts.Variable
	var trace Trace
	rep := InterceptReport{Complete: true}

	if reason, excluded := dom.Excluded.Explain(0); excluded {
		trace.Addf("no y-intercept: x = 0 is outside the domain (%s)", reason)
	} else if v, ok := expr.At(f, x, 0); ok {
		rep.YIntercept = &Point{X: 0, Y: v, Label: yInterceptLabel(f, x)}
		trace.Addf("y-intercept: f(0) = %s, point (0, %s)", fmtShort(v), fmtShort(v))
	} else {
		trace.Addf("no y-intercept: f(0) is undefined")
	}

	num := f
	if n, _, ok := expr.AsQuotient(f); ok {
		num = n
		trace.Addf("x-intercepts are the zeros of the numerator %s", num)
	}
	// A positive power vanishes exactly where its base does, so roots and
	// squares reduce to their radicand.
	if p, ok := num.(*expr.Power); ok {
		if en, ok := p.Exponent().(*expr.Number); ok && en.Sign() > 0 {
			num = p.Base()
			trace.Addf("%s = 0 exactly where %s = 0", p, num)
		}
	}
	if coeffs, ok := expr.Coefficients(num, x); ok {
		out := expr.SolvePoly(coeffs, opts.ScanMax)
		rep.Complete = out.Closed
		for _, r := range out.Roots {
			addXIntercept(&rep, dom, r.Value, rootLabel(r), r.Exact == nil, &trace)
		}
		if len(out.Roots) == 0 {
			trace.Addf("the numerator has no real zero")
		}
	} else {
		rep.Complete = false
		trace.Addf("the zero condition is not polynomial: scanning [%s, %s] for sign changes",
			fmtShort(opts.ScanMin), fmtShort(opts.ScanMax))
		roots := expr.BisectScan(func(xv float64) (float64, bool) {
			if ctx.Err() != nil || dom.Excluded.Contains(xv) {
				return 0, false
			}
			return expr.At(num, x, xv)
		}, opts.ScanMin, opts.ScanMax, opts.Samples)
		for _, r := range roots {
			addXIntercept(&rep, dom, r.Value, fmtShort(r.Value), true, &trace)
		}
		if len(roots) == 0 {
			trace.Addf("no sign change inside the scan window")
		}
	}

	if len(rep.XIntercepts) == 0 {
		trace.Addf("x-intercepts: none")
	}
	opts.Logger.Debug("intercept analysis done",
		zap.Int("x_intercepts", len(rep.XIntercepts)),
		zap.Bool("complete", rep.Complete))
	rep.Steps = trace.Steps()
	return rep
}

func addXIntercept(rep *InterceptReport, dom DomainReport, xv float64, label string, approx bool, trace *Trace) {
	if reason, excluded := dom.Excluded.Explain(xv); excluded {
		trace.Addf("discarding zero candidate x = %s: outside the domain (%s)", label, reason)
		return
	}
	for _, p := range rep.XIntercepts {
		if math.Abs(p.X-xv) < containsTol {
			return
		}
	}
	rep.XIntercepts = append(rep.XIntercepts, Point{X: xv, Y: 0, Label: label, Approx: approx})
	trace.Addf("x-intercept at (%s, 0)", label)
}

// yInterceptLabel renders f(0) exactly when the substitution folds to a
// rational number.
func yInterceptLabel(f expr.Expr, x string) string {
	at := f.Substitute(x, expr.Int(0)).Simplify()
	if n, ok := at.Eval(); ok {
		return n.String()
	}
	return ""
}
