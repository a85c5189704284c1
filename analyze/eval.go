package analyze

import (
	"math"

	"github.com/funclens/funclens/expr"
)

// Evaluation is the outcome of evaluating f at a single point. The
// substitution is attempted even when the point is outside the domain, so
// the trace can show what breaks.
type Evaluation struct {
	At          float64
	Value       float64
	Exact       *expr.Number
	OutOfDomain bool
	Undefined   bool
	Steps       []string
}

// Defined reports whether the evaluation produced a usable value.
func (e Evaluation) Defined() bool { return !e.OutOfDomain && !e.Undefined }

// EvaluateAt substitutes the point into f step by step: the raw
// substitution, the simplified form, and the numeric value. atLabel is the
// user's spelling of the point ("pi/4"); pass "" to use the numeric form.
func EvaluateAt(f expr.Expr, dom DomainReport, at float64, atLabel string, opts Options) Evaluation {
	opts = opts.withDefaults()
	x := opts.Variable
	if atLabel == "" {
		atLabel = fmtShort(at)
	}
	var trace Trace
	ev := Evaluation{At: at}

	if reason, excluded := dom.Excluded.Explain(at); excluded {
		ev.OutOfDomain = true
		trace.Addf("x = %s is outside the domain: %s", atLabel, reason)
	}

	substituted := f.Substitute(x, expr.Float(at))
	trace.Addf("substitute %s = %s: %s", x, atLabel, substituted)
	folded := substituted.Simplify()
	if n, ok := folded.Eval(); ok {
		ev.Exact = n
		ev.Value = n.Float64()
	} else if v, ok := expr.At(f, x, at); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		ev.Value = v
	} else {
		ev.Undefined = true
		trace.Addf("the expression is undefined at x = %s", atLabel)
		ev.Steps = trace.Steps()
		return ev
	}

	if ev.OutOfDomain {
		trace.Addf("the arithmetic still folds to %s, but the point is not admissible", fmtFixed(ev.Value))
	} else {
		trace.Addf("f(%s) = %s", atLabel, fmtFixed(ev.Value))
		trace.Addf("point on the curve: (%s, %s)", atLabel, fmtFixed(ev.Value))
	}
	ev.Steps = trace.Steps()
	return ev
}
