// Package funclens analyzes single-variable real expressions: it parses a
// function of x, derives its domain and range with human-readable steps,
// finds axis intercepts, and evaluates the function at a point.
package funclens

import (
	"context"

	"github.com/funclens/funclens/analyze"
)

// Analyze runs the full pipeline with default options. pointText may be
// empty to skip the point evaluation.
func Analyze(ctx context.Context, exprText, pointText string) (*analyze.AnalysisResult, error) {
	return AnalyzeWith(ctx, exprText, pointText, analyze.DefaultOptions())
}

// AnalyzeWith is Analyze with explicit options.
func AnalyzeWith(ctx context.Context, exprText, pointText string, opts analyze.Options) (*analyze.AnalysisResult, error) {
	return analyze.NewBuilder(opts).Analyze(ctx, exprText, pointText)
}

// Example is a canonical input with a short description, used by the CLI
// examples mode and the walkthrough program.
type Example struct {
	Name  string
	Expr  string
	Point string
	Note  string
}

// Examples returns the canonical gallery: one entry per analyzer behavior
// worth demonstrating.
func Examples() []Example {
	return []Example{
		{Name: "rational", Expr: "(x + 1)/(x - 2)", Point: "1.5", Note: "vertical asymptote at x = 2, horizontal at y = 1"},
		{Name: "quadratic", Expr: "x**2 - 4", Point: "3", Note: "parabola with two x-intercepts and a global minimum"},
		{Name: "square root", Expr: "sqrt(x - 1)", Point: "5", Note: "half-line domain; x = 0 is not admissible"},
		{Name: "sine", Expr: "sin(x)", Point: "pi/2", Note: "bounded oscillation on [-1, 1]"},
		{Name: "shifted exponential", Expr: "exp(x) - 1", Point: "0", Note: "crosses the origin, horizontal asymptote at y = -1"},
		{Name: "sigmoid", Expr: "1/(1 + exp(-x))", Point: "0", Note: "smooth step between 0 and 1"},
		{Name: "cubic", Expr: "x**3 - 2*x", Point: "1", Note: "odd degree, three real roots"},
		{Name: "tangent", Expr: "tan(x)", Point: "pi/4", Note: "periodic poles at pi/2 + k*pi"},
	}
}
