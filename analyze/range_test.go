package analyze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func analyzeRange(t *testing.T, input string) RangeReport {
	t.Helper()
	f := mustParse(t, input)
	opts := DefaultOptions()
	ctx := context.Background()
	dom := AnalyzeDomain(ctx, f, opts)
	return AnalyzeRange(ctx, f, dom, opts)
}

func TestRangeRationalExcludesAsymptote(t *testing.T) {
	rep := analyzeRange(t, "(x + 1)/(x - 2)")
	assert.Equal(t, strategyRational, rep.Strategy)
	assert.Equal(t, "ℝ ∖ {1}", rep.Description)
	assert.False(t, rep.Approximate)
}

func TestRangeReciprocal(t *testing.T) {
	rep := analyzeRange(t, "1/x")
	assert.Equal(t, strategyRational, rep.Strategy)
	assert.Equal(t, "ℝ ∖ {0}", rep.Description)
}

func TestRangeRationalAttainedAsymptoteStays(t *testing.T) {
	// f(0) = 0, so the asymptote value 0 is reached at a finite x and
	// must not be excluded.
	rep := analyzeRange(t, "x/(x**2 + 1)")
	assert.Equal(t, strategyRational, rep.Strategy)
	assert.True(t, rep.Excluded.Empty())
}

func TestRangeRationalRemovableImage(t *testing.T) {
	// (x - 1)/(x^2 - 1) is 1/(x + 1) away from the hole at x = 1, so both
	// the asymptote value 0 and the lost image 1/2 are missing.
	rep := analyzeRange(t, "(x - 1)/(x**2 - 1)")
	assert.Equal(t, strategyRational, rep.Strategy)
	assert.True(t, rep.Excluded.Contains(0))
	assert.True(t, rep.Excluded.Contains(0.5))
}

func TestRangeEvenPolynomial(t *testing.T) {
	rep := analyzeRange(t, "x**2 - 4")
	assert.Equal(t, strategyPolynomial, rep.Strategy)
	assert.Equal(t, "[-4, ∞)", rep.Description)
	assert.False(t, rep.Approximate)
	assert.True(t, rep.Excluded.Contains(-5))
	assert.False(t, rep.Excluded.Contains(-4))
	assert.False(t, rep.Excluded.Contains(0))
}

func TestRangeDownwardParabola(t *testing.T) {
	rep := analyzeRange(t, "-x**2 + 1")
	assert.Equal(t, strategyPolynomial, rep.Strategy)
	assert.Equal(t, "(-∞, 1]", rep.Description)
}

func TestRangeOddPolynomial(t *testing.T) {
	rep := analyzeRange(t, "x**3 - 2*x")
	assert.Equal(t, strategyPolynomial, rep.Strategy)
	assert.Equal(t, "ℝ", rep.Description)
	assert.True(t, rep.Excluded.Empty())
}

func TestRangeSine(t *testing.T) {
	rep := analyzeRange(t, "sin(x)")
	assert.Equal(t, strategyTrig, rep.Strategy)
	assert.Equal(t, "[-1, 1]", rep.Description)
	assert.True(t, rep.Excluded.Contains(2))
	assert.False(t, rep.Excluded.Contains(1))
	assert.False(t, rep.Excluded.Contains(-0.5))
}

func TestRangeScaledShiftedCosine(t *testing.T) {
	rep := analyzeRange(t, "3*cos(2*x) + 1")
	assert.Equal(t, strategyTrig, rep.Strategy)
	assert.Equal(t, "[-2, 4]", rep.Description)
}

func TestRangeSamplingFallback(t *testing.T) {
	rep := analyzeRange(t, "1/(1 + exp(-x))")
	assert.Equal(t, strategySampling, rep.Strategy)
	assert.True(t, rep.Approximate)
	assert.Contains(t, rep.Description, "≈")
}

func TestRangeSamplingUnbounded(t *testing.T) {
	rep := analyzeRange(t, "exp(x) - 1")
	assert.Equal(t, strategySampling, rep.Strategy)
	assert.True(t, rep.Approximate)
	assert.Equal(t, "ℝ (approximate)", rep.Description)
}
