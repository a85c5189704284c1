package analyze

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funclens/funclens/expr"
)

func mustParse(t *testing.T, input string) expr.Expr {
	t.Helper()
	f, err := expr.ParseFunction(input, "x")
	require.NoError(t, err)
	return f
}

func TestDomainPolynomialIsAllReals(t *testing.T) {
	dom := AnalyzeDomain(context.Background(), mustParse(t, "x**2 - 4"), DefaultOptions())
	assert.Equal(t, "ℝ", dom.Description)
	assert.True(t, dom.Excluded.Empty())
	assert.NotEmpty(t, dom.Steps, "even the empty result carries its checks")
}

func TestDomainRational(t *testing.T) {
	dom := AnalyzeDomain(context.Background(), mustParse(t, "(x + 1)/(x - 2)"), DefaultOptions())
	assert.Equal(t, "ℝ ∖ {2}", dom.Description)
	assert.True(t, dom.Excluded.Contains(2))
	assert.False(t, dom.Excluded.Contains(1.9))
}

func TestDomainRationalQuadraticDenominator(t *testing.T) {
	dom := AnalyzeDomain(context.Background(), mustParse(t, "1/(x**2 - 4)"), DefaultOptions())
	assert.Equal(t, "ℝ ∖ {-2, 2}", dom.Description)
}

func TestDomainDenominatorWithoutRealZeros(t *testing.T) {
	dom := AnalyzeDomain(context.Background(), mustParse(t, "1/(x**2 + 1)"), DefaultOptions())
	assert.Equal(t, "ℝ", dom.Description)
}

func TestDomainSqrt(t *testing.T) {
	dom := AnalyzeDomain(context.Background(), mustParse(t, "sqrt(x - 1)"), DefaultOptions())
	assert.Equal(t, "[1, ∞)", dom.Description)
	assert.True(t, dom.Excluded.Contains(0))
	assert.False(t, dom.Excluded.Contains(1), "the endpoint is admissible")
	assert.False(t, dom.Excluded.Contains(5))
}

func TestDomainLogIsStrict(t *testing.T) {
	dom := AnalyzeDomain(context.Background(), mustParse(t, "log(x)"), DefaultOptions())
	assert.Equal(t, "(0, ∞)", dom.Description)
	assert.True(t, dom.Excluded.Contains(0), "log needs a strictly positive argument")
}

func TestDomainSqrtInDenominatorIsStrict(t *testing.T) {
	dom := AnalyzeDomain(context.Background(), mustParse(t, "1/sqrt(x - 1)"), DefaultOptions())
	assert.Equal(t, "(1, ∞)", dom.Description)
	assert.True(t, dom.Excluded.Contains(1))
}

func TestDomainTanPoles(t *testing.T) {
	dom := AnalyzeDomain(context.Background(), mustParse(t, "tan(x)"), DefaultOptions())
	assert.True(t, dom.Excluded.Contains(math.Pi/2))
	assert.True(t, dom.Excluded.Contains(-math.Pi/2))
	assert.True(t, dom.Excluded.Contains(3*math.Pi/2))
	assert.False(t, dom.Excluded.Contains(0))
	assert.Contains(t, dom.Description, "π/2 + kπ")
}

func TestDomainRemovableDiscontinuityStillExcluded(t *testing.T) {
	dom := AnalyzeDomain(context.Background(), mustParse(t, "(x**2 - 4)/(x - 2)"), DefaultOptions())
	assert.True(t, dom.Excluded.Contains(2), "a hole is still outside the domain")
	found := false
	for _, s := range dom.Steps {
		if strings.Contains(s, "removable discontinuity") {
			found = true
		}
	}
	assert.True(t, found, "the trace should call out the removable discontinuity")
}

func TestDomainNonPolynomialDenominatorIsApproximate(t *testing.T) {
	dom := AnalyzeDomain(context.Background(), mustParse(t, "1/(exp(x) - 1)"), DefaultOptions())
	assert.True(t, dom.Excluded.Contains(0))
	assert.True(t, dom.Excluded.HasApprox())
}

func TestDomainSigmoid(t *testing.T) {
	dom := AnalyzeDomain(context.Background(), mustParse(t, "1/(1 + exp(-x))"), DefaultOptions())
	assert.Equal(t, "ℝ", dom.Description, "the denominator never vanishes")
}

func TestDomainCombinedRules(t *testing.T) {
	dom := AnalyzeDomain(context.Background(), mustParse(t, "sqrt(x)/(x - 3)"), DefaultOptions())
	assert.True(t, dom.Excluded.Contains(3))
	assert.True(t, dom.Excluded.Contains(-1))
	assert.False(t, dom.Excluded.Contains(0))
	assert.False(t, dom.Excluded.Contains(4))
}

func TestDomainHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dom := AnalyzeDomain(ctx, mustParse(t, "1/(exp(x) - 1)"), DefaultOptions())
	assert.NotNil(t, dom.Excluded, "a canceled context still yields a report")
}
