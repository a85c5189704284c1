package expr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funclens/funclens/expr"
)

func parseAt(t *testing.T, input string, x float64) float64 {
	t.Helper()
	e, err := expr.Parse(input, "x")
	require.NoError(t, err)
	v, ok := expr.At(e, "x", x)
	require.True(t, ok, "expression must evaluate at %v", x)
	return v
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input string
		at    float64
		want  float64
	}{
		{"2 + 3*x", 4, 14},
		{"(2 + 3)*x", 4, 20},
		{"2*x**2", 3, 18},
		{"(2*x)**2", 3, 36},
		{"2**3**2", 0, 512}, // right-associative
		{"6/3/2", 0, 1},
		{"1 - 2 - 3", 0, -4},
		{"-x**2", 2, -4},
		{"x**-2", 2, 0.25},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.InDelta(t, tc.want, parseAt(t, tc.input, tc.at), 1e-9)
		})
	}
}

func TestCaretIsPower(t *testing.T) {
	a, err := expr.Parse("x^2 + 1", "x")
	require.NoError(t, err)
	b, err := expr.Parse("x**2 + 1", "x")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestLnAliasesNaturalLog(t *testing.T) {
	a, err := expr.Parse("ln(x)", "x")
	require.NoError(t, err)
	b, err := expr.Parse("log(x)", "x")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestLogWithBase(t *testing.T) {
	v := parseAt(t, "log(x, 2)", 8)
	assert.InDelta(t, 3, v, 1e-9)

	_, err := expr.Parse("log(x, 1)", "x")
	assert.Error(t, err, "base 1 is not a valid logarithm base")
	_, err = expr.Parse("log(x, -2)", "x")
	assert.Error(t, err)
}

func TestParseConstants(t *testing.T) {
	assert.InDelta(t, math.Pi, parseAt(t, "pi", 0), 1e-12)
	assert.InDelta(t, math.E, parseAt(t, "e", 0), 1e-12)
	assert.InDelta(t, math.Sqrt2/2, parseAt(t, "sin(pi/4)", 0), 1e-9)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, input string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"dangling operator", "x +"},
		{"unbalanced paren", "(x + 1"},
		{"unknown identifier", "y + 1"},
		{"unknown function", "foo(x)"},
		{"double operator", "x * * 2"},
		{"bad number", "1.2.3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := expr.Parse(tc.input, "x")
			require.Error(t, err)
			var perr *expr.ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := expr.Parse("x + @", "x")
	require.Error(t, err)
	var perr *expr.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "x + @", perr.Input)
	assert.Equal(t, 4, perr.Pos)
}

func TestParseFunctionRequiresVariable(t *testing.T) {
	_, err := expr.ParseFunction("3 + 4", "x")
	assert.Error(t, err)

	f, err := expr.ParseFunction("sin(x)", "x")
	require.NoError(t, err)
	assert.True(t, expr.ContainsVar(f, "x"))
}

func TestParsePoint(t *testing.T) {
	p, err := expr.ParsePoint("pi/4")
	require.NoError(t, err)
	n, ok := p.Eval()
	require.True(t, ok)
	assert.InDelta(t, math.Pi/4, n.Float64(), 1e-9)

	_, err = expr.ParsePoint("x + 1")
	assert.Error(t, err)

	_, err = expr.ParsePoint("1/0")
	assert.Error(t, err)
}

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"(x + 1)/(x - 2)",
		"x**2 - 4",
		"sqrt(x - 1)",
		"sin(x)",
		"1/(1 + exp(-x))",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			e, err := expr.Parse(in, "x")
			require.NoError(t, err)
			again, err := expr.Parse(e.String(), "x")
			require.NoError(t, err)
			assert.Equal(t, e.String(), again.String())
		})
	}
}
