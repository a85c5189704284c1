package expr_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funclens/funclens/expr"
)

func TestLikeTermCollection(t *testing.T) {
	x := expr.Var("x")
	e := expr.Add(x, x, x, expr.Int(2))
	assert.Equal(t, "3*x + 2", e.String())
}

func TestRationalArithmetic(t *testing.T) {
	e := expr.Add(expr.Frac(1, 2), expr.Frac(1, 3))
	n, ok := e.Eval()
	require.True(t, ok)
	assert.Equal(t, "5/6", n.String())
}

func TestProductMergesPowers(t *testing.T) {
	x := expr.Var("x")
	e := expr.Mul(x, x, x)
	assert.Equal(t, "x^3", e.String())
}

func TestDivisionIsNegativePower(t *testing.T) {
	x := expr.Var("x")
	e := expr.Div(expr.Int(1), x)
	v, ok := expr.At(e, "x", 4)
	require.True(t, ok)
	assert.InDelta(t, 0.25, v, 1e-12)

	_, ok = expr.At(e, "x", 0)
	assert.False(t, ok, "division by zero must not evaluate")
}

func TestSqrtRendering(t *testing.T) {
	x := expr.Var("x")
	e := expr.Sqrt(expr.Sub(x, expr.Int(1)))
	assert.Equal(t, "sqrt(x - 1)", e.String())
}

func TestExactSqrtOfPerfectSquare(t *testing.T) {
	e := expr.Sqrt(expr.Int(9))
	n, ok := e.Eval()
	require.True(t, ok)
	assert.Equal(t, "3", n.String())
}

func TestZeroPowerStaysSymbolic(t *testing.T) {
	e := expr.Pow(expr.Int(0), expr.Int(0))
	_, ok := e.Eval()
	assert.False(t, ok)

	e = expr.Pow(expr.Int(0), expr.Int(-1))
	_, ok = e.Eval()
	assert.False(t, ok)
}

func TestOversizedExponentStaysUnfolded(t *testing.T) {
	huge, ok := new(big.Rat).SetString("123456789012345678901234567890")
	require.True(t, ok)
	e := expr.Pow(expr.Int(2), expr.FromRat(huge))
	_, evalOK := e.Eval()
	assert.False(t, evalOK, "2^<beyond int64> must not fold to a wrapped small power")
}

func TestSubstitute(t *testing.T) {
	x := expr.Var("x")
	f := expr.Sub(expr.Pow(x, expr.Int(2)), expr.Int(4))
	got := f.Substitute("x", expr.Int(3)).Simplify()
	assert.True(t, got.Equal(expr.Int(5)))
}

func TestDerivative(t *testing.T) {
	x := expr.Var("x")
	tests := []struct {
		name string
		f    expr.Expr
		at   float64
		want float64
	}{
		{"power rule", expr.Pow(x, expr.Int(3)), 2, 12},
		{"sum rule", expr.Add(expr.Pow(x, expr.Int(2)), x), 1, 3},
		{"sine", expr.Sin(x), 0, 1},
		{"exp chain", expr.Exp(expr.Mul(expr.Int(2), x)), 0, 2},
		{"log", expr.Log(x), 2, 0.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := tc.f.Derivative("x")
			v, ok := expr.At(d, "x", tc.at)
			require.True(t, ok)
			assert.InDelta(t, tc.want, v, 1e-9)
		})
	}
}

func TestCallSimplifications(t *testing.T) {
	x := expr.Var("x")
	assert.True(t, expr.Sin(expr.Int(0)).Equal(expr.Int(0)))
	assert.True(t, expr.Cos(expr.Int(0)).Equal(expr.Int(1)))
	assert.True(t, expr.Log(expr.Int(1)).Equal(expr.Int(0)))
	assert.True(t, expr.Log(expr.Exp(x)).Equal(x))
	assert.True(t, expr.Exp(expr.Log(x)).Equal(x))
}

func TestTanUndefinedAtPole(t *testing.T) {
	x := expr.Var("x")
	_, ok := expr.At(expr.Tan(x), "x", math.Pi/2)
	assert.False(t, ok)
}

func TestLogUndefinedOutsideSupport(t *testing.T) {
	x := expr.Var("x")
	_, ok := expr.At(expr.Log(x), "x", 0)
	assert.False(t, ok)
	_, ok = expr.At(expr.Log(x), "x", -1)
	assert.False(t, ok)
}

func TestConstantsEvaluate(t *testing.T) {
	v, ok := expr.At(expr.Pi(), "x", 0)
	require.True(t, ok)
	assert.InDelta(t, math.Pi, v, 1e-12)
}

func TestFreeVars(t *testing.T) {
	x := expr.Var("x")
	f := expr.Add(expr.Sin(x), expr.Pi())
	vars := expr.FreeVars(f)
	_, hasX := vars["x"]
	assert.True(t, hasX)
	assert.Len(t, vars, 1)
	assert.True(t, expr.ContainsVar(f, "x"))
	assert.False(t, expr.ContainsVar(f, "y"))
}

func TestSimplifyIdempotent(t *testing.T) {
	x := expr.Var("x")
	f := expr.Div(expr.Add(x, expr.Int(1)), expr.Sub(x, expr.Int(2)))
	once := f.Simplify()
	twice := once.Simplify()
	assert.Equal(t, once.String(), twice.String())
}

func TestNegativeTermRendering(t *testing.T) {
	x := expr.Var("x")
	e := expr.Sub(expr.Pow(x, expr.Int(2)), expr.Int(4))
	assert.Equal(t, "x^2 - 4", e.String())
}
