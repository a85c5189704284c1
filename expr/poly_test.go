package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funclens/funclens/expr"
)

func TestCoefficients(t *testing.T) {
	f, err := expr.Parse("x**2 - 4", "x")
	require.NoError(t, err)
	cs, ok := expr.Coefficients(f, "x")
	require.True(t, ok)
	require.Len(t, cs, 3)
	assert.Equal(t, "-4", cs[0].String())
	assert.Equal(t, "0", cs[1].String())
	assert.Equal(t, "1", cs[2].String())
}

func TestCoefficientsOfProduct(t *testing.T) {
	f, err := expr.Parse("(x + 1)*(x - 2)", "x")
	require.NoError(t, err)
	cs, ok := expr.Coefficients(f, "x")
	require.True(t, ok)
	require.Len(t, cs, 3)
	assert.Equal(t, "-2", cs[0].String())
	assert.Equal(t, "-1", cs[1].String())
	assert.Equal(t, "1", cs[2].String())
}

func TestCoefficientsRejectsNonPolynomial(t *testing.T) {
	for _, in := range []string{"sin(x)", "sqrt(x)", "1/x", "2**x"} {
		f, err := expr.Parse(in, "x")
		require.NoError(t, err)
		_, ok := expr.Coefficients(f, "x")
		assert.False(t, ok, "%s is not a polynomial", in)
	}
}

func TestCoefficientsRejectsOversizedExponent(t *testing.T) {
	f, err := expr.Parse("x**123456789012345678901234567890", "x")
	require.NoError(t, err)
	_, ok := expr.Coefficients(f, "x")
	assert.False(t, ok, "an exponent beyond int64 must not be treated as a degree")
}

func TestDegree(t *testing.T) {
	f, err := expr.Parse("x**3 - 2*x", "x")
	require.NoError(t, err)
	deg, ok := expr.Degree(f, "x")
	require.True(t, ok)
	assert.Equal(t, 3, deg)
	assert.True(t, expr.IsPolynomial(f, "x"))
}

func TestAsQuotient(t *testing.T) {
	f, err := expr.Parse("(x + 1)/(x - 2)", "x")
	require.NoError(t, err)
	num, den, ok := expr.AsQuotient(f)
	require.True(t, ok)
	assert.Equal(t, "x + 1", num.String())
	assert.Equal(t, "x - 2", den.String())
}

func TestAsQuotientOfPlainPower(t *testing.T) {
	f, err := expr.Parse("1/x", "x")
	require.NoError(t, err)
	num, den, ok := expr.AsQuotient(f)
	require.True(t, ok)
	assert.Equal(t, "1", num.String())
	assert.Equal(t, "x", den.String())
}
