package analyze

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluate(t *testing.T, input string, at float64, label string) Evaluation {
	t.Helper()
	f := mustParse(t, input)
	opts := DefaultOptions()
	dom := AnalyzeDomain(context.Background(), f, opts)
	return EvaluateAt(f, dom, at, label, opts)
}

func TestEvaluateRational(t *testing.T) {
	ev := evaluate(t, "(x + 1)/(x - 2)", 1.5, "1.5")
	assert.True(t, ev.Defined())
	assert.InDelta(t, -5, ev.Value, 1e-12)
	require.NotNil(t, ev.Exact, "rational arithmetic folds exactly")
	assert.Equal(t, "-5", ev.Exact.String())

	joined := strings.Join(ev.Steps, "\n")
	assert.Contains(t, joined, "substitute x = 1.5")
	assert.Contains(t, joined, "-5.0000")
}

func TestEvaluateQuadratic(t *testing.T) {
	ev := evaluate(t, "x**2 - 4", 3, "3")
	assert.True(t, ev.Defined())
	assert.InDelta(t, 5, ev.Value, 1e-12)
}

func TestEvaluateOutOfDomain(t *testing.T) {
	ev := evaluate(t, "sqrt(x - 1)", 0, "0")
	assert.True(t, ev.OutOfDomain)
	assert.False(t, ev.Defined())
	joined := strings.Join(ev.Steps, "\n")
	assert.Contains(t, joined, "outside the domain")
}

func TestEvaluateAtPole(t *testing.T) {
	ev := evaluate(t, "(x + 1)/(x - 2)", 2, "2")
	assert.True(t, ev.OutOfDomain)
	assert.True(t, ev.Undefined)
}

func TestEvaluateTangentAtPiOverFour(t *testing.T) {
	ev := evaluate(t, "tan(x)", math.Pi/4, "pi/4")
	assert.True(t, ev.Defined())
	assert.InDelta(t, 1, ev.Value, 1e-9)
	joined := strings.Join(ev.Steps, "\n")
	assert.Contains(t, joined, "pi/4", "the trace keeps the caller's spelling")
}

func TestEvaluateFixedDecimals(t *testing.T) {
	ev := evaluate(t, "x**2 - 4", 3, "3")
	joined := strings.Join(ev.Steps, "\n")
	assert.Contains(t, joined, "5.0000")
}

func TestEvaluateScientificForExtremes(t *testing.T) {
	ev := evaluate(t, "exp(x) - 1", 15, "15")
	assert.True(t, ev.Defined())
	joined := strings.Join(ev.Steps, "\n")
	assert.Contains(t, joined, "e+06", "large values render in scientific notation")
}
