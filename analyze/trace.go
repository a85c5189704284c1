// Package analyze derives domain, range, axis intercepts and point
// evaluations from a parsed expression, each with an ordered derivation
// trace suitable for direct display.
package analyze

import "fmt"

// Trace is an append-only derivation log for one analysis category. It is
// built during the analysis and frozen inside the report; Steps hands out
// copies so the report stays immutable.
type Trace struct {
	steps []string
}

func (t *Trace) Addf(format string, args ...interface{}) {
	t.steps = append(t.steps, fmt.Sprintf(format, args...))
}

func (t *Trace) Steps() []string {
	out := make([]string, len(t.steps))
	copy(out, t.steps)
	return out
}

func (t *Trace) Len() int { return len(t.steps) }
