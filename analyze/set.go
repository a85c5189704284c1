package analyze

import (
	"math"
	"sort"
	"strings"
)

const containsTol = 1e-9

// Interval is a connected stretch of the real line. Lo/Hi may be ±Inf.
type Interval struct {
	Lo, Hi             float64
	LoClosed, HiClosed bool
}

func (iv Interval) Contains(x float64) bool {
	if x < iv.Lo-containsTol || x > iv.Hi+containsTol {
		return false
	}
	if math.Abs(x-iv.Lo) <= containsTol {
		return iv.LoClosed
	}
	if math.Abs(x-iv.Hi) <= containsTol {
		return iv.HiClosed
	}
	return true
}

func (iv Interval) String() string {
	lo, hi := "-∞", "∞"
	lb, rb := "(", ")"
	if !math.IsInf(iv.Lo, -1) {
		lo = fmtShort(iv.Lo)
		if iv.LoClosed {
			lb = "["
		}
	}
	if !math.IsInf(iv.Hi, 1) {
		hi = fmtShort(iv.Hi)
		if iv.HiClosed {
			rb = "]"
		}
	}
	return lb + lo + ", " + hi + rb
}

// PointExclusion is one discrete excluded value. Approx marks values that
// were located numerically rather than solved in closed form.
type PointExclusion struct {
	Value  float64
	Label  string
	Approx bool
}

// PeriodicExclusion is an infinite family Offset + k*Period, k ∈ ℤ, such as
// the poles of the tangent.
type PeriodicExclusion struct {
	Offset, Period float64
	Label          string
}

func (p PeriodicExclusion) Contains(x float64) bool {
	d := math.Mod(x-p.Offset, p.Period)
	if d < 0 {
		d += p.Period
	}
	return d <= containsTol || p.Period-d <= containsTol
}

// ExcludedSet describes the real values removed from ℝ: discrete points,
// periodic families, and whole intervals. The zero value excludes nothing.
type ExcludedSet struct {
	points    []PointExclusion
	periodic  []PeriodicExclusion
	intervals []Interval
}

func (s *ExcludedSet) AddPoint(v float64, label string, approx bool) {
	for _, p := range s.points {
		if math.Abs(p.Value-v) <= containsTol {
			return
		}
	}
	if label == "" {
		label = fmtShort(v)
	}
	s.points = append(s.points, PointExclusion{Value: v, Label: label, Approx: approx})
	sort.Slice(s.points, func(i, j int) bool { return s.points[i].Value < s.points[j].Value })
}

func (s *ExcludedSet) AddPeriodic(offset, period float64, label string) {
	s.periodic = append(s.periodic, PeriodicExclusion{Offset: offset, Period: period, Label: label})
}

func (s *ExcludedSet) AddInterval(iv Interval) {
	s.intervals = append(s.intervals, iv)
	sort.Slice(s.intervals, func(i, j int) bool { return s.intervals[i].Lo < s.intervals[j].Lo })
}

func (s *ExcludedSet) Points() []PointExclusion {
	return append([]PointExclusion(nil), s.points...)
}

func (s *ExcludedSet) Periodic() []PeriodicExclusion {
	return append([]PeriodicExclusion(nil), s.periodic...)
}

func (s *ExcludedSet) Intervals() []Interval {
	return append([]Interval(nil), s.intervals...)
}

func (s *ExcludedSet) Empty() bool {
	return s == nil || len(s.points) == 0 && len(s.periodic) == 0 && len(s.intervals) == 0
}

// HasApprox reports whether any exclusion was located numerically.
func (s *ExcludedSet) HasApprox() bool {
	if s == nil {
		return false
	}
	for _, p := range s.points {
		if p.Approx {
			return true
		}
	}
	return false
}

// Contains reports whether x is excluded.
func (s *ExcludedSet) Contains(x float64) bool {
	if s == nil {
		return false
	}
	for _, p := range s.points {
		if math.Abs(p.Value-x) <= containsTol {
			return true
		}
	}
	for _, p := range s.periodic {
		if p.Contains(x) {
			return true
		}
	}
	for _, iv := range s.intervals {
		if iv.Contains(x) {
			return true
		}
	}
	return false
}

// Explain returns a short reason for why x is excluded, for evaluation
// traces ("x ≠ 2", "x ∉ [1, ∞)").
func (s *ExcludedSet) Explain(x float64) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, p := range s.points {
		if math.Abs(p.Value-x) <= containsTol {
			return "x ≠ " + p.Label, true
		}
	}
	for _, p := range s.periodic {
		if p.Contains(x) {
			return "x ≠ " + p.Label, true
		}
	}
	for _, iv := range s.intervals {
		if iv.Contains(x) {
			return "x ∉ " + s.String(), true
		}
	}
	return "", false
}

// String renders the complement of the set within ℝ: "ℝ" when nothing is
// excluded, "ℝ ∖ {2}" for discrete exclusions, a plain interval such as
// "[1, ∞)" when the excluded region leaves one, and "∅" when nothing
// remains.
func (s *ExcludedSet) String() string {
	if s.Empty() {
		return "ℝ"
	}
	if len(s.intervals) > 0 && len(s.points) == 0 && len(s.periodic) == 0 {
		if desc, ok := s.complementIntervals(); ok {
			return desc
		}
	}

	parts := make([]string, 0, 4)
	if len(s.points) > 0 || len(s.periodic) > 0 {
		labels := make([]string, 0, len(s.points)+len(s.periodic))
		for _, p := range s.points {
			labels = append(labels, p.Label)
		}
		for _, p := range s.periodic {
			labels = append(labels, p.Label)
		}
		parts = append(parts, "{"+strings.Join(labels, ", ")+"}")
	}
	for _, iv := range s.intervals {
		parts = append(parts, iv.String())
	}
	if len(parts) == 1 {
		return "ℝ ∖ " + parts[0]
	}
	return "ℝ ∖ (" + strings.Join(parts, " ∪ ") + ")"
}

// complementIntervals renders ℝ minus the excluded intervals as a single
// interval when one remains.
func (s *ExcludedSet) complementIntervals() (string, bool) {
	switch len(s.intervals) {
	case 1:
		iv := s.intervals[0]
		switch {
		case math.IsInf(iv.Lo, -1) && math.IsInf(iv.Hi, 1):
			return "∅", true
		case math.IsInf(iv.Lo, -1):
			return Interval{Lo: iv.Hi, Hi: math.Inf(1), LoClosed: !iv.HiClosed}.String(), true
		case math.IsInf(iv.Hi, 1):
			return Interval{Lo: math.Inf(-1), Hi: iv.Lo, HiClosed: !iv.LoClosed}.String(), true
		}
	case 2:
		a, b := s.intervals[0], s.intervals[1]
		if math.IsInf(a.Lo, -1) && math.IsInf(b.Hi, 1) && a.Hi <= b.Lo {
			return Interval{Lo: a.Hi, Hi: b.Lo, LoClosed: !a.HiClosed, HiClosed: !b.LoClosed}.String(), true
		}
	}
	return "", false
}
