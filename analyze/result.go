package analyze

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/funclens/funclens/expr"
)

// AnalysisResult bundles the four reports for one expression. ID lets an
// external renderer correlate successive analyses; Expr is the parsed tree
// for callers that want to render or reuse it.
type AnalysisResult struct {
	ID         uuid.UUID
	Input      string
	PointInput string
	Expr       expr.Expr
	Domain     DomainReport
	Range      RangeReport
	Intercepts InterceptReport
	Evaluation *Evaluation
}

// Builder runs the full analysis pipeline with a fixed set of options.
// The zero value is not usable; use NewBuilder.
type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts.withDefaults()}
}

// Analyze parses the expression, runs the domain analysis, then fans the
// range, intercept and optional point analyses out concurrently. pointInput
// may be empty. Parse failures are the only error path: the analyzers
// themselves always produce a report, degraded to approximate or empty
// when time runs out.
func (b *Builder) Analyze(ctx context.Context, input, pointInput string) (*AnalysisResult, error) {
	f, err := expr.ParseFunction(input, b.opts.Variable)
	if err != nil {
		return nil, errors.Wrap(err, "parse expression")
	}

	res := &AnalysisResult{
		ID:         uuid.New(),
		Input:      input,
		PointInput: pointInput,
		Expr:       f,
	}
	b.opts.Logger.Debug("analysis started",
		zap.String("id", res.ID.String()),
		zap.String("expr", f.String()))

	var at float64
	if pointInput != "" {
		p, err := expr.ParsePoint(pointInput)
		if err != nil {
			return nil, errors.Wrap(err, "parse point")
		}
		n, _ := p.Eval()
		at = n.Float64()
	}

	ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	// The range, intercept and evaluation passes all consult the domain,
	// so it runs first; the rest are independent of each other.
	res.Domain = AnalyzeDomain(ctx, f, b.opts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Range = AnalyzeRange(gctx, f, res.Domain, b.opts)
		return nil
	})
	g.Go(func() error {
		res.Intercepts = AnalyzeIntercepts(gctx, f, res.Domain, b.opts)
		return nil
	})
	if pointInput != "" {
		g.Go(func() error {
			ev := EvaluateAt(f, res.Domain, at, pointInput, b.opts)
			res.Evaluation = &ev
			return nil
		})
	}
	_ = g.Wait()

	b.opts.Logger.Debug("analysis finished", zap.String("id", res.ID.String()))
	return res, nil
}

// Render produces the plain-text report: one section per analysis, each
// with its derivation steps.
func (r *AnalysisResult) Render() string {
	var sb strings.Builder
	sb.WriteString("f(x) = " + r.Expr.String() + "\n")

	writeSection(&sb, "Domain: "+r.Domain.Description, r.Domain.Steps)
	title := "Range: " + r.Range.Description
	if r.Range.Approximate && !strings.Contains(r.Range.Description, "approx") && !strings.HasPrefix(r.Range.Description, "≈") {
		title += " (approximate)"
	}
	writeSection(&sb, title, r.Range.Steps)

	ic := "Intercepts:"
	if r.Intercepts.YIntercept != nil {
		ic += " y at " + r.Intercepts.YIntercept.String()
	}
	if n := len(r.Intercepts.XIntercepts); n > 0 {
		pts := make([]string, n)
		for i, p := range r.Intercepts.XIntercepts {
			pts[i] = p.String()
		}
		ic += " x at " + strings.Join(pts, ", ")
	}
	if r.Intercepts.YIntercept == nil && len(r.Intercepts.XIntercepts) == 0 {
		ic += " none"
	}
	writeSection(&sb, ic, r.Intercepts.Steps)

	if ev := r.Evaluation; ev != nil {
		title := "Evaluation at x = " + r.PointInput
		switch {
		case ev.OutOfDomain:
			title += ": outside the domain"
		case ev.Undefined:
			title += ": undefined"
		default:
			title += ": f = " + fmtFixed(ev.Value)
		}
		writeSection(&sb, title, ev.Steps)
	}
	return sb.String()
}

func writeSection(sb *strings.Builder, title string, steps []string) {
	sb.WriteString("\n" + title + "\n")
	for _, s := range steps {
		sb.WriteString("  - " + s + "\n")
	}
}
