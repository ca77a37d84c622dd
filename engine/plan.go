package engine

import (
	"context"
	"iter"
	"log/slog"
	"path/filepath"

	"github.com/ardnew/xosc/catalog"
	"github.com/ardnew/xosc/distribution"
	"github.com/ardnew/xosc/log"
	"github.com/ardnew/xosc/param"
	"github.com/ardnew/xosc/value"
	"github.com/ardnew/xosc/xosc"
)

// Options configures [ResolveDocument] and [Expand]. The zero value is
// usable.
type Options struct {
	// Evaluator evaluates expressions. Nil leaves them unevaluated.
	Evaluator value.Evaluator
	// Seed overrides the seed of a stochastic distribution.
	Seed *uint64
	// Resolver resolves catalog references. Nil creates one per call.
	Resolver *catalog.Resolver
	// BasePath is the directory relative catalog locations resolve
	// against. Empty means the scenario's directory.
	BasePath string
	// Locations are searched before the scenario's own catalog locations.
	Locations catalog.Locations
	Logger    log.Logger
	// Workers bounds concurrent variant resolution. Values below 1 mean
	// GOMAXPROCS.
	Workers int
	// MaxCatalogDepth bounds nested catalog references when Resolver is
	// nil. Values below 1 mean [catalog.DefaultMaxDepth].
	MaxCatalogDepth int
}

func (o Options) logger() log.Logger {
	if o.Logger.Logger == nil {
		return log.Default()
	}

	return o.Logger
}

// Plan is the expanded form of an input document: the scenario to
// instantiate and the variants to instantiate it with.
type Plan struct {
	// Scenario is the scenario document. It must not be modified.
	Scenario *xosc.Document
	// Source is the input document.
	Source       *xosc.Document
	Declarations param.Declarations
	seq          *distribution.Sequence
	ev           value.Evaluator
}

// Expand reads the scenario and distribution of doc without resolving any
// variant.
func Expand(ctx context.Context, doc *xosc.Document, opts Options) (*Plan, error) {
	p := &Plan{Source: doc, Scenario: doc, ev: opts.Evaluator}

	switch doc.Kind() {
	case xosc.KindCatalog:
		return nil, ErrNotScenario.With(
			slog.String("file", doc.Path),
			slog.String("kind", doc.Kind().String()))

	case xosc.KindDistribution:
		scenario, err := loadScenario(doc)
		if err != nil {
			return nil, err
		}

		p.Scenario = scenario
	}

	decls, err := xosc.Declarations(p.Scenario.Root)
	if err != nil {
		return nil, err
	}

	if err := decls.Validate(); err != nil {
		return nil, err
	}

	p.Declarations = decls

	if p.Source == p.Scenario {
		return p, nil
	}

	spec, err := xosc.Distribution(doc)
	if err != nil {
		return nil, err
	}

	xopts := []distribution.Option{
		distribution.WithEvaluator(opts.Evaluator),
		distribution.WithLogger(opts.logger()),
	}
	if opts.Seed != nil {
		xopts = append(xopts, distribution.WithSeed(*opts.Seed))
	}

	if p.seq, err = distribution.Expand(spec, param.Scope{}, decls, xopts...); err != nil {
		return nil, err
	}

	opts.logger().DebugContext(ctx, "expanded document",
		slog.String("source", doc.Path),
		slog.String("scenario", p.Scenario.Path),
		slog.Int("variants", p.Len()),
	)

	return p, nil
}

// loadScenario loads the scenario a distribution document names, relative
// to the distribution document.
func loadScenario(doc *xosc.Document) (*xosc.Document, error) {
	path, err := xosc.ScenarioFile(doc)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(doc.Dir(), path)
	}

	scenario, err := xosc.Load(path)
	if err != nil {
		return nil, ErrScenario.Wrap(err).With(slog.String("source", doc.Path))
	}

	if scenario.Kind() != xosc.KindScenario {
		return nil, ErrNotScenario.With(
			slog.String("file", path),
			slog.String("kind", scenario.Kind().String()))
	}

	return scenario, nil
}

// Len returns the number of variants.
func (p *Plan) Len() int {
	if p.seq == nil {
		return 1
	}

	return p.seq.Len()
}

// Seed returns the seed, if the plan has a stochastic distribution.
func (p *Plan) Seed() (uint64, bool) {
	if p.seq == nil || !p.seq.Stochastic() {
		return 0, false
	}

	return p.seq.Seed(), true
}

// Variant returns variant i with its scope bound.
func (p *Plan) Variant(i int) (distribution.Variant, error) {
	if p.seq != nil {
		return p.seq.At(i)
	}

	if i != 0 {
		return distribution.Variant{}, distribution.ErrInvalidDistribution.With(
			slog.String("reason", "variant index out of range"),
			slog.Int("index", i))
	}

	scope, err := param.Bind(param.Scope{}, "scenario", p.Declarations, nil, p.ev)
	if err != nil {
		return distribution.Variant{}, err
	}

	return distribution.Variant{Scope: scope, ID: distribution.VariantID(nil)}, nil
}

// Variants yields every variant in index order. Iteration stops after the
// first error.
func (p *Plan) Variants() iter.Seq2[distribution.Variant, error] {
	return func(yield func(distribution.Variant, error) bool) {
		for i := range p.Len() {
			v, err := p.Variant(i)
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// ExtractScenarioParameters returns the default value of every declared
// parameter.
func ExtractScenarioParameters(decls param.Declarations) map[string]string {
	return param.Extract(decls)
}
