package cmd

import (
	"context"
	"io"

	"github.com/ardnew/xosc/engine"
	"github.com/ardnew/xosc/formula"
	"github.com/ardnew/xosc/log"
)

// Expand lists the variants of a distribution without resolving catalogs.
type Expand struct {
	Input  string  `arg:"" default:"-" help:"Scenario or distribution file, or '-' for stdin" optional:""`
	Format string  `default:"text" enum:"${formatEnum}" help:"Output format (${enum})" short:"F"`
	Seed   *uint64 `help:"Override the stochastic seed"`
	Eval   bool    `default:"true" help:"Evaluate parameter expressions" negatable:""`
}

// Run executes the expand command.
func (e *Expand) Run(ctx context.Context) error {
	doc, err := readDocument(e.Input)
	if err != nil {
		return err
	}

	opts := engine.Options{Seed: e.Seed, Logger: log.Default()}
	if e.Eval {
		opts.Evaluator = formula.New(formula.WithLogger(opts.Logger))
	}

	plan, err := engine.Expand(ctx, doc, opts)
	if err != nil {
		return err
	}

	rec := makePlanRecord(plan)

	for v, err := range plan.Variants() {
		if err != nil {
			return err
		}

		rec.Variants = append(rec.Variants, makeVariantRecord(v.Index, v.ID.String(), v.Assignments))
	}

	return encode(ctx, stdout(ctx), e.Format, rec, func(w io.Writer) error {
		return writeVariants(w, rec)
	})
}
