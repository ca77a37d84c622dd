package engine

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/xosc/catalog"
	"github.com/ardnew/xosc/param"
	"github.com/ardnew/xosc/xosc"
)

// ResolvedDocument is one fully literal scenario.
type ResolvedDocument struct {
	// Document has every catalog reference replaced by its entry, every
	// attribute literal, and every declaration set to its effective value.
	Document *xosc.Document
	// Assignments are the varied parameters in axis order.
	Assignments []param.Assignment
	Index       int
	ID          uuid.UUID
}

// ResolveDocument resolves every variant of doc.
//
// Either every variant resolves or an error naming the first failing
// variant is returned. Results are in variant order regardless of the
// order in which they complete.
func ResolveDocument(ctx context.Context, doc *xosc.Document, opts Options) ([]ResolvedDocument, error) {
	start := time.Now()

	plan, err := Expand(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	session, err := newSession(plan, opts)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]ResolvedDocument, plan.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range results {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			r, err := resolve(gctx, plan, session, i)
			if err != nil {
				return ErrVariant.Wrap(err).With(slog.Int("variant", i))
			}

			results[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The parent context may have ended before any worker observed it.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts.logger().InfoContext(ctx, "resolved document",
		slog.String("source", doc.Path),
		slog.Int("variants", len(results)),
		slog.Int("workers", workers),
		slog.Duration("elapsed", time.Since(start)),
	)

	return results, nil
}

func newSession(plan *Plan, opts Options) (*catalog.Session, error) {
	base := opts.BasePath
	if base == "" {
		base = plan.Scenario.Dir()
	}

	own, err := catalog.LocationsFrom(plan.Scenario.Root)
	if err != nil {
		return nil, err
	}

	locs := append(append(catalog.Locations{}, opts.Locations...), own...)

	r := opts.Resolver
	if r == nil {
		r = catalog.NewResolver(
			catalog.WithEvaluator(opts.Evaluator),
			catalog.WithMaxDepth(opts.MaxCatalogDepth),
			catalog.WithLogger(opts.logger()),
		)
	}

	return r.Session(locs, base), nil
}

func resolve(
	ctx context.Context,
	plan *Plan,
	session *catalog.Session,
	i int,
) (ResolvedDocument, error) {
	v, err := plan.Variant(i)
	if err != nil {
		return ResolvedDocument{}, err
	}

	out := plan.Scenario.Clone()

	if err := session.ResolveTree(ctx, out.Root, v.Scope); err != nil {
		return ResolvedDocument{}, err
	}

	xosc.SetDeclarationValues(out.Root, v.Scope)

	return ResolvedDocument{
		Document:    out,
		Assignments: v.Assignments,
		Index:       i,
		ID:          v.ID,
	}, nil
}
