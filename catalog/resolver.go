package catalog

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"aqwari.net/xml/xmltree"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/xosc/log"
	"github.com/ardnew/xosc/param"
	"github.com/ardnew/xosc/pkg"
	"github.com/ardnew/xosc/value"
	"github.com/ardnew/xosc/xosc"
)

// DefaultMaxDepth is the default bound on nested catalog references.
const DefaultMaxDepth = 16

// maxSuggestions bounds the names offered for an unknown catalog or entry.
const maxSuggestions = 3

// Resolver resolves catalog references. It is safe for concurrent use.
type Resolver struct {
	cache    *Cache
	ev       value.Evaluator
	logger   log.Logger
	maxDepth int
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithCache shares cache with other resolvers.
func WithCache(cache *Cache) Option {
	return func(r *Resolver) { r.cache = cache }
}

// WithMaxDepth bounds the nesting of catalog references. Values below 1 are
// ignored.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithEvaluator sets the evaluator for expressions in catalog entries.
func WithEvaluator(ev value.Evaluator) Option {
	return func(r *Resolver) { r.ev = ev }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver returns a resolver with its own cache unless [WithCache] is
// given.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{maxDepth: DefaultMaxDepth, logger: log.Default()}
	for _, opt := range opts {
		opt(r)
	}

	if r.cache == nil {
		r.cache = NewCache()
	}

	return r
}

// Cache returns the resolver's directory cache.
func (r *Resolver) Cache() *Cache { return r.cache }

// Evaluator returns the resolver's expression evaluator, if any.
func (r *Resolver) Evaluator() value.Evaluator { return r.ev }

// Resolve resolves one reference in callerScope. Relative directories in
// locs are taken relative to basePath.
func (r *Resolver) Resolve(
	ctx context.Context,
	ref Reference,
	locs Locations,
	callerScope param.Scope,
	basePath string,
) (*Resolved, error) {
	return r.Session(locs, basePath).Resolve(ctx, ref, callerScope)
}

// Session starts a resolution pass over locs. Relative directories are taken
// relative to basePath.
func (r *Resolver) Session(locs Locations, basePath string) *Session {
	return &Session{r: r, locs: locs.Resolve(basePath)}
}

// Session is one resolution pass over a fixed set of locations. It
// remembers every entry it has looked up. A Session is safe for concurrent
// use.
type Session struct {
	r       *Resolver
	locs    Locations
	entries sync.Map // lookup key -> *Entry
}

// Locations returns the session's absolute catalog locations.
func (s *Session) Locations() Locations { return s.locs }

// Resolve resolves ref in callerScope.
func (s *Session) Resolve(ctx context.Context, ref Reference, callerScope param.Scope) (*Resolved, error) {
	return s.resolve(ctx, ref, callerScope, nil)
}

// ResolveTree replaces every value in el and its descendants with its
// literal value in scope, and every catalog reference with its resolved
// entry. el is modified in place.
func (s *Session) ResolveTree(ctx context.Context, el *xmltree.Element, scope param.Scope) error {
	return s.resolveTree(ctx, el, scope, nil)
}

func (s *Session) resolveTree(
	ctx context.Context,
	el *xmltree.Element,
	scope param.Scope,
	chain []string,
) error {
	for site := range xosc.Sites(el) {
		switch site := site.(type) {
		case *xosc.ValueSite:
			v, err := value.Substitute(site.Raw(), scope, s.r.ev)
			if err != nil {
				return pkg.WrapError(err).With(
					slog.String("element", site.Element().Name.Local),
					slog.String("attribute", site.Name()))
			}

			site.Set(v)

		case *xosc.ReferenceSite:
			if err := ctx.Err(); err != nil {
				return err
			}

			ref, err := ReferenceFrom(site.Element(), site.Parent())
			if err != nil {
				return err
			}

			res, err := s.resolve(ctx, ref, scope, chain)
			if err != nil {
				return err
			}

			site.Replace(res.Element)
		}
	}

	return nil
}

func (s *Session) resolve(
	ctx context.Context,
	ref Reference,
	scope param.Scope,
	chain []string,
) (*Resolved, error) {
	var err error

	if ref.Catalog, err = value.Substitute(ref.Catalog, scope, s.r.ev); err != nil {
		return nil, pkg.WrapError(err).With(slog.String("reference", ref.String()))
	}

	if ref.Entry, err = value.Substitute(ref.Entry, scope, s.r.ev); err != nil {
		return nil, pkg.WrapError(err).With(slog.String("reference", ref.String()))
	}

	chain = append(slices.Clip(chain), ref.String())
	if len(chain) > s.r.maxDepth {
		return nil, ErrMaxCatalogDepthExceeded.With(
			slog.Int("max_depth", s.r.maxDepth),
			slog.String("chain", strings.Join(chain, " -> ")))
	}

	entry, err := s.lookup(ctx, ref)
	if err != nil {
		return nil, err
	}

	// Assignment values are written in the caller's terms.
	as := make([]param.Assignment, len(ref.Assignments))
	for i, a := range ref.Assignments {
		v, err := value.Substitute(a.Value, scope, s.r.ev)
		if err != nil {
			return nil, pkg.WrapError(err).With(
				slog.String("reference", ref.String()),
				slog.String("assignment", a.Name))
		}

		as[i] = param.Assignment{Name: a.Name, Value: v}
	}

	bound, err := param.Bind(scope, "catalog:"+entry.String(), entry.Declarations, as, s.r.ev)
	if err != nil {
		return nil, pkg.WrapError(err).With(slog.String("reference", ref.String()))
	}

	el := xosc.Clone(entry.Element)
	xosc.RemoveDeclarations(el)

	if err := s.resolveTree(ctx, el, bound, chain); err != nil {
		return nil, err
	}

	s.r.logger.TraceContext(ctx, "resolved catalog reference",
		slog.String("reference", ref.String()),
		slog.Int("depth", len(chain)),
	)

	return &Resolved{Entry: entry, Element: el, Scope: bound}, nil
}

// lookup finds the entry named by ref in the first location defining its
// catalog and entry.
func (s *Session) lookup(ctx context.Context, ref Reference) (*Entry, error) {
	key := lookupKey(ref)
	if v, ok := s.entries.Load(key); ok {
		return v.(*Entry), nil
	}

	at := []slog.Attr{
		slog.String("catalog", ref.Catalog),
		slog.String("entry", ref.Entry),
	}

	locs := s.locs.accepting(ref.Accept)
	if len(locs) == 0 {
		return nil, ErrCatalogNotConfigured.With(append(at,
			slog.String("reason", "no location for "+kindList(ref.Accept)))...)
	}

	var (
		catalogs []string
		entries  []string
		defined  bool
	)

	for _, loc := range locs {
		d, err := s.r.cache.index(ctx, loc.Directory, s.r.logger)
		if err != nil {
			return nil, err
		}

		cat, ok := d.catalogs[ref.Catalog]
		if !ok {
			catalogs = append(catalogs, d.catalogNames()...)

			continue
		}

		defined = true

		e, ok := cat.entries[ref.Entry]
		if !ok {
			entries = append(entries, cat.names...)

			continue
		}

		if len(ref.Accept) > 0 && !slices.Contains(ref.Accept, e.Kind) {
			return nil, ErrCatalogTypeMismatch.With(append(at,
				slog.String("kind", e.Kind.String()),
				slog.String("expected", kindList(ref.Accept)),
				slog.String("file", e.File))...)
		}

		s.entries.Store(key, e)

		return e, nil
	}

	if !defined {
		return nil, ErrCatalogNotConfigured.With(append(at,
			slog.Any("suggestions", suggest(ref.Catalog, catalogs)))...)
	}

	return nil, ErrEntryNotFound.With(append(at,
		slog.Any("suggestions", suggest(ref.Entry, entries)))...)
}

func lookupKey(ref Reference) string {
	var b strings.Builder

	b.WriteString(ref.Catalog)
	b.WriteByte(0)
	b.WriteString(ref.Entry)

	for _, k := range ref.Accept {
		b.WriteByte(byte(k) + '0')
	}

	return b.String()
}

func kindList(kinds []Kind) string {
	if len(kinds) == 0 {
		return KindAny.String()
	}

	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}

	return strings.Join(names, "|")
}

// suggest returns up to maxSuggestions names from candidates that fuzzily
// match name, best first.
func suggest(name string, candidates []string) []string {
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	var out []string

	for _, m := range fuzzy.Find(name, candidates) {
		if len(out) == maxSuggestions {
			break
		}

		out = append(out, m.Str)
	}

	return out
}
