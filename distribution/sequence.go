package distribution

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	"golang.org/x/text/unicode/norm"

	"github.com/ardnew/xosc/log"
	"github.com/ardnew/xosc/param"
	"github.com/ardnew/xosc/value"
)

// maxVariants bounds the size of an expansion.
const maxVariants = 1 << 24

// Variant is one concrete assignment of every varied parameter.
type Variant struct {
	// Scope is the base scope overlaid with the declaration defaults and
	// this variant's assignments.
	Scope param.Scope
	// Assignments lists the varied parameters in axis order.
	Assignments []param.Assignment
	// Index is the variant's position in enumeration order.
	Index int
	// ID is derived from the assignments alone, so equal assignments yield
	// equal IDs across runs.
	ID uuid.UUID
}

// Sequence is the finite, restartable result of [Expand].
type Sequence struct {
	base  param.Scope
	ev    value.Evaluator
	decls param.Declarations
	axes  [][][]param.Assignment // axis -> position -> assignments
	n     int
	seed  uint64
	// stochastic reports whether any axis samples from the seed.
	stochastic bool
}

// Option configures [Expand].
type Option func(*expander)

type expander struct {
	ev     value.Evaluator
	seed   *uint64
	logger log.Logger
}

// WithEvaluator sets the evaluator used when binding variant scopes.
func WithEvaluator(ev value.Evaluator) Option {
	return func(x *expander) { x.ev = ev }
}

// WithSeed overrides the seed given by the [Spec].
func WithSeed(seed uint64) Option {
	return func(x *expander) { x.seed = &seed }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(x *expander) { x.logger = l }
}

// Expand validates spec and returns the sequence of variants it describes.
//
// Every varied parameter must be declared in decls, and every literal value
// must be valid for the parameter's declared type. Variant scopes overlay
// the declaration defaults on base.
func Expand(
	spec Spec,
	base param.Scope,
	decls param.Declarations,
	opts ...Option,
) (*Sequence, error) {
	x := expander{logger: log.Default()}
	for _, opt := range opts {
		opt(&x)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if err := decls.Validate(); err != nil {
		return nil, err
	}

	seq := &Sequence{base: base, ev: x.ev, decls: decls, n: 1}

	switch {
	case x.seed != nil:
		seq.seed = *x.seed
	case spec.Seed != nil:
		seq.seed = *spec.Seed
	default:
		seq.seed = rand.Uint64()
	}

	varied := map[string]int{}

	for i, axis := range spec.Axes {
		at := slog.Int("axis", i)

		for _, name := range axis.Parameters() {
			if _, ok := decls.Lookup(name); !ok {
				return nil, value.ErrParameterNotFound.With(slog.String("parameter", name), at)
			}

			if prev, ok := varied[name]; ok {
				return nil, ErrInvalidDistribution.With(
					slog.String("parameter", name),
					slog.String("reason", "varied by more than one axis"),
					slog.Int("first", prev), at)
			}

			varied[name] = i
		}

		positions := seq.positions(axis)
		if len(positions) == 0 {
			return nil, ErrInvalidDistribution.With(
				slog.String("reason", "unsupported axis"),
				slog.String("type", fmt.Sprintf("%T", axis)), at)
		}

		for _, as := range positions {
			for _, a := range as {
				if err := checkType(decls, a); err != nil {
					return nil, annotate(err, at)
				}
			}
		}

		if seq.n > maxVariants/len(positions) {
			return nil, ErrTooManyVariants.With(at)
		}

		if _, ok := axis.(Stochastic); ok {
			seq.stochastic = true
		}

		seq.n *= len(positions)
		seq.axes = append(seq.axes, positions)
	}

	x.logger.DebugContext(context.Background(), "expand distribution",
		slog.Int("axes", len(seq.axes)),
		slog.Int("variants", seq.n),
		slog.Uint64("seed", seq.seed),
	)

	return seq, nil
}

func checkType(decls param.Declarations, a param.Assignment) error {
	if value.Parse(a.Value, value.String).Kind() != value.KindLiteral {
		return nil
	}

	d, _ := decls.Lookup(a.Name)
	if err := d.Type.Validate(a.Value); err != nil {
		return annotate(err, slog.String("parameter", a.Name))
	}

	return nil
}

// positions computes the assignments at every position of axis.
func (s *Sequence) positions(axis Axis) [][]param.Assignment {
	typeOf := func(name string) value.Type {
		d, _ := s.decls.Lookup(name)

		return d.Type
	}

	var out [][]param.Assignment

	switch a := axis.(type) {
	case Single:
		if a.Set != nil {
			for _, v := range a.Set.Values {
				out = append(out, []param.Assignment{{Name: a.Parameter, Value: v}})
			}

			break
		}

		t := typeOf(a.Parameter)
		for i := range a.Range.Count() {
			out = append(out, []param.Assignment{
				{Name: a.Parameter, Value: t.FormatNumber(a.Range.Value(i))},
			})
		}

	case Multi:
		for _, vs := range a.Sets {
			out = append(out, slices.Clone(vs.Assignments))
		}

	case Stochastic:
		out = make([][]param.Assignment, a.Runs)

		for _, v := range a.Variables {
			r := rand.New(rand.NewPCG(s.seed, xxh3.HashString(v.Parameter)))
			t := typeOf(v.Parameter)

			for run := range a.Runs {
				out[run] = append(out[run], param.Assignment{
					Name:  v.Parameter,
					Value: v.Law.Sample(r, t),
				})
			}
		}
	}

	return out
}

// Len returns the number of variants.
func (s *Sequence) Len() int { return s.n }

// Seed returns the seed used for stochastic axes.
func (s *Sequence) Seed() uint64 { return s.seed }

// Stochastic reports whether any axis is sampled from [Sequence.Seed].
func (s *Sequence) Stochastic() bool { return s.stochastic }

// Assignments returns the varied parameters of variant i in axis order.
func (s *Sequence) Assignments(i int) []param.Assignment {
	if i < 0 || i >= s.n {
		return nil
	}

	digits := make([]int, len(s.axes))
	for k := len(s.axes) - 1; k >= 0; k-- {
		digits[k] = i % len(s.axes[k])
		i /= len(s.axes[k])
	}

	var as []param.Assignment
	for k, d := range digits {
		as = append(as, s.axes[k][d]...)
	}

	return as
}

// At returns variant i with its scope bound.
func (s *Sequence) At(i int) (Variant, error) {
	if i < 0 || i >= s.n {
		return Variant{}, ErrInvalidDistribution.With(
			slog.String("reason", "variant index out of range"),
			slog.Int("index", i))
	}

	as := s.Assignments(i)

	scope, err := param.Bind(s.base, "variant#"+strconv.Itoa(i), s.decls, as, s.ev)
	if err != nil {
		return Variant{}, annotate(err, slog.Int("variant", i))
	}

	return Variant{Scope: scope, Assignments: as, Index: i, ID: VariantID(as)}, nil
}

// All yields every variant in index order. Iteration stops after the first
// error.
func (s *Sequence) All() iter.Seq2[Variant, error] {
	return func(yield func(Variant, error) bool) {
		for i := range s.n {
			v, err := s.At(i)
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

//nolint:gochecknoglobals
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ardnew/xosc/variant"))

// VariantID derives a name-based UUID from the assignments. The order of
// as does not matter.
func VariantID(as []param.Assignment) uuid.UUID {
	sorted := slices.SortedFunc(slices.Values(as), func(a, b param.Assignment) int {
		return strings.Compare(a.Name, b.Name)
	})

	var sb strings.Builder
	for _, a := range sorted {
		sb.WriteString(norm.NFC.String(a.Name))
		sb.WriteByte('=')
		sb.WriteString(norm.NFC.String(a.Value))
		sb.WriteByte(0)
	}

	return uuid.NewSHA1(namespace, []byte(sb.String()))
}
