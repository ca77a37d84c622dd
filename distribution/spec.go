package distribution

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/ardnew/xosc/param"
	"github.com/ardnew/xosc/pkg"
)

// Spec describes how parameters vary across variants.
type Spec struct {
	// Seed seeds stochastic axes. A nil Seed draws a fresh random seed on
	// every expansion.
	Seed *uint64
	// Axes combine as a cartesian product, first axis outermost.
	Axes []Axis
}

// Axis is one independent dimension of variation.
type Axis interface {
	// Parameters returns the names of the parameters the axis assigns.
	Parameters() []string
	validate() error
	// size returns the number of positions along the axis.
	size() int
}

// Single varies one parameter over either a Set or a Range.
type Single struct {
	Set       *Set
	Range     *Range
	Parameter string
}

// Set is an ordered list of literal values.
type Set struct {
	Values []string
}

// Range is the inclusive arithmetic progression Lower, Lower+Step, ...
// not exceeding Upper.
type Range struct {
	Lower, Upper, Step float64
}

// Multi varies several parameters together. Each ValueSet is applied
// atomically.
type Multi struct {
	Sets []ValueSet
}

// ValueSet assigns several parameters at once.
type ValueSet struct {
	Assignments []param.Assignment
}

// Stochastic draws Runs joint samples, one value for every variable per
// run.
type Stochastic struct {
	Variables []Variable
	Runs      int
}

// Variable binds a parameter to a probability law.
type Variable struct {
	Law       Law
	Parameter string
}

// Parameters implements [Axis].
func (s Single) Parameters() []string { return []string{s.Parameter} }

// Parameters implements [Axis]. Names are listed in first-use order.
func (m Multi) Parameters() []string {
	var names []string

	seen := map[string]bool{}

	for _, vs := range m.Sets {
		for _, a := range vs.Assignments {
			if !seen[a.Name] {
				seen[a.Name] = true
				names = append(names, a.Name)
			}
		}
	}

	return names
}

// Parameters implements [Axis].
func (s Stochastic) Parameters() []string {
	names := make([]string, len(s.Variables))
	for i, p := range s.Variables {
		names[i] = p.Parameter
	}

	return names
}

// Validate checks every axis without expanding them.
func (s Spec) Validate() error {
	if len(s.Axes) == 0 {
		return ErrEmptyDistribution
	}

	n := 1

	for i, a := range s.Axes {
		at := slog.Int("axis", i)

		if err := a.validate(); err != nil {
			return annotate(err, at)
		}

		if n > maxVariants/a.size() {
			return ErrTooManyVariants.With(at)
		}

		n *= a.size()
	}

	return nil
}

func (s Single) size() int {
	if s.Set != nil {
		return len(s.Set.Values)
	}

	return s.Range.Count()
}

func (m Multi) size() int { return len(m.Sets) }

func (s Stochastic) size() int { return s.Runs }

func annotate(err error, attrs ...slog.Attr) error {
	return pkg.WrapError(err).With(attrs...)
}

func (s Single) validate() error {
	at := slog.String("parameter", s.Parameter)

	switch {
	case (s.Set == nil) == (s.Range == nil):
		return ErrInvalidDistribution.With(at,
			slog.String("reason", "exactly one of set or range is required"))

	case s.Set != nil && len(s.Set.Values) == 0:
		return ErrEmptyDistribution.With(at, slog.String("reason", "empty set"))

	case s.Range != nil:
		return s.Range.validate(at)
	}

	return nil
}

func (r Range) validate(at slog.Attr) error {
	for _, v := range []float64{r.Lower, r.Upper, r.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidRange.With(at, slog.String("reason", "non-finite bound"))
		}
	}

	if r.Step <= 0 {
		return ErrInvalidRange.With(at,
			slog.String("reason", "step must be positive"),
			slog.Float64("step", r.Step))
	}

	if r.Upper < r.Lower {
		return ErrInvalidRange.With(at,
			slog.String("reason", "upper limit below lower limit"),
			slog.Float64("lower", r.Lower),
			slog.Float64("upper", r.Upper))
	}

	if r.Count() > maxVariants {
		return ErrTooManyVariants.With(at, slog.Int("count", r.Count()))
	}

	return nil
}

// Count returns the number of values in the range.
func (r Range) Count() int {
	n := math.Floor((r.Upper-r.Lower)/r.Step+1e-9) + 1
	if n > maxVariants {
		return maxVariants + 1
	}

	return int(n)
}

// Value returns the i-th value of the range, rounded to the decimal
// precision of Lower and Step.
func (r Range) Value(i int) float64 {
	v := r.Lower + float64(i)*r.Step

	p := max(decimals(r.Lower), decimals(r.Step))
	if p > maxDecimals {
		return v
	}

	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', p, 64), 64)
	if err != nil {
		return v
	}

	return rounded
}

// maxDecimals is the most fractional digits a float64 carries exactly.
const maxDecimals = 15

// decimals returns the number of fractional digits in the shortest decimal
// form of v.
func decimals(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if _, frac, ok := strings.Cut(s, "."); ok {
		return len(frac)
	}

	return 0
}

func (m Multi) validate() error {
	if len(m.Sets) == 0 {
		return ErrEmptyDistribution.With(slog.String("reason", "no value sets"))
	}

	for i, vs := range m.Sets {
		at := slog.String("set", strconv.Itoa(i))

		if len(vs.Assignments) == 0 {
			return ErrEmptyDistribution.With(at, slog.String("reason", "empty value set"))
		}

		seen := map[string]bool{}
		for _, a := range vs.Assignments {
			if seen[a.Name] {
				return ErrInvalidDistribution.With(at,
					slog.String("parameter", a.Name),
					slog.String("reason", "parameter assigned twice in one value set"))
			}

			seen[a.Name] = true
		}
	}

	return nil
}

func (s Stochastic) validate() error {
	if s.Runs < 1 {
		return ErrInvalidDistribution.With(
			slog.String("reason", "number of runs must be at least 1"),
			slog.Int("runs", s.Runs))
	}

	if s.Runs > maxVariants {
		return ErrTooManyVariants.With(slog.Int("runs", s.Runs))
	}

	if len(s.Variables) == 0 {
		return ErrEmptyDistribution.With(slog.String("reason", "no stochastic variables"))
	}

	for _, p := range s.Variables {
		if p.Law == nil {
			return ErrInvalidDistribution.With(
				slog.String("parameter", p.Parameter),
				slog.String("reason", "missing law"))
		}

		if err := p.Law.Validate(); err != nil {
			return annotate(err, slog.String("parameter", p.Parameter))
		}
	}

	return nil
}
