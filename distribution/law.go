package distribution

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/ardnew/xosc/value"
)

// Law is a probability law a stochastic parameter is sampled from.
type Law interface {
	Validate() error
	// Sample draws one value and formats it as a literal of type t.
	Sample(r *rand.Rand, t value.Type) string
}

// Bounds truncates a law to [Lower, Upper].
type Bounds struct {
	Lower, Upper float64
}

func (b *Bounds) validate() error {
	if b == nil {
		return nil
	}

	if !(b.Lower <= b.Upper) {
		return ErrInvalidRange.With(
			slog.Float64("lower", b.Lower),
			slog.Float64("upper", b.Upper))
	}

	return nil
}

// maxRejections caps rejection sampling before falling back to clamping.
const maxRejections = 1000

// truncate draws from fn until a value falls within b.
func (b *Bounds) truncate(fn func() float64) float64 {
	x := fn()
	if b == nil {
		return x
	}

	for range maxRejections {
		if x >= b.Lower && x <= b.Upper {
			return x
		}

		x = fn()
	}

	return math.Min(math.Max(x, b.Lower), b.Upper)
}

// Normal is the normal distribution with the given mean and standard
// deviation, optionally truncated.
type Normal struct {
	Bounds *Bounds
	Mean   float64
	StdDev float64
}

// Validate implements [Law].
func (n Normal) Validate() error {
	if !(n.StdDev >= 0) || math.IsInf(n.StdDev, 0) || math.IsNaN(n.Mean) {
		return ErrInvalidDistribution.With(
			slog.String("law", "normal"),
			slog.Float64("stddev", n.StdDev))
	}

	return n.Bounds.validate()
}

// Sample implements [Law].
func (n Normal) Sample(r *rand.Rand, t value.Type) string {
	return t.FormatNumber(n.Bounds.truncate(func() float64 {
		return n.Mean + n.StdDev*r.NormFloat64()
	}))
}

// LogNormal is the distribution of exp(X) for X normal with mean Mu and
// standard deviation Sigma, optionally truncated.
type LogNormal struct {
	Bounds *Bounds
	Mu     float64
	Sigma  float64
}

// LogNormalFromMoments returns the LogNormal law whose own mean and variance
// are mean and variance.
func LogNormalFromMoments(mean, variance float64, b *Bounds) LogNormal {
	s2 := math.Log1p(variance / (mean * mean))

	return LogNormal{Mu: math.Log(mean) - s2/2, Sigma: math.Sqrt(s2), Bounds: b}
}

// Validate implements [Law].
func (l LogNormal) Validate() error {
	if !(l.Sigma >= 0) || math.IsInf(l.Sigma, 0) || math.IsNaN(l.Mu) || math.IsInf(l.Mu, 0) {
		return ErrInvalidDistribution.With(
			slog.String("law", "lognormal"),
			slog.Float64("mu", l.Mu),
			slog.Float64("sigma", l.Sigma))
	}

	return l.Bounds.validate()
}

// Sample implements [Law].
func (l LogNormal) Sample(r *rand.Rand, t value.Type) string {
	return t.FormatNumber(l.Bounds.truncate(func() float64 {
		return math.Exp(l.Mu + l.Sigma*r.NormFloat64())
	}))
}

// Uniform is the continuous uniform distribution on [Lower, Upper].
type Uniform struct {
	Lower, Upper float64
}

// Validate implements [Law].
func (u Uniform) Validate() error {
	if math.IsInf(u.Lower, 0) || math.IsInf(u.Upper, 0) {
		return ErrInvalidRange.With(slog.String("law", "uniform"))
	}

	return (&Bounds{Lower: u.Lower, Upper: u.Upper}).validate()
}

// Sample implements [Law].
func (u Uniform) Sample(r *rand.Rand, t value.Type) string {
	return t.FormatNumber(u.Lower + r.Float64()*(u.Upper-u.Lower))
}

// Poisson is the Poisson distribution with the given mean, optionally
// truncated.
type Poisson struct {
	Bounds *Bounds
	Mean   float64
}

// Validate implements [Law].
func (p Poisson) Validate() error {
	if !(p.Mean > 0) || math.IsInf(p.Mean, 0) {
		return ErrInvalidDistribution.With(
			slog.String("law", "poisson"),
			slog.Float64("mean", p.Mean))
	}

	return p.Bounds.validate()
}

// Sample implements [Law].
func (p Poisson) Sample(r *rand.Rand, t value.Type) string {
	return t.FormatNumber(p.Bounds.truncate(func() float64 {
		return poisson(r, p.Mean)
	}))
}

// poisson uses Knuth's multiplication method for small means and a rounded
// normal approximation otherwise.
func poisson(r *rand.Rand, mean float64) float64 {
	if mean >= 30 {
		return math.Max(0, math.Round(mean+math.Sqrt(mean)*r.NormFloat64()))
	}

	limit := math.Exp(-mean)
	k, prod := 0.0, r.Float64()

	for prod > limit {
		k++
		prod *= r.Float64()
	}

	return k
}

// Bin is one weighted interval of a Histogram.
type Bin struct {
	Lower, Upper float64
	Weight       float64
}

// Histogram picks a bin with probability proportional to its weight and
// then a uniform value within it.
type Histogram struct {
	Bins []Bin
}

// Validate implements [Law].
func (h Histogram) Validate() error {
	if len(h.Bins) == 0 {
		return ErrEmptyDistribution.With(slog.String("law", "histogram"))
	}

	total := 0.0

	for i, b := range h.Bins {
		if err := (&Bounds{Lower: b.Lower, Upper: b.Upper}).validate(); err != nil {
			return annotate(err, slog.Int("bin", i))
		}

		if !(b.Weight >= 0) {
			return ErrInvalidDistribution.With(
				slog.String("law", "histogram"),
				slog.Int("bin", i),
				slog.Float64("weight", b.Weight))
		}

		total += b.Weight
	}

	if !(total > 0) {
		return ErrInvalidDistribution.With(
			slog.String("law", "histogram"),
			slog.String("reason", "weights sum to zero"))
	}

	return nil
}

// Sample implements [Law].
func (h Histogram) Sample(r *rand.Rand, t value.Type) string {
	weights := make([]float64, len(h.Bins))
	for i, b := range h.Bins {
		weights[i] = b.Weight
	}

	b := h.Bins[pick(r, weights)]

	return t.FormatNumber(b.Lower + r.Float64()*(b.Upper-b.Lower))
}

// Weighted is one outcome of a ProbabilitySet.
type Weighted struct {
	Value  string
	Weight float64
}

// ProbabilitySet picks one of a finite set of literal values with
// probability proportional to its weight.
type ProbabilitySet struct {
	Elements []Weighted
}

// Validate implements [Law].
func (p ProbabilitySet) Validate() error {
	if len(p.Elements) == 0 {
		return ErrEmptyDistribution.With(slog.String("law", "probabilitySet"))
	}

	total := 0.0

	for i, e := range p.Elements {
		if !(e.Weight >= 0) || math.IsInf(e.Weight, 0) {
			return ErrInvalidDistribution.With(
				slog.String("law", "probabilitySet"),
				slog.Int("element", i),
				slog.Float64("weight", e.Weight))
		}

		total += e.Weight
	}

	if !(total > 0) {
		return ErrInvalidDistribution.With(
			slog.String("law", "probabilitySet"),
			slog.String("reason", "weights sum to zero"))
	}

	return nil
}

// Sample implements [Law]. The value is returned verbatim.
func (p ProbabilitySet) Sample(r *rand.Rand, _ value.Type) string {
	weights := make([]float64, len(p.Elements))
	for i, e := range p.Elements {
		weights[i] = e.Weight
	}

	return p.Elements[pick(r, weights)].Value
}

// UserDefined is a law implemented by an external tool. It cannot be
// sampled here.
type UserDefined struct {
	Type    string
	Content string
}

// Validate implements [Law]. It always fails.
func (u UserDefined) Validate() error {
	return ErrUnsupportedDistribution.With(slog.String("law", u.Type))
}

// Sample implements [Law].
func (UserDefined) Sample(*rand.Rand, value.Type) string { return "" }

// pick returns an index with probability proportional to its weight.
func pick(r *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}

	x := r.Float64() * total
	for i, w := range weights {
		if x < w {
			return i
		}

		x -= w
	}

	// Rounding can leave x just past the last positive weight.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}

	return 0
}
