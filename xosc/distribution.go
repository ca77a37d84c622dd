package xosc

import (
	"log/slog"
	"math"
	"strconv"

	"aqwari.net/xml/xmltree"

	"github.com/ardnew/xosc/distribution"
	"github.com/ardnew/xosc/param"
)

// ScenarioFile returns the scenario path named by a distribution document.
// A relative path is returned as written.
func ScenarioFile(doc *Document) (string, error) {
	pvd := Child(doc.Root, "ParameterValueDistribution")
	if pvd == nil {
		return "", ErrMalformed.With(slog.String("reason", "not a distribution document"))
	}

	sf := Child(pvd, "ScenarioFile")
	if sf == nil {
		return "", ErrMalformed.With(
			slog.String("element", pvd.Name.Local),
			slog.String("reason", "missing ScenarioFile"))
	}

	return require(sf, "filepath")
}

// Distribution reads the ParameterValueDistribution of doc.
//
// Deterministic single-parameter distributions become one axis each, in
// document order. Multi-parameter distributions become one axis each. All
// stochastic distributions share one axis of numberOfTestRuns joint
// samples.
func Distribution(doc *Document) (distribution.Spec, error) {
	var spec distribution.Spec

	pvd := Child(doc.Root, "ParameterValueDistribution")
	if pvd == nil {
		return spec, ErrMalformed.With(slog.String("reason", "not a distribution document"))
	}

	if det := Child(pvd, "Deterministic"); det != nil {
		for i := range det.Children {
			axis, err := deterministic(&det.Children[i])
			if err != nil {
				return spec, err
			}

			if axis != nil {
				spec.Axes = append(spec.Axes, axis)
			}
		}
	}

	if sto := Child(pvd, "Stochastic"); sto != nil {
		axis, seed, err := stochastic(sto)
		if err != nil {
			return spec, err
		}

		spec.Seed = seed
		spec.Axes = append(spec.Axes, axis)
	}

	if len(spec.Axes) == 0 {
		return spec, distribution.ErrEmptyDistribution.With(
			slog.String("file", doc.Path))
	}

	return spec, nil
}

func deterministic(el *xmltree.Element) (distribution.Axis, error) {
	switch el.Name.Local {
	case "DeterministicSingleParameterDistribution":
		return single(el)
	case "DeterministicMultiParameterDistribution":
		return multi(el)
	}

	return nil, nil
}

func single(el *xmltree.Element) (distribution.Axis, error) {
	name, err := require(el, "parameterName")
	if err != nil {
		return nil, err
	}

	axis := distribution.Single{Parameter: name}

	if set := Child(el, "DistributionSet"); set != nil {
		axis.Set = &distribution.Set{}

		for _, e := range Children(set, "Element") {
			v, err := require(e, "value")
			if err != nil {
				return nil, err
			}

			axis.Set.Values = append(axis.Set.Values, v)
		}
	}

	if rng := Child(el, "DistributionRange"); rng != nil {
		step, err := number(rng, "stepWidth")
		if err != nil {
			return nil, err
		}

		lo, hi, err := limits(Child(rng, "Range"), rng)
		if err != nil {
			return nil, err
		}

		axis.Range = &distribution.Range{Lower: lo, Upper: hi, Step: step}
	}

	return axis, nil
}

func multi(el *xmltree.Element) (distribution.Axis, error) {
	var axis distribution.Multi

	for _, vs := range Children(Child(el, "ValueSetDistribution"), "ParameterValueSet") {
		var set distribution.ValueSet

		for _, a := range Children(vs, "ParameterAssignment") {
			name, err := require(a, "parameterRef")
			if err != nil {
				return nil, err
			}

			v, err := require(a, "value")
			if err != nil {
				return nil, err
			}

			set.Assignments = append(set.Assignments, param.Assignment{Name: name, Value: v})
		}

		axis.Sets = append(axis.Sets, set)
	}

	return axis, nil
}

func stochastic(el *xmltree.Element) (distribution.Axis, *uint64, error) {
	runs, err := count(el, "numberOfTestRuns")
	if err != nil {
		return nil, nil, err
	}

	axis := distribution.Stochastic{Runs: runs}

	var seed *uint64

	if s, ok := Attr(el, "randomSeed"); ok {
		v, err := parseSeed(s)
		if err != nil {
			return nil, nil, ErrMalformed.Wrap(err).With(
				slog.String("attribute", "randomSeed"),
				slog.String("value", s))
		}

		seed = &v
	}

	for _, sd := range Children(el, "StochasticDistribution") {
		name, err := require(sd, "parameterName")
		if err != nil {
			return nil, nil, err
		}

		law, err := lawOf(sd)
		if err != nil {
			return nil, nil, err
		}

		axis.Variables = append(axis.Variables,
			distribution.Variable{Parameter: name, Law: law})
	}

	return axis, seed, nil
}

func parseSeed(s string) (uint64, error) {
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	if f < 0 || f != math.Trunc(f) || f > math.MaxUint64 {
		return 0, strconv.ErrRange
	}

	return uint64(f), nil
}

func lawOf(sd *xmltree.Element) (distribution.Law, error) {
	for i := range sd.Children {
		el := &sd.Children[i]

		switch el.Name.Local {
		case "NormalDistribution":
			mean, variance, err := moments(el)
			if err != nil {
				return nil, err
			}

			b, err := bounds(el)
			if err != nil {
				return nil, err
			}

			return distribution.Normal{Mean: mean, StdDev: math.Sqrt(variance), Bounds: b}, nil

		case "LogNormalDistribution":
			mean, variance, err := moments(el)
			if err != nil {
				return nil, err
			}

			b, err := bounds(el)
			if err != nil {
				return nil, err
			}

			return distribution.LogNormalFromMoments(mean, variance, b), nil

		case "UniformDistribution":
			lo, hi, err := limits(Child(el, "Range"), el)
			if err != nil {
				return nil, err
			}

			return distribution.Uniform{Lower: lo, Upper: hi}, nil

		case "PoissonDistribution":
			mean, err := number(el, "expectedValue")
			if err != nil {
				return nil, err
			}

			b, err := bounds(el)
			if err != nil {
				return nil, err
			}

			return distribution.Poisson{Mean: mean, Bounds: b}, nil

		case "Histogram":
			return histogram(el)

		case "ProbabilityDistributionSet":
			return probabilitySet(el)

		case "UserDefinedDistribution":
			typ, _ := Attr(el, "type")

			return distribution.UserDefined{Type: typ, Content: string(el.Content)}, nil
		}
	}

	name, _ := Attr(sd, "parameterName")

	return nil, ErrMalformed.With(
		slog.String("element", sd.Name.Local),
		slog.String("parameter", name),
		slog.String("reason", "missing distribution law"))
}

func moments(el *xmltree.Element) (mean, variance float64, err error) {
	if mean, err = number(el, "expectedValue"); err != nil {
		return 0, 0, err
	}

	if variance, err = number(el, "variance"); err != nil {
		return 0, 0, err
	}

	return mean, variance, nil
}

// bounds reads an optional truncating Range child.
func bounds(el *xmltree.Element) (*distribution.Bounds, error) {
	r := Child(el, "Range")
	if r == nil {
		return nil, nil
	}

	lo, hi, err := limits(r, el)
	if err != nil {
		return nil, err
	}

	return &distribution.Bounds{Lower: lo, Upper: hi}, nil
}

// limits reads a Range element. owner names the element it belongs to.
func limits(r, owner *xmltree.Element) (lo, hi float64, err error) {
	if r == nil {
		return 0, 0, ErrMalformed.With(
			slog.String("element", owner.Name.Local),
			slog.String("reason", "missing Range"))
	}

	if lo, err = number(r, "lowerLimit"); err != nil {
		return 0, 0, err
	}

	if hi, err = number(r, "upperLimit"); err != nil {
		return 0, 0, err
	}

	return lo, hi, nil
}

func histogram(el *xmltree.Element) (distribution.Law, error) {
	var h distribution.Histogram

	for _, b := range Children(el, "Bin") {
		w, err := number(b, "weight")
		if err != nil {
			return nil, err
		}

		lo, hi, err := limits(Child(b, "Range"), b)
		if err != nil {
			return nil, err
		}

		h.Bins = append(h.Bins, distribution.Bin{Lower: lo, Upper: hi, Weight: w})
	}

	return h, nil
}

func probabilitySet(el *xmltree.Element) (distribution.Law, error) {
	var p distribution.ProbabilitySet

	for _, e := range Children(el, "Element") {
		v, err := require(e, "value")
		if err != nil {
			return nil, err
		}

		w, err := number(e, "weight")
		if err != nil {
			return nil, err
		}

		p.Elements = append(p.Elements, distribution.Weighted{Value: v, Weight: w})
	}

	return p, nil
}
