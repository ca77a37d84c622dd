package param

import (
	"log/slog"

	"github.com/ardnew/xosc/pkg"
	"github.com/ardnew/xosc/value"
)

// Bind pushes one layer onto base holding the effective value of every
// declaration in decls.
//
// Each declaration takes its value from overrides when present, otherwise
// from its default. Values are resolved in declaration order against base
// and the values bound so far, so a default may refer to an earlier
// parameter, and sees that parameter's override. Every resolved value must
// be a valid literal of the declared type. An override naming an undeclared
// parameter fails with [value.ErrParameterNotFound].
func Bind(
	base Scope,
	label string,
	decls Declarations,
	overrides []Assignment,
	ev value.Evaluator,
) (Scope, error) {
	if err := decls.Validate(); err != nil {
		return base, err
	}

	over := Assignments(overrides).Map()
	for _, a := range overrides {
		if _, ok := decls.Lookup(a.Name); !ok {
			return base, value.ErrParameterNotFound.With(
				slog.String("parameter", a.Name),
				slog.String("site", label),
			)
		}
	}

	bound := make(map[string]string, len(decls))
	scope := chain{bound: bound, base: base}

	for _, d := range decls {
		raw, ok := over[d.Name]
		if !ok {
			raw = d.Value
		}

		v, err := value.Substitute(raw, scope, ev)
		if err != nil {
			return base, err
		}

		if err := d.Type.Validate(v); err != nil {
			return base, pkg.WrapError(err).With(slog.String("parameter", d.Name))
		}

		bound[d.Name] = v
	}

	return base.PushMap(label, bound), nil
}

// chain looks names up in bound before falling back to base.
type chain struct {
	bound map[string]string
	base  Scope
}

func (c chain) Lookup(name string) (string, bool) {
	if v, ok := c.bound[name]; ok {
		return v, true
	}

	return c.base.Lookup(name)
}
