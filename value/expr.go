package value

import (
	"log/slog"
	"regexp"
	"strings"
)

// Kind classifies an [Expr].
type Kind uint8

const (
	KindLiteral Kind = iota
	KindParameter
	KindExpression
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindParameter:
		return "parameter"
	case KindExpression:
		return "expression"
	default:
		return "unknown"
	}
}

// Lookup provides parameter values by name.
type Lookup interface {
	Lookup(name string) (string, bool)
}

// Map is a Lookup over a plain map.
type Map map[string]string

// Lookup implements [Lookup].
func (m Map) Lookup(name string) (string, bool) {
	v, ok := m[name]

	return v, ok
}

// Evaluator evaluates expression text against a scope and returns the
// result in textual form.
type Evaluator interface {
	Evaluate(text string, scope Lookup) (string, error)
}

// Expr is a value of type T that is either a literal, a reference to a
// named parameter, or an unevaluated expression.
type Expr[T any] struct {
	codec Codec[T]
	val   T
	text  string // literal source, parameter name, or expression source
	kind  Kind
}

var (
	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	bareExpr   = regexp.MustCompile(`^\$\{\s*\$([A-Za-z_][A-Za-z0-9_]*)\s*\}$`)
)

// IsIdentifier reports whether name is a valid parameter name.
func IsIdentifier(name string) bool { return identifier.MatchString(name) }

// Parse classifies raw using codec c. It never fails.
func Parse[T any](raw string, c Codec[T]) Expr[T] {
	if name, ok := strings.CutPrefix(raw, "$"); ok {
		if IsIdentifier(name) {
			return Expr[T]{codec: c, kind: KindParameter, text: name}
		}

		return Expr[T]{codec: c, kind: KindExpression, text: raw}
	}

	if v, err := c.Parse(raw); err == nil {
		return Expr[T]{codec: c, kind: KindLiteral, val: v, text: raw}
	}

	return Expr[T]{codec: c, kind: KindExpression, text: raw}
}

// Literal returns a literal Expr holding v.
func Literal[T any](c Codec[T], v T) Expr[T] {
	return Expr[T]{codec: c, kind: KindLiteral, val: v, text: c.Format(v)}
}

// Parameter returns an Expr referencing the parameter name.
func Parameter[T any](c Codec[T], name string) Expr[T] {
	return Expr[T]{codec: c, kind: KindParameter, text: name}
}

// Expression returns an Expr holding the unevaluated expression text.
func Expression[T any](c Codec[T], text string) Expr[T] {
	return Expr[T]{codec: c, kind: KindExpression, text: text}
}

// Kind returns the classification of e.
func (e Expr[T]) Kind() Kind { return e.kind }

// Value returns the literal value, or false if e is not a literal.
func (e Expr[T]) Value() (T, bool) { return e.val, e.kind == KindLiteral }

// Name returns the referenced parameter name, or "" if e is not a
// parameter reference.
func (e Expr[T]) Name() string {
	if e.kind != KindParameter {
		return ""
	}

	return e.text
}

// String returns the textual form of e.
func (e Expr[T]) String() string {
	if e.kind == KindParameter {
		return "$" + e.text
	}

	return e.text
}

// Resolve resolves e against scope without an expression evaluator.
func (e Expr[T]) Resolve(scope Lookup) (T, error) {
	return e.ResolveWith(scope, nil)
}

// ResolveWith resolves e against scope, evaluating expressions with ev.
// A nil ev leaves expressions unevaluated.
func (e Expr[T]) ResolveWith(scope Lookup, ev Evaluator) (T, error) {
	var zero T

	switch e.kind {
	case KindLiteral:
		return e.val, nil

	case KindParameter:
		return e.lookup(scope, e.text)

	case KindExpression:
		if m := bareExpr.FindStringSubmatch(e.text); m != nil {
			return e.lookup(scope, m[1])
		}

		if ev == nil {
			return zero, ErrUnevaluatedExpression.With(
				slog.String("expression", e.text),
			)
		}

		s, err := ev.Evaluate(e.text, scope)
		if err != nil {
			return zero, err
		}

		v, err := e.codec.Parse(s)
		if err != nil {
			return zero, ErrTypeMismatch.Wrap(err).With(
				slog.String("expression", e.text),
				slog.String("expected", e.codec.Name()),
				slog.String("got", s),
			)
		}

		return v, nil
	}

	return zero, ErrUnevaluatedExpression.With(slog.String("expression", e.text))
}

func (e Expr[T]) lookup(scope Lookup, name string) (T, error) {
	var zero T

	var (
		raw string
		ok  bool
	)

	if scope != nil {
		raw, ok = scope.Lookup(name)
	}

	if !ok {
		return zero, ErrParameterNotFound.With(slog.String("parameter", name))
	}

	v, err := e.codec.Parse(raw)
	if err != nil {
		return zero, ErrTypeMismatch.Wrap(err).With(
			slog.String("parameter", name),
			slog.String("expected", e.codec.Name()),
			slog.String("got", raw),
		)
	}

	return v, nil
}

// Substitute resolves raw as a string-typed value.
func Substitute(raw string, scope Lookup, ev Evaluator) (string, error) {
	return Parse(raw, String).ResolveWith(scope, ev)
}
