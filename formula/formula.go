// Package formula evaluates parameter expressions such as "${$speed / 3.6}"
// with [github.com/expr-lang/expr].
//
// Parameter references are rewritten to expr identifiers, and the scope's
// textual values become typed variables: numbers become float64, "true" and
// "false" become bool, and anything else stays a string. Besides expr's
// builtins the usual math functions are available: sqrt, pow, sin, cos, tan,
// asin, acos, atan and sign.
package formula

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/xosc/log"
	"github.com/ardnew/xosc/pkg"
	"github.com/ardnew/xosc/value"
)

// Predefined errors (sentinel values).
var (
	ErrCompile  = pkg.NewError("expression compilation failed")
	ErrEvaluate = pkg.NewError("expression evaluation failed")
)

// Evaluator implements [value.Evaluator]. It is safe for concurrent use.
type Evaluator struct {
	logger   log.Logger
	programs sync.Map // source -> *program
}

type program struct {
	once  sync.Once
	prog  *vm.Program
	names []string
	err   error
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for compile tracing.
func WithLogger(l log.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// New returns a new Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

var reference = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// variable maps a parameter name to its expr identifier.
func variable(name string) string { return "_" + name }

// Evaluate implements [value.Evaluator].
func (e *Evaluator) Evaluate(text string, scope value.Lookup) (string, error) {
	p := e.compile(text)
	if p.err != nil {
		return "", p.err
	}

	env := make(map[string]any, len(p.names))

	for _, name := range p.names {
		var (
			raw string
			ok  bool
		)

		if scope != nil {
			raw, ok = scope.Lookup(name)
		}

		if !ok {
			return "", value.ErrParameterNotFound.With(
				slog.String("parameter", name),
				slog.String("expression", text),
			)
		}

		env[variable(name)] = typed(raw)
	}

	out, err := vm.Run(p.prog, env)
	if err != nil {
		return "", ErrEvaluate.Wrap(err).With(slog.String("expression", text))
	}

	return format(out), nil
}

func (e *Evaluator) compile(text string) *program {
	v, _ := e.programs.LoadOrStore(text, new(program))
	p := v.(*program)

	p.once.Do(func() {
		source := strings.TrimSpace(text)
		if inner, ok := strings.CutPrefix(source, "${"); ok {
			source = strings.TrimSuffix(inner, "}")
		}

		seen := map[string]bool{}
		source = reference.ReplaceAllStringFunc(source, func(m string) string {
			name := m[1:]
			if !seen[name] {
				seen[name] = true
				p.names = append(p.names, name)
			}

			return variable(name)
		})

		p.prog, p.err = expr.Compile(source, functions...)
		if p.err != nil {
			p.err = ErrCompile.Wrap(p.err).With(slog.String("expression", text))
		}

		e.logger.TraceContext(context.Background(), "compile expression",
			slog.String("expression", text),
			slog.String("source", source),
			slog.Bool("ok", p.err == nil),
		)
	})

	return p
}

// typed converts a textual parameter value into the expr variable type.
func typed(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}

	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return f
	}

	return raw
}

func format(v any) string {
	switch x := v.(type) {
	case float64:
		return value.FormatDouble(x)
	case float32:
		return value.FormatDouble(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func float(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}

func unary(name string, fn func(float64) float64) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s: want 1 argument, got %d", name, len(params))
		}

		x, err := float(params[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		return fn(x), nil
	})
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

//nolint:gochecknoglobals
var functions = []expr.Option{
	unary("sqrt", math.Sqrt),
	unary("sin", math.Sin),
	unary("cos", math.Cos),
	unary("tan", math.Tan),
	unary("asin", math.Asin),
	unary("acos", math.Acos),
	unary("atan", math.Atan),
	unary("sign", sign),
	expr.Function("pow", func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("pow: want 2 arguments, got %d", len(params))
		}

		x, err := float(params[0])
		if err != nil {
			return nil, fmt.Errorf("pow: %w", err)
		}

		y, err := float(params[1])
		if err != nil {
			return nil, fmt.Errorf("pow: %w", err)
		}

		return math.Pow(x, y), nil
	}),
}
