package param

import (
	"iter"
	"log/slog"

	"github.com/ardnew/xosc/value"
)

// Declaration introduces a typed, named parameter with a default value.
// The default may itself reference other parameters.
type Declaration struct {
	Name  string
	Value string
	Type  value.Type
}

// Declarations is an ordered list of parameter declarations.
type Declarations []Declaration

// Validate checks every name and reports a name declared twice with
// different types.
func (ds Declarations) Validate() error {
	seen := make(map[string]value.Type, len(ds))

	for _, d := range ds {
		if !value.IsIdentifier(d.Name) {
			return ErrInvalidParameterName.With(slog.String("parameter", d.Name))
		}

		if t, ok := seen[d.Name]; ok && t != d.Type {
			return ErrDuplicateParameterDeclaration.With(
				slog.String("parameter", d.Name),
				slog.String("first", t.String()),
				slog.String("second", d.Type.String()),
			)
		}

		seen[d.Name] = d.Type
	}

	return nil
}

// Lookup returns the last declaration of name.
func (ds Declarations) Lookup(name string) (Declaration, bool) {
	for i := len(ds) - 1; i >= 0; i-- {
		if ds[i].Name == name {
			return ds[i], true
		}
	}

	return Declaration{}, false
}

// Names returns the declared names in declaration order, without repeats.
func (ds Declarations) Names() []string {
	names := make([]string, 0, len(ds))
	seen := make(map[string]bool, len(ds))

	for _, d := range ds {
		if !seen[d.Name] {
			seen[d.Name] = true
			names = append(names, d.Name)
		}
	}

	return names
}

// Defaults yields each declared name with its default value.
func (ds Declarations) Defaults() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, d := range ds {
			if !yield(d.Name, d.Value) {
				return
			}
		}
	}
}

// Extract returns each declared parameter's default value. A name declared
// more than once keeps its last value.
func Extract(ds Declarations) map[string]string {
	m := make(map[string]string, len(ds))
	for name, v := range ds.Defaults() {
		m[name] = v
	}

	return m
}

// Assignment overrides the value of a declared parameter.
type Assignment struct {
	Name  string `json:"name"  yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Assignments is an ordered list of parameter assignments.
type Assignments []Assignment

// All yields each assignment as a name/value pair.
func (as Assignments) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, a := range as {
			if !yield(a.Name, a.Value) {
				return
			}
		}
	}
}

// Map returns the assignments as a map. Later assignments win.
func (as Assignments) Map() map[string]string {
	m := make(map[string]string, len(as))
	for name, v := range as.All() {
		m[name] = v
	}

	return m
}
