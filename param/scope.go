package param

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// Scope is an immutable stack of named layers mapping parameter names to
// their textual values. The zero value is the empty scope.
type Scope struct {
	top *layer
}

type layer struct {
	parent *layer
	label  string
	values map[string]string
	depth  int
}

// Push returns a new scope with one more layer on top holding entries.
// A name yielded more than once keeps its last value.
func (s Scope) Push(label string, entries iter.Seq2[string, string]) Scope {
	l := &layer{parent: s.top, label: label, values: map[string]string{}}

	if s.top != nil {
		l.depth = s.top.depth + 1
	}

	if entries != nil {
		for name, val := range entries {
			l.values[name] = val
		}
	}

	return Scope{top: l}
}

// PushMap returns a new scope with m pushed as one layer.
func (s Scope) PushMap(label string, m map[string]string) Scope {
	return s.Push(label, maps.All(m))
}

// PushAssignments returns a new scope with the assignments pushed as one
// layer.
func (s Scope) PushAssignments(label string, as []Assignment) Scope {
	return s.Push(label, Assignments(as).All())
}

// Lookup returns the value bound to name by the most recent layer that
// binds it.
func (s Scope) Lookup(name string) (string, bool) {
	for l := s.top; l != nil; l = l.parent {
		if v, ok := l.values[name]; ok {
			return v, true
		}
	}

	return "", false
}

// Depth returns the number of layers.
func (s Scope) Depth() int {
	if s.top == nil {
		return 0
	}

	return s.top.depth + 1
}

// Labels returns the layer labels from oldest to newest.
func (s Scope) Labels() []string {
	var labels []string
	for l := s.top; l != nil; l = l.parent {
		labels = append(labels, l.label)
	}

	slices.Reverse(labels)

	return labels
}

// Flatten returns every visible binding.
func (s Scope) Flatten() map[string]string {
	flat := map[string]string{}

	for l := s.top; l != nil; l = l.parent {
		for name, v := range l.values {
			if _, shadowed := flat[name]; !shadowed {
				flat[name] = v
			}
		}
	}

	return flat
}

// Names returns the sorted names of every visible binding.
func (s Scope) Names() []string {
	return slices.Sorted(maps.Keys(s.Flatten()))
}

// String renders the scope's layer labels, newest last.
func (s Scope) String() string {
	return "[" + strings.Join(s.Labels(), " > ") + "]"
}
