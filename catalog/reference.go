package catalog

import (
	"log/slog"

	"aqwari.net/xml/xmltree"

	"github.com/ardnew/xosc/param"
	"github.com/ardnew/xosc/xosc"
)

// Reference names a catalog entry and the parameter values to instantiate
// it with.
type Reference struct {
	Catalog     string
	Entry       string
	Assignments []param.Assignment
	// Accept lists the entry kinds valid at the reference site. An empty
	// list accepts any kind.
	Accept []Kind
}

func (r Reference) String() string { return r.Catalog + "/" + r.Entry }

// ReferenceFrom reads a CatalogReference element. parent is the element
// containing it and determines which kinds of entry it accepts. It may be
// nil.
func ReferenceFrom(el, parent *xmltree.Element) (Reference, error) {
	var ref Reference

	for _, attr := range []struct {
		name string
		dst  *string
	}{
		{"catalogName", &ref.Catalog},
		{"entryName", &ref.Entry},
	} {
		v, ok := xosc.Attr(el, attr.name)
		if !ok || v == "" {
			return ref, ErrInvalidReference.With(slog.String("attribute", attr.name))
		}

		*attr.dst = v
	}

	as, err := xosc.Assignments(el)
	if err != nil {
		return ref, ErrInvalidReference.Wrap(err).With(slog.String("reference", ref.String()))
	}

	ref.Assignments = as

	if parent != nil {
		ref.Accept = accepts[parent.Name.Local]
	}

	return ref, nil
}

// Entry is one entry of a catalog.
type Entry struct {
	// Element is the entry as written, including its declarations. It must
	// not be modified.
	Element      *xmltree.Element
	Catalog      string
	Name         string
	File         string
	Declarations param.Declarations
	Kind         Kind
}

func (e *Entry) String() string { return e.Catalog + "/" + e.Name }

// Resolved is a catalog entry instantiated for one reference.
type Resolved struct {
	Entry *Entry
	// Element is a literal copy of the entry without its declarations.
	Element *xmltree.Element
	// Scope is the caller's scope with the entry's parameters bound.
	Scope param.Scope
}
