package xosc

import (
	"iter"

	"aqwari.net/xml/xmltree"
)

// Site is a location in a document tree that resolution may rewrite.
type Site interface {
	Element() *xmltree.Element
}

// ValueSite is one attribute of an element.
type ValueSite struct {
	el    *xmltree.Element
	index int
}

// Element returns the element owning the attribute.
func (s *ValueSite) Element() *xmltree.Element { return s.el }

// Name returns the attribute's local name.
func (s *ValueSite) Name() string { return s.el.StartElement.Attr[s.index].Name.Local }

// Raw returns the attribute's current text.
func (s *ValueSite) Raw() string { return s.el.StartElement.Attr[s.index].Value }

// Set replaces the attribute's text.
func (s *ValueSite) Set(v string) { s.el.StartElement.Attr[s.index].Value = v }

// ReferenceSite is a CatalogReference element.
type ReferenceSite struct {
	el     *xmltree.Element
	parent *xmltree.Element
}

// Element returns the CatalogReference element.
func (s *ReferenceSite) Element() *xmltree.Element { return s.el }

// Parent returns the element containing the reference, or nil at the root.
func (s *ReferenceSite) Parent() *xmltree.Element { return s.parent }

// Replace swaps the reference for el in place.
func (s *ReferenceSite) Replace(el *xmltree.Element) { *s.el = *el }

// Sites yields every attribute of root and its descendants as a
// [*ValueSite], and every CatalogReference as a [*ReferenceSite].
//
// References are yielded before their parent's later siblings and are not
// descended into. ParameterDeclarations subtrees and namespace declarations
// are skipped. The tree may be modified through the yielded sites while
// iterating.
func Sites(root *xmltree.Element) iter.Seq[Site] {
	return func(yield func(Site) bool) {
		walk(root, nil, yield)
	}
}

func walk(el, parent *xmltree.Element, yield func(Site) bool) bool {
	switch el.Name.Local {
	case "CatalogReference":
		return yield(&ReferenceSite{el: el, parent: parent})
	case "ParameterDeclarations":
		return true
	}

	for i, a := range el.StartElement.Attr {
		if isNamespaceDecl(a.Name.Space, a.Name.Local) {
			continue
		}

		if !yield(&ValueSite{el: el, index: i}) {
			return false
		}
	}

	for i := range el.Children {
		if !walk(&el.Children[i], el, yield) {
			return false
		}
	}

	return true
}

// Values yields only the value sites of root.
func Values(root *xmltree.Element) iter.Seq[*ValueSite] {
	return func(yield func(*ValueSite) bool) {
		for s := range Sites(root) {
			if v, ok := s.(*ValueSite); ok && !yield(v) {
				return
			}
		}
	}
}

// References yields only the catalog reference sites of root.
func References(root *xmltree.Element) iter.Seq[*ReferenceSite] {
	return func(yield func(*ReferenceSite) bool) {
		for s := range Sites(root) {
			if r, ok := s.(*ReferenceSite); ok && !yield(r) {
				return
			}
		}
	}
}
