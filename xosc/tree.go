package xosc

import (
	"encoding/xml"
	"log/slog"
	"slices"
	"strconv"

	"aqwari.net/xml/xmltree"
)

// Clone returns a deep copy of el.
func Clone(el *xmltree.Element) *xmltree.Element {
	if el == nil {
		return nil
	}

	c := *el
	c.StartElement.Attr = slices.Clone(el.StartElement.Attr)
	c.Content = slices.Clone(el.Content)
	c.Children = make([]xmltree.Element, len(el.Children))

	for i := range el.Children {
		c.Children[i] = *Clone(&el.Children[i])
	}

	return &c
}

// Child returns the first child of el with the given local name.
func Child(el *xmltree.Element, name string) *xmltree.Element {
	if el == nil {
		return nil
	}

	for i := range el.Children {
		if el.Children[i].Name.Local == name {
			return &el.Children[i]
		}
	}

	return nil
}

// Children returns every child of el with the given local name.
func Children(el *xmltree.Element, name string) []*xmltree.Element {
	if el == nil {
		return nil
	}

	var out []*xmltree.Element

	for i := range el.Children {
		if el.Children[i].Name.Local == name {
			out = append(out, &el.Children[i])
		}
	}

	return out
}

// RemoveChildren deletes every child of el with the given local name.
func RemoveChildren(el *xmltree.Element, name string) {
	el.Children = slices.DeleteFunc(el.Children, func(c xmltree.Element) bool {
		return c.Name.Local == name
	})
}

// Attr returns the value of el's attribute with the given local name.
func Attr(el *xmltree.Element, name string) (string, bool) {
	if el == nil {
		return "", false
	}

	for _, a := range el.StartElement.Attr {
		if a.Name.Local == name && !isNamespaceDecl(a.Name.Space, a.Name.Local) {
			return a.Value, true
		}
	}

	return "", false
}

// SetAttr sets the value of el's attribute with the given local name,
// adding it if absent.
func SetAttr(el *xmltree.Element, name, value string) {
	for i := range el.StartElement.Attr {
		if el.StartElement.Attr[i].Name.Local == name {
			el.StartElement.Attr[i].Value = value

			return
		}
	}

	el.StartElement.Attr = append(el.StartElement.Attr,
		xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// require returns the named attribute or an ErrMalformed error.
func require(el *xmltree.Element, name string) (string, error) {
	v, ok := Attr(el, name)
	if !ok {
		return "", ErrMalformed.With(
			slog.String("element", el.Name.Local),
			slog.String("reason", "missing attribute"),
			slog.String("attribute", name))
	}

	return v, nil
}

// number parses the named attribute as a float.
func number(el *xmltree.Element, name string) (float64, error) {
	s, err := require(el, name)
	if err != nil {
		return 0, err
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrMalformed.Wrap(err).With(
			slog.String("element", el.Name.Local),
			slog.String("attribute", name),
			slog.String("value", s))
	}

	return f, nil
}

// count parses the named attribute as an unsignedInt.
func count(el *xmltree.Element, name string) (int, error) {
	s, err := require(el, name)
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, ErrMalformed.Wrap(err).With(
			slog.String("element", el.Name.Local),
			slog.String("attribute", name),
			slog.String("value", s))
	}

	return int(n), nil
}

func isNamespaceDecl(space, local string) bool {
	return space == "xmlns" || (space == "" && local == "xmlns")
}
