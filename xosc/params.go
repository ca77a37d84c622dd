package xosc

import (
	"log/slog"

	"aqwari.net/xml/xmltree"

	"github.com/ardnew/xosc/param"
	"github.com/ardnew/xosc/pkg"
	"github.com/ardnew/xosc/value"
)

// Declarations reads the ParameterDeclarations child of el.
func Declarations(el *xmltree.Element) (param.Declarations, error) {
	var decls param.Declarations

	for _, d := range Children(Child(el, "ParameterDeclarations"), "ParameterDeclaration") {
		name, err := require(d, "name")
		if err != nil {
			return nil, err
		}

		typ, err := require(d, "parameterType")
		if err != nil {
			return nil, err
		}

		t, err := value.ParseType(typ)
		if err != nil {
			return nil, pkg.WrapError(err).With(slog.String("parameter", name))
		}

		v, _ := Attr(d, "value")

		decls = append(decls, param.Declaration{Name: name, Type: t, Value: v})
	}

	return decls, nil
}

// Assignments reads the ParameterAssignments child of el.
func Assignments(el *xmltree.Element) ([]param.Assignment, error) {
	var as []param.Assignment

	for _, a := range Children(Child(el, "ParameterAssignments"), "ParameterAssignment") {
		name, err := require(a, "parameterRef")
		if err != nil {
			return nil, err
		}

		v, err := require(a, "value")
		if err != nil {
			return nil, err
		}

		as = append(as, param.Assignment{Name: name, Value: v})
	}

	return as, nil
}

// SetDeclarationValues rewrites the value of every parameter declared by el
// to its value in scope.
func SetDeclarationValues(el *xmltree.Element, scope value.Lookup) {
	for _, d := range Children(Child(el, "ParameterDeclarations"), "ParameterDeclaration") {
		name, _ := Attr(d, "name")
		if v, ok := scope.Lookup(name); ok {
			SetAttr(d, "value", v)
		}
	}
}

// RemoveDeclarations deletes el's ParameterDeclarations.
func RemoveDeclarations(el *xmltree.Element) {
	RemoveChildren(el, "ParameterDeclarations")
}
