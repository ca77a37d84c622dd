package value

import "github.com/ardnew/xosc/pkg"

// Predefined errors (sentinel values).
var (
	ErrParameterNotFound     = pkg.NewError("parameter not found")
	ErrTypeMismatch          = pkg.NewError("parameter type mismatch")
	ErrUnevaluatedExpression = pkg.NewError("unevaluated expression")
	ErrUnknownType           = pkg.NewError("unknown parameter type")
)
