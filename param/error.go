package param

import "github.com/ardnew/xosc/pkg"

// Predefined errors (sentinel values).
var (
	ErrDuplicateParameterDeclaration = pkg.NewError("duplicate parameter declaration")
	ErrInvalidParameterName          = pkg.NewError("invalid parameter name")
)
