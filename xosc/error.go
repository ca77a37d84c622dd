package xosc

import "github.com/ardnew/xosc/pkg"

// Predefined errors (sentinel values).
var (
	ErrRead      = pkg.NewError("failed to read document")
	ErrParse     = pkg.NewError("failed to parse document")
	ErrMalformed = pkg.NewError("malformed document")
)
