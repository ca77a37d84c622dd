package distribution

import "github.com/ardnew/xosc/pkg"

// Predefined errors (sentinel values).
var (
	ErrEmptyDistribution       = pkg.NewError("empty distribution")
	ErrInvalidRange            = pkg.NewError("invalid range")
	ErrInvalidDistribution     = pkg.NewError("invalid distribution")
	ErrUnsupportedDistribution = pkg.NewError("unsupported distribution")
	ErrTooManyVariants         = pkg.NewError("too many variants")
)
