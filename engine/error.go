package engine

import "github.com/ardnew/xosc/pkg"

// Predefined errors (sentinel values).
var (
	ErrVariant     = pkg.NewError("failed to resolve variant")
	ErrScenario    = pkg.NewError("failed to load scenario")
	ErrNotScenario = pkg.NewError("document is not a scenario")
)
