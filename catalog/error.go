package catalog

import "github.com/ardnew/xosc/pkg"

// Predefined errors (sentinel values).
var (
	ErrCatalogNotConfigured    = pkg.NewError("catalog not configured")
	ErrEntryNotFound           = pkg.NewError("catalog entry not found")
	ErrCatalogTypeMismatch     = pkg.NewError("catalog entry has wrong kind")
	ErrMaxCatalogDepthExceeded = pkg.NewError("catalog reference depth exceeded")
	ErrCatalogFileParse        = pkg.NewError("failed to parse catalog file")
	ErrInvalidReference        = pkg.NewError("invalid catalog reference")
	ErrUnknownKind             = pkg.NewError("unknown catalog kind")
)
