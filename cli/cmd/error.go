package cmd

import "github.com/ardnew/xosc/pkg"

// Predefined errors (sentinel values).
var (
	ErrMarshal     = pkg.NewError("failed to encode output")
	ErrWriteConfig = pkg.NewError("failed to write configuration file")
	ErrWriteOutput = pkg.NewError("failed to write output")
	ErrFileExists  = pkg.NewError("file exists (use --force to overwrite)")
	ErrLocation    = pkg.NewError("invalid catalog location")
	ErrManifest    = pkg.NewError("failed to update manifest")
)
