// Package cmd implements the xosc subcommands.
package cmd

import (
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/xosc/catalog"
	"github.com/ardnew/xosc/pkg"
)

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)

// Vars returns the kong variables interpolated into the command flags.
func Vars() kong.Vars {
	return kong.Vars{
		"catalogKinds": strings.Join(slices.Collect(catalog.Kinds()), ","),
		"maxDepth":     strconv.Itoa(catalog.DefaultMaxDepth),
		"searchEnv":    pkg.EnvVar(searchPathKey),
		"formatEnum":   strings.Join(slices.Collect(formats()), ","),
	}
}
