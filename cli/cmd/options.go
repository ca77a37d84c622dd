package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/xosc/catalog"
	"github.com/ardnew/xosc/engine"
	"github.com/ardnew/xosc/formula"
	"github.com/ardnew/xosc/log"
	"github.com/ardnew/xosc/pkg"
)

// searchPathKey names the environment variable listing catalog search
// directories, for example XOSC_CATALOG_PATH.
const searchPathKey = "catalog_path"

// Catalogs holds the flags that locate catalogs and control parameter
// resolution.
type Catalogs struct {
	Catalog    []string `help:"Catalog directory for one kind (${catalogKinds})" placeholder:"KIND=DIR" short:"c"`
	SearchPath []string `help:"Directory searched for catalogs of any kind, before ${searchEnv}" placeholder:"DIR" short:"I"`
	MaxDepth   int      `default:"${maxDepth}" help:"Maximum nesting of catalog references"`
	Eval       bool     `default:"true" help:"Evaluate parameter expressions" negatable:""`
}

// locations returns the catalog locations named by the flags, followed by
// the search path. Relative directories are made absolute against the
// working directory.
func (c Catalogs) locations() (catalog.Locations, error) {
	var locs catalog.Locations

	for _, arg := range c.Catalog {
		name, dir, ok := strings.Cut(arg, "=")
		if !ok || dir == "" {
			return nil, ErrLocation.With(
				slog.String("location", arg),
				slog.String("reason", "want KIND=DIR"))
		}

		kind, err := catalog.ParseKind(name)
		if err != nil {
			return nil, ErrLocation.Wrap(err).With(slog.String("location", arg))
		}

		locs = append(locs, catalog.Location{Directory: absolute(dir), Kind: kind})
	}

	for _, dir := range searchPath(c.SearchPath...) {
		locs = append(locs, catalog.Location{Directory: absolute(dir), Kind: catalog.KindAny})
	}

	return locs, nil
}

// options returns the engine options selected by the flags.
func (c Catalogs) options() (engine.Options, error) {
	locs, err := c.locations()
	if err != nil {
		return engine.Options{}, err
	}

	opts := engine.Options{
		Locations:       locs,
		MaxCatalogDepth: c.MaxDepth,
		Logger:          log.Default(),
	}

	if c.Eval {
		opts.Evaluator = formula.New(formula.WithLogger(opts.Logger))
	}

	log.Debug("catalog locations", slog.Any("locations", locs))

	return opts, nil
}

// searchPath prepends dirs to the directories listed in the search path
// environment variable.
func searchPath(dirs ...string) []string {
	list := mung.Make(
		mung.WithSubjectItems(os.Getenv(pkg.EnvVar(searchPathKey))),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
	).String()

	return slices.DeleteFunc(filepath.SplitList(list), func(s string) bool {
		return strings.TrimSpace(s) == ""
	})
}

func absolute(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}

	return dir
}
