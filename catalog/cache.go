package catalog

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/xosc/log"
	"github.com/ardnew/xosc/xosc"
)

// Cache indexes catalog directories. Each directory is indexed at most once
// and its index is never invalidated. A Cache is safe for concurrent use.
type Cache struct {
	dirs sync.Map // absolute directory -> *directory
}

// NewCache returns an empty cache.
func NewCache() *Cache { return &Cache{} }

// directory is the index of every catalog found below one directory.
type directory struct {
	once     sync.Once
	catalogs map[string]*catalog
	err      error
}

type catalog struct {
	entries map[string]*Entry
	names   []string
}

// index returns the index of dir, building it on first use.
func (c *Cache) index(ctx context.Context, dir string, logger log.Logger) (*directory, error) {
	v, loaded := c.dirs.LoadOrStore(dir, new(directory))
	d := v.(*directory)

	logger.TraceContext(ctx, "cache lookup",
		slog.String("dir", dir),
		slog.Bool("cache_hit", loaded),
	)

	d.once.Do(func() {
		d.catalogs, d.err = scan(ctx, dir, logger)
	})

	return d, d.err
}

// Len returns the number of directories indexed or being indexed.
func (c *Cache) Len() int {
	n := 0

	c.dirs.Range(func(_, _ any) bool {
		n++

		return true
	})

	return n
}

// Clear forgets every indexed directory.
func (c *Cache) Clear() { c.dirs.Clear() }

// scan reads every catalog file below dir. A missing directory yields an
// empty index.
func scan(ctx context.Context, dir string, logger log.Logger) (map[string]*catalog, error) {
	catalogs := map[string]*catalog{}

	err := filepath.WalkDir(dir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && errors.Is(err, fs.ErrNotExist) {
				logger.WarnContext(ctx, "catalog directory not found", slog.String("dir", dir))

				return fs.SkipAll
			}

			return err
		}

		if de.IsDir() || !isCatalogFile(path) {
			return nil
		}

		return load(ctx, path, catalogs, logger)
	})
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "indexed catalog directory",
		slog.String("dir", dir),
		slog.Int("catalogs", len(catalogs)),
	)

	return catalogs, nil
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xosc", ".xml":
		return true
	}

	return false
}

// load adds the entries of one catalog file to catalogs. Files that are not
// catalogs are ignored. The first definition of an entry wins.
func load(ctx context.Context, path string, catalogs map[string]*catalog, logger log.Logger) error {
	doc, err := xosc.Load(path)
	if err != nil {
		if errors.Is(err, xosc.ErrRead) {
			return err
		}

		return ErrCatalogFileParse.Wrap(err).With(slog.String("file", path))
	}

	el := xosc.Child(doc.Root, "Catalog")
	if el == nil {
		logger.TraceContext(ctx, "skip non-catalog file", slog.String("file", path))

		return nil
	}

	name, ok := xosc.Attr(el, "name")
	if !ok || name == "" {
		return ErrCatalogFileParse.With(
			slog.String("file", path),
			slog.String("reason", "catalog has no name"))
	}

	cat, ok := catalogs[name]
	if !ok {
		cat = &catalog{entries: map[string]*Entry{}}
		catalogs[name] = cat
	}

	for i := range el.Children {
		child := &el.Children[i]

		kind, ok := kindOfEntry(child.Name.Local)
		if !ok {
			continue
		}

		entry, _ := xosc.Attr(child, "name")

		decls, err := xosc.Declarations(child)
		if err != nil {
			return ErrCatalogFileParse.Wrap(err).With(
				slog.String("file", path),
				slog.String("entry", entry))
		}

		if prev, dup := cat.entries[entry]; dup {
			logger.WarnContext(ctx, "duplicate catalog entry ignored",
				slog.String("catalog", name),
				slog.String("entry", entry),
				slog.String("file", path),
				slog.String("first", prev.File),
			)

			continue
		}

		cat.entries[entry] = &Entry{
			Element:      child,
			Catalog:      name,
			Name:         entry,
			File:         path,
			Declarations: decls,
			Kind:         kind,
		}
		cat.names = append(cat.names, entry)
	}

	return nil
}

// catalogNames returns the sorted names of every catalog in d.
func (d *directory) catalogNames() []string {
	names := make([]string, 0, len(d.catalogs))
	for name := range d.catalogs {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
