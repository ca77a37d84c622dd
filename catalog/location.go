package catalog

import (
	"log/slog"
	"path/filepath"
	"slices"

	"aqwari.net/xml/xmltree"

	"github.com/ardnew/xosc/xosc"
)

// Location is a directory searched for catalogs of one kind.
type Location struct {
	Directory string
	Kind      Kind
}

func (l Location) String() string { return l.Kind.String() + "=" + l.Directory }

// Locations is an ordered list of catalog locations. Earlier locations take
// precedence.
type Locations []Location

// LocationsFrom reads the CatalogLocations of a scenario root element.
func LocationsFrom(root *xmltree.Element) (Locations, error) {
	var locs Locations

	cl := xosc.Child(root, "CatalogLocations")
	if cl == nil {
		return nil, nil
	}

	for i := range cl.Children {
		el := &cl.Children[i]

		kind, ok := kindOfLocation(el.Name.Local)
		if !ok {
			continue
		}

		path, ok := xosc.Attr(xosc.Child(el, "Directory"), "path")
		if !ok {
			return nil, xosc.ErrMalformed.With(
				slog.String("element", el.Name.Local),
				slog.String("reason", "missing Directory path"))
		}

		locs = append(locs, Location{Kind: kind, Directory: path})
	}

	return locs, nil
}

// Resolve returns a copy of locs with relative directories joined to base.
func (locs Locations) Resolve(base string) Locations {
	out := make(Locations, len(locs))

	for i, l := range locs {
		if !filepath.IsAbs(l.Directory) {
			l.Directory = filepath.Join(base, l.Directory)
		}

		l.Directory = filepath.Clean(l.Directory)
		out[i] = l
	}

	return out
}

// accepting returns the locations a reference accepting kinds may search.
// Search directories of any kind are always included.
func (locs Locations) accepting(kinds []Kind) Locations {
	var out Locations

	for _, l := range locs {
		if l.Kind == KindAny || len(kinds) == 0 || slices.Contains(kinds, l.Kind) {
			out = append(out, l)
		}
	}

	return out
}
