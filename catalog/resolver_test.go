package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"aqwari.net/xml/xmltree"
	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/xosc/log"
	"github.com/ardnew/xosc/param"
	"github.com/ardnew/xosc/pkg"
	"github.com/ardnew/xosc/value"
	"github.com/ardnew/xosc/xosc"
)

// reference parses a CatalogReference wrapped in a parent element.
func reference(t *testing.T, parent, attrs string, assignments ...param.Assignment) Reference {
	t.Helper()

	var b strings.Builder

	fmt.Fprintf(&b, "<%s><CatalogReference %s><ParameterAssignments>", parent, attrs)

	for _, a := range assignments {
		fmt.Fprintf(&b, `<ParameterAssignment parameterRef=%q value=%q/>`, a.Name, a.Value)
	}

	fmt.Fprintf(&b, "</ParameterAssignments></CatalogReference></%s>", parent)

	doc, err := xosc.Parse([]byte(b.String()), "")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	ref, err := ReferenceFrom(xosc.Child(doc.Root, "CatalogReference"), doc.Root)
	if err != nil {
		t.Fatalf("ReferenceFrom() error = %v", err)
	}

	return ref
}

// find returns the first element named name at or below el.
func find(el *xmltree.Element, name string) *xmltree.Element {
	if el.Name.Local == name {
		return el
	}

	for i := range el.Children {
		if f := find(&el.Children[i], name); f != nil {
			return f
		}
	}

	return nil
}

func attr(t *testing.T, el *xmltree.Element, name string) string {
	t.Helper()

	if el == nil {
		t.Fatalf("element with attribute %q not found", name)
	}

	v, _ := xosc.Attr(el, name)

	return v
}

func newResolver(opts ...Option) *Resolver {
	return NewResolver(append([]Option{WithLogger(log.Make(nil))}, opts...)...)
}

var (
	vehicles = Locations{{Kind: KindVehicle, Directory: "catalogs/vehicles"}}
	all      = Locations{{Kind: KindAny, Directory: "catalogs"}}
	testdata = filepath.Join(".", "testdata")
	caller   = param.Scope{}.PushMap("scenario", map[string]string{"Speed": "33"})
)

func TestResolve_Vehicle(t *testing.T) {
	ref := reference(t, "ScenarioObject", `catalogName="VehicleCatalog" entryName="sedan"`,
		param.Assignment{Name: "MaxSpeed", Value: "$Speed"})

	res, err := newResolver().Resolve(context.Background(), ref, vehicles, caller, testdata)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if res.Entry.Kind != KindVehicle || res.Entry.String() != "VehicleCatalog/sedan" {
		t.Errorf("Entry = %v (%v)", res.Entry, res.Entry.Kind)
	}

	if got := attr(t, find(res.Element, "Performance"), "maxSpeed"); got != "33" {
		t.Errorf("maxSpeed = %q, want 33", got)
	}

	if got := attr(t, find(res.Element, "Property"), "value"); got != "red" {
		t.Errorf("color = %q, want red", got)
	}

	if find(res.Element, "ParameterDeclarations") != nil {
		t.Error("resolved entry keeps its declarations")
	}

	if v, _ := res.Scope.Lookup("Speed"); v != "33" {
		t.Errorf("entry scope lost caller parameter, Speed = %q", v)
	}

	// The cached entry is untouched.
	if got := attr(t, find(res.Entry.Element, "Performance"), "maxSpeed"); got != "$MaxSpeed" {
		t.Errorf("cached entry modified, maxSpeed = %q", got)
	}
}

func TestResolve_Nested(t *testing.T) {
	ref := reference(t, "ManeuverGroup", `catalogName="ManeuverCatalog" entryName="follow-route"`,
		param.Assignment{Name: "Road", Value: "7"})

	res, err := newResolver().Resolve(context.Background(), ref, all, param.Scope{}, testdata)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	route := find(res.Element, "Route")
	if route == nil || find(res.Element, "CatalogReference") != nil {
		t.Fatal("nested reference not replaced by route")
	}

	if got := attr(t, find(route, "RoadPosition"), "roadId"); got != "7" {
		t.Errorf("roadId = %q, want 7", got)
	}
}

func TestResolve_ParameterizedName(t *testing.T) {
	scope := param.Scope{}.PushMap("scenario", map[string]string{"Model": "truck"})
	ref := reference(t, "ScenarioObject", `catalogName="VehicleCatalog" entryName="$Model"`)

	res, err := newResolver().Resolve(context.Background(), ref, vehicles, scope, testdata)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if res.Entry.Name != "truck" {
		t.Errorf("Entry.Name = %q, want truck", res.Entry.Name)
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		parent  string
		attrs   string
		assign  []param.Assignment
		locs    Locations
		opts    []Option
		wantErr error
		attr    string // attribute key whose value must contain want
		want    string
	}{
		{
			name:    "no locations",
			parent:  "ScenarioObject",
			attrs:   `catalogName="VehicleCatalog" entryName="sedan"`,
			wantErr: ErrCatalogNotConfigured,
		},
		{
			name:    "no location of the accepted kind",
			parent:  "ObjectController",
			attrs:   `catalogName="ControllerCatalog" entryName="driver"`,
			locs:    vehicles,
			wantErr: ErrCatalogNotConfigured,
		},
		{
			name:    "unknown catalog",
			parent:  "ScenarioObject",
			attrs:   `catalogName="VehicleCatalg" entryName="sedan"`,
			locs:    vehicles,
			wantErr: ErrCatalogNotConfigured,
			attr:    "suggestions",
			want:    "VehicleCatalog",
		},
		{
			name:    "missing directory",
			parent:  "ScenarioObject",
			attrs:   `catalogName="VehicleCatalog" entryName="sedan"`,
			locs:    Locations{{Kind: KindVehicle, Directory: "nowhere"}},
			wantErr: ErrCatalogNotConfigured,
		},
		{
			name:    "unknown entry",
			parent:  "ScenarioObject",
			attrs:   `catalogName="VehicleCatalog" entryName="sedn"`,
			locs:    vehicles,
			wantErr: ErrEntryNotFound,
			attr:    "suggestions",
			want:    "sedan",
		},
		{
			name:    "wrong kind",
			parent:  "ScenarioObject",
			attrs:   `catalogName="ControllerCatalog" entryName="driver"`,
			locs:    all,
			wantErr: ErrCatalogTypeMismatch,
			attr:    "kind",
			want:    "controller",
		},
		{
			name:    "undeclared assignment",
			parent:  "ScenarioObject",
			attrs:   `catalogName="VehicleCatalog" entryName="sedan"`,
			assign:  []param.Assignment{{Name: "Wheels", Value: "4"}},
			locs:    vehicles,
			wantErr: value.ErrParameterNotFound,
			attr:    "parameter",
			want:    "Wheels",
		},
		{
			name:    "assignment of wrong type",
			parent:  "ScenarioObject",
			attrs:   `catalogName="VehicleCatalog" entryName="sedan"`,
			assign:  []param.Assignment{{Name: "MaxSpeed", Value: "fast"}},
			locs:    vehicles,
			wantErr: value.ErrTypeMismatch,
			attr:    "parameter",
			want:    "MaxSpeed",
		},
		{
			name:    "assignment of missing caller parameter",
			parent:  "ScenarioObject",
			attrs:   `catalogName="VehicleCatalog" entryName="sedan"`,
			assign:  []param.Assignment{{Name: "MaxSpeed", Value: "$Unknown"}},
			locs:    vehicles,
			wantErr: value.ErrParameterNotFound,
			attr:    "parameter",
			want:    "Unknown",
		},
		{
			name:    "cycle",
			parent:  "ManeuverGroup",
			attrs:   `catalogName="LoopCatalog" entryName="ping"`,
			locs:    Locations{{Kind: KindManeuver, Directory: "loop"}},
			opts:    []Option{WithMaxDepth(4)},
			wantErr: ErrMaxCatalogDepthExceeded,
			attr:    "chain",
			want:    "LoopCatalog/ping -> LoopCatalog/pong -> LoopCatalog/ping",
		},
		{
			name:    "unparsable catalog file",
			parent:  "ScenarioObject",
			attrs:   `catalogName="Broken" entryName="x"`,
			locs:    Locations{{Kind: KindAny, Directory: "broken"}},
			wantErr: ErrCatalogFileParse,
			attr:    "file",
			want:    "bad.xosc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := reference(t, tt.parent, tt.attrs, tt.assign...)

			_, err := newResolver(tt.opts...).Resolve(context.Background(), ref, tt.locs, caller, testdata)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
			}

			if tt.attr == "" {
				return
			}

			got, ok := pkg.AttrOf(err, tt.attr)
			if !ok || !strings.Contains(got, tt.want) {
				t.Errorf("error attribute %s = %q, want it to contain %q", tt.attr, got, tt.want)
			}
		})
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := NewCache()
	r := newResolver(WithCache(cache))
	s := r.Session(vehicles, testdata)

	var wg sync.WaitGroup

	refs := make([]Reference, 32)
	for i := range refs {
		refs[i] = reference(t, "ScenarioObject", `catalogName="VehicleCatalog" entryName="sedan"`,
			param.Assignment{Name: "MaxSpeed", Value: fmt.Sprint(i)})
	}

	got := make([]string, len(refs))

	for i, ref := range refs {
		wg.Go(func() {
			res, err := s.Resolve(context.Background(), ref, param.Scope{})
			if err != nil {
				t.Errorf("Resolve(%d) error = %v", i, err)

				return
			}

			got[i], _ = xosc.Attr(find(res.Element, "Performance"), "maxSpeed")
		})
	}

	wg.Wait()

	for i, v := range got {
		if v != fmt.Sprint(i) {
			t.Errorf("variant %d maxSpeed = %q", i, v)
		}
	}

	if n := cache.Len(); n != 1 {
		t.Errorf("Cache.Len() = %d, want 1", n)
	}

	// A second resolver sharing the cache does not index again.
	if _, err := newResolver(WithCache(cache)).Resolve(context.Background(),
		reference(t, "ScenarioObject", `catalogName="VehicleCatalog" entryName="truck"`),
		vehicles, param.Scope{}, testdata); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if n := cache.Len(); n != 1 {
		t.Errorf("Cache.Len() = %d after shared use, want 1", n)
	}

	cache.Clear()

	if n := cache.Len(); n != 0 {
		t.Errorf("Cache.Len() = %d after Clear, want 0", n)
	}
}

func TestSession_ResolveTree(t *testing.T) {
	doc, err := xosc.Parse([]byte(`<OpenSCENARIO>
		<Entities>
			<ScenarioObject name="Ego">
				<CatalogReference catalogName="VehicleCatalog" entryName="sedan">
					<ParameterAssignments>
						<ParameterAssignment parameterRef="Color" value="$Paint"/>
					</ParameterAssignments>
				</CatalogReference>
			</ScenarioObject>
		</Entities>
		<Init speed="$Speed"/>
	</OpenSCENARIO>`), "")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	scope := caller.PushMap("paint", map[string]string{"Paint": "blue"})

	s := newResolver().Session(vehicles, testdata)
	if err := s.ResolveTree(context.Background(), doc.Root, scope); err != nil {
		t.Fatalf("ResolveTree() error = %v", err)
	}

	if got := attr(t, find(doc.Root, "Init"), "speed"); got != "33" {
		t.Errorf("speed = %q, want 33", got)
	}

	if got := attr(t, find(doc.Root, "Vehicle"), "name"); got != "sedan" {
		t.Errorf("vehicle name = %q, want sedan", got)
	}

	if got := attr(t, find(doc.Root, "Property"), "value"); got != "blue" {
		t.Errorf("color = %q, want blue", got)
	}

	if _, ok := s.entries.Load(lookupKey(Reference{
		Catalog: "VehicleCatalog",
		Entry:   "sedan",
		Accept:  accepts["ScenarioObject"],
	})); !ok {
		t.Error("session did not remember the entry")
	}
}

func TestReferenceFrom(t *testing.T) {
	ref := reference(t, "AssignRouteAction", `catalogName="RouteCatalog" entryName="straight"`,
		param.Assignment{Name: "RoadId", Value: "3"})

	want := Reference{
		Catalog:     "RouteCatalog",
		Entry:       "straight",
		Assignments: []param.Assignment{{Name: "RoadId", Value: "3"}},
		Accept:      []Kind{KindRoute},
	}
	if diff := cmp.Diff(want, ref); diff != "" {
		t.Errorf("ReferenceFrom() (-want +got):\n%s", diff)
	}

	doc, _ := xosc.Parse([]byte(`<CatalogReference catalogName="RouteCatalog"/>`), "")
	if _, err := ReferenceFrom(doc.Root, nil); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("ReferenceFrom(no entry) error = %v, want %v", err, ErrInvalidReference)
	}
}
