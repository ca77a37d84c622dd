package xosc

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func load(t *testing.T, name string) *Document {
	t.Helper()

	doc, err := Load(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("Load(%q) error = %v", name, err)
	}

	return doc
}

func TestDocument_Kind(t *testing.T) {
	tests := []struct {
		file string
		want Kind
	}{
		{"cut-in.xosc", KindScenario},
		{"sweep.xosc", KindDistribution},
		{"stochastic.xosc", KindDistribution},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			if got := load(t, tt.file).Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join("testdata", "missing.xosc")); !errors.Is(err, ErrRead) {
		t.Errorf("Load(missing) error = %v, want %v", err, ErrRead)
	}

	if _, err := Parse([]byte("<OpenSCENARIO><Unclosed></OpenSCENARIO>"), "bad.xosc"); !errors.Is(err, ErrParse) {
		t.Errorf("Parse(bad) error = %v, want %v", err, ErrParse)
	}
}

func TestDocument_Digest(t *testing.T) {
	a, _ := Parse([]byte("<A/>"), "a")
	b, _ := Parse([]byte("<A/>"), "b")
	c, _ := Parse([]byte("<B/>"), "c")

	if a.Digest != b.Digest {
		t.Error("identical content has different digests")
	}

	if a.Digest == c.Digest {
		t.Error("different content has equal digests")
	}
}

func TestDocument_CloneIsDeep(t *testing.T) {
	doc := load(t, "cut-in.xosc")
	c := doc.Clone()

	for v := range Values(c.Root) {
		v.Set("changed")
	}

	for v := range Values(doc.Root) {
		if v.Raw() == "changed" {
			t.Fatalf("clone shares attribute %q with original", v.Name())
		}
	}
}

func TestDocument_Encode(t *testing.T) {
	doc := load(t, "cut-in.xosc")

	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if !strings.HasPrefix(buf.String(), xmlHeader) {
		t.Errorf("Encode() missing XML header: %q", buf.String()[:40])
	}

	again, err := Parse(buf.Bytes(), doc.Path)
	if err != nil {
		t.Fatalf("Parse(Encode()) error = %v", err)
	}

	want, _ := Declarations(doc.Root)

	got, err := Declarations(again.Root)
	if err != nil {
		t.Fatalf("Declarations() error = %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("declarations changed by round trip (-want +got):\n%s", diff)
	}
}

func TestSites(t *testing.T) {
	doc := load(t, "cut-in.xosc")

	var (
		refs   []string
		values []string
	)

	for s := range Sites(doc.Root) {
		switch s := s.(type) {
		case *ReferenceSite:
			name, _ := Attr(s.Element(), "entryName")
			refs = append(refs, s.Parent().Name.Local+"/"+name)
		case *ValueSite:
			if strings.HasPrefix(s.Raw(), "$") {
				values = append(values, s.Element().Name.Local+"@"+s.Name())
			}
		}
	}

	if diff := cmp.Diff([]string{"ScenarioObject/car"}, refs); diff != "" {
		t.Errorf("references (-want +got):\n%s", diff)
	}

	// Declarations and the reference's own assignments are not visited.
	want := []string{
		"AbsoluteTargetSpeed@value",
		"LanePosition@laneId",
		"LanePosition@s",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("parameterized values (-want +got):\n%s", diff)
	}
}

func TestSites_SkipsNamespaces(t *testing.T) {
	doc := load(t, "cut-in.xosc")

	for v := range Values(doc.Root) {
		if v.Element() == doc.Root {
			t.Errorf("visited namespace attribute %q", v.Name())
		}
	}
}

func TestReferenceSite_Replace(t *testing.T) {
	doc := load(t, "cut-in.xosc")

	for r := range References(doc.Root) {
		vehicle, _ := Parse([]byte(`<Vehicle name="car" vehicleCategory="car"/>`), "")
		r.Replace(vehicle.Root)
	}

	obj := Child(Child(doc.Root, "Entities"), "ScenarioObject")
	if got := Child(obj, "Vehicle"); got == nil {
		t.Fatal("reference not replaced")
	}

	if Child(obj, "CatalogReference") != nil {
		t.Error("reference still present")
	}
}

func TestDeclarationsAndAssignments(t *testing.T) {
	doc := load(t, "cut-in.xosc")

	decls, err := Declarations(doc.Root)
	if err != nil {
		t.Fatalf("Declarations() error = %v", err)
	}

	if got := decls.Names(); !cmp.Equal(got, []string{"EgoSpeed", "Gap", "Lane"}) {
		t.Errorf("Names() = %v", got)
	}

	var ref *ReferenceSite
	for r := range References(doc.Root) {
		ref = r
	}

	as, err := Assignments(ref.Element())
	if err != nil {
		t.Fatalf("Assignments() error = %v", err)
	}

	if len(as) != 1 || as[0].Name != "MaxSpeed" || as[0].Value != "$EgoSpeed" {
		t.Errorf("Assignments() = %v", as)
	}
}

func TestDeclarations_Malformed(t *testing.T) {
	doc, _ := Parse([]byte(`<OpenSCENARIO><ParameterDeclarations>
		<ParameterDeclaration name="x" value="1"/>
	</ParameterDeclarations></OpenSCENARIO>`), "")

	if _, err := Declarations(doc.Root); !errors.Is(err, ErrMalformed) {
		t.Errorf("Declarations() error = %v, want %v", err, ErrMalformed)
	}
}

func TestSetDeclarationValues(t *testing.T) {
	doc := load(t, "cut-in.xosc")

	SetDeclarationValues(doc.Root, mapLookup{"EgoSpeed": "35", "Gap": "35"})

	decls, _ := Declarations(doc.Root)

	got := map[string]string{}
	for _, d := range decls {
		got[d.Name] = d.Value
	}

	want := map[string]string{"EgoSpeed": "35", "Gap": "35", "Lane": "-1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("declaration values (-want +got):\n%s", diff)
	}

	RemoveDeclarations(doc.Root)

	if Child(doc.Root, "ParameterDeclarations") != nil {
		t.Error("RemoveDeclarations() left declarations")
	}
}

type mapLookup map[string]string

func (m mapLookup) Lookup(name string) (string, bool) {
	v, ok := m[name]

	return v, ok
}
