package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"

	"github.com/ardnew/xosc/catalog"
	"github.com/ardnew/xosc/log"
	"github.com/ardnew/xosc/manifest"
	"github.com/ardnew/xosc/pkg"
	"github.com/ardnew/xosc/xosc"
)

func TestMain(m *testing.M) {
	log.Config(log.WithOutput(io.Discard))
	os.Exit(m.Run())
}

type testCLI struct {
	Init    Init    `cmd:""`
	Params  Params  `cmd:""`
	Expand  Expand  `cmd:""`
	Resolve Resolve `cmd:""`
}

// run parses args with the configuration file at confPath and runs the
// selected command, returning everything it wrote to stdout.
func run(t *testing.T, confPath string, args ...string) (string, error) {
	t.Helper()

	var (
		cli testCLI
		out bytes.Buffer
	)

	parser, err := kong.New(&cli,
		Vars(),
		kong.Vars{ConfigIdentifier: confPath},
		kong.Writers(&out, &out),
		kong.Exit(func(code int) { t.Fatalf("unexpected exit(%d)", code) }),
	)
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", args, err)
	}

	ktx.BindTo(WithContext(t.Context(), ktx), (*context.Context)(nil))

	err = ktx.Run()

	return out.String(), err
}

func TestExpand_JSON(t *testing.T) {
	out, err := run(t, "", "expand", "--format=json", "testdata/sweep.xosc")
	if err != nil {
		t.Fatalf("expand error = %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "expand-sweep-json", []byte(out))
}

func TestExpand_Text(t *testing.T) {
	out, err := run(t, "", "expand", "testdata/sweep.xosc")
	if err != nil {
		t.Fatalf("expand error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 7 {
		t.Fatalf("expand wrote %d lines, want 7:\n%s", len(lines), out)
	}

	if !strings.Contains(lines[0], "testdata/scenario.xosc") {
		t.Errorf("title = %q, want scenario path", lines[0])
	}

	if !strings.HasSuffix(lines[1], "EgoSpeed=10 Model=sedan") {
		t.Errorf("first variant = %q", lines[1])
	}

	if !strings.HasSuffix(lines[6], "EgoSpeed=20 Model=truck") {
		t.Errorf("last variant = %q", lines[6])
	}
}

func TestExpand_SeedOverride(t *testing.T) {
	expand := func() planRecord {
		out, err := run(t, "", "expand", "--format=json", "--seed=11", "testdata/stochastic.xosc")
		if err != nil {
			t.Fatalf("expand error = %v", err)
		}

		var rec planRecord
		if err := json.Unmarshal([]byte(out), &rec); err != nil {
			t.Fatal(err)
		}

		return rec
	}

	a, b := expand(), expand()

	if a.Seed == nil || *a.Seed != 11 {
		t.Errorf("seed = %v, want 11", a.Seed)
	}

	if len(a.Variants) != 5 {
		t.Errorf("len(variants) = %d, want 5", len(a.Variants))
	}

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed, different variants (-first +second):\n%s", diff)
	}
}

func TestParams(t *testing.T) {
	want := map[string]string{"EgoSpeed": "20", "Model": "sedan", "Gap": "$EgoSpeed"}

	for _, input := range []string{"testdata/scenario.xosc", "testdata/sweep.xosc"} {
		out, err := run(t, "", "params", "--format=json", input)
		if err != nil {
			t.Fatalf("params %s error = %v", input, err)
		}

		var got map[string]string
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("params %s (-want +got):\n%s", input, diff)
		}
	}

	out, err := run(t, "", "params", "testdata/scenario.xosc")
	if err != nil {
		t.Fatalf("params error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "EgoSpeed") ||
		!strings.HasSuffix(lines[2], "$EgoSpeed") {
		t.Errorf("params text output:\n%s", out)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "manifest.db")
	args := []string{"resolve", "--out=" + dir, "--manifest=" + db, "testdata/sweep.xosc"}

	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	models := []string{"sedan", "truck", "sedan", "truck", "sedan", "truck"}

	for i, model := range models {
		path := filepath.Join(dir, outputName("sweep", len(models))(i))

		doc, err := xosc.Load(path)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", path, err)
		}

		vehicles := doc.Root.Search("", "Vehicle")
		if len(vehicles) != 1 {
			t.Fatalf("%s: %d vehicles, want 1", path, len(vehicles))
		}

		if name, _ := xosc.Attr(vehicles[0], "name"); name != model {
			t.Errorf("%s: vehicle = %q, want %q", path, name, model)
		}

		if refs := doc.Root.Search("", "CatalogReference"); len(refs) != 0 {
			t.Errorf("%s: %d catalog references remain", path, len(refs))
		}

		if !strings.Contains(out, path) {
			t.Errorf("summary does not list %s", path)
		}
	}

	store, err := manifest.Open(t.Context(), db)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	entries, err := store.Variants(t.Context(), 1)
	if err != nil {
		t.Fatalf("Variants() error = %v", err)
	}

	if len(entries) != len(models) || entries[2].Output != filepath.Join(dir, "sweep-2.xosc") {
		t.Errorf("manifest entries = %+v", entries)
	}

	if _, err := run(t, "", args...); !errors.Is(err, ErrFileExists) {
		t.Errorf("second resolve error = %v, want %v", err, ErrFileExists)
	}

	if _, err := run(t, "", append(args, "--force")...); err != nil {
		t.Errorf("forced resolve error = %v", err)
	}
}

func TestResolve_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	name := outputName("sweep", 6)

	blocker := filepath.Join(dir, name(3))
	if err := os.WriteFile(blocker, []byte("keep"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "", "resolve", "--out="+dir, "testdata/sweep.xosc")
	if !errors.Is(err, ErrFileExists) {
		t.Fatalf("resolve error = %v, want %v", err, ErrFileExists)
	}

	for i := range 6 {
		path := filepath.Join(dir, name(i))

		_, err := os.Stat(path)
		if path == blocker {
			if err != nil {
				t.Errorf("existing file removed: %v", err)
			}

			continue
		}

		if !os.IsNotExist(err) {
			t.Errorf("%s left behind after failed resolve (stat err = %v)", path, err)
		}
	}
}

func TestResolve_Stdin(t *testing.T) {
	data, err := os.ReadFile("testdata/scenario.xosc")
	if err != nil {
		t.Fatal(err)
	}

	prev := stdin
	stdin = bytes.NewReader(data)

	t.Cleanup(func() { stdin = prev })

	dir := t.TempDir()

	if _, err := run(t, "", "resolve", "--out="+dir, "--catalog=vehicle=testdata/catalogs/vehicles", "-"); err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "scenario-0.xosc")); err != nil {
		t.Errorf("resolve from stdin: %v", err)
	}
}

func TestCatalogs_Locations(t *testing.T) {
	t.Setenv(pkg.EnvVar(searchPathKey), "")

	tests := []struct {
		name    string
		flags   Catalogs
		want    catalog.Locations
		wantErr error
	}{
		{
			name:  "kind and search path",
			flags: Catalogs{Catalog: []string{"vehicle=/v", "Route=/r"}, SearchPath: []string{"/any"}},
			want: catalog.Locations{
				{Directory: "/v", Kind: catalog.KindVehicle},
				{Directory: "/r", Kind: catalog.KindRoute},
				{Directory: "/any", Kind: catalog.KindAny},
			},
		},
		{
			name:    "missing directory",
			flags:   Catalogs{Catalog: []string{"vehicle"}},
			wantErr: ErrLocation,
		},
		{
			name:    "unknown kind",
			flags:   Catalogs{Catalog: []string{"boat=/b"}},
			wantErr: ErrLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.locations()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("locations() error = %v, want %v", err, tt.wantErr)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("locations() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearchPath(t *testing.T) {
	sep := string(os.PathListSeparator)
	t.Setenv(pkg.EnvVar(searchPathKey), "/env/a"+sep+"/env/b")

	got := searchPath("/flag")

	if len(got) == 0 || got[0] != "/flag" {
		t.Fatalf("searchPath() = %q, want /flag first", got)
	}

	for _, want := range []string{"/env/a", "/env/b"} {
		found := false

		for _, dir := range got {
			found = found || dir == want
		}

		if !found {
			t.Errorf("searchPath() = %q, missing %s", got, want)
		}
	}
}
