package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func TestDecodeConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    config
		wantErr error
	}{
		{
			name: "empty",
			yaml: "",
			want: config{},
		},
		{
			name: "flags",
			yaml: `
log-level: debug
log-pretty: false
catalog:
  - vehicle=/opt/catalogs/vehicles
search-path: [/opt/catalogs]
workers: 4
max-depth: 8
`,
			want: config{
				"log-level":   "debug",
				"log-pretty":  false,
				"catalog":     []any{"vehicle=/opt/catalogs/vehicles"},
				"search-path": []any{"/opt/catalogs"},
				"workers":     "4",
				"max-depth":   "8",
			},
		},
		{name: "unknown key", yaml: "bogus: 1", wantErr: ErrConfig},
		{name: "bad level", yaml: "log-level: loud", wantErr: ErrConfig},
		{name: "bad catalog", yaml: "catalog: [vehicle]", wantErr: ErrConfig},
		{name: "bad depth", yaml: "max-depth: 0", wantErr: ErrConfig},
		{name: "not a map", yaml: "- a\n- b", wantErr: ErrConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeConfig(strings.NewReader(tt.yaml))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("decodeConfig() error = %v, want %v", err, tt.wantErr)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("decodeConfig() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigResolver(t *testing.T) {
	conf, err := loadConfig(strings.NewReader(`
log-format: json
catalog: [route=/routes]
workers: 3
`))
	if err != nil {
		t.Fatal(err)
	}

	var cli struct {
		Log     logConfig `embed:"" prefix:"log-"`
		Catalog []string
		Workers int
	}

	parser, err := kong.New(&cli, cli.Log.vars(), kong.Resolvers(conf))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--workers=5"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cli.Log.Format != "json" {
		t.Errorf("log format = %q, want json", cli.Log.Format)
	}

	if diff := cmp.Diff([]string{"route=/routes"}, cli.Catalog); diff != "" {
		t.Errorf("catalog (-want +got):\n%s", diff)
	}

	if cli.Workers != 5 {
		t.Errorf("workers = %d, want the flag value 5", cli.Workers)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	conf, err := loadConfig(strings.NewReader("log-level: loud"))
	if err != nil {
		t.Fatalf("loadConfig() error = %v, want nil", err)
	}

	if diff := cmp.Diff(config{}, conf); diff != "" {
		t.Errorf("loadConfig() (-want +got):\n%s", diff)
	}
}
