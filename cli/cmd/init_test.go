package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestInitRun(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		setup   func(t *testing.T, path string)
		wantErr error
	}{
		{
			name: "create_new_config",
		},
		{
			name: "overwrite_existing_with_force",
			args: []string{"--force"},
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing: content"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "fail_without_force",
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing: content"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: ErrFileExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.setup != nil {
				tt.setup(t, confPath)
			}

			_, err := run(t, confPath, append([]string{"init"}, tt.args...)...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("init error = %v, want %v", err, tt.wantErr)
			}

			if tt.wantErr != nil {
				return
			}

			data, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var conf map[string]any
			if err := yaml.Unmarshal(data, &conf); err != nil {
				t.Fatalf("generated config is not YAML: %v\n%s", err, data)
			}

			if got := fmt.Sprint(conf["max-depth"]); got != "16" {
				t.Errorf("max-depth = %s, want 16", got)
			}

			if got, ok := conf["eval"].(bool); !ok || !got {
				t.Errorf("eval = %v, want true", conf["eval"])
			}

			for _, key := range []string{"force", "format", "seed", "catalog", "help", "existing"} {
				if _, ok := conf[key]; ok {
					t.Errorf("config contains %q", key)
				}
			}
		})
	}
}

func TestConfigValue(t *testing.T) {
	type level string

	seed := uint64(7)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"empty string", "", nil},
		{"named string", level("debug"), "debug"},
		{"int", 4, int64(4)},
		{"pointer", &seed, uint64(7)},
		{"nil pointer", (*uint64)(nil), nil},
		{"empty slice", []string{}, nil},
		{"slice", []string{"a", "", "b"}, []any{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := configValue(tt.in)

			if gs, ok := got.([]any); ok {
				ws, _ := tt.want.([]any)
				if len(gs) != len(ws) {
					t.Fatalf("configValue(%v) = %v, want %v", tt.in, got, tt.want)
				}

				for i := range gs {
					if gs[i] != ws[i] {
						t.Errorf("configValue(%v)[%d] = %v, want %v", tt.in, i, gs[i], ws[i])
					}
				}

				return
			}

			if got != tt.want {
				t.Errorf("configValue(%v) = %v (%T), want %v (%T)", tt.in, got, got, tt.want, tt.want)
			}
		})
	}
}
