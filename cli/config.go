package cli

import (
	_ "embed"
	"io"
	"log/slog"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/xosc/log"
	"github.com/ardnew/xosc/pkg"
)

//go:embed config.cue
var configSchema string

// ErrConfig is returned for configuration files that fail to decode or do
// not match the schema.
var ErrConfig = pkg.NewError("invalid configuration")

// loadConfig is a [kong.ConfigurationLoader] for YAML configuration files.
//
// Each top-level key is the long name of a flag:
//
//	log-level: debug
//	catalog:
//	  - vehicle=/opt/scenarios/catalogs/vehicles
//	search-path:
//	  - /opt/scenarios/catalogs
//	workers: 4
//
// A file that cannot be decoded or validated is reported and ignored.
func loadConfig(r io.Reader) (kong.Resolver, error) {
	m, err := decodeConfig(r)
	if err != nil {
		log.Warn("ignoring configuration file", slog.Any("error", err))

		return config{}, nil
	}

	return m, nil
}

// decodeConfig reads a YAML document from r and validates it against
// configSchema.
func decodeConfig(r io.Reader) (config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrConfig.Wrap(err)
	}

	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, ErrConfig.Wrap(err)
	}

	if len(m) == 0 {
		return config{}, nil
	}

	ctx := cuecontext.New()

	schema := ctx.CompileString(configSchema).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return nil, ErrConfig.Wrap(err)
	}

	if err := schema.Unify(ctx.Encode(m)).Validate(cue.Concrete(true)); err != nil {
		return nil, ErrConfig.Wrap(err)
	}

	c := make(config, len(m))
	for key, val := range m {
		c[key] = flagValue(val)
	}

	return c, nil
}

// flagValue converts a decoded YAML value into a form Kong can parse.
// Kong parses numbers from strings.
func flagValue(v any) any {
	switch v := v.(type) {
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out
	default:
		return v
	}
}

// config implements [kong.Resolver] over a validated configuration file.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}
