package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/xosc/log"
	"github.com/ardnew/xosc/profile"
)

// Init generates a configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// configIgnore lists flags that are never written to the configuration
// file, by name or name prefix.
var configIgnore = []string{"help", "version", "force", "format", "seed", profile.Tag}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) error {
	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalContext(ctx, configValues(ktx), yaml.Indent(outputIndent))
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	if err := os.WriteFile(confPath, data, defaultFileMode); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath))

	return nil
}

// configValues collects the value of every configurable flag of every
// command in model order. Flags outside the parsed command hold their
// defaults.
func configValues(ktx *kong.Context) yaml.MapSlice {
	var (
		items yaml.MapSlice
		seen  = map[string]bool{}
	)

	_ = kong.Visit(ktx.Model.Node, func(node kong.Visitable, next kong.Next) error {
		flag, ok := node.(*kong.Flag)
		if !ok || flag.Hidden || seen[flag.Name] ||
			slices.ContainsFunc(configIgnore, func(s string) bool {
				return strings.HasPrefix(flag.Name, s)
			}) {
			return next(nil)
		}

		seen[flag.Name] = true

		if v := configValue(ktx.FlagValue(flag)); v != nil {
			items = append(items, yaml.MapItem{Key: flag.Name, Value: v})
		}

		return next(nil)
	})

	return items
}

// configValue returns the YAML form of a flag value, or nil if it is
// unset.
func configValue(v any) any {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Invalid:
		return nil

	case reflect.Bool:
		return rv.Bool()

	case reflect.String:
		if rv.Len() == 0 {
			return nil
		}

		return rv.String()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()

	case reflect.Float32, reflect.Float64:
		return rv.Float()

	case reflect.Slice:
		if rv.Len() == 0 {
			return nil
		}

		out := make([]any, 0, rv.Len())
		for i := range rv.Len() {
			if e := configValue(rv.Index(i).Interface()); e != nil {
				out = append(out, e)
			}
		}

		return out

	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}

		return configValue(rv.Elem().Interface())

	default:
		return fmt.Sprint(v)
	}
}
