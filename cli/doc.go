// Package cli contains the command line interface for xosc.
//
// # Usage
//
//	xosc [flags] <command> [args]
//
// Commands:
//   - resolve: write one literal scenario per variant (default command)
//   - expand: list the variants of a parameter distribution
//   - params: list the parameters a scenario declares
//   - init: write the configuration file from current flag values
//
// # Configuration
//
// Flags may also be set in config.yaml under the user configuration
// directory. Keys are long flag names and the file is validated against an
// embedded CUE schema before use:
//
//	log-level: debug
//	catalog:
//	  - vehicle=/opt/scenarios/catalogs/vehicles
//	workers: 4
//
// Command-line flags override configuration values. Directories listed in
// XOSC_CATALOG_PATH are searched for catalogs of any kind after those given
// with --search-path.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/xosc/pprof)
//
// # Examples
//
//	# Resolve every variant of a sweep into ./out
//	xosc resolve -o out sweep.xosc
//
//	# Reproduce a stochastic run and record it
//	xosc resolve --seed 42 --manifest runs.db -o out stochastic.xosc
//
//	# Inspect variants without resolving catalogs
//	xosc expand --format yaml sweep.xosc
package cli
