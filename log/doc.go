// Package log wraps [log/slog] with a concurrency-safe [Logger] configured
// through functional options.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("scenario loaded", slog.String("file", path))
//	logger.Error("catalog lookup failed", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true),
//		log.WithPretty(true))
//
// [Logger.Wrap] derives a logger from an existing one with more options
// applied. [Config] does the same for the package default returned by
// [Default].
//
// # Attributes
//
// [Logger.With] returns a logger that adds attrs to every message:
//
//	logger = logger.With(slog.Int("variant", 3))
//	logger.Info("variant written") // includes variant=3
//
// # Context
//
// Every level has a context-aware method and a context-unaware one. The
// latter passes the context returned by [DefaultContextProvider].
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn] and [LevelError]. [LevelInfo] is the default. Messages below
// the configured level are discarded.
//
// # Time Layout
//
// [WithTimeLayout] accepts the name of a layout from the [time] package
// (such as "RFC3339" or "kitchen"), a custom layout string, or "none" to
// omit timestamps.
//
// # Output Formats
//
// [FormatText] is the default and [FormatJSON] is the alternative. Text
// output is colorized when [WithPretty] is enabled.
package log
