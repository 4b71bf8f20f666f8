// Package log provides a leveled structured logger based on [log/slog].
//
// Loggers are configured once, at creation, with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
//	logger.Info("script loaded", slog.String("path", path))
//
// A [Logger] never changes after it is made. [Logger.Wrap] derives a logger
// with different options and [Logger.With] one with extra attributes.
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] and is used for per-binding detail.
// The remaining levels match slog: [LevelDebug], [LevelInfo], [LevelWarn]
// and [LevelError].
//
// # Output
//
// [FormatJSON] (the default) and [FormatText] are supported. With pretty
// output enabled (the default), text records drop quoting and JSON records
// are indented, and both are colorized when written to a terminal.
//
// # Package-level logger
//
// The functions [Trace], [Debug], [Info], [Warn] and [Error] and their
// Context variants log through a package-level logger that writes to
// standard error; [Config] reconfigures it.
//
// # Console
//
// [Console] renders ANSI-styled text for program output rather than for log
// records.
package log
