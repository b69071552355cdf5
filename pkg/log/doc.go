/*
Package log provides structured logging for the ledger using zerolog.

The log package wraps zerolog to provide JSON-structured logging with
component-specific child loggers, a configurable level, and a handful of
package-level helpers for the common case. All logs include timestamps and
support filtering by severity level.

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Thread-safe for concurrent use

Configuration:
  - Level: debug/info/warn/error
  - JSONOutput: JSON vs human-readable console
  - Output: io.Writer for log destination (stdout, file)

Context Loggers:
  - WithComponent: tag logs with the owning package (propagate, report, ...)
  - WithStore, WithGoods, WithOperation: tag logs with the identifying
    tuple a ledger operation touches

# Usage

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	log.Info("ledger opened")

	propLog := log.WithComponent("propagate")
	propLog.Info().
		Str("store", store.String()).
		Int("mutations", len(mutations)).
		Msg("applying mutation batch")

	opLog := log.WithOperation(op.ID.String())
	opLog.Error().Err(err).Msg("mutate failed")

# Design Patterns

Global Logger Pattern: a single package-level Logger instance, initialized
once at process start, accessible from every package without being passed
down the call stack.

Context Logger Pattern: child loggers carry identifying fields so callers
don't repeat them at every call site.

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
  - pkg/wherr for the error taxonomy these logs report on
*/
package log
