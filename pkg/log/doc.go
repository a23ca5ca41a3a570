// Package log provides structured execution logging for list-mode runs.
//
// This package defines the Logger interface and Event types for capturing
// what the list engine does on each channel: steps applied, runs started,
// finished or aborted, and errors. It is separate from operational logging
// (slog) - the event log is a complete machine-readable trace of every run.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.Logger, _ = log.NewFileLogger("/var/log/psu/list.elog")
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
//   - Step: setpoints applied for one list point (StepEvent)
//   - State: run lifecycle changes (StateChangeEvent)
//   - Error: limit violations and storage failures (ErrorEventData)
//
// Every event started by the same run carries the run's RunID.
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys, using the
// .elog extension. The psu-log CLI tool views and summarizes them.
package log
