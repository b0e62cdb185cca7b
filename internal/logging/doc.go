// Package logging assembles structured slog loggers for the actigraphy CLI.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context helpers that tag log lines with the subject, preprocess run id, and
// pipeline stage. Loggers are always passed explicitly; nothing here installs a
// process-wide default.
package logging
