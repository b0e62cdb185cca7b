// Package export serializes a subject's curated sleep annotations into the
// fixed-format files consumed by downstream analysis.
//
// The sleep log and data-cleaning files use CRLF line endings; the
// all-sleep-times table uses LF. Timestamps are written with
// sleep.FormatTimestamp.
package export
