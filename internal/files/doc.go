// Package files resolves the layout of a subject output directory and guards
// it against concurrent writers.
//
// A subject directory is named output_<identifier> and holds the toolchain
// exports under meta/, the subject database, and a logs/ directory receiving
// the exported artifacts.
package files
