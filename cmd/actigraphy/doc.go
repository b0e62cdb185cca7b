// Package main hosts the actigraphy CLI.
//
// Commands ingest toolchain output, list subjects and days, apply operator
// edits and rewrite the exported sleep logs. Configuration and logging are
// resolved once per invocation in commandContext; the work itself lives in
// the internal packages.
package main
