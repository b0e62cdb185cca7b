// Package ggir reads the accelerometer toolchain's per-subject exports and
// turns them into an ingestion payload.
//
// Two files are consumed: the metadata export (window sizes plus the long and
// short epoch tables) and the ms4 night summary. Both arrive as jsonlite JSON
// and pass through record.Normalize before the typed views here are built.
package ggir
