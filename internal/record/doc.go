// Package record holds the heterogeneous nested structures exported by the
// GGIR statistical toolchain and rewrites them into a canonical form.
//
// Values are a tagged variant (scalar, sequence, mapping, table) so the
// normalizer dispatches on the tag instead of inspecting dynamic types. Decode
// reads the toolchain's JSON export (jsonlite layout, where data frames become
// arrays of row objects and length-one vectors stay wrapped in arrays) into
// that representation; Normalize snake-cases keys, collapses singleton
// sequences, and recurses into nested mappings while leaving table columns
// untouched.
package record
