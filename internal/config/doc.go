// Package config loads, normalizes, and validates actigraphy configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// ACTIGRAPHY_DATA_DIR and ACTIGRAPHY_DATABASE_DSN. The Config type is built
// once per process and passed explicitly to every entry point; no package keeps
// settings in globals.
package config
