// Package preprocess turns the toolchain output found under the data
// directory into subject records.
//
// Each subject directory is handled under its writer lock. A subject that is
// already stored is left alone, so reruns only pick up new directories.
package preprocess
