// Package sleep models sleep intervals and the per-day working unit reviewers
// annotate.
//
// Timestamps are stored as naive UTC wall-clock values paired with the UTC
// offset (in seconds) that was in effect locally. Localize reconstructs the
// locally observed instant for display and export; Duration always works on
// the naive values so daylight-saving transitions never change how long a
// sleep period is measured to be.
//
// The package also owns the day-level policies the serializers depend on:
// primary-interval selection (longest wins, first maximum on ties), the
// placeholder interval for days without any recorded sleep, and the exclusion
// rule used by the data-cleaning export.
package sleep
