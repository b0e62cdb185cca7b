package ggir

import (
	"math"

	"actigraphy/internal/record"
)

// Column names of the toolchain tables. Table columns keep their original
// spelling through normalization.
const (
	ColumnTimestamp    = "timestamp"
	ColumnAngleZ       = "anglez"
	ColumnENMO         = "ENMO"
	ColumnNonWearScore = "nonwearscore"
	ColumnCalendarDate = "calendar_date"
	ColumnSleepOnset   = "sleeponset_ts"
	ColumnWakeup       = "wakeup_ts"
)

// MetaData is the part of the toolchain's per-subject metadata export needed
// for ingestion.
type MetaData struct {
	// WindowSizes holds the short epoch, long epoch and window length in seconds.
	WindowSizes []int
	MetaLong    *record.Table
	MetaShort   *record.Table
	// SampleFrequency is the device sampling rate in Hz, zero when absent.
	SampleFrequency float64
}

// ShortEpoch returns the short epoch length in seconds.
func (m *MetaData) ShortEpoch() int { return m.WindowSizes[0] }

// EpochRatio returns the number of short epochs per long epoch.
func (m *MetaData) EpochRatio() int { return m.WindowSizes[1] / m.WindowSizes[0] }

// PointsPerDay returns the number of short epochs in 24 hours.
func (m *MetaData) PointsPerDay() int { return 86400 / m.WindowSizes[0] }

// ParseMetaData extracts MetaData from a normalized metadata mapping.
func ParseMetaData(root *record.Mapping) (*MetaData, error) {
	m, err := mappingAt(root, "m", "")
	if err != nil {
		return nil, err
	}

	sizes, err := intsAt(m, "windowsizes", "m")
	if err != nil {
		return nil, err
	}
	if len(sizes) < 2 {
		return nil, record.Malformed("m.windowsizes", "expected at least 2 window sizes, got %d", len(sizes))
	}
	for i, size := range sizes[:2] {
		if size <= 0 {
			return nil, record.Malformed("m.windowsizes", "window size %d must be positive, got %d", i, size)
		}
	}
	if sizes[1]%sizes[0] != 0 {
		return nil, record.Malformed("m.windowsizes", "long epoch %d is not a multiple of short epoch %d", sizes[1], sizes[0])
	}

	metalong, err := tableAt(m, "metalong", "m", ColumnNonWearScore)
	if err != nil {
		return nil, err
	}
	metashort, err := tableAt(m, "metashort", "m", ColumnTimestamp, ColumnAngleZ, ColumnENMO)
	if err != nil {
		return nil, err
	}

	meta := &MetaData{WindowSizes: sizes, MetaLong: metalong, MetaShort: metashort}

	if info, ok := root.Get("i"); ok && info.Kind() == record.KindMapping {
		if sf, found, err := floatAt(info.Mapping(), "sf", "i"); err != nil {
			return nil, err
		} else if found {
			meta.SampleFrequency = sf
		}
	}
	return meta, nil
}

// MS4 is the per-night sleep summary export.
type MS4 struct {
	NightSummary *record.Table
}

// ParseMS4 extracts the night summary from a normalized ms4 mapping.
func ParseMS4(root *record.Mapping) (*MS4, error) {
	summary, err := tableAt(root, "nightsummary", "", ColumnCalendarDate, ColumnSleepOnset, ColumnWakeup)
	if err != nil {
		return nil, err
	}
	return &MS4{NightSummary: summary}, nil
}

func lookup(m *record.Mapping, key, parent string) (record.Value, string, error) {
	path := record.JoinPath(parent, key)
	v, ok := m.Get(key)
	if !ok {
		return record.Value{}, path, record.Malformed(path, "missing key")
	}
	return v, path, nil
}

func mappingAt(m *record.Mapping, key, parent string) (*record.Mapping, error) {
	v, path, err := lookup(m, key, parent)
	if err != nil {
		return nil, err
	}
	if v.Kind() != record.KindMapping {
		return nil, record.Malformed(path, "expected mapping, got %s", v.Kind())
	}
	return v.Mapping(), nil
}

// tableAt returns the table stored at key and checks that required columns
// are present. An empty sequence stands for a table without rows.
func tableAt(m *record.Mapping, key, parent string, required ...string) (*record.Table, error) {
	v, path, err := lookup(m, key, parent)
	if err != nil {
		return nil, err
	}
	var table *record.Table
	switch {
	case v.Kind() == record.KindTable:
		table = v.Table()
	case v.Kind() == record.KindSequence && len(v.Sequence()) == 0:
		cells := make(map[string][]record.Value, len(required))
		for _, column := range required {
			cells[column] = nil
		}
		table, err = record.NewTable(required, cells)
		if err != nil {
			return nil, err
		}
	default:
		return nil, record.Malformed(path, "expected table, got %s", v.Kind())
	}
	for _, column := range required {
		if _, ok := table.Column(column); !ok {
			return nil, record.Malformed(record.JoinPath(path, column), "missing column")
		}
	}
	return table, nil
}

func intsAt(m *record.Mapping, key, parent string) ([]int, error) {
	v, path, err := lookup(m, key, parent)
	if err != nil {
		return nil, err
	}
	var items []record.Value
	switch v.Kind() {
	case record.KindScalar:
		items = []record.Value{v}
	case record.KindSequence:
		items = v.Sequence()
	default:
		return nil, record.Malformed(path, "expected integer sequence, got %s", v.Kind())
	}
	out := make([]int, 0, len(items))
	for i, item := range items {
		n, ok := item.Int()
		if !ok {
			return nil, record.Malformed(path, "element %d is not an integer", i)
		}
		out = append(out, n)
	}
	return out, nil
}

// floatAt reads an optional scalar. A multi-element sequence is malformed.
func floatAt(m *record.Mapping, key, parent string) (float64, bool, error) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false, nil
	}
	path := record.JoinPath(parent, key)
	if v.Kind() != record.KindScalar {
		return 0, false, record.Malformed(path, "expected scalar, got %s", v.Kind())
	}
	f, ok := v.Float()
	if !ok || math.IsNaN(f) {
		return 0, false, record.Malformed(path, "expected number")
	}
	return f, true, nil
}
