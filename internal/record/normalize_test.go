package record_test

import (
	"errors"
	"strings"
	"testing"

	"actigraphy/internal/record"
)

func TestCleanKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Sleep.Onset", "sleep_onset"},
		{"HRVValue", "hrvvalue"},
		{"windowsizes", "windowsizes"},
		{"nightSummary", "night_summary"},
		{"calendar_date", "calendar_date"},
		{"already_Snake", "already_snake"},
		{"sleep.onset.Time", "sleep_onset_time"},
		{"meanENMO", "mean_enmo"},
		{"a.B", "a_b"},
		{"Éclair", "éclair"},
	}
	for _, tc := range cases {
		if got := record.CleanKey(tc.in); got != tc.want {
			t.Fatalf("CleanKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeCollapsesSingletons(t *testing.T) {
	in := record.NewMapping()
	in.Set("a", record.Sequence(record.Scalar(5.0)))
	in.Set("b", record.Sequence(record.Scalar(5.0), record.Scalar(6.0)))
	in.Set("c", record.Sequence(record.Sequence(record.Scalar("x"))))

	out, err := record.Normalize(in)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	a, _ := out.Get("a")
	if a.Kind() != record.KindScalar || a.Scalar() != 5.0 {
		t.Fatalf("expected a collapsed to 5, got %+v", a)
	}
	b, _ := out.Get("b")
	if b.Kind() != record.KindSequence || len(b.Sequence()) != 2 {
		t.Fatalf("expected b to stay a two-element sequence, got %+v", b)
	}
	c, _ := out.Get("c")
	if s, ok := c.Text(); !ok || s != "x" {
		t.Fatalf("expected nested singleton to collapse fully, got %+v", c)
	}

	orig, _ := in.Get("a")
	if orig.Kind() != record.KindSequence {
		t.Fatal("Normalize must not modify its input")
	}
}

func TestNormalizeRecursesAndKeepsTableColumns(t *testing.T) {
	row := record.NewMapping()
	row.Set("calendar_date", record.Scalar("1/1/2023"))
	row.Set("sleeponset_ts", record.Scalar("22:00:00"))
	row.Set("ENMO", record.Scalar(0.1))
	table := record.TableFromRows([]*record.Mapping{row})

	inner := record.NewMapping()
	inner.Set("metaShort", record.TableValue(table))
	inner.Set("windowSizes", record.Sequence(record.Scalar(5.0), record.Scalar(900.0), record.Scalar(3600.0)))

	in := record.NewMapping()
	in.Set("M", record.Sequence(record.MappingValue(inner)))

	out, err := record.Normalize(in)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := out.Keys(); len(got) != 1 || got[0] != "m" {
		t.Fatalf("unexpected top-level keys %v", got)
	}
	m, _ := out.Get("m")
	if m.Kind() != record.KindMapping {
		t.Fatalf("expected singleton mapping to collapse into a mapping, got %s", m.Kind())
	}
	if got := strings.Join(m.Mapping().Keys(), ","); got != "meta_short,window_sizes" {
		t.Fatalf("unexpected nested keys %q", got)
	}
	short, _ := m.Mapping().Get("meta_short")
	cols := short.Table().Columns()
	if strings.Join(cols, ",") != "calendar_date,sleeponset_ts,ENMO" {
		t.Fatalf("table columns must be kept verbatim, got %v", cols)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inner := record.NewMapping()
	inner.Set("Deep.Key", record.Sequence(record.Scalar(true)))
	inner.Set("list", record.Sequence(record.Scalar(1.0), record.Scalar(nil)))
	in := record.NewMapping()
	in.Set("Sleep.Onset", record.Sequence(record.Scalar("22:00")))
	in.Set("HRVValue", record.Scalar(42.0))
	in.Set("nested", record.MappingValue(inner))
	row := record.NewMapping()
	row.Set("Mixed.Case", record.Scalar(1.5))
	in.Set("rows", record.TableValue(record.TableFromRows([]*record.Mapping{row})))

	once, err := record.Normalize(in)
	if err != nil {
		t.Fatalf("first Normalize: %v", err)
	}
	twice, err := record.Normalize(once)
	if err != nil {
		t.Fatalf("second Normalize: %v", err)
	}
	if !once.Equal(twice) {
		t.Fatalf("Normalize is not idempotent: %v vs %v", once.Keys(), twice.Keys())
	}
}

func TestNormalizeReportsCollisionPath(t *testing.T) {
	inner := record.NewMapping()
	inner.Set("sleep.onset", record.Scalar(1.0))
	inner.Set("sleep_onset", record.Scalar(2.0))
	in := record.NewMapping()
	in.Set("summary", record.MappingValue(inner))

	_, err := record.Normalize(in)
	if !errors.Is(err, record.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	var nerr *record.NormalizeError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected *NormalizeError, got %T", err)
	}
	if nerr.Path != "summary.sleep_onset" {
		t.Fatalf("unexpected error path %q", nerr.Path)
	}
}

func TestNormalizeRejectsNestedTableCells(t *testing.T) {
	row := record.NewMapping()
	row.Set("values", record.Sequence(record.Scalar(1.0), record.Scalar(2.0)))
	in := record.NewMapping()
	in.Set("frame", record.TableValue(record.TableFromRows([]*record.Mapping{row})))

	_, err := record.Normalize(in)
	var nerr *record.NormalizeError
	if !errors.As(err, &nerr) || nerr.Path != "frame.values" {
		t.Fatalf("expected error at frame.values, got %v", err)
	}
}

func TestValueEqualOnUncomparableScalars(t *testing.T) {
	a := record.Scalar([]string{"x"})
	if !a.Equal(record.Scalar([]string{"x"})) {
		t.Fatalf("equal slice scalars should compare equal")
	}
	if a.Equal(record.Scalar(map[string]int{"x": 1})) {
		t.Fatalf("slice and map scalars should differ")
	}
	if record.Scalar(1.0).Equal(record.Scalar("1")) {
		t.Fatalf("number and string scalars should differ")
	}
}
