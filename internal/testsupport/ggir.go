package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Night is one night summary row.
type Night struct {
	CalendarDate string
	Onset        string
	Wakeup       string
}

// GGIROutput describes a synthetic toolchain export for one subject.
type GGIROutput struct {
	// WindowSizes defaults to 3600/7200/3600 seconds, giving 24 short epochs a day.
	WindowSizes []int
	// Start is the first short epoch. Its location sets every timestamp's offset.
	Start time.Time
	// Epochs is the number of metashort rows.
	Epochs int
	// NonWear lists metalong rows whose nonwearscore is 3.
	NonWear []int
	Nights  []Night
}

func (o GGIROutput) windowSizes() []int {
	if len(o.WindowSizes) == 0 {
		return []int{3600, 7200, 3600}
	}
	return o.WindowSizes
}

// MetadataJSON renders the metadata export in the jsonlite layout.
func MetadataJSON(t testing.TB, out GGIROutput) []byte {
	t.Helper()

	sizes := out.windowSizes()
	short := time.Duration(sizes[0]) * time.Second
	ratio := sizes[1] / sizes[0]

	metashort := make([]map[string]any, 0, out.Epochs)
	for i := 0; i < out.Epochs; i++ {
		ts := out.Start.Add(time.Duration(i) * short)
		metashort = append(metashort, map[string]any{
			"timestamp": ts.Format("2006-01-02T15:04:05-0700"),
			"anglez":    float64(i) * 0.5,
			"ENMO":      float64(i) / 100,
		})
	}

	nonWear := make(map[int]bool, len(out.NonWear))
	for _, idx := range out.NonWear {
		nonWear[idx] = true
	}
	longRows := (out.Epochs + ratio - 1) / ratio
	metalong := make([]map[string]any, 0, longRows)
	for i := 0; i < longRows; i++ {
		score := 0
		if nonWear[i] {
			score = 3
		}
		metalong = append(metalong, map[string]any{
			"timestamp":    out.Start.Add(time.Duration(i*ratio) * short).Format("2006-01-02T15:04:05-0700"),
			"nonwearscore": score,
		})
	}

	payload := map[string]any{
		"M": map[string]any{
			"windowsizes": sizes,
			"metalong":    metalong,
			"metashort":   metashort,
		},
		"I": map[string]any{"sf": []float64{30}},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	return data
}

// MS4JSON renders the night summary export in the jsonlite layout.
func MS4JSON(t testing.TB, nights []Night) []byte {
	t.Helper()

	rows := make([]map[string]any, 0, len(nights))
	for i, night := range nights {
		rows = append(rows, map[string]any{
			"night":         i + 1,
			"calendar_date": night.CalendarDate,
			"sleeponset_ts": night.Onset,
			"wakeup_ts":     night.Wakeup,
		})
	}
	data, err := json.Marshal(map[string]any{"nightsummary": rows})
	if err != nil {
		t.Fatalf("marshal ms4: %v", err)
	}
	return data
}

// WriteSubjectDir lays out dataDir/output_<identifier> with both exports and
// returns the subject directory.
func WriteSubjectDir(t testing.TB, dataDir, identifier string, out GGIROutput) string {
	t.Helper()

	dir := filepath.Join(dataDir, "output_"+identifier)
	writeBytes(t, filepath.Join(dir, "meta", "basic", "meta_"+identifier+".gt3x.json"), MetadataJSON(t, out))
	writeBytes(t, filepath.Join(dir, "meta", "ms4.out", identifier+".gt3x.json"), MS4JSON(t, out.Nights))
	return dir
}

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
