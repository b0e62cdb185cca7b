package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DatabaseName is the per-subject sqlite file inside a subject directory.
const DatabaseName = "actigraphy.sqlite"

// ErrMetadataMissing is returned when meta/basic holds no meta_* file.
var ErrMetadataMissing = errors.New("metadata file not found")

// Logical names reported by Paths.
const (
	KeySleepLog      = "sleeplog_file"
	KeyAllSleepTimes = "all_sleep_times"
	KeyDataCleaning  = "data_cleaning_file"
	KeyMetadata      = "metadata_file"
	KeyMS4           = "ms4_file"
	KeyIdentifier    = "identifier"
)

// Options tunes Manager construction.
type Options struct {
	// CreateLogDir creates <base>/logs when missing.
	CreateLogDir bool
	// RequireMetadata fails New when no metadata file exists.
	RequireMetadata bool
}

// Manager names every input and output file of one subject directory.
type Manager struct {
	BaseDir          string
	Database         string
	LogDir           string
	Identifier       string
	SleepLogFile     string
	DataCleaningFile string
	AllSleepTimes    string
	ReviewWorkbook   string
	MetadataFile     string
	MS4File          string
}

// New resolves the file layout of the subject directory baseDir. The subject
// identifier is the part of the directory name after its last underscore.
func New(baseDir string, opts Options) (*Manager, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return nil, errors.New("subject directory is required")
	}
	baseDir = filepath.Clean(baseDir)

	identifier := Identifier(baseDir)
	if identifier == "" {
		return nil, fmt.Errorf("subject directory %q: empty identifier", baseDir)
	}

	logDir := filepath.Join(baseDir, "logs")
	m := &Manager{
		BaseDir:          baseDir,
		Database:         filepath.Join(baseDir, DatabaseName),
		LogDir:           logDir,
		Identifier:       identifier,
		SleepLogFile:     filepath.Join(logDir, "sleeplog_"+identifier+".csv"),
		DataCleaningFile: filepath.Join(logDir, "data_cleaning_"+identifier+".csv"),
		AllSleepTimes:    filepath.Join(logDir, "multiple_sleep_"+identifier+".csv"),
		ReviewWorkbook:   filepath.Join(logDir, "review_"+identifier+".xlsx"),
		MS4File:          filepath.Join(baseDir, "meta", "ms4.out", identifier+".gt3x.json"),
	}

	metadata, err := findMetadata(filepath.Join(baseDir, "meta", "basic"))
	switch {
	case err == nil:
		m.MetadataFile = metadata
	case errors.Is(err, ErrMetadataMissing) && !opts.RequireMetadata:
	default:
		return nil, err
	}

	if opts.CreateLogDir {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	return m, nil
}

// Identifier returns the subject identifier encoded in a directory path.
func Identifier(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	if idx := strings.LastIndex(base, "_"); idx >= 0 {
		return base[idx+1:]
	}
	return base
}

// Paths maps logical artifact names to their paths.
func (m *Manager) Paths() map[string]string {
	return map[string]string{
		KeySleepLog:      m.SleepLogFile,
		KeyAllSleepTimes: m.AllSleepTimes,
		KeyDataCleaning:  m.DataCleaningFile,
		KeyMetadata:      m.MetadataFile,
		KeyMS4:           m.MS4File,
		KeyIdentifier:    m.Identifier,
	}
}

// DatabaseExists reports whether the subject's sqlite file is present.
func (m *Manager) DatabaseExists() bool {
	info, err := os.Stat(m.Database)
	return err == nil && !info.IsDir()
}

// findMetadata returns the lexically first meta_* file in dir.
func findMetadata(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "meta_*"))
	if err != nil {
		return "", fmt.Errorf("glob metadata: %w", err)
	}
	sort.Strings(matches)
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		return match, nil
	}
	return "", fmt.Errorf("%s: %w", dir, ErrMetadataMissing)
}
