package ggir

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/maypok86/otter/v2"

	"actigraphy/internal/logging"
	"actigraphy/internal/record"
)

// fileKey identifies one version of a file on disk.
type fileKey struct {
	path    string
	modTime int64
	size    int64
}

// Loader reads toolchain exports, caching parsed results until the file
// changes.
type Loader struct {
	metadata *otter.Cache[fileKey, *MetaData]
	ms4      *otter.Cache[fileKey, *MS4]
	logger   *slog.Logger
}

// NewLoader builds a Loader holding at most entries parsed files per kind.
func NewLoader(entries int, logger *slog.Logger) *Loader {
	if entries <= 0 {
		entries = 1
	}
	return &Loader{
		metadata: otter.Must(&otter.Options[fileKey, *MetaData]{MaximumSize: entries}),
		ms4:      otter.Must(&otter.Options[fileKey, *MS4]{MaximumSize: entries}),
		logger:   logging.NewComponentLogger(logger, "ggir"),
	}
}

// MetaData loads the metadata export at path.
func (l *Loader) MetaData(path string) (*MetaData, error) {
	key, err := keyFor(path)
	if err != nil {
		return nil, err
	}
	if cached, ok := l.metadata.GetIfPresent(key); ok {
		l.logger.Debug("metadata cache hit", logging.String("path", path))
		return cached, nil
	}
	root, err := readNormalized(path)
	if err != nil {
		return nil, err
	}
	meta, err := ParseMetaData(root)
	if err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	l.metadata.Set(key, meta)
	l.logger.Debug("metadata loaded",
		logging.String("path", path),
		logging.Int("epochs", meta.MetaShort.Len()),
	)
	return meta, nil
}

// MS4 loads the night summary export at path.
func (l *Loader) MS4(path string) (*MS4, error) {
	key, err := keyFor(path)
	if err != nil {
		return nil, err
	}
	if cached, ok := l.ms4.GetIfPresent(key); ok {
		l.logger.Debug("ms4 cache hit", logging.String("path", path))
		return cached, nil
	}
	root, err := readNormalized(path)
	if err != nil {
		return nil, err
	}
	ms4, err := ParseMS4(root)
	if err != nil {
		return nil, fmt.Errorf("parse ms4 %s: %w", path, err)
	}
	l.ms4.Set(key, ms4)
	l.logger.Debug("ms4 loaded",
		logging.String("path", path),
		logging.Int("nights", ms4.NightSummary.Len()),
	)
	return ms4, nil
}

func keyFor(path string) (fileKey, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileKey{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fileKey{}, fmt.Errorf("%s is a directory", path)
	}
	return fileKey{path: path, modTime: info.ModTime().UnixNano(), size: info.Size()}, nil
}

func readNormalized(path string) (*record.Mapping, error) {
	raw, err := record.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	root, err := record.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", path, err)
	}
	return root, nil
}
