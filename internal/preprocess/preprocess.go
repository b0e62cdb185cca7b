package preprocess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"actigraphy/internal/config"
	"actigraphy/internal/files"
	"actigraphy/internal/ggir"
	"actigraphy/internal/logging"
	"actigraphy/internal/store"
)

// SubjectDirPattern matches the toolchain's per-subject output directories.
const SubjectDirPattern = "output_*"

// Options selects the subjects of one run.
type Options struct {
	// DataDir holds the subject directories. Empty uses paths.data_dir.
	DataDir string
	// Identifier restricts the run to one subject. It may be a directory name
	// under DataDir or the bare identifier of output_<identifier>.
	Identifier string
}

// Outcome is the result of one subject.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// SubjectResult records what happened to one subject directory.
type SubjectResult struct {
	Dir     string
	Subject string
	Outcome Outcome
	Err     error
}

// Summary aggregates a run.
type Summary struct {
	RunID     string
	Processed int
	Skipped   int
	Failed    int
	Subjects  []SubjectResult
}

func (s *Summary) add(result SubjectResult) {
	switch result.Outcome {
	case OutcomeProcessed:
		s.Processed++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
	s.Subjects = append(s.Subjects, result)
}

// Runner ingests toolchain output into subject stores.
type Runner struct {
	cfg      *config.Config
	settings ggir.Settings
	loader   *ggir.Loader
	logger   *slog.Logger
}

// NewRunner builds a Runner from cfg.
func NewRunner(cfg *config.Config, logger *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	clock, err := cfg.DefaultSleepClock()
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:      cfg,
		settings: ggir.Settings{DefaultSleepTime: clock},
		loader:   ggir.NewLoader(cfg.GGIR.CacheEntries, logger),
		logger:   logging.NewComponentLogger(logger, "preprocess"),
	}, nil
}

// Run ingests every selected subject directory. Subjects already present in
// their store are skipped; the first ingestion wins. A failing subject does
// not stop the run.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	ctx = logging.WithStage(logging.WithRunID(ctx, summary.RunID), "preprocess")
	logger := logging.WithContext(ctx, r.logger)

	dataDir := strings.TrimSpace(opts.DataDir)
	if dataDir == "" {
		dataDir = r.cfg.Paths.DataDir
	}
	dirs, err := SubjectDirs(dataDir, opts.Identifier)
	if err != nil {
		return summary, err
	}
	if len(dirs) == 0 {
		logger.Warn("no subjects found", logging.String("data_dir", dataDir))
		return summary, nil
	}
	logger.Info("preprocess started",
		logging.String("data_dir", dataDir),
		logging.Int("candidates", len(dirs)),
	)

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		info, statErr := os.Stat(dir)
		if statErr != nil || !info.IsDir() {
			logger.Warn("not a directory, skipping", logging.String("path", dir))
			continue
		}
		result := r.Ingest(ctx, dir)
		summary.add(result)
	}

	logger.Info("preprocess finished",
		logging.Int("processed", summary.Processed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
	)
	return summary, nil
}

// Ingest creates the store record of one subject directory unless it already
// exists.
func (r *Runner) Ingest(ctx context.Context, dir string) SubjectResult {
	result := SubjectResult{Dir: dir, Subject: files.Identifier(dir)}
	ctx = logging.WithSubject(ctx, result.Subject)
	logger := logging.WithContext(ctx, r.logger)

	outcome, err := r.ingest(ctx, dir, logger)
	result.Outcome = outcome
	result.Err = err
	switch outcome {
	case OutcomeFailed:
		logger.Error("subject failed", logging.Error(err))
	case OutcomeSkipped:
		logger.Info("subject already processed, skipping")
	default:
		logger.Info("subject processed")
	}
	return result
}

func (r *Runner) ingest(ctx context.Context, dir string, logger *slog.Logger) (Outcome, error) {
	fm, err := files.New(dir, files.Options{CreateLogDir: true})
	if err != nil {
		return OutcomeFailed, err
	}
	lock, err := files.LockSubject(fm.BaseDir)
	if err != nil {
		return OutcomeFailed, err
	}
	defer lock.Unlock()

	st, err := store.OpenFromConfig(ctx, r.cfg, fm.Database, logger)
	if err != nil {
		return OutcomeFailed, err
	}
	defer st.Close()

	if _, err := st.ReadSubject(ctx, fm.Identifier); err == nil {
		return OutcomeSkipped, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return OutcomeFailed, err
	}

	if fm.MetadataFile == "" {
		return OutcomeFailed, fmt.Errorf("%s: %w", filepath.Join(fm.BaseDir, "meta", "basic"), files.ErrMetadataMissing)
	}
	meta, err := r.loader.MetaData(fm.MetadataFile)
	if err != nil {
		return OutcomeFailed, err
	}
	ms4, err := r.loader.MS4(fm.MS4File)
	if err != nil {
		return OutcomeFailed, err
	}
	payload, err := ggir.BuildSubject(fm.Identifier, meta, ms4, r.settings)
	if err != nil {
		return OutcomeFailed, err
	}

	logger.Debug("creating subject",
		logging.Int("days", len(payload.Days)),
		logging.Int("data_points", len(payload.DataPoints)),
	)
	if _, err := st.CreateSubject(ctx, payload); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeProcessed, nil
}

// SubjectDirs lists the candidate subject directories under dataDir. With an
// identifier only that subject is returned, resolved first as a directory
// name and then as output_<identifier>.
func SubjectDirs(dataDir, identifier string) ([]string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier != "" {
		direct := filepath.Join(dataDir, identifier)
		if _, err := os.Stat(direct); err == nil {
			return []string{direct}, nil
		}
		prefixed := filepath.Join(dataDir, "output_"+identifier)
		if _, err := os.Stat(prefixed); err == nil {
			return []string{prefixed}, nil
		}
		return []string{direct}, nil
	}

	matches, err := filepath.Glob(filepath.Join(dataDir, SubjectDirPattern))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dataDir, err)
	}
	sort.Strings(matches)
	return matches, nil
}
