package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"actigraphy/internal/fileutil"
	"actigraphy/internal/files"
	"actigraphy/internal/logging"
	"actigraphy/internal/sleep"
)

// SubjectLoader supplies the committed snapshot of a subject's days.
type SubjectLoader interface {
	LoadSubjectDays(ctx context.Context, name string) ([]sleep.Day, error)
}

// Options selects optional artifacts.
type Options struct {
	ReviewWorkbook bool
}

// Exporter writes every artifact of a subject.
type Exporter struct {
	store  SubjectLoader
	opts   Options
	logger *slog.Logger
}

// NewExporter builds an Exporter reading from store.
func NewExporter(store SubjectLoader, opts Options, logger *slog.Logger) *Exporter {
	return &Exporter{
		store:  store,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "export"),
	}
}

// Result lists the files written by ExportSubject.
type Result struct {
	Days  int
	Files []string
}

// ExportSubject writes the sleep log, all-sleep-times and data-cleaning files
// (plus the review workbook when enabled) into the subject's log directory.
// Each file is replaced atomically; errors are returned as-is without retry.
func (e *Exporter) ExportSubject(ctx context.Context, fm *files.Manager) (*Result, error) {
	ctx = logging.WithStage(logging.WithSubject(ctx, fm.Identifier), "export")
	logger := logging.WithContext(ctx, e.logger)

	days, err := e.store.LoadSubjectDays(ctx, fm.Identifier)
	if err != nil {
		return nil, fmt.Errorf("load subject %s: %w", fm.Identifier, err)
	}
	if err := files.CheckWritable(fm.LogDir); err != nil {
		return nil, err
	}

	type artifact struct {
		path  string
		write func(io.Writer) error
	}
	artifacts := []artifact{
		{fm.SleepLogFile, func(w io.Writer) error { return WriteSleepLog(w, fm.Identifier, days) }},
		{fm.AllSleepTimes, func(w io.Writer) error { return WriteAllSleepTimes(w, days) }},
		{fm.DataCleaningFile, func(w io.Writer) error { return WriteDataCleaning(w, fm.Identifier, days) }},
	}
	if e.opts.ReviewWorkbook {
		artifacts = append(artifacts, artifact{fm.ReviewWorkbook, func(w io.Writer) error {
			return WriteReviewWorkbook(w, fm.Identifier, days)
		}})
	}

	result := &Result{Days: len(days)}
	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := fileutil.WriteAtomic(a.path, 0o644, a.write); err != nil {
			return result, fmt.Errorf("export %s: %w", a.path, err)
		}
		result.Files = append(result.Files, a.path)
		logger.Debug("artifact written", logging.String("path", a.path))
	}

	logger.Info("subject exported",
		logging.Int("days", len(days)),
		logging.Int("files", len(result.Files)),
	)
	return result, nil
}
