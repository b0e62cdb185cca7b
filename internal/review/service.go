package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"actigraphy/internal/config"
	"actigraphy/internal/export"
	"actigraphy/internal/files"
	"actigraphy/internal/logging"
	"actigraphy/internal/sleep"
	"actigraphy/internal/store"
)

// closestPointWindow bounds the search for the data point whose offset a new
// interval inherits.
const closestPointWindow = 24 * time.Hour

var (
	// ErrForeignSleepTime is returned when a sleep time id belongs to another
	// subject.
	ErrForeignSleepTime = errors.New("sleep time belongs to another subject")
	// ErrEstimateReadOnly is returned when an edit targets a toolchain estimate.
	ErrEstimateReadOnly = errors.New("toolchain estimates are read-only")
)

// Service applies operator edits to one subject at a time. Every mutation
// holds the subject lock and rewrites the exported artifacts before
// returning.
type Service struct {
	cfg    *config.Config
	clock  time.Duration
	logger *slog.Logger
}

// NewService builds a Service from cfg.
func NewService(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	clock, err := cfg.DefaultSleepClock()
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:    cfg,
		clock:  clock,
		logger: logging.NewComponentLogger(logger, "review"),
	}, nil
}

// session is one locked, open subject.
type session struct {
	fm      *files.Manager
	store   *store.Store
	subject *store.Subject
	logger  *slog.Logger
}

// withSubject locks dir, opens its store, runs fn and re-exports on success.
func (s *Service) withSubject(ctx context.Context, dir, action string, fn func(ctx context.Context, sess *session) error) error {
	fm, err := files.New(dir, files.Options{CreateLogDir: true})
	if err != nil {
		return err
	}
	ctx = logging.WithStage(logging.WithSubject(ctx, fm.Identifier), action)
	logger := logging.WithContext(ctx, s.logger)

	lock, err := files.LockSubject(fm.BaseDir)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	st, err := store.OpenFromConfig(ctx, s.cfg, fm.Database, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	subject, err := st.ReadSubject(ctx, fm.Identifier)
	if err != nil {
		return err
	}
	if err := fn(ctx, &session{fm: fm, store: st, subject: subject, logger: logger}); err != nil {
		return err
	}

	exporter := export.NewExporter(st, export.Options{ReviewWorkbook: s.cfg.Export.ReviewWorkbook}, s.logger)
	if _, err := exporter.ExportSubject(ctx, fm); err != nil {
		return err
	}
	logger.Info("subject updated")
	return nil
}

// SetDayFlags applies a partial flag update to the dayIndex-th day (0-based).
func (s *Service) SetDayFlags(ctx context.Context, dir string, dayIndex int, flags store.DayFlags) (*store.Day, error) {
	var day *store.Day
	err := s.withSubject(ctx, dir, "set-day-flags", func(ctx context.Context, sess *session) error {
		target, err := sess.store.DayByIndex(ctx, sess.subject.ID, dayIndex)
		if err != nil {
			return err
		}
		if err := sess.store.UpdateDayFlags(ctx, target.ID, flags); err != nil {
			return err
		}
		day, err = sess.store.GetDay(ctx, target.ID)
		return err
	})
	return day, err
}

// EditSleepTime replaces a manual interval with the zone-aware onset and
// wakeup instants.
func (s *Service) EditSleepTime(ctx context.Context, dir string, sleepTimeID int64, onset, wakeup time.Time) (*store.SleepTime, error) {
	var updated *store.SleepTime
	err := s.withSubject(ctx, dir, "edit-sleep-time", func(ctx context.Context, sess *session) error {
		if err := sess.ownSleepTime(ctx, sleepTimeID); err != nil {
			return err
		}
		interval := sleep.NewInterval(onset, wakeup)
		if interval.Inverted() {
			sess.logger.Warn("wakeup precedes onset",
				logging.String("onset", sleep.FormatTimestamp(onset)),
				logging.String("wakeup", sleep.FormatTimestamp(wakeup)),
			)
		}
		if err := sess.store.UpdateSleepTime(ctx, sleepTimeID, interval); err != nil {
			return err
		}
		var err error
		updated, err = sess.store.GetSleepTime(ctx, sleepTimeID)
		return err
	})
	return updated, err
}

// AddSleepTime appends a zero-length interval at the default sleep time of the
// dayIndex-th day. Its offset is taken from the closest data point.
func (s *Service) AddSleepTime(ctx context.Context, dir string, dayIndex int) (*store.SleepTime, error) {
	var added *store.SleepTime
	err := s.withSubject(ctx, dir, "add-sleep-time", func(ctx context.Context, sess *session) error {
		day, err := sess.store.DayByIndex(ctx, sess.subject.ID, dayIndex)
		if err != nil {
			return err
		}
		wall := day.Date.Add(s.clock)
		offset := 0
		point, err := sess.store.ClosestDataPoint(ctx, sess.subject.ID, wall, closestPointWindow)
		switch {
		case err == nil:
			offset = point.TimestampUTCOffset
		case errors.Is(err, store.ErrNotFound):
			sess.logger.Warn("no data point near default sleep time, assuming UTC")
		default:
			return err
		}
		instant := wall.Add(-time.Duration(offset) * time.Second)
		added, err = sess.store.AddSleepTime(ctx, day.ID, sleep.Interval{
			Onset:           instant,
			OnsetUTCOffset:  offset,
			Wakeup:          instant,
			WakeupUTCOffset: offset,
		})
		return err
	})
	return added, err
}

// RemoveSleepTime deletes a manual interval.
func (s *Service) RemoveSleepTime(ctx context.Context, dir string, sleepTimeID int64) error {
	return s.withSubject(ctx, dir, "remove-sleep-time", func(ctx context.Context, sess *session) error {
		if err := sess.ownSleepTime(ctx, sleepTimeID); err != nil {
			return err
		}
		return sess.store.DeleteSleepTime(ctx, sleepTimeID)
	})
}

// SetFinished records whether the operator is done with the subject.
func (s *Service) SetFinished(ctx context.Context, dir string, finished bool) error {
	return s.withSubject(ctx, dir, "finish", func(ctx context.Context, sess *session) error {
		return sess.store.SetFinished(ctx, sess.subject.ID, finished)
	})
}

// Export rewrites the artifacts without changing anything.
func (s *Service) Export(ctx context.Context, dir string) error {
	return s.withSubject(ctx, dir, "export", func(context.Context, *session) error { return nil })
}

func (sess *session) ownSleepTime(ctx context.Context, id int64) error {
	st, err := sess.store.GetSleepTime(ctx, id)
	if err != nil {
		return err
	}
	day, err := sess.store.GetDay(ctx, st.DayID)
	if err != nil {
		return err
	}
	if day.SubjectID != sess.subject.ID {
		return fmt.Errorf("sleep time %d: %w", id, ErrForeignSleepTime)
	}
	if st.Provenance != store.ProvenanceManual {
		return fmt.Errorf("sleep time %d: %w", id, ErrEstimateReadOnly)
	}
	return nil
}
