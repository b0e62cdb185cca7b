package review

import (
	"context"
	"errors"
	"fmt"

	"actigraphy/internal/files"
	"actigraphy/internal/store"
)

// DayView is one day with its persisted intervals, as shown to the operator.
type DayView struct {
	Index      int
	Day        *store.Day
	SleepTimes []*store.SleepTime
	Estimates  []*store.SleepTime
}

// SubjectView summarizes one subject directory.
type SubjectView struct {
	Dir       string
	Name      string
	Ingested  bool
	Finished  bool
	Days      int
	Reviewed  int
	Excluded  int
	UpdatedAt string
}

// Days lists the subject's days in date order. It reads without taking the
// subject lock and never creates a database.
func (s *Service) Days(ctx context.Context, dir string) ([]DayView, error) {
	fm, err := files.New(dir, files.Options{})
	if err != nil {
		return nil, err
	}
	if !s.hasDatabase(fm) {
		return nil, fmt.Errorf("subject %s: %w", fm.Identifier, store.ErrNotFound)
	}
	st, err := store.OpenFromConfig(ctx, s.cfg, fm.Database, s.logger)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	subject, err := st.ReadSubject(ctx, fm.Identifier)
	if err != nil {
		return nil, err
	}
	days, err := st.ListDays(ctx, subject.ID)
	if err != nil {
		return nil, err
	}
	views := make([]DayView, 0, len(days))
	for i, day := range days {
		manual, err := st.ListSleepTimes(ctx, day.ID)
		if err != nil {
			return nil, err
		}
		estimates, err := st.ListGGIRSleepTimes(ctx, day.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, DayView{Index: i, Day: day, SleepTimes: manual, Estimates: estimates})
	}
	return views, nil
}

// Subject summarizes dir. A directory without an ingested subject is reported
// with Ingested false rather than as an error.
func (s *Service) Subject(ctx context.Context, dir string) (*SubjectView, error) {
	fm, err := files.New(dir, files.Options{})
	if err != nil {
		return nil, err
	}
	view := &SubjectView{Dir: fm.BaseDir, Name: fm.Identifier}
	if !s.hasDatabase(fm) {
		return view, nil
	}

	st, err := store.OpenFromConfig(ctx, s.cfg, fm.Database, s.logger)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	days, err := st.LoadSubjectDays(ctx, fm.Identifier)
	if errors.Is(err, store.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, fmt.Errorf("subject %s: %w", fm.Identifier, err)
	}
	subject, err := st.ReadSubject(ctx, fm.Identifier)
	if err != nil {
		return nil, err
	}

	view.Ingested = true
	view.Finished = subject.IsFinished
	view.Days = len(days)
	view.UpdatedAt = subject.UpdatedAt.Format("2006-01-02 15:04")
	for _, day := range days {
		if day.IsReviewed {
			view.Reviewed++
		}
		if day.Excluded() {
			view.Excluded++
		}
	}
	return view, nil
}

// hasDatabase reports whether the subject's store can be opened without
// creating it. A postgres store always exists.
func (s *Service) hasDatabase(fm *files.Manager) bool {
	return s.cfg.Database.Driver == store.DriverPostgres || fm.DatabaseExists()
}
