package review_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"actigraphy/internal/config"
	"actigraphy/internal/files"
	"actigraphy/internal/preprocess"
	"actigraphy/internal/review"
	"actigraphy/internal/sleep"
	"actigraphy/internal/store"
	"actigraphy/internal/testsupport"
)

var cest = time.FixedZone("CEST", 2*60*60)

// ingested returns a config and the directory of an ingested three-day subject.
func ingested(t *testing.T, opts ...testsupport.ConfigOption) (*config.Config, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	dir := testsupport.WriteSubjectDir(t, cfg.Paths.DataDir, "SUBJ01", testsupport.GGIROutput{
		Start:  time.Date(2024, time.May, 1, 12, 0, 0, 0, cest),
		Epochs: 48,
		Nights: []testsupport.Night{
			{CalendarDate: "1/5/2024", Onset: "23:00:00", Wakeup: "07:00:00"},
			{CalendarDate: "2/5/2024", Onset: "01:30:00", Wakeup: "09:00:00"},
		},
	})
	runner, err := preprocess.NewRunner(cfg, nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	summary, err := runner.Run(context.Background(), preprocess.Options{})
	if err != nil || summary.Processed != 1 {
		t.Fatalf("preprocess: %+v, %v", summary, err)
	}
	return cfg, dir
}

func newService(t *testing.T, cfg *config.Config) *review.Service {
	t.Helper()
	svc, err := review.NewService(cfg, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func managerFor(t *testing.T, dir string) *files.Manager {
	t.Helper()
	fm, err := files.New(dir, files.Options{})
	if err != nil {
		t.Fatalf("files.New: %v", err)
	}
	return fm
}

func TestSetDayFlagsRewritesDataCleaning(t *testing.T) {
	cfg, dir := ingested(t)
	svc := newService(t, cfg)
	missing := true

	day, err := svc.SetDayFlags(context.Background(), dir, 1, store.DayFlags{IsMissingSleep: &missing})
	if err != nil {
		t.Fatalf("SetDayFlags: %v", err)
	}
	if !day.IsMissingSleep || day.IsReviewed || day.IsMultipleSleep {
		t.Fatalf("unexpected flags %+v", day)
	}

	fm := managerFor(t, dir)
	if got := readFile(t, fm.DataCleaningFile); !strings.HasSuffix(got, "SUBJ01,,,2\r\n") {
		t.Fatalf("data cleaning = %q", got)
	}
	if _, err := os.Stat(fm.SleepLogFile); err != nil {
		t.Fatalf("sleep log not written: %v", err)
	}
	if _, err := os.Stat(fm.ReviewWorkbook); !os.IsNotExist(err) {
		t.Fatalf("review workbook should be disabled by default, stat err = %v", err)
	}
}

func TestSetDayFlagsUnknownDay(t *testing.T) {
	cfg, dir := ingested(t)
	_, err := newService(t, cfg).SetDayFlags(context.Background(), dir, 7, store.DayFlags{})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEditSleepTimeStoresNaiveUTC(t *testing.T) {
	cfg, dir := ingested(t, testsupport.WithReviewWorkbook(true))
	svc := newService(t, cfg)
	ctx := context.Background()

	days, err := svc.Days(ctx, dir)
	if err != nil {
		t.Fatalf("Days: %v", err)
	}
	if len(days) != 3 || len(days[0].SleepTimes) != 1 || len(days[0].Estimates) != 1 {
		t.Fatalf("unexpected days %+v", days)
	}

	onset := time.Date(2024, time.May, 1, 22, 15, 0, 0, cest)
	wakeup := time.Date(2024, time.May, 2, 6, 45, 0, 0, cest)
	updated, err := svc.EditSleepTime(ctx, dir, days[0].SleepTimes[0].ID, onset, wakeup)
	if err != nil {
		t.Fatalf("EditSleepTime: %v", err)
	}
	if !updated.Onset.Equal(time.Date(2024, time.May, 1, 20, 15, 0, 0, time.UTC)) || updated.OnsetUTCOffset != 7200 {
		t.Fatalf("unexpected stored onset %+v", updated.Interval)
	}

	fm := managerFor(t, dir)
	if got := readFile(t, fm.SleepLogFile); !strings.Contains(got, "SUBJ01,2024-05-01 22:15:00+02:00,2024-05-02 06:45:00+02:00,") {
		t.Fatalf("sleep log = %q", got)
	}
	if _, err := os.Stat(fm.ReviewWorkbook); err != nil {
		t.Fatalf("review workbook missing: %v", err)
	}

	if _, err := svc.EditSleepTime(ctx, dir, days[0].Estimates[0].ID, onset, wakeup); !errors.Is(err, review.ErrEstimateReadOnly) {
		t.Fatalf("expected ErrEstimateReadOnly, got %v", err)
	}
}

func TestAddAndRemoveSleepTime(t *testing.T) {
	cfg, dir := ingested(t)
	svc := newService(t, cfg)
	ctx := context.Background()

	added, err := svc.AddSleepTime(ctx, dir, 2)
	if err != nil {
		t.Fatalf("AddSleepTime: %v", err)
	}
	if got := sleep.FormatTimestamp(added.OnsetWithTZ()); got != "2024-05-03 12:00:00+02:00" {
		t.Fatalf("added onset = %s", got)
	}
	if added.Duration() != 0 {
		t.Fatalf("added interval should be empty, got %s", added.Duration())
	}

	days, err := svc.Days(ctx, dir)
	if err != nil {
		t.Fatalf("Days: %v", err)
	}
	if len(days[2].SleepTimes) != 2 {
		t.Fatalf("expected 2 intervals on day 3, got %d", len(days[2].SleepTimes))
	}

	if err := svc.RemoveSleepTime(ctx, dir, added.ID); err != nil {
		t.Fatalf("RemoveSleepTime: %v", err)
	}
	days, err = svc.Days(ctx, dir)
	if err != nil {
		t.Fatalf("Days: %v", err)
	}
	if len(days[2].SleepTimes) != 1 {
		t.Fatalf("expected 1 interval after removal, got %d", len(days[2].SleepTimes))
	}
	if err := svc.RemoveSleepTime(ctx, dir, added.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second removal, got %v", err)
	}
}

func TestSetFinishedAndSubjectView(t *testing.T) {
	cfg, dir := ingested(t)
	svc := newService(t, cfg)
	ctx := context.Background()

	if err := svc.SetFinished(ctx, dir, true); err != nil {
		t.Fatalf("SetFinished: %v", err)
	}
	view, err := svc.Subject(ctx, dir)
	if err != nil {
		t.Fatalf("Subject: %v", err)
	}
	if !view.Ingested || !view.Finished || view.Days != 3 || view.Name != "SUBJ01" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestSubjectViewOfUningestedDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.WriteSubjectDir(t, cfg.Paths.DataDir, "SUBJ05", testsupport.GGIROutput{
		Start:  time.Date(2024, time.May, 1, 12, 0, 0, 0, cest),
		Epochs: 24,
	})
	view, err := newService(t, cfg).Subject(context.Background(), dir)
	if err != nil {
		t.Fatalf("Subject: %v", err)
	}
	if view.Ingested || view.Name != "SUBJ05" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestDaysOfUningestedDirLeavesNoDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.WriteSubjectDir(t, cfg.Paths.DataDir, "X1", testsupport.GGIROutput{
		Start:  time.Date(2024, time.May, 1, 12, 0, 0, 0, cest),
		Epochs: 24,
	})
	if _, err := newService(t, cfg).Days(context.Background(), dir); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if managerFor(t, dir).DatabaseExists() {
		t.Fatal("Days created a database in an uningested directory")
	}
}

func TestMutationsRespectSubjectLock(t *testing.T) {
	cfg, dir := ingested(t)
	lock, err := files.LockSubject(dir)
	if err != nil {
		t.Fatalf("LockSubject: %v", err)
	}
	defer lock.Unlock()

	if err := newService(t, cfg).SetFinished(context.Background(), dir, true); !errors.Is(err, files.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}
