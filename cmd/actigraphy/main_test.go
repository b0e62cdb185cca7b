package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"actigraphy/internal/testsupport"
)

type cliTestEnv struct {
	dataDir    string
	subjectDir string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("ACTIGRAPHY_DATA_DIR", "")
	t.Setenv("ACTIGRAPHY_LOG_LEVEL", "")

	dataDir := filepath.Join(base, "data")
	subjectDir := testsupport.WriteSubjectDir(t, dataDir, "SUBJ01", testsupport.GGIROutput{
		Start:  time.Date(2024, time.May, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60)),
		Epochs: 48,
		Nights: []testsupport.Night{
			{CalendarDate: "1/5/2024", Onset: "23:00:00", Wakeup: "07:00:00"},
			{CalendarDate: "2/5/2024", Onset: "01:30:00", Wakeup: "09:00:00"},
		},
	})

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf("[paths]\ndata_dir = %q\nlog_dir = %q\n\n[logging]\nlevel = \"error\"\n",
		dataDir, filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{dataDir: dataDir, subjectDir: subjectDir, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestPreprocessThenReview(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"preprocess"}, env.configPath)
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	requireContains(t, out, "SUBJ01:")
	requireContains(t, out, "[OK] ingested")
	requireContains(t, out, "Processed 1, skipped 0, failed 0")

	out, _, err = runCLI(t, []string{"preprocess"}, env.configPath)
	if err != nil {
		t.Fatalf("second preprocess: %v", err)
	}
	requireContains(t, out, "[SKIP] already processed")

	out, _, err = runCLI(t, []string{"days", env.subjectDir}, env.configPath)
	if err != nil {
		t.Fatalf("days: %v", err)
	}
	requireContains(t, out, "2024-05-03")
	requireContains(t, out, "2024-05-01 23:00:00+02:00")

	out, _, err = runCLI(t, []string{"day", "set", env.subjectDir, "2", "--missing-sleep", "--reviewed"}, env.configPath)
	if err != nil {
		t.Fatalf("day set: %v", err)
	}
	requireContains(t, out, "Day 2 (2024-05-02): missing=yes multiple=no reviewed=yes")

	cleaning, err := os.ReadFile(filepath.Join(env.subjectDir, "logs", "data_cleaning_SUBJ01.csv"))
	if err != nil {
		t.Fatalf("read data cleaning: %v", err)
	}
	requireContains(t, string(cleaning), "SUBJ01,,,2\r\n")

	out, _, err = runCLI(t, []string{"sleep", "add", env.subjectDir, "3"}, env.configPath)
	if err != nil {
		t.Fatalf("sleep add: %v", err)
	}
	requireContains(t, out, "2024-05-03 12:00:00+02:00")

	out, _, err = runCLI(t, []string{"sleep", "edit", env.subjectDir, "1", "2024-05-01 22:30:00+02:00", "2024-05-02T06:30:00+02:00"}, env.configPath)
	if err != nil {
		t.Fatalf("sleep edit: %v", err)
	}
	requireContains(t, out, "Updated sleep time #1: 2024-05-01 22:30:00+02:00 → 2024-05-02 06:30:00+02:00 (8h0m0s)")

	sleepLog, err := os.ReadFile(filepath.Join(env.subjectDir, "logs", "sleeplog_SUBJ01.csv"))
	if err != nil {
		t.Fatalf("read sleep log: %v", err)
	}
	requireContains(t, string(sleepLog), "SUBJ01,2024-05-01 22:30:00+02:00,2024-05-02 06:30:00+02:00,")

	if _, _, err := runCLI(t, []string{"finish", env.subjectDir}, env.configPath); err != nil {
		t.Fatalf("finish: %v", err)
	}
	out, _, err = runCLI(t, []string{"subjects", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("subjects: %v", err)
	}
	var views []struct {
		Name     string
		Finished bool
		Days     int
		Reviewed int
	}
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode subjects json: %v\n%s", err, out)
	}
	if len(views) != 1 || !views[0].Finished || views[0].Days != 3 || views[0].Reviewed != 1 {
		t.Fatalf("unexpected subjects %+v", views)
	}
}

func TestExportCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"preprocess"}, env.configPath); err != nil {
		t.Fatalf("preprocess: %v", err)
	}
	out, _, err := runCLI(t, []string{"export", env.subjectDir}, env.configPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "sleeplog_SUBJ01.csv")
	requireContains(t, out, "multiple_sleep_SUBJ01.csv")
	if _, err := os.Stat(filepath.Join(env.subjectDir, "logs", "multiple_sleep_SUBJ01.csv")); err != nil {
		t.Fatalf("all sleep times missing: %v", err)
	}
}

func TestSubjectsTableListsUningested(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"subjects", env.dataDir}, env.configPath)
	if err != nil {
		t.Fatalf("subjects: %v", err)
	}
	requireContains(t, out, "SUBJ01")
	requireContains(t, out, "Ingested")
}

func TestCommandArgumentErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	cases := [][]string{
		{"day", "set", env.subjectDir, "0"},
		{"sleep", "edit", env.subjectDir, "x", "2024-05-01 22:30:00+02:00", "2024-05-02 06:30:00+02:00"},
		{"sleep", "edit", env.subjectDir, "1", "2024-05-01 22:30", "2024-05-02 06:30:00+02:00"},
	}
	for _, args := range cases {
		if _, _, err := runCLI(t, args, env.configPath); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Database driver: sqlite")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
}

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("SUBJ01", statusError, "boom", false)
	if plain != "  SUBJ01:          [ERROR] boom" {
		t.Fatalf("unexpected plain status %q", plain)
	}
	colored := renderStatusLine("SUBJ01", statusOK, "", true)
	if !strings.HasPrefix(colored, "\x1b[32m") || !strings.Contains(colored, "[OK]") {
		t.Fatalf("expected green status, got %q", colored)
	}
}
