package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"actigraphy/internal/store"
)

// MustOpenStore opens a sqlite store inside dir and registers cleanup.
func MustOpenStore(t testing.TB, dir string) *store.Store {
	t.Helper()

	st, err := store.Open(context.Background(), store.Options{
		Driver: store.DriverSQLite,
		Path:   filepath.Join(dir, "actigraphy.sqlite"),
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// MustCreateSubject writes payload and fails the test on error.
func MustCreateSubject(t testing.TB, st *store.Store, payload *store.NewSubject) *store.Subject {
	t.Helper()

	subject, err := st.CreateSubject(context.Background(), payload)
	if err != nil {
		t.Fatalf("store.CreateSubject: %v", err)
	}
	return subject
}
