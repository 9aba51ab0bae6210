// Package testutil provides shared helpers for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/amestudio/agencydesk/internal/model"
	"github.com/amestudio/agencydesk/internal/store"
)

// NewTestStore creates a SQLiteStore on a per-test temporary file with
// all migrations applied. It automatically closes the store when the
// test completes. A file is used instead of :memory: because every
// pooled connection to a :memory: database sees its own empty schema.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "agencydesk.db"))
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// MustCreateTask inserts a task with the given fields, failing the test
// on error.
func MustCreateTask(t *testing.T, s *store.SQLiteStore, task model.Task) model.Task {
	t.Helper()

	created, err := s.CreateTask(context.Background(), task)
	if err != nil {
		t.Fatalf("creating task %q: %v", task.Name, err)
	}
	return *created
}

// MustCreateClient inserts a client, failing the test on error.
func MustCreateClient(t *testing.T, s *store.SQLiteStore, client model.Client) model.Client {
	t.Helper()

	created, err := s.CreateClient(context.Background(), client)
	if err != nil {
		t.Fatalf("creating client %q: %v", client.Name, err)
	}
	return *created
}

// DueIn returns a due date the given number of hours from now,
// truncated to the second so it round-trips through SQLite cleanly.
func DueIn(hours int) time.Time {
	return time.Now().Add(time.Duration(hours) * time.Hour).UTC().Truncate(time.Second)
}
