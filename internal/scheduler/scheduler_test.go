package scheduler_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/scheduler"
)

type fakeWriter struct {
	err error
}

func (f fakeWriter) WriteSnapshot(_ context.Context, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, `{"products":[],"transactions":[]}`)
	return err
}

func backupFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// TestScheduler_BackupNow covers snapshot files and retention.
//
// WHY: Scheduled backups run unattended. A failed write must not leave partial files and
// retention must never delete the newest snapshots.
func TestScheduler_BackupNow(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)

	t.Run("writes a snapshot file", func(t *testing.T) {
		dir := t.TempDir()
		s, err := scheduler.New(fakeWriter{}, dir, "", 3, nil)
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}

		path, err := s.BackupNow(ctx, start)
		if err != nil {
			t.Fatalf("BackupNow() error: %v", err)
		}
		if filepath.Base(path) != "parts-shop-20240601T030000Z.json" {
			t.Errorf("BackupNow() path = %s", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() error: %v", err)
		}
		if !strings.Contains(string(data), `"products"`) {
			t.Errorf("unexpected snapshot content: %s", data)
		}
	})

	t.Run("keeps only the newest files", func(t *testing.T) {
		dir := t.TempDir()
		s, err := scheduler.New(fakeWriter{}, dir, "", 3, nil)
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		for i := 0; i < 5; i++ {
			if _, err := s.BackupNow(ctx, start.Add(time.Duration(i)*time.Hour)); err != nil {
				t.Fatalf("BackupNow() error: %v", err)
			}
		}

		names := backupFiles(t, dir)
		if len(names) != 3 {
			t.Fatalf("got %d files, want 3: %v", len(names), names)
		}
		if names[0] != "parts-shop-20240601T050000Z.json" {
			t.Errorf("oldest kept file = %s, want the 05:00 snapshot", names[0])
		}
	})

	t.Run("failed write leaves no file", func(t *testing.T) {
		dir := t.TempDir()
		s, err := scheduler.New(fakeWriter{err: errors.New("db down")}, dir, "", 3, nil)
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		if _, err := s.BackupNow(ctx, start); err == nil {
			t.Fatal("BackupNow() expected error")
		}
		if names := backupFiles(t, dir); len(names) != 0 {
			t.Errorf("expected empty directory, got %v", names)
		}
	})
}

func TestScheduler_New(t *testing.T) {
	if _, err := scheduler.New(fakeWriter{}, t.TempDir(), "not a schedule", 3, nil); err == nil {
		t.Error("New() expected error for invalid schedule")
	}

	s, err := scheduler.New(fakeWriter{}, t.TempDir(), "@daily", 3, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	s.Start()
	s.Stop()
}
