// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/auth"
)

// BackupFilePrefix and BackupFileSuffix frame every scheduled snapshot file name.
const (
	BackupFilePrefix = "parts-shop-"
	BackupFileSuffix = ".json"
	backupTimeLayout = "20060102T150405Z"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// SnapshotWriter writes a full backup snapshot.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, w io.Writer) error
}

// Scheduler writes backup snapshots to a directory on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	backup SnapshotWriter
	dir    string
	keep   int
	logger *zap.Logger
}

// New creates a scheduler. The backup job is registered only when schedule is not empty.
func New(backup SnapshotWriter, dir, schedule string, keep int, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC), cron.WithParser(cronParser)),
		backup: backup,
		dir:    dir,
		keep:   keep,
		logger: logger.Named("scheduler"),
	}

	if schedule == "" {
		s.logger.Info("scheduled backups disabled")
		return s, nil
	}

	if _, err := s.cron.AddFunc(schedule, s.runBackup); err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	s.logger.Info("scheduled backups enabled", zap.String("schedule", schedule), zap.String("dir", dir))
	return s, nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runBackup() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("backup job panicked", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(auth.WithSession(context.Background(), auth.SystemSession), 5*time.Minute)
	defer cancel()

	path, err := s.BackupNow(ctx, time.Now())
	if err != nil {
		s.logger.Error("scheduled backup failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled backup written", zap.String("file", path))
}

// BackupNow writes a snapshot file named after now and prunes old snapshots.
// It returns the path of the new file.
func (s *Scheduler) BackupNow(ctx context.Context, now time.Time) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := BackupFilePrefix + now.UTC().Format(backupTimeLayout) + BackupFileSuffix
	path := filepath.Join(s.dir, name)

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.backup.WriteSnapshot(ctx, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move backup file: %w", err)
	}

	if err := s.prune(); err != nil {
		s.logger.Warn("failed to prune old backups", zap.Error(err))
	}
	return path, nil
}

// prune keeps the newest keep snapshot files.
func (s *Scheduler) prune() error {
	if s.keep < 1 {
		return nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), BackupFilePrefix) && strings.HasSuffix(e.Name(), BackupFileSuffix) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= s.keep {
		return nil
	}

	// The timestamp layout sorts lexically.
	sort.Strings(names)
	for _, name := range names[:len(names)-s.keep] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return err
		}
	}
	return nil
}
