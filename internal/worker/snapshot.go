package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soulinitiatives/cleanup/internal/snapshot"
)

// SnapshotStore defines the store operations needed by the backup worker.
type SnapshotStore interface {
	GenerateSnapshot(ctx context.Context) error
	GetSnapshotPath(ctx context.Context) (string, error)
}

// BackupWorker snapshots the cleanup database and ships each snapshot to
// the configured uploader.
type BackupWorker struct {
	store    SnapshotStore
	uploader snapshot.Uploader
	name     string
	interval time.Duration
}

// NewBackupWorker creates a worker. A nil uploader keeps backups local.
func NewBackupWorker(store SnapshotStore, uploader snapshot.Uploader, name string, interval time.Duration) *BackupWorker {
	if uploader == nil {
		uploader = &snapshot.NoopUploader{}
	}
	return &BackupWorker{
		store:    store,
		uploader: uploader,
		name:     name,
		interval: interval,
	}
}

// Run starts the worker loop. Backs up immediately on start, then on each
// interval, until ctx is cancelled.
func (w *BackupWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "backup",
		"action", "worker_started",
		"interval", w.interval.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "backup",
				"action", "worker_stopped",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *BackupWorker) runOnce(ctx context.Context) {
	if _, err := w.Backup(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("backup failed",
			"component", "worker",
			"worker", "backup",
			"action", "backup_failed",
			"error", err,
		)
	}
}

// Backup generates a snapshot and uploads it. It returns the local
// snapshot path. An upload failure is returned but the local snapshot
// remains valid.
func (w *BackupWorker) Backup(ctx context.Context) (string, error) {
	start := time.Now()
	slog.Info("snapshot generation started",
		"component", "worker",
		"action", "snapshot_start",
	)

	if err := w.store.GenerateSnapshot(ctx); err != nil {
		return "", fmt.Errorf("generate snapshot: %w", err)
	}

	path, err := w.store.GetSnapshotPath(ctx)
	if err != nil {
		return "", fmt.Errorf("locate snapshot: %w", err)
	}

	if err := w.uploader.Upload(ctx, w.name, path); err != nil {
		return path, fmt.Errorf("upload snapshot: %w", err)
	}

	slog.Info("backup completed",
		"component", "worker",
		"action", "backup_complete",
		"path", path,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return path, nil
}
