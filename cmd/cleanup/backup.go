package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soulinitiatives/cleanup/internal/config"
	"github.com/soulinitiatives/cleanup/internal/snapshot"
	"github.com/soulinitiatives/cleanup/internal/store"
	"github.com/soulinitiatives/cleanup/internal/worker"
)

var backupJSONOutput bool

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the local database and upload it when storage is configured",
		Long: "Writes a consistent copy of the database next to it. With snapshot storage configured " +
			"the copy is uploaded and a time-limited download URL is printed.",
		Args: cobra.NoArgs,
		RunE: runBackup,
	}
	cmd.Flags().BoolVar(&backupJSONOutput, "json", false, "Output in JSON format")
	return cmd
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	uploader, err := snapshot.NewUploader(cfg.SnapshotStorage)
	if err != nil {
		return err
	}

	backups := worker.NewBackupWorker(db, uploader, backupName, time.Duration(cfg.Worker.SnapshotInterval))
	path, err := backups.Backup(ctx)
	if err != nil {
		return err
	}

	result := map[string]string{"path": path}
	url, expires, err := uploader.PresignedURL(ctx, backupName)
	switch {
	case errors.Is(err, snapshot.ErrNotConfigured):
	case err != nil:
		return err
	default:
		result["url"] = url
		result["expires_at"] = expires.UTC().Format(time.RFC3339)
	}

	out := cmd.OutOrStdout()
	if backupJSONOutput {
		return printJSON(out, result)
	}
	fmt.Fprintf(out, "Snapshot: %s\n", path)
	if u, ok := result["url"]; ok {
		fmt.Fprintf(out, "Download: %s\n", u)
		fmt.Fprintf(out, "Expires:  %s\n", result["expires_at"])
	}
	return nil
}
