package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/soulinitiatives/cleanup/internal/config"
	"github.com/soulinitiatives/cleanup/pkg/cleanup"
)

var (
	clientURLOverride    string
	clientAPIKeyOverride string
	jsonOutput           bool
)

// addClientFlags registers the backend connection flags on cmd and its
// subcommands.
func addClientFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&clientURLOverride, "url", "",
		"Backend base URL (overrides config and CLEANUP_URL)")
	cmd.PersistentFlags().StringVar(&clientAPIKeyOverride, "api-key", "",
		"Backend API key (overrides CLEANUP_CLIENT_API_KEY)")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output in JSON format")
}

// resolveClient builds a backend client from config with flag overrides.
// The loaded config is returned for the analytics and offset settings.
func resolveClient() (*cleanup.Client, *config.Config, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, nil, err
	}
	if clientURLOverride != "" {
		cfg.Client.BaseURL = clientURLOverride
	}
	if clientAPIKeyOverride != "" {
		cfg.Client.APIKey = clientAPIKeyOverride
	}
	client, err := cleanup.NewClient(cleanup.ClientConfig{
		BaseURL: cfg.Client.BaseURL,
		APIKey:  cfg.Client.APIKey,
		Timeout: time.Duration(cfg.Client.Timeout),
	})
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// commandLogger keeps client warnings on stderr so stdout stays parseable.
func commandLogger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
