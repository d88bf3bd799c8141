package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soulinitiatives/cleanup/pkg/cleanup"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage collection sessions",
	}
	addClientFlags(cmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Create a session and print its id",
		Args:  cobra.NoArgs,
		RunE:  runSessionNew,
	})
	return cmd
}

func runSessionNew(cmd *cobra.Command, args []string) error {
	client, _, err := resolveClient()
	if err != nil {
		return err
	}

	sessions := cleanup.NewSessionManager(cleanup.BackendSessionCreator{Backend: client})
	id, err := sessions.EnsureSession(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]string{"id": id})
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
