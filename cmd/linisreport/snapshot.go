package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TheGhostMoon/linisreport/internal/archive"
)

// NewSnapshotCmd creates the snapshot command.
func NewSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot <source>",
		Short: "Archive a live audit source",
		Long: `Snapshot copies both files of a live audit source byte for byte into a
new timestamped directory under the archive root, then verifies the copy.

Only live sources can be snapshotted; a snapshot of a snapshot is refused.
If the timestamped destination already exists (two snapshots within one
second), the operation fails and can simply be retried.

Examples:
  # Archive the current system audit
  sudo linisreport snapshot latest

  # Archive the second source from the list
  linisreport snapshot 2`,
		Args: cobra.ExactArgs(1),
		RunE: runSnapshotCmd,
	}

	return cmd
}

// runSnapshotCmd executes the snapshot command.
func runSnapshotCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Verbose)
	scanner := newScanner(cfg, logger)

	src, err := resolveSource(cmd.Context(), scanner, args[0])
	if err != nil {
		return err
	}

	mgr := archive.New(cfg.ArchiveRoot,
		archive.WithLogger(logger),
		archive.WithInvalidate(scanner.Invalidate),
	)
	snap, err := mgr.Snapshot(src)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "snapshot created: %s\n", snap.RootPath)
	return nil
}
