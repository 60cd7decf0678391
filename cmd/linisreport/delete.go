package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TheGhostMoon/linisreport/internal/archive"
)

// NewDeleteCmd creates the delete command.
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <source>",
		Short: "Delete an archived snapshot",
		Long: `Delete recursively removes a snapshot directory from the archive root.

Live audit sources are never deleted; the command refuses anything outside
the archive root. Without --force the command only prints what it would
remove.

Examples:
  # Preview the deletion
  linisreport delete 4

  # Actually remove the snapshot
  linisreport delete 4 --force`,
		Args: cobra.ExactArgs(1),
		RunE: runDeleteCmd,
	}

	cmd.Flags().BoolP("force", "f", false, "Actually delete; without it the command is a dry run")

	return cmd
}

// runDeleteCmd executes the delete command.
func runDeleteCmd(cmd *cobra.Command, args []string) error {
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

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	if !force {
		fmt.Fprintf(cmd.OutOrStdout(), "would delete %s (%s); re-run with --force\n",
			src.RootPath, src.Kind)
		return nil
	}

	mgr := archive.New(cfg.ArchiveRoot,
		archive.WithLogger(logger),
		archive.WithInvalidate(scanner.Invalidate),
	)
	if err := mgr.Delete(src); err != nil {
		if errors.Is(err, archive.ErrDeleteFailed) {
			return err
		}
		return fmt.Errorf("%w: %v", archive.ErrDeleteFailed, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "snapshot deleted: %s\n", src.RootPath)
	return nil
}
