package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered audit sources",
		Long: `List scans the configured audit locations and prints every discovered
source, live locations first, newest first.

Sources missing one of the two expected files, or unreadable without
elevated privileges, are still listed but cannot be opened.

Examples:
  # List all known audit sources
  linisreport list

  # Machine-readable listing
  linisreport list --json`,
		Args: cobra.NoArgs,
		RunE: runListCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output the source list as JSON")

	return cmd
}

// runListCmd executes the list command.
func runListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Verbose)
	scanner := newScanner(cfg, logger)

	sources, err := scanner.Sources(cmd.Context())
	if err != nil {
		return err
	}

	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sources)
	}

	if len(sources) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no audit sources found")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), listHeader())
	for i, src := range sources {
		fmt.Fprintln(cmd.OutOrStdout(), describeSource(i, src))
	}
	return nil
}
