// Package main provides the entry point for the linisreport CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linisreport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linisreport",
		Short: "Inspect and archive Lynis audit results",
		Long: `linisreport turns the artifacts of a Lynis run (lynis-report.dat and
lynis.log) into a cross-referenced audit report, and manages timestamped
snapshots of live audit data.

Live audit locations under /var/log are root-owned; run with elevated
privileges to open them, or snapshot them once and browse the archive as
a regular user.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .linisreport in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewSnapshotCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
