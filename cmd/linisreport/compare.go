package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/TheGhostMoon/linisreport/internal/config"
	"github.com/TheGhostMoon/linisreport/internal/history"
	"github.com/TheGhostMoon/linisreport/internal/loader"
	"github.com/TheGhostMoon/linisreport/internal/model"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [older] [newer]",
		Short: "Compare two audits of the same host",
		Long: `Compare shows which findings are new, which were resolved, and which
persist between two audits.

With two source arguments (index, path, or "latest") both are parsed and
compared directly. With no arguments the latest readable source is
compared against the most recent audit saved to history with
'linisreport show --save'.

Examples:
  # Compare a snapshot against the current live audit
  linisreport compare 3 latest

  # Compare the live audit against the last saved history entry
  linisreport compare

  # Compare against a specific history entry
  linisreport compare --with-audit-id 7

  # List saved history
  linisreport compare --list

  # JSON output
  linisreport compare 3 latest --json`,
		Args: cobra.MaximumNArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false, "List audits saved to history")
	cmd.Flags().Int64P("with-audit-id", "i", 0,
		"Compare the latest readable source with a specific history entry (use --list to see IDs)")
	cmd.Flags().BoolP("json", "j", false, "Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Verbose)

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if list {
		return listHistory(cmd, cfg)
	}

	auditID, err := cmd.Flags().GetInt64("with-audit-id")
	if err != nil {
		return err
	}

	var diff *model.AuditDiff
	switch {
	case len(args) == 2:
		diff, err = compareSources(cmd, cfg, logger, args[0], args[1])
	case len(args) == 1:
		return errors.New("compare needs either two sources or none (history mode)")
	default:
		diff, err = compareWithHistory(cmd, cfg, logger, auditID)
	}
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
		return enc.Encode(diff)
	}
	printDiff(cmd.OutOrStdout(), diff)
	return nil
}

// compareSources parses two sources concurrently and diffs them.
func compareSources(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, olderArg, newerArg string) (*model.AuditDiff, error) {
	scanner := newScanner(cfg, logger)

	older, err := resolveSource(cmd.Context(), scanner, olderArg)
	if err != nil {
		return nil, err
	}
	newer, err := resolveSource(cmd.Context(), scanner, newerArg)
	if err != nil {
		return nil, err
	}
	if older.Key() == newer.Key() {
		return nil, errors.New("cannot compare a source with itself")
	}

	// Correlation contributes nothing to a diff; fingerprints ignore
	// log positions.
	l := loader.New(loader.WithLogger(logger), loader.WithSkipCorrelation(true))
	reports, err := l.LoadAll(cmd.Context(), []model.AuditSource{older, newer}, cfg.BatchSize)
	if err != nil {
		return nil, err
	}
	if reports[0] == nil || reports[1] == nil {
		return nil, errors.New("both sources must be readable to compare")
	}

	return model.Diff(reports[0], reports[1]), nil
}

// compareWithHistory diffs the latest readable source against a saved
// history entry: the given audit id, or the most recent entry for the
// same host when id is zero.
func compareWithHistory(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, auditID int64) (*model.AuditDiff, error) {
	scanner := newScanner(cfg, logger)
	src, err := resolveSource(cmd.Context(), scanner, "latest")
	if err != nil {
		return nil, err
	}

	l := loader.New(loader.WithLogger(logger), loader.WithSkipCorrelation(true))
	current, err := l.Load(cmd.Context(), src)
	if err != nil {
		return nil, err
	}

	db, err := history.Open(cfg.HistoryDir, history.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	var record *history.AuditRecord
	if auditID > 0 {
		record, err = db.Audit(cmd.Context(), auditID)
	} else {
		record, err = db.LatestAudit(cmd.Context(), current.Hostname())
	}
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.New("no saved audit to compare against; use 'linisreport show --save' first")
	}

	saved, err := db.Findings(cmd.Context(), record.ID)
	if err != nil {
		return nil, err
	}

	return model.DiffFindings(saved, current.Findings()), nil
}

// printDiff renders a diff in plain text.
func printDiff(out io.Writer, diff *model.AuditDiff) {
	fmt.Fprintf(out, "new: %d, resolved: %d, persistent: %d\n\n",
		len(diff.New), len(diff.Resolved), len(diff.Persistent))

	printDiffSection(out, "NEW", diff.New)
	printDiffSection(out, "RESOLVED", diff.Resolved)
}

// printDiffSection prints one bucket of a diff.
func printDiffSection(out io.Writer, title string, findings []model.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(out, "%s (%d)\n", title, len(findings))
	for _, f := range findings {
		fmt.Fprintf(out, "  [%s] %s: %s\n", f.TestID, f.Kind, f.Description)
	}
	fmt.Fprintln(out)
}

// listHistory prints the saved audit history.
func listHistory(cmd *cobra.Command, cfg *config.Config) error {
	db, err := history.Open(cfg.HistoryDir, history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	records, err := db.Audits(cmd.Context(), "", 50)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no saved audits; use 'linisreport show --save'")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%4s  %-16s  %-19s  %5s  %4s  %4s  %s\n",
		"ID", "HOST", "OPENED", "INDEX", "WARN", "SUGG", "SOURCE")
	for _, rec := range records {
		index := "-"
		if rec.HardeningIndex >= 0 {
			index = strconv.Itoa(rec.HardeningIndex)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%4d  %-16s  %-19s  %5s  %4d  %4d  %s\n",
			rec.ID, rec.Hostname, rec.OpenedAt.Format("2006-01-02 15:04:05"),
			index, rec.WarningCount, rec.SuggestionCount, rec.SourceKey)
	}
	return nil
}
