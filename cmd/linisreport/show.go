package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TheGhostMoon/linisreport/internal/config"
	"github.com/TheGhostMoon/linisreport/internal/history"
	"github.com/TheGhostMoon/linisreport/internal/loader"
	"github.com/TheGhostMoon/linisreport/internal/model"
	"github.com/TheGhostMoon/linisreport/internal/report"
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <source>",
		Short: "Open an audit source and print its report",
		Long: `Show parses an audit source's report file, correlates findings with
their positions in the run log, and prints the merged report.

The source argument is "latest", a 1-based index from 'linisreport list',
or a directory path.

Examples:
  # Show the most recent readable audit
  linisreport show latest

  # Show the third source from the list, with solutions and evidence
  linisreport show 3 --long

  # JSON for tool integration
  linisreport show latest --json

  # Markdown written to a file
  linisreport show latest --markdown -o audit.md

  # Skip run-log correlation on a huge log
  linisreport show latest --no-correlate

  # Record this audit in history for later 'linisreport compare'
  linisreport show latest --save`,
		Args: cobra.ExactArgs(1),
		RunE: runShowCmd,
	}

	// Output format flags
	cmd.Flags().BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("long", "l", false, "Include solutions, evidence, and parse notices in text output")

	// Correlation flags
	cmd.Flags().Bool("no-correlate", false, "Skip run-log correlation entirely")
	cmd.Flags().DurationP("log-timeout", "t", config.DefaultLogTimeout,
		"Maximum time to spend correlating the run log (0 = unbounded)")

	// History flags
	cmd.Flags().BoolP("save", "s", false, "Save the audit summary to the history database")

	return cmd
}

// runShowCmd executes the show command.
func runShowCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JSONOutput, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownOutput, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.OutputFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	if cfg.SkipCorrelation, err = cmd.Flags().GetBool("no-correlate"); err != nil {
		return err
	}
	if cfg.LogTimeout, err = cmd.Flags().GetDuration("log-timeout"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	scanner := newScanner(cfg, logger)

	src, err := resolveSource(cmd.Context(), scanner, args[0])
	if err != nil {
		return err
	}

	audit, err := loadAudit(cmd, cfg, src)
	if err != nil {
		return err
	}

	save, err := cmd.Flags().GetBool("save")
	if err != nil {
		return err
	}
	if save {
		if err := saveToHistory(cmd, cfg, audit); err != nil {
			return err
		}
	}

	return renderReport(cmd, cfg, audit)
}

// loadAudit builds the audit report for one source.
func loadAudit(cmd *cobra.Command, cfg *config.Config, src model.AuditSource) (*model.AuditReport, error) {
	l := loader.New(
		loader.WithLogTimeout(cfg.LogTimeout),
		loader.WithSkipCorrelation(cfg.SkipCorrelation),
	)
	return l.Load(cmd.Context(), src)
}

// saveToHistory records the audit in the history database.
func saveToHistory(cmd *cobra.Command, cfg *config.Config, audit *model.AuditReport) error {
	db, err := history.Open(cfg.HistoryDir, history.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveAudit(cmd.Context(), audit)
	if err != nil {
		return fmt.Errorf("failed to save audit to history: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "saved audit #%d to history\n", id)
	return nil
}

// renderReport writes the audit in the selected format.
func renderReport(cmd *cobra.Command, cfg *config.Config, audit *model.AuditReport) error {
	var out io.Writer = cmd.OutOrStdout()
	if cfg.OutputFile != "" {
		f, cleanup, err := openOutput(cfg.OutputFile)
		if err != nil {
			return err
		}
		defer cleanup()
		out = f
	}

	w, err := newWriter(cmd, cfg, out)
	if err != nil {
		return err
	}
	if _, err := w.Write(audit); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if cfg.OutputFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "report written to %s\n", cfg.OutputFile)
	}
	return nil
}

// newWriter selects the report writer for the configured format.
func newWriter(cmd *cobra.Command, cfg *config.Config, out io.Writer) (report.Writer, error) {
	switch {
	case cfg.JSONOutput:
		return report.NewJSONWriter(out, report.WithPrettyPrint()), nil
	case cfg.MarkdownOutput:
		return report.NewMarkdownWriter(out), nil
	default:
		long, err := cmd.Flags().GetBool("long")
		if err != nil {
			return nil, err
		}
		return report.NewSimpleWriter(out, report.WithVerbose(long)), nil
	}
}
