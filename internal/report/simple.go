package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/TheGhostMoon/linisreport/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: Plain ASCII formatting, no ANSI colors. The output is
// routinely piped into files and pagers, and color support belongs to the
// interactive display layer, not this core.
type SimpleWriter struct {
	baseWriter

	// verbose includes solutions, evidence, and parse notices.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with solutions and evidence.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the report as human-readable text.
func (w *SimpleWriter) Write(report *model.AuditReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeFindings(&sb, "WARNINGS", report.Warnings)
	w.writeFindings(&sb, "SUGGESTIONS", report.Suggestions)
	if w.verbose {
		w.writeParseErrors(&sb, report)
	} else if n := len(report.ParseErrors); n > 0 {
		fmt.Fprintf(&sb, "%d parse notice(s); use --verbose to list them\n", n)
	}

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AuditReport) {
	sb.WriteString(separator("="))
	sb.WriteString("Lynis Audit Report\n")
	sb.WriteString(separator("="))

	writeField(sb, "Host", report.Hostname())
	writeField(sb, "OS", strings.TrimSpace(report.OSName()+" "+report.OSVersion()))
	writeField(sb, "Kernel", report.Kernel())
	if t := report.ScanStarted(); !t.IsZero() {
		writeField(sb, "Scan date", t.Format("2006-01-02 15:04:05"))
	}
	if report.HasHardeningIndex() {
		fmt.Fprintf(sb, "%-16s %d\n", "Hardening index", report.HardeningIndex)
	} else if report.HardeningIndexRaw != "" {
		writeField(sb, "Hardening index", report.HardeningIndexRaw)
	}
	writeField(sb, "Source", fmt.Sprintf("%s (%s)", report.Source.RootPath, report.Source.Kind))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFindings(sb *strings.Builder, title string, findings []model.Finding) {
	fmt.Fprintf(sb, "%s (%d)\n", title, len(findings))
	sb.WriteString(separator("-"))

	if len(findings) == 0 {
		sb.WriteString("  none\n\n")
		return
	}

	for _, f := range findings {
		line := "line unknown"
		if f.SourceLine != model.UnknownLine {
			line = fmt.Sprintf("line %d", f.SourceLine)
		}
		fmt.Fprintf(sb, "  [%s] %s (%s)\n", f.TestID, f.Description, line)
		if w.verbose {
			if f.Solution != "" && f.Solution != "-" {
				fmt.Fprintf(sb, "      solution: %s\n", f.Solution)
			}
			if f.Evidence != "" && f.Evidence != "-" {
				fmt.Fprintf(sb, "      evidence: %s\n", f.Evidence)
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeParseErrors(sb *strings.Builder, report *model.AuditReport) {
	if len(report.ParseErrors) == 0 {
		return
	}
	fmt.Fprintf(sb, "PARSE NOTICES (%d)\n", len(report.ParseErrors))
	sb.WriteString(separator("-"))
	for _, pe := range report.ParseErrors {
		fmt.Fprintf(sb, "  %s\n", pe.Error())
	}
	sb.WriteString("\n")
}

func writeField(sb *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "%-16s %s\n", name, value)
}

func separator(ch string) string {
	return strings.Repeat(ch, 64) + "\n"
}
