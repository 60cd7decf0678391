package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/TheGhostMoon/linisreport/internal/model"
)

// MarkdownWriter outputs audit reports as GitHub Flavored Markdown,
// suitable for sharing hardening status in documentation or tickets.
type MarkdownWriter struct {
	baseWriter

	titler cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		titler:     cases.Title(language.English),
	}
}

// Write renders the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AuditReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeCategorySummary(md, report)
	w.writeFindings(md, "Warnings", report.Warnings)
	w.writeFindings(md, "Suggestions", report.Suggestions)
	w.writeParseErrors(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the audit identity table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AuditReport) {
	md.H1("Lynis Audit Report")
	md.PlainText("")

	hardening := report.HardeningIndexRaw
	if hardening == "" {
		hardening = "unknown"
	}
	scanDate := "unknown"
	if t := report.ScanStarted(); !t.IsZero() {
		scanDate = t.Format("2006-01-02 15:04:05 MST")
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Host", orUnknown(report.Hostname())},
			{"OS", orUnknown(report.OSName() + " " + report.OSVersion())},
			{"Kernel", orUnknown(report.Kernel())},
			{"Scan Date", scanDate},
			{"Hardening Index", hardening},
			{"Source", "`" + report.Source.RootPath + "` (" + report.Source.Kind.String() + ")"},
		},
	})
	md.PlainText("")
}

// writeCategorySummary writes a per-category finding count table.
func (w *MarkdownWriter) writeCategorySummary(md *markdown.Markdown, report *model.AuditReport) {
	categories := report.Categories()
	if len(categories) == 0 {
		return
	}

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{
			w.categoryTitle(name),
			strconv.Itoa(len(categories[name])),
		})
	}

	md.H2("Findings by Category")
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Findings"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFindings writes one findings section as a table.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, title string, findings []model.Finding) {
	md.H2(title + " (" + strconv.Itoa(len(findings)) + ")")
	if len(findings) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		line := "unknown"
		if f.SourceLine != model.UnknownLine {
			line = strconv.Itoa(f.SourceLine)
		}
		rows = append(rows, []string{
			"`" + f.TestID + "`",
			f.Category,
			f.Description,
			f.Solution,
			line,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Test ID", "Category", "Description", "Solution", "Log Line"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeParseErrors lists recoverable parse issues, if any.
func (w *MarkdownWriter) writeParseErrors(md *markdown.Markdown, report *model.AuditReport) {
	if len(report.ParseErrors) == 0 {
		return
	}

	md.H2("Parse Notices (" + strconv.Itoa(len(report.ParseErrors)) + ")")
	items := make([]string, 0, len(report.ParseErrors))
	for _, pe := range report.ParseErrors {
		items = append(items, pe.Error())
	}
	md.BulletList(items...)
	md.PlainText("")
}

// categoryTitle renders a category name for display. Lynis categories are
// uppercase test-id prefixes; the fallback category reads better titled.
func (w *MarkdownWriter) categoryTitle(name string) string {
	if name == model.UncategorizedCategory {
		return w.titler.String(name)
	}
	return name
}

func orUnknown(s string) string {
	if s == "" || s == " " {
		return "unknown"
	}
	return s
}
