package loader

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/TheGhostMoon/linisreport/internal/model"
	"github.com/TheGhostMoon/linisreport/internal/parser"
)

// Record keys that produce findings. Everything else in the multi-value
// namespace is ignored but noted, which keeps the builder forward-compatible
// with keys future Lynis releases may add.
const (
	warningKey    = "warning"
	suggestionKey = "suggestion"
)

// Positional meaning of finding record fields, fixed by the Lynis format:
// test id, description, solution, evidence. Missing positions default to
// the empty string rather than erroring.
const (
	fieldTestID = iota
	fieldDescription
	fieldSolution
	fieldEvidence
)

// buildReport merges parsed records and the correlation mapping into one
// AuditReport. It never fails: every recoverable issue lands in the
// report's ParseErrors instead.
func buildReport(src model.AuditSource, result *parser.ReportResult, lines map[string]int, corrErr error) *model.AuditReport {
	report := &model.AuditReport{
		Source:         src,
		Metadata:       result.Metadata,
		HardeningIndex: -1,
		ParseErrors:    append([]model.ParseError(nil), result.ParseErrors...),
		BuiltAt:        time.Now(),
	}

	for _, rec := range result.Records {
		switch rec.Key {
		case warningKey:
			report.Warnings = append(report.Warnings, buildFinding(model.Warning, rec, lines))
		case suggestionKey:
			report.Suggestions = append(report.Suggestions, buildFinding(model.Suggestion, rec, lines))
		default:
			report.ParseErrors = append(report.ParseErrors, model.ParseError{
				Message: "ignored record key " + rec.Key,
			})
		}
	}

	applyHardeningIndex(report)

	if corrErr != nil && errors.Is(corrErr, parser.ErrCorrelationUnavailable) {
		report.ParseErrors = append(report.ParseErrors, model.ParseError{
			Message: corrErr.Error(),
		})
	}

	return report
}

// buildFinding constructs one finding from a multi-valued record.
// The source line comes from the correlation mapping keyed by test id;
// findings whose id was never announced in the log keep the unknown-line
// sentinel.
func buildFinding(kind model.FindingKind, rec model.RawRecord, lines map[string]int) model.Finding {
	testID := strings.ToUpper(strings.TrimSpace(rec.Field(fieldTestID)))
	return model.Finding{
		TestID:      testID,
		Category:    model.CategoryFromTestID(testID),
		Kind:        kind,
		Description: rec.Field(fieldDescription),
		Solution:    rec.Field(fieldSolution),
		Evidence:    rec.Field(fieldEvidence),
		SourceLine:  lines[testID],
	}
}

// applyHardeningIndex copies the scalar summary score out of metadata.
// The parse is lenient: a non-numeric value keeps its raw string and is
// flagged as a parse error rather than aborting the build.
func applyHardeningIndex(report *model.AuditReport) {
	raw, ok := report.Metadata[model.HardeningIndexKey]
	if !ok {
		return
	}
	report.HardeningIndexRaw = raw

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		report.ParseErrors = append(report.ParseErrors, model.ParseError{
			Message: "non-numeric hardening index " + strconv.Quote(raw),
		})
		return
	}
	report.HardeningIndex = n
}
