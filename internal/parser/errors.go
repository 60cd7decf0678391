package parser

import "errors"

// Parsing errors.
//
// Design decision: We use package-level sentinel errors so callers can
// classify failures with errors.Is() while call sites wrap them with
// path context via %w.
var (
	// ErrSourceUnreadable is returned when the report file is missing,
	// permission-denied, or not valid UTF-8. The parser does not partially
	// succeed in that case: the whole source is excluded from open
	// operations while discovery still lists it.
	ErrSourceUnreadable = errors.New("audit source unreadable")

	// ErrCorrelationUnavailable is returned when the run log is missing or
	// unreadable. Correlation silently degrades: every finding keeps the
	// unknown-line sentinel and the condition is recorded as a non-fatal
	// parse error, never a failed build.
	ErrCorrelationUnavailable = errors.New("log correlation unavailable")
)
