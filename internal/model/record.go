package model

import "strconv"

// RawRecord is one decoded multi-value entry from the report file
// (a `key[]=value` line). Single-value lines go straight into the
// report metadata and never become records.
//
// Invariant: Fields preserves the order written by the scanner. A single
// trailing empty sub-field is dropped (Lynis terminates records with a
// trailing delimiter) while interior empty sub-fields are kept, because
// the fields are positional.
type RawRecord struct {
	// Key is the record identifier without the `[]` suffix.
	// The same key repeats across records (e.g., "warning", "suggestion").
	Key string `json:"key"`

	// IsMulti reports whether the key was declared list-valued (`key[]=`).
	// Always true for records produced by the report parser; the
	// discriminator exists so the record type stays honest about the
	// line form it was decoded from.
	IsMulti bool `json:"is_multi"`

	// Fields is the ordered sequence of sub-fields split from the raw value.
	Fields []string `json:"fields"`
}

// Field returns the i-th sub-field, or the empty string when the record
// carries fewer fields. Scanners omit trailing positions freely, so
// positional access must never panic.
func (r RawRecord) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// ParseError is one recoverable issue encountered while building an audit:
// a malformed report line, an unrecognized record key, a non-numeric scalar,
// or an unreadable run log. Parse errors never abort a build; they accumulate
// on the report and are surfaced as a non-blocking notice.
type ParseError struct {
	// Line is the 1-based line number in the report file, or 0 when the
	// issue is not tied to a specific line (e.g., correlation failure).
	Line int `json:"line,omitempty"`

	// Message describes the issue in human-readable form.
	Message string `json:"message"`
}

// Error implements the error interface so parse errors can be logged
// and wrapped like any other error value.
func (e ParseError) Error() string {
	if e.Line > 0 {
		return "line " + strconv.Itoa(e.Line) + ": " + e.Message
	}
	return e.Message
}
