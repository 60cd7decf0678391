package parser

import (
	"strings"

	"github.com/TheGhostMoon/linisreport/internal/model"
)

// FieldDelimiter separates positional sub-fields inside a multi-value
// record. The delimiter is fixed by the Lynis report format.
const FieldDelimiter = "|"

// commentMarker starts a comment line in the report file.
const commentMarker = "#"

// ReportResult is the output of parsing one report file: the scalar
// metadata mapping, the ordered multi-value records, and every recoverable
// issue hit along the way.
type ReportResult struct {
	// Metadata maps scalar keys to values, last write wins.
	Metadata map[string]string

	// Records holds the multi-value records in file order.
	Records []model.RawRecord

	// ParseErrors lists malformed lines in file order. A malformed line is
	// skipped and recorded, never fatal.
	ParseErrors []model.ParseError
}

// ParseReport reads and decodes the report file at path.
// A missing, unreadable, or non-UTF-8 file yields ErrSourceUnreadable;
// malformed content inside a readable file never does.
func ParseReport(path string) (*ReportResult, error) {
	text, err := readUTF8File(path)
	if err != nil {
		return nil, err
	}
	return ParseReportText(text), nil
}

// ParseReportText decodes raw report text. It processes the input line by
// line and never fails: a line that cannot be split into key=value form is
// recorded as a parse error and skipped.
func ParseReportText(text string) *ReportResult {
	result := &ReportResult{
		Metadata: make(map[string]string),
	}

	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			result.addError(lineNo, "not in key=value form")
			continue
		}

		key = strings.TrimSpace(key)
		isMulti := strings.HasSuffix(key, "[]")
		if isMulti {
			key = key[:len(key)-2]
		}
		if !validReportKey(key) {
			result.addError(lineNo, "invalid key "+strings.TrimSpace(key))
			continue
		}
		key = strings.ToLower(key)
		value = strings.TrimSpace(value)

		if isMulti {
			result.Records = append(result.Records, model.RawRecord{
				Key:     key,
				IsMulti: true,
				Fields:  splitFields(value),
			})
			continue
		}
		result.Metadata[key] = unquote(value)
	}

	return result
}

func (r *ReportResult) addError(line int, message string) {
	r.ParseErrors = append(r.ParseErrors, model.ParseError{Line: line, Message: message})
}

// splitFields splits a raw record value on the field delimiter.
// One trailing empty sub-field is dropped because Lynis terminates records
// with a trailing delimiter; interior empty sub-fields are kept as empty
// strings since the fields are positional.
func splitFields(value string) []string {
	fields := strings.Split(value, FieldDelimiter)
	if len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

// validReportKey reports whether key looks like a Lynis report key.
// Keys are non-empty sequences of alphanumerics plus "_.:-".
func validReportKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == ':' || r == '-':
		default:
			return false
		}
	}
	return true
}

// unquote removes one pair of matching single or double quotes around a
// metadata value. Lynis quotes some values (e.g., hostnames with spaces).
func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '"' || first == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
