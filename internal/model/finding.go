package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// FindingKind distinguishes warnings from suggestions.
type FindingKind int

const (
	// Warning is a finding Lynis considers a problem.
	Warning FindingKind = iota

	// Suggestion is a finding Lynis considers an improvement opportunity.
	Suggestion
)

// String returns a human-readable representation of the finding kind.
func (k FindingKind) String() string {
	switch k {
	case Warning:
		return "warning"
	case Suggestion:
		return "suggestion"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind as a stable string for the export boundary.
func (k FindingKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes the kind from its string form.
func (k *FindingKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "warning":
		*k = Warning
	case "suggestion":
		*k = Suggestion
	default:
		return fmt.Errorf("unknown finding kind %q", s)
	}
	return nil
}

// UncategorizedCategory is used when no category can be derived from a test id.
const UncategorizedCategory = "uncategorized"

// UnknownLine is the sentinel for a finding whose position in the run log
// could not be recovered.
const UnknownLine = 0

// Finding is one warning or suggestion extracted from the report file.
// The relative order of findings of the same kind matches their order of
// appearance in the report file; test ids are not guaranteed unique.
type Finding struct {
	// TestID is the scanner-assigned identifier (e.g., "AUTH-9262").
	// May be empty and may repeat within one report.
	TestID string `json:"test_id"`

	// Category is derived from the TestID prefix, or "uncategorized".
	Category string `json:"category"`

	// Kind is Warning or Suggestion.
	Kind FindingKind `json:"kind"`

	// Description is the human-facing finding text. May be empty.
	Description string `json:"description"`

	// Solution is the remediation hint, copied verbatim from the record.
	// Lynis frequently writes "-" when it has nothing to say.
	Solution string `json:"solution"`

	// Evidence is additional positional detail from the record. May be empty.
	Evidence string `json:"evidence"`

	// SourceLine is the 1-based line in the run log where the test was
	// announced, or UnknownLine when correlation failed. When one test id
	// yields several findings they all share the earliest line.
	SourceLine int `json:"source_line,omitempty"`
}

// Fingerprint returns a stable identity for the finding used to match
// findings across two audits of the same host. It intentionally excludes
// SourceLine: the same finding moves around the log between runs.
func (f Finding) Fingerprint() string {
	base := strings.Join([]string{
		f.Kind.String(),
		f.Category,
		f.TestID,
		NormalizeText(f.Description),
	}, "|")
	sum := sha3.Sum256([]byte(base))
	return fmt.Sprintf("%x", sum[:16])
}

// CategoryFromTestID derives a category from a test id by taking the
// substring preceding the first non-alphanumeric rune. Lynis test ids
// look like "SSH-7408", so this yields "SSH". Empty or separator-first
// ids map to UncategorizedCategory.
func CategoryFromTestID(testID string) string {
	for i, r := range testID {
		if !isAlphanumeric(r) {
			if i == 0 {
				return UncategorizedCategory
			}
			return testID[:i]
		}
	}
	if testID == "" {
		return UncategorizedCategory
	}
	return testID
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

var (
	whitespaceRE   = regexp.MustCompile(`\s+`)
	nonPrintableRE = regexp.MustCompile(`[^\x09\x0A\x0D\x20-\x7E]+`)
)

// NormalizeText prepares a string for stable hashing and comparison:
// non-printable runes are removed, whitespace collapsed, and the result
// trimmed and lowercased. Scanner output varies in spacing between runs.
func NormalizeText(s string) string {
	s = nonPrintableRE.ReplaceAllString(s, "")
	s = whitespaceRE.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
