package model

import (
	"time"
)

// Metadata keys read by the scalar accessors below.
// Lynis key names drifted across releases, so each accessor checks a list
// of candidates in order and returns the first non-empty value.
var (
	hostnameKeys   = []string{"hostname", "host", "system.hostname"}
	osNameKeys     = []string{"os_name", "os", "distribution", "distro"}
	osVersionKeys  = []string{"os_version", "os_release", "version"}
	kernelKeys     = []string{"os_kernel_version_full", "os_kernel_version", "kernel_version", "uname_r"}
	scanStartKeys  = []string{"report_datetime_start", "scan_start"}
	scanEndKeys    = []string{"report_datetime_end", "scan_end"}
)

// HardeningIndexKey is the metadata key carrying the scalar summary score.
const HardeningIndexKey = "hardening_index"

// scanTimeLayouts are the timestamp formats Lynis writes into report metadata.
var scanTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// AuditReport is the fully merged, immutable result of parsing one
// AuditSource. It is built once per open request, read-only thereafter,
// and discarded when the user navigates away or the source is deleted.
//
// Every exported field carries a JSON tag: the struct is the lossless
// export boundary consumed by external tooling, and field names and
// nesting are stable across versions.
type AuditReport struct {
	// Source is the audit location this report was built from.
	Source AuditSource `json:"source"`

	// Metadata maps scalar report keys to values (hostname, OS, kernel,
	// scan date, hardening index, ...). Last write wins for repeated keys.
	Metadata map[string]string `json:"metadata"`

	// Warnings holds Warning findings in report-file order.
	Warnings []Finding `json:"warnings"`

	// Suggestions holds Suggestion findings in report-file order.
	Suggestions []Finding `json:"suggestions"`

	// HardeningIndex is the parsed summary score, or -1 when the report
	// carried no parseable value. The raw string is preserved in
	// HardeningIndexRaw either way.
	HardeningIndex int `json:"hardening_index"`

	// HardeningIndexRaw is the verbatim metadata value, kept so a
	// non-numeric score survives the lenient parse.
	HardeningIndexRaw string `json:"hardening_index_raw,omitempty"`

	// ParseErrors lists recoverable issues hit while building the report,
	// in the order they were encountered.
	ParseErrors []ParseError `json:"parse_errors,omitempty"`

	// BuiltAt is when the audit model builder produced this report.
	BuiltAt time.Time `json:"built_at"`
}

// Findings returns all findings, warnings first, preserving report order
// within each kind.
func (r *AuditReport) Findings() []Finding {
	out := make([]Finding, 0, len(r.Warnings)+len(r.Suggestions))
	out = append(out, r.Warnings...)
	out = append(out, r.Suggestions...)
	return out
}

// Categories groups all findings by category name. The grouping is derived
// on demand rather than stored; the report itself stays flat.
func (r *AuditReport) Categories() map[string][]Finding {
	out := make(map[string][]Finding)
	for _, f := range r.Findings() {
		cat := f.Category
		if cat == "" {
			cat = UncategorizedCategory
		}
		out[cat] = append(out[cat], f)
	}
	return out
}

// Hostname returns the audited host's name, or empty if absent.
func (r *AuditReport) Hostname() string {
	return r.firstMetadata(hostnameKeys)
}

// OSName returns the operating system name, or empty if absent.
func (r *AuditReport) OSName() string {
	return r.firstMetadata(osNameKeys)
}

// OSVersion returns the operating system version, or empty if absent.
func (r *AuditReport) OSVersion() string {
	return r.firstMetadata(osVersionKeys)
}

// Kernel returns the kernel version, or empty if absent.
func (r *AuditReport) Kernel() string {
	return r.firstMetadata(kernelKeys)
}

// ScanStarted returns the scan start time from report metadata.
// The zero time is returned when the report carries no parseable value.
func (r *AuditReport) ScanStarted() time.Time {
	return parseScanTime(r.firstMetadata(scanStartKeys))
}

// ScanFinished returns the scan end time from report metadata.
// The zero time is returned when the report carries no parseable value.
func (r *AuditReport) ScanFinished() time.Time {
	return parseScanTime(r.firstMetadata(scanEndKeys))
}

// HasHardeningIndex reports whether the report carried a numeric score.
func (r *AuditReport) HasHardeningIndex() bool {
	return r.HardeningIndex >= 0
}

func (r *AuditReport) firstMetadata(keys []string) string {
	for _, k := range keys {
		if v := r.Metadata[k]; v != "" {
			return v
		}
	}
	return ""
}

// parseScanTime parses a Lynis report timestamp. Reports omit timezone
// information, so values are interpreted as UTC to keep comparisons
// between audits of the same host consistent.
func parseScanTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range scanTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
