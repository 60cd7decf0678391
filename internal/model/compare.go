package model

// DiffStatus classifies a finding in a comparison of two audits.
type DiffStatus string

const (
	// StatusNew marks a finding present only in the newer audit.
	StatusNew DiffStatus = "new"

	// StatusResolved marks a finding present only in the older audit.
	StatusResolved DiffStatus = "resolved"

	// StatusPersistent marks a finding present in both audits.
	StatusPersistent DiffStatus = "persistent"
)

// AuditDiff is the result of comparing two audits of the same host.
type AuditDiff struct {
	// New holds findings that appeared since the older audit,
	// in newer-audit order.
	New []Finding `json:"new"`

	// Resolved holds findings that disappeared since the older audit,
	// in older-audit order.
	Resolved []Finding `json:"resolved"`

	// Persistent holds findings present in both audits,
	// in newer-audit order.
	Persistent []Finding `json:"persistent"`
}

// Diff compares two audits by finding fingerprint. Fingerprints exclude the
// run-log position, so a finding that merely moved in the log is persistent,
// not new. Ordering within each bucket is deterministic: it follows the
// order of appearance in the report the finding was taken from.
func Diff(older, newer *AuditReport) *AuditDiff {
	return DiffFindings(older.Findings(), newer.Findings())
}

// DiffFindings compares two flat finding lists. This variant serves the
// history database, which stores findings without the full report around
// them.
func DiffFindings(older, newer []Finding) *AuditDiff {
	oldSet := fingerprintSet(older)
	newSet := fingerprintSet(newer)

	diff := &AuditDiff{}
	for _, f := range newer {
		if _, ok := oldSet[f.Fingerprint()]; ok {
			diff.Persistent = append(diff.Persistent, f)
		} else {
			diff.New = append(diff.New, f)
		}
	}
	for _, f := range older {
		if _, ok := newSet[f.Fingerprint()]; !ok {
			diff.Resolved = append(diff.Resolved, f)
		}
	}
	return diff
}

func fingerprintSet(findings []Finding) map[string]struct{} {
	set := make(map[string]struct{}, len(findings))
	for _, f := range findings {
		set[f.Fingerprint()] = struct{}{}
	}
	return set
}
