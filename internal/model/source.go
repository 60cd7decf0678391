package model

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// Expected filenames inside an audit directory.
// Lynis always writes this pair side by side, and snapshots preserve
// the same names so every audit directory looks alike.
const (
	// ReportFileName is the structured key/value report written by Lynis.
	ReportFileName = "lynis-report.dat"

	// LogFileName is the free-form execution trace written by Lynis.
	LogFileName = "lynis.log"
)

// SourceKind classifies where an audit source lives.
//
// Design decision: We use iota-based constants with a String() method and
// custom JSON marshaling rather than raw strings. Comparisons stay cheap
// while the export boundary keeps stable, human-readable values.
type SourceKind int

const (
	// SourceLive is an audit location reflecting the system's current or
	// last scanner run (e.g., /var/log). Live sources are never deleted
	// by this tool.
	SourceLive SourceKind = iota

	// SourceArchive is an immutable, timestamped snapshot of a Live
	// source's file pair under the user's archive root.
	SourceArchive
)

// String returns a human-readable representation of the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceLive:
		return "live"
	case SourceArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the kind as a stable string.
// The export boundary guarantees these values never change across versions.
func (k SourceKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes the kind from its string form.
func (k *SourceKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "live":
		*k = SourceLive
	case "archive":
		*k = SourceArchive
	default:
		return fmt.Errorf("unknown source kind %q", s)
	}
	return nil
}

// AuditSource is a discovered, not-yet-parsed audit location.
// Sources are created by discovery on each scan and never mutated;
// a new scan supersedes the previous list instead of editing it.
type AuditSource struct {
	// RootPath is the directory containing the report/log file pair.
	// Discovery stores the resolved (symlink-free, absolute) path here
	// so deduplication and archive-root checks compare like with like.
	RootPath string `json:"root_path"`

	// Kind is Live for system audit locations and Archive for snapshots.
	Kind SourceKind `json:"kind"`

	// DiscoveredAt is the timestamp of the scan that found this source.
	DiscoveredAt time.Time `json:"discovered_at"`

	// Readable reports whether both expected files exist and the process
	// may open them. Unreadable sources are still listed so the user can
	// see they exist, but they are excluded from open operations.
	Readable bool `json:"readable"`

	// ReportPath is the path to the report file, empty if missing.
	ReportPath string `json:"report_path,omitempty"`

	// LogPath is the path to the run log, empty if missing.
	LogPath string `json:"log_path,omitempty"`

	// ModTime is the newest modification time of the file pair.
	// Discovery orders sources of the same kind by this value.
	ModTime time.Time `json:"mod_time"`
}

// Key returns a stable identity for the source used for deduplication,
// open coalescing, and history lookups. RootPath is already resolved by
// discovery, so the cleaned path is sufficient.
func (s AuditSource) Key() string {
	return filepath.Clean(s.RootPath)
}

// IsComplete reports whether both files of the pair were found.
func (s AuditSource) IsComplete() bool {
	return s.ReportPath != "" && s.LogPath != ""
}
