package model

import (
	"encoding/json"
	"testing"
)

// TestSourceKindJSON verifies the stable string encoding of source kinds.
func TestSourceKindJSON(t *testing.T) {
	t.Parallel()

	t.Run("live marshals as string", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(SourceLive)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `"live"` {
			t.Errorf("expected %q, got %q", `"live"`, string(data))
		}
	})

	t.Run("archive round trips", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(SourceArchive)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var k SourceKind
		if err := json.Unmarshal(data, &k); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if k != SourceArchive {
			t.Errorf("expected SourceArchive, got %v", k)
		}
	})

	t.Run("unknown kind string fails to unmarshal", func(t *testing.T) {
		t.Parallel()
		var k SourceKind
		if err := json.Unmarshal([]byte(`"cloud"`), &k); err == nil {
			t.Error("expected error for unknown kind string")
		}
	})
}

// TestAuditSourceKey verifies that Key cleans the root path so equal
// locations compare equal.
func TestAuditSourceKey(t *testing.T) {
	t.Parallel()

	a := AuditSource{RootPath: "/var/log"}
	b := AuditSource{RootPath: "/var/log/"}
	if a.Key() != b.Key() {
		t.Errorf("expected equal keys, got %q and %q", a.Key(), b.Key())
	}
}

// TestAuditSourceIsComplete verifies the file-pair completeness check.
func TestAuditSourceIsComplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source AuditSource
		want   bool
	}{
		{
			name: "both files present",
			source: AuditSource{
				ReportPath: "/var/log/lynis-report.dat",
				LogPath:    "/var/log/lynis.log",
			},
			want: true,
		},
		{
			name:   "missing log",
			source: AuditSource{ReportPath: "/var/log/lynis-report.dat"},
			want:   false,
		},
		{
			name:   "missing report",
			source: AuditSource{LogPath: "/var/log/lynis.log"},
			want:   false,
		},
		{
			name:   "both missing",
			source: AuditSource{},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.source.IsComplete(); got != tt.want {
				t.Errorf("IsComplete() = %v, want %v", got, tt.want)
			}
		})
	}
}
