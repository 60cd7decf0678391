package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestCategoryFromTestID verifies category derivation from Lynis-style
// test ids. The category is the prefix before the first non-alphanumeric
// rune.
func TestCategoryFromTestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		testID string
		want   string
	}{
		{name: "standard id", testID: "AUTH-9262", want: "AUTH"},
		{name: "digits in prefix", testID: "SSH2-7408", want: "SSH2"},
		{name: "no separator", testID: "FIREWALL", want: "FIREWALL"},
		{name: "empty id", testID: "", want: UncategorizedCategory},
		{name: "separator first", testID: "-9262", want: UncategorizedCategory},
		{name: "underscore separator", testID: "FILE_INT-001", want: "FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CategoryFromTestID(tt.testID); got != tt.want {
				t.Errorf("CategoryFromTestID(%q) = %q, want %q", tt.testID, got, tt.want)
			}
		})
	}
}

// TestNormalizeText verifies whitespace collapsing, non-printable
// stripping, and lowercasing.
func TestNormalizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text unchanged", input: "install a firewall", want: "install a firewall"},
		{name: "uppercase lowered", input: "Install A Firewall", want: "install a firewall"},
		{name: "runs of whitespace collapse", input: "install   a\t\tfirewall", want: "install a firewall"},
		{name: "surrounding whitespace trimmed", input: "  install a firewall  ", want: "install a firewall"},
		{name: "non-printable runes removed", input: "install\x00 a \x1bfirewall", want: "install a firewall"},
		{name: "empty stays empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeText(tt.input); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestFindingFingerprint verifies that fingerprints identify a finding by
// what it says, not where it appeared in the run log.
func TestFindingFingerprint(t *testing.T) {
	t.Parallel()

	base := Finding{
		TestID:      "AUTH-9262",
		Category:    "AUTH",
		Kind:        Warning,
		Description: "Install a PAM module for password strength testing",
		SourceLine:  42,
	}

	t.Run("fingerprint is stable across calls", func(t *testing.T) {
		t.Parallel()
		if base.Fingerprint() != base.Fingerprint() {
			t.Error("expected identical fingerprints for the same finding")
		}
	})

	t.Run("fingerprint ignores source line", func(t *testing.T) {
		t.Parallel()
		moved := base
		moved.SourceLine = 999
		if base.Fingerprint() != moved.Fingerprint() {
			t.Error("expected fingerprint to be independent of SourceLine")
		}
	})

	t.Run("fingerprint ignores whitespace drift in description", func(t *testing.T) {
		t.Parallel()
		drifted := base
		drifted.Description = "  Install a PAM module  for password strength testing "
		if base.Fingerprint() != drifted.Fingerprint() {
			t.Error("expected fingerprint to normalize description whitespace")
		}
	})

	t.Run("fingerprint distinguishes kinds", func(t *testing.T) {
		t.Parallel()
		other := base
		other.Kind = Suggestion
		if base.Fingerprint() == other.Fingerprint() {
			t.Error("expected different fingerprints for warning vs suggestion")
		}
	})

	t.Run("fingerprint distinguishes test ids", func(t *testing.T) {
		t.Parallel()
		other := base
		other.TestID = "AUTH-9263"
		if base.Fingerprint() == other.Fingerprint() {
			t.Error("expected different fingerprints for different test ids")
		}
	})

	t.Run("fingerprint is hex of fixed length", func(t *testing.T) {
		t.Parallel()
		fp := base.Fingerprint()
		if len(fp) != 32 {
			t.Errorf("expected 32 hex characters, got %d (%q)", len(fp), fp)
		}
		if strings.ToLower(fp) != fp {
			t.Errorf("expected lowercase hex, got %q", fp)
		}
	})
}

// TestFindingKindJSON verifies the stable string encoding of finding kinds.
func TestFindingKindJSON(t *testing.T) {
	t.Parallel()

	t.Run("warning marshals as string", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(Warning)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `"warning"` {
			t.Errorf("expected %q, got %q", `"warning"`, string(data))
		}
	})

	t.Run("suggestion round trips", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(Suggestion)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var k FindingKind
		if err := json.Unmarshal(data, &k); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if k != Suggestion {
			t.Errorf("expected Suggestion, got %v", k)
		}
	})

	t.Run("unknown kind string fails to unmarshal", func(t *testing.T) {
		t.Parallel()
		var k FindingKind
		if err := json.Unmarshal([]byte(`"notice"`), &k); err == nil {
			t.Error("expected error for unknown kind string")
		}
	})
}
