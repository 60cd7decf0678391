package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestParseReportText verifies decoding of report text into metadata and
// multi-value records.
func TestParseReportText(t *testing.T) {
	t.Parallel()

	t.Run("scalar lines become metadata", func(t *testing.T) {
		t.Parallel()
		result := ParseReportText("hostname=web01\nos_name=Debian\n")
		if got := result.Metadata["hostname"]; got != "web01" {
			t.Errorf("expected hostname %q, got %q", "web01", got)
		}
		if got := result.Metadata["os_name"]; got != "Debian" {
			t.Errorf("expected os_name %q, got %q", "Debian", got)
		}
		if len(result.Records) != 0 {
			t.Errorf("expected no records, got %d", len(result.Records))
		}
	})

	t.Run("bracketed keys become multi-value records", func(t *testing.T) {
		t.Parallel()
		result := ParseReportText("warning[]=AUTH-9262|Install PAM module|-|-|\n")
		if len(result.Records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(result.Records))
		}
		rec := result.Records[0]
		if rec.Key != "warning" {
			t.Errorf("expected key %q, got %q", "warning", rec.Key)
		}
		if !rec.IsMulti {
			t.Error("expected IsMulti to be true")
		}
		want := []string{"AUTH-9262", "Install PAM module", "-", "-"}
		if len(rec.Fields) != len(want) {
			t.Fatalf("expected %d fields, got %d: %v", len(want), len(rec.Fields), rec.Fields)
		}
		for i, w := range want {
			if rec.Fields[i] != w {
				t.Errorf("field %d: expected %q, got %q", i, w, rec.Fields[i])
			}
		}
	})

	t.Run("repeated multi keys keep every record in order", func(t *testing.T) {
		t.Parallel()
		result := ParseReportText("suggestion[]=SSH-7408|first|-|-|\nsuggestion[]=SSH-7408|second|-|-|\n")
		if len(result.Records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(result.Records))
		}
		if result.Records[0].Field(1) != "first" || result.Records[1].Field(1) != "second" {
			t.Error("expected records to keep file order")
		}
	})

	t.Run("repeated scalar keys keep the last value", func(t *testing.T) {
		t.Parallel()
		result := ParseReportText("hostname=old\nhostname=new\n")
		if got := result.Metadata["hostname"]; got != "new" {
			t.Errorf("expected last write to win, got %q", got)
		}
	})

	t.Run("keys are lowercased", func(t *testing.T) {
		t.Parallel()
		result := ParseReportText("Hostname=web01\nWARNING[]=AUTH-9262|text|-|-|\n")
		if got := result.Metadata["hostname"]; got != "web01" {
			t.Errorf("expected lowercased key lookup to succeed, got %q", got)
		}
		if len(result.Records) != 1 || result.Records[0].Key != "warning" {
			t.Errorf("expected lowercased record key, got %+v", result.Records)
		}
	})

	t.Run("quoted metadata values are unquoted", func(t *testing.T) {
		t.Parallel()
		result := ParseReportText("hostname=\"web 01\"\nos_name='Debian'\n")
		if got := result.Metadata["hostname"]; got != "web 01" {
			t.Errorf("expected %q, got %q", "web 01", got)
		}
		if got := result.Metadata["os_name"]; got != "Debian" {
			t.Errorf("expected %q, got %q", "Debian", got)
		}
	})

	t.Run("comments and blank lines are skipped", func(t *testing.T) {
		t.Parallel()
		result := ParseReportText("# Lynis report\n\nhostname=web01\n   \n")
		if len(result.ParseErrors) != 0 {
			t.Errorf("expected no parse errors, got %v", result.ParseErrors)
		}
		if got := result.Metadata["hostname"]; got != "web01" {
			t.Errorf("expected hostname %q, got %q", "web01", got)
		}
	})

	t.Run("value may contain equals signs", func(t *testing.T) {
		t.Parallel()
		result := ParseReportText("boot_loader=GRUB version=2\n")
		if got := result.Metadata["boot_loader"]; got != "GRUB version=2" {
			t.Errorf("expected split on first equals only, got %q", got)
		}
	})
}

// TestParseReportTextMalformed verifies that every malformed line yields
// exactly one parse error and never aborts the parse.
func TestParseReportTextMalformed(t *testing.T) {
	t.Parallel()

	t.Run("line without equals is recorded and skipped", func(t *testing.T) {
		t.Parallel()
		result := ParseReportText("hostname=web01\nthis line has no delimiter\nos_name=Debian\n")
		if len(result.ParseErrors) != 1 {
			t.Fatalf("expected 1 parse error, got %d", len(result.ParseErrors))
		}
		if result.ParseErrors[0].Line != 2 {
			t.Errorf("expected error on line 2, got line %d", result.ParseErrors[0].Line)
		}
		if got := result.Metadata["os_name"]; got != "Debian" {
			t.Error("expected parsing to continue past the malformed line")
		}
	})

	t.Run("invalid key is recorded and skipped", func(t *testing.T) {
		t.Parallel()
		result := ParseReportText("bad key=oops\n")
		if len(result.ParseErrors) != 1 {
			t.Fatalf("expected 1 parse error, got %d", len(result.ParseErrors))
		}
		if _, ok := result.Metadata["bad key"]; ok {
			t.Error("expected invalid key to be dropped")
		}
	})

	t.Run("n malformed lines produce n parse errors", func(t *testing.T) {
		t.Parallel()
		result := ParseReportText("junk one\njunk two\njunk three\n")
		if len(result.ParseErrors) != 3 {
			t.Errorf("expected 3 parse errors, got %d", len(result.ParseErrors))
		}
		for i, pe := range result.ParseErrors {
			if pe.Line != i+1 {
				t.Errorf("error %d: expected line %d, got %d", i, i+1, pe.Line)
			}
		}
	})
}

// TestSplitFields verifies the positional field split, including the
// single trailing delimiter Lynis appends to every record.
func TestSplitFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{name: "trailing delimiter dropped", value: "a|b|c|", want: []string{"a", "b", "c"}},
		{name: "no trailing delimiter", value: "a|b|c", want: []string{"a", "b", "c"}},
		{name: "interior empties kept", value: "a||c|", want: []string{"a", "", "c"}},
		{name: "only one trailing empty dropped", value: "a|b||", want: []string{"a", "b", ""}},
		{name: "single field", value: "a", want: []string{"a"}},
		{name: "empty value", value: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := splitFields(tt.value)
			if len(got) != len(tt.want) {
				t.Fatalf("splitFields(%q) = %v, want %v", tt.value, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("field %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

// TestParseReport verifies file-level behavior, including the unreadable
// source error for missing and non-UTF-8 files.
func TestParseReport(t *testing.T) {
	t.Parallel()

	t.Run("reads a report from disk", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "lynis-report.dat")
		content := "hostname=web01\nwarning[]=AUTH-9262|Install PAM module|-|-|\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write report: %v", err)
		}

		result, err := ParseReport(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := result.Metadata["hostname"]; got != "web01" {
			t.Errorf("expected hostname %q, got %q", "web01", got)
		}
		if len(result.Records) != 1 {
			t.Errorf("expected 1 record, got %d", len(result.Records))
		}
	})

	t.Run("missing file returns ErrSourceUnreadable", func(t *testing.T) {
		t.Parallel()
		_, err := ParseReport(filepath.Join(t.TempDir(), "nope.dat"))
		if !errors.Is(err, ErrSourceUnreadable) {
			t.Errorf("expected ErrSourceUnreadable, got %v", err)
		}
	})

	t.Run("invalid UTF-8 returns ErrSourceUnreadable", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "lynis-report.dat")
		if err := os.WriteFile(path, []byte{'h', 'i', 0xff, 0xfe, '\n'}, 0o600); err != nil {
			t.Fatalf("failed to write report: %v", err)
		}

		_, err := ParseReport(path)
		if !errors.Is(err, ErrSourceUnreadable) {
			t.Errorf("expected ErrSourceUnreadable, got %v", err)
		}
	})
}
