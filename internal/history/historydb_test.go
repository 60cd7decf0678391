package history

import (
	"context"
	"testing"

	"github.com/TheGhostMoon/linisreport/internal/model"
)

// testReport builds a minimal audit report for the given host.
func testReport(hostname string, findings ...model.Finding) *model.AuditReport {
	report := &model.AuditReport{
		Source: model.AuditSource{
			RootPath: "/var/log",
			Kind:     model.SourceLive,
		},
		Metadata: map[string]string{
			"hostname":              hostname,
			"report_datetime_start": "2026-01-17 20:29:38",
		},
		HardeningIndex: 72,
	}
	for _, f := range findings {
		if f.Kind == model.Warning {
			report.Warnings = append(report.Warnings, f)
		} else {
			report.Suggestions = append(report.Suggestions, f)
		}
	}
	return report
}

// openTestDB opens a history database in a temp directory and closes it
// when the test finishes.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open history database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestSaveAndQueryAudit verifies the round trip of a saved audit.
func TestSaveAndQueryAudit(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	warning := model.Finding{
		TestID:      "AUTH-9262",
		Category:    "AUTH",
		Kind:        model.Warning,
		Description: "Install a PAM module",
		Solution:    "-",
	}
	suggestion := model.Finding{
		TestID:      "SSH-7408",
		Category:    "SSH",
		Kind:        model.Suggestion,
		Description: "Harden SSH configuration",
	}

	id, err := db.SaveAudit(ctx, testReport("web01", warning, suggestion))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected a positive audit id, got %d", id)
	}

	t.Run("summary row round trips", func(t *testing.T) {
		rec, err := db.Audit(ctx, id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec == nil {
			t.Fatal("expected a stored audit")
		}
		if rec.Hostname != "web01" {
			t.Errorf("expected hostname %q, got %q", "web01", rec.Hostname)
		}
		if rec.HardeningIndex != 72 {
			t.Errorf("expected hardening index 72, got %d", rec.HardeningIndex)
		}
		if rec.WarningCount != 1 || rec.SuggestionCount != 1 {
			t.Errorf("expected counts 1/1, got %d/%d", rec.WarningCount, rec.SuggestionCount)
		}
	})

	t.Run("findings round trip with fingerprints intact", func(t *testing.T) {
		stored, err := db.Findings(ctx, id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(stored) != 2 {
			t.Fatalf("expected 2 findings, got %d", len(stored))
		}
		if stored[0].Fingerprint() != warning.Fingerprint() {
			t.Error("expected the stored warning to fingerprint identically")
		}
		if stored[1].Kind != model.Suggestion {
			t.Errorf("expected suggestion kind preserved, got %v", stored[1].Kind)
		}
	})

	t.Run("latest audit finds the saved entry", func(t *testing.T) {
		rec, err := db.LatestAudit(ctx, "web01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec == nil || rec.ID != id {
			t.Errorf("expected latest audit %d, got %+v", id, rec)
		}
	})

	t.Run("unknown host has no latest audit", func(t *testing.T) {
		rec, err := db.LatestAudit(ctx, "nosuchhost")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec != nil {
			t.Errorf("expected nil, got %+v", rec)
		}
	})

	t.Run("unknown audit id yields nil", func(t *testing.T) {
		rec, err := db.Audit(ctx, 999999)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec != nil {
			t.Errorf("expected nil, got %+v", rec)
		}
	})
}

// TestAuditsListing verifies multi-entry listing and host filtering.
func TestAuditsListing(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	firstID, err := db.SaveAudit(ctx, testReport("web01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	secondID, err := db.SaveAudit(ctx, testReport("web01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := db.SaveAudit(ctx, testReport("db01")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("host filter restricts results", func(t *testing.T) {
		records, err := db.Audits(ctx, "web01", 50)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 audits for web01, got %d", len(records))
		}
	})

	t.Run("newest entry listed first", func(t *testing.T) {
		records, err := db.Audits(ctx, "web01", 50)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if records[0].ID != secondID || records[1].ID != firstID {
			t.Errorf("expected order [%d, %d], got [%d, %d]",
				secondID, firstID, records[0].ID, records[1].ID)
		}
	})

	t.Run("empty hostname lists every host", func(t *testing.T) {
		records, err := db.Audits(ctx, "", 50)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("expected 3 audits, got %d", len(records))
		}
	})

	t.Run("hosts are listed alphabetically", func(t *testing.T) {
		hosts, err := db.Hosts(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hosts) != 2 || hosts[0] != "db01" || hosts[1] != "web01" {
			t.Errorf("expected [db01 web01], got %v", hosts)
		}
	})
}

// TestOpenWithoutCreate verifies that rw mode requires an existing file.
func TestOpenWithoutCreate(t *testing.T) {
	t.Parallel()

	opts := Options{CreateIfNotExists: false}
	if _, err := Open(t.TempDir(), opts); err == nil {
		t.Error("expected an error opening a missing database without create")
	}
}
