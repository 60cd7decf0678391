package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TheGhostMoon/linisreport/internal/model"
)

// testEnv is a self-contained audit landscape: a live search directory
// with audit subdirectories, an archive root, and a config file wiring
// them together.
type testEnv struct {
	searchDir   string
	archiveRoot string
	configPath  string
}

// newTestEnv builds the landscape with the given named audits under the
// search directory.
func newTestEnv(t *testing.T, audits map[string]string) testEnv {
	t.Helper()

	env := testEnv{
		searchDir:   t.TempDir(),
		archiveRoot: t.TempDir(),
	}
	for name, report := range audits {
		dir := filepath.Join(env.searchDir, name)
		if err := os.Mkdir(dir, 0o750); err != nil {
			t.Fatalf("failed to create audit dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, model.ReportFileName), []byte(report), 0o600); err != nil {
			t.Fatalf("failed to write report: %v", err)
		}
		log := "Performing test ID AUTH-9262 (check)\n"
		if err := os.WriteFile(filepath.Join(dir, model.LogFileName), []byte(log), 0o600); err != nil {
			t.Fatalf("failed to write log: %v", err)
		}
	}

	env.configPath = filepath.Join(t.TempDir(), ".linisreport")
	content := "searchDirs:\n  - " + env.searchDir + "\narchiveRoot: " + env.archiveRoot + "\n"
	if err := os.WriteFile(env.configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return env
}

// run executes the CLI with the environment's config file and returns
// captured stdout.
func (env testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", env.configPath))
	err := cmd.Execute()
	return out.String(), err
}

// TestListCommand verifies listing over a real directory layout.
func TestListCommand(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, map[string]string{
		"host-a": "hostname=host-a\n",
	})

	t.Run("text listing names the source", func(t *testing.T) {
		t.Parallel()
		out, err := env.run(t, "list")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "host-a") {
			t.Errorf("expected the audit directory in output, got %q", out)
		}
		if !strings.Contains(out, "live") {
			t.Errorf("expected the live kind marker, got %q", out)
		}
	})

	t.Run("json listing decodes to sources", func(t *testing.T) {
		t.Parallel()
		out, err := env.run(t, "list", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var sources []model.AuditSource
		if err := json.Unmarshal([]byte(out), &sources); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		found := false
		for _, src := range sources {
			if strings.HasSuffix(src.RootPath, "host-a") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected host-a among sources, got %v", sources)
		}
	})
}

// TestShowCommand verifies the show pipeline end to end.
func TestShowCommand(t *testing.T) {
	t.Parallel()

	report := "" +
		"hostname=host-a\n" +
		"hardening_index=64\n" +
		"warning[]=AUTH-9262|Install a PAM module|-|-|\n"
	env := newTestEnv(t, map[string]string{"host-a": report})
	auditPath := filepath.Join(env.searchDir, "host-a")

	t.Run("text report shows the finding with its log line", func(t *testing.T) {
		t.Parallel()
		out, err := env.run(t, "show", auditPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "AUTH-9262") {
			t.Errorf("expected the finding in output, got %q", out)
		}
		if !strings.Contains(out, "(line 1)") {
			t.Errorf("expected the correlated line, got %q", out)
		}
	})

	t.Run("json report decodes to an envelope", func(t *testing.T) {
		t.Parallel()
		out, err := env.run(t, "show", auditPath, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var envelope struct {
			Report *model.AuditReport `json:"report"`
		}
		if err := json.Unmarshal([]byte(out), &envelope); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if envelope.Report.Hostname() != "host-a" {
			t.Errorf("expected hostname host-a, got %q", envelope.Report.Hostname())
		}
		if envelope.Report.HardeningIndex != 64 {
			t.Errorf("expected hardening index 64, got %d", envelope.Report.HardeningIndex)
		}
	})

	t.Run("conflicting format flags fail", func(t *testing.T) {
		t.Parallel()
		if _, err := env.run(t, "show", auditPath, "--json", "--markdown"); err == nil {
			t.Error("expected an error for conflicting output formats")
		}
	})

	t.Run("output file receives the report", func(t *testing.T) {
		t.Parallel()
		outFile := filepath.Join(t.TempDir(), "audit.md")
		if _, err := env.run(t, "show", auditPath, "--markdown", "-o", outFile); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		content, err := os.ReadFile(outFile)
		if err != nil {
			t.Fatalf("failed to read output file: %v", err)
		}
		if !strings.Contains(string(content), "# Lynis Audit Report") {
			t.Error("expected Markdown content in the output file")
		}
	})
}

// TestSnapshotAndDeleteCommands verifies the archive round trip through
// the CLI.
func TestSnapshotAndDeleteCommands(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, map[string]string{"host-a": "hostname=host-a\n"})
	auditPath := filepath.Join(env.searchDir, "host-a")

	out, err := env.run(t, "snapshot", auditPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "snapshot created") {
		t.Fatalf("expected creation confirmation, got %q", out)
	}

	entries, err := os.ReadDir(env.archiveRoot)
	if err != nil {
		t.Fatalf("failed to read archive root: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(entries))
	}
	snapPath := filepath.Join(env.archiveRoot, entries[0].Name())

	t.Run("delete without force is a dry run", func(t *testing.T) {
		out, err := env.run(t, "delete", snapPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "would delete") {
			t.Errorf("expected dry-run output, got %q", out)
		}
		if _, err := os.Stat(snapPath); err != nil {
			t.Error("expected the snapshot to survive a dry run")
		}
	})

	t.Run("delete with force removes the snapshot", func(t *testing.T) {
		out, err := env.run(t, "delete", snapPath, "--force")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "snapshot deleted") {
			t.Errorf("expected deletion confirmation, got %q", out)
		}
		if _, err := os.Stat(snapPath); !os.IsNotExist(err) {
			t.Error("expected the snapshot directory to be gone")
		}
	})

	t.Run("deleting a live source is refused", func(t *testing.T) {
		if _, err := env.run(t, "delete", auditPath, "--force"); err == nil {
			t.Error("expected an error deleting a live source")
		}
	})
}

// TestCompareCommand verifies the two-source diff through the CLI.
func TestCompareCommand(t *testing.T) {
	t.Parallel()

	older := "" +
		"hostname=host-a\n" +
		"warning[]=AUTH-9262|Install a PAM module|-|-|\n"
	newer := "" +
		"hostname=host-a\n" +
		"warning[]=AUTH-9262|Install a PAM module|-|-|\n" +
		"suggestion[]=SSH-7408|Harden SSH configuration|-|-|\n"
	env := newTestEnv(t, map[string]string{"older": older, "newer": newer})

	olderPath := filepath.Join(env.searchDir, "older")
	newerPath := filepath.Join(env.searchDir, "newer")

	t.Run("json diff classifies findings", func(t *testing.T) {
		t.Parallel()
		out, err := env.run(t, "compare", olderPath, newerPath, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var diff model.AuditDiff
		if err := json.Unmarshal([]byte(out), &diff); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(diff.New) != 1 || diff.New[0].TestID != "SSH-7408" {
			t.Errorf("expected SSH-7408 to be new, got %+v", diff.New)
		}
		if len(diff.Persistent) != 1 {
			t.Errorf("expected 1 persistent finding, got %d", len(diff.Persistent))
		}
		if len(diff.Resolved) != 0 {
			t.Errorf("expected no resolved findings, got %d", len(diff.Resolved))
		}
	})

	t.Run("text diff prints the summary", func(t *testing.T) {
		t.Parallel()
		out, err := env.run(t, "compare", olderPath, newerPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "new: 1, resolved: 0, persistent: 1") {
			t.Errorf("expected the diff summary, got %q", out)
		}
	})

	t.Run("comparing a source with itself fails", func(t *testing.T) {
		t.Parallel()
		if _, err := env.run(t, "compare", olderPath, olderPath); err == nil {
			t.Error("expected an error comparing a source with itself")
		}
	})

	t.Run("one argument is rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := env.run(t, "compare", olderPath); err == nil {
			t.Error("expected an error for a single source argument")
		}
	})
}
