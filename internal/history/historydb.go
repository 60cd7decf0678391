package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/TheGhostMoon/linisreport/internal/model"
)

// dbFileName is the SQLite file created under the history directory.
const dbFileName = "linisreport.db"

// DB provides SQLite-backed storage of audit history.
//
// Design decision: One database file for all hosts rather than a file per
// host. Compare queries join summaries and findings across audits, and a
// single file keeps backup/restore a one-file affair.
type DB struct {
	db   *sql.DB
	path string
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if absent.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended; the CLI reads
	// history while a save may be in flight.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dir.
func Open(dir string, opts Options) (*DB, error) {
	path := filepath.Join(dir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", path)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// modernc.org/sqlite connection modes: rwc creates, rw requires the
	// file to exist already.
	dsn := path + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = path + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer; a second connection buys nothing here.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &DB{db: db, path: path}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *DB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *DB) Path() string {
	return hdb.path
}

// createTables creates the schema if it doesn't exist.
func (hdb *DB) createTables() error {
	schema := `
	-- One row per saved audit open
	CREATE TABLE IF NOT EXISTS audits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_key TEXT NOT NULL,
		source_kind TEXT NOT NULL,
		hostname TEXT NOT NULL,
		opened_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		scan_started TEXT,
		hardening_index INTEGER,
		warning_count INTEGER NOT NULL,
		suggestion_count INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audits_hostname ON audits(hostname);
	CREATE INDEX IF NOT EXISTS idx_audits_opened ON audits(opened_at);

	-- Findings of each saved audit, identified by fingerprint
	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		audit_id INTEGER NOT NULL REFERENCES audits(id) ON DELETE CASCADE,
		fingerprint TEXT NOT NULL,
		kind TEXT NOT NULL,
		test_id TEXT,
		category TEXT,
		description TEXT,
		solution TEXT,
		evidence TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_findings_audit ON findings(audit_id);
	CREATE INDEX IF NOT EXISTS idx_findings_fingerprint ON findings(fingerprint);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// AuditRecord is one stored audit summary.
type AuditRecord struct {
	ID              int64
	SourceKey       string
	SourceKind      string
	Hostname        string
	OpenedAt        time.Time
	ScanStarted     string
	HardeningIndex  int
	WarningCount    int
	SuggestionCount int
}

// SaveAudit stores a summary row and every finding of the report.
// Returns the new audit's row id.
func (hdb *DB) SaveAudit(ctx context.Context, report *model.AuditReport) (int64, error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	scanStarted := ""
	if t := report.ScanStarted(); !t.IsZero() {
		t = t.UTC()
		scanStarted = t.Format(time.RFC3339)
	}

	res, err := tx.ExecContext(ctx, `
	INSERT INTO audits (source_key, source_kind, hostname, scan_started, hardening_index, warning_count, suggestion_count)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.Source.Key(),
		report.Source.Kind.String(),
		report.Hostname(),
		scanStarted,
		report.HardeningIndex,
		len(report.Warnings),
		len(report.Suggestions),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert audit: %w", err)
	}
	auditID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO findings (audit_id, fingerprint, kind, test_id, category, description, solution, evidence)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare finding insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range report.Findings() {
		if _, err := stmt.ExecContext(ctx,
			auditID, f.Fingerprint(), f.Kind.String(), f.TestID, f.Category,
			f.Description, f.Solution, f.Evidence,
		); err != nil {
			return 0, fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit audit: %w", err)
	}
	return auditID, nil
}

// Audits lists stored audit summaries for a hostname, newest first.
// An empty hostname lists audits for all hosts.
func (hdb *DB) Audits(ctx context.Context, hostname string, limit int) ([]AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT id, source_key, source_kind, hostname, opened_at, scan_started, hardening_index, warning_count, suggestion_count
	FROM audits`
	args := []any{}
	if hostname != "" {
		query += " WHERE hostname = ?"
		args = append(args, hostname)
	}
	query += " ORDER BY opened_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	defer rows.Close()

	var records []AuditRecord
	for rows.Next() {
		var rec AuditRecord
		var openedAt string
		if err := rows.Scan(
			&rec.ID, &rec.SourceKey, &rec.SourceKind, &rec.Hostname, &openedAt,
			&rec.ScanStarted, &rec.HardeningIndex, &rec.WarningCount, &rec.SuggestionCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		rec.OpenedAt = parseTimestamp(openedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LatestAudit returns the most recently saved audit for a hostname,
// or nil when the host has no history.
func (hdb *DB) LatestAudit(ctx context.Context, hostname string) (*AuditRecord, error) {
	records, err := hdb.Audits(ctx, hostname, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// Findings returns the stored findings of one audit in insertion order.
func (hdb *DB) Findings(ctx context.Context, auditID int64) ([]model.Finding, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT kind, test_id, category, description, solution, evidence
	FROM findings
	WHERE audit_id = ?
	ORDER BY id`, auditID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var findings []model.Finding
	for rows.Next() {
		var f model.Finding
		var kind string
		if err := rows.Scan(&kind, &f.TestID, &f.Category, &f.Description, &f.Solution, &f.Evidence); err != nil {
			return nil, fmt.Errorf("failed to scan finding row: %w", err)
		}
		if kind == model.Suggestion.String() {
			f.Kind = model.Suggestion
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// Hosts lists every hostname with stored history, alphabetically.
func (hdb *DB) Hosts(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT DISTINCT hostname FROM audits ORDER BY hostname`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hosts = append(hosts, h)
	}
	return hosts, rows.Err()
}

// Audit returns one stored audit summary by id, or nil if absent.
func (hdb *DB) Audit(ctx context.Context, id int64) (*AuditRecord, error) {
	var rec AuditRecord
	var openedAt string
	err := hdb.db.QueryRowContext(ctx, `
	SELECT id, source_key, source_kind, hostname, opened_at, scan_started, hardening_index, warning_count, suggestion_count
	FROM audits WHERE id = ?`, id).Scan(
		&rec.ID, &rec.SourceKey, &rec.SourceKind, &rec.Hostname, &openedAt,
		&rec.ScanStarted, &rec.HardeningIndex, &rec.WarningCount, &rec.SuggestionCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit: %w", err)
	}
	rec.OpenedAt = parseTimestamp(openedAt)
	return &rec, nil
}

// timestampLayouts covers the formats SQLite may hand back for DATETIME
// columns depending on how the value was written.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05Z",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
