package archive

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/TheGhostMoon/linisreport/internal/model"
)

// SnapshotTimeFormat names snapshot directories. UTC with second
// resolution keeps names sortable and collision-checked rather than
// collision-proof: two snapshots within one second collide, which is
// reported as an error instead of overwriting.
const SnapshotTimeFormat = "20060102T150405Z"

// snapshotDirPerm is the mode for newly created snapshot directories.
const snapshotDirPerm = 0o750

// Manager creates and deletes snapshots under a single archive root.
// Both operations are synchronous and idempotent on retry, except that a
// retried snapshot picks up a fresh timestamp after a collision.
type Manager struct {
	root       string
	logger     *slog.Logger
	now        func() time.Time
	invalidate func()
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source used for snapshot names.
// Intended for tests that need deterministic (or colliding) names.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithInvalidate registers a hook run after every successful snapshot or
// delete. Discovery registers its cache invalidation here so new and
// removed snapshots appear on the next scan.
func WithInvalidate(fn func()) Option {
	return func(m *Manager) {
		m.invalidate = fn
	}
}

// New creates a Manager over the given archive root.
func New(root string, opts ...Option) *Manager {
	m := &Manager{root: root}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.invalidate == nil {
		m.invalidate = func() {}
	}
	return m
}

// Snapshot copies both files of a Live source into a new timestamped
// directory under the archive root and returns the resulting Archive
// source. Any failure removes the partially written destination and
// returns ErrSnapshotFailed; the Live source is never touched.
func (m *Manager) Snapshot(src model.AuditSource) (model.AuditSource, error) {
	if src.Kind != model.SourceLive {
		return model.AuditSource{}, fmt.Errorf("%w: %s is already an archive", ErrSnapshotFailed, src.RootPath)
	}
	if !src.Readable || !src.IsComplete() {
		return model.AuditSource{}, fmt.Errorf("%w: %s is not fully readable", ErrSnapshotFailed, src.RootPath)
	}

	if err := os.MkdirAll(m.root, snapshotDirPerm); err != nil {
		return model.AuditSource{}, fmt.Errorf("%w: create archive root: %v", ErrSnapshotFailed, err)
	}

	createdAt := m.now().UTC()
	dest := filepath.Join(m.root, createdAt.Format(SnapshotTimeFormat))
	if err := os.Mkdir(dest, snapshotDirPerm); err != nil {
		if os.IsExist(err) {
			return model.AuditSource{}, fmt.Errorf("%w: destination %s already exists", ErrSnapshotFailed, dest)
		}
		return model.AuditSource{}, fmt.Errorf("%w: create %s: %v", ErrSnapshotFailed, dest, err)
	}

	copies := []struct{ from, to string }{
		{src.ReportPath, filepath.Join(dest, model.ReportFileName)},
		{src.LogPath, filepath.Join(dest, model.LogFileName)},
	}
	for _, c := range copies {
		if err := copyVerified(c.from, c.to); err != nil {
			// A half-written snapshot must not surface as an Archive
			// source on the next scan.
			_ = os.RemoveAll(dest)
			return model.AuditSource{}, fmt.Errorf("%w: %v", ErrSnapshotFailed, err)
		}
	}

	m.invalidate()
	m.logger.Info("snapshot created", "source", src.RootPath, "snapshot", dest)

	return model.AuditSource{
		RootPath:     dest,
		Kind:         model.SourceArchive,
		DiscoveredAt: createdAt,
		Readable:     true,
		ReportPath:   filepath.Join(dest, model.ReportFileName),
		LogPath:      filepath.Join(dest, model.LogFileName),
		ModTime:      createdAt,
	}, nil
}

// Delete recursively removes a snapshot directory. Live sources and
// directories outside the archive root are refused. Removal blocked
// partway by permissions leaves already-removed files removed (no
// rollback) and reports the partial state in the returned error.
func (m *Manager) Delete(src model.AuditSource) error {
	if src.Kind != model.SourceArchive {
		return fmt.Errorf("%w: refusing to delete live source %s", ErrDeleteFailed, src.RootPath)
	}
	if !m.managed(src.RootPath) {
		return fmt.Errorf("%w: %s is outside the archive root %s", ErrDeleteFailed, src.RootPath, m.root)
	}

	err := os.RemoveAll(src.RootPath)

	// Whether or not removal completed, the on-disk state changed;
	// the next discovery scan must observe it.
	m.invalidate()

	if err != nil {
		return fmt.Errorf("%w: partial removal of %s: %v", ErrDeleteFailed, src.RootPath, err)
	}
	m.logger.Info("snapshot deleted", "snapshot", src.RootPath)
	return nil
}

// managed reports whether path lies strictly inside the archive root.
func (m *Manager) managed(path string) bool {
	root, err := filepath.Abs(m.root)
	if err != nil {
		return false
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// copyVerified copies one file byte for byte and confirms the written copy
// by re-reading it and comparing SHA3-256 digests. A snapshot must match
// the live pair exactly or not exist at all.
func copyVerified(from, to string) error {
	in, err := os.Open(from) //nolint:gosec // Source paths come from discovery
	if err != nil {
		return fmt.Errorf("open %s: %v", from, err)
	}
	defer in.Close()

	out, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640) //nolint:gosec // Destination is inside the new snapshot dir
	if err != nil {
		return fmt.Errorf("create %s: %v", to, err)
	}

	srcHash := sha3.New256()
	if _, err := io.Copy(io.MultiWriter(out, srcHash), in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %v", from, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %v", to, err)
	}

	destDigest, err := digestFile(to)
	if err != nil {
		return err
	}
	if !bytes.Equal(srcHash.Sum(nil), destDigest) {
		return fmt.Errorf("digest mismatch copying %s to %s", from, to)
	}
	return nil
}

// digestFile returns the SHA3-256 digest of a file's contents.
func digestFile(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // Path is inside the new snapshot dir
	if err != nil {
		return nil, fmt.Errorf("reopen %s: %v", path, err)
	}
	defer f.Close()

	h := sha3.New256()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash %s: %v", path, err)
	}
	return h.Sum(nil), nil
}
