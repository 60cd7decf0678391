package discovery

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/TheGhostMoon/linisreport/internal/model"
)

// Scanner discovers audit sources under a fixed set of root directories:
// live system and user locations, plus the archive root holding snapshots.
//
// Re-scans are idempotent and produce a deterministic ordering so that
// list-selection state in the caller stays stable under reload.
type Scanner struct {
	liveRoots   []string
	archiveRoot string
	logger      *slog.Logger
	now         func() time.Time

	// cache holds the last scan result. It is replaced wholesale on each
	// re-scan and never mutated in place.
	cache atomic.Pointer[scanResult]
}

// scanResult is one immutable discovery snapshot.
type scanResult struct {
	sources []model.AuditSource
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithClock overrides the time source. Intended for tests that need a
// deterministic DiscoveredAt.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		s.now = now
	}
}

// New creates a Scanner over the given live roots and archive root.
// Live roots are themselves candidate audit directories (Lynis writes its
// pair directly into /var/log); the archive root's immediate subdirectories
// are the candidate snapshots.
func New(liveRoots []string, archiveRoot string, opts ...Option) *Scanner {
	s := &Scanner{
		liveRoots:   append([]string(nil), liveRoots...),
		archiveRoot: archiveRoot,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ArchiveRoot returns the snapshot root this scanner watches.
func (s *Scanner) ArchiveRoot() string {
	return s.archiveRoot
}

// Sources returns the current ordered source list, scanning the filesystem
// if no cached snapshot exists. The returned slice is shared and must be
// treated as read-only; sources themselves are immutable values.
func (s *Scanner) Sources(ctx context.Context) ([]model.AuditSource, error) {
	if cached := s.cache.Load(); cached != nil {
		return cached.sources, nil
	}
	return s.Rescan(ctx)
}

// Rescan walks all roots and atomically replaces the cached source list.
func (s *Scanner) Rescan(ctx context.Context) ([]model.AuditSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scannedAt := s.now()
	seen := make(map[string]struct{})
	var sources []model.AuditSource

	add := func(src model.AuditSource, ok bool) {
		if !ok {
			return
		}
		if _, dup := seen[src.Key()]; dup {
			return
		}
		seen[src.Key()] = struct{}{}
		sources = append(sources, src)
	}

	for _, root := range s.liveRoots {
		add(s.probe(root, model.SourceLive, scannedAt))
		// One level below a live root covers layouts like /var/log/lynis.
		for _, sub := range subdirectories(root) {
			add(s.probe(sub, model.SourceLive, scannedAt))
		}
	}
	for _, sub := range subdirectories(s.archiveRoot) {
		add(s.probe(sub, model.SourceArchive, scannedAt))
	}

	orderSources(sources)

	s.cache.Store(&scanResult{sources: sources})
	s.logger.Debug("discovery scan complete", "sources", len(sources))
	return sources, nil
}

// Invalidate drops the cached source list. The next Sources call re-scans.
// The archive manager calls this after creating or deleting a snapshot.
func (s *Scanner) Invalidate() {
	s.cache.Store(nil)
}

// probe examines one candidate directory. A directory qualifies as a
// source when it holds at least one of the two expected files; it is
// Readable only when both exist and the process may open them.
func (s *Scanner) probe(dir string, kind model.SourceKind, scannedAt time.Time) (model.AuditSource, bool) {
	resolved := resolvePath(dir)

	reportPath, reportOK, reportMod := probeFile(filepath.Join(resolved, model.ReportFileName))
	logPath, logOK, logMod := probeFile(filepath.Join(resolved, model.LogFileName))
	if reportPath == "" && logPath == "" {
		return model.AuditSource{}, false
	}

	modTime := reportMod
	if logMod.After(modTime) {
		modTime = logMod
	}

	return model.AuditSource{
		RootPath:     resolved,
		Kind:         kind,
		DiscoveredAt: scannedAt,
		Readable:     reportOK && logOK,
		ReportPath:   reportPath,
		LogPath:      logPath,
		ModTime:      modTime,
	}, true
}

// probeFile checks one expected file. The returned path is non-empty when
// the file exists as a regular file; ok additionally requires that the
// process may open it for reading. A root-owned pair under /var/log exists
// for everyone but is readable only under elevated privileges, and the
// distinction is what keeps such sources listed-but-unopenable.
func probeFile(path string) (existing string, ok bool, modTime time.Time) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false, time.Time{}
	}

	f, err := os.Open(path) //nolint:gosec // Probing well-known filenames under configured roots
	if err != nil {
		return path, false, info.ModTime()
	}
	_ = f.Close()
	return path, true, info.ModTime()
}

// subdirectories lists the immediate subdirectories of dir. Unreadable or
// missing roots contribute nothing; discovery never fails on filesystem
// trouble, it omits.
func subdirectories(dir string) []string {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var subs []string
	for _, e := range entries {
		if e.IsDir() {
			subs = append(subs, filepath.Join(dir, e.Name()))
		}
	}
	return subs
}

// orderSources sorts Live before Archive, most-recently-modified first
// within the same kind, with the path as the final tiebreaker. The
// ordering is total and deterministic so repeated scans over an unchanged
// filesystem yield identical lists.
func orderSources(sources []model.AuditSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		a, b := sources[i], sources[j]
		if a.Kind != b.Kind {
			return a.Kind == model.SourceLive
		}
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
		return a.RootPath < b.RootPath
	})
}

// resolvePath produces the canonical form of dir used for deduplication.
// Symlink resolution can fail on permission-restricted parents; the
// cleaned absolute path is a sufficient fallback.
func resolvePath(dir string) string {
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return filepath.Clean(dir)
}
