package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/TheGhostMoon/linisreport/internal/model"
	"github.com/TheGhostMoon/linisreport/internal/parser"
)

// Loader builds audit reports from discovered sources.
//
// Design decision: Opens of the same source are coalesced through
// singleflight rather than rejected. The interactive caller re-requests the
// selected source on every refresh, and the cheapest correct behavior is to
// hand every concurrent requester the one in-flight result. Cancellation
// stays with the caller: a navigated-away requester simply drops the result
// when its own context is done.
type Loader struct {
	group      singleflight.Group
	logger     *slog.Logger
	logTimeout time.Duration
	skipLog    bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithLogTimeout bounds how long log correlation may run per open.
// Zero (the default) means correlation runs to completion. Very large run
// logs under /var/log can make correlation the slowest part of an open;
// once the bound expires, findings correlated so far keep their lines and
// the rest degrade to the unknown-line sentinel.
func WithLogTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.logTimeout = d
	}
}

// WithSkipCorrelation disables log correlation entirely. Every finding
// keeps the unknown-line sentinel.
func WithSkipCorrelation(skip bool) Option {
	return func(l *Loader) {
		l.skipLog = skip
	}
}

// New creates a Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Load parses the source's file pair and returns the merged audit report.
//
// The report parse is authoritative: an unreadable or non-UTF-8 report file
// fails the open with parser.ErrSourceUnreadable. Log correlation is
// best-effort and never fails the open. Concurrent Load calls for the same
// source share one parse; each caller still honors its own context and
// discards the shared result if it was cancelled while waiting.
func (l *Loader) Load(ctx context.Context, src model.AuditSource) (*model.AuditReport, error) {
	if !src.Readable || src.ReportPath == "" {
		return nil, fmt.Errorf("%w: %s", parser.ErrSourceUnreadable, src.RootPath)
	}

	v, err, shared := l.group.Do(src.Key(), func() (any, error) {
		return l.load(ctx, src)
	})
	if shared {
		l.logger.Debug("coalesced concurrent open", "source", src.RootPath)
	}
	if err != nil {
		return nil, err
	}
	// The shared parse may have completed on behalf of another caller;
	// a requester that navigated away must never apply a stale result.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return v.(*model.AuditReport), nil
}

// load runs the report parser and log correlator concurrently and merges
// their output.
func (l *Loader) load(ctx context.Context, src model.AuditSource) (*model.AuditReport, error) {
	start := time.Now()

	var (
		result  *parser.ReportResult
		lines   map[string]int
		corrErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result, err = parser.ParseReport(src.ReportPath)
		return err
	})
	g.Go(func() error {
		// Correlation failures are folded into the report, not returned:
		// the errgroup only carries fatal parse errors.
		lines, corrErr = l.correlate(gctx, src)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := buildReport(src, result, lines, corrErr)
	l.logger.Debug("audit loaded",
		"source", src.RootPath,
		"warnings", len(report.Warnings),
		"suggestions", len(report.Suggestions),
		"parse_errors", len(report.ParseErrors),
		"elapsed", time.Since(start),
	)
	return report, nil
}

// correlate scans the run log for test-announcement markers. The scan
// collects every marker it sees (a nil id set) so it can run concurrently
// with the report parse; the builder filters by test id afterwards.
func (l *Loader) correlate(ctx context.Context, src model.AuditSource) (map[string]int, error) {
	if l.skipLog || src.LogPath == "" {
		return map[string]int{}, fmt.Errorf("%w: correlation skipped", parser.ErrCorrelationUnavailable)
	}

	if l.logTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.logTimeout)
		defer cancel()
	}

	lines, err := parser.CorrelateLog(ctx, src.LogPath, nil)
	if err != nil {
		// A timed-out scan keeps the lines mapped so far; normalize the
		// context error so the build records the degradation uniformly.
		if !errors.Is(err, parser.ErrCorrelationUnavailable) {
			err = fmt.Errorf("%w: %v", parser.ErrCorrelationUnavailable, err)
		}
		l.logger.Debug("log correlation degraded", "source", src.RootPath, "error", err)
	}
	return lines, err
}

// LoadAll loads several sources with at most concurrency parses in flight.
// Unreadable sources yield a nil report in the corresponding slot rather
// than failing the batch; the first fatal parse error aborts remaining work.
func (l *Loader) LoadAll(ctx context.Context, sources []model.AuditSource, concurrency int) ([]*model.AuditReport, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	reports := make([]*model.AuditReport, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, src := range sources {
		if !src.Readable {
			continue
		}
		g.Go(func() error {
			report, err := l.Load(gctx, src)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
