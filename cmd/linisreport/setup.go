package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TheGhostMoon/linisreport/internal/config"
	"github.com/TheGhostMoon/linisreport/internal/discovery"
	"github.com/TheGhostMoon/linisreport/internal/log"
	"github.com/TheGhostMoon/linisreport/internal/model"
)

// buildConfig assembles the effective configuration from defaults, the
// optional config file, and persistent flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configPath

	if found := config.FindConfigFile(configPath); found != "" {
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		cfg.ApplyFile(file)
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	cfg.Verbose, err = cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger installs the redacting logger as the process default and
// returns it.
func setupLogger(verbose bool) *slog.Logger {
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	return logger
}

// newScanner creates a discovery scanner over the configured roots.
func newScanner(cfg *config.Config, logger *slog.Logger) *discovery.Scanner {
	return discovery.New(cfg.SearchDirs, cfg.ArchiveRoot, discovery.WithLogger(logger))
}

// resolveSource maps a command-line argument to a discovered source.
// Accepted forms: "latest" (first readable source), a 1-based index into
// the list output, or a directory path.
func resolveSource(ctx context.Context, scanner *discovery.Scanner, arg string) (model.AuditSource, error) {
	sources, err := scanner.Sources(ctx)
	if err != nil {
		return model.AuditSource{}, err
	}
	if len(sources) == 0 {
		return model.AuditSource{}, errors.New("no audit sources found; run lynis or check search directories")
	}

	if arg == "latest" {
		for _, src := range sources {
			if src.Readable {
				return src, nil
			}
		}
		return model.AuditSource{}, errors.New("no readable audit source found; elevated privileges may be required")
	}

	if idx, err := strconv.Atoi(arg); err == nil {
		if idx < 1 || idx > len(sources) {
			return model.AuditSource{}, fmt.Errorf("index %d out of range (1-%d)", idx, len(sources))
		}
		return sources[idx-1], nil
	}

	want, err := filepath.Abs(arg)
	if err != nil {
		return model.AuditSource{}, err
	}
	if resolved, err := filepath.EvalSymlinks(want); err == nil {
		want = resolved
	}
	for _, src := range sources {
		if src.Key() == filepath.Clean(want) {
			return src, nil
		}
	}
	return model.AuditSource{}, fmt.Errorf("no audit source at %s (see 'linisreport list')", arg)
}

// openOutput returns the report destination: the given file (with parent
// directories created) or stdout when path is empty. The cleanup function
// is a no-op for stdout.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// describeSource renders one list row.
func describeSource(i int, src model.AuditSource) string {
	state := "readable"
	if !src.Readable {
		state = "unreadable"
		if !src.IsComplete() {
			state = "incomplete"
		}
	}
	return fmt.Sprintf("%3d  %-7s  %-10s  %-19s  %s",
		i+1,
		src.Kind.String(),
		state,
		src.ModTime.Format("2006-01-02 15:04:05"),
		src.RootPath,
	)
}

// listHeader is the column header matching describeSource.
func listHeader() string {
	return fmt.Sprintf("%3s  %-7s  %-10s  %-19s  %s", "#", "KIND", "STATE", "MODIFIED", "PATH") +
		"\n" + strings.Repeat("-", 72)
}
