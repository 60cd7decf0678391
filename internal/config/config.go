package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "linisreport"

	// SystemLiveDir is where Lynis writes its artifacts on a standard
	// system run. Root-owned; reading it usually requires elevated
	// privileges, which is why unreadable sources stay listed instead of
	// disappearing.
	SystemLiveDir = "/var/log"

	// DefaultLogTimeout bounds log correlation per open. Run logs under
	// /var/log can reach hundreds of megabytes on long-lived hosts; after
	// this long the open proceeds with whatever was correlated.
	DefaultLogTimeout = 10 * time.Second

	// DefaultBatchSize is the number of concurrent source loads when
	// opening several audits at once (e.g., for compare).
	DefaultBatchSize = 4
)

// Config holds all configuration options for linisreport.
// It is populated from defaults, the optional config file, and CLI flags,
// then passed through the application by value-ish dependency injection
// rather than global state.
type Config struct {
	// SearchDirs are the live audit roots scanned by discovery, in scan
	// order. Defaults to the system location and the user-local live
	// directory; the config file may append more.
	SearchDirs []string

	// ArchiveRoot is where snapshots are created and discovered.
	ArchiveRoot string

	// HistoryDir is the directory holding the audit history database.
	HistoryDir string

	// LogTimeout bounds log correlation per open. Zero disables the bound.
	LogTimeout time.Duration

	// SkipCorrelation disables run-log correlation entirely; every
	// finding keeps the unknown-line sentinel.
	SkipCorrelation bool

	// BatchSize is the number of concurrent loads for multi-source
	// operations.
	BatchSize int

	// Verbose enables debug-level log output.
	Verbose bool

	// JSONOutput renders reports as JSON. Mutually exclusive with
	// MarkdownOutput.
	JSONOutput bool

	// MarkdownOutput renders reports as Markdown. Mutually exclusive with
	// JSONOutput.
	MarkdownOutput bool

	// OutputFile writes the rendered report to this path instead of
	// stdout. Parent directories are created as needed.
	OutputFile string

	// ConfigFilePath is an explicit config file path. When empty, the
	// file is searched for in the current directory and then the home
	// directory.
	ConfigFilePath string
}

// NewConfig creates a Config with default values: the system live
// location, the user-local live directory, and XDG-resolved archive and
// history roots.
func NewConfig() *Config {
	return &Config{
		SearchDirs:  []string{SystemLiveDir, UserLiveDir()},
		ArchiveRoot: ArchiveDir(),
		HistoryDir:  XDGDataDir(),
		LogTimeout:  DefaultLogTimeout,
		BatchSize:   DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for linisreport.
// On Linux: ~/.local/share/linisreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// UserLiveDir returns the user-local live audit directory, for audits run
// without root against a user-writable log location.
// On Linux: ~/.local/share/linisreport/audits
func UserLiveDir() string {
	return filepath.Join(XDGDataDir(), "audits")
}

// ArchiveDir returns the snapshot archive root.
// On Linux: ~/.local/share/linisreport/snapshots
func ArchiveDir() string {
	return filepath.Join(XDGDataDir(), "snapshots")
}

// Validate checks the configuration and returns a specific error
// describing the first problem found.
func (c *Config) Validate() error {
	if len(c.SearchDirs) == 0 {
		return ErrNoSearchDirs
	}
	if c.ArchiveRoot == "" {
		return ErrNoArchiveRoot
	}
	if c.LogTimeout < 0 {
		return ErrInvalidLogTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONOutput && c.MarkdownOutput {
		return ErrConflictingOutputFormats
	}
	return nil
}

// ApplyFile merges config-file settings into the configuration.
// File-provided search directories are appended after the defaults; an
// archive root in the file replaces the default.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.SearchDirs = append(c.SearchDirs, f.SearchDirs...)
	if f.ArchiveRoot != "" {
		c.ArchiveRoot = f.ArchiveRoot
	}
	if f.LogTimeout > 0 {
		c.LogTimeout = f.LogTimeout
	}
}
