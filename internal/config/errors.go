package config

import "errors"

// Configuration validation errors returned by Config.Validate().
//
// Design decision: Package-level sentinel errors so callers can classify
// with errors.Is() while the messages stay human-readable.
var (
	// ErrNoSearchDirs is returned when no live audit root is configured.
	ErrNoSearchDirs = errors.New("no search directories configured")

	// ErrNoArchiveRoot is returned when the snapshot archive root is empty.
	ErrNoArchiveRoot = errors.New("no archive root configured")

	// ErrInvalidLogTimeout is returned when the correlation timeout is
	// negative. Use 0 to disable the bound.
	ErrInvalidLogTimeout = errors.New("invalid log timeout: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingOutputFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingOutputFormats = errors.New("conflicting output formats: --json and --markdown cannot be used together")
)
