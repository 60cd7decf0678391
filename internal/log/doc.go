// Package log provides structured logging built on log/slog with a
// redacting handler. Lynis evidence and metadata can embed secrets the
// scanner stumbled over (key material, password hashes, tokens), and those
// must never leak into this tool's own log output.
package log
