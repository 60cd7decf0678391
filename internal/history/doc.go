// Package history provides SQLite-based storage of previously opened
// audits. Each saved audit stores a summary row plus its finding
// fingerprints, which is what the compare command needs to show new,
// resolved, and persistent findings across runs of the same host.
package history
