// Package loader turns a discovered audit source into an immutable audit
// report. It runs the report parser and the log correlator concurrently,
// merges their output, and coalesces duplicate in-flight opens of the same
// source so an impatient caller can never race two parses of one audit.
package loader
