// Package parser decodes the two Lynis artifacts that make up one audit:
// the key/value report file (lynis-report.dat) and the free-form run log
// (lynis.log). Report parsing is strict about never aborting on malformed
// input; log correlation is strictly best-effort and degrades to an empty
// mapping when the log is missing or unreadable.
package parser
