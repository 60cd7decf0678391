// Package report renders audit reports for output. It provides a
// human-readable text writer for terminals, a JSON writer whose field
// names are the stable export boundary for external tooling, and a
// Markdown writer for documentation and sharing.
package report
