// Package model defines the core data structures for Lynis audit data.
// It contains the discovered audit source, the raw report records, the
// merged audit report with its findings, and helpers for diffing two
// audits against each other.
package model
