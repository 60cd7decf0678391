// Package archive creates and deletes timestamped snapshots of live audit
// sources. Snapshots copy the report/log pair byte for byte into a
// per-snapshot directory under the archive root and verify the copy with a
// content digest; deletion refuses anything that is not a managed snapshot
// so the system's own audit data can never be destroyed.
package archive
