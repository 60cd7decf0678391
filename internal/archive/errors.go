package archive

import "errors"

// Archive operation errors. Both are terminal for the one operation that
// produced them and are reported verbatim to the caller; the manager never
// silently retries.
var (
	// ErrSnapshotFailed is returned when a snapshot cannot be created:
	// the source is not Live, a source file is unreadable at copy time,
	// the copy does not verify, or the timestamped destination already
	// exists (a collision; the caller must retry, which picks up a new
	// timestamp).
	ErrSnapshotFailed = errors.New("snapshot failed")

	// ErrDeleteFailed is returned when a snapshot cannot be deleted:
	// the source is Live, lies outside the archive root, or removal was
	// blocked by permissions. Files already removed stay removed; the
	// error reports the partial state.
	ErrDeleteFailed = errors.New("snapshot delete failed")
)
