package parser

import (
	"fmt"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// readUTF8File reads the file at path and validates that its contents are
// well-formed UTF-8. Both Lynis artifacts are specified as UTF-8 text;
// anything else means the file is corrupt or not a Lynis artifact at all,
// so the caller treats it as unreadable rather than guessing an encoding.
//
// Design decision: We validate with x/text's UTF8Validator transformer
// instead of utf8.Valid because it reports the failure as an error value
// we can wrap, and it keeps the door open for charset fallbacks should a
// future Lynis release change its output encoding.
func readUTF8File(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Paths come from discovery, not user input
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, path, err)
	}

	out, _, err := transform.Bytes(encoding.UTF8Validator, data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, path, err)
	}
	return string(out), nil
}
