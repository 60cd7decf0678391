package parser

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// testMarkerRE matches Lynis test-announcement lines, e.g.
//
//	2026-01-17 20:29:38 Performing test ID AUTH-9262 (Checking ...)
//
// The leading timestamp is optional and ignored; only the identifier token
// is captured.
var testMarkerRE = regexp.MustCompile(`(?i)Performing test(?: ID)?[: ]+([A-Z][A-Z0-9_]*-[0-9]+)`)

// maxLogLineSize bounds a single log line. Lynis lines are short, but the
// correlator must survive a corrupt or binary-polluted log without giving
// up on the rest of the file.
const maxLogLineSize = 1024 * 1024

// cancelCheckInterval is how many lines the correlator scans between
// context checks. Run logs can reach hundreds of thousands of lines under
// elevated privileges, and the caller may time-bound correlation.
const cancelCheckInterval = 4096

// CorrelateLog scans the run log at path once, top to bottom, and returns
// a mapping from test id to the earliest 1-based line number at which that
// id appears in a test-announcement marker. Later occurrences of the same
// id never overwrite the first: when one test id yields several findings
// they all share the earliest position.
//
// testIDs restricts the result to the given set; a nil set keeps every
// marker encountered, which lets the caller run correlation concurrently
// with report parsing and filter afterwards.
//
// A missing or unreadable log is not a failure of the audit: the correlator
// returns an empty mapping alongside ErrCorrelationUnavailable so the
// caller can degrade every finding to the unknown-line sentinel.
func CorrelateLog(ctx context.Context, path string, testIDs map[string]struct{}) (map[string]int, error) {
	f, err := os.Open(path) //nolint:gosec // Paths come from discovery, not user input
	if err != nil {
		return map[string]int{}, fmt.Errorf("%w: %s: %v", ErrCorrelationUnavailable, path, err)
	}
	defer f.Close()

	lines := make(map[string]int)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return lines, err
			}
		}

		m := testMarkerRE.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		id := strings.ToUpper(m[1])
		if testIDs != nil {
			if _, wanted := testIDs[id]; !wanted {
				continue
			}
		}
		if _, seen := lines[id]; seen {
			continue
		}
		lines[id] = lineNo

		// With a fixed id set we can stop once every pending id is mapped.
		if testIDs != nil && len(lines) == len(testIDs) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		// A read error mid-file keeps whatever was correlated so far; the
		// degradation is reported, not escalated.
		return lines, fmt.Errorf("%w: %s: %v", ErrCorrelationUnavailable, path, err)
	}

	return lines, nil
}
