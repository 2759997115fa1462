package findings

import "strings"

// lineBreaks normalizes CRLF and lone CR so a single split on '\n' covers all
// line endings the upstream service has been seen to emit.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// SplitLines returns the trimmed, non-blank lines of summary in source order.
func SplitLines(summary string) []string {
	if summary == "" {
		return nil
	}
	raw := strings.Split(lineBreaks.Replace(summary), "\n")
	lines := make([]string, 0, len(raw))
	for _, ln := range raw {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}
