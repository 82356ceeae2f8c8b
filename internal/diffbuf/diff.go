// Package diffbuf computes the incrementally new text between two successive
// captures of the same growing or scrolling terminal buffer, and provides a
// bounded line history for callers that want a rolling transcript.
package diffbuf

import "strings"

// Delta returns the text appended to curr since prev, and whether anything
// changed at all.
//
// The anchor is prev's final line, located from the end of curr so repeated
// lines resolve to the most recent occurrence. When the anchor has scrolled
// out of the capture window, Delta falls back to an ordered set difference:
// every line of curr absent from prev, in display order. An empty prev means
// everything in curr is new.
func Delta(prev, curr string) (string, bool) {
	if prev == curr {
		return "", false
	}
	if prev == "" {
		return curr, true
	}

	prevLines := strings.Split(prev, "\n")
	currLines := strings.Split(curr, "\n")

	anchor := lastNonEmpty(prevLines)
	if anchor != "" {
		if idx := lastIndexOf(currLines, anchor); idx >= 0 {
			if idx == len(currLines)-1 {
				// Anchor is still the final line: content above it changed
				// (redraw, spinner) but nothing was appended.
				return "", true
			}
			return strings.Join(currLines[idx+1:], "\n"), true
		}
	}

	// Anchor scrolled out of the window. Report lines not previously seen.
	seen := make(map[string]struct{}, len(prevLines))
	for _, line := range prevLines {
		seen[line] = struct{}{}
	}
	var fresh []string
	for _, line := range currLines {
		if _, ok := seen[line]; !ok {
			fresh = append(fresh, line)
		}
	}
	if len(fresh) == 0 {
		return "", true
	}
	return strings.Join(fresh, "\n"), true
}

// lastNonEmpty returns the last line with content, or "" if none exists.
func lastNonEmpty(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

// lastIndexOf returns the index of the last occurrence of target, or -1.
func lastIndexOf(lines []string, target string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] == target {
			return i
		}
	}
	return -1
}
