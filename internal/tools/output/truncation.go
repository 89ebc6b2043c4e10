package output

import (
	"regexp"
	"strings"
)

// TruncationMarker is appended as the last line when output is truncated.
const TruncationMarker = "[Output truncated]"

var lineBreak = regexp.MustCompile(`\r?\n`)

// TruncateLines keeps the first maxLines lines of text and appends
// TruncationMarker as one extra line when anything was dropped. It returns the
// result, whether truncation happened, and the original line count.
//
// Lines end at "\n" or "\r\n". A single trailing line break terminates the
// last line and does not start a new one.
func TruncateLines(text string, maxLines int) (string, bool, int) {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	body := text
	switch {
	case strings.HasSuffix(text, "\r\n"):
		body = text[:len(text)-2]
	case strings.HasSuffix(text, "\n"):
		body = text[:len(text)-1]
	}

	lines := lineBreak.Split(body, -1)
	total := len(lines)
	if total <= maxLines {
		return text, false, total
	}

	kept := append(lines[:maxLines:maxLines], TruncationMarker)
	return strings.Join(kept, "\n"), true, total
}
