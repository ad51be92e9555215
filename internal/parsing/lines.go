// Package parsing holds the small text helpers shared by the text-based
// extractors.
package parsing

import (
	"strings"
)

// Lines splits text after every '\n', keeping the terminators.
//
// A trailing line without a terminator is kept; "\r\n" stays intact on the
// line it ends. Empty text has no lines.
func Lines(text string) []string {
	if text == "" {
		return []string{}
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// LayoutKind classifies INI-style text before it is parsed.
type LayoutKind int

const (
	// LayoutBlank has no line other than blanks and comments.
	LayoutBlank LayoutKind = iota
	// LayoutSectioned starts with a bracketed section header.
	LayoutSectioned
	// LayoutSectionless has content before any section header.
	LayoutSectionless
)

// ClassifyINI looks at the first significant line of text: a line that is
// neither blank nor a '#' or ';' comment.
func ClassifyINI(text string) LayoutKind {
	for _, line := range Lines(text) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") {
			return LayoutSectioned
		}
		return LayoutSectionless
	}
	return LayoutBlank
}

var keyReplacer = strings.NewReplacer("/", "_", `\`, "_")

// SanitizeKey replaces path separators with underscores.
func SanitizeKey(s string) string {
	return keyReplacer.Replace(s)
}
