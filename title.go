package html2md

import (
	"html"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	titleHeadingRe   = regexp.MustCompile(`^#[ \t]+(.+?)[ \t]*#*[ \t]*$`)
	reservedCharsRe  = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRunsRe = regexp.MustCompile(`\s+`)
)

// SplitTitle separates a leading level-1 heading from the rest of a
// Markdown document. If the first non-blank line is not a level-1 heading,
// title is empty and body is the input unchanged.
func SplitTitle(markdown string) (title, body string) {
	trimmed := strings.TrimLeft(markdown, " \t\r\n")
	first, rest, _ := strings.Cut(trimmed, "\n")
	m := titleHeadingRe.FindStringSubmatch(strings.TrimRight(first, "\r"))
	if m == nil {
		return "", markdown
	}
	return strings.TrimSpace(m[1]), strings.TrimLeft(rest, "\r\n")
}

// CleanFilename turns a file name into a heading.
// It drops the extension, replaces underscores with spaces, decodes HTML
// entities, removes characters reserved on common filesystems and collapses
// whitespace. Falls back to the base name if nothing is left.
func CleanFilename(name string) string {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	s := strings.ReplaceAll(stem, "_", " ")
	s = html.UnescapeString(s)
	s = reservedCharsRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespaceRunsRe.ReplaceAllString(s, " "))
	if s == "" {
		return base
	}
	return s
}
