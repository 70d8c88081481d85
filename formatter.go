package html2md

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSeparator separates sections of the assembled document.
const DefaultSeparator = "---"

// FormatOptions controls document assembly.
type FormatOptions struct {
	// Separator is written after every section. Empty omits it.
	Separator string

	// AddHeaders prefixes every section with "# {title}".
	AddHeaders bool
}

// Assemble renders a completed state as one Markdown document.
// Sections appear in sequence-index order. A failed file keeps its slot and
// is rendered as a placeholder comment naming the source file and error.
func Assemble(state *State, opts FormatOptions) (string, error) {
	if state == nil {
		return "", Errorf(EINTERNAL, "nil pipeline state")
	}
	if !state.Complete() {
		return "", Errorf(EINTERNAL, "pipeline state incomplete: %d of %d results", state.Completed, len(state.Results))
	}

	var b strings.Builder
	for _, r := range state.Results {
		if opts.AddHeaders {
			b.WriteString("# ")
			b.WriteString(sectionTitle(r))
			b.WriteString("\n\n")
		}
		if r.OK() {
			b.WriteString(strings.TrimSpace(r.Markdown))
		} else {
			b.WriteString(FailurePlaceholder(r))
		}
		b.WriteString("\n\n")
		if opts.Separator != "" {
			b.WriteString(opts.Separator)
			b.WriteString("\n\n")
		}
	}
	return b.String(), nil
}

// FailurePlaceholder returns the comment written in place of a failed file.
func FailurePlaceholder(r *Result) string {
	return "<!-- html2md: conversion failed for " + commentSafe(sourceName(r)) + ": " + commentSafe(FailureReason(r)) + " -->"
}

// FailureReason describes why r failed. Application errors contribute their
// message only. A transient error that outlasted its retries is prefixed
// with the number of attempts made.
func FailureReason(r *Result) string {
	if r.Err == nil {
		return "unknown error"
	}
	var e *Error
	if !errors.As(r.Err, &e) {
		return r.Err.Error()
	}
	if r.Attempts > 1 && IsTransient(e) {
		return fmt.Sprintf("gave up after %d attempts: %s", r.Attempts, e.Message)
	}
	return e.Message
}

func sectionTitle(r *Result) string {
	if r.Title != "" {
		return r.Title
	}
	return CleanFilename(sourceName(r))
}

func sourceName(r *Result) string {
	if r.File == nil {
		return "unknown"
	}
	return r.File.Name()
}

// commentSafe keeps text from terminating an HTML comment early.
func commentSafe(s string) string {
	s = strings.ReplaceAll(s, "--", "- -")
	return strings.Join(strings.Fields(s), " ")
}
