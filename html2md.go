// Package html2md converts a directory of HTML documents into a single
// ordered Markdown document. Each file is cleaned locally and converted by a
// remote text-generation service; results are assembled strictly in the
// chronological order of the source files, regardless of which conversion
// finishes first.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., gemini/, goquery/, viper/).
package html2md
