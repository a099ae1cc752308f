// Package model defines the shared value types for the conversion pipeline:
// the parsed book (Document, Chapter), the navigation artifacts produced by
// pagination (TOCEntry, PageRef), and the immutable RenderConfig threaded
// through layout and overlay composition.
package model
