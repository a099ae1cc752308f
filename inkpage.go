// Package inkpage converts EPUB books into device-ready 1-bit raster pages
// packed in the XTC container format.
//
// Basic usage:
//
//	book, err := inkpage.Open("novel.epub")
//	if err != nil {
//	    // handle error
//	}
//	rendered, err := book.WithEngine(engine).Render(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if err := rendered.WriteXTC(ctx, out); err != nil {
//	    // handle error
//	}
//
// With options:
//
//	cfg := model.DefaultConfig().Landscape()
//	rendered, err := inkpage.Must(inkpage.Open("novel.epub")).
//	    WithEngine(engine).
//	    WithHyphenator(hyph).
//	    WithConfig(cfg).
//	    Select(0, 2, 5).
//	    Render(ctx)
//
// For lower-level access the epubdoc, layout and xtc packages are also
// available.
package inkpage

import (
	"errors"
	"io"

	"github.com/tsawler/inkpage/epubdoc"
	"github.com/tsawler/inkpage/footnote"
	"github.com/tsawler/inkpage/hyphen"
	"github.com/tsawler/inkpage/layout"
	"github.com/tsawler/inkpage/model"
)

// ErrNoEngine is returned by Render when no layout engine was configured.
var ErrNoEngine = errors.New("inkpage: no layout engine configured")

// Book is a parsed EPUB plus the render settings accumulated through the
// fluent configuration calls. The parsed document is read-only; only the
// chapter selection and render settings change between renders.
type Book struct {
	doc      *model.Document
	refs     *footnote.Map
	warnings []string

	engine layout.Engine
	hyph   hyphen.Hyphenator
	cfg    model.RenderConfig
}

// Open parses an EPUB file from a path.
func Open(path string) (*Book, error) {
	eb, err := epubdoc.Open(path)
	if err != nil {
		return nil, err
	}
	return newBook(eb), nil
}

// OpenReader parses an EPUB from an io.ReaderAt, for callers that manage the
// file themselves.
func OpenReader(r io.ReaderAt, size int64) (*Book, error) {
	eb, err := epubdoc.OpenReader(r, size)
	if err != nil {
		return nil, err
	}
	return newBook(eb), nil
}

func newBook(eb *epubdoc.Book) *Book {
	return &Book{
		doc:      eb.Document,
		refs:     eb.Refs,
		warnings: eb.Warnings,
		cfg:      model.DefaultConfig(),
	}
}

// WithEngine sets the external layout engine used for pagination.
func (b *Book) WithEngine(e layout.Engine) *Book {
	b.engine = e
	return b
}

// WithHyphenator sets the hyphenator applied to chapter text before layout.
func (b *Book) WithHyphenator(h hyphen.Hyphenator) *Book {
	b.hyph = h
	return b
}

// WithConfig replaces the render configuration.
func (b *Book) WithConfig(cfg model.RenderConfig) *Book {
	b.cfg = cfg
	return b
}

// Select marks exactly the given chapter indexes as selected. Selection
// controls table-of-contents membership and the overlay's current-chapter
// lookup only; every chapter is paginated and exported regardless.
func (b *Book) Select(indexes ...int) *Book {
	selected := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		selected[i] = true
	}
	for i, ch := range b.doc.Chapters {
		ch.Included = selected[i]
	}
	return b
}

// SelectAll marks every chapter as selected.
func (b *Book) SelectAll() *Book {
	for _, ch := range b.doc.Chapters {
		ch.Included = true
	}
	return b
}

// Title returns the book's declared title.
func (b *Book) Title() string { return b.doc.Title }

// Language returns the book's normalized language tag.
func (b *Book) Language() string { return b.doc.Language }

// Chapters exposes the segmented chapters. Callers may toggle the Included
// flag between renders; the markup itself must not be mutated.
func (b *Book) Chapters() []*model.Chapter { return b.doc.Chapters }

// Warnings lists files skipped during parsing in degraded-but-usable
// situations.
func (b *Book) Warnings() []string { return b.warnings }

// Config returns the current render configuration.
func (b *Book) Config() model.RenderConfig { return b.cfg }

// Must is a helper that wraps a call returning (T, error) and panics if the
// error is non-nil. It is intended for scripts and tests.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
