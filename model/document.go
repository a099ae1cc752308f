package model

import (
	"golang.org/x/net/html"
)

// Document represents a fully parsed book. It is immutable after the parse
// phase except for the chapter Included flags, which callers may toggle
// before rendering.
type Document struct {
	Title      string
	Language   string // BCP 47, normalized; "en" when the book declares none
	Stylesheet string // concatenated text of every stylesheet in the book
	Images     map[string]Image
	Chapters   []*Chapter
}

// Image is an embedded raster resource, keyed in Document.Images by base
// filename so relative src attributes can be resolved without path math.
type Image struct {
	MediaType string
	Data      []byte
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{
		Images:   make(map[string]Image),
		Chapters: make([]*Chapter, 0),
	}
}

// AddChapter appends a chapter in reading order.
func (d *Document) AddChapter(c *Chapter) {
	c.Index = len(d.Chapters)
	d.Chapters = append(d.Chapters, c)
}

// ChapterCount returns the number of chapters.
func (d *Document) ChapterCount() int {
	return len(d.Chapters)
}

// IncludedCount returns the number of chapters currently selected for
// navigation. Selection never affects pagination, only TOC membership.
func (d *Document) IncludedCount() int {
	n := 0
	for _, c := range d.Chapters {
		if c.Included {
			n++
		}
	}
	return n
}

// Chapter is one navigable unit of the book. The markup tree is owned
// exclusively by the chapter; it is read, decorated and serialized during the
// render phase but never mutated afterward.
type Chapter struct {
	Index     int
	Title     string
	Source    string // originating file path inside the archive
	Root      *html.Node
	HasImages bool
	Included  bool // present in the TOC and the current-chapter lookup
}
