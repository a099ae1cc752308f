package model

// TOCEntry maps a chapter title to its 1-indexed starting page in the final
// book, after the table of contents' own pages have been accounted for.
type TOCEntry struct {
	Title     string
	StartPage int
}

// PageRef locates one output page inside its chapter. The flattened PageRef
// sequence, in chapter order, plus the TOC page count defines the global page
// index used by footers, the progress bar and the export path.
type PageRef struct {
	Chapter int // index into Document.Chapters
	Page    int // 0-indexed page within the chapter
}
