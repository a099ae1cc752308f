package epubdoc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/language"

	"github.com/tsawler/inkpage/footnote"
	"github.com/tsawler/inkpage/htmldoc"
	"github.com/tsawler/inkpage/model"
)

// minStandaloneText is the least body text a spine file not addressed by the
// TOC must contain to survive as a chapter. Shorter image-free files are
// treated as decorative filler and dropped from the book.
const minStandaloneText = 50

// Book is the result of the parse phase: the document model plus the
// cross-reference map built from every source file. Both are read-only after
// Open returns and safe to share across concurrent renders.
type Book struct {
	Document *model.Document
	Refs     *footnote.Map

	// Warnings lists files that were skipped in degraded-but-usable
	// situations; fatal conditions are returned as errors instead.
	Warnings []string
}

// Open opens an EPUB file from a path.
func Open(filePath string) (*Book, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, ErrInvalidArchive
	}
	defer zr.Close()

	return load(&zr.Reader)
}

// OpenReader opens an EPUB from an io.ReaderAt.
func OpenReader(ra ReaderAt, size int64) (*Book, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, ErrInvalidArchive
	}
	return load(zr)
}

// ReaderAt is the random-access source OpenReader consumes.
type ReaderAt interface {
	ReadAt(p []byte, off int64) (int, error)
}

// load parses the archive into a Book. Errors here are fatal; per-file
// problems degrade per the recovery policy and surface as warnings.
func load(zr *zip.Reader) (*Book, error) {
	if err := checkDRM(zr); err != nil {
		return nil, err
	}

	opfName, err := opfPath(zr)
	if err != nil {
		return nil, err
	}
	p, baseDir, err := parseOPF(zr, opfName)
	if err != nil {
		return nil, err
	}

	doc := model.NewDocument()
	doc.Title = p.Metadata.Title
	doc.Language = normalizeLanguage(p.Metadata.Language)
	doc.Stylesheet = collectStylesheets(zr, p, baseDir)
	collectImages(zr, p, baseDir, doc)

	nav := navPoints(zr, p, baseDir)
	anchorsByFile := make(map[string][]NavPoint)
	for _, np := range nav {
		anchorsByFile[np.File] = append(anchorsByFile[np.File], np)
	}

	book := &Book{Document: doc}
	var sources []footnote.Source
	sectionNum := func() int { return len(doc.Chapters) + 1 }

	for _, idref := range p.Spine {
		item, ok := p.Manifest[idref]
		if !ok || !isMarkup(item.MediaType) {
			continue
		}
		href := joinHref(baseDir, item.Href)

		content, err := readZipFile(zr, href)
		if err != nil {
			book.Warnings = append(book.Warnings, fmt.Sprintf("missing spine file %s", href))
			continue
		}
		parsed, err := htmldoc.Parse(bytes.NewReader(content))
		if err != nil {
			book.Warnings = append(book.Warnings, fmt.Sprintf("unparseable spine file %s", href))
			continue
		}

		// Snapshot for cross-reference resolution before segmentation
		// detaches the children.
		sources = append(sources, footnote.Source{File: href, Root: htmldoc.CloneTree(parsed)})

		anchors := anchorsByFile[href]
		if len(anchors) == 0 && isDecorative(parsed) {
			book.Warnings = append(book.Warnings, fmt.Sprintf("dropped decorative file %s", href))
			continue
		}

		for _, ch := range segmentFile(parsed, href, anchors, sectionNum) {
			doc.AddChapter(ch)
		}
	}

	if len(doc.Chapters) == 0 {
		return nil, ErrEmptySpine
	}

	// Non-spine markup files (endnote collections and the like) still
	// contribute cross-reference targets.
	sources = append(sources, nonSpineSources(zr, p, baseDir)...)
	book.Refs = footnote.BuildMap(sources)

	return book, nil
}

// isDecorative reports whether a file outside the TOC carries too little
// content to be worth a chapter.
func isDecorative(parsed *html.Node) bool {
	if htmldoc.FindElement(parsed, "img") != nil {
		return false
	}
	return len(htmldoc.TextContent(htmldoc.Body(parsed))) < minStandaloneText
}

// normalizeLanguage canonicalizes the book's declared language, defaulting
// to English when it is missing or malformed.
func normalizeLanguage(lang string) string {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return "en"
	}
	return tag.String()
}

// collectStylesheets concatenates every stylesheet in the manifest, in href
// order so the result is deterministic.
func collectStylesheets(zr *zip.Reader, p *pkg, baseDir string) string {
	var hrefs []string
	for _, item := range p.Manifest {
		if item.MediaType == "text/css" {
			hrefs = append(hrefs, joinHref(baseDir, item.Href))
		}
	}
	sort.Strings(hrefs)

	var sheets []string
	for _, href := range hrefs {
		if data, err := readZipFile(zr, href); err == nil {
			sheets = append(sheets, string(data))
		}
	}
	return strings.Join(sheets, "\n")
}

// collectImages loads every raster resource, keyed by base filename.
func collectImages(zr *zip.Reader, p *pkg, baseDir string, doc *model.Document) {
	for _, item := range p.Manifest {
		if !strings.HasPrefix(item.MediaType, "image/") {
			continue
		}
		href := joinHref(baseDir, item.Href)
		data, err := readZipFile(zr, href)
		if err != nil {
			continue
		}
		doc.Images[path.Base(href)] = model.Image{MediaType: item.MediaType, Data: data}
	}
}

// nonSpineSources parses manifest markup files that are not part of the
// spine. Parse failures are swallowed: such a file simply contributes no
// cross-reference entries.
func nonSpineSources(zr *zip.Reader, p *pkg, baseDir string) []footnote.Source {
	inSpine := make(map[string]bool, len(p.Spine))
	for _, idref := range p.Spine {
		inSpine[idref] = true
	}

	var hrefs []string
	for id, item := range p.Manifest {
		if inSpine[id] || !isMarkup(item.MediaType) {
			continue
		}
		hrefs = append(hrefs, joinHref(baseDir, item.Href))
	}
	sort.Strings(hrefs)

	var sources []footnote.Source
	for _, href := range hrefs {
		content, err := readZipFile(zr, href)
		if err != nil {
			continue
		}
		parsed, err := htmldoc.Parse(bytes.NewReader(content))
		if err != nil {
			continue
		}
		sources = append(sources, footnote.Source{File: href, Root: parsed})
	}
	return sources
}

// isMarkup reports whether a manifest media type is a content document.
func isMarkup(mediaType string) bool {
	return mediaType == "application/xhtml+xml" || mediaType == "text/html"
}
