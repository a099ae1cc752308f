package footnote

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/inkpage/htmldoc"
	"github.com/tsawler/inkpage/model"
)

// footnoteBlockTokens mark elements whose descendants are already inside a
// footnote, endnote or bibliography block and must not be re-injected.
var footnoteBlockTokens = map[string]bool{
	"footnote": true, "footnotes": true,
	"endnote": true, "endnotes": true,
	"bibliography": true,
}

// noterefTokens are class names that explicitly mark a link as a footnote
// reference.
var noterefTokens = map[string]bool{
	"footnote": true, "fn": true, "fnref": true,
	"noteref": true, "note-ref": true, "footnote-ref": true,
}

// A decimal reference may be bare or wrapped in matching brackets or parens.
// Roman numerals must be wrapped: bare roman-letter runs collide with
// ordinary words ("mill", "dim", "civic").
var (
	decimalRef = regexp.MustCompile(`^(\[\d+\]|\(\d+\)|\d+)$`)
	romanRef   = regexp.MustCompile(`^(\[[ivxlcdm]+\]|\([ivxlcdm]+\))$`)
)

// blockTags are the block-level ancestors a footnote body is inserted after.
var blockTags = map[string]bool{
	"p": true, "li": true, "blockquote": true, "dd": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Injector rewrites footnote references in chapter markup. It is stateless
// apart from the shared read-only cross-reference map, so one injector may
// decorate chapters concurrently.
type Injector struct {
	refs *Map
}

// NewInjector creates an injector over a built cross-reference map.
func NewInjector(refs *Map) *Injector {
	return &Injector{refs: refs}
}

// Inject rewrites every footnote-like link in the chapter into a superscript
// marker plus an appended content block, in place. Links that cannot be
// resolved become plain inert text; links that are not footnote references
// are left untouched. The operation is idempotent: a decorated chapter
// passes through unchanged. It returns the number of footnotes injected.
//
// Inject mutates the chapter's tree; a new render request must operate on a
// fresh copy of the parse-phase tree.
func (in *Injector) Inject(ch *model.Chapter) int {
	links := htmldoc.CollectElements(ch.Root, func(n *html.Node) bool {
		return n.Data == "a" && htmldoc.Attr(n, "href") != ""
	})

	injected := 0
	// Reverse document order, so structural edits never invalidate a link
	// we have not visited yet.
	for i := len(links) - 1; i >= 0; i-- {
		link := links[i]
		text := htmldoc.TextContent(link)

		if text == "" && htmldoc.FindElement(link, "sup") == nil {
			continue
		}
		if insideFootnoteBlock(link) {
			continue
		}
		if !isFootnoteRef(link, text) {
			continue
		}

		markup, ok := in.resolve(ch.Source, htmldoc.Attr(link, "href"))
		if !ok {
			htmldoc.ReplaceNode(link, htmldoc.NewText(text))
			continue
		}

		label := text
		if label == "" {
			label = "*"
		}
		marker := htmldoc.NewElement("sup")
		htmldoc.SetAttr(marker, "class", "noteref")
		marker.AppendChild(htmldoc.NewText(label))
		htmldoc.ReplaceNode(link, marker)

		htmldoc.InsertAfter(enclosingBlock(marker), buildNoteBlock(label, markup))
		injected++
	}
	return injected
}

// insideFootnoteBlock reports whether any ancestor carries a class token
// marking an existing footnote, endnote or bibliography block.
func insideFootnoteBlock(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if htmldoc.HasClassToken(p, func(tok string) bool { return footnoteBlockTokens[tok] }) {
			return true
		}
	}
	return false
}

// isFootnoteRef classifies a link as a footnote reference: explicit semantic
// markers first, then class tokens, then the visible-text heuristics.
func isFootnoteRef(link *html.Node, text string) bool {
	epubType := strings.ToLower(htmldoc.Attr(link, "epub:type"))
	if strings.Contains(epubType, "noteref") {
		return true
	}
	if strings.ToLower(htmldoc.Attr(link, "role")) == "doc-noteref" {
		return true
	}
	if htmldoc.HasClassToken(link, func(tok string) bool { return noterefTokens[tok] }) {
		return true
	}
	if text == "" {
		// Bare superscript with no text; explicit markers only.
		return false
	}
	if decimalRef.MatchString(text) || text == "*" {
		return true
	}
	return romanRef.MatchString(text)
}

// resolve maps a link destination to sanitized footnote markup via the
// cross-reference map.
func (in *Injector) resolve(chapterSource, href string) (string, bool) {
	if strings.Contains(href, "://") || strings.HasPrefix(href, "mailto:") {
		return "", false
	}
	fileRef, id := href, ""
	if i := strings.IndexByte(href, '#'); i >= 0 {
		fileRef, id = href[:i], href[i+1:]
	}
	if decoded, err := url.QueryUnescape(fileRef); err == nil {
		fileRef = decoded
	}

	file := chapterSource
	if fileRef != "" {
		file = path.Join(path.Dir(chapterSource), fileRef)
	}
	return in.refs.Resolve(file, id)
}

// enclosingBlock returns the nearest block-level ancestor to insert the
// footnote body after, or the marker itself when there is none.
func enclosingBlock(marker *html.Node) *html.Node {
	for p := marker.Parent; p != nil && !isDocumentRoot(p); p = p.Parent {
		if p.Type == html.ElementNode && blockTags[p.Data] {
			return p
		}
	}
	return marker
}

// buildNoteBlock assembles the labeled content block inserted after the
// reference's enclosing block. The "footnote" class keeps links inside it
// from being re-injected on a second pass.
func buildNoteBlock(label, markup string) *html.Node {
	aside := htmldoc.NewElement("aside")
	htmldoc.SetAttr(aside, "class", "footnote")
	htmldoc.SetAttr(aside, "epub:type", "footnote")

	sup := htmldoc.NewElement("sup")
	sup.AppendChild(htmldoc.NewText(label + " "))
	aside.AppendChild(sup)

	nodes, err := htmldoc.ParseFragment(markup)
	if err != nil {
		aside.AppendChild(htmldoc.NewText(markup))
		return aside
	}
	for _, n := range nodes {
		aside.AppendChild(n)
	}
	return aside
}
