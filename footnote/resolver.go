// Package footnote resolves a book's internal cross-reference graph and
// rewrites footnote references into inline markers with appended content
// blocks.
package footnote

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/inkpage/htmldoc"
)

// Source is one parsed markup file contributing cross-reference targets.
type Source struct {
	File string // archive path, used as the key prefix
	Root *html.Node
}

// Map holds sanitized inline content for every addressable element in the
// book, keyed by "file#id". It is built once per document and read-only
// afterward; insertion order is retained so fallback lookups are
// deterministic.
type Map struct {
	keys    []string
	entries map[string]string
}

// NewMap returns an empty cross-reference map.
func NewMap() *Map {
	return &Map{entries: make(map[string]string)}
}

// BuildMap extracts a content fragment for every element bearing an
// identifier in every source, independent of spine order. Individual files
// that fail to contribute are simply absent; building never fails.
func BuildMap(sources []Source) *Map {
	m := NewMap()
	for _, src := range sources {
		htmldoc.WalkElements(src.Root, func(n *html.Node) {
			id := htmldoc.Attr(n, "id")
			if id == "" && n.Data == "a" {
				id = htmldoc.Attr(n, "name")
			}
			if id == "" {
				return
			}
			m.add(src.File+"#"+id, contentFor(n))
		})
	}
	return m
}

// add stores an entry unless the key already exists; keys are globally
// unique per document and the first definition wins.
func (m *Map) add(key, markup string) {
	if _, exists := m.entries[key]; exists {
		return
	}
	m.keys = append(m.keys, key)
	m.entries[key] = markup
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.entries)
}

// Resolve looks up a target by source file and anchor id. The exact
// "file#id" key is tried first; when the filename does not match (relative
// links that escaped resolution), the lookup falls back to the first key in
// insertion order ending in "#id". The fallback is best-effort: when several
// files share an anchor id it picks the earliest definition.
func (m *Map) Resolve(file, id string) (string, bool) {
	if id == "" {
		return "", false
	}
	if markup, ok := m.entries[file+"#"+id]; ok {
		return markup, true
	}
	suffix := "#" + id
	for _, key := range m.keys {
		if strings.HasSuffix(key, suffix) {
			return m.entries[key], true
		}
	}
	return "", false
}

// containerTags are the semantic containers a link target is promoted to.
var containerTags = map[string]bool{
	"li": true, "aside": true, "dd": true, "p": true, "div": true,
	"blockquote": true, "section": true, "td": true,
}

// contentFor extracts the sanitized inline markup for an identified element.
//
// If the element is a link, it is promoted to its semantic container; an
// element with no visible text of its own is promoted to its parent once.
// The promoted node's inner markup is then stripped of self-referential
// artifacts (back-links and the footnote's own call-out number); if the
// stripping leaves nothing, the unstripped markup is kept instead.
func contentFor(n *html.Node) string {
	node := n

	if node.Data == "a" {
		if container := closestContainer(node); container != nil {
			node = container
		}
	}
	if htmldoc.TextContent(node) == "" && node.Parent != nil && !isDocumentRoot(node.Parent) {
		node = node.Parent
	}

	clone := htmldoc.CloneTree(node)
	stripSelfReferences(clone)
	if htmldoc.TextContent(clone) != "" {
		return strings.TrimSpace(htmldoc.InnerHTML(clone))
	}
	return strings.TrimSpace(htmldoc.InnerHTML(node))
}

// closestContainer finds the nearest semantic container ancestor, stopping
// at the document root.
func closestContainer(n *html.Node) *html.Node {
	for p := n.Parent; p != nil && !isDocumentRoot(p); p = p.Parent {
		if p.Type == html.ElementNode && containerTags[p.Data] {
			return p
		}
	}
	return nil
}

func isDocumentRoot(n *html.Node) bool {
	if n.Type == html.DocumentNode {
		return true
	}
	return n.Type == html.ElementNode && (n.Data == "body" || n.Data == "html")
}

var (
	backrefText = regexp.MustCompile(`^(\^+|↑|↩|↵|⏎|back|return|go back|back to text)$`)
	ordinalText = regexp.MustCompile(`^(\[\d+\]|\(\d+\)|\d+)\.?$|^\*$`)
)

// stripSelfReferences removes anchors that only point back at the footnote
// call site: explicit back-links, "return" arrows, and the footnote's own
// number, which would otherwise duplicate inside its own content.
func stripSelfReferences(root *html.Node) {
	anchors := htmldoc.CollectElements(root, func(n *html.Node) bool {
		return n.Data == "a"
	})
	for i := len(anchors) - 1; i >= 0; i-- {
		a := anchors[i]
		if isBackLink(a) {
			htmldoc.Detach(a)
		}
	}
}

func isBackLink(a *html.Node) bool {
	epubType := strings.ToLower(htmldoc.Attr(a, "epub:type"))
	if strings.Contains(epubType, "backlink") || strings.Contains(epubType, "referrer") {
		return true
	}
	if strings.ToLower(htmldoc.Attr(a, "role")) == "doc-backlink" {
		return true
	}
	text := strings.ToLower(htmldoc.TextContent(a))
	return backrefText.MatchString(text) || ordinalText.MatchString(text)
}
