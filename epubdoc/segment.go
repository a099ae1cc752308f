package epubdoc

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/inkpage/htmldoc"
	"github.com/tsawler/inkpage/model"
)

// maxHeadingTitle is the longest heading text usable as a chapter title.
const maxHeadingTitle = 150

// segmentFile turns one parsed source file into one or more chapters.
//
// With at most one TOC anchor the whole file becomes a single chapter. With
// several anchors the file is split at each anchor's enclosing top-level
// child: the body's direct children are walked in document order and a new
// chapter opens whenever a child is, or contains, the anchor node of the
// next TOC entry. Whitespace-only text nodes attach to whichever chapter is
// open at the time, so concatenating the chapters reproduces the file.
//
// If no anchor beyond the first can be located in the tree, the split
// silently degrades to a single chapter under the first anchor's title.
func segmentFile(doc *html.Node, source string, anchors []NavPoint, sectionNum func() int) []*model.Chapter {
	body := htmldoc.Body(doc)

	if len(anchors) <= 1 {
		title := ""
		if len(anchors) == 1 {
			title = anchors[0].Title
		}
		return []*model.Chapter{newChapter(source, title, adoptChildren(body), sectionNum)}
	}

	// Anchor nodes for every entry after the first; the first entry owns
	// everything up to the second anchor, including any preamble.
	type splitPoint struct {
		node  *html.Node
		title string // pending title for the chapter the split closes
	}
	var splits []splitPoint
	for i := 1; i < len(anchors); i++ {
		if anchors[i].Fragment == "" {
			continue
		}
		if n := htmldoc.FindByID(doc, anchors[i].Fragment); n != nil {
			splits = append(splits, splitPoint{node: n, title: anchors[i].Title})
		}
	}
	if len(splits) == 0 {
		// Broken or relative-target links: whole file, first TOC title.
		return []*model.Chapter{newChapter(source, anchors[0].Title, adoptChildren(body), sectionNum)}
	}

	var chapters []*model.Chapter
	current := htmldoc.NewElement("body")
	pendingTitle := anchors[0].Title
	next := 0

	for c := body.FirstChild; c != nil; {
		sibling := c.NextSibling
		if next < len(splits) && (c == splits[next].node || htmldoc.Contains(c, splits[next].node)) {
			chapters = append(chapters, newChapter(source, pendingTitle, current, sectionNum))
			current = htmldoc.NewElement("body")
			pendingTitle = splits[next].title
			next++
		}
		htmldoc.Detach(c)
		current.AppendChild(c)
		c = sibling
	}
	chapters = append(chapters, newChapter(source, pendingTitle, current, sectionNum))

	return chapters
}

// adoptChildren moves every child of src under a fresh body root, detaching
// the content from the parsed document.
func adoptChildren(src *html.Node) *html.Node {
	root := htmldoc.NewElement("body")
	for c := src.FirstChild; c != nil; {
		sibling := c.NextSibling
		htmldoc.Detach(c)
		root.AppendChild(c)
		c = sibling
	}
	return root
}

// newChapter builds a chapter, resolving the title through the fallback
// chain: TOC title, first short heading, synthesized section name.
func newChapter(source, title string, root *html.Node, sectionNum func() int) *model.Chapter {
	if title == "" {
		title = firstHeadingTitle(root)
	}
	if title == "" {
		title = fmt.Sprintf("Section %d", sectionNum())
	}
	return &model.Chapter{
		Title:     title,
		Source:    source,
		Root:      root,
		HasImages: htmldoc.FindElement(root, "img") != nil,
		Included:  true,
	}
}

// firstHeadingTitle returns the text of the first heading usable as a title.
func firstHeadingTitle(root *html.Node) string {
	title := ""
	htmldoc.WalkElements(root, func(n *html.Node) {
		if title != "" || !isHeading(n.Data) {
			return
		}
		if text := strings.TrimSpace(htmldoc.TextContent(n)); text != "" && len(text) < maxHeadingTitle {
			title = text
		}
	})
	return title
}

func isHeading(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}
