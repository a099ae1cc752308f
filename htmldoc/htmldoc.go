// Package htmldoc provides the DOM utilities shared by the parse and render
// phases: parsing, serialization, node search and the small set of tree
// mutations the pipeline performs.
package htmldoc

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses a full HTML document.
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// ParseString parses a full HTML document from a string.
func ParseString(s string) (*html.Node, error) {
	return Parse(strings.NewReader(s))
}

// ParseFragment parses markup in body context and returns the top-level
// nodes.
func ParseFragment(s string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	return nodes, nil
}

// Render serializes a node to markup.
func Render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML serializes a node's children, without the node itself.
func InnerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// Body returns the body element, or the root itself when there is none.
func Body(n *html.Node) *html.Node {
	if body := FindElement(n, "body"); body != nil {
		return body
	}
	return n
}

// FindElement finds the first element with the given tag name, depth first.
func FindElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// FindByID finds the element carrying the given identifier, either as an id
// attribute or as the name attribute of an anchor.
func FindByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		if Attr(n, "id") == id {
			return n
		}
		if n.Data == "a" && Attr(n, "name") == id {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// Contains reports whether target is root or a descendant of root.
func Contains(root, target *html.Node) bool {
	for n := target; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// ClassTokens returns the element's class attribute split into tokens.
func ClassTokens(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClassToken reports whether any class token satisfies match.
func HasClassToken(n *html.Node, match func(string) bool) bool {
	for _, tok := range ClassTokens(n) {
		if match(strings.ToLower(tok)) {
			return true
		}
	}
	return false
}

// nonProseTags are elements whose text never reaches the reader.
var nonProseTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"head": true, "title": true, "meta": true,
}

// IsNonProse reports whether text inside this element is markup plumbing
// rather than reading content.
func IsNonProse(tag string) bool {
	return nonProseTags[tag]
}

// TextContent extracts the visible text of a node and its descendants,
// skipping non-prose elements.
func TextContent(n *html.Node) string {
	var b strings.Builder
	appendText(n, &b)
	return strings.TrimSpace(b.String())
}

func appendText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode && IsNonProse(n.Data) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(c, b)
	}
}

// IsWhitespaceText reports whether the node is a text node containing only
// whitespace.
func IsWhitespaceText(n *html.Node) bool {
	return n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}

// CloneTree deep-copies a subtree. The copy shares no nodes with the
// original, so decorating the copy cannot alias the source.
func CloneTree(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = make([]html.Attribute, len(n.Attr))
		copy(clone.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(CloneTree(c))
	}
	return clone
}

// Detach removes a node from its parent, if any.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// InsertAfter inserts n as the next sibling of ref.
func InsertAfter(ref, n *html.Node) {
	if ref.Parent == nil {
		return
	}
	if ref.NextSibling != nil {
		ref.Parent.InsertBefore(n, ref.NextSibling)
	} else {
		ref.Parent.AppendChild(n)
	}
}

// ReplaceNode swaps old for n in old's parent.
func ReplaceNode(old, n *html.Node) {
	if old.Parent == nil {
		return
	}
	old.Parent.InsertBefore(n, old)
	old.Parent.RemoveChild(old)
}

// NewElement creates a detached element node.
func NewElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// NewText creates a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// WalkElements visits every element in the subtree in document order. The
// visitor must not detach the node it is handed.
func WalkElements(root *html.Node, visit func(*html.Node)) {
	if root.Type == html.ElementNode {
		visit(root)
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		WalkElements(c, visit)
	}
}

// CollectElements returns all elements in the subtree satisfying keep, in
// document order. The slice is safe to iterate in reverse while mutating the
// tree, since it is snapshotted up front.
func CollectElements(root *html.Node, keep func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	WalkElements(root, func(n *html.Node) {
		if keep(n) {
			out = append(out, n)
		}
	})
	return out
}
