// Package hyphen applies soft hyphenation to document text. The actual
// dictionary lookup is an external capability supplied through the
// Hyphenator interface; this package only decides which text gets
// hyphenated and splices the results back into the tree.
package hyphen

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/inkpage/htmldoc"
)

// SoftHyphen is the break marker a Hyphenator inserts (U+00AD).
const SoftHyphen = "\u00ad"

// minWordLength is the shortest word worth hyphenating.
const minWordLength = 6

// Hyphenator returns a word with soft-break markers inserted. A language
// code is fixed at construction time by the implementation.
type Hyphenator interface {
	Hyphenate(word string) string
}

// Func adapts a plain function to the Hyphenator interface.
type Func func(word string) string

// Hyphenate calls f.
func (f Func) Hyphenate(word string) string { return f(word) }

// Noop returns words unchanged, for books whose language has no dictionary.
var Noop Hyphenator = Func(func(word string) string { return word })

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Apply hyphenates every prose text node in the subtree, in place.
// Alphanumeric runs shorter than six characters are left alone, and text
// inside non-prose elements (scripts, styles, metadata) is skipped
// entirely. Non-breaking spaces are normalized to plain spaces so the
// layout engine may break lines at them.
func Apply(root *html.Node, h Hyphenator) {
	if h == nil {
		return
	}
	applyNode(root, h)
}

func applyNode(n *html.Node, h Hyphenator) {
	if n.Type == html.ElementNode && htmldoc.IsNonProse(n.Data) {
		return
	}
	if n.Type == html.TextNode {
		if strings.TrimSpace(n.Data) != "" {
			n.Data = hyphenateText(n.Data, h)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		applyNode(c, h)
	}
}

// hyphenateText rewrites one text run.
func hyphenateText(text string, h Hyphenator) string {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	return wordPattern.ReplaceAllStringFunc(text, func(word string) string {
		if len([]rune(word)) < minWordLength {
			return word
		}
		return h.Hyphenate(word)
	})
}
