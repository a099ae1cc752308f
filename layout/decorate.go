package layout

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/inkpage/footnote"
	"github.com/tsawler/inkpage/htmldoc"
	"github.com/tsawler/inkpage/hyphen"
	"github.com/tsawler/inkpage/model"
)

// decorateChapter produces the complete markup document submitted to the
// layout engine for one chapter: a fresh copy of the parse-phase tree with
// footnotes injected, image sources inlined and hyphenation applied, wrapped
// with the book stylesheet and the typographic overrides.
//
// The chapter's own tree is never touched; every render request decorates a
// new copy, since injection mutates the tree.
func decorateChapter(ch *model.Chapter, doc *model.Document, injector *footnote.Injector,
	h hyphen.Hyphenator, cfg model.RenderConfig, pageW, pageH int) []byte {

	work := &model.Chapter{
		Index:  ch.Index,
		Title:  ch.Title,
		Source: ch.Source,
		Root:   htmldoc.CloneTree(ch.Root),
	}

	injector.Inject(work)
	inlineImages(work.Root, doc.Images)
	hyphen.Apply(work.Root, h)

	family := documentFontFamily(cfg)
	var b strings.Builder
	fmt.Fprintf(&b, "<html lang=%q><head>", doc.Language)
	if doc.Stylesheet != "" {
		b.WriteString("<style>")
		b.WriteString(rewriteFontFamily(doc.Stylesheet, family))
		b.WriteString("</style>")
	}
	b.WriteString("<style>")
	b.WriteString(injectedCSS(cfg, pageW, pageH))
	b.WriteString("</style></head><body>")
	b.WriteString(htmldoc.InnerHTML(work.Root))
	b.WriteString("</body></html>")

	return []byte(b.String())
}

// inlineImages replaces every resolvable img src with a data URI so the
// engine needs no filesystem access.
func inlineImages(root *html.Node, images map[string]model.Image) {
	htmldoc.WalkElements(root, func(n *html.Node) {
		if n.Data != "img" {
			return
		}
		src := htmldoc.Attr(n, "src")
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		if decoded, err := url.QueryUnescape(src); err == nil {
			src = decoded
		}
		img, ok := images[path.Base(src)]
		if !ok {
			return
		}
		uri := fmt.Sprintf("data:%s;base64,%s", img.MediaType,
			base64.StdEncoding.EncodeToString(img.Data))
		htmldoc.SetAttr(n, "src", uri)
	})
}
