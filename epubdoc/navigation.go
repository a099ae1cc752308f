package epubdoc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/inkpage/htmldoc"
)

// ncxXML mirrors an EPUB 2 NCX navigation document.
type ncxXML struct {
	XMLName xml.Name `xml:"ncx"`
	NavMap  struct {
		NavPoints []ncxNavPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

type ncxNavPoint struct {
	Label   string `xml:"navLabel>text"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

// navPoints extracts the flattened table-of-contents anchors, in document
// order. EPUB 3 nav documents are preferred, with EPUB 2 NCX as fallback.
// A book without navigation yields no anchors; chapter titles then fall back
// to headings or synthesized names.
func navPoints(zr *zip.Reader, p *pkg, baseDir string) []NavPoint {
	if item := p.findNav(); item != nil {
		navFile := joinHref(baseDir, item.Href)
		if content, err := readZipFile(zr, navFile); err == nil {
			if points := parseNavDoc(content, navFile); len(points) > 0 {
				return points
			}
		}
	}

	if item := p.findNCX(); item != nil {
		ncxFile := joinHref(baseDir, item.Href)
		if content, err := readZipFile(zr, ncxFile); err == nil {
			if points := parseNCX(content, ncxFile); len(points) > 0 {
				return points
			}
		}
	}

	return nil
}

// parseNavDoc parses an EPUB 3 nav document (XHTML with a toc nav element).
func parseNavDoc(content []byte, navFile string) []NavPoint {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil
	}

	var toc *html.Node
	htmldoc.WalkElements(doc, func(n *html.Node) {
		if toc != nil || n.Data != "nav" {
			return
		}
		for _, attr := range n.Attr {
			if (attr.Key == "epub:type" || attr.Key == "type") && strings.Contains(attr.Val, "toc") {
				toc = n
			}
		}
	})
	if toc == nil {
		return nil
	}

	var points []NavPoint
	htmldoc.WalkElements(toc, func(n *html.Node) {
		if n.Data != "a" {
			return
		}
		href := htmldoc.Attr(n, "href")
		title := htmldoc.TextContent(n)
		if href == "" || title == "" {
			return
		}
		file, fragment := splitHref(navFile, href)
		points = append(points, NavPoint{Title: title, File: file, Fragment: fragment})
	})
	return points
}

// parseNCX parses an EPUB 2 NCX document.
func parseNCX(content []byte, ncxFile string) []NavPoint {
	var ncx ncxXML
	if err := xml.Unmarshal(content, &ncx); err != nil {
		return nil
	}
	var points []NavPoint
	flattenNCX(ncx.NavMap.NavPoints, ncxFile, &points)
	return points
}

func flattenNCX(nps []ncxNavPoint, ncxFile string, out *[]NavPoint) {
	for _, np := range nps {
		title := strings.TrimSpace(np.Label)
		if np.Content.Src != "" && title != "" {
			file, fragment := splitHref(ncxFile, np.Content.Src)
			*out = append(*out, NavPoint{Title: title, File: file, Fragment: fragment})
		}
		flattenNCX(np.Children, ncxFile, out)
	}
}

// splitHref resolves an href relative to the file it appears in and splits
// off the fragment identifier.
func splitHref(baseFile, href string) (file, fragment string) {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href, fragment = href[:i], href[i+1:]
	}
	if decoded, err := url.QueryUnescape(href); err == nil {
		href = decoded
	}
	if href == "" {
		return baseFile, fragment
	}
	return joinHref(path.Dir(baseFile), href), fragment
}

// joinHref resolves a manifest href against a base directory.
func joinHref(baseDir, href string) string {
	if decoded, err := url.QueryUnescape(href); err == nil {
		href = decoded
	}
	if baseDir == "" || baseDir == "." {
		return path.Clean(href)
	}
	return path.Join(baseDir, href)
}
