package layout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tsawler/inkpage/model"
)

// customFontFamily is the family name the injected @font-face registers.
const customFontFamily = `"CustomFont"`

var fontFamilyDecl = regexp.MustCompile(`font-family\s*:\s*[^;!}]+`)

// rewriteFontFamily forces every font-family declaration in the book's own
// stylesheet to the injected family, so the engine never falls back to fonts
// the device does not ship.
func rewriteFontFamily(css, family string) string {
	return fontFamilyDecl.ReplaceAllString(css, "font-family: "+family)
}

// injectedCSS builds the typographic override stylesheet for one render
// request: the page box, the forced body typography, image constraints and
// centered headings.
func injectedCSS(cfg model.RenderConfig, pageW, pageH int) string {
	family := "serif"
	fontFace := ""
	if cfg.FontPath != "" {
		family = customFontFamily
		fontFace = fmt.Sprintf("@font-face { font-family: %s; src: url(%q); }\n",
			customFontFamily, strings.ReplaceAll(cfg.FontPath, `\`, "/"))
	}

	headingWeight := cfg.FontWeight + 200
	if headingWeight > 900 {
		headingWeight = 900
	}

	var b strings.Builder
	b.WriteString(fontFace)
	fmt.Fprintf(&b, "@page { size: %dpx %dpx; margin: 0; }\n", pageW, pageH)
	fmt.Fprintf(&b, `body, p, div, span, li, blockquote, dd, dt {
	font-family: %s !important;
	font-size: %dpx !important;
	font-weight: %d !important;
	line-height: %g !important;
	text-align: %s !important;
	color: black !important;
	overflow-wrap: break-word;
}
`, family, cfg.FontSize, cfg.FontWeight, cfg.LineHeight, cfg.TextAlign)
	fmt.Fprintf(&b, `body {
	margin: 0 !important;
	padding: %dpx !important;
	background-color: white !important;
}
`, cfg.Margin)
	b.WriteString("img { max-width: 95% !important; height: auto !important; display: block; margin: 20px auto !important; }\n")
	fmt.Fprintf(&b, "h1, h2, h3 { text-align: center !important; margin-top: 1em; font-weight: %d !important; }\n", headingWeight)
	b.WriteString("aside.footnote { font-size: 80% !important; border-top: 1px solid black; margin-top: 0.5em; padding-top: 0.25em; }\n")

	return b.String()
}

// documentFontFamily returns the family the book stylesheet is rewritten to.
func documentFontFamily(cfg model.RenderConfig) string {
	if cfg.FontPath != "" {
		return customFontFamily
	}
	return "serif"
}
