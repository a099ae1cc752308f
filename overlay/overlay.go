// Package overlay composes the header and footer bands onto rendered pages:
// text elements (title, page counters, percentage) laid out per the render
// configuration, and a progress bar with chapter tick marks and an optional
// position marker.
package overlay

import (
	"fmt"
	"image"
	"sort"

	"github.com/tsawler/inkpage/layout"
	"github.com/tsawler/inkpage/model"
	"github.com/tsawler/inkpage/render"
)

// Band text layout constants.
const (
	separator = " | "
	textInset = 15
	ellipsis  = "…"
)

// tocTitle is the synthetic chapter title reported on TOC pages.
const tocTitle = "Table of Contents"

// Composer decorates page bitmaps for one render request. It holds only
// read-only state and may be used from concurrent page-rendering tasks.
type Composer struct {
	cfg        model.RenderConfig
	fonts      *render.Fonts
	toc        []model.TOCEntry
	refs       []model.PageRef
	pageCounts []int
	tocPages   int
	totalPages int
}

// New builds a composer over a pagination result.
func New(cfg model.RenderConfig, fonts *render.Fonts, res *layout.Result) *Composer {
	return &Composer{
		cfg:        cfg,
		fonts:      fonts,
		toc:        res.TOC,
		refs:       res.Refs,
		pageCounts: res.PageCounts,
		tocPages:   res.TOCPageCount,
		totalPages: res.TotalPages(),
	}
}

// Compose draws both bands onto the page bitmap in place. pageIndex is the
// 0-based global page index, TOC pages included.
func (c *Composer) Compose(img *image.Gray, pageIndex int) {
	c.composeBand(img, pageIndex, model.Header)
	c.composeBand(img, pageIndex, model.Footer)
}

// element is one resolved band entry.
type element struct {
	text    string
	elastic bool // truncated to the width the fixed elements leave over
	order   int
}

func (c *Composer) composeBand(img *image.Gray, pageIndex int, band model.Placement) {
	elems := c.bandElements(pageIndex, band)
	hasBar := c.cfg.Bar.Band() == band

	textTop, barTop := c.bandGeometry(band, hasBar)
	if len(elems) > 0 {
		c.drawLine(img, elems, textTop)
	}
	if hasBar {
		c.drawBar(img, pageIndex, barTop)
	}
}

// bandElements resolves the band's elements in display order.
func (c *Composer) bandElements(pageIndex int, band model.Placement) []element {
	display := pageIndex + 1
	var elems []element

	add := func(slot model.ElementSlot, text string, elastic bool) {
		if slot.Placement == band && text != "" {
			elems = append(elems, element{text: text, elastic: elastic, order: slot.Order})
		}
	}

	add(c.cfg.Title, c.currentTitle(pageIndex), true)
	add(c.cfg.PageNumber, fmt.Sprintf("%d/%d", display, c.totalPages), false)
	add(c.cfg.ChapterPage, c.chapterPage(pageIndex), false)
	add(c.cfg.Percent, c.percent(display), false)

	sort.SliceStable(elems, func(i, j int) bool { return elems[i].order < elems[j].order })
	return elems
}

// currentTitle finds the chapter owning a page: a reverse scan over the TOC
// entries in descending start page, taking the first whose start page is at
// or before the displayed page. TOC pages report a synthetic title.
func (c *Composer) currentTitle(pageIndex int) string {
	if pageIndex < c.tocPages {
		return tocTitle
	}
	display := pageIndex + 1
	for i := len(c.toc) - 1; i >= 0; i-- {
		if c.toc[i].StartPage <= display {
			return c.toc[i].Title
		}
	}
	return ""
}

// chapterPage formats the chapter-relative counter "i/n". TOC pages count
// among themselves only.
func (c *Composer) chapterPage(pageIndex int) string {
	if pageIndex < c.tocPages {
		return fmt.Sprintf("%d/%d", pageIndex+1, c.tocPages)
	}
	body := pageIndex - c.tocPages
	if body >= len(c.refs) {
		return ""
	}
	ref := c.refs[body]
	return fmt.Sprintf("%d/%d", ref.Page+1, c.pageCounts[ref.Chapter])
}

func (c *Composer) percent(display int) string {
	if c.totalPages == 0 {
		return ""
	}
	return fmt.Sprintf("%d%%", display*100/c.totalPages)
}

// bandGeometry computes the text top and bar top for one band.
func (c *Composer) bandGeometry(band model.Placement, hasBar bool) (textTop, barTop int) {
	lineH := render.LineHeight(c.fonts.UI)
	cfg := c.cfg

	if band == model.Header {
		switch {
		case hasBar && cfg.Bar == model.BarHeaderAboveText:
			barTop = 4 + cfg.TickHeight
			textTop = barTop + cfg.BarThickness + 6
		case hasBar: // below the text line, toward the body
			textTop = 2
			barTop = textTop + lineH + 2
		default:
			textTop = (cfg.TopPadding - lineH) / 2
			if textTop < 0 {
				textTop = 0
			}
		}
		return textTop, barTop
	}

	bandTop := cfg.Height - cfg.BottomPadding
	switch {
	case hasBar && cfg.Bar == model.BarFooterBelowText:
		barTop = cfg.Height - 16 - cfg.BarThickness
		textTop = bandTop + 2
	case hasBar: // above the text line, toward the body
		barTop = bandTop + 2 + cfg.TickHeight
		textTop = barTop + cfg.BarThickness + 6
	default:
		textTop = bandTop + (cfg.BottomPadding-lineH)/2
	}
	return textTop, barTop
}

// drawLine lays the band's elements out on one text line and draws them.
func (c *Composer) drawLine(img *image.Gray, elems []element, top int) {
	avail := c.cfg.Width - 2*textInset
	texts := c.fitElements(elems, avail)

	if c.cfg.BandAlign == model.AlignJustify && len(texts) > 1 {
		c.drawJustified(img, texts, top)
		return
	}

	line := join(texts)
	lineW := render.TextWidth(c.fonts.UI, line)
	var x int
	switch c.cfg.BandAlign {
	case model.AlignRight:
		x = c.cfg.Width - textInset - lineW
	case model.AlignCenter:
		x = (c.cfg.Width - lineW) / 2
	default:
		x = textInset
	}
	render.DrawText(img, c.fonts.UI, x, top, line)
}

// fitElements resolves the elastic title against the width left over once
// every fixed element and separator is reserved. The composed line never
// exceeds the available width: an oversized title is truncated with a
// trailing ellipsis, character by character, until it fits or is gone.
func (c *Composer) fitElements(elems []element, avail int) []string {
	sepW := render.TextWidth(c.fonts.UI, separator)
	fixed := sepW * (len(elems) - 1)
	for _, e := range elems {
		if !e.elastic {
			fixed += render.TextWidth(c.fonts.UI, e.text)
		}
	}

	texts := make([]string, 0, len(elems))
	for _, e := range elems {
		text := e.text
		if e.elastic {
			budget := avail - fixed
			text = render.Truncate(c.fonts.UI, text, budget, ellipsis)
			if budget <= 0 || render.TextWidth(c.fonts.UI, text) > budget {
				continue
			}
		}
		texts = append(texts, text)
	}
	return texts
}

// drawJustified pins the first element to the left margin, the last to the
// right margin, and centers the remaining elements between them.
func (c *Composer) drawJustified(img *image.Gray, texts []string, top int) {
	first, last := texts[0], texts[len(texts)-1]
	render.DrawText(img, c.fonts.UI, textInset, top, first)

	lastW := render.TextWidth(c.fonts.UI, last)
	lastX := c.cfg.Width - textInset - lastW
	render.DrawText(img, c.fonts.UI, lastX, top, last)

	if middle := texts[1 : len(texts)-1]; len(middle) > 0 {
		line := join(middle)
		lineW := render.TextWidth(c.fonts.UI, line)
		left := textInset + render.TextWidth(c.fonts.UI, first)
		x := left + (lastX-left-lineW)/2
		render.DrawText(img, c.fonts.UI, x, top, line)
	}
}

func join(texts []string) string {
	line := ""
	for i, t := range texts {
		if i > 0 {
			line += separator
		}
		line += t
	}
	return line
}

// drawBar draws the outlined progress bar, the fill up to the current page,
// one tick per TOC entry and the optional position marker.
func (c *Composer) drawBar(img *image.Gray, pageIndex, barTop int) {
	if c.totalPages == 0 {
		return
	}
	cfg := c.cfg
	x0, x1 := cfg.BarMargin, cfg.Width-cfg.BarMargin
	innerW := x1 - x0

	bar := image.Rect(x0, barTop, x1, barTop+cfg.BarThickness)
	render.FillRect(img, bar, 0xff)
	render.StrokeRect(img, bar)

	for _, entry := range c.toc {
		tick := x0 + (entry.StartPage-1)*innerW/c.totalPages
		render.VLine(img, tick, barTop-cfg.TickHeight, barTop)
	}

	fill := (pageIndex + 1) * innerW / c.totalPages
	render.FillRect(img, image.Rect(x0, barTop, x0+fill, barTop+cfg.BarThickness), 0x00)

	if cfg.MarkerRadius > 0 {
		render.FillCircle(img, x0+fill, barTop+cfg.BarThickness/2, cfg.MarkerRadius)
	}
}
