package layout

import (
	"context"
	"fmt"
	"image"

	"github.com/tsawler/inkpage/footnote"
	"github.com/tsawler/inkpage/hyphen"
	"github.com/tsawler/inkpage/model"
)

// Coordinator drives the layout engine across every chapter and performs
// the two-pass table-of-contents offset computation.
type Coordinator struct {
	Engine     Engine
	Hyphenator hyphen.Hyphenator // nil disables hyphenation
	Config     model.RenderConfig
}

// Result is the outcome of paginating a book once. It is read-only after
// Paginate returns and safe to share across concurrent page renders.
type Result struct {
	// PageCounts holds every chapter's page count, selected or not.
	PageCounts []int
	// Refs is the flattened page sequence in chapter order, excluding
	// TOC pages.
	Refs []model.PageRef
	// TOC lists the selected chapters with final 1-indexed start pages,
	// already shifted by TOCPageCount.
	TOC []model.TOCEntry
	// TOCPageCount is the number of pages the table of contents itself
	// occupies.
	TOCPageCount int
	// ItemsPerPage is how many TOC rows fit on one rendered TOC page.
	ItemsPerPage int
	// BodyPages holds each chapter's rasterized pages as produced by the
	// engine, indexed like PageCounts.
	BodyPages [][]image.Image
}

// TotalPages returns the book's full page count: TOC pages plus every
// chapter's body pages, selected or not.
func (r *Result) TotalPages() int {
	return r.TOCPageCount + len(r.Refs)
}

// Paginate lays out every chapter — independent of chapter selection, so
// toggling selection never changes pagination — and computes the TOC.
//
// A layout-engine failure on any chapter fails the whole render request:
// downstream page indexing assumes every chapter contributed a known count.
func (c *Coordinator) Paginate(ctx context.Context, doc *model.Document, refs *footnote.Map) (*Result, error) {
	if c.Engine == nil {
		return nil, fmt.Errorf("layout: no engine configured")
	}
	if err := c.Config.Validate(); err != nil {
		return nil, err
	}

	cfg := c.Config
	pageW, pageH := cfg.Width, cfg.ContentHeight()
	injector := footnote.NewInjector(refs)

	res := &Result{
		PageCounts: make([]int, len(doc.Chapters)),
		BodyPages:  make([][]image.Image, len(doc.Chapters)),
	}

	for i, ch := range doc.Chapters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		markup := decorateChapter(ch, doc, injector, c.Hyphenator, cfg, pageW, pageH)
		pages, err := c.Engine.Paginate(ctx, markup, pageW, pageH)
		if err != nil {
			return nil, fmt.Errorf("laying out chapter %d (%s): %w", i+1, ch.Title, err)
		}

		res.PageCounts[i] = len(pages)
		res.BodyPages[i] = pages
		for p := range pages {
			res.Refs = append(res.Refs, model.PageRef{Chapter: i, Page: p})
		}
	}

	c.computeTOC(doc, res)
	return res, nil
}

// computeTOC performs the two-pass offset computation. Pass one assigns
// start pages as if the TOC occupied zero pages; pass two sizes the TOC from
// the selected-entry count alone and shifts every start page by it. The
// order is sound because page numbers do not affect the TOC's page count.
func (c *Coordinator) computeTOC(doc *model.Document, res *Result) {
	res.ItemsPerPage = c.ItemsPerPage()

	start := 1
	for i, ch := range doc.Chapters {
		if ch.Included {
			res.TOC = append(res.TOC, model.TOCEntry{Title: ch.Title, StartPage: start})
		}
		start += res.PageCounts[i]
	}

	if !c.Config.GenerateTOC || len(res.TOC) == 0 {
		res.TOCPageCount = 0
		return
	}

	res.TOCPageCount = (len(res.TOC) + res.ItemsPerPage - 1) / res.ItemsPerPage
	for i := range res.TOC {
		res.TOC[i].StartPage += res.TOCPageCount
	}
}

// tocHeaderSpace is the vertical room reserved on a TOC page for its heading
// and rule, excluding the configured top padding.
const tocHeaderSpace = 100

// ItemsPerPage returns how many TOC rows fit on one page given the
// configured row height (font size times line spacing, with breathing room)
// and the reserved header and footer space. Always at least one.
func (c *Coordinator) ItemsPerPage() int {
	cfg := c.Config
	rowHeight := c.RowHeight()
	available := cfg.Height - cfg.BottomPadding - tocHeaderSpace - cfg.TopPadding
	if n := available / rowHeight; n > 1 {
		return n
	}
	return 1
}

// RowHeight returns the height of one TOC row in pixels.
func (c *Coordinator) RowHeight() int {
	return int(float64(c.Config.FontSize) * c.Config.LineHeight * 1.2)
}
