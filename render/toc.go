package render

import (
	"image"
	"strconv"

	"github.com/tsawler/inkpage/model"
)

// TOC page geometry.
const (
	tocLeftMargin  = 40
	tocRightMargin = 40
	tocColumnGap   = 20
	tocHeaderText  = "TABLE OF CONTENTS"
)

// TOCPages rasterizes the table of contents: itemsPerPage rows per page,
// each row a truncated title, dot leaders and a right-aligned start page
// number.
func TOCPages(entries []model.TOCEntry, cfg model.RenderConfig, itemsPerPage, rowHeight int, fonts *Fonts) []*image.Gray {
	if len(entries) == 0 || itemsPerPage < 1 {
		return nil
	}

	var pages []*image.Gray
	for offset := 0; offset < len(entries); offset += itemsPerPage {
		chunk := entries[offset:]
		if len(chunk) > itemsPerPage {
			chunk = chunk[:itemsPerPage]
		}
		pages = append(pages, tocPage(chunk, cfg, rowHeight, fonts))
	}
	return pages
}

func tocPage(entries []model.TOCEntry, cfg model.RenderConfig, rowHeight int, fonts *Fonts) *image.Gray {
	img := NewCanvas(cfg.Width, cfg.Height)

	headerW := TextWidth(fonts.Heading, tocHeaderText)
	headerY := 40 + cfg.TopPadding
	DrawText(img, fonts.Heading, (cfg.Width-headerW)/2, headerY, tocHeaderText)

	ruleY := headerY + LineHeight(fonts.Heading)*3/2
	HLine(img, tocLeftMargin, cfg.Width-tocRightMargin, ruleY)

	y := ruleY + LineHeight(fonts.Body)*6/5
	for _, entry := range entries {
		pageStr := strconv.Itoa(entry.StartPage)
		pageW := TextWidth(fonts.Body, pageStr)

		maxTitleW := cfg.Width - tocLeftMargin - tocRightMargin - pageW - tocColumnGap
		title := Truncate(fonts.Body, entry.Title, maxTitleW, "...")
		DrawText(img, fonts.Body, tocLeftMargin, y, title)

		// Dot leaders between title and page number.
		titleEnd := tocLeftMargin + TextWidth(fonts.Body, title) + 5
		dotsEnd := cfg.Width - tocRightMargin - pageW - 10
		if dotW := TextWidth(fonts.Body, "."); dotW > 0 && dotsEnd > titleEnd {
			n := (dotsEnd - titleEnd) / dotW
			dots := make([]byte, n)
			for i := range dots {
				dots[i] = '.'
			}
			DrawText(img, fonts.Body, titleEnd, y, string(dots))
		}

		DrawText(img, fonts.Body, cfg.Width-tocRightMargin-pageW, y, pageStr)
		y += rowHeight
	}

	return img
}
