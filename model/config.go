package model

import (
	"errors"
	"fmt"
)

// Placement assigns an overlay element to a band.
type Placement int

const (
	Hidden Placement = iota
	Header
	Footer
)

// Align controls how a band's composed text line is anchored.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
	// AlignJustify pins the first element to the left margin, the last to
	// the right margin, and centers the remaining elements between them.
	// With a single element it behaves like AlignLeft.
	AlignJustify
)

// BarPosition places the progress bar in one band, above or below that
// band's text line. The bar can occupy at most one band; the type makes a
// two-band configuration unrepresentable.
type BarPosition int

const (
	BarHidden BarPosition = iota
	BarHeaderAboveText
	BarHeaderBelowText
	BarFooterAboveText
	BarFooterBelowText
)

// Band returns the band the bar occupies, or Hidden.
func (b BarPosition) Band() Placement {
	switch b {
	case BarHeaderAboveText, BarHeaderBelowText:
		return Header
	case BarFooterAboveText, BarFooterBelowText:
		return Footer
	}
	return Hidden
}

// ElementSlot is the placement and display order of one overlay element.
// Elements sharing a band are laid out in ascending Order.
type ElementSlot struct {
	Placement Placement
	Order     int
}

// RenderConfig is the immutable per-render configuration read by the
// pagination coordinator and the overlay composer. Construct it with
// DefaultConfig and adjust fields before calling Validate; the pipeline
// never mutates it.
type RenderConfig struct {
	// Page geometry, in pixels.
	Width         int
	Height        int
	Margin        int // side margin applied to body text via stylesheet
	TopPadding    int // header band height, reserved above the body
	BottomPadding int // footer band height, reserved below the body

	// Typography injected into every chapter's stylesheet.
	FontSize   int
	FontWeight int     // 100-900
	LineHeight float64 // multiplier, e.g. 1.4
	TextAlign  string  // "justify" or "left"
	FontPath   string  // optional TTF; empty means built-in fallback

	// Table of contents.
	GenerateTOC bool

	// Overlay bands.
	Title       ElementSlot
	PageNumber  ElementSlot // rendered as "i/N"
	ChapterPage ElementSlot // rendered as "i/n" within the current chapter
	Percent     ElementSlot
	BandAlign   Align
	UIFontSize  int

	// Progress bar.
	Bar          BarPosition
	BarThickness int
	BarMargin    int // inset from the left and right page edges
	TickHeight   int
	MarkerRadius int // 0 disables the position marker
}

// DefaultConfig returns the documented defaults: a 480x800 portrait page,
// 22px justified text, a footer with page counter, chapter title and a
// progress bar below the text line.
func DefaultConfig() RenderConfig {
	return RenderConfig{
		Width:         480,
		Height:        800,
		Margin:        20,
		TopPadding:    15,
		BottomPadding: 45,

		FontSize:   22,
		FontWeight: 400,
		LineHeight: 1.4,
		TextAlign:  "justify",

		GenerateTOC: true,

		PageNumber:  ElementSlot{Placement: Footer, Order: 0},
		Title:       ElementSlot{Placement: Footer, Order: 1},
		ChapterPage: ElementSlot{Placement: Hidden},
		Percent:     ElementSlot{Placement: Hidden},
		BandAlign:   AlignLeft,
		UIFontSize:  16,

		Bar:          BarFooterBelowText,
		BarThickness: 4,
		BarMargin:    10,
		TickHeight:   4,
		MarkerRadius: 0,
	}
}

// Landscape returns a copy of the config with width and height swapped.
func (c RenderConfig) Landscape() RenderConfig {
	c.Width, c.Height = c.Height, c.Width
	return c
}

// ContentHeight returns the height of the body page box after the header and
// footer bands are reserved.
func (c RenderConfig) ContentHeight() int {
	return c.Height - c.TopPadding - c.BottomPadding
}

// Configuration validation errors.
var (
	ErrBadGeometry  = errors.New("config: page geometry leaves no content area")
	ErrBadTypograph = errors.New("config: typography value out of range")
)

// Validate checks field ranges once, at the boundary. Unknown keys from
// external sources never reach RenderConfig; mapping them is the caller's
// job.
func (c RenderConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBadGeometry, c.Width, c.Height)
	}
	if c.ContentHeight() <= 0 {
		return fmt.Errorf("%w: paddings %d+%d exceed height %d",
			ErrBadGeometry, c.TopPadding, c.BottomPadding, c.Height)
	}
	if c.Margin < 0 || c.TopPadding < 0 || c.BottomPadding < 0 {
		return fmt.Errorf("%w: negative margin or padding", ErrBadGeometry)
	}
	if c.FontSize < 6 || c.FontSize > 72 {
		return fmt.Errorf("%w: font size %d", ErrBadTypograph, c.FontSize)
	}
	if c.FontWeight < 100 || c.FontWeight > 900 {
		return fmt.Errorf("%w: font weight %d", ErrBadTypograph, c.FontWeight)
	}
	if c.LineHeight < 1.0 || c.LineHeight > 3.0 {
		return fmt.Errorf("%w: line height %g", ErrBadTypograph, c.LineHeight)
	}
	if c.TextAlign != "justify" && c.TextAlign != "left" {
		return fmt.Errorf("%w: text align %q", ErrBadTypograph, c.TextAlign)
	}
	if c.UIFontSize < 6 || c.UIFontSize > 72 {
		return fmt.Errorf("%w: ui font size %d", ErrBadTypograph, c.UIFontSize)
	}
	if c.BarThickness < 1 || c.BarMargin < 0 || c.TickHeight < 0 || c.MarkerRadius < 0 {
		return fmt.Errorf("%w: progress bar geometry", ErrBadGeometry)
	}
	return nil
}
