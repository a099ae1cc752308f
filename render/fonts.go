// Package render rasterizes the pages the pipeline draws itself — table of
// contents pages and the assembly of engine-produced body bitmaps onto the
// device canvas — and provides the text-drawing primitives the overlay
// composer shares.
package render

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// Fonts holds the faces used for device-drawn text. When no custom font is
// configured every face falls back to the built-in fixed face.
type Fonts struct {
	Body    font.Face // TOC rows
	Heading font.Face // TOC page header
	UI      font.Face // overlay band text
}

// LoadFonts builds the face set for one render request. The heading face is
// 1.2 times the body size, matching the TOC header proportions.
func LoadFonts(fontPath string, bodySize, uiSize int) (*Fonts, error) {
	if fontPath == "" {
		face := basicfont.Face7x13
		return &Fonts{Body: face, Heading: face, UI: face}, nil
	}

	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}
	ft, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	newFace := func(size float64) (font.Face, error) {
		return opentype.NewFace(ft, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	fonts := &Fonts{}
	if fonts.Body, err = newFace(float64(bodySize)); err != nil {
		return nil, fmt.Errorf("building body face: %w", err)
	}
	if fonts.Heading, err = newFace(float64(bodySize) * 1.2); err != nil {
		return nil, fmt.Errorf("building heading face: %w", err)
	}
	if fonts.UI, err = newFace(float64(uiSize)); err != nil {
		return nil, fmt.Errorf("building ui face: %w", err)
	}
	return fonts, nil
}

// TextWidth measures the advance of s in whole pixels.
func TextWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// Ascent returns the face ascent in whole pixels.
func Ascent(face font.Face) int {
	return face.Metrics().Ascent.Ceil()
}

// LineHeight returns the face's line height in whole pixels.
func LineHeight(face font.Face) int {
	return face.Metrics().Height.Ceil()
}

// Truncate shortens s rune by rune until it fits maxWidth with the ellipsis
// appended. A string that already fits is returned unmodified; a string
// truncated to nothing yields just the ellipsis.
func Truncate(face font.Face, s string, maxWidth int, ellipsis string) string {
	if TextWidth(face, s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if TextWidth(face, string(runes)+ellipsis) <= maxWidth {
			break
		}
	}
	return string(runes) + ellipsis
}
