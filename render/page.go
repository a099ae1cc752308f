package render

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/tsawler/inkpage/model"
)

// blackAndWhite is the two-level palette used for dithering.
var blackAndWhite = color.Palette{color.Black, color.White}

// AssembleBody places an engine-produced chapter page onto a full-size
// device canvas between the header and footer bands, scaling if the engine
// delivered a different pixel size, then reduces it to pure black and white.
// Image-heavy chapters are dithered to keep halftones readable; text pages
// are hard-thresholded for crisp glyph edges.
func AssembleBody(body image.Image, cfg model.RenderConfig, imageHeavy bool) *image.Gray {
	canvas := NewCanvas(cfg.Width, cfg.Height)
	target := image.Rect(0, cfg.TopPadding, cfg.Width, cfg.TopPadding+cfg.ContentHeight())

	if body.Bounds().Dx() == target.Dx() && body.Bounds().Dy() == target.Dy() {
		draw.Draw(canvas, target, body, body.Bounds().Min, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(canvas, target, body, body.Bounds(), xdraw.Src, nil)
	}

	if imageHeavy {
		adjust(canvas, 1.15, 1.4)
		return Dither(canvas)
	}
	Threshold(canvas, 140)
	return canvas
}

// Threshold maps every pixel to pure black or white in place.
func Threshold(img *image.Gray, cut uint8) {
	for i, p := range img.Pix {
		if p > cut {
			img.Pix[i] = 0xff
		} else {
			img.Pix[i] = 0x00
		}
	}
}

// Dither reduces the image to black and white with Floyd-Steinberg error
// diffusion.
func Dither(img *image.Gray) *image.Gray {
	pal := image.NewPaletted(img.Bounds(), blackAndWhite)
	draw.FloydSteinberg.Draw(pal, img.Bounds(), img, image.Point{})

	out := image.NewGray(img.Bounds())
	for i, idx := range pal.Pix {
		if idx == 0 {
			out.Pix[i] = 0x00
		} else {
			out.Pix[i] = 0xff
		}
	}
	return out
}

// adjust applies a brightness multiplier then expands contrast around
// mid-gray.
func adjust(img *image.Gray, brightness, contrast float64) {
	var lut [256]uint8
	for i := range lut {
		v := float64(i) * brightness
		v = (v-128)*contrast + 128
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		lut[i] = uint8(v)
	}
	for i, p := range img.Pix {
		img.Pix[i] = lut[p]
	}
}
