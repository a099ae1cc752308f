package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// NewCanvas returns a white grayscale canvas.
func NewCanvas(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

// Clone returns an independent copy of a grayscale image.
func Clone(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// DrawText draws s in black with its top-left corner at (x, y).
func DrawText(dst draw.Image, face font.Face, x, y int, s string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(x, y+Ascent(face)),
	}
	d.DrawString(s)
}

// FillRect fills a rectangle with the given gray level.
func FillRect(dst *image.Gray, r image.Rectangle, gray uint8) {
	draw.Draw(dst, r, image.NewUniform(color.Gray{Y: gray}), image.Point{}, draw.Src)
}

// StrokeRect draws a 1px black outline.
func StrokeRect(dst *image.Gray, r image.Rectangle) {
	FillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), 0)
	FillRect(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), 0)
	FillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), 0)
	FillRect(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), 0)
}

// VLine draws a 1px vertical black line from (x, y0) to (x, y1).
func VLine(dst *image.Gray, x, y0, y1 int) {
	FillRect(dst, image.Rect(x, y0, x+1, y1), 0)
}

// HLine draws a 1px horizontal black line from (x0, y) to (x1, y).
func HLine(dst *image.Gray, x0, x1, y int) {
	FillRect(dst, image.Rect(x0, y, x1, y+1), 0)
}

// FillCircle draws a filled black circle.
func FillCircle(dst *image.Gray, cx, cy, r int) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				dst.SetGray(cx+x, cy+y, color.Gray{Y: 0})
			}
		}
	}
}
