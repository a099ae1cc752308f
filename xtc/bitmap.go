package xtc

import (
	"fmt"
	"image"
	"image/color"
)

// Pack reduces an image to row-major 1-bit-per-pixel data, MSB first, with
// rows padded to whole bytes. A set bit is a white pixel; pixels at or above
// mid-gray count as white.
func Pack(img image.Image) (width, height int, data []byte) {
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()
	stride := RowBytes(width)
	data = make([]byte, stride*height)

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < height; y++ {
			off := g.PixOffset(b.Min.X, b.Min.Y+y)
			row := g.Pix[off : off+width]
			out := data[y*stride:]
			for x, p := range row {
				if p >= 0x80 {
					out[x>>3] |= 0x80 >> (x & 7)
				}
			}
		}
		return width, height, data
	}

	for y := 0; y < height; y++ {
		out := data[y*stride:]
		for x := 0; x < width; x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			if g.Y >= 0x80 {
				out[x>>3] |= 0x80 >> (x & 7)
			}
		}
	}
	return width, height, data
}

// Unpack expands packed 1-bit rows back into a grayscale image with pure
// black and white pixels.
func Unpack(width, height int, data []byte) (*image.Gray, error) {
	stride := RowBytes(width)
	if len(data) != stride*height {
		return nil, fmt.Errorf("%w: payload is %d bytes, want %d for %dx%d",
			ErrCorrupt, len(data), stride*height, width, height)
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		in := data[y*stride:]
		row := img.Pix[y*img.Stride : y*img.Stride+width]
		for x := range row {
			if in[x>>3]&(0x80>>(x&7)) != 0 {
				row[x] = 0xff
			}
		}
	}
	return img, nil
}
