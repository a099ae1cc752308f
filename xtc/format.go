// Package xtc reads and writes the XTC page container: a fixed file header,
// an index table with one record per page, and concatenated per-page records
// holding 1-bit-per-pixel packed raster data. All integers are little-endian
// and all offsets are absolute from the start of the file.
package xtc

import "errors"

// Container layout constants.
const (
	// FileMagic identifies the container ("XTC\x00" read little-endian).
	FileMagic uint32 = 0x00435458

	// PageMagic identifies each page record ("XTG\x00").
	PageMagic uint32 = 0x00475458

	// Version is the container format version this package produces.
	Version uint16 = 0x0100

	// HeaderSize is the fixed file header length in bytes.
	HeaderSize = 56

	// IndexRecordSize is the length of one index record in bytes.
	IndexRecordSize = 16

	// PageHeaderSize is the length of one page record header in bytes.
	PageHeaderSize = 24

	// MaxPages is the largest page count the header's 16-bit field can hold.
	MaxPages = 0xffff
)

var (
	// ErrTooManyPages is returned when a document exceeds MaxPages.
	ErrTooManyPages = errors.New("xtc: too many pages for container")

	// ErrBadMagic is returned when a file or page magic does not match.
	ErrBadMagic = errors.New("xtc: bad magic")

	// ErrBadVersion is returned for a container version this package does
	// not understand.
	ErrBadVersion = errors.New("xtc: unsupported format version")

	// ErrCorrupt is returned when offsets, lengths or dimensions in the
	// container are inconsistent.
	ErrCorrupt = errors.New("xtc: corrupt container")
)

// RowBytes returns the packed byte length of one pixel row: 8 pixels per
// byte, padded up to a whole byte.
func RowBytes(width int) int {
	return (width + 7) / 8
}
