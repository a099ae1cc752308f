package xtc

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"os"
)

// Page is one decoded page record.
type Page struct {
	Width  int
	Height int
	Data   []byte // packed rows, RowBytes(Width)*Height bytes
}

// Image expands the page into a black-and-white grayscale image.
func (p *Page) Image() (*image.Gray, error) {
	return Unpack(p.Width, p.Height, p.Data)
}

type indexEntry struct {
	offset uint64
	length uint32
	width  uint16
	height uint16
}

// File is an open XTC container with random page access.
type File struct {
	Version uint16

	r      io.ReaderAt
	size   int64
	index  []indexEntry
	closer io.Closer
}

// Open opens a container file for reading. The caller must Close it.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening container: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening container: %w", err)
	}
	xf, err := NewReader(f, st.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	xf.closer = f
	return xf, nil
}

// NewReader parses the header and index of a container held in r.
func NewReader(r io.ReaderAt, size int64) (*File, error) {
	if size < HeaderSize {
		return nil, fmt.Errorf("%w: file is %d bytes", ErrCorrupt, size)
	}
	var hdr [HeaderSize]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if magic := binary.LittleEndian.Uint32(hdr[0:]); magic != FileMagic {
		return nil, fmt.Errorf("%w: 0x%08x", ErrBadMagic, magic)
	}
	version := binary.LittleEndian.Uint16(hdr[4:])
	if version != Version {
		return nil, fmt.Errorf("%w: 0x%04x", ErrBadVersion, version)
	}
	pageCount := int(binary.LittleEndian.Uint16(hdr[6:]))
	indexOffset := binary.LittleEndian.Uint64(hdr[24:])
	dataOffset := binary.LittleEndian.Uint64(hdr[32:])

	if indexOffset != HeaderSize || dataOffset != uint64(HeaderSize+IndexRecordSize*pageCount) {
		return nil, fmt.Errorf("%w: index at %d, data at %d for %d pages",
			ErrCorrupt, indexOffset, dataOffset, pageCount)
	}
	if int64(dataOffset) > size {
		return nil, fmt.Errorf("%w: index extends past end of file", ErrCorrupt)
	}

	raw := make([]byte, IndexRecordSize*pageCount)
	if _, err := r.ReadAt(raw, int64(indexOffset)); err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}

	index := make([]indexEntry, pageCount)
	for i := range index {
		rec := raw[i*IndexRecordSize:]
		index[i] = indexEntry{
			offset: binary.LittleEndian.Uint64(rec[0:]),
			length: binary.LittleEndian.Uint32(rec[8:]),
			width:  binary.LittleEndian.Uint16(rec[12:]),
			height: binary.LittleEndian.Uint16(rec[14:]),
		}
		e := index[i]
		if e.length < PageHeaderSize || int64(e.offset)+int64(e.length) > size {
			return nil, fmt.Errorf("%w: page %d record out of bounds", ErrCorrupt, i)
		}
	}

	return &File{Version: version, r: r, size: size, index: index}, nil
}

// PageCount reports the number of pages in the container.
func (f *File) PageCount() int {
	return len(f.index)
}

// Dimensions reports a page's pixel size from the index without reading its
// record.
func (f *File) Dimensions(i int) (width, height int, err error) {
	if i < 0 || i >= len(f.index) {
		return 0, 0, fmt.Errorf("page %d out of range [0,%d)", i, len(f.index))
	}
	return int(f.index[i].width), int(f.index[i].height), nil
}

// Page reads and validates one page record.
func (f *File) Page(i int) (*Page, error) {
	if i < 0 || i >= len(f.index) {
		return nil, fmt.Errorf("page %d out of range [0,%d)", i, len(f.index))
	}
	e := f.index[i]

	buf := make([]byte, e.length)
	if _, err := f.r.ReadAt(buf, int64(e.offset)); err != nil {
		return nil, fmt.Errorf("reading page %d: %w", i, err)
	}

	if magic := binary.LittleEndian.Uint32(buf[0:]); magic != PageMagic {
		return nil, fmt.Errorf("page %d: %w: 0x%08x", i, ErrBadMagic, magic)
	}
	width := int(binary.LittleEndian.Uint16(buf[4:]))
	height := int(binary.LittleEndian.Uint16(buf[6:]))
	dataLen := binary.LittleEndian.Uint32(buf[12:])

	if width != int(e.width) || height != int(e.height) {
		return nil, fmt.Errorf("%w: page %d is %dx%d but indexed as %dx%d",
			ErrCorrupt, i, width, height, e.width, e.height)
	}
	if int(dataLen) != RowBytes(width)*height || PageHeaderSize+int(dataLen) != int(e.length) {
		return nil, fmt.Errorf("%w: page %d payload length %d", ErrCorrupt, i, dataLen)
	}

	return &Page{Width: width, Height: height, Data: buf[PageHeaderSize:]}, nil
}

// Close releases the underlying file when the container was opened from a
// path. Containers built with NewReader own nothing and Close is a no-op.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}
