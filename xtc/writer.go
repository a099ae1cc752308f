package xtc

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Producer renders one page. Producers are called concurrently from the
// encoder's worker pool and must be safe for parallel use.
type Producer func(ctx context.Context, page int) (image.Image, error)

// Encoder writes an XTC container. Pages are produced in parallel, then
// packed into the output in strictly ascending page order with offsets
// assigned in a single sequential pass.
type Encoder struct {
	// Workers caps concurrent page production. Zero means one worker per
	// logical CPU.
	Workers int
}

type pageRecord struct {
	width  uint16
	height uint16
	data   []byte
}

// Encode renders pageCount pages through produce and writes the complete
// container to w. On any producer error or cancellation nothing is written.
func (e *Encoder) Encode(ctx context.Context, w io.Writer, pageCount int, produce Producer) error {
	if pageCount > MaxPages {
		return fmt.Errorf("%w: %d", ErrTooManyPages, pageCount)
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	records := make([]pageRecord, pageCount)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := produce(ctx, i)
			if err != nil {
				return fmt.Errorf("rendering page %d: %w", i, err)
			}
			width, height, data := Pack(img)
			if width > 0xffff || height > 0xffff {
				return fmt.Errorf("page %d: %dx%d exceeds container dimensions", i, width, height)
			}
			records[i] = pageRecord{width: uint16(width), height: uint16(height), data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return writeContainer(w, records)
}

// writeContainer is the sequential reconciliation pass: it computes each
// record's absolute offset from the accumulated lengths and emits header,
// index and data in order.
func writeContainer(w io.Writer, records []pageRecord) error {
	bw := bufio.NewWriter(w)
	dataOffset := uint64(HeaderSize + IndexRecordSize*len(records))

	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], FileMagic)
	binary.LittleEndian.PutUint16(hdr[4:], Version)
	binary.LittleEndian.PutUint16(hdr[6:], uint16(len(records)))
	binary.LittleEndian.PutUint64(hdr[24:], HeaderSize)
	binary.LittleEndian.PutUint64(hdr[32:], dataOffset)
	if _, err := bw.Write(hdr[:]); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	offset := dataOffset
	var idx [IndexRecordSize]byte
	for _, rec := range records {
		length := uint32(PageHeaderSize + len(rec.data))
		binary.LittleEndian.PutUint64(idx[0:], offset)
		binary.LittleEndian.PutUint32(idx[8:], length)
		binary.LittleEndian.PutUint16(idx[12:], rec.width)
		binary.LittleEndian.PutUint16(idx[14:], rec.height)
		if _, err := bw.Write(idx[:]); err != nil {
			return fmt.Errorf("writing index: %w", err)
		}
		offset += uint64(length)
	}

	var ph [PageHeaderSize]byte
	for i, rec := range records {
		binary.LittleEndian.PutUint32(ph[0:], PageMagic)
		binary.LittleEndian.PutUint16(ph[4:], rec.width)
		binary.LittleEndian.PutUint16(ph[6:], rec.height)
		binary.LittleEndian.PutUint32(ph[12:], uint32(len(rec.data)))
		if _, err := bw.Write(ph[:]); err != nil {
			return fmt.Errorf("writing page %d: %w", i, err)
		}
		if _, err := bw.Write(rec.data); err != nil {
			return fmt.Errorf("writing page %d: %w", i, err)
		}
	}

	return bw.Flush()
}
