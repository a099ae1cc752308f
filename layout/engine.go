// Package layout drives the external document-layout engine across a book's
// chapters and reconciles the two-pass table-of-contents pagination.
package layout

import (
	"context"
	"image"
)

// Engine is the external document-layout capability: it lays out a complete
// markup document into a fixed page box and rasterizes every resulting page.
//
// Paginate is synchronous and all-or-nothing per chapter: it either returns
// the chapter's full ordered page sequence or an error, never partial
// results. The call is treated as blocking and non-cancellable; ctx is
// consulted between chapters, not within one.
type Engine interface {
	Paginate(ctx context.Context, doc []byte, width, height int) ([]image.Image, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, doc []byte, width, height int) ([]image.Image, error)

// Paginate calls f.
func (f EngineFunc) Paginate(ctx context.Context, doc []byte, width, height int) ([]image.Image, error) {
	return f(ctx, doc, width, height)
}
