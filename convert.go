package inkpage

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/tsawler/inkpage/layout"
	"github.com/tsawler/inkpage/model"
	"github.com/tsawler/inkpage/overlay"
	"github.com/tsawler/inkpage/render"
	"github.com/tsawler/inkpage/xtc"
)

// Rendered is the outcome of one render request: the pagination result, the
// pre-rasterized TOC pages and the overlay composer. All state is read-only
// and pages may be requested from concurrent goroutines.
type Rendered struct {
	cfg        model.RenderConfig
	fonts      *render.Fonts
	result     *layout.Result
	composer   *overlay.Composer
	toc        []*image.Gray
	imageHeavy []bool
}

// Render paginates every chapter through the layout engine, computes the
// table of contents and prepares the overlay composer. Chapter markup is
// decorated on fresh copies, so the book can be rendered again with
// different settings.
func (b *Book) Render(ctx context.Context) (*Rendered, error) {
	if b.engine == nil {
		return nil, ErrNoEngine
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	fonts, err := render.LoadFonts(b.cfg.FontPath, b.cfg.FontSize, b.cfg.UIFontSize)
	if err != nil {
		return nil, err
	}

	coord := layout.Coordinator{Engine: b.engine, Hyphenator: b.hyph, Config: b.cfg}
	res, err := coord.Paginate(ctx, b.doc, b.refs)
	if err != nil {
		return nil, err
	}

	var toc []*image.Gray
	if res.TOCPageCount > 0 {
		toc = render.TOCPages(res.TOC, b.cfg, res.ItemsPerPage, coord.RowHeight(), fonts)
	}

	imageHeavy := make([]bool, len(b.doc.Chapters))
	for i, ch := range b.doc.Chapters {
		imageHeavy[i] = ch.HasImages
	}

	return &Rendered{
		cfg:        b.cfg,
		fonts:      fonts,
		result:     res,
		composer:   overlay.New(b.cfg, fonts, res),
		toc:        toc,
		imageHeavy: imageHeavy,
	}, nil
}

// Result exposes the underlying pagination result.
func (r *Rendered) Result() *layout.Result { return r.result }

// TotalPages returns the full page count, TOC pages included.
func (r *Rendered) TotalPages() int { return r.result.TotalPages() }

// Page composes one final device page: a TOC page or an assembled body page,
// with the header and footer bands drawn on. The returned image is freshly
// allocated on every call.
func (r *Rendered) Page(ctx context.Context, i int) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i < 0 || i >= r.TotalPages() {
		return nil, fmt.Errorf("page %d out of range [0,%d)", i, r.TotalPages())
	}

	var page *image.Gray
	if i < r.result.TOCPageCount {
		page = render.Clone(r.toc[i])
	} else {
		ref := r.result.Refs[i-r.result.TOCPageCount]
		body := r.result.BodyPages[ref.Chapter][ref.Page]
		page = render.AssembleBody(body, r.cfg, r.imageHeavy[ref.Chapter])
	}

	r.composer.Compose(page, i)
	return page, nil
}

// WriteXTC renders every page and writes the complete container to w. Pages
// are composed in parallel; the byte layout is strictly sequential by page
// index. On error or cancellation nothing usable is written and the caller
// must discard the output as a whole.
func (r *Rendered) WriteXTC(ctx context.Context, w io.Writer) error {
	enc := xtc.Encoder{}
	return enc.Encode(ctx, w, r.TotalPages(), func(ctx context.Context, page int) (image.Image, error) {
		return r.Page(ctx, page)
	})
}
