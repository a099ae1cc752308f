package layout

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/tsawler/inkpage/footnote"
	"github.com/tsawler/inkpage/htmldoc"
	"github.com/tsawler/inkpage/model"
)

// countingEngine produces a fixed number of blank pages per chapter, in call
// order.
func countingEngine(counts []int) Engine {
	call := 0
	return EngineFunc(func(ctx context.Context, doc []byte, width, height int) ([]image.Image, error) {
		n := counts[call]
		call++
		pages := make([]image.Image, n)
		for i := range pages {
			pages[i] = image.NewGray(image.Rect(0, 0, width, height))
		}
		return pages, nil
	})
}

// testDocument builds a document with one trivial chapter per title.
func testDocument(t *testing.T, titles ...string) *model.Document {
	t.Helper()
	doc := model.NewDocument()
	doc.Title = "Test Book"
	doc.Language = "en"
	for _, title := range titles {
		root, err := htmldoc.ParseString("<p>" + title + " body text</p>")
		if err != nil {
			t.Fatalf("failed to parse chapter fixture: %v", err)
		}
		doc.AddChapter(&model.Chapter{
			Title:    title,
			Source:   "OEBPS/" + strings.ToLower(title) + ".xhtml",
			Root:     htmldoc.Body(root),
			Included: true,
		})
	}
	return doc
}

// twoRowConfig yields exactly 2 TOC rows per page: row height is
// int(20*1.25*1.2) = 30 and the available height 200-20-100-15 = 65.
func twoRowConfig() model.RenderConfig {
	cfg := model.DefaultConfig()
	cfg.Height = 200
	cfg.TopPadding = 15
	cfg.BottomPadding = 20
	cfg.FontSize = 20
	cfg.LineHeight = 1.25
	return cfg
}

func TestPaginateStartPages(t *testing.T) {
	doc := testDocument(t, "One", "Two", "Three")
	c := &Coordinator{
		Engine: countingEngine([]int{5, 3, 7}),
		Config: twoRowConfig(),
	}

	res, err := c.Paginate(context.Background(), doc, footnote.NewMap())
	if err != nil {
		t.Fatalf("Paginate() error: %v", err)
	}

	if got, want := res.PageCounts, []int{5, 3, 7}; !equalInts(got, want) {
		t.Errorf("PageCounts = %v, want %v", got, want)
	}
	if res.ItemsPerPage != 2 {
		t.Fatalf("ItemsPerPage = %d, want 2", res.ItemsPerPage)
	}
	if res.TOCPageCount != 2 {
		t.Errorf("TOCPageCount = %d, want 2", res.TOCPageCount)
	}

	starts := make([]int, len(res.TOC))
	for i, e := range res.TOC {
		starts[i] = e.StartPage
	}
	// Body pages start after the TOC: cumulative offsets 0, 5 and 8 shifted
	// by the 2 TOC pages plus 1 for the 1-based display numbering.
	if want := []int{3, 8, 11}; !equalInts(starts, want) {
		t.Errorf("start pages = %v, want %v", starts, want)
	}
	if got := res.TotalPages(); got != 17 {
		t.Errorf("TotalPages() = %d, want 17", got)
	}
}

func TestPaginateRefsInChapterOrder(t *testing.T) {
	doc := testDocument(t, "One", "Two")
	c := &Coordinator{Engine: countingEngine([]int{2, 3}), Config: twoRowConfig()}

	res, err := c.Paginate(context.Background(), doc, footnote.NewMap())
	if err != nil {
		t.Fatalf("Paginate() error: %v", err)
	}

	want := []model.PageRef{
		{Chapter: 0, Page: 0}, {Chapter: 0, Page: 1},
		{Chapter: 1, Page: 0}, {Chapter: 1, Page: 1}, {Chapter: 1, Page: 2},
	}
	if len(res.Refs) != len(want) {
		t.Fatalf("len(Refs) = %d, want %d", len(res.Refs), len(want))
	}
	for i, ref := range res.Refs {
		if ref != want[i] {
			t.Errorf("Refs[%d] = %+v, want %+v", i, ref, want[i])
		}
	}
}

func TestSelectionNeverChangesPagination(t *testing.T) {
	doc := testDocument(t, "One", "Two", "Three")
	doc.Chapters[1].Included = false

	c := &Coordinator{Engine: countingEngine([]int{5, 3, 7}), Config: twoRowConfig()}
	res, err := c.Paginate(context.Background(), doc, footnote.NewMap())
	if err != nil {
		t.Fatalf("Paginate() error: %v", err)
	}

	// The deselected chapter is still paginated and exported.
	if got, want := res.PageCounts, []int{5, 3, 7}; !equalInts(got, want) {
		t.Errorf("PageCounts = %v, want %v", got, want)
	}
	if len(res.Refs) != 15 {
		t.Errorf("len(Refs) = %d, want 15", len(res.Refs))
	}

	// Only the TOC shrinks: 2 entries fit one page now.
	if len(res.TOC) != 2 {
		t.Fatalf("len(TOC) = %d, want 2", len(res.TOC))
	}
	if res.TOCPageCount != 1 {
		t.Errorf("TOCPageCount = %d, want 1", res.TOCPageCount)
	}
	starts := []int{res.TOC[0].StartPage, res.TOC[1].StartPage}
	if want := []int{2, 10}; !equalInts(starts, want) {
		t.Errorf("start pages = %v, want %v", starts, want)
	}
}

func TestPaginateWithoutTOC(t *testing.T) {
	doc := testDocument(t, "One", "Two")
	cfg := twoRowConfig()
	cfg.GenerateTOC = false

	c := &Coordinator{Engine: countingEngine([]int{2, 2}), Config: cfg}
	res, err := c.Paginate(context.Background(), doc, footnote.NewMap())
	if err != nil {
		t.Fatalf("Paginate() error: %v", err)
	}
	if res.TOCPageCount != 0 {
		t.Errorf("TOCPageCount = %d, want 0", res.TOCPageCount)
	}
	if got := res.TotalPages(); got != 4 {
		t.Errorf("TotalPages() = %d, want 4", got)
	}
}

func TestPaginateEngineFailureIsFatal(t *testing.T) {
	doc := testDocument(t, "One", "Two")
	fail := errors.New("layout crashed")
	call := 0
	engine := EngineFunc(func(ctx context.Context, doc []byte, w, h int) ([]image.Image, error) {
		call++
		if call == 2 {
			return nil, fail
		}
		return []image.Image{image.NewGray(image.Rect(0, 0, w, h))}, nil
	})

	c := &Coordinator{Engine: engine, Config: twoRowConfig()}
	_, err := c.Paginate(context.Background(), doc, footnote.NewMap())
	if !errors.Is(err, fail) {
		t.Fatalf("Paginate() error = %v, want wrapped engine failure", err)
	}
}

func TestPaginateCancellation(t *testing.T) {
	doc := testDocument(t, "One", "Two")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &Coordinator{Engine: countingEngine([]int{1, 1}), Config: twoRowConfig()}
	if _, err := c.Paginate(ctx, doc, footnote.NewMap()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Paginate() error = %v, want context.Canceled", err)
	}
}

func TestDecorateLeavesChapterUntouched(t *testing.T) {
	doc := testDocument(t, "One")
	ch := doc.Chapters[0]
	before := htmldoc.InnerHTML(ch.Root)

	var captured []byte
	engine := EngineFunc(func(ctx context.Context, markup []byte, w, h int) ([]image.Image, error) {
		captured = markup
		return []image.Image{image.NewGray(image.Rect(0, 0, w, h))}, nil
	})

	c := &Coordinator{Engine: engine, Config: twoRowConfig()}
	if _, err := c.Paginate(context.Background(), doc, footnote.NewMap()); err != nil {
		t.Fatalf("Paginate() error: %v", err)
	}

	if after := htmldoc.InnerHTML(ch.Root); after != before {
		t.Errorf("chapter tree mutated:\nbefore: %q\nafter:  %q", before, after)
	}
	if !strings.Contains(string(captured), "One body text") {
		t.Errorf("engine did not receive chapter content: %q", captured)
	}
	if !strings.Contains(string(captured), "font-size: 20px !important") {
		t.Errorf("typographic overrides missing from %q", captured)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
