package render

import (
	"image"
	"testing"

	"github.com/tsawler/inkpage/model"
)

func builtinFonts(t *testing.T) *Fonts {
	t.Helper()
	fonts, err := LoadFonts("", 22, 16)
	if err != nil {
		t.Fatalf("LoadFonts() error: %v", err)
	}
	return fonts
}

func hasBlackPixel(img *image.Gray) bool {
	for _, p := range img.Pix {
		if p == 0x00 {
			return true
		}
	}
	return false
}

func TestLoadFontsFallback(t *testing.T) {
	fonts := builtinFonts(t)
	if fonts.Body == nil || fonts.Heading == nil || fonts.UI == nil {
		t.Fatal("missing face in built-in fallback")
	}
	if TextWidth(fonts.Body, "abc") <= 0 {
		t.Error("zero advance for non-empty text")
	}
}

func TestLoadFontsMissingFile(t *testing.T) {
	if _, err := LoadFonts(t.TempDir()+"/absent.ttf", 22, 16); err == nil {
		t.Fatal("LoadFonts() with a missing file must fail")
	}
}

func TestTruncate(t *testing.T) {
	fonts := builtinFonts(t)
	face := fonts.Body

	long := "An Exceedingly Long Chapter Title That Cannot Fit"
	max := TextWidth(face, "An Exceeding")

	got := Truncate(face, long, max, "...")
	if got == long {
		t.Fatal("oversized title not truncated")
	}
	if w := TextWidth(face, got); w > max {
		t.Errorf("truncated width %d exceeds %d (%q)", w, max, got)
	}

	if got := Truncate(face, "Short", 10000, "..."); got != "Short" {
		t.Errorf("fitting title modified: %q", got)
	}
}

func TestNewCanvasIsWhite(t *testing.T) {
	img := NewCanvas(10, 10)
	for i, p := range img.Pix {
		if p != 0xff {
			t.Fatalf("pixel %d = %d, want white", i, p)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	src := NewCanvas(4, 4)
	dst := Clone(src)
	dst.Pix[0] = 0x00
	if src.Pix[0] != 0xff {
		t.Error("Clone() shares pixel storage")
	}
}

func TestTOCPagesSplitsEntries(t *testing.T) {
	fonts := builtinFonts(t)
	cfg := model.DefaultConfig()

	entries := []model.TOCEntry{
		{Title: "One", StartPage: 3},
		{Title: "Two", StartPage: 8},
		{Title: "Three", StartPage: 12},
		{Title: "Four", StartPage: 20},
		{Title: "Five", StartPage: 31},
	}

	pages := TOCPages(entries, cfg, 2, 30, fonts)
	if len(pages) != 3 {
		t.Fatalf("len(pages) = %d, want 3", len(pages))
	}
	for i, pg := range pages {
		if pg.Bounds().Dx() != cfg.Width || pg.Bounds().Dy() != cfg.Height {
			t.Fatalf("page %d is %v", i, pg.Bounds())
		}
		if !hasBlackPixel(pg) {
			t.Errorf("page %d is blank", i)
		}
	}

	if pages := TOCPages(nil, cfg, 2, 30, fonts); pages != nil {
		t.Errorf("no entries must yield no pages, got %d", len(pages))
	}
}

func TestThreshold(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.Pix[0], img.Pix[1] = 100, 200

	Threshold(img, 140)
	if img.Pix[0] != 0x00 || img.Pix[1] != 0xff {
		t.Errorf("Threshold() = %v", img.Pix)
	}
}

func TestDitherIsBilevel(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	out := Dither(img)
	var black, white int
	for _, p := range out.Pix {
		switch p {
		case 0x00:
			black++
		case 0xff:
			white++
		default:
			t.Fatalf("mid-gray pixel %d survived dithering", p)
		}
	}
	if black == 0 || white == 0 {
		t.Errorf("mid-gray input must dither to a mix, got %d black / %d white", black, white)
	}
}

func TestAssembleBodyExactFit(t *testing.T) {
	cfg := model.DefaultConfig()
	body := image.NewGray(image.Rect(0, 0, cfg.Width, cfg.ContentHeight()))

	out := AssembleBody(body, cfg, false)
	if out.Bounds().Dx() != cfg.Width || out.Bounds().Dy() != cfg.Height {
		t.Fatalf("canvas is %v", out.Bounds())
	}
	// The black body lands between the bands; the bands stay white.
	if out.GrayAt(0, 0).Y != 0xff {
		t.Error("header band overwritten")
	}
	if out.GrayAt(0, cfg.Height-1).Y != 0xff {
		t.Error("footer band overwritten")
	}
	if out.GrayAt(10, cfg.TopPadding+5).Y != 0x00 {
		t.Error("body content missing")
	}
}

func TestAssembleBodyScalesMismatchedSize(t *testing.T) {
	cfg := model.DefaultConfig()
	body := image.NewGray(image.Rect(0, 0, cfg.Width/2, cfg.ContentHeight()/2))

	out := AssembleBody(body, cfg, false)
	if out.Bounds().Dx() != cfg.Width || out.Bounds().Dy() != cfg.Height {
		t.Fatalf("canvas is %v", out.Bounds())
	}
	if out.GrayAt(10, cfg.TopPadding+5).Y != 0x00 {
		t.Error("scaled body content missing")
	}
}
