package footnote

import (
	"strings"
	"testing"

	"github.com/tsawler/inkpage/htmldoc"
	"github.com/tsawler/inkpage/model"
)

// testChapter builds a chapter plus a cross-reference map from a notes file
// living next to it.
func testChapter(t *testing.T, body, notes string) (*model.Chapter, *Map) {
	t.Helper()
	ch := &model.Chapter{
		Source: "OEBPS/ch1.xhtml",
		Root:   mustParse(t, body),
	}
	var sources []Source
	if notes != "" {
		sources = append(sources, Source{File: "OEBPS/notes.xhtml", Root: mustParse(t, notes)})
	}
	return ch, BuildMap(sources)
}

func renderChapter(t *testing.T, ch *model.Chapter) string {
	t.Helper()
	return htmldoc.InnerHTML(htmldoc.Body(ch.Root))
}

func TestInjectDecimalReference(t *testing.T) {
	ch, refs := testChapter(t,
		`<p>Some claim.<a href="notes.xhtml#fn1">[1]</a> More text.</p>`,
		`<ol><li id="fn1">The supporting note.</li></ol>`)

	n := NewInjector(refs).Inject(ch)
	if n != 1 {
		t.Fatalf("Inject() = %d, want 1", n)
	}

	out := renderChapter(t, ch)
	if !strings.Contains(out, `<sup class="noteref">[1]</sup>`) {
		t.Errorf("missing marker in %q", out)
	}
	if !strings.Contains(out, `class="footnote"`) || !strings.Contains(out, "The supporting note.") {
		t.Errorf("missing footnote block in %q", out)
	}
	// The block goes after the enclosing paragraph, not inside it.
	if p := strings.Index(out, "</p>"); p < 0 || strings.Index(out, "<aside") < p {
		t.Errorf("footnote block not inserted after the paragraph: %q", out)
	}
}

func TestInjectIsIdempotent(t *testing.T) {
	ch, refs := testChapter(t,
		`<p>Claim<a href="notes.xhtml#fn1">[1]</a></p>`,
		`<ol><li id="fn1">Note.</li></ol>`)

	inj := NewInjector(refs)
	inj.Inject(ch)
	first := renderChapter(t, ch)

	if n := inj.Inject(ch); n != 0 {
		t.Errorf("second Inject() = %d, want 0", n)
	}
	if second := renderChapter(t, ch); second != first {
		t.Errorf("second pass changed the tree:\nfirst:  %q\nsecond: %q", first, second)
	}
}

func TestUnresolvedReferenceUnlinked(t *testing.T) {
	ch, refs := testChapter(t,
		`<p>Claim<a href="notes.xhtml#missing">[7]</a></p>`,
		`<ol><li id="fn1">Note.</li></ol>`)

	if n := NewInjector(refs).Inject(ch); n != 0 {
		t.Fatalf("Inject() = %d, want 0", n)
	}

	out := renderChapter(t, ch)
	if strings.Contains(out, "<a ") {
		t.Errorf("unresolved reference kept its link: %q", out)
	}
	if !strings.Contains(out, "[7]") {
		t.Errorf("reference text lost: %q", out)
	}
}

func TestOrdinaryLinkUntouched(t *testing.T) {
	ch, refs := testChapter(t,
		`<p>See <a href="ch2.xhtml">the next chapter</a> for details.</p>`,
		`<ol><li id="fn1">Note.</li></ol>`)

	if n := NewInjector(refs).Inject(ch); n != 0 {
		t.Fatalf("Inject() = %d, want 0", n)
	}
	if out := renderChapter(t, ch); !strings.Contains(out, `<a href="ch2.xhtml">the next chapter</a>`) {
		t.Errorf("ordinary link was rewritten: %q", out)
	}
}

func TestLinkInsideFootnoteBlockSkipped(t *testing.T) {
	ch, refs := testChapter(t,
		`<div class="footnotes"><p><a href="notes.xhtml#fn1">[1]</a> existing note</p></div>`,
		`<ol><li id="fn1">Note.</li></ol>`)

	if n := NewInjector(refs).Inject(ch); n != 0 {
		t.Errorf("Inject() = %d, want 0", n)
	}
}

func TestExternalLinkNeverResolves(t *testing.T) {
	ch, refs := testChapter(t,
		`<p><a epub:type="noteref" href="https://example.com/#fn1">[1]</a></p>`,
		`<ol><li id="fn1">Note.</li></ol>`)

	if n := NewInjector(refs).Inject(ch); n != 0 {
		t.Fatalf("Inject() = %d, want 0", n)
	}
	// A matched but unresolvable reference degrades to plain text.
	if out := renderChapter(t, ch); strings.Contains(out, "<a ") {
		t.Errorf("external link kept: %q", out)
	}
}

func TestReferenceClassification(t *testing.T) {
	tests := []struct {
		name string
		link string
		want bool
	}{
		{"epub noteref", `<a epub:type="noteref" href="#f">x</a>`, true},
		{"doc-noteref role", `<a role="doc-noteref" href="#f">x</a>`, true},
		{"noteref class", `<a class="noteref" href="#f">x</a>`, true},
		{"fn class", `<a class="fn" href="#f">x</a>`, true},
		{"bracketed decimal", `<a href="#f">[12]</a>`, true},
		{"bare decimal", `<a href="#f">3</a>`, true},
		{"parenthesized decimal", `<a href="#f">(4)</a>`, true},
		{"asterisk", `<a href="#f">*</a>`, true},
		{"bracketed roman", `<a href="#f">[xii]</a>`, true},
		{"parenthesized roman", `<a href="#f">(iv)</a>`, true},
		{"bare roman", `<a href="#f">iv</a>`, false},
		{"roman-letter word", `<a href="#f">mill</a>`, false},
		{"mismatched brackets", `<a href="#f">[1</a>`, false},
		{"crossed delimiters", `<a href="#f">(2]</a>`, false},
		{"plain words", `<a href="#f">see note</a>`, false},
		{"mixed text", `<a href="#f">chapter 3</a>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, `<p>`+tt.link+`</p>`)
			link := htmldoc.FindElement(doc, "a")
			if link == nil {
				t.Fatal("fixture has no link")
			}
			got := isFootnoteRef(link, htmldoc.TextContent(link))
			if got != tt.want {
				t.Errorf("isFootnoteRef(%s) = %v, want %v", tt.link, got, tt.want)
			}
		})
	}
}

func TestMarkerLabelForEmptySupLink(t *testing.T) {
	// A link with no text but an embedded sup still counts when explicitly
	// marked; its label falls back to an asterisk.
	ch, refs := testChapter(t,
		`<p>Claim<a epub:type="noteref" href="notes.xhtml#fn1"><sup></sup></a></p>`,
		`<ol><li id="fn1">Note.</li></ol>`)

	if n := NewInjector(refs).Inject(ch); n != 1 {
		t.Fatalf("Inject() = %d, want 1", n)
	}
	if out := renderChapter(t, ch); !strings.Contains(out, `<sup class="noteref">*</sup>`) {
		t.Errorf("missing fallback label: %q", out)
	}
}
