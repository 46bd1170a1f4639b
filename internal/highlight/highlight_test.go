package highlight

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func mustDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func innerHTML(t *testing.T, s *goquery.Selection) string {
	t.Helper()
	out, err := s.Html()
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestHighlightText_SplitsTextNode(t *testing.T) {
	doc := mustDoc(t, `<p class="searchable">the quick brown fox</p>`)
	p := doc.Find("p")
	if n := HighlightText(p, "quick", "searchword0", nil); n != 1 {
		t.Fatalf("HighlightText() = %d, want 1", n)
	}

	var kinds []html.NodeType
	for c := p.Get(0).FirstChild; c != nil; c = c.NextSibling {
		kinds = append(kinds, c.Type)
	}
	want := []html.NodeType{html.TextNode, html.ElementNode, html.TextNode}
	if len(kinds) != len(want) {
		t.Fatalf("children = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("children = %v, want %v", kinds, want)
		}
	}
	if p.Text() != "the quick brown fox" {
		t.Errorf("text changed: %q", p.Text())
	}
	span := p.Find("span")
	if !span.HasClass("searchword0") || span.Text() != "quick" {
		t.Errorf("unexpected span: %q", innerHTML(t, p))
	}
	if got := innerHTML(t, p); got != `the <span class="searchword0">quick</span> brown fox` {
		t.Errorf("html = %q", got)
	}
}

func TestHighlightText_Idempotent(t *testing.T) {
	doc := mustDoc(t, `<p>the quick brown fox</p>`)
	p := doc.Find("p")
	HighlightText(p, "quick", "searchword0", nil)
	first := innerHTML(t, p)
	if n := HighlightText(p, "quick", "searchword0", nil); n != 0 {
		t.Errorf("second pass inserted %d spans", n)
	}
	if second := innerHTML(t, p); second != first {
		t.Errorf("second pass changed html:\n%s\n%s", first, second)
	}
}

func TestHighlightText_FirstMatchPerNodeOnly(t *testing.T) {
	doc := mustDoc(t, `<p>quick and quick</p>`)
	p := doc.Find("p")
	HighlightText(p, "quick", "hl", nil)
	if got := innerHTML(t, p); got != `<span class="hl">quick</span> and quick` {
		t.Errorf("html = %q", got)
	}
}

func TestHighlightText_CaseInsensitivePreservesCase(t *testing.T) {
	doc := mustDoc(t, `<p>The QUICK Fox</p>`)
	p := doc.Find("p")
	HighlightText(p, "quick", "hl", nil)
	if got := p.Find("span.hl").Text(); got != "QUICK" {
		t.Errorf("span text = %q", got)
	}
}

func TestHighlightText_ExcludedElementsUntouched(t *testing.T) {
	doc := mustDoc(t, `<div><button>quick</button><textarea>quick</textarea>`+
		`<select><option>quick</option></select><span>quick</span></div>`)
	div := doc.Find("div")
	excluded, err := CompileExclusions([]string{"button", "select", "textarea"})
	if err != nil {
		t.Fatal(err)
	}
	n := HighlightText(div, "quick", "hl", excluded)
	if n != 1 {
		t.Fatalf("HighlightText() = %d, want 1", n)
	}
	for _, sel := range []string{"button", "textarea", "select"} {
		if doc.Find(sel + " .hl").Length() != 0 {
			t.Errorf("%s was mutated", sel)
		}
	}
	if doc.Find("div > span > span.hl").Length() != 1 {
		t.Errorf("plain span not highlighted: %q", innerHTML(t, div))
	}
}

func TestHighlightText_NoMatchIsNoop(t *testing.T) {
	doc := mustDoc(t, `<p>nothing to see</p>`)
	p := doc.Find("p")
	before := innerHTML(t, p)
	if n := HighlightText(p, "quick", "hl", nil); n != 0 {
		t.Errorf("HighlightText() = %d", n)
	}
	if n := HighlightText(p, "", "hl", nil); n != 0 {
		t.Errorf("empty term inserted %d spans", n)
	}
	if innerHTML(t, p) != before {
		t.Error("document changed")
	}
}

func TestHighlightText_NestedElements(t *testing.T) {
	doc := mustDoc(t, `<div><p>one <em>trac ticket</em> and <b>trac</b></p><!-- trac --></div>`)
	div := doc.Find("div")
	if n := HighlightText(div, "trac", "hl", nil); n != 2 {
		t.Errorf("HighlightText() = %d, want 2", n)
	}
	if doc.Find("em span.hl").Length() != 1 || doc.Find("b span.hl").Length() != 1 {
		t.Errorf("html = %q", innerHTML(t, div))
	}
}

func TestIndexFold(t *testing.T) {
	tests := []struct {
		name       string
		text, term string
		start, end int
		ok         bool
	}{
		{"ascii", "Hello World", "world", 6, 11, true},
		{"multibyte", "Un CAFÉ noir", "café", 3, 8, true},
		{"kelvin sign folds to k", "\u212Aelvin", "kelvin", 0, 8, true},
		{"missing", "abc", "xyz", 0, 0, false},
		{"term longer than text", "ab", "abc", 0, 0, false},
		{"empty term", "abc", "", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := indexFold(tt.text, tt.term)
			if start != tt.start || end != tt.end || ok != tt.ok {
				t.Errorf("indexFold() = %d, %d, %v; want %d, %d, %v", start, end, ok, tt.start, tt.end, tt.ok)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if kindOf(&html.Node{Type: html.TextNode}) != kindText {
		t.Error("text")
	}
	if kindOf(&html.Node{Type: html.ElementNode}) != kindElement {
		t.Error("element")
	}
	for _, nt := range []html.NodeType{html.DocumentNode, html.CommentNode, html.DoctypeNode} {
		if kindOf(&html.Node{Type: nt}) != kindOther {
			t.Errorf("type %v should be other", nt)
		}
	}
}
