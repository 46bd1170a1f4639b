package highlight

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/hyperjump/searchhi/internal/terms"
	"golang.org/x/net/html"
)

const (
	DefaultSearchableClass = "searchable"
	DefaultClassPrefix     = "searchword"
	DefaultClassCycle      = 5
)

// DefaultExcludedTags are elements whose contents are never altered.
var DefaultExcludedTags = []string{"button", "select", "textarea", "script", "style"}

var defaultExcluded = cascadia.MustCompile(strings.Join(DefaultExcludedTags, ", "))

// Result describes one document rewrite.
type Result struct {
	Terms      []string     `json:"terms"`
	Source     terms.Source `json:"source"`
	Searchable int          `json:"searchable"`
	Highlights int          `json:"highlights"`
}

// Highlighter applies extracted terms to the searchable elements of HTML documents.
type Highlighter struct {
	extractor       *terms.Extractor
	searchableClass string
	classPrefix     string
	classCycle      int
	excluded        goquery.Matcher
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithExtractor sets the term extractor used by Rewrite.
func WithExtractor(e *terms.Extractor) Option {
	return func(h *Highlighter) {
		if e != nil {
			h.extractor = e
		}
	}
}

// WithSearchableClass sets the class that opts an element into highlighting.
func WithSearchableClass(class string) Option {
	return func(h *Highlighter) {
		if class != "" {
			h.searchableClass = class
		}
	}
}

// WithClasses sets the marker class prefix and how many classes are cycled through.
func WithClasses(prefix string, cycle int) Option {
	return func(h *Highlighter) {
		if prefix != "" {
			h.classPrefix = prefix
		}
		if cycle > 0 {
			h.classCycle = cycle
		}
	}
}

// CompileExclusions compiles element names into a single matcher. An empty
// list yields a nil matcher, which excludes nothing.
func CompileExclusions(tags []string) (goquery.Matcher, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	m, err := cascadia.Compile(strings.Join(tags, ", "))
	if err != nil {
		return nil, fmt.Errorf("invalid excluded tags %q: %w", tags, err)
	}
	return m, nil
}

// WithExcludedTags sets the element names whose contents are never altered.
// An empty list disables the exclusion. A list that does not compile keeps
// the current exclusions; use CompileExclusions to validate it first.
func WithExcludedTags(tags []string) Option {
	return func(h *Highlighter) {
		if tags == nil {
			return
		}
		if m, err := CompileExclusions(tags); err == nil {
			h.excluded = m
		}
	}
}

// New returns a Highlighter with default classes and exclusions.
func New(opts ...Option) *Highlighter {
	h := &Highlighter{
		extractor:       terms.NewExtractor(),
		searchableClass: DefaultSearchableClass,
		classPrefix:     DefaultClassPrefix,
		classCycle:      DefaultClassCycle,
		excluded:        defaultExcluded,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Extractor returns the term extractor used by Rewrite.
func (h *Highlighter) Extractor() *terms.Extractor {
	return h.extractor
}

// ClassName returns the marker class for the term at index idx.
func (h *Highlighter) ClassName(idx int) string {
	return fmt.Sprintf("%s%d", h.classPrefix, idx%h.classCycle)
}

// Searchable selects the searchable elements of doc.
func (h *Highlighter) Searchable(doc *goquery.Document) *goquery.Selection {
	return doc.Find("." + h.searchableClass)
}

// Apply highlights terms in order over every searchable element of doc and
// returns the number of spans inserted. Each term is lowercased first.
func (h *Highlighter) Apply(doc *goquery.Document, ts []string) int {
	elems := h.Searchable(doc)
	if elems.Length() == 0 {
		return 0
	}
	total := 0
	for i, t := range ts {
		total += HighlightText(elems, Lower(t), h.ClassName(i), h.excluded)
	}
	return total
}

// Rewrite parses the HTML document in r, highlights the terms extracted from
// pageURL or referrer, and renders the result to w. When the document has no
// searchable element, no terms are extracted and the rendered document is
// otherwise unchanged.
func (h *Highlighter) Rewrite(r io.Reader, w io.Writer, pageURL, referrer string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	res := &Result{Source: terms.SourceNone}
	res.Searchable = h.Searchable(doc).Length()
	if res.Searchable > 0 {
		res.Terms, res.Source = h.extractor.FromPage(pageURL, referrer)
		res.Highlights = h.Apply(doc, res.Terms)
	}
	if err := html.Render(w, doc.Get(0)); err != nil {
		return nil, fmt.Errorf("failed to render html: %w", err)
	}
	return res, nil
}

// RewriteString is Rewrite for in-memory documents.
func (h *Highlighter) RewriteString(doc, pageURL, referrer string) (string, *Result, error) {
	var sb strings.Builder
	res, err := h.Rewrite(strings.NewReader(doc), &sb, pageURL, referrer)
	if err != nil {
		return "", nil, err
	}
	return sb.String(), res, nil
}
