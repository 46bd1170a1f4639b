// Package highlight wraps search terms found in the text of searchable
// elements with marker spans.
package highlight

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// nodeKind is the closed set of node kinds the traversal distinguishes.
type nodeKind int

const (
	kindText nodeKind = iota
	kindElement
	kindOther
)

func kindOf(n *html.Node) nodeKind {
	switch n.Type {
	case html.TextNode:
		return kindText
	case html.ElementNode:
		return kindElement
	default:
		return kindOther
	}
}

// HighlightText wraps the first case-insensitive occurrence of term in each
// text node beneath the nodes of sel with a span carrying className. Elements
// matched by excluded (which may be nil) are left untouched, as are text nodes whose
// parent already carries className. It returns the number of spans inserted.
//
// term must already be lowercased.
func HighlightText(sel *goquery.Selection, term, className string, excluded goquery.Matcher) int {
	if term == "" {
		return 0
	}
	count := 0
	var walk func(s *goquery.Selection)
	walk = func(s *goquery.Selection) {
		n := s.Get(0)
		switch kindOf(n) {
		case kindText:
			if wrapFirst(s, n, term, className) {
				count++
			}
		case kindElement:
			if excluded != nil && s.IsMatcher(excluded) {
				return
			}
			s.Contents().Each(func(_ int, c *goquery.Selection) { walk(c) })
		case kindOther:
			s.Contents().Each(func(_ int, c *goquery.Selection) { walk(c) })
		}
	}
	sel.Each(func(_ int, s *goquery.Selection) { walk(s) })
	return count
}

// wrapFirst splits text node n around the first match of term. The node keeps
// the prefix; a span with the match and a text node with the suffix follow it.
func wrapFirst(s *goquery.Selection, n *html.Node, term, className string) bool {
	start, end, ok := indexFold(n.Data, term)
	if !ok || n.Parent == nil || s.Parent().HasClass(className) {
		return false
	}
	val := n.Data
	span := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Span,
		Data:     "span",
		Attr:     []html.Attribute{{Key: "class", Val: className}},
	}
	span.AppendChild(&html.Node{Type: html.TextNode, Data: val[start:end]})
	suffix := &html.Node{Type: html.TextNode, Data: val[end:]}
	s.AfterNodes(span, suffix)
	n.Data = val[:start]
	return true
}

// indexFold finds the first occurrence of the lowercase term in text after
// lowercasing text rune by rune. It returns byte offsets into text so the
// original casing is preserved.
func indexFold(text, term string) (start, end int, ok bool) {
	want := []rune(term)
	if len(want) == 0 {
		return 0, 0, false
	}
	var (
		lower   []rune
		offsets []int
	)
	for i, r := range text {
		lower = append(lower, unicode.ToLower(r))
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	for i := 0; i+len(want) <= len(lower); i++ {
		if runesEqual(lower[i:i+len(want)], want) {
			return offsets[i], offsets[i+len(want)], true
		}
	}
	return 0, 0, false
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Lower lowercases term rune by rune, matching how text is folded during search.
func Lower(term string) string {
	return strings.Map(unicode.ToLower, term)
}
