// Package terms extracts search-engine query terms from page and referrer URLs.
package terms

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMinLength is the minimum number of characters a term must have.
	DefaultMinLength = 3
	// DefaultMaxTerms caps how many terms a single URL can yield.
	DefaultMaxTerms = 10
)

// DefaultParams are the query parameters searched for terms: q= for Google, p= for Yahoo.
var DefaultParams = []string{"q", "p"}

// Source records which URL the terms were taken from.
type Source string

const (
	SourceNone     Source = "none"
	SourceURL      Source = "url"
	SourceReferrer Source = "referrer"
)

// space is one whitespace character, including \v and the Unicode space separators.
const space = `[\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]`

var (
	// splitter matches quoted phrases and whitespace runs. Matches are kept as tokens.
	splitter = regexp.MustCompile(`(".*?"|'.*?'|` + space + `+)`)
	blank    = regexp.MustCompile(`^` + space + `+$`)
)

// Extractor pulls an ordered, bounded list of terms out of a URL's query string.
type Extractor struct {
	params    []string
	minLength int
	maxTerms  int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithParams sets the recognised query parameter names (case-sensitive).
func WithParams(params ...string) Option {
	return func(e *Extractor) {
		if len(params) > 0 {
			e.params = append([]string(nil), params...)
		}
	}
}

// WithMinLength sets the minimum term length in characters.
func WithMinLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minLength = n
		}
	}
}

// WithMaxTerms sets the maximum number of terms returned.
func WithMaxTerms(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxTerms = n
		}
	}
}

// NewExtractor returns an extractor with the default parameters, applying opts.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		params:    DefaultParams,
		minLength: DefaultMinLength,
		maxTerms:  DefaultMaxTerms,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract returns the terms of rawURL using the default extractor.
func Extract(rawURL string) []string {
	return defaultExtractor.Extract(rawURL)
}

// FromPage applies the page-then-referrer policy using the default extractor.
func FromPage(pageURL, referrer string) ([]string, Source) {
	return defaultExtractor.FromPage(pageURL, referrer)
}

// FromPage extracts terms from pageURL, falling back to referrer when the page
// URL yields none. The first non-empty result wins.
func (e *Extractor) FromPage(pageURL, referrer string) ([]string, Source) {
	if t := e.Extract(pageURL); len(t) > 0 {
		return t, SourceURL
	}
	if t := e.Extract(referrer); len(t) > 0 {
		return t, SourceReferrer
	}
	return nil, SourceNone
}

// Extract returns the terms found in the first recognised query parameter of
// rawURL, in order, possibly with duplicates. Malformed input yields nil.
// A #fragment is not special: it stays part of the last parameter's value.
func (e *Extractor) Extract(rawURL string) []string {
	q := strings.IndexByte(rawURL, '?')
	if q < 0 {
		return nil
	}
	for _, param := range strings.Split(rawURL[q+1:], "&") {
		kv := strings.Split(param, "=")
		if len(kv) < 2 {
			continue
		}
		if e.recognised(kv[0]) {
			query, ok := decode(kv[1])
			if !ok {
				return nil
			}
			return e.tokenize(strings.TrimPrefix(query, "!"))
		}
	}
	return nil
}

func (e *Extractor) recognised(key string) bool {
	for _, p := range e.params {
		if key == p {
			return true
		}
	}
	return false
}

// decode replaces '+' with spaces and percent-decodes the result.
func decode(value string) (string, bool) {
	s, err := url.PathUnescape(strings.ReplaceAll(value, "+", " "))
	if err != nil || !utf8.ValidString(s) {
		return "", false
	}
	return s, true
}

func (e *Extractor) tokenize(query string) []string {
	var out []string
	for _, piece := range splitKeep(query) {
		if len(out) >= e.maxTerms {
			break
		}
		if piece == "" || blank.MatchString(piece) {
			continue
		}
		piece = trimQuote(piece, true)
		piece = trimQuote(piece, false)
		if utf8.RuneCountInString(piece) >= e.minLength {
			out = append(out, piece)
		}
	}
	return out
}

// splitKeep splits s around splitter matches, keeping the matches themselves
// in place between the surrounding pieces.
func splitKeep(s string) []string {
	var pieces []string
	last := 0
	for _, m := range splitter.FindAllStringIndex(s, -1) {
		pieces = append(pieces, s[last:m[0]], s[m[0]:m[1]])
		last = m[1]
	}
	return append(pieces, s[last:])
}

func trimQuote(s string, leading bool) string {
	if s == "" {
		return s
	}
	if leading {
		if s[0] == '"' || s[0] == '\'' {
			return s[1:]
		}
		return s
	}
	if c := s[len(s)-1]; c == '"' || c == '\'' {
		return s[:len(s)-1]
	}
	return s
}
