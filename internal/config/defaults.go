package config

import (
	"github.com/hyperjump/searchhi/internal/highlight"
	"github.com/hyperjump/searchhi/internal/terms"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Content.Root == "" {
		cfg.Content.Root = "/usr/local/var/searchhi/www"
	}
	if cfg.Content.Extensions == nil {
		cfg.Content.Extensions = []string{".html", ".htm"}
	}
	h := &cfg.Highlight
	if h.SearchableClass == "" {
		h.SearchableClass = highlight.DefaultSearchableClass
	}
	if h.ClassPrefix == "" {
		h.ClassPrefix = highlight.DefaultClassPrefix
	}
	if h.ClassCycle <= 0 {
		h.ClassCycle = highlight.DefaultClassCycle
	}
	// An explicit empty list disables exclusions; only nil gets the default.
	if h.ExcludedTags == nil {
		h.ExcludedTags = append([]string(nil), highlight.DefaultExcludedTags...)
	}
	if len(h.QueryParams) == 0 {
		h.QueryParams = append([]string(nil), terms.DefaultParams...)
	}
	if h.MinTermLength <= 0 {
		h.MinTermLength = terms.DefaultMinLength
	}
	if h.MaxTerms <= 0 {
		h.MaxTerms = terms.DefaultMaxTerms
	}
}

// NewHighlighter builds a highlighter from the highlight settings.
func (h *HighlightConfig) NewHighlighter() *highlight.Highlighter {
	extractor := terms.NewExtractor(
		terms.WithParams(h.QueryParams...),
		terms.WithMinLength(h.MinTermLength),
		terms.WithMaxTerms(h.MaxTerms),
	)
	return highlight.New(
		highlight.WithExtractor(extractor),
		highlight.WithSearchableClass(h.SearchableClass),
		highlight.WithClasses(h.ClassPrefix, h.ClassCycle),
		highlight.WithExcludedTags(h.ExcludedTags),
	)
}
