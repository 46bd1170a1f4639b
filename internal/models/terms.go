// Package models defines the request and response bodies of the searchhi API.
package models

import (
	"fmt"

	"github.com/hyperjump/searchhi/internal/terms"
)

// TermsRequest asks for the terms a page visit would highlight. URLs are
// scanned verbatim: a #fragment stays part of the last query value.
type TermsRequest struct {
	URL      string `json:"url"`
	Referrer string `json:"referrer,omitempty"`
}

// Validate returns an error when neither URL is set.
func (r *TermsRequest) Validate() error {
	if r.URL == "" && r.Referrer == "" {
		return fmt.Errorf("url or referrer is required")
	}
	return nil
}

// TermsResponse lists extracted terms and which URL they came from.
type TermsResponse struct {
	Terms  []string     `json:"terms"`
	Source terms.Source `json:"source"`
}

// HighlightRequest carries an HTML document to highlight.
type HighlightRequest struct {
	HTML     string `json:"html"`
	URL      string `json:"url,omitempty"`
	Referrer string `json:"referrer,omitempty"`
}

// Validate returns an error when the document is empty.
func (r *HighlightRequest) Validate() error {
	if r.HTML == "" {
		return fmt.Errorf("html cannot be empty")
	}
	return nil
}

// HighlightResponse is the rewritten document with a summary of what was highlighted.
type HighlightResponse struct {
	HTML       string       `json:"html"`
	Terms      []string     `json:"terms"`
	Source     terms.Source `json:"source"`
	Highlights int          `json:"highlights"`
}
