// Package cli provides output helpers for the searchhi command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/searchhi/internal/highlight"
	"github.com/hyperjump/searchhi/internal/models"
)

// OutputFormat is the format for terms output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one term per line, nothing else.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
}

// WriteTerms writes extracted terms to w in the given format. Text output
// names the class h would give each term; a nil h uses the default classes.
func WriteTerms(w io.Writer, response *models.TermsResponse, format OutputFormat, h *highlight.Highlighter) error {
	switch format {
	case OutputJSON:
		if response.Terms == nil {
			response = &models.TermsResponse{Terms: []string{}, Source: response.Source}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for _, t := range response.Terms {
			if _, err := fmt.Fprintln(w, t); err != nil {
				return err
			}
		}
		return nil
	default:
		if h == nil {
			h = highlight.New()
		}
		return writeTermsText(w, response, h)
	}
}

func writeTermsText(w io.Writer, response *models.TermsResponse, h *highlight.Highlighter) error {
	if len(response.Terms) == 0 {
		_, err := fmt.Fprintln(w, "No search terms found")
		return err
	}
	fmt.Fprintf(w, "Found %d term(s) in %s URL\n\n", len(response.Terms), response.Source)
	for i, t := range response.Terms {
		fmt.Fprintf(w, "%2d  %-12s %s\n", i+1, h.ClassName(i), t)
	}
	return nil
}

// TermsLine joins terms for a single log or status line.
func TermsLine(ts []string) string {
	quoted := make([]string, len(ts))
	for i, t := range ts {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return strings.Join(quoted, " ")
}
