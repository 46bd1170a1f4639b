package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func get(t *testing.T, h http.Handler, target, referer string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, target, nil)
	if referer != "" {
		r.Header.Set("Referer", referer)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestPage_HighlightsFromReferrer(t *testing.T) {
	h := newTestServer(t).Handler()
	w := get(t, h, "/ticket/42.html", "https://www.google.com/search?q=wiki+macros")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `<span class="searchword0">wiki</span>`) ||
		!strings.Contains(body, `<span class="searchword1">macros</span>`) {
		t.Errorf("body = %s", body)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content-type = %q", ct)
	}
}

func TestPage_HighlightsFromOwnQuery(t *testing.T) {
	h := newTestServer(t).Handler()
	w := get(t, h, "/ticket/42.html?q=formatter", "https://www.google.com/search?q=wiki")
	body := w.Body.String()
	if !strings.Contains(body, `<span class="searchword0">formatter</span>`) {
		t.Errorf("body = %s", body)
	}
	if strings.Contains(body, `>wiki</span>`) {
		t.Error("referrer terms should not be used when the page URL has terms")
	}
}

func TestPage_DirectoryIndex(t *testing.T) {
	h := newTestServer(t).Handler()
	w := get(t, h, "/?q=wiki", "")
	if !strings.Contains(w.Body.String(), `<span class="searchword0">wiki</span>`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestPage_UnchangedWithoutTerms(t *testing.T) {
	h := newTestServer(t).Handler()
	w := get(t, h, "/ticket/42.html", "https://example.com/")
	if w.Body.String() != ticketPage {
		t.Errorf("body changed:\n%s", w.Body.String())
	}
}

func TestPage_UnchangedWithoutSearchable(t *testing.T) {
	h := newTestServer(t).Handler()
	w := get(t, h, "/plain.html?q=wiki", "")
	if w.Body.String() != plainPage {
		t.Errorf("body changed:\n%s", w.Body.String())
	}
}

func TestPage_NonHTMLPassesThrough(t *testing.T) {
	h := newTestServer(t).Handler()
	w := get(t, h, "/notes.txt?q=wiki", "")
	if w.Body.String() != "wiki notes" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestPage_NotFound(t *testing.T) {
	h := newTestServer(t).Handler()
	for _, target := range []string{"/missing.html", "/ticket"} {
		if w := get(t, h, target, ""); w.Code != http.StatusNotFound {
			t.Errorf("%s: status %d", target, w.Code)
		}
	}
}

func TestHighlightMiddleware_PassThrough(t *testing.T) {
	srv := newTestServer(t)
	doc := `<div class="searchable">wiki</div>`
	tests := []struct {
		name     string
		status   int
		ctype    string
		encoding string
	}{
		{"not found", http.StatusNotFound, "text/html", ""},
		{"json", http.StatusOK, "application/json", ""},
		{"encoded", http.StatusOK, "text/html", "gzip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.ctype)
				if tt.encoding != "" {
					w.Header().Set("Content-Encoding", tt.encoding)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(doc))
			})
			w := get(t, srv.highlightMiddleware(next), "/?q=wiki", "")
			if w.Code != tt.status || w.Body.String() != doc {
				t.Errorf("got %d %q", w.Code, w.Body.String())
			}
		})
	}
}

func TestHighlightMiddleware_DropsContentLength(t *testing.T) {
	srv := newTestServer(t)
	doc := `<div class="searchable">wiki</div>`
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Length", "34")
		_, _ = w.Write([]byte(doc))
	})
	w := get(t, srv.highlightMiddleware(next), "/?q=wiki", "")
	if w.Header().Get("Content-Length") != "" {
		t.Error("stale Content-Length kept")
	}
	if !strings.Contains(w.Body.String(), "searchword0") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestShouldHighlight(t *testing.T) {
	tests := []struct {
		status int
		ctype  string
		enc    string
		want   bool
	}{
		{200, "text/html", "", true},
		{200, "TEXT/HTML; charset=utf-8", "", true},
		{200, "text/plain", "", false},
		{200, "text/html", "br", false},
		{304, "text/html", "", false},
	}
	for _, tt := range tests {
		h := http.Header{}
		h.Set("Content-Type", tt.ctype)
		if tt.enc != "" {
			h.Set("Content-Encoding", tt.enc)
		}
		if got := shouldHighlight(tt.status, h); got != tt.want {
			t.Errorf("shouldHighlight(%d, %q, %q) = %v", tt.status, tt.ctype, tt.enc, got)
		}
	}
}
