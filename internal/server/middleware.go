package server

import (
	"bytes"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// bufferedWriter holds a downstream response so it can be rewritten before
// anything reaches the client. Headers go straight to the wrapped writer.
type bufferedWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	buf         bytes.Buffer
}

func (b *bufferedWriter) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.status = status
	b.wroteHeader = true
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if !b.wroteHeader {
		b.WriteHeader(http.StatusOK)
	}
	return b.buf.Write(p)
}

// shouldHighlight reports whether a response can be rewritten: a plain,
// successful HTML body.
func shouldHighlight(status int, h http.Header) bool {
	if status != http.StatusOK || h.Get("Content-Encoding") != "" {
		return false
	}
	return strings.Contains(strings.ToLower(h.Get("Content-Type")), "text/html")
}

// highlightMiddleware highlights search terms in HTML responses, taking terms
// from the request URL or, failing that, the Referer header. Responses that
// are not rewritten are passed through unchanged.
func (s *Server) highlightMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		bw := &bufferedWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(bw, r)

		body := bw.buf.Bytes()
		if shouldHighlight(bw.status, w.Header()) {
			var out bytes.Buffer
			res, err := s.highlighter.Rewrite(bytes.NewReader(body), &out, r.URL.RequestURI(), r.Referer())
			switch {
			case err != nil:
				s.logger.Warn("highlight rewrite failed", zap.String("path", r.URL.Path), zap.Error(err))
			case res.Highlights > 0:
				body = out.Bytes()
				w.Header().Del("Content-Length")
				s.logger.Debug("highlighted page",
					zap.String("path", r.URL.Path),
					zap.String("source", string(res.Source)),
					zap.Strings("terms", res.Terms),
					zap.Int("highlights", res.Highlights),
				)
			}
		}
		w.WriteHeader(bw.status)
		_, _ = w.Write(body)
	})
}
