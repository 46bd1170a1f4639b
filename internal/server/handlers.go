package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/hyperjump/searchhi/internal/models"
	"github.com/hyperjump/searchhi/internal/pages"
	"github.com/hyperjump/searchhi/pkg/utils"
	"go.uber.org/zap"
)

func (s *Server) handleTerms(w http.ResponseWriter, r *http.Request) {
	var req models.TermsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	found, source := s.highlighter.Extractor().FromPage(req.URL, req.Referrer)
	s.logger.Debug("terms request",
		zap.String("url", utils.Truncate(req.URL, 200)),
		zap.String("source", string(source)),
		zap.Int("terms", len(found)),
	)
	if found == nil {
		found = []string{}
	}
	s.respondJSON(w, http.StatusOK, &models.TermsResponse{Terms: found, Source: source})
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req models.HighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, res, err := s.highlighter.RewriteString(req.HTML, req.URL, req.Referrer)
	if err != nil {
		s.logger.Error("highlight failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if res.Highlights == 0 {
		out = req.HTML
	}
	if res.Terms == nil {
		res.Terms = []string{}
	}
	s.logger.Debug("highlight request",
		zap.String("source", string(res.Source)),
		zap.Strings("terms", res.Terms),
		zap.Int("highlights", res.Highlights),
	)
	s.respondJSON(w, http.StatusOK, &models.HighlightResponse{
		HTML:       out,
		Terms:      res.Terms,
		Source:     res.Source,
		Highlights: res.Highlights,
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.pages.Get(r.URL.Path)
	if errors.Is(err, pages.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("page read failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctype := mime.TypeByExtension(filepath.Ext(page.Name))
	if ctype == "" {
		ctype = http.DetectContentType(page.Data)
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Last-Modified", page.ModTime.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page.Data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "cached_pages": s.pages.Len()})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
