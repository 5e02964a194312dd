package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/docview/docview/internal/engine"
	"github.com/docview/docview/internal/source"
	"github.com/docview/docview/internal/viewer"
)

// handleOpen opens a document from an uploaded file (multipart form,
// field "file") or a remote locator (JSON body {"url": "..."}).
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.refFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.manager.Open(r.Context(), ref); err != nil {
		if errors.Is(err, viewer.ErrLoadCancelled) {
			jsonError(w, "open superseded by a newer request", http.StatusConflict)
			return
		}
		var exhausted *viewer.ExhaustedError
		if errors.As(err, &exhausted) {
			jsonError(w, exhausted.Error(), http.StatusBadGateway)
			return
		}
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"state":       s.manager.State().String(),
		"total_pages": s.manager.TotalPages(),
		"metadata":    s.manager.DocumentInfo(),
	})
}

func (s *Server) refFromRequest(w http.ResponseWriter, r *http.Request) (source.Ref, bool) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return source.Ref{}, false
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return source.Ref{}, false
		}
		defer file.Close()

		filename := sanitizeFilename(header.Filename)
		if !engine.IsSupportedExtension(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return source.Ref{}, false
		}

		data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return source.Ref{}, false
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return source.Ref{}, false
		}
		return source.FromBytes(filename, data), true
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return source.Ref{}, false
	}
	if body.URL == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return source.Ref{}, false
	}
	return source.FromURL(body.URL), true
}

// handleInfo reports session state and the open document's metadata.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"state":       s.manager.State().String(),
		"total_pages": s.manager.TotalPages(),
		"metadata":    s.manager.DocumentInfo(),
	})
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "pageNum"))
	if err != nil {
		jsonError(w, "invalid page number", http.StatusBadRequest)
		return
	}

	page, err := s.manager.GetPage(r.Context(), n)
	if err != nil {
		switch {
		case errors.Is(err, viewer.ErrNoDocument):
			jsonError(w, "no document open", http.StatusConflict)
		case errors.Is(err, viewer.ErrOutOfRange):
			jsonError(w, err.Error(), http.StatusNotFound)
		default:
			jsonError(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"page_number": page.Number(),
		"total_pages": s.manager.TotalPages(),
		"text":        page.Text(),
	})
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	s.manager.Close()
	w.WriteHeader(http.StatusNoContent)
}

// handleCacheCleanup drops cached pages far from the reading position,
// e.g. after a large jump.
func (s *Server) handleCacheCleanup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentPage int `json:"current_page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.CurrentPage < 1 {
		jsonError(w, "current_page must be >= 1", http.StatusBadRequest)
		return
	}
	s.manager.CleanupCache(body.CurrentPage)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.manager.CacheStats())
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.manager.CacheStats())
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}
