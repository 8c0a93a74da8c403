package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"map-gallery/pkg/services"
)

type adminPage struct {
	Maps      int
	Updates   int
	Resources []string
	Source    string

	FlushURL    string
	GenerateURL string
	ClearURL    string
}

func newAdminPage(secret, source string) adminPage {
	base := "/" + secret + "/admin"
	return adminPage{
		Source:      source,
		FlushURL:    base + "/flush",
		GenerateURL: base + "/thumbnails/bulk-generate",
		ClearURL:    base + "/thumbnails/bulk-clear",
	}
}

// AdminHandler renders the admin page
func (s *Server) AdminHandler(w http.ResponseWriter, r *http.Request) {
	s.log.Info("generating admin page")

	data := newAdminPage(s.cfg.SecretKey, s.resources.Source().String())
	if maps, err := s.resources.Maps(r.Context()); err == nil {
		data.Maps = len(maps)
	}
	if ups, err := s.resources.Updates(r.Context()); err == nil {
		data.Updates = len(ups)
	}
	if names, err := s.resources.Resources(r.Context()); err == nil {
		data.Resources = names
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, "admin", data); err != nil {
		s.log.Error("template error", slog.String("template", "admin"), slog.Any("err", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// FeedHandler returns the raw maps and updates collections as JSON
func (s *Server) FeedHandler(w http.ResponseWriter, r *http.Request) {
	maps, err := s.resources.Maps(r.Context())
	if err != nil {
		s.log.Error("error loading maps", slog.Any("err", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	ups, err := s.resources.Updates(r.Context())
	if err != nil {
		s.log.Error("error loading updates", slog.Any("err", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"maps":    maps,
		"updates": ups,
	})
}

// FlushHandler drops the resource cache
func (s *Server) FlushHandler(w http.ResponseWriter, _ *http.Request) {
	s.resources.Flush()
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Cache flushed",
	})
}

type thumbnailRequest struct {
	Image string `json:"image"`
}

// GenerateThumbnailHandler generates the thumbnail of a single map image
func (s *Server) GenerateThumbnailHandler(w http.ResponseWriter, r *http.Request) {
	var req thumbnailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.log.Info("generating thumbnail", slog.String("image", req.Image))
	name, err := s.thumbnails.Generate(r.Context(), req.Image, nil)
	if errors.Is(err, services.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("error generating thumbnail", slog.Any("err", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Thumbnail generated successfully",
		"thumbnail": services.ThumbnailURL(s.cfg, name),
	})
}

// ClearThumbnailHandler removes the thumbnail of a single map image
func (s *Server) ClearThumbnailHandler(w http.ResponseWriter, r *http.Request) {
	var req thumbnailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.log.Info("clearing thumbnail", slog.String("image", req.Image))
	if err := s.thumbnails.Clear(r.Context(), req.Image); err != nil {
		s.log.Error("error clearing thumbnail", slog.Any("err", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Thumbnail cleared successfully",
	})
}

// BulkGenerateThumbnailsHandler generates thumbnails for all maps
func (s *Server) BulkGenerateThumbnailsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Force bool `json:"force"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	s.log.Info("bulk generating thumbnails", slog.Bool("force", req.Force))
	processed, failed, err := s.thumbnails.BulkGenerate(r.Context(), req.Force)
	if err != nil {
		s.log.Error("error in bulk generate", slog.Any("err", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Bulk thumbnail generation completed",
		"processed": processed,
		"errors":    failed,
	})
}

// BulkClearThumbnailsHandler removes all thumbnails
func (s *Server) BulkClearThumbnailsHandler(w http.ResponseWriter, r *http.Request) {
	s.log.Info("bulk clearing thumbnails")

	deleted, err := s.thumbnails.BulkClear(r.Context())
	if err != nil {
		s.log.Error("error in bulk clear", slog.Any("err", err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "All thumbnails cleared successfully",
		"deleted": deleted,
	})
}
