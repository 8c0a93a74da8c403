package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/justinas/nosurf"

	"map-gallery/pkg/gallery"
	"map-gallery/pkg/i18n"
	"map-gallery/pkg/services"
	"map-gallery/pkg/theme"
	"map-gallery/pkg/updates"
)

// session keys
const (
	keyIndex      = "gallery.index"
	keyFullscreen = "gallery.fullscreen"
	keyAutoplay   = "gallery.autoplay"
	keyLang       = "lang"
	keyNotice     = "theme.notice"
)

// language returns the visitor's chosen language, else the best match for
// Accept-Language
func (s *Server) language(r *http.Request) string {
	if lang := s.sessions.GetString(r.Context(), keyLang); lang != "" {
		return lang
	}
	if s.localizer == nil {
		return s.cfg.DefaultLanguage
	}
	return s.localizer.Match(r.Header.Get("Accept-Language"))
}

func (s *Server) translator(r *http.Request) i18n.Translator {
	return i18n.Resolve(r.Context(), s.localizer, s.language(r), s.cfg.I18nTimeout)
}

// loadGallery rebuilds the visitor's gallery from the session
func (s *Server) loadGallery(r *http.Request, t i18n.Translator) *gallery.Controller {
	c := gallery.NewController(s.resources, t)
	c.Load(r.Context())
	c.Restore(s.sessions.GetInt(r.Context(), keyIndex), s.sessions.GetBool(r.Context(), keyFullscreen))
	return c
}

func (s *Server) saveGallery(r *http.Request, c *gallery.Controller) {
	_, index, fullscreen := c.Session().Snapshot()
	s.sessions.Put(r.Context(), keyIndex, index)
	s.sessions.Put(r.Context(), keyFullscreen, fullscreen)
}

func (s *Server) page(r *http.Request, name, title string, t i18n.Translator) *Page {
	p := &Page{
		Name:          name,
		Title:         title,
		Lang:          t.Language(),
		Labels:        labelsFor(t),
		CSRFToken:     nosurf.Token(r),
		Notice:        s.sessions.PopString(r.Context(), keyNotice),
		NoticeDisplay: s.cfg.NotificationDuration.Milliseconds(),
		NoticeFade:    theme.DefaultFade.Milliseconds(),
		ReturnPath:    r.URL.Path,
	}
	if s.sessions.GetBool(r.Context(), keyAutoplay) {
		p.AutoPlaying = true
		p.AutoAdvanceMs = s.autoAdvance().Milliseconds()
	}
	if s.localizer != nil {
		p.Languages = s.localizer.Languages()
	}
	tc := s.themeController(r, t)
	defer tc.Close()
	p.Theme = tc.Attributes()
	return p
}

func (s *Server) render(w http.ResponseWriter, name string, p *Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, name, p); err != nil {
		s.log.Error("template error", slog.String("template", name), slog.Any("err", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// MapsPageHandler renders the gallery page
func (s *Server) MapsPageHandler(w http.ResponseWriter, r *http.Request) {
	t := s.translator(r)
	c := s.loadGallery(r, t)
	view := c.View()

	p := s.page(r, "maps", i18n.Lookup(t, "gallery.title", "Maps"), t)
	p.Gallery = &view
	s.render(w, "maps", p)
}

// UpdatesPageHandler renders the changelog timeline
func (s *Server) UpdatesPageHandler(w http.ResponseWriter, r *http.Request) {
	t := s.translator(r)
	c := updates.NewController(s.resources, t)
	c.Load(r.Context())
	tl := c.Render()

	p := s.page(r, "updates", i18n.Lookup(t, "updates.title", "Updates"), t)
	p.Timeline = &tl
	s.render(w, "updates", p)
}

var (
	nextAction     = (*gallery.Controller).Next
	previousAction = (*gallery.Controller).Previous
	openAction     = (*gallery.Controller).OpenFullscreen
	closeAction    = (*gallery.Controller).CloseFullscreen
)

// galleryAction applies op to the visitor's gallery and stores the result
func (s *Server) galleryAction(op func(*gallery.Controller) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := s.translator(r)
		c := s.loadGallery(r, t)
		op(c)
		s.saveGallery(r, c)
		s.respondGallery(w, r, c)
	}
}

// GoToHandler jumps to the map at the index in the path, or in the "index"
// form value when the path has none
func (s *Server) GoToHandler(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "index")
	if raw == "" {
		raw = r.FormValue("index")
	}
	index, err := strconv.Atoi(raw)
	if err != nil {
		http.Error(w, "Invalid index", http.StatusBadRequest)
		return
	}
	s.galleryAction(func(c *gallery.Controller) bool { return c.GoTo(index) })(w, r)
}

// KeyHandler applies a keyboard key posted as the "key" form value
func (s *Server) KeyHandler(w http.ResponseWriter, r *http.Request) {
	key := gallery.Key(r.FormValue("key"))
	s.galleryAction(func(c *gallery.Controller) bool { return c.HandleKey(key) })(w, r)
}

// autoplayState is the JSON reply of the autoplay handlers
type autoplayState struct {
	Playing  bool  `json:"playing"`
	Interval int64 `json:"interval"`
}

// AutoplayHandler returns a handler that turns the visitor's auto-advance
// on or off. The browser only arms its timer while the flag is on.
func (s *Server) AutoplayHandler(on bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if on {
			s.sessions.Put(r.Context(), keyAutoplay, true)
		} else {
			s.sessions.Remove(r.Context(), keyAutoplay)
		}
		if wantsJSON(r) {
			st := autoplayState{Playing: on}
			if on {
				st.Interval = s.autoAdvance().Milliseconds()
			}
			writeJSON(w, http.StatusOK, st)
			return
		}
		http.Redirect(w, r, "/maps", http.StatusSeeOther)
	}
}

func (s *Server) autoAdvance() time.Duration {
	if s.cfg.AutoAdvance <= 0 {
		return gallery.DefaultInterval
	}
	return s.cfg.AutoAdvance
}

func (s *Server) respondGallery(w http.ResponseWriter, r *http.Request, c *gallery.Controller) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, c.View())
		return
	}
	http.Redirect(w, r, "/maps", http.StatusSeeOther)
}

// MapsAPIHandler returns the visitor's gallery view as JSON
func (s *Server) MapsAPIHandler(w http.ResponseWriter, r *http.Request) {
	c := s.loadGallery(r, s.translator(r))
	writeJSON(w, http.StatusOK, c.View())
}

// UpdatesAPIHandler returns the timeline as JSON
func (s *Server) UpdatesAPIHandler(w http.ResponseWriter, r *http.Request) {
	c := updates.NewController(s.resources, s.translator(r))
	c.Load(r.Context())
	writeJSON(w, http.StatusOK, c.Render())
}

// LanguageHandler stores the visitor's language
func (s *Server) LanguageHandler(w http.ResponseWriter, r *http.Request) {
	lang := r.FormValue("lang")
	if s.localizer == nil || !s.localizer.Supports(lang) {
		http.Error(w, "Unsupported language", http.StatusBadRequest)
		return
	}
	s.sessions.Put(r.Context(), keyLang, lang)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]string{"lang": lang})
		return
	}
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

// ResourceHandler streams a file from the resource source
func (s *Server) ResourceHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	rc, err := s.resources.Source().Open(r.Context(), name)
	if errors.Is(err, services.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.log.Error("error reading resource", slog.String("name", name), slog.Any("err", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=600")
	io.Copy(w, rc)
}

// returnPath is the local path to go back to after a form post
func returnPath(r *http.Request) string {
	p := r.FormValue("return")
	if strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\") {
		return p
	}
	return "/maps"
}
