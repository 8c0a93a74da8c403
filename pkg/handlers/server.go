package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/justinas/nosurf"

	"map-gallery/pkg/config"
	"map-gallery/pkg/i18n"
	"map-gallery/pkg/logging"
	"map-gallery/pkg/services"
)

// Server holds the dependencies shared by all handlers
type Server struct {
	cfg        *config.Config
	resources  *services.Service
	thumbnails *services.ThumbnailService
	localizer  *i18n.Localizer
	sessions   *scs.SessionManager
	renderer   Renderer
	log        *slog.Logger
}

// New creates a server. Sessions are kept in memory.
func New(cfg *config.Config, resources *services.Service, thumbnails *services.ThumbnailService, localizer *i18n.Localizer, renderer Renderer) *Server {
	sm := scs.New()
	sm.Lifetime = 30 * 24 * time.Hour
	sm.Cookie.Name = "map_gallery_session"
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.HttpOnly = true

	return &Server{
		cfg:        cfg,
		resources:  resources,
		thumbnails: thumbnails,
		localizer:  localizer,
		sessions:   sm,
		renderer:   renderer,
		log:        logging.WithComponent("http"),
	}
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.PublicDir))))
	r.Handle("/thumbs/*", http.StripPrefix("/thumbs/", http.FileServer(http.Dir(s.cfg.ThumbnailDir))))
	r.Get("/res/*", s.ResourceHandler)

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.LoadAndSave)
		if s.cfg.CSRF {
			r.Use(noSurf)
		}
		r.Use(clientHints)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/maps", http.StatusFound)
		})

		r.Get("/maps", s.MapsPageHandler)
		r.Post("/maps/next", s.galleryAction(nextAction))
		r.Post("/maps/previous", s.galleryAction(previousAction))
		r.Post("/maps/goto", s.GoToHandler)
		r.Post("/maps/goto/{index}", s.GoToHandler)
		r.Post("/maps/fullscreen", s.galleryAction(openAction))
		r.Post("/maps/fullscreen/close", s.galleryAction(closeAction))
		r.Post("/maps/key", s.KeyHandler)
		r.Post("/maps/autoplay/start", s.AutoplayHandler(true))
		r.Post("/maps/autoplay/stop", s.AutoplayHandler(false))

		r.Get("/updates", s.UpdatesPageHandler)

		r.Post("/theme/cycle", s.CycleThemeHandler)
		r.Post("/theme", s.ChangeThemeHandler)
		r.Post("/lang", s.LanguageHandler)

		r.Group(func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))
			r.Get("/api/maps", s.MapsAPIHandler)
			r.Get("/api/updates", s.UpdatesAPIHandler)
			r.Get("/api/theme", s.ThemeAPIHandler)
		})
	})

	if s.cfg.AdminEnabled() {
		r.Route("/"+s.cfg.SecretKey+"/admin", func(r chi.Router) {
			r.Get("/", s.AdminHandler)
			r.Get("/feed", s.FeedHandler)
			r.Post("/flush", s.FlushHandler)
			r.Post("/thumbnails/generate", s.GenerateThumbnailHandler)
			r.Post("/thumbnails/clear", s.ClearThumbnailHandler)
			r.Post("/thumbnails/bulk-generate", s.BulkGenerateThumbnailsHandler)
			r.Post("/thumbnails/bulk-clear", s.BulkClearThumbnailsHandler)
		})
	}

	return r
}

// noSurf returns a handler that implements CSRF protection
func noSurf(next http.Handler) http.Handler {
	csrfHandler := nosurf.New(next)
	csrfHandler.SetBaseCookie(http.Cookie{
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	return csrfHandler
}

// clientHints asks browsers to send their colour scheme preference
func clientHints(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-CH", schemeHeader)
		w.Header().Add("Vary", schemeHeader)
		next.ServeHTTP(w, r)
	})
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json"
}
