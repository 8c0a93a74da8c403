package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"map-gallery/pkg/i18n"
	"map-gallery/pkg/theme"
)

// schemeHeader is the client hint carrying the OS colour scheme
const schemeHeader = "Sec-CH-Prefers-Color-Scheme"

// SessionStore keeps preferences in the visitor's session
type SessionStore struct {
	sm *scs.SessionManager
}

func NewSessionStore(sm *scs.SessionManager) *SessionStore {
	return &SessionStore{sm: sm}
}

func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	k := "pref." + key
	if !s.sm.Exists(ctx, k) {
		return "", false, nil
	}
	return s.sm.GetString(ctx, k), true, nil
}

func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	s.sm.Put(ctx, "pref."+key, value)
	return nil
}

// themeController builds the visitor's theme controller. Notifications are
// flashed into the session for the next page view.
func (s *Server) themeController(r *http.Request, t i18n.Translator) *theme.Controller {
	opts := []theme.Option{
		theme.WithTranslator(t),
		theme.WithDurations(s.cfg.NotificationDuration, theme.DefaultFade),
	}
	switch r.Header.Get(schemeHeader) {
	case "dark":
		opts = append(opts, theme.WithSystemScheme(true))
	case "light":
		opts = append(opts, theme.WithSystemScheme(false))
	}

	ctx := r.Context()
	c := theme.NewController(ctx, NewSessionStore(s.sessions), opts...)
	c.OnNotification(func(n theme.Notification) {
		if n.Phase == theme.PhaseVisible {
			s.sessions.Put(ctx, keyNotice, n.Text)
		}
	})
	return c
}

type themeResponse struct {
	Attributes   theme.Attributes    `json:"attributes"`
	Notification *theme.Notification `json:"notification,omitempty"`
}

func (s *Server) respondTheme(w http.ResponseWriter, r *http.Request, c *theme.Controller) {
	if wantsJSON(r) {
		resp := themeResponse{Attributes: c.Attributes()}
		if n, ok := c.Notification(); ok {
			resp.Notification = &n
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

// CycleThemeHandler advances the visitor's theme
func (s *Server) CycleThemeHandler(w http.ResponseWriter, r *http.Request) {
	c := s.themeController(r, s.translator(r))
	defer c.Close()

	if _, err := c.CycleTheme(r.Context()); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.respondTheme(w, r, c)
}

// ChangeThemeHandler sets the theme posted as the "theme" form value
func (s *Server) ChangeThemeHandler(w http.ResponseWriter, r *http.Request) {
	c := s.themeController(r, s.translator(r))
	defer c.Close()

	if err := c.ChangeTheme(r.Context(), r.FormValue("theme")); err != nil {
		if errors.Is(err, theme.ErrUnknownTheme) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.respondTheme(w, r, c)
}

// ThemeAPIHandler returns the visitor's theme attributes
func (s *Server) ThemeAPIHandler(w http.ResponseWriter, r *http.Request) {
	c := s.themeController(r, s.translator(r))
	defer c.Close()
	writeJSON(w, http.StatusOK, themeResponse{Attributes: c.Attributes()})
}
