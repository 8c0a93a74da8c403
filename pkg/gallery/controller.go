package gallery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"map-gallery/pkg/i18n"
	"map-gallery/pkg/logging"
	"map-gallery/pkg/models"
)

// MapLoader fetches the maps collection
type MapLoader interface {
	Maps(ctx context.Context) ([]models.MapEntry, error)
}

// Controller drives one gallery: it loads entries, owns the session and
// reports every state change to an optional listener.
type Controller struct {
	loader MapLoader

	mu         sync.Mutex
	session    *Session
	translator i18n.Translator
	onChange   func(View)
	auto       *AutoAdvancer

	log *slog.Logger
}

// NewController creates a controller with an empty session
func NewController(loader MapLoader, t i18n.Translator) *Controller {
	return &Controller{
		loader:     loader,
		session:    NewSession(nil),
		translator: t,
		log:        logging.WithComponent("gallery"),
	}
}

// Load fetches the maps. A failed fetch leaves the gallery empty; it is
// logged, not returned.
func (c *Controller) Load(ctx context.Context) int {
	entries, err := c.loader.Maps(ctx)
	if err != nil {
		c.log.Error("error loading maps", slog.Any("err", err))
		entries = nil
	}

	c.mu.Lock()
	c.session = NewSession(entries)
	c.mu.Unlock()

	c.log.Info("maps page loaded", slog.Int("total", len(entries)))
	c.changed()
	return len(entries)
}

// Restore reapplies a visitor's stored cursor and overlay state to the
// loaded entries. A stale index falls back to the first entry.
func (c *Controller) Restore(index int, fullscreen bool) {
	c.mu.Lock()
	c.session = Restore(c.session.Entries(), index, fullscreen)
	c.mu.Unlock()
}

// Session returns the current session
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetTranslator swaps the translator, e.g. after a language change
func (c *Controller) SetTranslator(t i18n.Translator) {
	c.mu.Lock()
	c.translator = t
	c.mu.Unlock()
	c.changed()
}

// OnChange registers the listener called with the new view after each change
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// View renders the current state
func (c *Controller) View() View {
	c.mu.Lock()
	s, t := c.session, c.translator
	c.mu.Unlock()
	return s.View(t)
}

// GoTo selects the entry at index. Out-of-range indices are ignored.
func (c *Controller) GoTo(index int) bool { return c.apply(func(s *Session) bool { return s.GoTo(index) }) }

// Next moves to the following entry, wrapping after the last
func (c *Controller) Next() bool { return c.apply((*Session).Next) }

// Previous moves to the preceding entry, wrapping before the first
func (c *Controller) Previous() bool { return c.apply((*Session).Previous) }

// OpenFullscreen shows the current entry in the overlay
func (c *Controller) OpenFullscreen() bool { return c.apply((*Session).OpenFullscreen) }

// CloseFullscreen hides the overlay
func (c *Controller) CloseFullscreen() bool { return c.apply((*Session).CloseFullscreen) }

// HandleKey applies a keyboard command. Each method reports whether the
// state changed; the listener is only notified when it did.
func (c *Controller) HandleKey(k Key) bool { return c.apply(func(s *Session) bool { return s.HandleKey(k) }) }

// StartAutoAdvance calls Next every interval until StopAutoAdvance
func (c *Controller) StartAutoAdvance(interval time.Duration) bool {
	c.mu.Lock()
	if c.auto == nil {
		c.auto = NewAutoAdvancer(interval, func() { c.Next() })
	}
	auto := c.auto
	c.mu.Unlock()
	return auto.Start()
}

// StopAutoAdvance stops the auto-advance ticker, if running. It is safe to
// call from an OnChange listener fired by an automatic step.
func (c *Controller) StopAutoAdvance() bool {
	c.mu.Lock()
	auto := c.auto
	c.auto = nil
	c.mu.Unlock()
	if auto == nil {
		return false
	}
	return auto.Stop()
}

func (c *Controller) apply(op func(*Session) bool) bool {
	if !op(c.Session()) {
		return false
	}
	c.changed()
	return true
}

func (c *Controller) changed() {
	c.mu.Lock()
	fn, s, t := c.onChange, c.session, c.translator
	c.mu.Unlock()
	if fn != nil {
		fn(s.View(t))
	}
}
