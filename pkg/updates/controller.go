// Package updates renders the changelog timeline.
package updates

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"map-gallery/pkg/i18n"
	"map-gallery/pkg/logging"
	"map-gallery/pkg/models"
)

// UpdateLoader fetches the changelog entries
type UpdateLoader interface {
	Updates(ctx context.Context) ([]models.UpdateEntry, error)
}

// LanguageSource announces language changes and hands out bound translators
type LanguageSource interface {
	OnLanguageChanged(fn func(lang string)) (unsubscribe func())
	For(lang string) i18n.Translator
}

// Controller holds the loaded entries and the last rendered timeline
type Controller struct {
	loader UpdateLoader

	mu         sync.Mutex
	entries    []models.UpdateEntry
	translator i18n.Translator
	timeline   Timeline
	onRender   func(Timeline)
	detach     func()

	log *slog.Logger
}

// NewController creates a controller with no entries
func NewController(loader UpdateLoader, t i18n.Translator) *Controller {
	return &Controller{
		loader:     loader,
		translator: t,
		timeline:   Render(nil, t),
		log:        logging.WithComponent("updates"),
	}
}

// Load fetches the entries. On failure the timeline is empty and the
// error is only logged.
func (c *Controller) Load(ctx context.Context) int {
	entries, err := c.loader.Updates(ctx)
	if err != nil {
		c.log.Error("error loading updates", slog.Any("err", err))
		entries = nil
	}
	if i, ok := outOfOrder(entries); ok {
		c.log.Warn("updates are not ordered newest first; the first entry is still marked new",
			slog.Int("index", i))
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()

	c.log.Info("updates page loaded", slog.Int("total", len(entries)))
	return len(entries)
}

// Entries returns the loaded entries
func (c *Controller) Entries() []models.UpdateEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries
}

// OnRender registers a listener called with every new timeline
func (c *Controller) OnRender(fn func(Timeline)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRender = fn
}

// Render rebuilds the timeline from scratch and replaces the previous one
func (c *Controller) Render() Timeline {
	c.mu.Lock()
	tl := Render(c.entries, c.translator)
	c.timeline = tl
	fn := c.onRender
	c.mu.Unlock()

	if fn != nil {
		fn(tl)
	}
	return tl
}

// Timeline returns the last rendered timeline
func (c *Controller) Timeline() Timeline {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeline
}

// Attach re-renders on every language change of src. Attaching again
// drops the previous subscription.
func (c *Controller) Attach(src LanguageSource) {
	unsubscribe := src.OnLanguageChanged(func(lang string) {
		c.mu.Lock()
		c.translator = src.For(lang)
		c.mu.Unlock()
		c.Render()
	})

	c.mu.Lock()
	prev := c.detach
	c.detach = unsubscribe
	c.mu.Unlock()

	if prev != nil {
		prev()
	}
}

// Close drops the language subscription
func (c *Controller) Close() {
	c.mu.Lock()
	detach := c.detach
	c.detach = nil
	c.mu.Unlock()
	if detach != nil {
		detach()
	}
}

// outOfOrder returns the index of the first entry dated after its
// predecessor. Entries without a parseable English date are skipped.
func outOfOrder(entries []models.UpdateEntry) (int, bool) {
	var prev time.Time
	for i, e := range entries {
		d, err := time.Parse(time.DateOnly, e.Date.Resolve(models.FallbackLanguage))
		if err != nil {
			continue
		}
		if !prev.IsZero() && d.After(prev) {
			return i, true
		}
		prev = d
	}
	return 0, false
}
