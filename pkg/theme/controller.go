package theme

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"map-gallery/pkg/i18n"
	"map-gallery/pkg/logging"
)

const (
	DefaultDisplay = 2 * time.Second
	DefaultFade    = 300 * time.Millisecond
)

// Attributes are the page-level values that express the active theme
type Attributes struct {
	Theme     Theme  `json:"theme"`
	Icon      string `json:"icon"`
	MetaColor string `json:"metaColor"`
}

// AttributesFor returns the attributes of t
func AttributesFor(t Theme) Attributes {
	return Attributes{Theme: t, Icon: t.Icon(), MetaColor: t.MetaColor()}
}

// Controller owns the active theme and its notification.
// Unlike the stored preference, the active theme is not shared between controllers.
type Controller struct {
	store      Store
	translator i18n.Translator
	display    time.Duration
	fade       time.Duration
	system     *bool

	mu       sync.Mutex
	current  Theme
	attrs    Attributes
	note     *Notification
	timers   []*time.Timer
	onNotify func(Notification)

	log *slog.Logger
}

// Option configures a Controller
type Option func(*Controller)

// WithSystemScheme supplies the operating system's dark/light preference
func WithSystemScheme(dark bool) Option {
	return func(c *Controller) { c.system = &dark }
}

// WithDurations sets how long a notification stays visible and fades
func WithDurations(display, fade time.Duration) Option {
	return func(c *Controller) {
		if display > 0 {
			c.display = display
		}
		if fade > 0 {
			c.fade = fade
		}
	}
}

// WithTranslator localizes notification text
func WithTranslator(t i18n.Translator) Option {
	return func(c *Controller) { c.translator = t }
}

// WithLogger replaces the component logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// NewController picks the initial theme: the stored preference, else the
// system scheme, else Default. Store errors are logged and treated as no
// preference.
func NewController(ctx context.Context, store Store, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		display: DefaultDisplay,
		fade:    DefaultFade,
		log:     logging.WithComponent("theme"),
	}
	for _, opt := range opts {
		opt(c)
	}

	initial := Default
	if stored, ok := c.stored(ctx); ok {
		initial = stored
	} else if c.system != nil {
		initial = schemeTheme(*c.system)
	}
	c.apply(initial)
	return c
}

// Current returns the active theme
func (c *Controller) Current() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Attributes returns the attributes of the active theme
func (c *Controller) Attributes() Attributes {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attrs
}

// ChangeTheme switches to value, persists it and announces the change.
// Unknown values are logged and leave everything untouched.
func (c *Controller) ChangeTheme(ctx context.Context, value string) error {
	t, err := Parse(value)
	if err != nil {
		c.log.Error("theme not found", slog.String("theme", value))
		return err
	}

	if err := c.store.Set(ctx, PreferenceKey, string(t)); err != nil {
		c.log.Error("failed to persist theme", slog.String("theme", string(t)), slog.Any("err", err))
		return fmt.Errorf("persisting theme: %w", err)
	}
	c.apply(t)
	c.announce(t)
	c.log.Debug("theme changed", slog.String("theme", string(t)))
	return nil
}

// CycleTheme advances to the next theme
func (c *Controller) CycleTheme(ctx context.Context) (Theme, error) {
	next := c.Current().Next()
	if err := c.ChangeTheme(ctx, string(next)); err != nil {
		return c.Current(), err
	}
	return next, nil
}

// SystemSchemeChanged follows the operating system's scheme while the
// user has never chosen a theme. It reports whether the theme was applied.
func (c *Controller) SystemSchemeChanged(ctx context.Context, dark bool) bool {
	if _, ok := c.stored(ctx); ok {
		return false
	}
	c.apply(schemeTheme(dark))
	return true
}

// OnNotification registers a listener for every notification phase change
func (c *Controller) OnNotification(fn func(Notification)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onNotify = fn
}

// Notification returns the notification currently on screen
func (c *Controller) Notification() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.note == nil {
		return Notification{}, false
	}
	return *c.note, true
}

// Close cancels pending notification timers and removes the notification
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopTimers()
	c.note = nil
	c.mu.Unlock()
}

func (c *Controller) stored(ctx context.Context) (Theme, bool) {
	v, ok, err := c.store.Get(ctx, PreferenceKey)
	if err != nil {
		c.log.Warn("failed to read theme preference", slog.Any("err", err))
		return "", false
	}
	if !ok {
		return "", false
	}
	t, err := Parse(v)
	if err != nil {
		c.log.Warn("ignoring stored theme", slog.String("theme", v))
		return "", false
	}
	return t, true
}

// apply replaces the attributes wholesale, so applying twice equals applying once
func (c *Controller) apply(t Theme) {
	c.mu.Lock()
	c.current = t
	c.attrs = AttributesFor(t)
	c.mu.Unlock()
}

func (c *Controller) announce(t Theme) {
	n := Notification{
		ID:    uuid.NewString(),
		Theme: t,
		Icon:  t.Icon(),
		Text:  fmt.Sprintf("%s %s", t.Icon(), i18n.Lookup(c.translator, t.NameKey(), t.DisplayName())),
		Phase: PhaseVisible,
	}

	c.mu.Lock()
	c.stopTimers()
	c.note = &n
	c.timers = []*time.Timer{time.AfterFunc(c.display, func() { c.advance(n.ID, PhaseFading) })}
	fn := c.onNotify
	c.mu.Unlock()

	if fn != nil {
		fn(n)
	}
}

func (c *Controller) advance(id string, phase Phase) {
	c.mu.Lock()
	if c.note == nil || c.note.ID != id {
		c.mu.Unlock()
		return
	}
	n := *c.note
	n.Phase = phase
	if phase == PhaseRemoved {
		c.note = nil
		c.timers = nil
	} else {
		c.note = &n
		c.timers = []*time.Timer{time.AfterFunc(c.fade, func() { c.advance(id, PhaseRemoved) })}
	}
	fn := c.onNotify
	c.mu.Unlock()

	if fn != nil {
		fn(n)
	}
}

func (c *Controller) stopTimers() {
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
}

func schemeTheme(dark bool) Theme {
	if dark {
		return Dark
	}
	return Light
}
