// Package i18n is the localization collaborator shared by the page controllers.
//
// It wraps a go-i18n bundle with a readiness signal, a current language and a
// language-changed notification. Lookups never fail: a missing message
// resolves to its key.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"map-gallery/pkg/logging"
)

//go:embed locales/*.yaml
var embedded embed.FS

// Embedded returns the built-in locale files
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		panic(err)
	}
	return sub
}

// ErrUnsupportedLanguage is returned by SetLanguage for a language with no messages
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Translator resolves localization keys for one language
type Translator interface {
	T(key string) string
	Language() string
}

// Localizer holds the message bundle and the current language
type Localizer struct {
	mu         sync.RWMutex
	fallback   language.Tag
	bundle     *goi18n.Bundle
	localizers map[string]*goi18n.Localizer
	langs      []string
	matcher    language.Matcher
	lang       string

	ready     chan struct{}
	readyOnce sync.Once

	subMu  sync.Mutex
	subs   map[int]func(lang string)
	nextID int

	log *slog.Logger
}

// New creates an empty Localizer. Nothing resolves until Load succeeds.
func New(defaultLang string) *Localizer {
	tag, err := language.Parse(defaultLang)
	if err != nil {
		tag = language.English
	}
	return &Localizer{
		fallback:   tag,
		lang:       baseOf(tag),
		localizers: make(map[string]*goi18n.Localizer),
		ready:      make(chan struct{}),
		subs:       make(map[int]func(string)),
		log:        logging.WithComponent("i18n"),
	}
}

// Load reads every yaml/json message file in fsys and marks the localizer ready
func (l *Localizer) Load(fsys fs.FS) error {
	bundle := goi18n.NewBundle(l.fallback)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yml", yaml.Unmarshal)

	files, err := fs.Glob(fsys, "*")
	if err != nil {
		return fmt.Errorf("listing locale files: %w", err)
	}
	loaded := 0
	for _, name := range files {
		switch path.Ext(name) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		if _, err := bundle.LoadMessageFileFS(fsys, name); err != nil {
			return fmt.Errorf("loading locale %s: %w", name, err)
		}
		loaded++
	}
	if loaded == 0 {
		return errors.New("no locale files found")
	}

	langs := supported(l.fallback, bundle.LanguageTags())
	tags := make([]language.Tag, len(langs))
	for i, s := range langs {
		tags[i] = language.Make(s)
	}

	l.mu.Lock()
	l.bundle = bundle
	l.langs = langs
	l.matcher = language.NewMatcher(tags)
	l.localizers = make(map[string]*goi18n.Localizer)
	l.mu.Unlock()

	l.readyOnce.Do(func() { close(l.ready) })
	l.log.Debug("translations loaded", slog.Int("files", loaded), slog.Any("languages", langs))
	return nil
}

// LoadAsync loads fsys in the background. Failures are logged and leave the
// localizer not ready, so waiters hit their timeout.
func (l *Localizer) LoadAsync(fsys fs.FS) {
	go func() {
		if err := l.Load(fsys); err != nil {
			l.log.Error("failed to load translations", slog.Any("err", err))
		}
	}()
}

// Ready is closed once translations are loaded
func (l *Localizer) Ready() <-chan struct{} {
	return l.ready
}

// IsReady reports whether translations are loaded
func (l *Localizer) IsReady() bool {
	select {
	case <-l.ready:
		return true
	default:
		return false
	}
}

// Languages returns the supported base languages, default first
func (l *Localizer) Languages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.langs...)
}

// Language returns the current language
func (l *Localizer) Language() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lang
}

// T resolves key in the current language
func (l *Localizer) T(key string) string {
	return l.lookup(l.Language(), key)
}

// For returns a Translator bound to lang, independent of the current language
func (l *Localizer) For(lang string) Translator {
	return bound{l: l, lang: lang}
}

// Supports reports whether lang has messages
func (l *Localizer) Supports(lang string) bool {
	base := normalize(lang)
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.langs {
		if s == base {
			return true
		}
	}
	return false
}

// SetLanguage switches the current language and notifies subscribers when it changed
func (l *Localizer) SetLanguage(lang string) error {
	if !l.Supports(lang) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	base := normalize(lang)

	l.mu.Lock()
	changed := l.lang != base
	l.lang = base
	l.mu.Unlock()

	if changed {
		l.notify(base)
	}
	return nil
}

// Match picks the best supported language for an Accept-Language header
func (l *Localizer) Match(acceptLanguage string) string {
	l.mu.RLock()
	matcher, langs := l.matcher, l.langs
	l.mu.RUnlock()

	def := baseOf(l.fallback)
	if matcher == nil {
		return def
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return def
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(langs) {
		return def
	}
	return langs[idx]
}

// OnLanguageChanged registers fn for language changes. The returned func removes it.
func (l *Localizer) OnLanguageChanged(fn func(lang string)) (unsubscribe func()) {
	l.subMu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.subMu.Lock()
			delete(l.subs, id)
			l.subMu.Unlock()
		})
	}
}

func (l *Localizer) notify(lang string) {
	l.subMu.Lock()
	ids := make([]int, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(string), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.subs[id])
	}
	l.subMu.Unlock()

	for _, fn := range fns {
		fn(lang)
	}
}

func (l *Localizer) lookup(lang, key string) string {
	if !l.IsReady() {
		return key
	}
	base := normalize(lang)

	l.mu.RLock()
	loc, ok := l.localizers[base]
	bundle := l.bundle
	l.mu.RUnlock()

	if !ok {
		loc = goi18n.NewLocalizer(bundle, base, l.fallback.String())
		l.mu.Lock()
		l.localizers[base] = loc
		l.mu.Unlock()
	}

	msg, _ := loc.Localize(&goi18n.LocalizeConfig{MessageID: key})
	if msg == "" {
		return key
	}
	return msg
}

type bound struct {
	l    *Localizer
	lang string
}

func (b bound) T(key string) string { return b.l.lookup(b.lang, key) }
func (b bound) Language() string    { return normalize(b.lang) }

// Unavailable is the Translator used when the localizer never became ready:
// every key resolves to itself.
func Unavailable(lang string) Translator {
	return unavailable(normalize(lang))
}

type unavailable string

func (u unavailable) T(key string) string { return key }
func (u unavailable) Language() string    { return string(u) }

// Lookup resolves key through t, returning def when t is nil or has no message
func Lookup(t Translator, key, def string) string {
	if t == nil {
		return def
	}
	if s := t.T(key); s != "" && s != key {
		return s
	}
	return def
}

func supported(fallback language.Tag, tags []language.Tag) []string {
	first := baseOf(fallback)
	seen := map[string]bool{first: true}
	var rest []string
	for _, t := range tags {
		b := baseOf(t)
		if !seen[b] {
			seen[b] = true
			rest = append(rest, b)
		}
	}
	sort.Strings(rest)
	return append([]string{first}, rest...)
}

func baseOf(t language.Tag) string {
	b, _ := t.Base()
	return b.String()
}

func normalize(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return ""
	}
	t, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(lang)
	}
	return baseOf(t)
}
