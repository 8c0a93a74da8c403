package handlers

import (
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"sync"

	"github.com/eknkc/pug"
	"github.com/eknkc/pug/compiler"

	"map-gallery/pkg/gallery"
	"map-gallery/pkg/i18n"
	"map-gallery/pkg/theme"
	"map-gallery/pkg/updates"
)

// Renderer writes a named page
type Renderer interface {
	Render(w io.Writer, name string, data interface{}) error
}

// PugRenderer compiles views/<name>.pug on first use
type PugRenderer struct {
	dir   string
	cache bool

	mu        sync.Mutex
	templates map[string]*template.Template
}

// NewPugRenderer renders templates from dir. With cache off every request
// recompiles, which picks up template edits while developing.
func NewPugRenderer(dir string, cache bool) *PugRenderer {
	// the pug loader refuses paths that climb out of its root with ".."
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &PugRenderer{dir: dir, cache: cache, templates: make(map[string]*template.Template)}
}

func (p *PugRenderer) Render(w io.Writer, name string, data interface{}) error {
	tpl, err := p.template(name)
	if err != nil {
		return err
	}
	return tpl.Execute(w, data)
}

func (p *PugRenderer) template(name string) (*template.Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if tpl, ok := p.templates[name]; ok && p.cache {
		return tpl, nil
	}
	tpl, err := pug.CompileFile(name+".pug", pug.Options{Dir: compiler.FsDir(p.dir)})
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	p.templates[name] = tpl
	return tpl, nil
}

// Labels are the static strings of the page chrome
type Labels struct {
	Maps        string
	Updates     string
	Language    string
	Previous    string
	Next        string
	Fullscreen  string
	Close       string
	Of          string
	Play        string
	Pause       string
	ThemeToggle string
}

// Page is the data passed to every template
type Page struct {
	Name      string
	Title     string
	Lang      string
	Languages []string
	Labels    Labels
	CSRFToken string

	Theme         theme.Attributes
	Notice        string
	NoticeDisplay int64 // milliseconds
	NoticeFade    int64 // milliseconds
	AutoPlaying   bool
	AutoAdvanceMs int64 // zero unless AutoPlaying
	Gallery       *gallery.View
	Timeline      *updates.Timeline
	ReturnPath    string
}

func labelsFor(t i18n.Translator) Labels {
	return Labels{
		Maps:        i18n.Lookup(t, "nav.maps", "Maps"),
		Updates:     i18n.Lookup(t, "nav.updates", "Updates"),
		Language:    i18n.Lookup(t, "nav.language", "Language"),
		Previous:    i18n.Lookup(t, "gallery.previous", "Previous"),
		Next:        i18n.Lookup(t, "gallery.next", "Next"),
		Fullscreen:  i18n.Lookup(t, "gallery.fullscreen", "Fullscreen"),
		Close:       i18n.Lookup(t, "gallery.close", "Close"),
		Of:          i18n.Lookup(t, "gallery.counter", "of"),
		Play:        i18n.Lookup(t, "gallery.play", "Play"),
		Pause:       i18n.Lookup(t, "gallery.pause", "Pause"),
		ThemeToggle: i18n.Lookup(t, "theme.toggle", "Switch theme"),
	}
}
