package gallery

import (
	"map-gallery/pkg/i18n"
	"map-gallery/pkg/models"
)

// View is everything the gallery page shows for one cursor position
type View struct {
	Empty      bool        `json:"empty"`
	EmptyText  string      `json:"emptyText,omitempty"`
	Slides     []Slide     `json:"slides"`
	Thumbnails []Thumbnail `json:"thumbnails"`
	Info       Info        `json:"info"`
	Counter    Counter     `json:"counter"`
	Overlay    Overlay     `json:"overlay"`
}

// Slide is one image in the viewer; only the active one is visible
type Slide struct {
	Index  int    `json:"index"`
	Image  string `json:"image"`
	Alt    string `json:"alt"`
	Active bool   `json:"active"`
	Class  string `json:"class"`
}

// Thumbnail is one tile of the thumbnail strip
type Thumbnail struct {
	Index   int    `json:"index"`
	Image   string `json:"image"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
	Active  bool   `json:"active"`
	Class   string `json:"class"`
}

// Info is the name and description panel
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Counter reads "Current of Total", Current being 1-based
type Counter struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Overlay is the fullscreen viewer
type Overlay struct {
	Open  bool   `json:"open"`
	Image string `json:"image,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

// Render maps entries and a cursor to a View. It has no side effects.
// An out-of-range cursor renders as the first entry.
func Render(entries []models.MapEntry, current int, fullscreen bool, t i18n.Translator) View {
	if len(entries) == 0 {
		return View{
			Empty:     true,
			EmptyText: i18n.Lookup(t, "gallery.empty", "No maps available yet"),
		}
	}
	if current < 0 || current >= len(entries) {
		current = 0
	}

	v := View{
		Slides:     make([]Slide, len(entries)),
		Thumbnails: make([]Thumbnail, len(entries)),
		Counter:    Counter{Current: current + 1, Total: len(entries)},
	}
	for i, e := range entries {
		name := translate(t, e.NameKey)
		active := i == current
		v.Slides[i] = Slide{Index: i, Image: e.Image, Alt: name, Active: active, Class: activeClass("map-slide", active)}

		thumb := e.Thumbnail
		if thumb == "" {
			thumb = e.Image
		}
		v.Thumbnails[i] = Thumbnail{Index: i, Image: thumb, Alt: name, Caption: name, Active: active, Class: activeClass("map-thumbnail", active)}
	}

	cur := entries[current]
	v.Info = Info{Name: translate(t, cur.NameKey), Description: translate(t, cur.DescriptionKey)}
	if fullscreen {
		v.Overlay = Overlay{Open: true, Image: cur.Image, Alt: v.Info.Name}
	}
	return v
}

// View renders the session's current state
func (s *Session) View(t i18n.Translator) View {
	entries, index, fullscreen := s.Snapshot()
	return Render(entries, index, fullscreen, t)
}

func translate(t i18n.Translator, key string) string {
	if t == nil {
		return key
	}
	return t.T(key)
}

func activeClass(base string, active bool) string {
	if active {
		return base + " active"
	}
	return base
}
