package gallery

import (
	"testing"

	"map-gallery/pkg/i18n"
	"map-gallery/pkg/models"
)

type fakeTranslator map[string]string

func (f fakeTranslator) T(key string) string {
	if s, ok := f[key]; ok {
		return s
	}
	return key
}

func (f fakeTranslator) Language() string { return "en" }

func TestRenderEmpty(t *testing.T) {
	v := Render(nil, 0, true, nil)
	if !v.Empty {
		t.Fatal("expected empty view")
	}
	if v.EmptyText != "No maps available yet" {
		t.Errorf("EmptyText = %q", v.EmptyText)
	}
	if len(v.Slides) != 0 || len(v.Thumbnails) != 0 || v.Overlay.Open {
		t.Errorf("empty view should render nothing else: %+v", v)
	}
}

func TestRenderMarksActiveEverywhere(t *testing.T) {
	es := []models.MapEntry{
		{Image: "a.png", NameKey: "maps.a.name", DescriptionKey: "maps.a.description"},
		{Image: "b.png", NameKey: "maps.b.name", DescriptionKey: "maps.b.description", Thumbnail: "/thumbs/b.jpg"},
		{Image: "c.png", NameKey: "maps.c.name", DescriptionKey: "maps.c.description"},
	}
	tr := fakeTranslator{"maps.b.name": "Bravo", "maps.b.description": "Second map"}

	v := Render(es, 1, false, tr)
	if v.Empty {
		t.Fatal("unexpected empty view")
	}
	for i, s := range v.Slides {
		if s.Active != (i == 1) {
			t.Errorf("slide %d active=%v", i, s.Active)
		}
		if v.Thumbnails[i].Active != (i == 1) {
			t.Errorf("thumbnail %d active=%v", i, v.Thumbnails[i].Active)
		}
	}
	if v.Slides[1].Class != "map-slide active" || v.Slides[0].Class != "map-slide" {
		t.Errorf("slide classes = %q %q", v.Slides[0].Class, v.Slides[1].Class)
	}
	if v.Thumbnails[1].Class != "map-thumbnail active" || v.Thumbnails[2].Class != "map-thumbnail" {
		t.Errorf("thumbnail classes = %q %q", v.Thumbnails[1].Class, v.Thumbnails[2].Class)
	}
	if v.Info.Name != "Bravo" || v.Info.Description != "Second map" {
		t.Errorf("info = %+v", v.Info)
	}
	if v.Counter != (Counter{Current: 2, Total: 3}) {
		t.Errorf("counter = %+v", v.Counter)
	}
	if v.Thumbnails[1].Image != "/thumbs/b.jpg" || v.Thumbnails[0].Image != "a.png" {
		t.Errorf("thumbnail images = %q %q", v.Thumbnails[0].Image, v.Thumbnails[1].Image)
	}
	if v.Overlay.Open {
		t.Error("overlay should be closed")
	}

	v = Render(es, 2, true, tr)
	if !v.Overlay.Open || v.Overlay.Image != "c.png" {
		t.Errorf("overlay = %+v", v.Overlay)
	}
}

func TestRenderWithUnavailableTranslatorShowsKeys(t *testing.T) {
	es := []models.MapEntry{{Image: "a.png", NameKey: "maps.a.name"}}
	v := Render(es, 0, false, i18n.Unavailable("en"))
	if v.Info.Name != "maps.a.name" {
		t.Errorf("name = %q", v.Info.Name)
	}
}

func TestRenderClampsCursor(t *testing.T) {
	es := []models.MapEntry{{Image: "a.png"}, {Image: "b.png"}}
	v := Render(es, 9, false, nil)
	if !v.Slides[0].Active || v.Counter.Current != 1 {
		t.Errorf("out-of-range cursor should render first entry: %+v", v.Counter)
	}
}
