package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"map-gallery/pkg/gallery"
	"map-gallery/pkg/models"
	"map-gallery/pkg/theme"
	"map-gallery/pkg/updates"
)

var viewsDir = filepath.Join("..", "..", "views")

func fullPage(name string) *Page {
	p := &Page{
		Name:          name,
		Title:         "Maps",
		Lang:          "uk",
		Languages:     []string{"en", "uk"},
		Labels:        labelsFor(nil),
		CSRFToken:     "tok123",
		Theme:         theme.AttributesFor(theme.Zombie),
		Notice:        "🧟 Zombie Theme",
		NoticeDisplay: 2000,
		NoticeFade:    300,
		AutoPlaying:   true,
		AutoAdvanceMs: 5000,
		ReturnPath:    "/" + name,
	}

	entries := []models.MapEntry{
		{Image: "maps/harbor.png", NameKey: "Harbor District", DescriptionKey: "The old port"},
		{Image: "maps/forest.png", NameKey: "Whispering Forest", DescriptionKey: "Dense woodland", Thumbnail: "/thumbs/forest.jpg"},
	}
	view := gallery.Render(entries, 1, true, nil)
	p.Gallery = &view

	var doc models.UpdatesDocument
	json.Unmarshal([]byte(`{"updates": [
	  {"date": "2024-03-01", "version": "v1.1", "title": "Forest", "type": "minor",
	   "description": "A **new** map",
	   "changes": {"added": {"en": ["Forest map"]}, "fixed": ["Zoom <b>bug</b>"]}},
	  {"date": "2024-01-10", "version": "v1.0", "title": "First release", "type": null}
	]}`), &doc)
	tl := updates.Render(doc.Updates, nil)
	p.Timeline = &tl
	return p
}

func render(t *testing.T, r Renderer, name string, data interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		t.Fatalf("render %s: %v", name, err)
	}
	return buf.String()
}

func assertContains(t *testing.T, name, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("%s: output missing %q\n%s", name, w, out)
		}
	}
}

func TestPugViewsRender(t *testing.T) {
	r := NewPugRenderer(viewsDir, true)

	out := render(t, r, "maps", fullPage("maps"))
	assertContains(t, "maps", out,
		"<!DOCTYPE html>",
		`lang="uk"`,
		`class="zombie"`,
		`content="`+theme.Zombie.MetaColor()+`"`,
		`<a class="nav-active" href="/maps">Maps</a>`,
		`<option value="uk" selected>uk</option>`,
		`<option value="en">en</option>`,
		"🧟 Zombie Theme",
		`id="notice-display" type="hidden" value="2000"`,
		`id="autoadvance" type="hidden" value="5000"`,
		`class="map-slide active" src="maps/forest.png"`,
		`class="map-thumbnail active"`,
		`name="index" value="1"`,
		`src="/thumbs/forest.jpg"`,
		"2 of 2",
		`action="/maps/autoplay/stop"`,
		`value="tok123"`,
		`class="overlay"`,
		`/static/js/site.js`,
	)
	if strings.Count(out, "map-slide") != 1 {
		t.Errorf("only the active slide should be rendered:\n%s", out)
	}

	out = render(t, r, "updates", fullPage("updates"))
	assertContains(t, "updates", out,
		`<a class="nav-active" href="/updates">Updates</a>`,
		`class="update-card new"`,
		`class="update-card"`,
		`class="update-badge minor"`,
		`class="update-badge major"`,
		"<strong>new</strong>",
		`class="change-added"`,
		"Forest map",
		"Zoom <b>bug</b>",
	)

	out = render(t, r, "admin", newAdminPage("s3cret", "dir:/res"))
	assertContains(t, "admin", out,
		`action="/s3cret/admin/flush"`,
		`action="/s3cret/admin/thumbnails/bulk-generate"`,
		`action="/s3cret/admin/thumbnails/bulk-clear"`,
		"dir:/res",
		"/static/js/admin.js",
	)
}

func TestPugViewsRenderEmptyStates(t *testing.T) {
	r := NewPugRenderer(viewsDir, false)

	p := fullPage("maps")
	empty := gallery.Render(nil, 0, false, nil)
	p.Gallery = &empty
	p.Notice = ""
	p.AutoPlaying, p.AutoAdvanceMs = false, 0
	out := render(t, r, "maps", p)
	assertContains(t, "maps", out, "No maps available yet", `class="maps-empty"`)
	if strings.Contains(out, "theme-notification") {
		t.Error("notice rendered without a message")
	}

	p = fullPage("updates")
	tl := updates.Render(nil, nil)
	p.Timeline = &tl
	out = render(t, r, "updates", p)
	assertContains(t, "updates", out, "No updates available yet", updates.EmptyIcon)
}

func TestPugRendererUnknownView(t *testing.T) {
	r := NewPugRenderer(viewsDir, true)
	if err := r.Render(io.Discard, "missing", fullPage("maps")); err == nil {
		t.Fatal("expected an error for a missing view")
	}
}

func TestPagesServeWithPugViews(t *testing.T) {
	e := newTestEnvWithRenderer(t, "s3cret", NewPugRenderer(viewsDir, true))

	for _, path := range []string{"/maps", "/updates", "/s3cret/admin/"} {
		resp := e.do(t, http.MethodGet, path, nil, false)
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: status %d\n%s", path, resp.StatusCode, body)
		}
	}

	e.do(t, http.MethodPost, "/maps/autoplay/start", url.Values{}, false)
	resp := e.do(t, http.MethodGet, "/maps", nil, false)
	body, _ := io.ReadAll(resp.Body)
	assertContains(t, "maps", string(body),
		"Harbor District",
		`id="autoadvance" type="hidden" value="5000"`,
		`action="/maps/autoplay/stop"`,
	)
}
