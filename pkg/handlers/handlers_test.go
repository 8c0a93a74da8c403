package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"map-gallery/pkg/config"
	"map-gallery/pkg/gallery"
	"map-gallery/pkg/i18n"
	"map-gallery/pkg/services"
	"map-gallery/pkg/theme"
)

const mapsJSON = `{"maps": [
  {"image": "maps/harbor.png", "name": "maps.harbor.name", "description": "maps.harbor.description"},
  {"image": "maps/forest.png", "name": "maps.forest.name", "description": "maps.forest.description"},
  {"image": "maps/bunker.png", "name": "maps.bunker.name", "description": "maps.bunker.description"}
]}`

const updatesJSON = `{"updates": [
  {"date": "2024-03-01", "version": "v1.1", "title": "Forest", "type": "minor", "changes": {"added": ["Forest map"]}},
  {"date": "2024-01-10", "version": "v1.0", "title": "First release", "description": "**Hello**"}
]}`

type stubRenderer struct {
	mu   sync.Mutex
	name string
	data interface{}
}

func (s *stubRenderer) Render(w io.Writer, name string, data interface{}) error {
	s.mu.Lock()
	s.name, s.data = name, data
	s.mu.Unlock()
	_, err := io.WriteString(w, "rendered "+name)
	return err
}

func (s *stubRenderer) page(t *testing.T) *Page {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.(*Page)
	if !ok {
		t.Fatalf("rendered %q with %T, want *Page", s.name, s.data)
	}
	return p
}

type testEnv struct {
	ts       *httptest.Server
	client   *http.Client
	renderer *stubRenderer
}

func newTestEnv(t *testing.T, secret string) *testEnv {
	t.Helper()
	r := &stubRenderer{}
	e := newTestEnvWithRenderer(t, secret, r)
	e.renderer = r
	return e
}

func newTestEnvWithRenderer(t *testing.T, secret string, renderer Renderer) *testEnv {
	t.Helper()
	root := t.TempDir()
	for name, content := range map[string]string{"maps.json": mapsJSON, "updates.json": updatesJSON} {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.ResourceBase = root
	cfg.ThumbnailDir = t.TempDir()
	cfg.PublicDir = t.TempDir()
	cfg.SecretKey = secret
	cfg.CSRF = false

	loc := i18n.New("en")
	if err := loc.Load(i18n.Embedded()); err != nil {
		t.Fatal(err)
	}

	resources := services.NewService(cfg, services.NewDirSource(root))
	thumbs := services.NewThumbnailService(cfg, resources)
	srv := New(cfg, resources, thumbs, loc, renderer)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{ts: ts, client: client}
}

func (e *testEnv) do(t *testing.T, method, path string, form url.Values, jsonResp bool) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, e.ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if jsonResp {
		req.Header.Set("Accept", "application/json")
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func (e *testEnv) view(t *testing.T) gallery.View {
	t.Helper()
	resp := e.do(t, http.MethodGet, "/api/maps", nil, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/maps: status %d", resp.StatusCode)
	}
	var v gallery.View
	decode(t, resp, &v)
	return v
}

func TestRootRedirectsToMaps(t *testing.T) {
	e := newTestEnv(t, "")
	resp := e.do(t, http.MethodGet, "/", nil, false)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/maps" {
		t.Errorf("Location = %q, want /maps", loc)
	}
}

func TestMapsPage(t *testing.T) {
	e := newTestEnv(t, "")
	resp := e.do(t, http.MethodGet, "/maps", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Accept-CH") != schemeHeader {
		t.Errorf("Accept-CH = %q", resp.Header.Get("Accept-CH"))
	}

	p := e.renderer.page(t)
	if p.Name != "maps" || p.Gallery == nil {
		t.Fatalf("page = %+v", p)
	}
	if p.Gallery.Counter != (gallery.Counter{Current: 1, Total: 3}) {
		t.Errorf("counter = %+v", p.Gallery.Counter)
	}
	if p.Gallery.Info.Name != "Harbor District" {
		t.Errorf("info name = %q", p.Gallery.Info.Name)
	}
	if p.Theme.Theme != theme.Dark {
		t.Errorf("theme = %q, want dark", p.Theme.Theme)
	}
	if p.Lang != "en" || p.Labels.Next != "Next" {
		t.Errorf("lang = %q, labels = %+v", p.Lang, p.Labels)
	}
}

func TestNavigationPersistsAcrossRequests(t *testing.T) {
	e := newTestEnv(t, "")

	resp := e.do(t, http.MethodPost, "/maps/next", url.Values{}, false)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	e.do(t, http.MethodPost, "/maps/next", url.Values{}, false)
	if got := e.view(t).Counter.Current; got != 3 {
		t.Fatalf("after two nexts current = %d, want 3", got)
	}

	e.do(t, http.MethodPost, "/maps/next", url.Values{}, false)
	if got := e.view(t).Counter.Current; got != 1 {
		t.Errorf("next from last should wrap, current = %d", got)
	}

	e.do(t, http.MethodPost, "/maps/previous", url.Values{}, false)
	if got := e.view(t).Counter.Current; got != 3 {
		t.Errorf("previous from first should wrap, current = %d", got)
	}
}

func TestGoTo(t *testing.T) {
	e := newTestEnv(t, "")

	resp := e.do(t, http.MethodPost, "/maps/goto/abc", url.Values{}, true)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid index status = %d, want 400", resp.StatusCode)
	}

	resp = e.do(t, http.MethodPost, "/maps/goto/1", url.Values{}, true)
	var v gallery.View
	decode(t, resp, &v)
	if v.Counter.Current != 2 || v.Info.Name != "Whispering Forest" {
		t.Errorf("view = %+v", v)
	}

	resp = e.do(t, http.MethodPost, "/maps/goto", url.Values{"index": {"2"}}, false)
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("form goto status = %d, want 303", resp.StatusCode)
	}
	if got := e.view(t).Counter.Current; got != 3 {
		t.Errorf("form goto current = %d, want 3", got)
	}

	resp = e.do(t, http.MethodPost, "/maps/goto", url.Values{}, false)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("form goto without index status = %d, want 400", resp.StatusCode)
	}
}

func TestFullscreenAndKeys(t *testing.T) {
	e := newTestEnv(t, "")

	resp := e.do(t, http.MethodPost, "/maps/fullscreen", url.Values{}, true)
	var v gallery.View
	decode(t, resp, &v)
	if !v.Overlay.Open {
		t.Fatal("overlay should be open")
	}

	e.do(t, http.MethodPost, "/maps/key", url.Values{"key": {string(gallery.KeyLeft)}}, false)
	v = e.view(t)
	if v.Counter.Current != 3 || !v.Overlay.Open {
		t.Errorf("after ArrowLeft view = %+v", v)
	}

	e.do(t, http.MethodPost, "/maps/key", url.Values{"key": {string(gallery.KeyEscape)}}, false)
	if e.view(t).Overlay.Open {
		t.Error("Escape should close the overlay")
	}
}

func TestAutoplayIsOffUntilStarted(t *testing.T) {
	e := newTestEnv(t, "")

	e.do(t, http.MethodGet, "/maps", nil, false)
	if p := e.renderer.page(t); p.AutoPlaying || p.AutoAdvanceMs != 0 {
		t.Fatalf("fresh visitor autoplay = %v, %dms", p.AutoPlaying, p.AutoAdvanceMs)
	}

	resp := e.do(t, http.MethodPost, "/maps/autoplay/start", url.Values{}, true)
	var st autoplayState
	decode(t, resp, &st)
	if !st.Playing || st.Interval != 5000 {
		t.Errorf("start = %+v", st)
	}
	e.do(t, http.MethodGet, "/updates", nil, false)
	if p := e.renderer.page(t); !p.AutoPlaying || p.AutoAdvanceMs != 5000 {
		t.Errorf("after start autoplay = %v, %dms", p.AutoPlaying, p.AutoAdvanceMs)
	}

	resp = e.do(t, http.MethodPost, "/maps/autoplay/stop", url.Values{}, false)
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("stop status = %d, want 303", resp.StatusCode)
	}
	e.do(t, http.MethodGet, "/maps", nil, false)
	if p := e.renderer.page(t); p.AutoPlaying || p.AutoAdvanceMs != 0 {
		t.Errorf("after stop autoplay = %v, %dms", p.AutoPlaying, p.AutoAdvanceMs)
	}
	if got := e.view(t).Counter.Current; got != 1 {
		t.Errorf("toggling autoplay moved the cursor to %d", got)
	}
}

func TestThemeCycleFlashesNotice(t *testing.T) {
	e := newTestEnv(t, "")

	resp := e.do(t, http.MethodPost, "/theme/cycle", url.Values{}, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var tr themeResponse
	decode(t, resp, &tr)
	if tr.Attributes.Theme != theme.Light {
		t.Errorf("theme = %q, want light", tr.Attributes.Theme)
	}
	if tr.Notification == nil || tr.Notification.Text != "☀️ Light Theme" {
		t.Errorf("notification = %+v", tr.Notification)
	}

	e.do(t, http.MethodGet, "/maps", nil, false)
	p := e.renderer.page(t)
	if p.Notice != "☀️ Light Theme" {
		t.Errorf("notice = %q", p.Notice)
	}
	if p.Theme.Theme != theme.Light {
		t.Errorf("page theme = %q", p.Theme.Theme)
	}

	e.do(t, http.MethodGet, "/maps", nil, false)
	if p := e.renderer.page(t); p.Notice != "" {
		t.Errorf("notice should show once, got %q", p.Notice)
	}
}

func TestChangeTheme(t *testing.T) {
	e := newTestEnv(t, "")

	resp := e.do(t, http.MethodPost, "/theme", url.Values{"theme": {"neon"}}, true)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown theme status = %d, want 400", resp.StatusCode)
	}

	resp = e.do(t, http.MethodPost, "/theme", url.Values{"theme": {"zombie"}, "return": {"/updates"}}, false)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/updates" {
		t.Errorf("status = %d, location = %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp = e.do(t, http.MethodGet, "/api/theme", nil, true)
	var tr themeResponse
	decode(t, resp, &tr)
	if tr.Attributes.Theme != theme.Zombie {
		t.Errorf("theme = %q, want zombie", tr.Attributes.Theme)
	}
}

func TestSystemSchemeHint(t *testing.T) {
	e := newTestEnv(t, "")

	req, _ := http.NewRequest(http.MethodGet, e.ts.URL+"/api/theme", nil)
	req.Header.Set(schemeHeader, "light")
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var tr themeResponse
	decode(t, resp, &tr)
	if tr.Attributes.Theme != theme.Light {
		t.Errorf("theme = %q, want light from system scheme", tr.Attributes.Theme)
	}
}

func TestLanguage(t *testing.T) {
	e := newTestEnv(t, "")

	resp := e.do(t, http.MethodPost, "/lang", url.Values{"lang": {"xx"}}, false)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unsupported language status = %d, want 400", resp.StatusCode)
	}

	resp = e.do(t, http.MethodPost, "/lang", url.Values{"lang": {"uk"}}, false)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	e.do(t, http.MethodGet, "/maps", nil, false)
	if p := e.renderer.page(t); p.Lang != "uk" {
		t.Errorf("lang = %q, want uk", p.Lang)
	}
}

func TestUpdatesPage(t *testing.T) {
	e := newTestEnv(t, "")
	e.do(t, http.MethodGet, "/updates", nil, false)

	p := e.renderer.page(t)
	if p.Timeline == nil || len(p.Timeline.Items) != 2 {
		t.Fatalf("timeline = %+v", p.Timeline)
	}
	if !p.Timeline.Items[0].New || p.Timeline.Items[1].New {
		t.Error("only the first entry should be new")
	}
	if !strings.Contains(p.Timeline.Items[1].Description, "<strong>Hello</strong>") {
		t.Errorf("description = %q", p.Timeline.Items[1].Description)
	}
}

func TestHealthz(t *testing.T) {
	e := newTestEnv(t, "")
	resp := e.do(t, http.MethodGet, "/healthz", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestResourceHandler(t *testing.T) {
	e := newTestEnv(t, "")

	resp := e.do(t, http.MethodGet, "/res/maps.json", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	resp = e.do(t, http.MethodGet, "/res/maps/missing.png", nil, false)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing resource status = %d, want 404", resp.StatusCode)
	}
}

func TestAdminRoutes(t *testing.T) {
	e := newTestEnv(t, "s3cret")

	resp := e.do(t, http.MethodGet, "/s3cret/admin/feed", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("feed status = %d", resp.StatusCode)
	}
	var feed struct {
		Maps    []json.RawMessage `json:"maps"`
		Updates []json.RawMessage `json:"updates"`
	}
	decode(t, resp, &feed)
	if len(feed.Maps) != 3 || len(feed.Updates) != 2 {
		t.Errorf("feed has %d maps, %d updates", len(feed.Maps), len(feed.Updates))
	}

	resp = e.do(t, http.MethodPost, "/s3cret/admin/flush", nil, false)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("flush status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, e.ts.URL+"/s3cret/admin/thumbnails/generate", strings.NewReader("{}"))
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("generate without image status = %d, want 400", resp.StatusCode)
	}

	e.do(t, http.MethodGet, "/s3cret/admin/", nil, false)
	e.renderer.mu.Lock()
	name := e.renderer.name
	e.renderer.mu.Unlock()
	if name != "admin" {
		t.Errorf("rendered %q, want admin", name)
	}
}

func TestAdminDisabledWithoutSecret(t *testing.T) {
	e := newTestEnv(t, "")
	resp := e.do(t, http.MethodGet, "/s3cret/admin/feed", nil, false)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
