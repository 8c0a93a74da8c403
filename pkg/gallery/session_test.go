package gallery

import (
	"fmt"
	"testing"

	"map-gallery/pkg/models"
)

func entries(n int) []models.MapEntry {
	out := make([]models.MapEntry, n)
	for i := range out {
		out[i] = models.MapEntry{
			Image:          fmt.Sprintf("res/maps/%d.png", i),
			NameKey:        fmt.Sprintf("maps.%d.name", i),
			DescriptionKey: fmt.Sprintf("maps.%d.description", i),
		}
	}
	return out
}

func TestNextIsCyclic(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for start := 0; start < n; start++ {
			s := NewSession(entries(n))
			s.GoTo(start)
			for i := 0; i < n; i++ {
				s.Next()
			}
			if got, _ := s.Current(); got != start {
				t.Errorf("n=%d start=%d: after %d Next got %d", n, start, n, got)
			}
		}
	}
}

func TestGoToOutOfRangeIsNoop(t *testing.T) {
	for n := 0; n <= 4; n++ {
		s := NewSession(entries(n))
		if n > 0 {
			s.GoTo(n - 1)
		}
		before, _ := s.Current()
		for _, idx := range []int{-1, -100, n, n + 1} {
			if s.GoTo(idx) {
				t.Errorf("n=%d: GoTo(%d) reported a change", n, idx)
			}
			if got, _ := s.Current(); got != before {
				t.Errorf("n=%d: GoTo(%d) moved cursor to %d", n, idx, got)
			}
		}
	}
}

func TestNavigationScenario(t *testing.T) {
	s := NewSession(entries(3))
	s.Next()
	if got, _ := s.Current(); got != 1 {
		t.Fatalf("after Next: %d, want 1", got)
	}
	s.Previous()
	s.Previous()
	if got, _ := s.Current(); got != 2 {
		t.Fatalf("after two Previous: %d, want 2", got)
	}
}

func TestEmptySessionNavigation(t *testing.T) {
	s := NewSession(nil)
	if s.Next() || s.Previous() {
		t.Error("navigation on an empty session should be a no-op")
	}
	if _, ok := s.Current(); ok {
		t.Error("empty session should have no current index")
	}
	if s.OpenFullscreen() {
		t.Error("fullscreen must not open without entries")
	}
	if _, ok := s.Entry(); ok {
		t.Error("empty session has no entry")
	}
}

func TestRestoreClampsIndex(t *testing.T) {
	s := Restore(entries(2), 5, true)
	if got, _ := s.Current(); got != 0 {
		t.Errorf("Restore with stale index: %d, want 0", got)
	}
	if !s.Fullscreen() {
		t.Error("fullscreen should be restored")
	}
	if Restore(nil, 0, true).Fullscreen() {
		t.Error("empty session cannot be fullscreen")
	}
	s = Restore(entries(3), 2, false)
	if got, _ := s.Current(); got != 2 {
		t.Errorf("Restore(2) = %d", got)
	}
}

func TestKeyboardContract(t *testing.T) {
	s := NewSession(entries(3))

	if s.HandleKey(KeyEscape) {
		t.Error("Escape with closed overlay should do nothing")
	}
	s.HandleKey(KeyLeft)
	if got, _ := s.Current(); got != 2 {
		t.Errorf("ArrowLeft from 0 = %d, want 2", got)
	}
	s.HandleKey(KeyRight)
	if got, _ := s.Current(); got != 0 {
		t.Errorf("ArrowRight from 2 = %d, want 0", got)
	}

	s.OpenFullscreen()
	s.HandleKey(KeyRight)
	e, _ := s.Entry()
	v := s.View(nil)
	if !v.Overlay.Open || v.Overlay.Image != e.Image {
		t.Errorf("overlay out of sync: %+v vs %s", v.Overlay, e.Image)
	}
	if !s.HandleKey(KeyEscape) || s.Fullscreen() {
		t.Error("Escape should close the open overlay")
	}
	if s.HandleKey(Key("Enter")) {
		t.Error("unknown key should be ignored")
	}
}
