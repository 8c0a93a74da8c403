// Package gallery holds the maps gallery state: a single cursor over the
// loaded entries shared by the slide viewer, the thumbnail strip and the
// fullscreen overlay.
package gallery

import (
	"sync"

	"map-gallery/pkg/models"
)

// Key is a keyboard key name as reported by the browser
type Key string

const (
	KeyLeft   Key = "ArrowLeft"
	KeyRight  Key = "ArrowRight"
	KeyEscape Key = "Escape"
)

// Session is the cursor over one visitor's gallery.
// The zero value is an empty session.
type Session struct {
	mu         sync.Mutex
	entries    []models.MapEntry
	current    int
	fullscreen bool
}

// NewSession starts a session at the first entry
func NewSession(entries []models.MapEntry) *Session {
	return &Session{entries: entries}
}

// Restore rebuilds a session from stored state. An index that is no longer
// valid for entries falls back to 0; the overlay stays closed when empty.
func Restore(entries []models.MapEntry, index int, fullscreen bool) *Session {
	s := &Session{entries: entries}
	if index >= 0 && index < len(entries) {
		s.current = index
	}
	s.fullscreen = fullscreen && len(entries) > 0
	return s
}

// Len returns the number of entries
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Entries returns the loaded entries
func (s *Session) Entries() []models.MapEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries
}

// Current returns the cursor; ok is false when there are no entries
func (s *Session) Current() (index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return 0, false
	}
	return s.current, true
}

// Entry returns the entry under the cursor
func (s *Session) Entry() (models.MapEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return models.MapEntry{}, false
	}
	return s.entries[s.current], true
}

// Fullscreen reports whether the overlay is open
func (s *Session) Fullscreen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fullscreen
}

// GoTo moves the cursor to index. Out-of-range indexes change nothing.
func (s *Session) GoTo(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goTo(index)
}

// Next advances the cursor, wrapping after the last entry
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	if n == 0 {
		return false
	}
	return s.goTo((s.current + 1) % n)
}

// Previous moves the cursor back, wrapping before the first entry
func (s *Session) Previous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	if n == 0 {
		return false
	}
	return s.goTo((s.current - 1 + n) % n)
}

// OpenFullscreen opens the overlay on the current entry
func (s *Session) OpenFullscreen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return false
	}
	s.fullscreen = true
	return true
}

// CloseFullscreen closes the overlay; it reports whether it was open
func (s *Session) CloseFullscreen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.fullscreen
	s.fullscreen = false
	return was
}

// HandleKey applies the keyboard contract and reports whether state changed.
// Arrows always navigate; Escape only closes an open overlay.
func (s *Session) HandleKey(k Key) bool {
	switch k {
	case KeyLeft:
		return s.Previous()
	case KeyRight:
		return s.Next()
	case KeyEscape:
		if s.Fullscreen() {
			return s.CloseFullscreen()
		}
	}
	return false
}

// Snapshot returns a consistent copy of the session state
func (s *Session) Snapshot() (entries []models.MapEntry, index int, fullscreen bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries, s.current, s.fullscreen
}

func (s *Session) goTo(index int) bool {
	if index < 0 || index >= len(s.entries) {
		return false
	}
	s.current = index
	return true
}
