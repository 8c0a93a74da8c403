// Package theme manages the site's visual theme: the dark, light and zombie
// variants, the persisted preference and the short-lived notification shown
// after a switch.
package theme

import (
	"errors"
	"fmt"
)

// Theme is a named visual variant of the site
type Theme string

const (
	Dark   Theme = "dark"
	Light  Theme = "light"
	Zombie Theme = "zombie"
)

// Default is used when neither a stored preference nor a system signal exists
const Default = Dark

// All lists the themes in cycle order
var All = []Theme{Dark, Light, Zombie}

// ErrUnknownTheme is returned for values outside All
var ErrUnknownTheme = errors.New("unknown theme")

// Parse validates s as a theme name. Only exact names are accepted.
func Parse(s string) (Theme, error) {
	t := Theme(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
	}
	return t, nil
}

// Valid reports whether t is one of All
func (t Theme) Valid() bool {
	return t.index() >= 0
}

// Next returns the theme after t, wrapping after the last.
// An invalid theme advances as if it were Default.
func (t Theme) Next() Theme {
	i := t.index()
	if i < 0 {
		i = Default.index()
	}
	return All[(i+1)%len(All)]
}

// Icon is the glyph shown on the toggle button and in notifications
func (t Theme) Icon() string {
	switch t {
	case Light:
		return "☀️"
	case Zombie:
		return "🧟"
	default:
		return "🌙"
	}
}

// MetaColor is the value of the theme-color meta tag
func (t Theme) MetaColor() string {
	switch t {
	case Light:
		return "#f8fafc"
	case Zombie:
		return "#0d1b0d"
	default:
		return "#0a0e1a"
	}
}

// NameKey is the localization key of the theme's display name
func (t Theme) NameKey() string {
	return "theme." + string(t)
}

// DisplayName is the English name used when no translation is available
func (t Theme) DisplayName() string {
	switch t {
	case Dark:
		return "Dark Theme"
	case Light:
		return "Light Theme"
	case Zombie:
		return "Zombie Theme"
	}
	return string(t)
}

func (t Theme) index() int {
	for i, v := range All {
		if v == t {
			return i
		}
	}
	return -1
}
