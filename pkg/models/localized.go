package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FallbackLanguage is consulted when the requested language has no text
const FallbackLanguage = "en"

// LocalizedText is either a plain string or a language code to text mapping.
// In JSON it is written as "text" or {"en": "text", "uk": "текст"}.
type LocalizedText struct {
	Plain        string
	Translations map[string]string
}

// Text returns a plain LocalizedText
func Text(s string) LocalizedText {
	return LocalizedText{Plain: s}
}

// Translated returns a per-language LocalizedText
func Translated(m map[string]string) LocalizedText {
	return LocalizedText{Translations: m}
}

// IsTranslated reports whether the value carries a language mapping
func (l LocalizedText) IsTranslated() bool {
	return l.Translations != nil
}

// Resolve returns the text for lang: an exact match, then the "en" entry,
// then "". Plain values resolve to themselves for every language.
func (l LocalizedText) Resolve(lang string) string {
	if !l.IsTranslated() {
		return l.Plain
	}
	if s, ok := l.Translations[lang]; ok {
		return s
	}
	if s, ok := l.Translations[FallbackLanguage]; ok {
		return s
	}
	return ""
}

// UnmarshalJSON accepts a string or an object of strings
func (l *LocalizedText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = LocalizedText{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = LocalizedText{Plain: s}
		return nil
	case '{':
		m := map[string]string{}
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*l = LocalizedText{Translations: m}
		return nil
	}
	return fmt.Errorf("localized text must be a string or an object, got %s", data)
}

// MarshalJSON writes the same shape that was read
func (l LocalizedText) MarshalJSON() ([]byte, error) {
	if l.IsTranslated() {
		return json.Marshal(l.Translations)
	}
	return json.Marshal(l.Plain)
}

// MarshalYAML mirrors MarshalJSON for YAML exports
func (l LocalizedText) MarshalYAML() (interface{}, error) {
	if l.IsTranslated() {
		return l.Translations, nil
	}
	return l.Plain, nil
}
