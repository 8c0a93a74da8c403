package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChangeList holds the items of one change category. It is written either
// as a list of localized texts, ["one", {"en": "two"}], or as a language
// code to list mapping, {"en": ["one", "two"], "uk": ["один"]}.
type ChangeList struct {
	Items        []LocalizedText
	Translations map[string][]string
}

// Changelist returns a ChangeList of localized items
func Changelist(items ...LocalizedText) ChangeList {
	return ChangeList{Items: items}
}

// TranslatedChangelist returns a per-language ChangeList
func TranslatedChangelist(m map[string][]string) ChangeList {
	return ChangeList{Translations: m}
}

// IsTranslated reports whether the list is keyed by language
func (c ChangeList) IsTranslated() bool {
	return c.Translations != nil
}

// Empty reports whether the list has no items in any language
func (c ChangeList) Empty() bool {
	if !c.IsTranslated() {
		return len(c.Items) == 0
	}
	for _, items := range c.Translations {
		if len(items) > 0 {
			return false
		}
	}
	return true
}

// Resolve returns the item texts for lang. A per-language list resolves to
// the exact language, then "en", then nothing. A list of localized texts
// resolves each item on its own.
func (c ChangeList) Resolve(lang string) []string {
	if c.IsTranslated() {
		if items, ok := c.Translations[lang]; ok {
			return items
		}
		return c.Translations[FallbackLanguage]
	}
	if len(c.Items) == 0 {
		return nil
	}
	out := make([]string, len(c.Items))
	for i, it := range c.Items {
		out[i] = it.Resolve(lang)
	}
	return out
}

// UnmarshalJSON accepts an array of localized texts or an object of string arrays
func (c *ChangeList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ChangeList{}
		return nil
	}
	switch data[0] {
	case '[':
		var items []LocalizedText
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*c = ChangeList{Items: items}
		return nil
	case '{':
		m := map[string][]string{}
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*c = ChangeList{Translations: m}
		return nil
	}
	return fmt.Errorf("change list must be an array or an object, got %s", data)
}

// MarshalJSON writes the same shape that was read
func (c ChangeList) MarshalJSON() ([]byte, error) {
	if c.IsTranslated() {
		return json.Marshal(c.Translations)
	}
	if c.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Items)
}

// MarshalYAML mirrors MarshalJSON for YAML exports
func (c ChangeList) MarshalYAML() (interface{}, error) {
	if c.IsTranslated() {
		return c.Translations, nil
	}
	if c.Items == nil {
		return []LocalizedText{}, nil
	}
	return c.Items, nil
}

// IsZero lets omitzero and omitempty skip empty lists
func (c ChangeList) IsZero() bool {
	return c.Empty()
}
