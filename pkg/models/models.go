package models

// MapEntry represents one image in the maps gallery.
// Name and Description hold localization keys, not display text.
type MapEntry struct {
	Image          string `json:"image" yaml:"image"`
	NameKey        string `json:"name" yaml:"name"`
	DescriptionKey string `json:"description" yaml:"description"`
	Thumbnail      string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
}

// MapsDocument is the top-level shape of maps.json
type MapsDocument struct {
	Maps []MapEntry `json:"maps" yaml:"maps"`
}

// UpdateType classifies a changelog entry
type UpdateType string

const (
	UpdateMajor UpdateType = "major"
	UpdateMinor UpdateType = "minor"
	UpdatePatch UpdateType = "patch"
)

// Normalize maps an empty or unrecognized type to major
func (t UpdateType) Normalize() UpdateType {
	switch t {
	case UpdateMajor, UpdateMinor, UpdatePatch:
		return t
	default:
		return UpdateMajor
	}
}

// UpdateEntry represents one changelog entry
type UpdateEntry struct {
	Date        LocalizedText `json:"date" yaml:"date"`
	Version     LocalizedText `json:"version" yaml:"version"`
	Title       LocalizedText `json:"title" yaml:"title"`
	Description LocalizedText `json:"description" yaml:"description"`
	Changes     *Changes      `json:"changes,omitempty" yaml:"changes,omitempty"`
	Type        UpdateType    `json:"type,omitempty" yaml:"type,omitempty"`
}

// UpdatesDocument is the top-level shape of updates.json
type UpdatesDocument struct {
	Updates []UpdateEntry `json:"updates" yaml:"updates"`
}

// ChangeCategory names one list inside Changes
type ChangeCategory string

const (
	ChangeAdded    ChangeCategory = "added"
	ChangeImproved ChangeCategory = "improved"
	ChangeFixed    ChangeCategory = "fixed"
	ChangeRemoved  ChangeCategory = "removed"
)

// ChangeCategories lists the categories in display order
var ChangeCategories = []ChangeCategory{ChangeAdded, ChangeImproved, ChangeFixed, ChangeRemoved}

// Changes groups the items of an update by category
type Changes struct {
	Added    ChangeList `json:"added,omitzero" yaml:"added,omitempty"`
	Improved ChangeList `json:"improved,omitzero" yaml:"improved,omitempty"`
	Fixed    ChangeList `json:"fixed,omitzero" yaml:"fixed,omitempty"`
	Removed  ChangeList `json:"removed,omitzero" yaml:"removed,omitempty"`
}

// Items returns the list for a category
func (c *Changes) Items(cat ChangeCategory) ChangeList {
	if c == nil {
		return ChangeList{}
	}
	switch cat {
	case ChangeAdded:
		return c.Added
	case ChangeImproved:
		return c.Improved
	case ChangeFixed:
		return c.Fixed
	case ChangeRemoved:
		return c.Removed
	}
	return ChangeList{}
}

// Empty reports whether no category has items
func (c *Changes) Empty() bool {
	if c == nil {
		return true
	}
	for _, cat := range ChangeCategories {
		if !c.Items(cat).Empty() {
			return false
		}
	}
	return true
}
