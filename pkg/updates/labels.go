package updates

import (
	"map-gallery/pkg/i18n"
	"map-gallery/pkg/models"
)

// EmptyIcon is shown above the "no updates" placeholder
const EmptyIcon = "📋"

type typeLabel struct {
	icon string
	key  string
	def  string
}

var typeLabels = map[models.UpdateType]typeLabel{
	models.UpdateMajor: {icon: "🚀", key: "updates.badge.major", def: "Major"},
	models.UpdateMinor: {icon: "✨", key: "updates.badge.minor", def: "Minor"},
	models.UpdatePatch: {icon: "🔧", key: "updates.badge.patch", def: "Patch"},
}

type categoryLabel struct {
	icon  string
	key   string
	def   string
	class string
}

var categoryLabels = map[models.ChangeCategory]categoryLabel{
	models.ChangeAdded:    {icon: "✨", key: "updates.changes.added", def: "Added", class: "change-added"},
	models.ChangeImproved: {icon: "⚡", key: "updates.changes.improved", def: "Improved", class: "change-improved"},
	models.ChangeFixed:    {icon: "🔧", key: "updates.changes.fixed", def: "Fixed", class: "change-fixed"},
	models.ChangeRemoved:  {icon: "🗑️", key: "updates.changes.removed", def: "Removed", class: "change-removed"},
}

// TypeIcon returns the timeline marker icon for an update type.
// Unrecognized types are treated as major.
func TypeIcon(t models.UpdateType) string {
	return typeLabels[t.Normalize()].icon
}

// BadgeText returns the localized badge label for an update type
func BadgeText(t models.UpdateType, tr i18n.Translator) string {
	l := typeLabels[t.Normalize()]
	return i18n.Lookup(tr, l.key, l.def)
}

// CategoryIcon returns the heading icon for a change category
func CategoryIcon(c models.ChangeCategory) string {
	return categoryLabels[c].icon
}

// CategoryHeading returns the localized heading for a change category
func CategoryHeading(c models.ChangeCategory, tr i18n.Translator) string {
	l, ok := categoryLabels[c]
	if !ok {
		l = categoryLabels[models.ChangeAdded]
	}
	return i18n.Lookup(tr, l.key, l.def)
}

// CategoryClass returns the css class of items in a change category
func CategoryClass(c models.ChangeCategory) string {
	return categoryLabels[c].class
}
