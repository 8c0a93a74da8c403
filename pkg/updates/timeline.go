package updates

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"map-gallery/pkg/i18n"
	"map-gallery/pkg/models"
)

var sanitizer = bluemonday.UGCPolicy()

// Timeline is the rendered updates page
type Timeline struct {
	Empty     bool   `json:"empty"`
	EmptyIcon string `json:"emptyIcon,omitempty"`
	EmptyText string `json:"emptyText,omitempty"`
	Items     []Item `json:"items"`
}

// Item is one card of the timeline
type Item struct {
	Index       int           `json:"index"`
	New         bool          `json:"new"`
	Class       string        `json:"class"`
	Icon        string        `json:"icon"`
	Type        string        `json:"type"`
	Badge       string        `json:"badge"`
	BadgeClass  string        `json:"badgeClass"`
	Date        string        `json:"date"`
	Version     string        `json:"version"`
	Title       string        `json:"title"`
	Description string        `json:"description"` // sanitized HTML
	Changes     []ChangeGroup `json:"changes,omitempty"`
}

// ChangeGroup is one non-empty category of an item's change list
type ChangeGroup struct {
	Category string   `json:"category"`
	Icon     string   `json:"icon"`
	Heading  string   `json:"heading"`
	Class    string   `json:"class"`
	Items    []string `json:"items"`
}

// Render maps the entries to a timeline in the translator's language.
// Only the first entry is flagged new, whatever its date.
func Render(entries []models.UpdateEntry, tr i18n.Translator) Timeline {
	if len(entries) == 0 {
		return Timeline{
			Empty:     true,
			EmptyIcon: EmptyIcon,
			EmptyText: i18n.Lookup(tr, "updates.empty", "No updates available yet"),
		}
	}

	lang := models.FallbackLanguage
	if tr != nil && tr.Language() != "" {
		lang = tr.Language()
	}

	tl := Timeline{Items: make([]Item, len(entries))}
	for i, e := range entries {
		typ := e.Type.Normalize()
		tl.Items[i] = Item{
			Index:       i,
			New:         i == 0,
			Class:       cardClass(i == 0),
			Icon:        TypeIcon(typ),
			Type:        string(typ),
			Badge:       BadgeText(typ, tr),
			BadgeClass:  "update-badge " + string(typ),
			Date:        e.Date.Resolve(lang),
			Version:     e.Version.Resolve(lang),
			Title:       e.Title.Resolve(lang),
			Description: toHTML(e.Description.Resolve(lang)),
			Changes:     changeGroups(e.Changes, lang, tr),
		}
	}
	return tl
}

func cardClass(isNew bool) string {
	if isNew {
		return "update-card new"
	}
	return "update-card"
}

func changeGroups(c *models.Changes, lang string, tr i18n.Translator) []ChangeGroup {
	if c.Empty() {
		return nil
	}
	var groups []ChangeGroup
	for _, cat := range models.ChangeCategories {
		items := c.Items(cat).Resolve(lang)
		if len(items) == 0 {
			continue
		}
		g := ChangeGroup{
			Category: string(cat),
			Icon:     CategoryIcon(cat),
			Heading:  CategoryHeading(cat, tr),
			Class:    CategoryClass(cat),
			Items:    make([]string, len(items)),
		}
		for i, it := range items {
			g.Items[i] = sanitizer.Sanitize(it)
		}
		groups = append(groups, g)
	}
	return groups
}

// toHTML converts markdown to HTML and sanitises it.
func toHTML(md string) string {
	if md == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})

	unsafe := markdown.ToHTML([]byte(md), p, r)
	return string(sanitizer.SanitizeBytes(unsafe))
}
