package organizer

import (
	"path"
	"strings"

	"packwright/internal/config"
	"packwright/internal/docstore"
)

// Rule routes matching root items into a destination subfolder. Rules are
// evaluated in order; the first match wins.
type Rule struct {
	Name string
	// Dest resolves the destination subfolder name for the layout.
	Dest func(layout config.Layout) string
	// Match selects items this rule applies to.
	Match func(item docstore.Item) bool
}

var mediaExts = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".mkv": {}, ".wav": {}, ".mp3": {}, ".m4a": {},
}

var imageExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".webp": {},
}

// DefaultRules is the standard episode layout. Transcripts and full-length
// media land in the assets folder, artwork in its own folder, and clips cut
// for social in theirs.
var DefaultRules = []Rule{
	{
		Name: "transcript",
		Dest: func(l config.Layout) string { return l.AssetsDir },
		Match: func(item docstore.Item) bool {
			return strings.Contains(strings.ToLower(item.Name), "transcript")
		},
	},
	{
		Name: "social clips",
		Dest: func(l config.Layout) string { return l.SocialDir },
		Match: func(item docstore.Item) bool {
			lower := strings.ToLower(item.Name)
			if _, ok := mediaExts[path.Ext(lower)]; !ok {
				return false
			}
			return strings.Contains(lower, "clip") || strings.Contains(lower, "social") || strings.Contains(lower, "short")
		},
	},
	{
		Name: "artwork",
		Dest: func(l config.Layout) string { return l.ArtworkDir },
		Match: func(item docstore.Item) bool {
			_, ok := imageExts[path.Ext(strings.ToLower(item.Name))]
			return ok
		},
	},
	{
		Name: "full-length media",
		Dest: func(l config.Layout) string { return l.AssetsDir },
		Match: func(item docstore.Item) bool {
			_, ok := mediaExts[path.Ext(strings.ToLower(item.Name))]
			return ok
		},
	},
}

func matchRule(rules []Rule, item docstore.Item) *Rule {
	for i := range rules {
		if rules[i].Match(item) {
			return &rules[i]
		}
	}
	return nil
}
