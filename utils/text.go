// utils/text.go
package utils

import (
	"strings"

	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GameKey normalizes a game name so "Call of Duty", "call of duty" and
// "callofduty" compare equal.
func GameKey(name string) string {
	return strings.ReplaceAll(slug.Make(name), "-", "")
}

// EqualFold compares two strings under Unicode case folding.
func EqualFold(a, b string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(a)) == fold.String(strings.TrimSpace(b))
}

// SearchKey lowers and transliterates s for accent-insensitive matching.
func SearchKey(s string) string {
	return strings.ToLower(unidecode.Unidecode(strings.TrimSpace(s)))
}

// ClanTag derives a bracketed tag like "[NNJA]" from a clan name.
func ClanTag(name string) string {
	parts := strings.Split(slug.Make(name), "-")
	var b strings.Builder
	if len(parts) > 1 {
		for _, p := range parts {
			if p != "" && b.Len() < 4 {
				b.WriteByte(p[0])
			}
		}
	}
	if b.Len() < 3 {
		b.Reset()
		joined := strings.Join(parts, "")
		if len(joined) > 4 {
			joined = joined[:4]
		}
		b.WriteString(joined)
	}
	if b.Len() == 0 {
		return ""
	}
	return "[" + strings.ToUpper(b.String()) + "]"
}

// PlatformLabel renders a platform id for display, e.g. "playstation" -> "Playstation".
func PlatformLabel(platform string) string {
	if strings.EqualFold(platform, "pc") {
		return "PC"
	}
	return cases.Title(language.English).String(platform)
}

var gameNames = map[string]string{
	"valorant":  "Valorant",
	"cod":       "Call of Duty",
	"apex":      "Apex Legends",
	"lol":       "League of Legends",
	"overwatch": "Overwatch 2",
}

// GameName expands the short game ids used by profiles into display names.
func GameName(game string) string {
	if name, ok := gameNames[strings.ToLower(game)]; ok {
		return name
	}
	return cases.Title(language.English).String(game)
}
