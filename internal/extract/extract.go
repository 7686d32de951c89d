// Package extract turns a free-form numbered guide response into places.
//
// The expected item shape is
//
//	1. 🗼 **Name** | Location | Description | **Pro Tip:** tip text
//
// where each item runs until the next ordinal or the end of the text.
// Anything that does not fit the shape is ignored.
package extract

import (
	"strings"
	"time"
	"unicode"

	"github.com/adamavenir/amelie/internal/types"
	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single match attempt on pathological input.
const matchTimeout = 2 * time.Second

const ordinal = `(?<!\S)\d+\.(?!\d)`

// itemText is lazy text that never runs into the next item's ordinal.
const itemText = `(?:(?!` + ordinal + `).)+?`

const placePattern = ordinal +
	`\s*[\p{So}\p{Sk}\p{Cf}\p{Mn}\p{Me}]*\s*` + // optional decorative glyphs
	`\*\*(?<name>` + itemText + `)\*\*` +
	`\s*\|\s*(?<location>` + itemText + `)` +
	`\s*\|\s*(?<description>` + itemText + `)` +
	`\s*\|\s*\*{0,2}\s*(?i:pro\s*tip)\s*\*{0,2}\s*:\s*\*{0,2}` +
	`\s*(?<tip>.+?)` +
	`(?=\s+\d+\.(?!\d)|\z)`

var placeRe = newPlaceRegexp()

func newPlaceRegexp() *regexp2.Regexp {
	re := regexp2.MustCompile(placePattern, regexp2.Singleline)
	re.MatchTimeout = matchTimeout
	return re
}

// Extract returns the places found in raw, in source order. It never
// returns nil and never fails: text without recognizable items yields an
// empty slice, and the caller keeps raw for fallback display.
func Extract(raw string) []types.Place {
	places := []types.Place{}
	if strings.TrimSpace(raw) == "" {
		return places
	}

	m, err := placeRe.FindStringMatch(raw)
	for err == nil && m != nil {
		if place, ok := placeFromMatch(m); ok {
			places = append(places, place)
		}
		m, err = placeRe.FindNextMatch(m)
	}
	// A timeout keeps whatever matched before it.
	return places
}

// HasStructure reports whether an extraction produced any places.
func HasStructure(places []types.Place) bool {
	return len(places) > 0
}

func placeFromMatch(m *regexp2.Match) (types.Place, bool) {
	name := cleanName(group(m, "name"))
	if name == "" {
		return types.Place{}, false
	}
	return types.Place{
		Name:        name,
		Location:    group(m, "location"),
		Description: group(m, "description"),
		Tip:         group(m, "tip"),
	}, true
}

func group(m *regexp2.Match, name string) string {
	g := m.GroupByName(name)
	if g == nil {
		return ""
	}
	return strings.TrimSpace(g.String())
}

// cleanName drops decorative glyphs that landed inside the bold markers.
func cleanName(value string) string {
	value = strings.TrimFunc(value, func(r rune) bool {
		return unicode.IsSpace(r) || isDecoration(r)
	})
	return strings.TrimSpace(value)
}

func isDecoration(r rune) bool {
	return unicode.In(r, unicode.So, unicode.Sk, unicode.Cf, unicode.Mn, unicode.Me)
}
