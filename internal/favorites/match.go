package favorites

import (
	"errors"
	"strings"

	"github.com/adamavenir/amelie/internal/types"
	"github.com/gobwas/glob"
)

// Matcher filters favorites by a case-insensitive glob on place or city.
// A nil Matcher matches everything.
type Matcher struct {
	g glob.Glob
}

// CompileMatch compiles pattern. A blank pattern yields a nil Matcher.
func CompileMatch(pattern string) (*Matcher, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, nil
	}
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil, errors.New("invalid match pattern: " + err.Error())
	}
	return &Matcher{g: g}, nil
}

// Match reports whether fav matches.
func (m *Matcher) Match(fav types.Favorite) bool {
	if m == nil {
		return true
	}
	return m.g.Match(strings.ToLower(fav.Place)) || m.g.Match(strings.ToLower(fav.City))
}

// Filter returns the favorites that match, in order.
func (m *Matcher) Filter(favorites []types.Favorite) []types.Favorite {
	if m == nil {
		return favorites
	}
	filtered := make([]types.Favorite, 0, len(favorites))
	for _, fav := range favorites {
		if m.Match(fav) {
			filtered = append(filtered, fav)
		}
	}
	return filtered
}
