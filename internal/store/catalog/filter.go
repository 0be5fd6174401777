package catalog

import "strings"

// Filter selects a single category or, via FilterAll, every game.
type Filter string

// FilterAll is the sentinel meaning "all categories".
const FilterAll Filter = "all"

// ParseFilter maps a query value to a Filter. Empty and unknown values select all games.
func ParseFilter(raw string) Filter {
	v := Category(strings.ToLower(strings.TrimSpace(raw)))
	if v.Valid() {
		return Filter(v)
	}
	return FilterAll
}

// FilterFor returns the filter selecting exactly category c.
func FilterFor(c Category) Filter {
	return Filter(c)
}

// IsAll reports whether f is the all-categories sentinel.
func (f Filter) IsAll() bool {
	return f == FilterAll || f == ""
}

// Matches reports whether g passes the filter.
func (f Filter) Matches(g Game) bool {
	return f.IsAll() || Category(f) == g.Category
}

// FilteredGames returns the subsequence of games whose category equals filter.
// The all sentinel returns games unchanged. Relative order is preserved.
func FilteredGames(games []Game, filter Filter) []Game {
	if filter.IsAll() {
		return games
	}
	out := make([]Game, 0, len(games))
	for _, g := range games {
		if filter.Matches(g) {
			out = append(out, g)
		}
	}
	return out
}
