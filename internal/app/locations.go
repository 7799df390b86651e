package app

import (
	"github.com/sahilm/fuzzy"

	"listing_finder/internal/domain"
)

// SuggestLocations ranks the distinct listing locations against prefix.
// An empty prefix returns the locations in collection order. limit <= 0 means
// no limit.
func SuggestLocations(prefix string, listings []domain.Listing, limit int) []domain.LocationSuggestion {
	locs := distinctLocations(listings)
	out := []domain.LocationSuggestion{}

	if prefix == "" {
		for _, l := range locs {
			out = append(out, domain.LocationSuggestion{Location: l})
		}
		return capSuggestions(out, limit)
	}

	for _, m := range fuzzy.Find(prefix, locs) {
		out = append(out, domain.LocationSuggestion{Location: m.Str, Score: m.Score})
	}
	return capSuggestions(out, limit)
}

func distinctLocations(listings []domain.Listing) []string {
	seen := make(map[string]struct{}, len(listings))
	var out []string
	for _, l := range listings {
		if l.Location == "" {
			continue
		}
		if _, ok := seen[l.Location]; ok {
			continue
		}
		seen[l.Location] = struct{}{}
		out = append(out, l.Location)
	}
	return out
}

func capSuggestions(s []domain.LocationSuggestion, limit int) []domain.LocationSuggestion {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
