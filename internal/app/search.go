package app

import (
	"strings"

	"listing_finder/internal/domain"
)

// Search splits listings into exact and recommended matches for a free-text
// query. Both buckets keep the collection order and never share an ID. An
// empty query yields two empty buckets.
func Search(query string, listings []domain.Listing) domain.SearchResult {
	q := domain.ParseQuery(query)
	res := domain.SearchResult{
		ExactMatches:       []domain.Listing{},
		RecommendedMatches: []domain.Listing{},
	}
	if q.Empty() {
		return res
	}

	exact := make(map[int64]struct{})
	for _, l := range listings {
		if !isExactMatch(q, l) {
			continue
		}
		exact[l.ID] = struct{}{}
		if len(res.ExactMatches) < domain.MaxExactMatches {
			res.ExactMatches = append(res.ExactMatches, l)
		}
	}

	for _, l := range listings {
		if len(res.RecommendedMatches) == domain.MaxRecommendedMatches {
			break
		}
		if _, dup := exact[l.ID]; dup {
			continue
		}
		if isRecommendedMatch(q, l) {
			res.RecommendedMatches = append(res.RecommendedMatches, l)
		}
	}
	return res
}

func isExactMatch(q domain.SearchQuery, l domain.Listing) bool {
	bedrooms := q.BedroomCount == nil || l.Bedrooms == *q.BedroomCount
	location := len(q.LocationTokens) == 0 || anyContains(q.LocationTokens, l.Location)
	if bedrooms && location {
		return true
	}
	return strings.Contains(strings.ToLower(l.Title), q.Raw) ||
		strings.Contains(strings.ToLower(l.Description), q.Raw)
}

func isRecommendedMatch(q domain.SearchQuery, l domain.Listing) bool {
	bedrooms := q.BedroomCount == nil || abs(l.Bedrooms-*q.BedroomCount) <= 1
	location := len(q.LocationTokens) == 0 ||
		anyContains(q.LocationTokens, l.Location) ||
		anyContains(q.LocationTokens, l.Title)
	return bedrooms || location
}

// anyContains reports whether any (already lower-cased) token is a substring of s.
func anyContains(tokens []string, s string) bool {
	s = strings.ToLower(s)
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
