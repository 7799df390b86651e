package domain

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MaxExactMatches       = 6
	MaxRecommendedMatches = 4
)

// "t2" style bedroom shorthand; only the first occurrence counts.
var bedroomToken = regexp.MustCompile(`t(\d+)`)

type SearchQuery struct {
	Raw            string
	BedroomCount   *int
	LocationTokens []string
}

// ParseQuery lower-cases and trims q, pulls out the bedroom shorthand and
// keeps the remaining whitespace separated tokens longer than one character.
func ParseQuery(q string) SearchQuery {
	raw := strings.ToLower(strings.TrimSpace(q))
	out := SearchQuery{Raw: raw}
	if raw == "" {
		return out
	}

	rest := raw
	if loc := bedroomToken.FindStringSubmatchIndex(raw); loc != nil {
		if n, err := strconv.Atoi(raw[loc[2]:loc[3]]); err == nil {
			out.BedroomCount = &n
		}
		rest = raw[:loc[0]] + raw[loc[1]:]
	}

	for _, tok := range strings.Fields(rest) {
		if utf8.RuneCountInString(tok) > 1 {
			out.LocationTokens = append(out.LocationTokens, tok)
		}
	}
	return out
}

func (q SearchQuery) Empty() bool { return q.Raw == "" }

type SearchResult struct {
	ExactMatches       []Listing `json:"exact_matches"`
	RecommendedMatches []Listing `json:"recommended_matches"`
}
