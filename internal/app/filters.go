package app

import (
	"math"
	"sort"

	"listing_finder/internal/domain"
)

// ApplyFilters scores and orders listings against c.
//
// Price is the only hard filter: a listing whose price is outside the range
// (or unparseable) is dropped. Bedrooms, bathrooms and each active feature are
// a rubric; the share of satisfied criteria becomes MatchPercent. The result
// is recomputed from scratch on every call and never aliases the input slice.
func ApplyFilters(listings []domain.Listing, c domain.FilterCriteria) domain.FilterResult {
	active := c.ActiveFeatures()
	out := make([]domain.ScoredListing, 0, len(listings))

	for _, l := range listings {
		if !inPriceRange(l.Price, c.PriceRange) {
			continue
		}

		// price always counts and is always satisfied at this point
		score, total := 1, 1

		if c.MinBedrooms != nil {
			total++
			if l.Bedrooms >= *c.MinBedrooms {
				score++
			}
		}
		if c.MinBathrooms != nil {
			total++
			if l.Bathrooms >= float64(*c.MinBathrooms) {
				score++
			}
		}
		for _, f := range active {
			total++
			if l.HasFeature(f) {
				score++
			}
		}

		pct := matchPercent(score, total)
		if pct == 0 {
			continue
		}
		out = append(out, domain.ScoredListing{Listing: l, MatchPercent: pct})
	}

	sortListings(out, c.Sort)
	return domain.FilterResult{Listings: out, Count: len(out)}
}

func inPriceRange(p domain.Price, r [2]int64) bool {
	amount, ok := p.Amount()
	if !ok {
		return false
	}
	return amount >= r[0] && amount <= r[1]
}

func matchPercent(score, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}

// sortListings is stable so equal keys keep their input order.
func sortListings(ls []domain.ScoredListing, order domain.SortOrder) {
	switch order {
	case domain.SortPriceAsc:
		sort.SliceStable(ls, func(i, j int) bool { return priceOf(ls[i]) < priceOf(ls[j]) })
	case domain.SortPriceDesc:
		sort.SliceStable(ls, func(i, j int) bool { return priceOf(ls[i]) > priceOf(ls[j]) })
	case domain.SortNewest:
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].ListedAt() > ls[j].ListedAt() })
	}
}

func priceOf(l domain.ScoredListing) int64 {
	n, _ := l.Price.Amount()
	return n
}

// ResetCriteria returns the filter state restored by "reset filters".
func ResetCriteria(minPrice, maxPrice int64) domain.FilterCriteria {
	return domain.DefaultCriteria(minPrice, maxPrice)
}
