package domain

import "sort"

type SortOrder string

const (
	SortRecommended SortOrder = "recommended"
	SortPriceAsc    SortOrder = "price-asc"
	SortPriceDesc   SortOrder = "price-desc"
	SortNewest      SortOrder = "newest"
)

// KnownFeatures are the feature toggles offered by the filter panel.
var KnownFeatures = []string{"pool", "garage", "garden", "balcony"}

// Default price range restored by a filter reset.
const (
	DefaultMinPrice int64 = 500_000
	DefaultMaxPrice int64 = 5_000_000
)

type FilterCriteria struct {
	PriceRange   [2]int64        `json:"price_range"`
	MinBedrooms  *int            `json:"min_bedrooms"`
	MinBathrooms *int            `json:"min_bathrooms"`
	Features     map[string]bool `json:"features"`
	Sort         SortOrder       `json:"sort"`
}

// DefaultCriteria is the reset state: the given price range, no bedroom or
// bathroom bounds, every known feature off, recommended order.
func DefaultCriteria(minPrice, maxPrice int64) FilterCriteria {
	f := make(map[string]bool, len(KnownFeatures))
	for _, k := range KnownFeatures {
		f[k] = false
	}
	return FilterCriteria{
		PriceRange: [2]int64{minPrice, maxPrice},
		Features:   f,
		Sort:       SortRecommended,
	}
}

// ActiveFeatures returns the selected feature tags in lexical order.
func (c FilterCriteria) ActiveFeatures() []string {
	var out []string
	for k, on := range c.Features {
		if on {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

type ScoredListing struct {
	Listing
	MatchPercent int `json:"match"`
}

type FilterResult struct {
	Listings []ScoredListing
	Count    int
}
