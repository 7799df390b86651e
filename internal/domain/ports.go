package domain

import "context"

type ListingRepository interface {
	// Write paths
	UpsertListing(ctx context.Context, l Listing) error
	LogMiss(ctx context.Context, id int64, status int, reason string) error

	// Read paths
	GetListing(ctx context.Context, id int64) (Listing, error)
	ListListings(ctx context.Context) ([]Listing, error)
}

// FeedClient pulls raw listing payloads from a remote catalog feed.
type FeedClient interface {
	ListIDs(ctx context.Context) ([]int64, error)
	GetListing(ctx context.Context, id int64) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models

type LocationSuggestion struct {
	Location string `json:"location"`
	Score    int    `json:"score"`
}

type Mortgage struct {
	Price          float64 `json:"price"`
	DownPayment    float64 `json:"down_payment"`
	InterestRate   float64 `json:"interest_rate"`
	LoanTermYears  int     `json:"loan_term_years"`
	MonthlyPayment float64 `json:"monthly_payment"`
	Formatted      string  `json:"formatted"`
}
