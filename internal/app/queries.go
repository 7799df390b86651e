package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcloughlin/geohash"

	"listing_finder/internal/domain"
)

const mapGeohashPrecision = 7

type QueryService struct {
	repo        domain.ListingRepository
	cache       domain.Cache
	cacheTTL    time.Duration
	searchDelay time.Duration
}

func NewQueryService(r domain.ListingRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// WithSearchDelay adds an artificial pause before search results are
// returned, for front ends that animate a "thinking" state.
func (s *QueryService) WithSearchDelay(d time.Duration) *QueryService {
	s.searchDelay = d
	return s
}

func (s *QueryService) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	key := fmt.Sprintf(keyListingFmt, id)
	var l domain.Listing
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &l); ok {
			return l, nil
		}
	}
	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, l, int(s.cacheTTL.Seconds()))
	}
	return l, nil
}

// Listings returns the whole collection, read through the cache.
func (s *QueryService) Listings(ctx context.Context) ([]domain.Listing, error) {
	var out []domain.Listing
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, keyAllListings, &out); ok {
			return out, nil
		}
	}
	ls, err := s.repo.ListListings(ctx)
	if err != nil {
		return nil, err
	}

	// copy so callers never share the repo's backing array
	out = make([]domain.Listing, len(ls))
	copy(out, ls)

	if s.cache != nil {
		_ = s.cache.Set(ctx, keyAllListings, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

func (s *QueryService) Filter(ctx context.Context, c domain.FilterCriteria) (domain.FilterResult, error) {
	ls, err := s.Listings(ctx)
	if err != nil {
		return domain.FilterResult{}, err
	}
	return ApplyFilters(ls, c), nil
}

func (s *QueryService) Search(ctx context.Context, q string) (domain.SearchResult, error) {
	ls, err := s.Listings(ctx)
	if err != nil {
		return domain.SearchResult{}, err
	}
	res := Search(q, ls)
	if !sleepCtx(ctx, s.searchDelay) {
		return domain.SearchResult{}, ctx.Err()
	}
	return res, nil
}

func (s *QueryService) SuggestLocations(ctx context.Context, prefix string, limit int) ([]domain.LocationSuggestion, error) {
	ls, err := s.Listings(ctx)
	if err != nil {
		return nil, err
	}
	return SuggestLocations(prefix, ls, limit), nil
}

// MapPoints projects every listing with coordinates onto the map.
func (s *QueryService) MapPoints(ctx context.Context) ([]domain.MapPoint, error) {
	ls, err := s.Listings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MapPoint, 0, len(ls))
	for _, l := range ls {
		if l.Lat == nil || l.Lon == nil {
			continue
		}
		out = append(out, domain.MapPoint{
			ID:      l.ID,
			Title:   l.Title,
			Price:   l.Price,
			Lat:     *l.Lat,
			Lon:     *l.Lon,
			Geohash: geohash.EncodeWithPrecision(*l.Lat, *l.Lon, mapGeohashPrecision),
		})
	}
	return out, nil
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
