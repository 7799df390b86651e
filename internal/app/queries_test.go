package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"listing_finder/internal/app"
	"listing_finder/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	listings []domain.Listing
	misses   map[int64]int
	upserted []domain.Listing
	lists    int
}

func (f *fakeRepo) UpsertListing(ctx context.Context, l domain.Listing) error {
	f.upserted = append(f.upserted, l)
	return nil
}
func (f *fakeRepo) LogMiss(ctx context.Context, id int64, status int, reason string) error {
	if f.misses == nil {
		f.misses = map[int64]int{}
	}
	f.misses[id] = status
	return nil
}
func (f *fakeRepo) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	for _, l := range f.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Listing{}, domain.ErrNotFound
}
func (f *fakeRepo) ListListings(ctx context.Context) ([]domain.Listing, error) {
	f.lists++
	return f.listings, nil
}

type fakeCache struct {
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.Listing:
		*d = v.(domain.Listing)
	case *[]domain.Listing:
		*d = v.([]domain.Listing)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

// ---- tests ----

func TestGetListing_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{listings: []domain.Listing{{ID: 42, Title: "Urban Loft"}}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	l, err := q.GetListing(context.Background(), 42)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if l.ID != 42 || l.Title != "Urban Loft" {
		t.Fatalf("unexpected listing: %+v", l)
	}

	// Mutate repo to ensure second read indeed comes from cache
	repo.listings[0].Title = "SHOULD NOT SEE THIS"

	l2, err := q.GetListing(context.Background(), 42)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if l2.Title != "Urban Loft" {
		t.Fatalf("expected cached title, got %s", l2.Title)
	}
}

func TestGetListing_NotFound(t *testing.T) {
	q := app.NewQueryService(&fakeRepo{}, nil, time.Minute)
	if _, err := q.GetListing(context.Background(), 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListings_ServedFromCache(t *testing.T) {
	repo := &fakeRepo{listings: searchFixture()}
	q := app.NewQueryService(repo, &fakeCache{}, time.Minute)
	ctx := context.Background()

	res, err := q.Filter(ctx, domain.DefaultCriteria(0, 10_000_000))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Count != 5 {
		t.Fatalf("expected 5 listings, got %d", res.Count)
	}
	if _, err := q.Search(ctx, "loft"); err != nil {
		t.Fatalf("err: %v", err)
	}
	if repo.lists != 1 {
		t.Fatalf("expected a single repository read, got %d", repo.lists)
	}
}

func TestSearch_DelayHonorsContext(t *testing.T) {
	q := app.NewQueryService(&fakeRepo{listings: searchFixture()}, nil, time.Minute).
		WithSearchDelay(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := q.Search(ctx, "loft"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestMapPoints(t *testing.T) {
	ls := searchFixture()
	ls[0].Lat, ls[0].Lon = ptr(25.7907), ptr(-80.1300)
	q := app.NewQueryService(&fakeRepo{listings: ls}, nil, time.Minute)

	pts, err := q.MapPoints(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(pts) != 1 || pts[0].ID != 1 {
		t.Fatalf("expected only the geolocated listing, got %+v", pts)
	}
	if len(pts[0].Geohash) != 7 || pts[0].Geohash[:3] != "dhx" {
		t.Fatalf("unexpected geohash %q", pts[0].Geohash)
	}
}
