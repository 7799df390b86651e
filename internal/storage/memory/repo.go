package memory

import (
	"context"
	"sync"

	"listing_finder/internal/domain"
)

// Miss is one rejected or unavailable listing recorded during ingestion.
type Miss struct {
	ID     int64
	Status int
	Reason string
}

// Repo keeps listings in insertion order; re-upserting an ID replaces it in
// place so the "recommended" order stays stable.
type Repo struct {
	mu     sync.RWMutex
	byID   map[int64]int
	items  []domain.Listing
	misses []Miss
}

// New returns an empty catalog.
func New() *Repo { return &Repo{byID: make(map[int64]int)} }

// UpsertListing inserts l, or replaces the listing with the same ID in place.
func (r *Repo) UpsertListing(ctx context.Context, l domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.byID[l.ID]; ok {
		r.items[i] = l
		return nil
	}
	r.byID[l.ID] = len(r.items)
	r.items = append(r.items, l)
	return nil
}

// LogMiss records a skipped listing; see Misses.
func (r *Repo) LogMiss(ctx context.Context, id int64, status int, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses = append(r.misses, Miss{ID: id, Status: status, Reason: reason})
	return nil
}

// GetListing returns domain.ErrNotFound for unknown IDs.
func (r *Repo) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	return r.items[i], nil
}

// ListListings returns a copy of the catalog in insertion order.
func (r *Repo) ListListings(ctx context.Context) ([]domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Listing, len(r.items))
	copy(out, r.items)
	return out, nil
}

// Misses returns the recorded misses, oldest first.
func (r *Repo) Misses() []Miss {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Miss(nil), r.misses...)
}
