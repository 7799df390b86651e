package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"listing_finder/internal/domain"
)

const (
	keyAllListings = "listings:all"
	keyListingFmt  = "listing:%d"
)

type IngestionService struct {
	feed  domain.FeedClient
	repo  domain.ListingRepository
	cache domain.Cache
}

// NewIngestionService wires the write side. feed may be nil when only static
// payloads are ingested; cache may be nil when nothing is cached.
func NewIngestionService(f domain.FeedClient, r domain.ListingRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{feed: f, repo: r, cache: cache}
}

// IngestPayload validates, maps and stores one listing payload. Payloads that
// fail validation are recorded as misses and skipped.
func (s *IngestionService) IngestPayload(ctx context.Context, p map[string]any) error {
	if err := ValidateListingPayload(p); err != nil {
		var id int64
		if v := firstIntFlexible(p, "id"); v != nil {
			id = *v
		}
		log.Warn().Int64("id", id).Err(err).Msg("listing payload rejected")
		_ = s.repo.LogMiss(ctx, id, 422, "invalid payload")
		return nil
	}

	l := mapListing(p)
	if err := s.repo.UpsertListing(ctx, l); err != nil {
		return fmt.Errorf("upsert listing %d: %w", l.ID, err)
	}
	s.invalidate(ctx, l.ID)
	return nil
}

// IngestListing pulls one listing from the feed. 404 and 401/403 are recorded
// as misses and evict any cached copy; other errors bubble up.
func (s *IngestionService) IngestListing(ctx context.Context, id int64) error {
	if s.feed == nil {
		return errors.New("ingest: no feed configured")
	}
	p, err := s.feed.GetListing(ctx, id)
	if err != nil {
		low := strings.ToLower(err.Error())

		if errors.Is(err, domain.ErrNotFound) || strings.Contains(low, "not found") {
			_ = s.repo.LogMiss(ctx, id, 404, "not found")
			s.invalidate(ctx, id)
			return nil
		}
		if strings.Contains(low, "403") || strings.Contains(low, "forbidden") ||
			strings.Contains(low, "401") || strings.Contains(low, "unauthorized") {
			_ = s.repo.LogMiss(ctx, id, 403, "inactive")
			s.invalidate(ctx, id)
			return nil
		}
		return err
	}
	return s.IngestPayload(ctx, p)
}

// invalidate drops the listing and the cached collection the engines read.
func (s *IngestionService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, fmt.Sprintf(keyListingFmt, id))
	_ = s.cache.Del(ctx, keyAllListings)
}
