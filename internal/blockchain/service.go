package blockchain

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"miko/ledger-portal/ledger-portal-backend/internal/ledger"
)

// Resource class keys, cached and refreshed independently.
const (
	ClassTrees    = "trees"
	ClassRequests = "requests"
	ClassListings = "listings"
)

// Fetcher reads raw state from the ledger and returns normalized records.
// The ledger client implements it; tests substitute counting fakes.
type Fetcher interface {
	FetchTrees(ctx context.Context) ([]ledger.TreeRecord, error)
	FetchRequests(ctx context.Context) ([]ledger.RequestRecord, error)
	FetchListings(ctx context.Context) ([]ledger.Listing, error)
}

// TTLs configures per-class cache lifetimes.
type TTLs struct {
	Trees    time.Duration
	Requests time.Duration
	Listings time.Duration
}

// Result describes how a read was served. Cached means the fresh cache
// answered without an upstream call; Stale means the payload outlived its TTL
// because the refresh failed (or never succeeded, in which case the payload is
// empty rather than an error).
type Result struct {
	Cached bool
	Stale  bool
}

// Service is the read-through synchronization layer between the ledger and
// the application. Reads are served from the cache while fresh; a stale read
// triggers a refresh, with concurrent triggers for the same class collapsed
// into a single upstream fetch. When the ledger is unreachable the last good
// payload is served flagged stale, and with no prior data an empty collection
// is returned instead of an error so pages can render an empty state.
type Service struct {
	fetcher Fetcher
	cache   *ResourceCache
	group   singleflight.Group
}

// NewService builds a sync service over the given fetcher. A nil clock uses
// time.Now; zero TTLs default to 5 seconds.
func NewService(fetcher Fetcher, ttls TTLs, now func() time.Time) *Service {
	cache := NewResourceCache(now)
	cache.Register(ClassTrees, orDefault(ttls.Trees))
	cache.Register(ClassRequests, orDefault(ttls.Requests))
	cache.Register(ClassListings, orDefault(ttls.Listings))
	return &Service{fetcher: fetcher, cache: cache}
}

func orDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return defaultTTL
	}
	return ttl
}

// Trees returns the verified tree collection.
func (s *Service) Trees(ctx context.Context, force bool) ([]ledger.TreeRecord, Result) {
	payload, res := s.read(ctx, ClassTrees, force, func(ctx context.Context) (interface{}, error) {
		return s.fetcher.FetchTrees(ctx)
	})
	if payload == nil {
		return []ledger.TreeRecord{}, res
	}
	return payload.([]ledger.TreeRecord), res
}

// Requests returns the verification request collection.
func (s *Service) Requests(ctx context.Context, force bool) ([]ledger.RequestRecord, Result) {
	payload, res := s.read(ctx, ClassRequests, force, func(ctx context.Context) (interface{}, error) {
		return s.fetcher.FetchRequests(ctx)
	})
	if payload == nil {
		return []ledger.RequestRecord{}, res
	}
	return payload.([]ledger.RequestRecord), res
}

// Listings returns the open marketplace listings.
func (s *Service) Listings(ctx context.Context, force bool) ([]ledger.Listing, Result) {
	payload, res := s.read(ctx, ClassListings, force, func(ctx context.Context) (interface{}, error) {
		return s.fetcher.FetchListings(ctx)
	})
	if payload == nil {
		return []ledger.Listing{}, res
	}
	return payload.([]ledger.Listing), res
}

// InvalidateAll marks every resource class stale so the next read refetches.
func (s *Service) InvalidateAll() {
	s.cache.InvalidateAll()
}

// read implements the per-class read-through policy. The fetch runs outside
// any cache lock and is deduplicated through singleflight so N simultaneous
// stale reads cost exactly one upstream call. No proactive retries are
// scheduled: a failed refresh is retried by whichever read next finds the
// class stale.
func (s *Service) read(ctx context.Context, class string, force bool, fetch func(context.Context) (interface{}, error)) (interface{}, Result) {
	cached, fresh, ok := s.cache.Get(class)
	if ok && fresh && !force {
		return cached, Result{Cached: true}
	}

	refreshed, err, _ := s.group.Do(class, func() (interface{}, error) {
		payload, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.Set(class, payload)
		return payload, nil
	})
	if err != nil {
		log.Printf("[blockchain] %s refresh failed: %v", class, err)
		if ok {
			return cached, Result{Cached: true, Stale: true}
		}
		return nil, Result{Stale: true}
	}
	return refreshed, Result{}
}
