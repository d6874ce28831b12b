package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"refdata-backend/application/ports"
	"refdata-backend/domain/lookup"
	apperrors "refdata-backend/pkg/errors"
)

// DefaultTTL is the freshness window shared by every lookup kind.
// Reference data changes on the order of weeks; a day keeps pickers
// current without hammering the listing API.
const DefaultTTL = 24 * time.Hour

// Config controls cache behavior
type Config struct {
	// TTL is the freshness window for stored entries
	TTL time.Duration

	// CoalesceRequests collapses overlapping refreshes for the same key
	// into a single upstream fetch
	CoalesceRequests bool
}

// DefaultConfig returns the production cache configuration
func DefaultConfig() Config {
	return Config{
		TTL:              DefaultTTL,
		CoalesceRequests: true,
	}
}

// ReferenceDataCache is a read-through cache for the lookup collections
// the mobile app renders in its pickers. Entries persist in the shared
// durable key-value store under the refdata: namespace, so a warm cache
// survives process restarts.
//
// Serving policy, per key:
//   - fresh stored entry: returned without touching the network
//   - stale or absent entry (or forced refresh): one upstream fetch;
//     success overwrites the entry, failure falls back to whatever is
//     stored regardless of age
//   - the only surfaced failure is a fetch failure with nothing stored
type ReferenceDataCache struct {
	store   ports.Store
	source  ports.Source
	clock   ports.Clock
	logger  *zap.Logger
	metrics ports.Metrics
	ttl     time.Duration
	flight  *singleflight.Group
}

// NewReferenceDataCache creates a cache over the given store and source.
func NewReferenceDataCache(
	store ports.Store,
	source ports.Source,
	clock ports.Clock,
	logger *zap.Logger,
	metrics ports.Metrics,
	cfg Config,
) *ReferenceDataCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	c := &ReferenceDataCache{
		store:   store,
		source:  source,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		ttl:     cfg.TTL,
	}
	if cfg.CoalesceRequests {
		c.flight = &singleflight.Group{}
	}
	return c
}

// GetPropertyTypes returns the property type collection
func (c *ReferenceDataCache) GetPropertyTypes(ctx context.Context, forceRefresh bool) (lookup.Collection, error) {
	return c.get(ctx, lookup.KindPropertyTypes, "", forceRefresh)
}

// GetAmenities returns the amenity collection
func (c *ReferenceDataCache) GetAmenities(ctx context.Context, forceRefresh bool) (lookup.Collection, error) {
	return c.get(ctx, lookup.KindAmenities, "", forceRefresh)
}

// GetStates returns the state collection
func (c *ReferenceDataCache) GetStates(ctx context.Context, forceRefresh bool) (lookup.Collection, error) {
	return c.get(ctx, lookup.KindStates, "", forceRefresh)
}

// GetCitiesByState returns the cities inside one state. Entries for
// different states are fully isolated: a failed refresh for one state
// never reads or evicts another state's entry.
func (c *ReferenceDataCache) GetCitiesByState(ctx context.Context, state string, forceRefresh bool) (lookup.Collection, error) {
	return c.get(ctx, lookup.KindCitiesByState, state, forceRefresh)
}

// GetFacingDirections returns the facing direction collection
func (c *ReferenceDataCache) GetFacingDirections(ctx context.Context, forceRefresh bool) (lookup.Collection, error) {
	return c.get(ctx, lookup.KindFacingDirections, "", forceRefresh)
}

// get implements the read-through policy shared by every kind.
func (c *ReferenceDataCache) get(ctx context.Context, kind lookup.Kind, state string, forceRefresh bool) (lookup.Collection, error) {
	key, err := lookup.Key(kind, state)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if !forceRefresh {
		if entry, ok := c.readEntry(ctx, key); ok && entry.Fresh(c.clock.Now(), c.ttl) {
			c.count("CacheHit", kind)
			return entry.Records.Clone(), nil
		}
	}

	records, fetchErr := c.refresh(ctx, key, kind, state)
	if fetchErr == nil {
		return records, nil
	}

	c.count("FetchFailure", kind)

	// Stale-fallback: any stored entry beats surfacing the fetch error.
	if entry, ok := c.readEntry(ctx, key); ok {
		c.count("StaleFallback", kind)
		c.logger.Warn("Serving stale reference data after failed fetch",
			zap.String("key", key),
			zap.Duration("age", entry.Age(c.clock.Now())),
			zap.Error(fetchErr),
		)
		return entry.Records.Clone(), nil
	}

	return nil, apperrors.NewNoDataError(key, fetchErr)
}

// refresh performs one upstream fetch and persists the result. With
// coalescing enabled, overlapping refreshes for the same key share a
// single fetch; each caller still does its own fallback on failure.
func (c *ReferenceDataCache) refresh(ctx context.Context, key string, kind lookup.Kind, state string) (lookup.Collection, error) {
	if c.flight == nil {
		return c.fetchAndPersist(ctx, key, kind, state)
	}

	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		return c.fetchAndPersist(ctx, key, kind, state)
	})
	if err != nil {
		return nil, err
	}
	return v.(lookup.Collection), nil
}

func (c *ReferenceDataCache) fetchAndPersist(ctx context.Context, key string, kind lookup.Kind, state string) (lookup.Collection, error) {
	start := c.clock.Now()
	records, err := c.fetch(ctx, kind, state)
	if err != nil {
		return nil, err
	}

	c.count("CacheMiss", kind)
	c.time("FetchDuration", c.clock.Now().Sub(start), kind)

	// An empty collection is a legitimate upstream success and is cached
	// like any other payload.
	entry := lookup.NewEntry(key, records, c.clock.Now())
	data, marshalErr := entry.Marshal()
	if marshalErr != nil {
		c.logger.Error("Failed to serialize cache entry", zap.String("key", key), zap.Error(marshalErr))
		return records, nil
	}

	// Persistence is best effort: the caller already has the fresh
	// payload, only the next call loses the cached copy.
	if writeErr := c.store.Write(ctx, key, data); writeErr != nil {
		c.count("StorageWriteFailure", kind)
		c.logger.Error("Failed to persist cache entry",
			zap.String("key", key),
			zap.Error(apperrors.NewStorageError("write", writeErr)),
		)
	}

	return records, nil
}

// fetch dispatches to the kind-specific source call. A single attempt
// per invocation; retry-on-user-action is the client's concern.
func (c *ReferenceDataCache) fetch(ctx context.Context, kind lookup.Kind, state string) (lookup.Collection, error) {
	switch kind {
	case lookup.KindPropertyTypes:
		return c.source.FetchPropertyTypes(ctx)
	case lookup.KindAmenities:
		return c.source.FetchAmenities(ctx)
	case lookup.KindStates:
		return c.source.FetchStates(ctx)
	case lookup.KindCitiesByState:
		return c.source.FetchCitiesByState(ctx, state)
	case lookup.KindFacingDirections:
		return c.source.FetchFacingDirections(ctx)
	default:
		return nil, apperrors.NewValidationError("unknown lookup kind " + kind.String())
	}
}

// readEntry loads and decodes the stored entry for key. Storage errors
// and corrupt payloads fail open: the caller sees a miss and proceeds
// to fetch.
func (c *ReferenceDataCache) readEntry(ctx context.Context, key string) (lookup.Entry, bool) {
	data, found, err := c.store.Read(ctx, key)
	if err != nil {
		c.logger.Warn("Storage read failed, treating as cache miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return lookup.Entry{}, false
	}
	if !found {
		return lookup.Entry{}, false
	}

	entry, err := lookup.UnmarshalEntry(data)
	if err != nil {
		c.logger.Warn("Corrupt cache entry, treating as cache miss",
			zap.String("key", key),
			zap.Error(err),
		)
		return lookup.Entry{}, false
	}
	return entry, true
}

// ClearAll removes every entry in the cache namespace, including every
// per-state cities entry ever written. Enumeration is dynamic because
// the discriminator set is not known in advance. Best effort: storage
// failures are logged and swallowed.
func (c *ReferenceDataCache) ClearAll(ctx context.Context) {
	keys, err := c.store.ListKeys(ctx, lookup.KeyNamespace)
	if err != nil {
		c.logger.Error("Failed to enumerate cache keys for clear",
			zap.Error(apperrors.NewStorageError("list_keys", err)),
		)
		return
	}

	deleted := 0
	for _, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn("Failed to delete cache entry during clear",
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		deleted++
	}

	c.logger.Info("Cleared reference data cache",
		zap.Int("keys_deleted", deleted),
		zap.Int("keys_total", len(keys)),
	)
}

func (c *ReferenceDataCache) count(name string, kind lookup.Kind) {
	if c.metrics == nil {
		return
	}
	c.metrics.IncrementCounter(name, map[string]string{"Kind": kind.String()})
}

func (c *ReferenceDataCache) time(name string, d time.Duration, kind lookup.Kind) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordDuration(name, d, map[string]string{"Kind": kind.String()})
}
