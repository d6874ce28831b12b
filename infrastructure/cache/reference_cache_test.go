package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"refdata-backend/domain/lookup"
	apperrors "refdata-backend/pkg/errors"
)

// fakeClock lets tests move wall-clock time past the TTL.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeStore is an in-memory store with fault injection.
type fakeStore struct {
	mu       sync.Mutex
	items    map[string][]byte
	readErr  error
	writeErr error
	listErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[string][]byte)}
}

func (s *fakeStore) Read(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, false, s.readErr
	}
	data, ok := s.items[key]
	return data, ok, nil
}

func (s *fakeStore) Write(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.items[key] = value
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *fakeStore) ListKeys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var keys []string
	for k := range s.items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *fakeStore) keyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *fakeStore) raw(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.items[key]
	return data, ok
}

// fakeSource serves canned payloads and counts fetches per kind.
type fakeSource struct {
	mu       sync.Mutex
	payloads map[string]lookup.Collection
	failing  bool
	calls    map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		payloads: make(map[string]lookup.Collection),
		calls:    make(map[string]int),
	}
}

func (s *fakeSource) set(name string, records lookup.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[name] = records
}

func (s *fakeSource) fail(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

func (s *fakeSource) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *fakeSource) fetch(name string) (lookup.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
	if s.failing {
		return nil, errors.New("upstream unreachable")
	}
	return s.payloads[name], nil
}

func (s *fakeSource) FetchPropertyTypes(context.Context) (lookup.Collection, error) {
	return s.fetch("property_types")
}

func (s *fakeSource) FetchAmenities(context.Context) (lookup.Collection, error) {
	return s.fetch("amenities")
}

func (s *fakeSource) FetchStates(context.Context) (lookup.Collection, error) {
	return s.fetch("states")
}

func (s *fakeSource) FetchCitiesByState(_ context.Context, state string) (lookup.Collection, error) {
	return s.fetch("cities:" + lookup.NormalizeState(state))
}

func (s *fakeSource) FetchFacingDirections(context.Context) (lookup.Collection, error) {
	return s.fetch("facing_directions")
}

func newTestCache(t *testing.T) (*ReferenceDataCache, *fakeStore, *fakeSource, *fakeClock) {
	t.Helper()
	store := newFakeStore()
	source := newFakeSource()
	clock := newFakeClock()
	c := NewReferenceDataCache(store, source, clock, zap.NewNop(), nil, DefaultConfig())
	return c, store, source, clock
}

func TestFreshHitAvoidsFetch(t *testing.T) {
	ctx := context.Background()
	c, _, source, clock := newTestCache(t)
	source.set("property_types", lookup.Collection{{ID: "apt", Label: "Apartment"}})

	// First call populates the entry.
	first, err := c.GetPropertyTypes(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 1, source.callCount("property_types"))

	// Just inside the TTL window: served from storage, no fetch.
	clock.Advance(DefaultTTL - time.Second)
	second, err := c.GetPropertyTypes(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, source.callCount("property_types"))
	assert.Equal(t, first, second)
}

func TestStaleTriggersRefreshOnSuccess(t *testing.T) {
	ctx := context.Background()
	c, _, source, clock := newTestCache(t)
	source.set("amenities", lookup.Collection{{ID: "gym", Label: "Gym"}})

	_, err := c.GetAmenities(ctx, false)
	require.NoError(t, err)

	// Past the TTL with a working upstream: exactly one refresh fetch.
	clock.Advance(DefaultTTL + time.Second)
	source.set("amenities", lookup.Collection{{ID: "gym", Label: "Gym"}, {ID: "pool", Label: "Swimming Pool"}})

	refreshed, err := c.GetAmenities(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, source.callCount("amenities"))
	require.Len(t, refreshed, 2)

	// The refreshed entry is fresh again; no further fetch.
	again, err := c.GetAmenities(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, source.callCount("amenities"))
	assert.Equal(t, refreshed, again)
}

func TestStaleFallbackOnFailure(t *testing.T) {
	ctx := context.Background()
	c, store, source, clock := newTestCache(t)
	source.set("states", lookup.Collection{{ID: "ka", Label: "Karnataka"}})

	_, err := c.GetStates(ctx, false)
	require.NoError(t, err)

	key, _ := lookup.Key(lookup.KindStates, "")
	before, ok := store.raw(key)
	require.True(t, ok)

	clock.Advance(DefaultTTL + time.Minute)
	source.fail(true)

	records, err := c.GetStates(ctx, false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Karnataka", records[0].Label)

	// The stored entry, including its timestamp, is untouched.
	after, ok := store.raw(key)
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestAbsentPlusFailureIsError(t *testing.T) {
	ctx := context.Background()
	c, store, source, _ := newTestCache(t)
	source.fail(true)

	_, err := c.GetFacingDirections(ctx, false)
	require.Error(t, err)
	assert.True(t, apperrors.IsNoData(err))

	// A failed fetch never writes an entry.
	assert.Equal(t, 0, store.keyCount())
}

func TestDiscriminatorIsolation(t *testing.T) {
	ctx := context.Background()
	c, store, source, clock := newTestCache(t)
	source.set("cities:karnataka", lookup.Collection{{ID: "blr", Label: "Bengaluru"}})
	source.set("cities:maharashtra", lookup.Collection{{ID: "mum", Label: "Mumbai"}})

	_, err := c.GetCitiesByState(ctx, "Karnataka", false)
	require.NoError(t, err)
	_, err = c.GetCitiesByState(ctx, "Maharashtra", false)
	require.NoError(t, err)

	mahaKey, _ := lookup.Key(lookup.KindCitiesByState, "Maharashtra")
	mahaBefore, ok := store.raw(mahaKey)
	require.True(t, ok)

	// A forced, failing refresh for Karnataka must not touch
	// Maharashtra's entry or fetch count.
	source.fail(true)
	records, err := c.GetCitiesByState(ctx, "Karnataka", true)
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru", records[0].Label)

	mahaAfter, ok := store.raw(mahaKey)
	require.True(t, ok)
	assert.Equal(t, mahaBefore, mahaAfter)
	assert.Equal(t, 1, source.callCount("cities:maharashtra"))
	assert.Equal(t, 2, source.callCount("cities:karnataka"))

	// Maharashtra still serves from its own fresh entry.
	source.fail(false)
	clock.Advance(time.Minute)
	maha, err := c.GetCitiesByState(ctx, "Maharashtra", false)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", maha[0].Label)
	assert.Equal(t, 1, source.callCount("cities:maharashtra"))
}

func TestForceRefreshIgnoresFreshnessButFallsBack(t *testing.T) {
	ctx := context.Background()
	c, _, source, _ := newTestCache(t)
	source.set("property_types", lookup.Collection{{ID: "apt", Label: "Apartment"}})

	original, err := c.GetPropertyTypes(ctx, false)
	require.NoError(t, err)
	require.Equal(t, 1, source.callCount("property_types"))

	// Entry is fresh, but force still hits the upstream.
	source.fail(true)
	records, err := c.GetPropertyTypes(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, source.callCount("property_types"))

	// Forced fetch failed: the fresh entry is served unchanged.
	assert.Equal(t, original, records)
}

func TestClearAllRemovesAllKindsAndDiscriminators(t *testing.T) {
	ctx := context.Background()
	c, store, source, _ := newTestCache(t)
	source.set("property_types", lookup.Collection{{ID: "apt", Label: "Apartment"}})
	source.set("amenities", lookup.Collection{{ID: "gym", Label: "Gym"}})
	source.set("states", lookup.Collection{{ID: "ka", Label: "Karnataka"}})
	source.set("facing_directions", lookup.Collection{{ID: "n", Label: "North"}})
	source.set("cities:karnataka", lookup.Collection{{ID: "blr", Label: "Bengaluru"}})
	source.set("cities:maharashtra", lookup.Collection{{ID: "mum", Label: "Mumbai"}})

	_, _ = c.GetPropertyTypes(ctx, false)
	_, _ = c.GetAmenities(ctx, false)
	_, _ = c.GetStates(ctx, false)
	_, _ = c.GetFacingDirections(ctx, false)
	_, _ = c.GetCitiesByState(ctx, "Karnataka", false)
	_, _ = c.GetCitiesByState(ctx, "Maharashtra", false)
	require.Equal(t, 6, store.keyCount())

	c.ClearAll(ctx)
	assert.Equal(t, 0, store.keyCount())

	// Every previously-populated key now behaves as absent: a plain get
	// hits the upstream again.
	_, err := c.GetPropertyTypes(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, source.callCount("property_types"))

	_, err = c.GetCitiesByState(ctx, "Maharashtra", false)
	require.NoError(t, err)
	assert.Equal(t, 2, source.callCount("cities:maharashtra"))
}

func TestIdempotentRepeatedFreshReads(t *testing.T) {
	ctx := context.Background()
	c, _, source, _ := newTestCache(t)
	source.set("states", lookup.Collection{{ID: "ka", Label: "Karnataka"}, {ID: "mh", Label: "Maharashtra"}})

	first, err := c.GetStates(ctx, false)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		got, err := c.GetStates(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
	assert.Equal(t, 1, source.callCount("states"))
}

func TestStorageReadErrorFailsOpen(t *testing.T) {
	ctx := context.Background()
	c, store, source, _ := newTestCache(t)
	source.set("amenities", lookup.Collection{{ID: "gym", Label: "Gym"}})

	store.readErr = errors.New("disk wedged")

	// The read failure is treated as a miss and the fetch proceeds.
	records, err := c.GetAmenities(ctx, false)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, source.callCount("amenities"))
}

func TestStorageWriteErrorStillReturnsPayload(t *testing.T) {
	ctx := context.Background()
	c, store, source, _ := newTestCache(t)
	source.set("states", lookup.Collection{{ID: "ka", Label: "Karnataka"}})

	store.writeErr = errors.New("disk full")

	records, err := c.GetStates(ctx, false)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// Nothing was persisted, so the next call fetches again.
	store.writeErr = nil
	_, err = c.GetStates(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, source.callCount("states"))
}

func TestCorruptEntryTreatedAsMiss(t *testing.T) {
	ctx := context.Background()
	c, store, source, _ := newTestCache(t)
	source.set("property_types", lookup.Collection{{ID: "apt", Label: "Apartment"}})

	key, _ := lookup.Key(lookup.KindPropertyTypes, "")
	require.NoError(t, store.Write(ctx, key, []byte("{corrupt")))

	records, err := c.GetPropertyTypes(ctx, false)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, source.callCount("property_types"))

	// The corrupt bytes were overwritten by the fresh entry.
	data, ok := store.raw(key)
	require.True(t, ok)
	_, err = lookup.UnmarshalEntry(data)
	assert.NoError(t, err)
}

func TestEmptySuccessIsCached(t *testing.T) {
	ctx := context.Background()
	c, _, source, _ := newTestCache(t)
	source.set("amenities", lookup.Collection{})

	records, err := c.GetAmenities(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, records)

	// The empty payload counts as data: the second read is a fresh hit.
	_, err = c.GetAmenities(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, source.callCount("amenities"))
}

func TestEmptyStateRejected(t *testing.T) {
	ctx := context.Background()
	c, _, _, _ := newTestCache(t)

	_, err := c.GetCitiesByState(ctx, "   ", false)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestKeyCountBoundedByStateList(t *testing.T) {
	ctx := context.Background()
	c, store, source, _ := newTestCache(t)
	source.set("cities:karnataka", lookup.Collection{{ID: "blr", Label: "Bengaluru"}})

	// Case and whitespace variants of the same state share one key.
	for _, state := range []string{"Karnataka", "karnataka", " KARNATAKA "} {
		_, err := c.GetCitiesByState(ctx, state, false)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.keyCount())
	assert.Equal(t, 1, source.callCount("cities:karnataka"))
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	c, _, source, clock := newTestCache(t)

	// Populate property types.
	source.set("property_types", lookup.Collection{{ID: "apt", Label: "Apartment"}})
	records, err := c.GetPropertyTypes(ctx, false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "apt", records[0].ID)
	assert.Equal(t, 1, source.callCount("property_types"))

	// Fresh hit: still one fetch.
	records, err = c.GetPropertyTypes(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, source.callCount("property_types"))

	// Past 24 hours with a failing upstream: stale fallback.
	clock.Advance(24*time.Hour + time.Minute)
	source.fail(true)
	records, err = c.GetPropertyTypes(ctx, false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "apt", records[0].ID)
	assert.Equal(t, 2, source.callCount("property_types"))

	// Clear everything, recover the upstream with new data.
	c.ClearAll(ctx)
	source.fail(false)
	source.set("property_types", lookup.Collection{{ID: "villa", Label: "Villa"}})

	records, err = c.GetPropertyTypes(ctx, false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "villa", records[0].ID)
	assert.Equal(t, 3, source.callCount("property_types"))
}
