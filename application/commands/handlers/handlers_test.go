package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"refdata-backend/application/commands"
	"refdata-backend/domain/events"
	"refdata-backend/domain/lookup"
)

type stubRefData struct {
	records     lookup.Collection
	failKinds   map[lookup.Kind]bool
	forceSeen   []bool
	statesSeen  []string
	clearCalled int
}

func (s *stubRefData) get(kind lookup.Kind, force bool) (lookup.Collection, error) {
	s.forceSeen = append(s.forceSeen, force)
	if s.failKinds[kind] {
		return nil, errors.New("upstream down")
	}
	return s.records, nil
}

func (s *stubRefData) GetPropertyTypes(_ context.Context, force bool) (lookup.Collection, error) {
	return s.get(lookup.KindPropertyTypes, force)
}

func (s *stubRefData) GetAmenities(_ context.Context, force bool) (lookup.Collection, error) {
	return s.get(lookup.KindAmenities, force)
}

func (s *stubRefData) GetStates(_ context.Context, force bool) (lookup.Collection, error) {
	return s.get(lookup.KindStates, force)
}

func (s *stubRefData) GetCitiesByState(_ context.Context, state string, force bool) (lookup.Collection, error) {
	s.statesSeen = append(s.statesSeen, state)
	return s.get(lookup.KindCitiesByState, force)
}

func (s *stubRefData) GetFacingDirections(_ context.Context, force bool) (lookup.Collection, error) {
	return s.get(lookup.KindFacingDirections, force)
}

func (s *stubRefData) ClearAll(context.Context) {
	s.clearCalled++
}

type stubEventBus struct {
	published []events.DomainEvent
	err       error
}

func (b *stubEventBus) Publish(_ context.Context, event events.DomainEvent) error {
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, event)
	return nil
}

func (b *stubEventBus) PublishBatch(_ context.Context, batch []events.DomainEvent) error {
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, batch...)
	return nil
}

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

func newRecords(n int) lookup.Collection {
	out := make(lookup.Collection, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, lookup.Record{ID: "id", Label: "label"})
	}
	return out
}

func TestWarmLookups_WarmsStaticKindsAndStates(t *testing.T) {
	refData := &stubRefData{records: newRecords(3)}
	bus := &stubEventBus{}
	handler := NewWarmLookupsHandler(refData, bus, stubClock{now: time.Now()}, zap.NewNop())

	cmd := commands.WarmLookupsCommand{States: []string{"Karnataka", "Tamil Nadu"}}
	err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	// 4 static kinds + 2 city collections
	assert.Len(t, bus.published, 6)
	assert.Equal(t, []string{"Karnataka", "Tamil Nadu"}, refData.statesSeen)

	refreshed, ok := bus.published[0].(events.LookupRefreshed)
	require.True(t, ok)
	assert.Equal(t, 3, refreshed.RecordCount)
	assert.Equal(t, "refdata.lookup_refreshed", refreshed.GetEventType())
}

func TestWarmLookups_PartialFailureIsNotFatal(t *testing.T) {
	refData := &stubRefData{
		records:   newRecords(2),
		failKinds: map[lookup.Kind]bool{lookup.KindAmenities: true},
	}
	bus := &stubEventBus{}
	handler := NewWarmLookupsHandler(refData, bus, stubClock{now: time.Now()}, zap.NewNop())

	err := handler.Handle(context.Background(), commands.WarmLookupsCommand{})
	require.NoError(t, err)
	assert.Len(t, bus.published, 3)
}

func TestWarmLookups_TotalFailureIsAnError(t *testing.T) {
	refData := &stubRefData{
		records: newRecords(1),
		failKinds: map[lookup.Kind]bool{
			lookup.KindPropertyTypes:    true,
			lookup.KindAmenities:        true,
			lookup.KindStates:           true,
			lookup.KindFacingDirections: true,
		},
	}
	bus := &stubEventBus{}
	handler := NewWarmLookupsHandler(refData, bus, stubClock{now: time.Now()}, zap.NewNop())

	err := handler.Handle(context.Background(), commands.WarmLookupsCommand{})
	require.Error(t, err)
	assert.Empty(t, bus.published)
}

func TestWarmLookups_PublishFailureIsSwallowed(t *testing.T) {
	refData := &stubRefData{records: newRecords(1)}
	bus := &stubEventBus{err: errors.New("bus unavailable")}
	handler := NewWarmLookupsHandler(refData, bus, stubClock{now: time.Now()}, zap.NewNop())

	err := handler.Handle(context.Background(), commands.WarmLookupsCommand{})
	assert.NoError(t, err)
}

func TestWarmLookups_RejectsBlankState(t *testing.T) {
	handler := NewWarmLookupsHandler(&stubRefData{}, &stubEventBus{}, stubClock{}, zap.NewNop())

	err := handler.Handle(context.Background(), commands.WarmLookupsCommand{States: []string{"  "}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-empty")
}

func TestClearReferenceData_ClearsAndPublishes(t *testing.T) {
	refData := &stubRefData{}
	bus := &stubEventBus{}
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	handler := NewClearReferenceDataHandler(refData, bus, stubClock{now: now}, zap.NewNop())

	err := handler.Handle(context.Background(), commands.ClearReferenceDataCommand{RequestedBy: "ops@example.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, refData.clearCalled)
	require.Len(t, bus.published, 1)
	cleared, ok := bus.published[0].(events.ReferenceDataCleared)
	require.True(t, ok)
	assert.Equal(t, "ops@example.com", cleared.RequestedBy)
	assert.Equal(t, now, cleared.GetTimestamp())
}

func TestClearReferenceData_RequiresRequester(t *testing.T) {
	refData := &stubRefData{}
	handler := NewClearReferenceDataHandler(refData, &stubEventBus{}, stubClock{}, zap.NewNop())

	err := handler.Handle(context.Background(), commands.ClearReferenceDataCommand{})
	require.Error(t, err)
	assert.Zero(t, refData.clearCalled)
}
