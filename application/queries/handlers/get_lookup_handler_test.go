package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"refdata-backend/application/queries"
	"refdata-backend/domain/lookup"
)

type stubRefData struct {
	records   lookup.Collection
	err       error
	lastState string
	lastForce bool
}

func (s *stubRefData) GetPropertyTypes(_ context.Context, force bool) (lookup.Collection, error) {
	s.lastForce = force
	return s.records, s.err
}

func (s *stubRefData) GetAmenities(_ context.Context, force bool) (lookup.Collection, error) {
	s.lastForce = force
	return s.records, s.err
}

func (s *stubRefData) GetStates(_ context.Context, force bool) (lookup.Collection, error) {
	s.lastForce = force
	return s.records, s.err
}

func (s *stubRefData) GetCitiesByState(_ context.Context, state string, force bool) (lookup.Collection, error) {
	s.lastState = state
	s.lastForce = force
	return s.records, s.err
}

func (s *stubRefData) GetFacingDirections(_ context.Context, force bool) (lookup.Collection, error) {
	s.lastForce = force
	return s.records, s.err
}

func (s *stubRefData) ClearAll(context.Context) {}

func TestGetLookup_ReturnsRecords(t *testing.T) {
	refData := &stubRefData{records: lookup.Collection{
		{ID: "apartment", Label: "Apartment", Extra: map[string]interface{}{"icon": "building"}},
		{ID: "villa", Label: "Villa"},
	}}
	handler := NewGetLookupHandler(refData, zap.NewNop())

	result, err := handler.Handle(context.Background(), queries.GetLookupQuery{Kind: lookup.KindPropertyTypes})
	require.NoError(t, err)

	assert.Equal(t, "property_types", result.Kind)
	assert.Empty(t, result.State)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "Apartment", result.Records[0].Label)
	assert.Equal(t, "building", result.Records[0].Extra["icon"])
}

func TestGetLookup_CitiesCarryNormalizedState(t *testing.T) {
	refData := &stubRefData{records: lookup.Collection{{ID: "mysuru", Label: "Mysuru"}}}
	handler := NewGetLookupHandler(refData, zap.NewNop())

	result, err := handler.Handle(context.Background(), queries.GetLookupQuery{
		Kind:  lookup.KindCitiesByState,
		State: "  Karnataka ",
	})
	require.NoError(t, err)

	assert.Equal(t, "karnataka", result.State)
	assert.Equal(t, "  Karnataka ", refData.lastState)
}

func TestGetLookup_ForceRefreshIsForwarded(t *testing.T) {
	refData := &stubRefData{records: lookup.Collection{}}
	handler := NewGetLookupHandler(refData, zap.NewNop())

	_, err := handler.Handle(context.Background(), queries.GetLookupQuery{
		Kind:         lookup.KindStates,
		ForceRefresh: true,
	})
	require.NoError(t, err)
	assert.True(t, refData.lastForce)
}

func TestGetLookup_EmptyCollectionIsAValidResult(t *testing.T) {
	refData := &stubRefData{records: lookup.Collection{}}
	handler := NewGetLookupHandler(refData, zap.NewNop())

	result, err := handler.Handle(context.Background(), queries.GetLookupQuery{Kind: lookup.KindAmenities})
	require.NoError(t, err)
	assert.NotNil(t, result.Records)
	assert.Empty(t, result.Records)
}

func TestGetLookup_ValidationErrors(t *testing.T) {
	handler := NewGetLookupHandler(&stubRefData{}, zap.NewNop())

	_, err := handler.Handle(context.Background(), queries.GetLookupQuery{Kind: "postal_codes"})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), queries.GetLookupQuery{Kind: lookup.KindCitiesByState})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), queries.GetLookupQuery{Kind: lookup.KindStates, State: "karnataka"})
	assert.Error(t, err)
}

func TestGetLookup_PropagatesCacheError(t *testing.T) {
	refData := &stubRefData{err: errors.New("no data available")}
	handler := NewGetLookupHandler(refData, zap.NewNop())

	_, err := handler.Handle(context.Background(), queries.GetLookupQuery{Kind: lookup.KindPropertyTypes})
	assert.Error(t, err)
}
