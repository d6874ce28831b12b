package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"refdata-backend/application/queries"
	querybus "refdata-backend/application/queries/bus"
	apperrors "refdata-backend/pkg/errors"
)

type stubQueryHandler struct {
	result interface{}
	err    error
	got    querybus.Query
}

func (s *stubQueryHandler) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	s.got = query
	return s.result, s.err
}

func newLookupHandler(t *testing.T, stub *stubQueryHandler) *LookupHandler {
	t.Helper()

	bus := querybus.NewQueryBus()
	require.NoError(t, bus.Register(queries.GetLookupQuery{}, stub))
	return NewLookupHandler(bus, zap.NewNop())
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestLookupHandler_Success(t *testing.T) {
	stub := &stubQueryHandler{result: &queries.GetLookupResult{
		Kind:    "states",
		Records: []queries.LookupRecord{{ID: "ka", Label: "Karnataka"}},
	}}
	handler := newLookupHandler(t, stub)

	rec := httptest.NewRecorder()
	handler.GetStates(rec, httptest.NewRequest(http.MethodGet, "/lookups/states", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, true, body["success"])
}

func TestLookupHandler_MissingStateIsBadRequest(t *testing.T) {
	stub := &stubQueryHandler{result: &queries.GetLookupResult{}}
	handler := newLookupHandler(t, stub)

	// No chi route context, so the state URL parameter resolves empty
	// and the query bus rejects the query before the handler runs.
	rec := httptest.NewRecorder()
	handler.GetCitiesByState(rec, httptest.NewRequest(http.MethodGet, "/lookups/states//cities", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, false, body["success"])
	errInfo := body["error"].(map[string]interface{})
	assert.Equal(t, "BAD_REQUEST", errInfo["code"])
	assert.Nil(t, stub.got)
}

func TestLookupHandler_NoDataMapsToServiceUnavailable(t *testing.T) {
	stub := &stubQueryHandler{err: apperrors.NewNoDataError("states", errors.New("connection refused"))}
	handler := newLookupHandler(t, stub)

	rec := httptest.NewRecorder()
	handler.GetStates(rec, httptest.NewRequest(http.MethodGet, "/lookups/states", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeResponse(t, rec)
	errInfo := body["error"].(map[string]interface{})
	assert.Equal(t, "UNAVAILABLE", errInfo["code"])
}

func TestLookupHandler_UnknownErrorIsInternal(t *testing.T) {
	stub := &stubQueryHandler{err: errors.New("boom")}
	handler := newLookupHandler(t, stub)

	rec := httptest.NewRecorder()
	handler.GetAmenities(rec, httptest.NewRequest(http.MethodGet, "/lookups/amenities", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeResponse(t, rec)
	errInfo := body["error"].(map[string]interface{})
	assert.Equal(t, "INTERNAL_ERROR", errInfo["code"])
}
