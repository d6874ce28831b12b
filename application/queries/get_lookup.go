package queries

import (
	"errors"

	"refdata-backend/domain/lookup"
)

// GetLookupQuery represents a query for one reference-data collection
type GetLookupQuery struct {
	Kind         lookup.Kind
	State        string
	ForceRefresh bool
}

// Validate validates the GetLookupQuery
func (q GetLookupQuery) Validate() error {
	if !q.Kind.Valid() {
		return errors.New("unknown lookup kind")
	}
	if q.Kind.Parameterized() && q.State == "" {
		return errors.New("state is required for city lookups")
	}
	if !q.Kind.Parameterized() && q.State != "" {
		return errors.New("state is only valid for city lookups")
	}
	return nil
}

// GetLookupResult represents the result of a lookup query
type GetLookupResult struct {
	Kind    string         `json:"kind"`
	State   string         `json:"state,omitempty"`
	Records []LookupRecord `json:"records"`
}

// LookupRecord is the transport shape of a single reference record
type LookupRecord struct {
	ID    string                 `json:"id"`
	Label string                 `json:"label"`
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// NewGetLookupResult converts a domain collection into the query result
func NewGetLookupResult(q GetLookupQuery, records lookup.Collection) *GetLookupResult {
	out := make([]LookupRecord, 0, len(records))
	for _, r := range records {
		out = append(out, LookupRecord{
			ID:    r.ID,
			Label: r.Label,
			Extra: r.Extra,
		})
	}
	state := ""
	if q.Kind.Parameterized() {
		state = lookup.NormalizeState(q.State)
	}
	return &GetLookupResult{
		Kind:    string(q.Kind),
		State:   state,
		Records: out,
	}
}
