package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"refdata-backend/domain/lookup"
	apperrors "refdata-backend/pkg/errors"
	"refdata-backend/pkg/observability"
)

// Client fetches reference data from the listing API's metadata
// endpoints. One HTTP round trip per call, no retry or backoff; the
// cache layer decides what to do with a failure. Timeouts come from
// the injected http.Client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	tracer     *observability.Tracer
	logger     *zap.Logger
}

// NewClient creates a source client for the given listing API base URL
func NewClient(httpClient *http.Client, baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger,
	}
}

// WithTracer enables X-Ray subsegments around upstream calls
func (c *Client) WithTracer(tracer *observability.Tracer) *Client {
	c.tracer = tracer
	return c
}

// envelope is the listing API's standard response wrapper
type envelope struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message"`
	Data    []map[string]interface{} `json:"data"`
}

// FetchPropertyTypes returns the property type collection
func (c *Client) FetchPropertyTypes(ctx context.Context) (lookup.Collection, error) {
	return c.fetchList(ctx, lookup.KindPropertyTypes, "/api/v1/meta/property-types")
}

// FetchAmenities returns the amenity collection
func (c *Client) FetchAmenities(ctx context.Context) (lookup.Collection, error) {
	return c.fetchList(ctx, lookup.KindAmenities, "/api/v1/meta/amenities")
}

// FetchStates returns the state collection
func (c *Client) FetchStates(ctx context.Context) (lookup.Collection, error) {
	return c.fetchList(ctx, lookup.KindStates, "/api/v1/meta/states")
}

// FetchCitiesByState returns the cities inside one state
func (c *Client) FetchCitiesByState(ctx context.Context, state string) (lookup.Collection, error) {
	path := "/api/v1/meta/states/" + url.PathEscape(strings.TrimSpace(state)) + "/cities"
	return c.fetchList(ctx, lookup.KindCitiesByState, path)
}

// FetchFacingDirections returns the facing direction collection
func (c *Client) FetchFacingDirections(ctx context.Context) (lookup.Collection, error) {
	return c.fetchList(ctx, lookup.KindFacingDirections, "/api/v1/meta/facing-directions")
}

func (c *Client) fetchList(ctx context.Context, kind lookup.Kind, path string) (lookup.Collection, error) {
	if c.tracer != nil {
		var records lookup.Collection
		err := c.tracer.TraceFetch(ctx, kind.String(), func(ctx context.Context) error {
			var fetchErr error
			records, fetchErr = c.doFetch(ctx, kind, path)
			return fetchErr
		})
		return records, err
	}
	return c.doFetch(ctx, kind, path)
}

func (c *Client) doFetch(ctx context.Context, kind lookup.Kind, path string) (lookup.Collection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, apperrors.NewFetchError(kind.String(), err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Upstream request failed",
			zap.String("kind", kind.String()),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, apperrors.NewFetchError(kind.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Upstream returned non-success status",
			zap.String("kind", kind.String()),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, apperrors.NewFetchError(kind.String(),
			fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, apperrors.NewFetchError(kind.String(),
			fmt.Errorf("malformed response from %s: %w", path, err))
	}
	if !env.Success {
		return nil, apperrors.NewFetchError(kind.String(),
			fmt.Errorf("upstream reported failure for %s: %s", path, env.Message))
	}

	return decodeRecords(env.Data), nil
}

// decodeRecords maps the loosely-typed upstream payload into records.
// id and label are lifted out; everything else the upstream includes
// rides along in Extra untouched.
func decodeRecords(raw []map[string]interface{}) lookup.Collection {
	records := make(lookup.Collection, 0, len(raw))
	for _, item := range raw {
		records = append(records, toRecord(item))
	}
	return records
}

// toRecord converts one upstream object into a lookup record
func toRecord(item map[string]interface{}) lookup.Record {
	record := lookup.Record{}
	var extra map[string]interface{}

	for k, v := range item {
		switch k {
		case "id":
			if s, ok := v.(string); ok {
				record.ID = s
			} else {
				record.ID = fmt.Sprintf("%v", v)
			}
		case "label":
			if s, ok := v.(string); ok {
				record.Label = s
			} else {
				record.Label = fmt.Sprintf("%v", v)
			}
		default:
			if extra == nil {
				extra = make(map[string]interface{})
			}
			extra[k] = v
		}
	}

	record.Extra = extra
	return record
}
