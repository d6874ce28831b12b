package ports

import (
	"context"
	"time"

	"refdata-backend/domain/events"
	"refdata-backend/domain/lookup"
)

// Source fetches reference data from the upstream listing API.
// This is a port in hexagonal architecture - the application doesn't
// know whether the other side is REST, gRPC or a test double. Each call
// is a single attempt; retry-on-user-action belongs to the clients.
type Source interface {
	// FetchPropertyTypes returns the property type collection
	FetchPropertyTypes(ctx context.Context) (lookup.Collection, error)

	// FetchAmenities returns the amenity collection
	FetchAmenities(ctx context.Context) (lookup.Collection, error)

	// FetchStates returns the state collection
	FetchStates(ctx context.Context) (lookup.Collection, error)

	// FetchCitiesByState returns the cities inside one state
	FetchCitiesByState(ctx context.Context, state string) (lookup.Collection, error)

	// FetchFacingDirections returns the facing direction collection
	FetchFacingDirections(ctx context.Context) (lookup.Collection, error)
}

// Store is the durable key-value space cache entries are persisted to.
// It is shared with unrelated platform state, so every key this service
// touches carries the lookup.KeyNamespace prefix.
type Store interface {
	// Read returns the stored value for key, with found=false on a miss
	Read(ctx context.Context, key string) (value []byte, found bool, err error)

	// Write stores value under key, replacing any prior value
	Write(ctx context.Context, key string, value []byte) error

	// Delete removes key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error

	// ListKeys returns every stored key starting with prefix
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// ReferenceData is the read-through cache surface consumed by the
// query/command handlers and the HTTP layer.
type ReferenceData interface {
	GetPropertyTypes(ctx context.Context, forceRefresh bool) (lookup.Collection, error)
	GetAmenities(ctx context.Context, forceRefresh bool) (lookup.Collection, error)
	GetStates(ctx context.Context, forceRefresh bool) (lookup.Collection, error)
	GetCitiesByState(ctx context.Context, state string, forceRefresh bool) (lookup.Collection, error)
	GetFacingDirections(ctx context.Context, forceRefresh bool) (lookup.Collection, error)

	// ClearAll removes every stored entry in the cache namespace,
	// including every per-state cities entry ever written. Best effort;
	// storage failures during deletion are logged, not surfaced.
	ClearAll(ctx context.Context)
}

// EventBus publishes domain events to the platform event backbone
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Metrics records operational counters for the cache and its callers
type Metrics interface {
	IncrementCounter(name string, dimensions map[string]string)
	RecordDuration(name string, d time.Duration, dimensions map[string]string)
}

// Clock abstracts wall-clock time so TTL behavior is testable
type Clock interface {
	Now() time.Time
}
