package events

import (
	"time"

	"github.com/google/uuid"

	"refdata-backend/domain/lookup"
)

// SourceService identifies this service on the platform event bus
const SourceService = "refdata-backend"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetEventID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version"`
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBaseEvent(eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: timestamp,
		Version:   1,
	}
}

// Reference-data events

// LookupRefreshed is raised when a lookup collection was force-refreshed
// from the upstream API and rewritten to the cache.
type LookupRefreshed struct {
	BaseEvent
	Kind        lookup.Kind `json:"kind"`
	State       string      `json:"state,omitempty"`
	RecordCount int         `json:"record_count"`
}

// NewLookupRefreshed creates a LookupRefreshed event. State is empty for
// every kind except cities.
func NewLookupRefreshed(kind lookup.Kind, state string, recordCount int, timestamp time.Time) LookupRefreshed {
	return LookupRefreshed{
		BaseEvent:   newBaseEvent("refdata.lookup_refreshed", timestamp),
		Kind:        kind,
		State:       state,
		RecordCount: recordCount,
	}
}

// ReferenceDataCleared is raised after a bulk cache invalidation.
type ReferenceDataCleared struct {
	BaseEvent
	RequestedBy string `json:"requested_by"`
}

// NewReferenceDataCleared creates a ReferenceDataCleared event
func NewReferenceDataCleared(requestedBy string, timestamp time.Time) ReferenceDataCleared {
	return ReferenceDataCleared{
		BaseEvent:   newBaseEvent("refdata.cleared", timestamp),
		RequestedBy: requestedBy,
	}
}
