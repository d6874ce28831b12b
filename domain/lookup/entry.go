package lookup

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is one stored cache record: the payload for a fully-qualified
// key plus the wall-clock time it was written. A stale entry is not
// deleted; staleness only decides whether a refresh is attempted before
// serving it.
type Entry struct {
	Key      string     `json:"key"`
	Records  Collection `json:"records"`
	StoredAt time.Time  `json:"stored_at"`
}

// NewEntry creates an entry stamped with the given write time.
func NewEntry(key string, records Collection, storedAt time.Time) Entry {
	return Entry{
		Key:      key,
		Records:  records,
		StoredAt: storedAt,
	}
}

// Fresh reports whether the entry is still inside its TTL window.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredAt) < ttl
}

// Age returns how long ago the entry was written.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// Marshal serializes the entry for the durable store.
func (e Entry) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cache entry %s: %w", e.Key, err)
	}
	return data, nil
}

// UnmarshalEntry decodes a stored entry. A decode failure is reported
// to the caller, which treats it the same as a missing entry.
func UnmarshalEntry(data []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return e, nil
}
