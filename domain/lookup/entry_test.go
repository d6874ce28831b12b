package lookup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_Freshness(t *testing.T) {
	ttl := 24 * time.Hour
	storedAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	entry := NewEntry("refdata:states", Collection{{ID: "ka", Label: "Karnataka"}}, storedAt)

	assert.True(t, entry.Fresh(storedAt.Add(ttl-time.Second), ttl))
	assert.False(t, entry.Fresh(storedAt.Add(ttl), ttl))
	assert.False(t, entry.Fresh(storedAt.Add(ttl+time.Second), ttl))
}

func TestEntry_MarshalRoundTrip(t *testing.T) {
	storedAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	entry := NewEntry("refdata:property_types", Collection{
		{ID: "apt", Label: "Apartment"},
		{ID: "villa", Label: "Villa", Extra: map[string]interface{}{"icon": "villa.png"}},
	}, storedAt)

	data, err := entry.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEntry(data)
	require.NoError(t, err)

	assert.Equal(t, entry.Key, decoded.Key)
	assert.True(t, entry.StoredAt.Equal(decoded.StoredAt))
	require.Len(t, decoded.Records, 2)
	assert.Equal(t, "apt", decoded.Records[0].ID)
	assert.Equal(t, "Villa", decoded.Records[1].Label)
}

func TestEntry_EmptyCollectionIsValid(t *testing.T) {
	// An empty upstream success is legitimate data and round-trips as such.
	entry := NewEntry("refdata:amenities", Collection{}, time.Now())

	data, err := entry.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEntry(data)
	require.NoError(t, err)
	assert.NotNil(t, decoded.Records)
	assert.Empty(t, decoded.Records)
}

func TestUnmarshalEntry_Corrupt(t *testing.T) {
	_, err := UnmarshalEntry([]byte("{not json"))
	assert.Error(t, err)
}
