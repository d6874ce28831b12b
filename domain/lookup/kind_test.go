package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_FixedKinds(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindPropertyTypes, "refdata:property_types"},
		{KindAmenities, "refdata:amenities"},
		{KindStates, "refdata:states"},
		{KindFacingDirections, "refdata:facing_directions"},
	}

	for _, tt := range tests {
		key, err := Key(tt.kind, "")
		assert.NoError(t, err)
		assert.Equal(t, tt.want, key)
	}
}

func TestKey_FixedKindIgnoresDiscriminator(t *testing.T) {
	key, err := Key(KindStates, "Karnataka")

	assert.NoError(t, err)
	assert.Equal(t, "refdata:states", key)
}

func TestKey_CitiesRequiresState(t *testing.T) {
	_, err := Key(KindCitiesByState, "")
	assert.Error(t, err)

	_, err = Key(KindCitiesByState, "   ")
	assert.Error(t, err)
}

func TestKey_CitiesNormalizesState(t *testing.T) {
	want := "refdata:cities:karnataka"

	for _, state := range []string{"Karnataka", " karnataka ", "KARNATAKA"} {
		key, err := Key(KindCitiesByState, state)
		assert.NoError(t, err)
		assert.Equal(t, want, key)
	}
}

func TestKey_DistinctStatesGetDistinctKeys(t *testing.T) {
	k1, err := Key(KindCitiesByState, "Karnataka")
	assert.NoError(t, err)

	k2, err := Key(KindCitiesByState, "Maharashtra")
	assert.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestKey_UnknownKind(t *testing.T) {
	_, err := Key(Kind("floor_plans"), "")
	assert.Error(t, err)
}

func TestKinds_AllValid(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 5)

	for _, k := range kinds {
		assert.True(t, k.Valid())
	}
}
