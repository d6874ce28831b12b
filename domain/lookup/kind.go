package lookup

import (
	"fmt"
	"strings"
)

// KeyNamespace prefixes every key this service writes to the shared
// key-value store. Keys outside this namespace belong to other parts of
// the platform (auth tokens, user preferences) and are never touched.
const KeyNamespace = "refdata:"

// Kind identifies one reference-data collection served by the platform.
type Kind string

const (
	KindPropertyTypes    Kind = "property_types"
	KindAmenities        Kind = "amenities"
	KindStates           Kind = "states"
	KindCitiesByState    Kind = "cities"
	KindFacingDirections Kind = "facing_directions"
)

// Kinds returns every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindPropertyTypes,
		KindAmenities,
		KindStates,
		KindCitiesByState,
		KindFacingDirections,
	}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPropertyTypes, KindAmenities, KindStates, KindCitiesByState, KindFacingDirections:
		return true
	}
	return false
}

// Parameterized reports whether the kind needs a discriminator to form
// a complete key. Only cities are scoped to a parent state.
func (k Kind) Parameterized() bool {
	return k == KindCitiesByState
}

func (k Kind) String() string {
	return string(k)
}

// NormalizeState canonicalizes a state discriminator so that
// "Karnataka", " karnataka " and "KARNATAKA" address the same entry.
func NormalizeState(state string) string {
	return strings.ToLower(strings.TrimSpace(state))
}

// Key builds the fully-qualified storage key for a kind and its
// discriminator. The discriminator is required for parameterized kinds
// and ignored for all others.
func Key(kind Kind, discriminator string) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown lookup kind %q", kind)
	}

	if !kind.Parameterized() {
		return KeyNamespace + string(kind), nil
	}

	state := NormalizeState(discriminator)
	if state == "" {
		return "", fmt.Errorf("lookup kind %q requires a state discriminator", kind)
	}
	return fmt.Sprintf("%s%s:%s", KeyNamespace, kind, state), nil
}
