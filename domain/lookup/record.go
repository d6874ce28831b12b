package lookup

// Record is a single reference-data item as served to the mobile app,
// e.g. a property type or a state. Extra carries any kind-specific
// attributes the upstream API includes (icon names, sort hints); the
// cache never inspects it.
type Record struct {
	ID    string                 `json:"id"`
	Label string                 `json:"label"`
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// Collection is an ordered set of records for one lookup kind. Order is
// preserved exactly as the upstream API returned it; the pickers in the
// app render it as-is.
type Collection []Record

// Clone returns a shallow copy of the collection so callers can hold
// the result without aliasing cached state.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	copy(out, c)
	return out
}
