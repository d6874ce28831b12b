package commands

import (
	"errors"

	"refdata-backend/domain/lookup"
)

// WarmLookupsCommand pre-populates the cache for every static lookup
// kind plus the cities of the listed states.
type WarmLookupsCommand struct {
	States       []string
	ForceRefresh bool
}

// Validate validates the WarmLookupsCommand
func (c WarmLookupsCommand) Validate() error {
	for _, s := range c.States {
		if lookup.NormalizeState(s) == "" {
			return errors.New("state names must be non-empty")
		}
	}
	return nil
}
