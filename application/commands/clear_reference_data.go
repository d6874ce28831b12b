package commands

import "errors"

// ClearReferenceDataCommand wipes every cached reference-data entry,
// forcing the next read of each kind to hit the upstream API.
type ClearReferenceDataCommand struct {
	RequestedBy string
}

// Validate validates the ClearReferenceDataCommand
func (c ClearReferenceDataCommand) Validate() error {
	if c.RequestedBy == "" {
		return errors.New("requesting user is required")
	}
	return nil
}
