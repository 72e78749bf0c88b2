package models

import (
	"fmt"
)

// InsufficientDataError is the only loud failure in the advisory core:
// training was requested with fewer feature rows than the minimum.
type InsufficientDataError struct {
	Commodity string
	Samples   int
	Required  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient training data for %s: %d samples, need %d+",
		e.Commodity, e.Samples, e.Required)
}

// ValidationError represents a rejected request parameter
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
