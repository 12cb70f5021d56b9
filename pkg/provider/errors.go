package provider

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// ProviderError represents a failed lookup against a rate provider for one day.
type ProviderError struct {
	Provider string
	Date     civil.Date
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s (%s): %v", e.Provider, e.Date, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

