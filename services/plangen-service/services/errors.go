package services

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is the only error class the generators return for
// bad input. Everything else degrades into warnings on the plan.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// DataQualityError reports a catalog record that cannot be normalized.
type DataQualityError struct {
	RecordID string
	Reason   string
}

func (e *DataQualityError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("data quality: %s", e.Reason)
	}
	return fmt.Sprintf("data quality: record %s: %s", e.RecordID, e.Reason)
}

func invalidConfig(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
