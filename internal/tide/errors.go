package tide

import (
	"errors"
	"fmt"
)

// ErrNoStations is returned when no station is known near the requested point.
var ErrNoStations = errors.New("no stations found near coordinates")

// NoaaAPIError represents an error from the NOAA API
type NoaaAPIError struct {
	Message string
	Err     error
}

func (e *NoaaAPIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("NOAA API error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("NOAA API error: %s", e.Message)
}

func (e *NoaaAPIError) Unwrap() error {
	return e.Err
}

func NewNoaaAPIError(message string, err error) *NoaaAPIError {
	return &NoaaAPIError{
		Message: message,
		Err:     err,
	}
}

// InvalidRangeError is returned when a feed request spans more than NOAA serves.
type InvalidRangeError struct {
	Message string
}

func (e *InvalidRangeError) Error() string {
	return e.Message
}

func NewInvalidRangeError(message string) *InvalidRangeError {
	return &InvalidRangeError{
		Message: message,
	}
}
