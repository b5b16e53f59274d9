package models

import "fmt"

type Source string

const SourceNOAA Source = "NOAA"

// Station types as reported by NOAA: reference stations publish 6-minute
// predictions, subordinate stations only publish high/low events.
const (
	StationTypeReference   = "R"
	StationTypeSubordinate = "S"
)

type Station struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	State          *string  `json:"state,omitempty"`
	Region         *string  `json:"region,omitempty"`
	Distance       float64  `json:"distance"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Source         Source   `json:"source"`
	Capabilities   []string `json:"capabilities"`
	TimeZoneOffset int      `json:"timeZoneOffset"`
	Level          *string  `json:"level,omitempty"`
	StationType    *string  `json:"stationType,omitempty"`
}

// IsSubordinate reports whether only high/low events are published for the station.
func (s Station) IsSubordinate() bool {
	return s.StationType != nil && *s.StationType == StationTypeSubordinate
}

// Validate checks if a Station's fields are valid
func (s *Station) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("station ID is required")
	}

	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", s.Latitude)
	}

	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", s.Longitude)
	}

	if s.Source != SourceNOAA {
		return fmt.Errorf("invalid source: %q", s.Source)
	}

	if s.TimeZoneOffset < -43200 || s.TimeZoneOffset > 50400 {
		return fmt.Errorf("invalid timezone offset: %d", s.TimeZoneOffset)
	}

	return nil
}
