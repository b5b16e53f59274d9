package models

import "fmt"

// SavedLocation is the last station a client looked at.
type SavedLocation struct {
	ClientID  string  `dynamodbav:"clientId" json:"clientId"`
	StationID string  `dynamodbav:"stationId" json:"stationId"`
	Name      string  `dynamodbav:"name" json:"name"`
	Latitude  float64 `dynamodbav:"latitude" json:"latitude"`
	Longitude float64 `dynamodbav:"longitude" json:"longitude"`
	UpdatedAt int64   `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Validate checks if a SavedLocation's fields are valid
func (l *SavedLocation) Validate() error {
	if l.ClientID == "" {
		return fmt.Errorf("client ID is required")
	}

	if l.StationID == "" {
		return fmt.Errorf("station ID is required")
	}

	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", l.Latitude)
	}

	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", l.Longitude)
	}

	return nil
}
