package models

import "context"

type StationFinder interface {
	FindStation(ctx context.Context, stationID string) (*Station, error)
	FindNearestStations(ctx context.Context, lat, lon float64, limit int) ([]Station, error)
}

// LocationStore persists the last location chosen by a client.
type LocationStore interface {
	GetLocation(ctx context.Context, clientID string) (*SavedLocation, error)
	SaveLocation(ctx context.Context, location SavedLocation) error
}
