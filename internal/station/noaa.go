package station

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bbernstein/tidetimes/internal/cache"
	"github.com/bbernstein/tidetimes/internal/models"
	"github.com/bbernstein/tidetimes/pkg/http/client"
	"github.com/rs/zerolog/log"
)

const (
	stationListPath = "/mdapi/prod/webapi/tidepredstations.json"
	defaultLimit    = 5
)

// ErrStationNotFound is returned by FindStation for unknown IDs.
var ErrStationNotFound = errors.New("station not found")

type NOAAStationFinder struct {
	httpClient client.Interface
	memCache   *cache.StationCache
	s3Cache    cache.StationListCacheProvider
	cacheMutex sync.Mutex
}

var _ models.StationFinder = (*NOAAStationFinder)(nil)

// NewNOAAStationFinder builds a finder over the NOAA station list. s3Cache is
// optional.
func NewNOAAStationFinder(httpClient client.Interface, memCache *cache.StationCache, s3Cache cache.StationListCacheProvider) *NOAAStationFinder {
	if memCache == nil {
		memCache = cache.NewStationCache(24 * time.Hour)
	}

	return &NOAAStationFinder{
		httpClient: httpClient,
		memCache:   memCache,
		s3Cache:    s3Cache,
	}
}

func (f *NOAAStationFinder) FindNearestStations(ctx context.Context, lat, lon float64, limit int) ([]models.Station, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid latitude: %f", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid longitude: %f", lon)
	}

	stations, err := f.getStationList(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting station list: %w", err)
	}

	nearest := make([]models.Station, len(stations))
	for i, station := range stations {
		station.Distance = calculateDistance(lat, lon, station.Latitude, station.Longitude)
		nearest[i] = station
	}

	sort.SliceStable(nearest, func(i, j int) bool {
		return nearest[i].Distance < nearest[j].Distance
	})

	if limit <= 0 {
		limit = defaultLimit
	}
	return nearest[:min(limit, len(nearest))], nil
}

func (f *NOAAStationFinder) FindStation(ctx context.Context, stationID string) (*models.Station, error) {
	stations, err := f.getStationList(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting station list: %w", err)
	}

	for _, station := range stations {
		if station.ID == stationID {
			return &station, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrStationNotFound, stationID)
}

// getStationList reads the list from memory, then S3, then NOAA, filling the
// faster layers on the way back.
func (f *NOAAStationFinder) getStationList(ctx context.Context) ([]models.Station, error) {
	f.cacheMutex.Lock()
	defer f.cacheMutex.Unlock()

	if stations := f.memCache.GetStations(); stations != nil {
		log.Debug().Msg("Memory cache HIT for station list")
		return stations, nil
	}

	if f.s3Cache != nil {
		stations, err := f.s3Cache.GetStations(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Error getting stations from S3 cache")
		} else if stations != nil {
			log.Debug().Int("station_count", len(stations)).Msg("S3 cache HIT for station list")
			f.memCache.SetStations(stations)
			return stations, nil
		}
	}

	log.Debug().Msg("Cache MISS for station list, fetching from NOAA API")

	stations, err := f.fetchStations(ctx)
	if err != nil {
		return nil, err
	}

	if f.s3Cache != nil {
		if err := f.s3Cache.SaveStations(ctx, stations); err != nil {
			log.Error().Err(err).Msg("Failed to save stations to S3 cache")
		}
	}
	f.memCache.SetStations(stations)

	return stations, nil
}

type noaaStationList struct {
	Stations []struct {
		ID           string  `json:"stationId"`
		Name         string  `json:"name"`
		State        string  `json:"state"`
		Region       string  `json:"region"`
		Lat          float64 `json:"lat"`
		Lon          float64 `json:"lon"`
		TimeZoneCorr string  `json:"timeZoneCorr"`
		Level        string  `json:"level"`
		StationType  string  `json:"stationType"`
	} `json:"stationList"`
}

func (f *NOAAStationFinder) fetchStations(ctx context.Context) ([]models.Station, error) {
	resp, err := f.httpClient.Get(ctx, stationListPath)
	if err != nil {
		return nil, fmt.Errorf("fetching stations: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no response from NOAA API")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching stations: unexpected status %d", resp.StatusCode)
	}

	var list noaaStationList
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	stations := make([]models.Station, 0, len(list.Stations))
	for _, s := range list.Stations {
		station := models.Station{
			ID:             s.ID,
			Name:           s.Name,
			State:          optional(s.State),
			Region:         optional(s.Region),
			Latitude:       s.Lat,
			Longitude:      s.Lon,
			Source:         models.SourceNOAA,
			Capabilities:   []string{"WATER_LEVEL"},
			TimeZoneOffset: parseTimeZoneOffset(s.TimeZoneCorr),
			Level:          optional(s.Level),
			StationType:    optional(s.StationType),
		}
		if err := station.Validate(); err != nil {
			log.Warn().Err(err).Str("station_id", s.ID).Msg("Skipping invalid station")
			continue
		}
		stations = append(stations, station)
	}

	return stations, nil
}

// Location returns the fixed zone NOAA reports for the station.
func Location(s models.Station) *time.Location {
	return time.FixedZone(s.ID, s.TimeZoneOffset)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseTimeZoneOffset(tzCorr string) int {
	offset, err := strconv.Atoi(tzCorr)
	if err != nil {
		return 0
	}
	return offset * 3600
}

func calculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371.0 // km

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
