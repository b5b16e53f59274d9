package tide

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bbernstein/tidetimes/internal/cache"
	"github.com/bbernstein/tidetimes/internal/config"
	"github.com/bbernstein/tidetimes/internal/models"
	"github.com/bbernstein/tidetimes/internal/station"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStationFinder struct {
	findStationFunc         func(ctx context.Context, stationID string) (*models.Station, error)
	findNearestStationsFunc func(ctx context.Context, lat, lon float64, limit int) ([]models.Station, error)
}

func (m *mockStationFinder) FindStation(ctx context.Context, stationID string) (*models.Station, error) {
	if m.findStationFunc != nil {
		return m.findStationFunc(ctx, stationID)
	}
	return nil, station.ErrStationNotFound
}

func (m *mockStationFinder) FindNearestStations(ctx context.Context, lat, lon float64, limit int) ([]models.Station, error) {
	if m.findNearestStationsFunc != nil {
		return m.findNearestStationsFunc(ctx, lat, lon, limit)
	}
	return nil, nil
}

type mockFeedFetcher struct {
	mu        sync.Mutex
	calls     []models.ReadingKind
	fetchFunc func(ctx context.Context, stationID string, kind models.ReadingKind, begin, end time.Time) ([]models.RawReading, error)
}

func (m *mockFeedFetcher) Fetch(ctx context.Context, stationID string, kind models.ReadingKind, begin, end time.Time) ([]models.RawReading, error) {
	m.mu.Lock()
	m.calls = append(m.calls, kind)
	m.mu.Unlock()
	return m.fetchFunc(ctx, stationID, kind, begin, end)
}

func (m *mockFeedFetcher) callCount(kind models.ReadingKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range m.calls {
		if k == kind {
			n++
		}
	}
	return n
}

// feeds serves fixed readings per kind.
func feeds(heights, extremes []models.RawReading) *mockFeedFetcher {
	return &mockFeedFetcher{
		fetchFunc: func(_ context.Context, _ string, kind models.ReadingKind, _, _ time.Time) ([]models.RawReading, error) {
			if kind == models.ReadingKindHeight {
				return heights, nil
			}
			return extremes, nil
		},
	}
}

var serviceNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// hour returns serviceNow's midnight shifted by n hours.
func hour(n int) time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Hour)
}

func testStation(stationType string) models.Station {
	return models.Station{
		ID:          "9447130",
		Name:        "Seattle",
		Latitude:    47.6026,
		Longitude:   -122.3393,
		Source:      models.SourceNOAA,
		StationType: &stationType,
	}
}

func finderFor(st models.Station) *mockStationFinder {
	return &mockStationFinder{
		findStationFunc: func(_ context.Context, id string) (*models.Station, error) {
			if id != st.ID {
				return nil, station.ErrStationNotFound
			}
			return &st, nil
		},
		findNearestStationsFunc: func(_ context.Context, _, _ float64, _ int) ([]models.Station, error) {
			withDistance := st
			withDistance.Distance = 1.5
			return []models.Station{withDistance}, nil
		},
	}
}

func newTestService(f FeedFetcher, finder models.StationFinder, feedCache FeedCache) *Service {
	s := NewService(f, finder, feedCache, config.DefaultTimelineConfig())
	s.Now = func() time.Time { return serviceNow }
	return s
}

func referenceHeights() []models.RawReading {
	return []models.RawReading{
		models.NewHeightReading(hour(10), 1.0),
		models.NewHeightReading(hour(11), 1.4),
		models.NewHeightReading(hour(13), 1.8),
		models.NewHeightReading(hour(14), 2.0),
	}
}

func referenceExtremes() []models.RawReading {
	return []models.RawReading{
		models.NewExtremeReading(hour(10), 1.0, models.ExtremeLabelLow),
		models.NewExtremeReading(hour(14), 2.0, models.ExtremeLabelHigh),
		models.NewExtremeReading(hour(20), 0.2, models.ExtremeLabelLow),
		models.NewExtremeReading(hour(27), 2.5, models.ExtremeLabelHigh),
	}
}

func TestGetSummaryForStationCompact(t *testing.T) {
	svc := newTestService(feeds(referenceHeights(), referenceExtremes()), finderFor(testStation("R")), nil)

	summary, err := svc.GetSummaryForStation(context.Background(), "9447130", models.ChartModeCompact)
	require.NoError(t, err)
	require.NoError(t, summary.Validate())

	assert.Equal(t, "tide", summary.ResponseType)
	assert.Equal(t, "9447130", summary.StationID)
	assert.Equal(t, "2024-06-01T12:00:00", summary.LocalTime)
	assert.Equal(t, serviceNow.UnixMilli(), summary.Timestamp)
	assert.Equal(t, calculationMethod, summary.CalculationMethod)

	require.NotNil(t, summary.CurrentHeight)
	assert.InDelta(t, 1.6, *summary.CurrentHeight, 1e-9)
	require.NotNil(t, summary.Direction)
	assert.Equal(t, models.TideTypeRising, *summary.Direction)

	require.NotNil(t, summary.NextHigh)
	assert.Equal(t, hour(14).UnixMilli(), summary.NextHigh.Timestamp)
	assert.Equal(t, models.TideTypeHigh, summary.NextHigh.Type)
	require.NotNil(t, summary.NextLow)
	assert.Equal(t, hour(20).UnixMilli(), summary.NextLow.Timestamp)

	// Today's points only; the high on the next day is left out.
	assert.Len(t, summary.Extremes, 3)
	assert.Equal(t, []models.TidePrediction{
		{Timestamp: hour(11).UnixMilli(), LocalTime: "2024-06-01T11:00:00", Height: 1.4},
		{Timestamp: hour(13).UnixMilli(), LocalTime: "2024-06-01T13:00:00", Height: 1.8},
	}, summary.Predictions)

	chart := summary.Chart
	assert.Equal(t, models.ChartModeCompact, chart.Mode)
	require.Len(t, chart.Points, 3)
	assert.Equal(t, hour(10).UnixMilli(), chart.Points[0].Timestamp)
	assert.Equal(t, hour(20).UnixMilli(), chart.Points[2].Timestamp)

	require.Len(t, chart.Coordinates, 3)
	assert.InDelta(t, 0.0, chart.Coordinates[0].X, 1e-9)
	assert.InDelta(t, 0.4, chart.Coordinates[1].X, 1e-9)
	assert.InDelta(t, 1.0, chart.Coordinates[2].X, 1e-9)
	assert.InDelta(t, 1-0.8/1.8, chart.Coordinates[0].Y, 1e-9)
	assert.InDelta(t, 0.0, chart.Coordinates[1].Y, 1e-9)
	assert.InDelta(t, 1.0, chart.Coordinates[2].Y, 1e-9)

	require.NotNil(t, chart.Marker)
	assert.InDelta(t, 0.2, chart.Marker.X, 1e-9)
	assert.InDelta(t, (1-0.8/1.8)/2, chart.Marker.Y, 1e-9)
}

func TestGetSummaryDayMode(t *testing.T) {
	svc := newTestService(feeds(referenceHeights(), referenceExtremes()), finderFor(testStation("R")), nil)

	summary, err := svc.GetSummary(context.Background(), 47.6, -122.3, models.ChartModeDay)
	require.NoError(t, err)

	assert.Equal(t, 1.5, summary.StationDistance)
	assert.Equal(t, models.ChartModeDay, summary.Chart.Mode)

	// Five height-ranked samples plus the latest point of the window.
	got := make([]int64, len(summary.Chart.Points))
	for i, p := range summary.Chart.Points {
		got[i] = p.Timestamp
	}
	assert.Equal(t, []int64{
		hour(10).UnixMilli(),
		hour(11).UnixMilli(),
		hour(13).UnixMilli(),
		hour(14).UnixMilli(),
		hour(20).UnixMilli(),
		hour(27).UnixMilli(),
	}, got)
	assert.Len(t, summary.Chart.Coordinates, 6)
	assert.NotNil(t, summary.Chart.Marker)
}

func TestSubordinateStationSkipsHeightFeed(t *testing.T) {
	f := feeds(referenceHeights(), referenceExtremes())
	svc := newTestService(f, finderFor(testStation(models.StationTypeSubordinate)), nil)

	summary, err := svc.GetSummaryForStation(context.Background(), "9447130", models.ChartModeCompact)
	require.NoError(t, err)

	assert.Equal(t, 0, f.callCount(models.ReadingKindHeight))
	assert.Equal(t, 1, f.callCount(models.ReadingKindExtreme))
	assert.Empty(t, summary.Predictions)
	assert.Len(t, summary.Extremes, 3)

	require.NotNil(t, summary.CurrentHeight)
	assert.InDelta(t, 1.5, *summary.CurrentHeight, 1e-9)
}

func TestDenseSeriesWithoutExtremesIsDetected(t *testing.T) {
	heights := []models.RawReading{
		models.NewHeightReading(hour(9), 1.0),
		models.NewHeightReading(hour(10), 2.0),
		models.NewHeightReading(hour(11), 1.0),
		models.NewHeightReading(hour(12), 0.5),
		models.NewHeightReading(hour(13), 1.0),
	}
	svc := newTestService(feeds(heights, nil), finderFor(testStation("R")), nil)

	summary, err := svc.GetSummaryForStation(context.Background(), "9447130", models.ChartModeCompact)
	require.NoError(t, err)

	assert.Equal(t, calculationMethodDetected, summary.CalculationMethod)
	assert.Equal(t, []models.TideExtreme{
		{Type: models.TideTypeHigh, Timestamp: hour(10).UnixMilli(), LocalTime: "2024-06-01T10:00:00", Height: 2.0},
		{Type: models.TideTypeLow, Timestamp: hour(12).UnixMilli(), LocalTime: "2024-06-01T12:00:00", Height: 0.5},
	}, summary.Extremes)
	assert.Nil(t, summary.NextHigh)
	assert.Nil(t, summary.NextLow)
}

func TestEmptyFeedsGiveEmptySummary(t *testing.T) {
	svc := newTestService(feeds(nil, nil), finderFor(testStation("R")), nil)

	summary, err := svc.GetSummaryForStation(context.Background(), "9447130", models.ChartModeCompact)
	require.NoError(t, err)
	require.NoError(t, summary.Validate())

	assert.Nil(t, summary.CurrentHeight)
	assert.Nil(t, summary.Direction)
	assert.Nil(t, summary.NextHigh)
	assert.Nil(t, summary.NextLow)
	assert.NotNil(t, summary.Extremes)
	assert.Empty(t, summary.Extremes)
	assert.Empty(t, summary.Chart.Points)
	assert.Empty(t, summary.Chart.Coordinates)
	assert.Nil(t, summary.Chart.Marker)
}

func TestMalformedReadingsAreDropped(t *testing.T) {
	extremes := append(referenceExtremes(),
		models.RawReading{Kind: models.ReadingKindExtreme, Timestamp: hour(16), Value: 3.0},
		models.RawReading{Kind: models.ReadingKindExtreme, Value: 3.0, Type: nil},
	)
	svc := newTestService(feeds(referenceHeights(), extremes), finderFor(testStation("R")), nil)

	tl, detected, err := svc.Timeline(context.Background(), testStation("R"), serviceNow)
	require.NoError(t, err)

	assert.False(t, detected)
	assert.Len(t, tl, 6)
	assert.Len(t, tl.Extrema(), 4)
}

func TestFeedCacheServesRepeatedRequests(t *testing.T) {
	feedCache, err := cache.NewFeedCache(&config.CacheConfig{FeedLRUSize: 10, FeedLRUTTLMinutes: 15})
	require.NoError(t, err)

	f := feeds(referenceHeights(), referenceExtremes())
	svc := newTestService(f, finderFor(testStation("R")), feedCache)

	first, err := svc.GetSummaryForStation(context.Background(), "9447130", models.ChartModeCompact)
	require.NoError(t, err)
	second, err := svc.GetSummaryForStation(context.Background(), "9447130", models.ChartModeCompact)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.callCount(models.ReadingKindHeight))
	assert.Equal(t, 1, f.callCount(models.ReadingKindExtreme))
	assert.Equal(t, uint64(2), feedCache.Stats()["hits"])
}

func TestGetSummaryErrors(t *testing.T) {
	t.Parallel()

	feedErr := NewNoaaAPIError("unexpected status 500 for HEIGHT feed", nil)
	finderErr := errors.New("station list unavailable")

	tests := []struct {
		name    string
		feeds   FeedFetcher
		finder  models.StationFinder
		call    func(s *Service) (*models.TideSummary, error)
		wantErr error
		wantAPI bool
	}{
		{
			name:   "no station near the point",
			feeds:  feeds(nil, nil),
			finder: &mockStationFinder{},
			call: func(s *Service) (*models.TideSummary, error) {
				return s.GetSummary(context.Background(), 0, 0, models.ChartModeCompact)
			},
			wantErr: ErrNoStations,
		},
		{
			name:  "nearest lookup fails",
			feeds: feeds(nil, nil),
			finder: &mockStationFinder{
				findNearestStationsFunc: func(context.Context, float64, float64, int) ([]models.Station, error) {
					return nil, finderErr
				},
			},
			call: func(s *Service) (*models.TideSummary, error) {
				return s.GetSummary(context.Background(), 47.6, -122.3, models.ChartModeCompact)
			},
			wantErr: finderErr,
		},
		{
			name:   "unknown station",
			feeds:  feeds(nil, nil),
			finder: finderFor(testStation("R")),
			call: func(s *Service) (*models.TideSummary, error) {
				return s.GetSummaryForStation(context.Background(), "0000000", models.ChartModeCompact)
			},
			wantErr: station.ErrStationNotFound,
		},
		{
			name: "feed failure",
			feeds: &mockFeedFetcher{
				fetchFunc: func(_ context.Context, _ string, kind models.ReadingKind, _, _ time.Time) ([]models.RawReading, error) {
					if kind == models.ReadingKindHeight {
						return nil, feedErr
					}
					return referenceExtremes(), nil
				},
			},
			finder: finderFor(testStation("R")),
			call: func(s *Service) (*models.TideSummary, error) {
				return s.GetSummaryForStation(context.Background(), "9447130", models.ChartModeCompact)
			},
			wantAPI: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			summary, err := tt.call(newTestService(tt.feeds, tt.finder, nil))
			require.Error(t, err)
			assert.Nil(t, summary)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantAPI {
				var apiErr *NoaaAPIError
				assert.True(t, errors.As(err, &apiErr))
			}
		})
	}
}

func TestBuildSummaryUsesStationZone(t *testing.T) {
	st := testStation("R")
	st.TimeZoneOffset = -8 * 3600
	f := feeds(referenceHeights(), referenceExtremes())
	svc := newTestService(f, finderFor(st), nil)

	summary, err := svc.GetSummaryForStation(context.Background(), "9447130", models.ChartModeCompact)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-01T04:00:00", summary.LocalTime)
	require.NotNil(t, summary.NextHigh)
	assert.Equal(t, "2024-06-01T06:00:00", summary.NextHigh.LocalTime)
	require.NotNil(t, summary.TimeZoneOffsetSeconds)
	assert.Equal(t, -8*3600, *summary.TimeZoneOffsetSeconds)
}
