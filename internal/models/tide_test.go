package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTidePointEqual(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p := TidePoint{Timestamp: ts, Height: 1.5}

	assert.True(t, p.Equal(TidePoint{Timestamp: ts, Height: 1.5, IsExtremum: true, IsHigh: true}))
	assert.True(t, p.Equal(TidePoint{Timestamp: ts.In(time.FixedZone("PST", -8*3600)), Height: 1.5}))
	assert.False(t, p.Equal(TidePoint{Timestamp: ts, Height: 1.6}))
	assert.False(t, p.Equal(TidePoint{Timestamp: ts.Add(time.Second), Height: 1.5}))
}

func TestTidePointType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TideTypeHigh, TidePoint{IsExtremum: true, IsHigh: true}.Type())
	assert.Equal(t, TideTypeLow, TidePoint{IsExtremum: true}.Type())
	assert.Equal(t, TideType(""), TidePoint{IsHigh: true}.Type())
}

func TestNewTideExtreme(t *testing.T) {
	t.Parallel()

	pst := time.FixedZone("PST", -8*3600)
	p := TidePoint{
		Timestamp:  time.Date(2023, 1, 1, 8, 0, 0, 0, time.UTC),
		Height:     3.2,
		IsExtremum: true,
		IsHigh:     true,
	}

	extreme := NewTideExtreme(p, pst)

	assert.Equal(t, TideExtreme{
		Type:      TideTypeHigh,
		Timestamp: 1672560000000,
		LocalTime: "2023-01-01T00:00:00",
		Height:    3.2,
	}, extreme)
	assert.NoError(t, extreme.Validate())

	prediction := NewTidePrediction(p, nil)
	assert.Equal(t, "2023-01-01T08:00:00", prediction.LocalTime)
}

func TestTideExtremeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		extreme  TideExtreme
		errorMsg string
	}{
		{
			name:    "valid high",
			extreme: TideExtreme{Type: TideTypeHigh, Timestamp: 1672531200000, LocalTime: "2023-01-01T00:00:00", Height: 4.5},
		},
		{
			name:    "valid low without local time",
			extreme: TideExtreme{Type: TideTypeLow, Timestamp: 1672531200000, Height: -0.3},
		},
		{
			name:     "direction is not an extreme",
			extreme:  TideExtreme{Type: TideTypeRising, Timestamp: 1672531200000},
			errorMsg: "invalid tide type",
		},
		{
			name:     "empty type",
			extreme:  TideExtreme{Timestamp: 1672531200000},
			errorMsg: "invalid tide type",
		},
		{
			name:     "invalid timestamp",
			extreme:  TideExtreme{Type: TideTypeHigh},
			errorMsg: "invalid timestamp",
		},
		{
			name:     "local time far from timestamp",
			extreme:  TideExtreme{Type: TideTypeHigh, Timestamp: 1672531200000, LocalTime: "2024-01-01T00:00:00"},
			errorMsg: "local time does not match timestamp",
		},
	}

	for _, tt := range tests {
		tt := tt // Capture range variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.extreme.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestTidePredictionValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		timestamp int64
		localTime string
		wantErr   bool
	}{
		{name: "valid time format", timestamp: 1672531200000, localTime: "2023-01-01T00:00:00"},
		{name: "local offset within a day", timestamp: 1672531200000, localTime: "2022-12-31T16:00:00"},
		{name: "invalid time format", timestamp: 1672531200000, localTime: "2023-01-01", wantErr: true},
		{name: "mismatched timestamp and local time", timestamp: 1672531200000, localTime: "2024-01-01T00:00:00", wantErr: true},
		{name: "invalid timestamp", timestamp: -1, localTime: "2023-01-01T00:00:00", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt // Capture range variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prediction := TidePrediction{Timestamp: tt.timestamp, LocalTime: tt.localTime, Height: 4.5}

			err := prediction.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func validSummary() TideSummary {
	return TideSummary{
		ResponseType:          "tide",
		Timestamp:             1672531200000,
		LocalTime:             "2022-12-31T16:00:00",
		StationID:             "9447130",
		StationName:           stringPtr("Seattle"),
		Latitude:              47.6062,
		Longitude:             -122.3321,
		StationDistance:       0.5,
		CurrentHeight:         float64Ptr(2.1),
		Direction:             tideTypePtr(TideTypeRising),
		CalculationMethod:     "NOAA API",
		TimeZoneOffsetSeconds: intPtr(-28800),
		Chart: Chart{
			Mode:        ChartModeCompact,
			Coordinates: []ChartPoint{{X: 0, Y: 1}, {X: 1, Y: 0}},
			Marker:      &ChartPoint{X: 0.5, Y: 0.5},
		},
		Predictions: []TidePrediction{
			{Timestamp: 1672531200000, LocalTime: "2022-12-31T16:00:00", Height: 2.1},
		},
		Extremes: []TideExtreme{
			{Type: TideTypeHigh, Timestamp: 1672542000000, LocalTime: "2022-12-31T19:00:00", Height: 3.4},
		},
	}
}

func TestTideSummaryValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(s *TideSummary)
		errorMsg string
	}{
		{name: "complete summary", mutate: func(s *TideSummary) {}},
		{
			name: "empty data is still valid",
			mutate: func(s *TideSummary) {
				s.CurrentHeight, s.Direction, s.NextHigh, s.NextLow = nil, nil, nil, nil
				s.Chart = Chart{Mode: ChartModeDay}
				s.Predictions, s.Extremes = nil, nil
			},
		},
		{name: "missing timestamp", mutate: func(s *TideSummary) { s.Timestamp = 0 }, errorMsg: "invalid timestamp"},
		{name: "missing station", mutate: func(s *TideSummary) { s.StationID = "" }, errorMsg: "station ID is required"},
		{name: "invalid latitude", mutate: func(s *TideSummary) { s.Latitude = 91 }, errorMsg: "invalid latitude"},
		{name: "invalid longitude", mutate: func(s *TideSummary) { s.Longitude = 181 }, errorMsg: "invalid longitude"},
		{name: "negative distance", mutate: func(s *TideSummary) { s.StationDistance = -1 }, errorMsg: "invalid station distance"},
		{
			name:     "extreme type as direction",
			mutate:   func(s *TideSummary) { s.Direction = tideTypePtr(TideTypeHigh) },
			errorMsg: "invalid tide direction",
		},
		{
			name:     "timezone offset out of range",
			mutate:   func(s *TideSummary) { s.TimeZoneOffsetSeconds = intPtr(-50000) },
			errorMsg: "invalid timezone offset",
		},
		{
			name:     "coordinate outside unit square",
			mutate:   func(s *TideSummary) { s.Chart.Coordinates = []ChartPoint{{X: 0, Y: 1.2}} },
			errorMsg: "chart coordinate at index 0",
		},
		{
			name:     "bad prediction",
			mutate:   func(s *TideSummary) { s.Predictions = append(s.Predictions, TidePrediction{Timestamp: -1}) },
			errorMsg: "invalid prediction at index 1",
		},
		{
			name:     "bad extreme",
			mutate:   func(s *TideSummary) { s.Extremes[0].Type = "" },
			errorMsg: "invalid extreme at index 0",
		},
	}

	for _, tt := range tests {
		tt := tt // Capture range variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			summary := validSummary()
			tt.mutate(&summary)

			err := summary.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestTideSummaryJSON(t *testing.T) {
	t.Parallel()

	summary := validSummary()
	data, err := json.Marshal(summary)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "9447130", fields["stationId"])
	assert.Equal(t, "RISING", fields["direction"])
	assert.Nil(t, fields["nextHigh"])

	chart, ok := fields["chart"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "compact", chart["mode"])
	assert.Equal(t, map[string]any{"x": 0.5, "y": 0.5}, chart["marker"])
}

// Helper functions for creating pointers to primitives
func stringPtr(s string) *string {
	return &s
}

func float64Ptr(f float64) *float64 {
	return &f
}

func intPtr(i int) *int {
	return &i
}

func tideTypePtr(t TideType) *TideType {
	return &t
}

func BenchmarkTideSummaryValidate(b *testing.B) {
	summary := validSummary()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = summary.Validate()
	}
}

func TestParseChartMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ChartMode
		wantErr bool
	}{
		{in: "", want: ChartModeCompact},
		{in: "compact", want: ChartModeCompact},
		{in: "day", want: ChartModeDay},
		{in: "Day", wantErr: true},
		{in: "week", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseChartMode(tt.in)
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid chart mode")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
