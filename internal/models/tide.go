package models

import (
	"fmt"
	"time"
)

type TideType string

const (
	TideTypeRising TideType = "RISING"
	TideFalling    TideType = "FALLING"
	TideTypeHigh   TideType = "HIGH"
	TideTypeLow    TideType = "LOW"
)

// ChartMode selects how the plotted window is chosen.
type ChartMode string

const (
	ChartModeCompact ChartMode = "compact"
	ChartModeDay     ChartMode = "day"
)

// ParseChartMode maps a query value to a mode. Empty selects compact.
func ParseChartMode(s string) (ChartMode, error) {
	switch ChartMode(s) {
	case "", ChartModeCompact:
		return ChartModeCompact, nil
	case ChartModeDay:
		return ChartModeDay, nil
	default:
		return "", fmt.Errorf("invalid chart mode: %q", s)
	}
}

const localTimeFormat = "2006-01-02T15:04:05"

// TidePoint is a single merged timeline record. Points are compared by
// timestamp and height only, so the same reading delivered by two feeds
// collapses into one.
type TidePoint struct {
	Timestamp  time.Time
	Height     float64
	IsExtremum bool
	IsHigh     bool
}

// Equal reports whether p and o describe the same instant and height.
func (p TidePoint) Equal(o TidePoint) bool {
	return p.Timestamp.Equal(o.Timestamp) && p.Height == o.Height
}

// Type returns HIGH or LOW for extrema and an empty type for routine samples.
func (p TidePoint) Type() TideType {
	if !p.IsExtremum {
		return ""
	}
	if p.IsHigh {
		return TideTypeHigh
	}
	return TideTypeLow
}

// TideExtreme represents a high or low tide
type TideExtreme struct {
	Type      TideType `json:"type"`
	Timestamp int64    `json:"timestamp"`
	LocalTime string   `json:"localTime"`
	Height    float64  `json:"height"`
}

// TidePrediction represents a tide height at a specific time
type TidePrediction struct {
	Timestamp int64   `json:"timestamp"`
	LocalTime string  `json:"localTime"`
	Height    float64 `json:"height"`
}

// NewTidePrediction converts a timeline point for JSON output in the station's zone.
func NewTidePrediction(p TidePoint, location *time.Location) TidePrediction {
	return TidePrediction{
		Timestamp: p.Timestamp.UnixMilli(),
		LocalTime: FormatLocalTime(p.Timestamp, location),
		Height:    p.Height,
	}
}

// NewTideExtreme converts an extremum point for JSON output in the station's zone.
func NewTideExtreme(p TidePoint, location *time.Location) TideExtreme {
	return TideExtreme{
		Type:      p.Type(),
		Timestamp: p.Timestamp.UnixMilli(),
		LocalTime: FormatLocalTime(p.Timestamp, location),
		Height:    p.Height,
	}
}

// FormatLocalTime renders t as a zone-less local timestamp.
func FormatLocalTime(t time.Time, location *time.Location) string {
	if location == nil {
		location = time.UTC
	}
	return t.In(location).Format(localTimeFormat)
}

// ChartPoint is a coordinate in the unit square. Y grows downwards.
type ChartPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Chart is the plottable part of a summary.
type Chart struct {
	Mode        ChartMode        `json:"mode"`
	Points      []TidePrediction `json:"points"`
	Coordinates []ChartPoint     `json:"coordinates"`
	Marker      *ChartPoint      `json:"marker"`
}

// TideSummary is everything a consumer needs to show the tide at a station.
type TideSummary struct {
	ResponseType          string           `json:"responseType"`
	Timestamp             int64            `json:"timestamp"`
	LocalTime             string           `json:"localTime"`
	StationID             string           `json:"stationId"`
	StationName           *string          `json:"stationName"`
	Latitude              float64          `json:"latitude"`
	Longitude             float64          `json:"longitude"`
	StationDistance       float64          `json:"stationDistance"`
	CurrentHeight         *float64         `json:"currentHeight"`
	Direction             *TideType        `json:"direction"`
	NextHigh              *TideExtreme     `json:"nextHigh"`
	NextLow               *TideExtreme     `json:"nextLow"`
	CalculationMethod     string           `json:"calculationMethod"`
	Chart                 Chart            `json:"chart"`
	Extremes              []TideExtreme    `json:"extremes"`
	Predictions           []TidePrediction `json:"predictions"`
	TimeZoneOffsetSeconds *int             `json:"timeZoneOffsetSeconds"`
}

// NoaaPrediction represents the raw NOAA API prediction response
type NoaaPrediction struct {
	Time   string  `json:"t"`              // Time of prediction
	Height string  `json:"v"`              // Predicted water level
	Type   *string `json:"type,omitempty"` // Type of prediction (H for high, L for low)
}

type NoaaResponse struct {
	Predictions []NoaaPrediction `json:"predictions"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Validate checks if a TidePrediction's fields are valid
func (tp *TidePrediction) Validate() error {
	if tp.Timestamp <= 0 {
		return fmt.Errorf("invalid timestamp: %d", tp.Timestamp)
	}
	return validateLocalTime(tp.LocalTime, tp.Timestamp)
}

// Validate checks if a TideExtreme's fields are valid
func (te *TideExtreme) Validate() error {
	if te.Timestamp <= 0 {
		return fmt.Errorf("invalid timestamp: %d", te.Timestamp)
	}

	switch te.Type {
	case TideTypeHigh, TideTypeLow:
	default:
		return fmt.Errorf("invalid tide type: %s", te.Type)
	}

	return validateLocalTime(te.LocalTime, te.Timestamp)
}

// validateLocalTime requires the local rendering to be within a day of the instant.
func validateLocalTime(localTime string, timestamp int64) error {
	if localTime == "" {
		return nil
	}

	t, err := time.Parse(localTimeFormat, localTime)
	if err != nil {
		return fmt.Errorf("invalid local time format: %s", localTime)
	}

	diff := t.UnixMilli() - timestamp
	if diff < 0 {
		diff = -diff
	}
	if diff > 1000*60*60*24 {
		return fmt.Errorf("local time does not match timestamp")
	}
	return nil
}

// Validate checks that a summary is internally consistent before it is served.
func (s *TideSummary) Validate() error {
	if s.Timestamp <= 0 {
		return fmt.Errorf("invalid timestamp: %d", s.Timestamp)
	}

	if s.StationID == "" {
		return fmt.Errorf("station ID is required")
	}

	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("invalid latitude: %f", s.Latitude)
	}

	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("invalid longitude: %f", s.Longitude)
	}

	if s.StationDistance < 0 {
		return fmt.Errorf("invalid station distance: %f", s.StationDistance)
	}

	if s.Direction != nil {
		switch *s.Direction {
		case TideTypeRising, TideFalling:
		default:
			return fmt.Errorf("invalid tide direction: %s", *s.Direction)
		}
	}

	if s.TimeZoneOffsetSeconds != nil {
		if *s.TimeZoneOffsetSeconds < -43200 || *s.TimeZoneOffsetSeconds > 50400 {
			return fmt.Errorf("invalid timezone offset: %d", *s.TimeZoneOffsetSeconds)
		}
	}

	for i, c := range s.Chart.Coordinates {
		if c.X < 0 || c.X > 1 || c.Y < 0 || c.Y > 1 {
			return fmt.Errorf("chart coordinate at index %d outside unit square: (%f, %f)", i, c.X, c.Y)
		}
	}

	for i, pred := range s.Predictions {
		if err := pred.Validate(); err != nil {
			return fmt.Errorf("invalid prediction at index %d: %w", i, err)
		}
	}

	for i, extreme := range s.Extremes {
		if err := extreme.Validate(); err != nil {
			return fmt.Errorf("invalid extreme at index %d: %w", i, err)
		}
	}

	return nil
}
