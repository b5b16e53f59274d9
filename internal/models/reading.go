package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ReadingKind tags which upstream feed a RawReading came from.
type ReadingKind string

const (
	// ReadingKindHeight is a periodic height sample or a dense observed reading.
	ReadingKindHeight ReadingKind = "HEIGHT"
	// ReadingKindExtreme is a reported high or low tide event.
	ReadingKindExtreme ReadingKind = "EXTREME"
)

// Extreme labels as delivered by extrema feeds. Matching is case-sensitive.
const (
	ExtremeLabelHigh = "High"
	ExtremeLabelLow  = "Low"
)

var ErrMalformedReading = errors.New("malformed reading")

// RawReading is one dated value from an upstream feed, already decoded from
// its wire format.
type RawReading struct {
	Kind      ReadingKind
	Timestamp time.Time
	Value     float64
	// Type is the extremum label, set only for ReadingKindExtreme.
	Type *string
}

func NewHeightReading(t time.Time, value float64) RawReading {
	return RawReading{
		Kind:      ReadingKindHeight,
		Timestamp: t,
		Value:     value,
	}
}

func NewExtremeReading(t time.Time, value float64, label string) RawReading {
	return RawReading{
		Kind:      ReadingKindExtreme,
		Timestamp: t,
		Value:     value,
		Type:      &label,
	}
}

// ToTidePoint converts the reading into a timeline point. Readings with no
// timestamp, a non-finite value, an unknown kind or an unlabelled extreme are
// rejected with an error wrapping ErrMalformedReading.
func (r RawReading) ToTidePoint() (TidePoint, error) {
	if r.Timestamp.IsZero() {
		return TidePoint{}, fmt.Errorf("%w: missing timestamp", ErrMalformedReading)
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return TidePoint{}, fmt.Errorf("%w: non-finite value %v at %s", ErrMalformedReading, r.Value, r.Timestamp.Format(time.RFC3339))
	}

	point := TidePoint{
		Timestamp: r.Timestamp.UTC(),
		Height:    r.Value,
	}

	switch r.Kind {
	case ReadingKindHeight:
	case ReadingKindExtreme:
		if r.Type == nil {
			return TidePoint{}, fmt.Errorf("%w: extreme without type at %s", ErrMalformedReading, r.Timestamp.Format(time.RFC3339))
		}
		point.IsExtremum = true
		point.IsHigh = *r.Type == ExtremeLabelHigh
	default:
		return TidePoint{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedReading, r.Kind)
	}

	return point, nil
}
