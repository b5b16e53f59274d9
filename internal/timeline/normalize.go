package timeline

import (
	"math"
	"time"

	"github.com/bbernstein/tidetimes/internal/models"
)

// Projection is a window mapped onto the unit square.
type Projection struct {
	Points []models.ChartPoint
	Marker *models.ChartPoint
}

// Normalize maps a window onto [0,1]x[0,1]. x runs from the first to the last
// timestamp. y is inverted so the highest point sits at 0 and the lowest at 1.
// A window with no time span puts every x at 0; one with no height range puts
// every y at 0.
func Normalize(window Timeline) []models.ChartPoint {
	if len(window) == 0 {
		return []models.ChartPoint{}
	}

	first := window[0].Timestamp
	timeRange := window[len(window)-1].Timestamp.Sub(first)

	minHeight, maxHeight := window[0].Height, window[0].Height
	for _, p := range window[1:] {
		minHeight = math.Min(minHeight, p.Height)
		maxHeight = math.Max(maxHeight, p.Height)
	}
	heightRange := maxHeight - minHeight
	scaleHeight := heightRange > 0 && !math.IsInf(heightRange, 0)

	out := make([]models.ChartPoint, len(window))
	for i, p := range window {
		var c models.ChartPoint
		if timeRange > 0 {
			c.X = float64(p.Timestamp.Sub(first)) / float64(timeRange)
		}
		if scaleHeight {
			c.Y = 1 - (p.Height-minHeight)/heightRange
		}
		out[i] = c
	}
	return out
}

// Marker places now on the normalized curve by interpolating between the
// normalized coordinates of the two points around it. It reports false when
// now is outside the window's time span.
func Marker(window Timeline, now time.Time) (models.ChartPoint, bool) {
	idx, progress, ok := bracket(window, now)
	if !ok {
		return models.ChartPoint{}, false
	}

	coords := Normalize(window)
	a, b := coords[idx-1], coords[idx]
	return models.ChartPoint{
		X: a.X + (b.X-a.X)*progress,
		Y: a.Y + (b.Y-a.Y)*progress,
	}, true
}

// Project normalizes a window and places the now marker on it.
func Project(window Timeline, now time.Time) Projection {
	projection := Projection{Points: Normalize(window)}
	if marker, ok := Marker(window, now); ok {
		projection.Marker = &marker
	}
	return projection
}
