package cli

import (
	"strings"
	"testing"

	"github.com/bbernstein/tidetimes/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureSummary is a Seattle summary at 12:00 UTC with a rising tide.
func fixtureSummary(stationID string, mode models.ChartMode) *models.TideSummary {
	name := "Seattle"
	height := 1.6
	rising := models.TideTypeRising
	offset := 0
	return &models.TideSummary{
		ResponseType:  "tide",
		Timestamp:     1717243200000,
		LocalTime:     "2024-06-01T12:00:00",
		StationID:     stationID,
		StationName:   &name,
		CurrentHeight: &height,
		Direction:     &rising,
		NextHigh: &models.TideExtreme{
			Type: models.TideTypeHigh, Timestamp: 1717250400000, LocalTime: "2024-06-01T14:00:00", Height: 2.0,
		},
		NextLow: &models.TideExtreme{
			Type: models.TideTypeLow, Timestamp: 1717272000000, LocalTime: "2024-06-01T20:00:00", Height: 0.2,
		},
		CalculationMethod: "NOAA API",
		Chart: models.Chart{
			Mode: mode,
			Points: []models.TidePrediction{
				{Timestamp: 1717236000000, LocalTime: "2024-06-01T10:00:00", Height: 1.0},
				{Timestamp: 1717250400000, LocalTime: "2024-06-01T14:00:00", Height: 2.0},
				{Timestamp: 1717272000000, LocalTime: "2024-06-01T20:00:00", Height: 0.2},
			},
			Coordinates: []models.ChartPoint{{X: 0, Y: 0.5556}, {X: 0.4, Y: 0}, {X: 1, Y: 1}},
			Marker:      &models.ChartPoint{X: 0.2, Y: 0.2778},
		},
		Extremes:              []models.TideExtreme{},
		Predictions:           []models.TidePrediction{},
		TimeZoneOffsetSeconds: &offset,
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(fixtureSummary("9447130", models.ChartModeCompact), 40)

	assert.Contains(t, out, "Seattle (9447130)")
	assert.Contains(t, out, "Sat 12:00")
	assert.Contains(t, out, "1.60 ft ↑ rising")
	assert.Contains(t, out, "Sat 14:00  2.00 ft")
	assert.Contains(t, out, "Sat 20:00  0.20 ft")
	assert.Contains(t, out, string(pointRune))
	assert.Contains(t, out, string(markerRune))
	assert.NotContains(t, out, "Distance")
}

func TestRenderSummaryWithoutData(t *testing.T) {
	summary := &models.TideSummary{
		StationID: "9447130",
		LocalTime: "2024-06-01T12:00:00",
		Chart:     models.Chart{Mode: models.ChartModeCompact},
	}

	out := RenderSummary(summary, 40)

	assert.Contains(t, out, "9447130")
	assert.Equal(t, 3, strings.Count(out, "unavailable"))
	assert.Contains(t, out, "No predictions available")
}

func TestRenderDayChart(t *testing.T) {
	out := RenderChart(fixtureSummary("9447130", models.ChartModeDay), 40)

	assert.NotEmpty(t, out)
	assert.Contains(t, out, "Predicted tide (ft)")
	assert.NotContains(t, out, string(markerRune))
}

func TestRenderCompactChartShape(t *testing.T) {
	out := renderCompactChart(fixtureSummary("9447130", models.ChartModeCompact).Chart, 20, 5)
	lines := strings.Split(out, "\n")

	// Five canvas rows and the time axis.
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Contains(t, lines[0], string(pointRune), "the high sits on the top row")
	assert.Contains(t, lines[4], string(pointRune), "the low sits on the bottom row")
	axis := lines[len(lines)-1]
	assert.Contains(t, axis, "Sat 10:00")
	assert.Contains(t, axis, "Sat 20:00")
}

func TestRenderStations(t *testing.T) {
	subordinate := models.StationTypeSubordinate
	out := RenderStations([]models.Station{
		{ID: "9447130", Name: "Seattle", Distance: 1.23},
		{ID: "9445958", Name: "A very long subordinate station name indeed", Distance: 20, StationType: &subordinate},
	})

	assert.Contains(t, out, "9447130")
	assert.Contains(t, out, "1.2 km")
	assert.Contains(t, out, "high/low only")
	assert.Contains(t, out, "…")

	assert.Contains(t, RenderStations(nil), "No stations found")
}

func TestClockTime(t *testing.T) {
	assert.Equal(t, "Sat 04:30", clockTime("2024-06-01T04:30:00"))
	assert.Equal(t, "soon", clockTime("soon"))
}

func TestToCell(t *testing.T) {
	assert.Equal(t, 0, toCell(models.ChartPoint{X: 0, Y: 0}, 10, 5).X)
	p := toCell(models.ChartPoint{X: 1, Y: 1}, 10, 5)
	assert.Equal(t, 9, p.X)
	assert.Equal(t, 4, p.Y)
}
