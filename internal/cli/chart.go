package cli

import (
	"math"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/bbernstein/tidetimes/internal/models"
	"github.com/charmbracelet/lipgloss"
)

const (
	pointRune  = '●'
	curveRune  = '•'
	markerRune = '◆'
)

// renderCompactChart plots the normalized high/low window. Consecutive
// extremes are joined with a half cosine, the shape of a tide between a high
// and a low, and now is marked on the curve.
func renderCompactChart(chart models.Chart, width, height int) string {
	width = max(width, 8)
	height = max(height, 3)
	c := canvas.New(width, height)

	cells := make([]canvas.Point, len(chart.Coordinates))
	for i, p := range chart.Coordinates {
		cells[i] = toCell(p, width, height)
	}

	for i := 1; i < len(cells); i++ {
		a, b := cells[i-1], cells[i]
		for x := a.X; x <= b.X; x++ {
			t := 0.0
			if b.X > a.X {
				t = float64(x-a.X) / float64(b.X-a.X)
			}
			y := float64(a.Y) + float64(b.Y-a.Y)*(1-math.Cos(math.Pi*t))/2
			c.SetCell(canvas.Point{X: x, Y: int(math.Round(y))}, canvas.NewCellWithStyle(curveRune, curveStyle))
		}
	}

	for i, p := range cells {
		style := lowStyle
		if isLocalMax(chart.Coordinates, i) {
			style = highStyle
		}
		c.SetCell(p, canvas.NewCellWithStyle(pointRune, style))
	}

	if chart.Marker != nil {
		c.SetCell(toCell(*chart.Marker, width, height), canvas.NewCellWithStyle(markerRune, markerStyle))
	}

	b := &strings.Builder{}
	b.WriteString(c.View())
	b.WriteString("\n")
	b.WriteString(timeAxis(chart.Points, width))
	return b.String()
}

// renderDayChart plots the sampled day window on a time axis with a
// vertical line at now.
func renderDayChart(chart models.Chart, now time.Time, zone *time.Location, width, height int) string {
	first := time.UnixMilli(chart.Points[0].Timestamp).In(zone)
	last := time.UnixMilli(chart.Points[len(chart.Points)-1].Timestamp).In(zone)

	minV, maxV := chart.Points[0].Height, chart.Points[0].Height
	for _, p := range chart.Points[1:] {
		minV = math.Min(minV, p.Height)
		maxV = math.Max(maxV, p.Height)
	}
	if minV == maxV {
		minV -= 0.1
		maxV += 0.1
	}

	lc := timeserieslinechart.New(max(width, 16), max(height, 4))
	lc.SetTimeRange(first, last)
	lc.SetViewTimeAndYRange(first, last, minV, maxV)

	hours := max(1, int(last.Sub(first).Hours()))
	lc.SetXStep(max(1, lc.GraphWidth()/hours))
	lc.Model.XLabelFormatter = func(_ int, v float64) string {
		return time.Unix(int64(v), 0).In(zone).Format("15:04")
	}

	for _, p := range chart.Points {
		lc.Push(timeserieslinechart.TimePoint{Time: time.UnixMilli(p.Timestamp), Value: p.Height})
	}
	lc.DrawBraille()

	if !now.Before(first) && !now.After(last) {
		drawNowLine(&lc, now)
	}

	b := &strings.Builder{}
	b.WriteString(lc.View())
	b.WriteString("\n")
	b.WriteString(curveStyle.Render("─"))
	b.WriteString(labelStyle.Render(" Predicted tide (ft)  "))
	b.WriteString(markerStyle.Render("│"))
	b.WriteString(labelStyle.Render(" Now"))
	return b.String()
}

func drawNowLine(lc *timeserieslinechart.Model, now time.Time) {
	viewMin, viewMax := lc.Model.ViewMinX(), lc.Model.ViewMaxX()
	if viewMax <= viewMin {
		return
	}

	rel := (float64(now.Unix()) - viewMin) / (viewMax - viewMin)
	col := int(math.Round(rel*float64(lc.GraphWidth()-1))) + lc.Model.Origin().X
	if lc.Model.YStep() > 0 {
		col++
	}
	if col < 0 || col >= lc.Canvas.Width() {
		return
	}

	for y := 0; y < lc.Model.Origin().Y; y++ {
		lc.Canvas.SetCell(canvas.Point{X: col, Y: y}, canvas.NewCellWithStyle('│', markerStyle))
	}
}

// toCell maps a unit-square point onto the canvas. y already grows downwards.
func toCell(p models.ChartPoint, width, height int) canvas.Point {
	return canvas.Point{
		X: int(math.Round(p.X * float64(width-1))),
		Y: int(math.Round(p.Y * float64(height-1))),
	}
}

// isLocalMax reports whether point i sits above its neighbours. Smaller y is higher.
func isLocalMax(coords []models.ChartPoint, i int) bool {
	if i > 0 && coords[i-1].Y < coords[i].Y {
		return false
	}
	if i < len(coords)-1 && coords[i+1].Y < coords[i].Y {
		return false
	}
	return true
}

// timeAxis labels the first and last point under a chart of the given width.
func timeAxis(points []models.TidePrediction, width int) string {
	if len(points) == 0 {
		return ""
	}
	left := clockTime(points[0].LocalTime)
	right := clockTime(points[len(points)-1].LocalTime)
	gap := max(1, width-lipgloss.Width(left)-lipgloss.Width(right))
	return labelStyle.Render(left + strings.Repeat(" ", gap) + right)
}
