package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/bbernstein/tidetimes/internal/models"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	labelStyle  = lipgloss.NewStyle().Faint(true)
	valueStyle  = lipgloss.NewStyle().Bold(true)
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	curveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	markerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

const chartHeight = 10

// RenderSummary lays out a summary for the terminal.
func RenderSummary(s *models.TideSummary, width int) string {
	b := &strings.Builder{}

	name := s.StationID
	if s.StationName != nil && *s.StationName != "" {
		name = fmt.Sprintf("%s (%s)", *s.StationName, s.StationID)
	}
	b.WriteString(titleStyle.Render(name))
	b.WriteString("\n")

	row(b, "Local time", clockTime(s.LocalTime))
	if s.StationDistance > 0 {
		row(b, "Distance", fmt.Sprintf("%.1f km", s.StationDistance))
	}

	current := "unavailable"
	if s.CurrentHeight != nil {
		current = fmt.Sprintf("%.2f ft", *s.CurrentHeight)
		if s.Direction != nil {
			current += " " + directionArrow(*s.Direction)
		}
	}
	row(b, "Now", current)
	row(b, "Next high", extremeText(s.NextHigh, highStyle))
	row(b, "Next low", extremeText(s.NextLow, lowStyle))

	b.WriteString("\n")
	b.WriteString(RenderChart(s, width))

	return boxStyle.Render(b.String())
}

// RenderChart draws the summary's chart in its mode.
func RenderChart(s *models.TideSummary, width int) string {
	if len(s.Chart.Points) < 2 {
		return labelStyle.Render("No predictions available")
	}
	if s.Chart.Mode == models.ChartModeDay {
		return renderDayChart(s.Chart, time.UnixMilli(s.Timestamp), zoneOf(s), width, chartHeight)
	}
	return renderCompactChart(s.Chart, width, chartHeight)
}

// RenderStations lists stations nearest first.
func RenderStations(stations []models.Station) string {
	if len(stations) == 0 {
		return labelStyle.Render("No stations found")
	}

	b := &strings.Builder{}
	b.WriteString(titleStyle.Render(fmt.Sprintf("%-8s %-32s %10s", "ID", "Name", "Distance")))
	for _, st := range stations {
		b.WriteString("\n")
		kind := ""
		if st.IsSubordinate() {
			kind = labelStyle.Render(" high/low only")
		}
		fmt.Fprintf(b, "%-8s %-32s %7.1f km%s", st.ID, truncate(st.Name, 32), st.Distance, kind)
	}
	return b.String()
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s ", label)))
	b.WriteString(valueStyle.Render(value))
	b.WriteString("\n")
}

func extremeText(e *models.TideExtreme, style lipgloss.Style) string {
	if e == nil {
		return "unavailable"
	}
	return style.Render(fmt.Sprintf("%s  %.2f ft", clockTime(e.LocalTime), e.Height))
}

func directionArrow(d models.TideType) string {
	switch d {
	case models.TideTypeRising:
		return "↑ rising"
	case models.TideFalling:
		return "↓ falling"
	default:
		return ""
	}
}

// clockTime shortens a local timestamp to its clock time, leaving
// unparsable values as they are.
func clockTime(localTime string) string {
	t, err := time.Parse("2006-01-02T15:04:05", localTime)
	if err != nil {
		return localTime
	}
	return t.Format("Mon 15:04")
}

func zoneOf(s *models.TideSummary) *time.Location {
	if s.TimeZoneOffsetSeconds == nil {
		return time.UTC
	}
	return time.FixedZone(s.StationID, *s.TimeZoneOffsetSeconds)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
