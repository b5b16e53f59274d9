package timeline

import (
	"github.com/bbernstein/tidetimes/internal/models"
)

// Report describes what happened to the readings handed to MergeReport.
type Report struct {
	Accepted   int
	Dropped    int
	Duplicates int
}

// Merge combines raw readings from any number of feeds into one timeline.
// Malformed readings are skipped. When two readings share a timestamp and
// height the one that sorts first wins, so pass the preferred feed first.
func Merge(sources ...[]models.RawReading) Timeline {
	merged, _ := MergeReport(sources...)
	return merged
}

// MergeReport is Merge plus counts of accepted, dropped and duplicate readings.
func MergeReport(sources ...[]models.RawReading) (Timeline, Report) {
	var report Report

	total := 0
	for _, source := range sources {
		total += len(source)
	}

	points := make(Timeline, 0, total)
	for _, source := range sources {
		for _, reading := range source {
			point, err := reading.ToTidePoint()
			if err != nil {
				report.Dropped++
				continue
			}
			points = append(points, point)
		}
	}

	sortByTime(points)
	merged := Dedupe(points)

	report.Accepted = len(merged)
	report.Duplicates = len(points) - len(merged)
	return merged, report
}

type pointKey struct {
	sec    int64
	nsec   int
	height float64
}

func keyOf(p models.TidePoint) pointKey {
	return pointKey{
		sec:    p.Timestamp.Unix(),
		nsec:   p.Timestamp.Nanosecond(),
		height: p.Height,
	}
}

// Dedupe drops points equal to an earlier one, keeping input order. The input
// is not modified.
func Dedupe(points Timeline) Timeline {
	seen := make(map[pointKey]struct{}, len(points))
	out := make(Timeline, 0, len(points))
	for _, p := range points {
		k := keyOf(p)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}
