// Package timeline merges tide feeds into a single ordered series and derives
// the values shown to a user: current height, next high and low, and a
// bounded, normalized window for plotting.
//
// Every function is pure. Functions taking a Timeline expect it to be sorted
// by timestamp, which is what Merge produces.
package timeline

import (
	"sort"
	"time"

	"github.com/bbernstein/tidetimes/internal/models"
)

// Timeline is a time-ordered, de-duplicated sequence of tide points.
type Timeline []models.TidePoint

// Contains reports whether an equal point is already present.
func (tl Timeline) Contains(p models.TidePoint) bool {
	for _, q := range tl {
		if q.Equal(p) {
			return true
		}
	}
	return false
}

// Extrema returns only the reported high and low events.
func (tl Timeline) Extrema() Timeline {
	out := make(Timeline, 0)
	for _, p := range tl {
		if p.IsExtremum {
			out = append(out, p)
		}
	}
	return out
}

// Between returns the points with start <= timestamp <= end.
func (tl Timeline) Between(start, end time.Time) Timeline {
	out := make(Timeline, 0)
	for _, p := range tl {
		if !p.Timestamp.Before(start) && !p.Timestamp.After(end) {
			out = append(out, p)
		}
	}
	return out
}

// pivot returns the index of the first point strictly after now, or len(tl).
func (tl Timeline) pivot(now time.Time) int {
	return sort.Search(len(tl), func(i int) bool {
		return tl[i].Timestamp.After(now)
	})
}

func sortByTime(points Timeline) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
}
