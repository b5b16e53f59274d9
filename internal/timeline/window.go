package timeline

import (
	"sort"
	"time"

	"github.com/bbernstein/tidetimes/internal/models"
)

// SelectWindow returns up to size consecutive points around now: size/2
// before the first point after now, the rest from it onwards. If every point
// is at or before now the last size points are returned. The result shares
// storage with tl but has its capacity clipped, so appending to it is safe.
func SelectWindow(tl Timeline, now time.Time, size int) Timeline {
	if size <= 0 || len(tl) == 0 {
		return Timeline{}
	}

	var start, end int
	idx := tl.pivot(now)
	if idx >= len(tl) {
		start = max(0, len(tl)-size)
		end = len(tl)
	} else {
		half := size / 2
		start = max(0, idx-half)
		end = min(len(tl), idx+size-half)
	}

	return tl[start:end:end]
}

// SampleMedian reduces points to target representatives for charting dense
// series. Points are ranked by height and taken at an even stride, then put
// back in time order. The chronologically last input point is always kept,
// so the result may hold target+1 points.
func SampleMedian(points Timeline, target int) Timeline {
	if len(points) == 0 {
		return Timeline{}
	}
	if target < 1 {
		target = 1
	}

	byHeight := make(Timeline, len(points))
	copy(byHeight, points)
	sort.SliceStable(byHeight, func(i, j int) bool {
		return byHeight[i].Height < byHeight[j].Height
	})

	step := max(1, len(byHeight)/target)
	sampled := make(Timeline, 0, target+1)
	for i := 0; i < len(byHeight) && len(sampled) < target; i += step {
		sampled = append(sampled, byHeight[i])
	}
	sortByTime(sampled)

	last := latest(points)
	if !sampled.Contains(last) {
		sampled = append(sampled, last)
		sortByTime(sampled)
	}

	return sampled
}

func latest(points Timeline) models.TidePoint {
	last := points[0]
	for _, p := range points[1:] {
		if !p.Timestamp.Before(last.Timestamp) {
			last = p
		}
	}
	return last
}
