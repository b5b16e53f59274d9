package timeline

import (
	"time"

	"github.com/bbernstein/tidetimes/internal/models"
)

// bracket finds the pair of points around now. idx is the index of the first
// point after now; the previous point is idx-1. progress is the fraction of
// the interval already elapsed.
func bracket(tl Timeline, now time.Time) (idx int, progress float64, ok bool) {
	idx = tl.pivot(now)
	if idx == 0 || idx >= len(tl) {
		return 0, 0, false
	}

	prev, next := tl[idx-1], tl[idx]
	span := next.Timestamp.Sub(prev.Timestamp)
	if span > 0 {
		progress = float64(now.Sub(prev.Timestamp)) / float64(span)
	}
	return idx, progress, true
}

// CurrentHeight linearly interpolates the height at now. It reports false
// before the first point and at or after the last one.
func CurrentHeight(tl Timeline, now time.Time) (float64, bool) {
	idx, progress, ok := bracket(tl, now)
	if !ok {
		return 0, false
	}

	prev, next := tl[idx-1], tl[idx]
	return prev.Height + (next.Height-prev.Height)*progress, true
}

// Direction reports whether the tide is rising or falling at now.
func Direction(tl Timeline, now time.Time) (models.TideType, bool) {
	idx, _, ok := bracket(tl, now)
	if !ok {
		return "", false
	}

	prev, next := tl[idx-1], tl[idx]
	switch {
	case next.Height > prev.Height:
		return models.TideTypeRising, true
	case next.Height < prev.Height:
		return models.TideFalling, true
	default:
		return "", false
	}
}
