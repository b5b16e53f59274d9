package timeline

import (
	"time"

	"github.com/bbernstein/tidetimes/internal/models"
)

// NextHigh returns the soonest high tide strictly after now.
func NextHigh(tl Timeline, now time.Time) (models.TidePoint, bool) {
	return nextExtremum(tl, now, true)
}

// NextLow returns the soonest low tide strictly after now.
func NextLow(tl Timeline, now time.Time) (models.TidePoint, bool) {
	return nextExtremum(tl, now, false)
}

func nextExtremum(tl Timeline, now time.Time, high bool) (models.TidePoint, bool) {
	var best models.TidePoint
	found := false
	for _, p := range tl {
		if !p.IsExtremum || p.IsHigh != high || !p.Timestamp.After(now) {
			continue
		}
		if !found || p.Timestamp.Before(best.Timestamp) {
			best = p
			found = true
		}
	}
	return best, found
}

// DetectExtrema marks local maxima and minima of a dense series as high and
// low events. A flat run counts as one turning point, marked on its first
// sample. The endpoints are never marked. The input is not modified.
func DetectExtrema(series Timeline) Timeline {
	out := make(Timeline, len(series))
	copy(out, series)

	for i := 1; i < len(out)-1; {
		j := i
		for j+1 < len(out) && out[j+1].Height == out[i].Height {
			j++
		}
		if j == len(out)-1 {
			break
		}

		h := out[i].Height
		prev, next := out[i-1].Height, out[j+1].Height
		switch {
		case h > prev && h > next:
			out[i].IsExtremum, out[i].IsHigh = true, true
		case h < prev && h < next:
			out[i].IsExtremum, out[i].IsHigh = true, false
		}
		i = j + 1
	}

	return out
}
