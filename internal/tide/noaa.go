package tide

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bbernstein/tidetimes/internal/models"
	"github.com/bbernstein/tidetimes/pkg/http/client"
	"github.com/rs/zerolog/log"
)

const (
	datagetterPath = "/api/prod/datagetter"
	noaaDateFormat = "20060102"
	noaaTimeFormat = "2006-01-02 15:04"
	maxFeedRange   = 5 * 24 * time.Hour
)

// NOAAFeed reads CO-OPS predictions. Times are requested in local standard
// time and parsed in the zone of begin.
type NOAAFeed struct {
	httpClient client.Interface
}

var _ FeedFetcher = (*NOAAFeed)(nil)

func NewNOAAFeed(httpClient client.Interface) *NOAAFeed {
	return &NOAAFeed{httpClient: httpClient}
}

func (f *NOAAFeed) Fetch(ctx context.Context, stationID string, kind models.ReadingKind, begin, end time.Time) ([]models.RawReading, error) {
	if end.Before(begin) {
		return nil, NewInvalidRangeError(fmt.Sprintf("end %s is before begin %s", end.Format(time.RFC3339), begin.Format(time.RFC3339)))
	}
	if end.Sub(begin) > maxFeedRange {
		return nil, NewInvalidRangeError("date range cannot exceed 5 days")
	}

	interval := "6"
	if kind == models.ReadingKindExtreme {
		interval = "hilo"
	}

	query := url.Values{}
	query.Set("station", stationID)
	query.Set("begin_date", begin.Format(noaaDateFormat))
	query.Set("end_date", end.Format(noaaDateFormat))
	query.Set("product", "predictions")
	query.Set("datum", "MLLW")
	query.Set("units", "english")
	query.Set("time_zone", "lst")
	query.Set("format", "json")
	query.Set("interval", interval)

	resp, err := f.httpClient.Get(ctx, datagetterPath+"?"+query.Encode())
	if err != nil {
		return nil, NewNoaaAPIError("fetching "+string(kind)+" feed", err)
	}
	if resp == nil {
		return nil, NewNoaaAPIError("no response for "+string(kind)+" feed", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewNoaaAPIError(fmt.Sprintf("unexpected status %d for %s feed", resp.StatusCode, kind), nil)
	}

	log.Debug().
		Str("station_id", stationID).
		Str("kind", string(kind)).
		Str("begin_date", begin.Format(noaaDateFormat)).
		Str("end_date", end.Format(noaaDateFormat)).
		Msg("Fetched feed from NOAA")

	var noaaResp models.NoaaResponse
	if err := json.Unmarshal(resp.Body, &noaaResp); err != nil {
		return nil, NewNoaaAPIError("decoding response", err)
	}
	if noaaResp.Error != nil {
		return nil, NewNoaaAPIError(noaaResp.Error.Message, nil)
	}

	return decodePredictions(noaaResp.Predictions, kind, begin.Location()), nil
}

// decodePredictions converts NOAA records one to one. Records that cannot be
// parsed keep a zero time or a NaN value so the merge drops and counts them.
func decodePredictions(predictions []models.NoaaPrediction, kind models.ReadingKind, location *time.Location) []models.RawReading {
	readings := make([]models.RawReading, len(predictions))
	for i, p := range predictions {
		var ts time.Time
		if parsed, err := time.ParseInLocation(noaaTimeFormat, p.Time, location); err == nil {
			ts = parsed
		}

		height, err := strconv.ParseFloat(p.Height, 64)
		if err != nil {
			height = math.NaN()
		}

		readings[i] = models.RawReading{
			Kind:      kind,
			Timestamp: ts,
			Value:     height,
		}
		if kind == models.ReadingKindExtreme {
			readings[i].Type = extremeLabel(p.Type)
		}
	}
	return readings
}

// extremeLabel maps NOAA's H/L codes, including the higher-high and
// lower-low variants, to the feed labels. Unknown codes stay unlabelled.
func extremeLabel(code *string) *string {
	if code == nil {
		return nil
	}

	var label string
	switch *code {
	case "H", "HH":
		label = models.ExtremeLabelHigh
	case "L", "LL":
		label = models.ExtremeLabelLow
	default:
		return nil
	}
	return &label
}
