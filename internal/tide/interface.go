package tide

import (
	"context"
	"time"

	"github.com/bbernstein/tidetimes/internal/models"
)

type TideService interface {
	GetSummary(ctx context.Context, lat, lon float64, mode models.ChartMode) (*models.TideSummary, error)
	GetSummaryForStation(ctx context.Context, stationID string, mode models.ChartMode) (*models.TideSummary, error)
}

// FeedFetcher retrieves one upstream feed for a station, decoded into raw
// readings in the station's zone.
type FeedFetcher interface {
	Fetch(ctx context.Context, stationID string, kind models.ReadingKind, begin, end time.Time) ([]models.RawReading, error)
}

// FeedCache stores decoded feeds by request key.
type FeedCache interface {
	Get(key string) ([]models.RawReading, bool)
	Add(key string, readings []models.RawReading)
}
