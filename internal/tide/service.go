package tide

import (
	"context"
	"fmt"
	"time"

	"github.com/bbernstein/tidetimes/internal/cache"
	"github.com/bbernstein/tidetimes/internal/config"
	"github.com/bbernstein/tidetimes/internal/metrics"
	"github.com/bbernstein/tidetimes/internal/models"
	"github.com/bbernstein/tidetimes/internal/station"
	"github.com/bbernstein/tidetimes/internal/timeline"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	calculationMethod         = "NOAA API"
	calculationMethodDetected = "NOAA API (detected extrema)"
)

type Service struct {
	Feeds          FeedFetcher
	StationFinder  models.StationFinder
	// FeedCache is optional.
	FeedCache      FeedCache
	TimelineConfig *config.TimelineConfig
	Now            func() time.Time
}

var _ TideService = (*Service)(nil)

func NewService(feeds FeedFetcher, stationFinder models.StationFinder, feedCache FeedCache, cfg *config.TimelineConfig) *Service {
	if cfg == nil {
		cfg = config.DefaultTimelineConfig()
	}
	return &Service{
		Feeds:          feeds,
		StationFinder:  stationFinder,
		FeedCache:      feedCache,
		TimelineConfig: cfg,
		Now:            time.Now,
	}
}

// GetSummary summarizes the tide at the station nearest to lat, lon.
func (s *Service) GetSummary(ctx context.Context, lat, lon float64, mode models.ChartMode) (*models.TideSummary, error) {
	stations, err := s.StationFinder.FindNearestStations(ctx, lat, lon, 1)
	if err != nil {
		return nil, fmt.Errorf("finding nearest station: %w", err)
	}

	if len(stations) == 0 {
		return nil, ErrNoStations
	}

	return s.summarize(ctx, stations[0], mode)
}

func (s *Service) GetSummaryForStation(ctx context.Context, stationID string, mode models.ChartMode) (*models.TideSummary, error) {
	st, err := s.StationFinder.FindStation(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("finding station: %w", err)
	}

	return s.summarize(ctx, *st, mode)
}

func (s *Service) summarize(ctx context.Context, st models.Station, mode models.ChartMode) (*models.TideSummary, error) {
	now := s.Now().In(station.Location(st))

	tl, detected, err := s.Timeline(ctx, st, now)
	if err != nil {
		return nil, err
	}

	method := calculationMethod
	if detected {
		method = calculationMethodDetected
	}

	summary := BuildSummary(st, tl, now, mode, method, s.TimelineConfig)
	if err := summary.Validate(); err != nil {
		log.Warn().Err(err).Str("station", st.ID).Msg("Summary failed validation")
	}
	return summary, nil
}

// Timeline fetches both feeds for st around now and merges them. detected
// reports that extrema were derived from the height series because the
// extrema feed had none.
func (s *Service) Timeline(ctx context.Context, st models.Station, now time.Time) (tl timeline.Timeline, detected bool, err error) {
	begin, end := s.TimelineConfig.Range(now)

	var heights, extremes []models.RawReading
	g, gctx := errgroup.WithContext(ctx)
	// Subordinate stations only publish high/low events.
	if !st.IsSubordinate() {
		g.Go(func() error {
			var err error
			heights, err = s.fetch(gctx, st.ID, models.ReadingKindHeight, begin, end)
			return err
		})
	}
	g.Go(func() error {
		var err error
		extremes, err = s.fetch(gctx, st.ID, models.ReadingKindExtreme, begin, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, false, fmt.Errorf("getting predictions: %w", err)
	}

	// Extremes go first so a reading present in both feeds keeps its flag.
	tl, report := timeline.MergeReport(extremes, heights)

	event := log.Debug()
	if report.Dropped > 0 {
		event = log.Warn()
	}
	event.
		Str("station_id", st.ID).
		Int("accepted", report.Accepted).
		Int("dropped", report.Dropped).
		Int("duplicates", report.Duplicates).
		Msg("Merged tide feeds")
	metrics.AddDroppedReadings(st.ID, report.Dropped)

	if len(tl.Extrema()) == 0 && len(tl) > 2 {
		tl = timeline.DetectExtrema(tl)
		detected = true
	}

	return tl, detected, nil
}

func (s *Service) fetch(ctx context.Context, stationID string, kind models.ReadingKind, begin, end time.Time) ([]models.RawReading, error) {
	key := cache.FeedKey(stationID, kind, begin, end)
	if s.FeedCache != nil {
		if readings, ok := s.FeedCache.Get(key); ok {
			log.Debug().Str("key", key).Msg("Feed cache HIT")
			metrics.FeedCacheHit()
			return readings, nil
		}
		log.Debug().Str("key", key).Msg("Feed cache MISS")
		metrics.FeedCacheMiss()
	}

	start := time.Now()
	readings, err := s.Feeds.Fetch(ctx, stationID, kind, begin, end)
	metrics.ObserveFeedFetch(string(kind), err, time.Since(start))
	if err != nil {
		return nil, err
	}

	if s.FeedCache != nil {
		s.FeedCache.Add(key, readings)
	}
	return readings, nil
}

// BuildSummary derives everything shown for st at now from a merged
// timeline. An empty timeline yields a summary with no derived values.
func BuildSummary(st models.Station, tl timeline.Timeline, now time.Time, mode models.ChartMode, method string, cfg *config.TimelineConfig) *models.TideSummary {
	loc := station.Location(st)
	now = now.In(loc)

	summary := &models.TideSummary{
		ResponseType:          "tide",
		Timestamp:             now.UnixMilli(),
		LocalTime:             models.FormatLocalTime(now, loc),
		StationID:             st.ID,
		StationName:           &st.Name,
		Latitude:              st.Latitude,
		Longitude:             st.Longitude,
		StationDistance:       st.Distance,
		CalculationMethod:     method,
		TimeZoneOffsetSeconds: &st.TimeZoneOffset,
		Extremes:              []models.TideExtreme{},
		Predictions:           []models.TidePrediction{},
	}

	if height, ok := timeline.CurrentHeight(tl, now); ok {
		summary.CurrentHeight = &height
	}
	if direction, ok := timeline.Direction(tl, now); ok {
		summary.Direction = &direction
	}
	if p, ok := timeline.NextHigh(tl, now); ok {
		extreme := models.NewTideExtreme(p, loc)
		summary.NextHigh = &extreme
	}
	if p, ok := timeline.NextLow(tl, now); ok {
		extreme := models.NewTideExtreme(p, loc)
		summary.NextLow = &extreme
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	for _, p := range tl.Between(dayStart, dayStart.AddDate(0, 0, 1)) {
		if p.IsExtremum {
			summary.Extremes = append(summary.Extremes, models.NewTideExtreme(p, loc))
		} else {
			summary.Predictions = append(summary.Predictions, models.NewTidePrediction(p, loc))
		}
	}

	summary.Chart = buildChart(tl, now, mode, cfg, loc)
	return summary
}

func buildChart(tl timeline.Timeline, now time.Time, mode models.ChartMode, cfg *config.TimelineConfig, loc *time.Location) models.Chart {
	var window timeline.Timeline
	switch mode {
	case models.ChartModeDay:
		window = timeline.SampleMedian(timeline.SelectWindow(tl, now, cfg.DayWindow), cfg.DaySamples)
	default:
		mode = models.ChartModeCompact
		window = timeline.SelectWindow(tl.Extrema(), now, cfg.CompactWindow)
	}

	projection := timeline.Project(window, now)
	points := make([]models.TidePrediction, len(window))
	for i, p := range window {
		points[i] = models.NewTidePrediction(p, loc)
	}

	return models.Chart{
		Mode:        mode,
		Points:      points,
		Coordinates: projection.Points,
		Marker:      projection.Marker,
	}
}
