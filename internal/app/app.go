// Package app wires the NOAA client, caches and services shared by the
// Lambdas, the local server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/bbernstein/tidetimes/internal/cache"
	"github.com/bbernstein/tidetimes/internal/config"
	"github.com/bbernstein/tidetimes/internal/models"
	"github.com/bbernstein/tidetimes/internal/station"
	"github.com/bbernstein/tidetimes/internal/tide"
	"github.com/bbernstein/tidetimes/pkg/http/client"
	"github.com/rs/zerolog/log"
)

type Services struct {
	HTTPClient    *client.Client
	StationFinder *station.NOAAStationFinder
	FeedCache     *cache.FeedCache
	TideService   *tide.Service
	Locations     models.LocationStore
}

// New builds the services from configuration. AWS backed caches are only
// used outside local environments, or when a DynamoDB endpoint is given.
// Failing to reach AWS degrades to in-memory caches rather than failing.
func New(ctx context.Context, cfg *config.Config, cacheCfg *config.CacheConfig, timelineCfg *config.TimelineConfig) (*Services, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if cacheCfg == nil {
		cacheCfg = config.GetCacheConfig()
	}
	if timelineCfg == nil {
		timelineCfg = config.GetTimelineConfig()
	}

	httpClient := client.New(client.Options{
		BaseURL:    cfg.NOAABaseURL,
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.MaxRetries,
	})

	var stationListCache cache.StationListCacheProvider
	if cacheCfg.EnableS3Cache && !cfg.IsLocal() {
		s3Client, err := cache.NewS3Client(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("S3 station cache disabled")
		} else {
			stationListCache = cache.NewS3StationCache(s3Client, cacheCfg.StationBucket, cacheCfg.GetStationListTTL())
		}
	}
	finder := station.NewNOAAStationFinder(httpClient, cache.NewStationCache(cacheCfg.GetStationListTTL()), stationListCache)

	services := &Services{
		HTTPClient:    httpClient,
		StationFinder: finder,
		Locations:     locationStore(ctx, cfg, cacheCfg),
	}

	var feedCache tide.FeedCache
	if cacheCfg.EnableFeedCache {
		fc, err := cache.NewFeedCache(cacheCfg)
		if err != nil {
			return nil, fmt.Errorf("creating feed cache: %w", err)
		}
		services.FeedCache = fc
		feedCache = fc
	}

	services.TideService = tide.NewService(tide.NewNOAAFeed(httpClient), finder, feedCache, timelineCfg)
	return services, nil
}

func locationStore(ctx context.Context, cfg *config.Config, cacheCfg *config.CacheConfig) models.LocationStore {
	if cfg.IsLocal() && cacheCfg.DynamoDBEndpoint == "" {
		return cache.NewMemoryLocationStore()
	}

	dynamoClient, err := cache.NewDynamoClient(ctx, cacheCfg.DynamoDBEndpoint)
	if err != nil {
		log.Warn().Err(err).Msg("DynamoDB location store unavailable, keeping locations in memory")
		return cache.NewMemoryLocationStore()
	}
	return cache.NewDynamoLocationStore(dynamoClient, cacheCfg.LocationTable)
}
