package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// CacheConfig holds all cache-related configuration
type CacheConfig struct {
	// In-process feed cache
	FeedLRUSize       int
	FeedLRUTTLMinutes int

	// Station list cache
	StationListTTLDays int
	StationBucket      string

	// Last selected location
	LocationTable    string
	DynamoDBEndpoint string

	EnableFeedCache bool
	EnableS3Cache   bool
}

const (
	defaultFeedLRUSize        = 1000
	defaultFeedTTLMinutes     = 15
	defaultStationListTTLDays = 2
	defaultStationBucket      = "tide-station-cache"
	defaultLocationTable      = "tide-last-location"
)

// GetCacheConfig returns the cache configuration from environment variables or defaults
func GetCacheConfig() *CacheConfig {
	config := &CacheConfig{
		FeedLRUSize:        getEnvInt("CACHE_FEED_LRU_SIZE", defaultFeedLRUSize),
		FeedLRUTTLMinutes:  getEnvInt("CACHE_FEED_LRU_TTL_MINUTES", defaultFeedTTLMinutes),
		StationListTTLDays: getEnvInt("CACHE_STATION_LIST_TTL_DAYS", defaultStationListTTLDays),
		StationBucket:      getEnvOrDefault("STATION_CACHE_BUCKET", defaultStationBucket),
		LocationTable:      getEnvOrDefault("LOCATION_TABLE", defaultLocationTable),
		DynamoDBEndpoint:   os.Getenv("DYNAMODB_ENDPOINT"),
		EnableFeedCache:    getEnvBool("CACHE_ENABLE_FEED", true),
		EnableS3Cache:      getEnvBool("CACHE_ENABLE_S3", true),
	}

	log.Debug().
		Int("FeedLRUSize", config.FeedLRUSize).
		Int("FeedLRUTTLMinutes", config.FeedLRUTTLMinutes).
		Int("StationListTTLDays", config.StationListTTLDays).
		Str("StationBucket", config.StationBucket).
		Str("LocationTable", config.LocationTable).
		Str("DynamoDBEndpoint", config.DynamoDBEndpoint).
		Bool("EnableFeedCache", config.EnableFeedCache).
		Bool("EnableS3Cache", config.EnableS3Cache).
		Msg("Cache configuration loaded")

	return config
}

func (c *CacheConfig) GetFeedLRUTTL() time.Duration {
	return time.Duration(c.FeedLRUTTLMinutes) * time.Minute
}

func (c *CacheConfig) GetStationListTTL() time.Duration {
	return time.Duration(c.StationListTTLDays) * 24 * time.Hour
}

func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
