package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

// TimelineConfig sizes the windows cut from the merged timeline and the
// range of predictions requested around now.
type TimelineConfig struct {
	CompactWindow int
	DayWindow     int
	DaySamples    int
	LookbackDays  int
	LookaheadDays int
}

const (
	defaultCompactWindow = 4
	// 24h of 6-minute predictions
	defaultDayWindow     = 240
	defaultDaySamples    = 5
	defaultLookbackDays  = 1
	defaultLookaheadDays = 2
)

// GetTimelineConfig reads the window sizes from the environment. Values
// below one are replaced by the defaults.
func GetTimelineConfig() *TimelineConfig {
	config := &TimelineConfig{
		CompactWindow: positiveOr(getEnvInt("TIMELINE_COMPACT_WINDOW", defaultCompactWindow), defaultCompactWindow),
		DayWindow:     positiveOr(getEnvInt("TIMELINE_DAY_WINDOW", defaultDayWindow), defaultDayWindow),
		DaySamples:    positiveOr(getEnvInt("TIMELINE_DAY_SAMPLES", defaultDaySamples), defaultDaySamples),
		LookbackDays:  positiveOr(getEnvInt("TIMELINE_LOOKBACK_DAYS", defaultLookbackDays), defaultLookbackDays),
		LookaheadDays: positiveOr(getEnvInt("TIMELINE_LOOKAHEAD_DAYS", defaultLookaheadDays), defaultLookaheadDays),
	}

	log.Debug().
		Int("CompactWindow", config.CompactWindow).
		Int("DayWindow", config.DayWindow).
		Int("DaySamples", config.DaySamples).
		Int("LookbackDays", config.LookbackDays).
		Int("LookaheadDays", config.LookaheadDays).
		Msg("Timeline configuration loaded")

	return config
}

// DefaultTimelineConfig returns the built-in window sizes.
func DefaultTimelineConfig() *TimelineConfig {
	return &TimelineConfig{
		CompactWindow: defaultCompactWindow,
		DayWindow:     defaultDayWindow,
		DaySamples:    defaultDaySamples,
		LookbackDays:  defaultLookbackDays,
		LookaheadDays: defaultLookaheadDays,
	}
}

// Range returns the prediction range to request around now.
func (c *TimelineConfig) Range(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -c.LookbackDays), now.AddDate(0, 0, c.LookaheadDays)
}

func positiveOr(v, fallback int) int {
	if v < 1 {
		log.Warn().Int("value", v).Int("default", fallback).Msg("Non-positive timeline setting, using default")
		return fallback
	}
	return v
}
