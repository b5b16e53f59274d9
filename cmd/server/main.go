package main

import (
	"context"
	"net/http"
	"time"

	"github.com/bbernstein/tidetimes/internal/app"
	"github.com/bbernstein/tidetimes/internal/config"
	"github.com/bbernstein/tidetimes/internal/handler"
	"github.com/bbernstein/tidetimes/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port   string `default:"8080"`
	Prefix string `default:"/"`
}

func newRouter(prefix string, tides, stations handler.LambdaFunc) *mux.Router {
	r := mux.NewRouter().StrictSlash(true)
	r.Use(handler.WithRequestID)

	s := r.PathPrefix(prefix).Subrouter()
	s.Handle("/api/v1/tides", metrics.LatencyHandler(handler.HTTPAdapter(tides))).Methods(http.MethodGet)
	s.Handle("/api/v1/stations", metrics.LatencyHandler(handler.HTTPAdapter(stations))).Methods(http.MethodGet)
	s.Handle("/metrics", promhttp.Handler())

	return r
}

func main() {
	var env Config
	if err := envconfig.Process("", &env); err != nil {
		log.Fatal().Err(err).Msg("Invalid server configuration")
	}

	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	services, err := app.New(context.Background(), cfg, config.GetCacheConfig(), config.GetTimelineConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	tides := handler.NewTidesHandler(services.TideService, services.Locations)
	stations := handler.NewStationsHandler(services.StationFinder)

	srv := &http.Server{
		Handler:      newRouter(env.Prefix, tides.HandleRequest, stations.HandleRequest),
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.Info().Str("addr", srv.Addr).Str("prefix", env.Prefix).Msg("Listening and serving")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
